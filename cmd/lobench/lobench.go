// lobench.go assembles the heralded CNOT and runs its full logical truth
// table for each entry in the cartesian product of a collection of source
// tuning parameters, e.g. emitter brightness and single-photon purity, and
// outputs a CSV of relevant statistics for each different combination, e.g.
// truth-table fidelity and herald success rates.
package main

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"strings"

	"github.com/alan-christopher/linopt/go/linopt"
	"github.com/alan-christopher/linopt/go/linopt/backend"
	"github.com/alan-christopher/linopt/go/linopt/fock"
	"github.com/alan-christopher/linopt/go/linopt/optics"
	"github.com/alan-christopher/linopt/go/linopt/photon"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var (
	brightness = flag.Float64Slice("brightness", []float64{1},
		"The per-pulse emission probabilities to sweep for the simulated source.")
	purity = flag.Float64Slice("purity", []float64{1},
		"The single-photon purities to sweep for the simulated source.")
	minP = flag.Float64Slice("minP", []float64{linopt.DefaultMinP},
		"The probability floors below which output terms are discarded.")
	mode       = flag.String("mode", "probs", "The run mode, one of probs or samples.")
	samples    = flag.Int("samples", 1000, "The post-selected states to draw per logical input in samples mode.")
	configPath = flag.String("config", "", "An optional YAML experiment file supplying parameter defaults.")
	logLevel   = flag.String("logLevel", "info", "The diagnostic verbosity, one of debug, info, warn, error.")
	pretty     = flag.Bool("pretty", false, "Pretty-print diagnostics instead of emitting JSON.")
)

var (
	inputs  = []string{"brightness", "purity", "minP"}
	columns = []string{"Brightness", "Purity", "MinP", "Fidelity",
		"PhysicalPerf", "LogicalPerf", "Succeeded"}
)

// An Experiment packages together the result of benchmarking a single
// parameterization for easy formatting.
type Experiment struct {
	// Fields corresponding to experiment parameters
	Brightness float64
	Purity     float64
	MinP       float64

	// Fields corresponding to experiment results
	Fidelity     float64
	PhysicalPerf float64
	LogicalPerf  float64
	Succeeded    bool
}

// A Config mirrors the command-line parameters as a YAML document. Values
// set explicitly on the command line take precedence over the file.
type Config struct {
	Brightness []float64 `yaml:"brightness"`
	Purity     []float64 `yaml:"purity"`
	MinP       []float64 `yaml:"min_p"`
	Mode       string    `yaml:"mode"`
	Samples    int       `yaml:"samples"`
	LogLevel   string    `yaml:"log_level"`
	Pretty     bool      `yaml:"pretty"`
}

func main() {
	flag.Parse()
	var cfg *Config
	var cfgErr error
	if *configPath != "" {
		if cfg, cfgErr = loadConfig(*configPath); cfgErr == nil {
			applyConfig(cfg)
		}
	}
	log.Logger = newLogger(*logLevel, *pretty)
	if cfgErr != nil {
		log.Fatal().Err(cfgErr).Str("path", *configPath).Msg("could not load experiment config")
	}

	fmt.Println(header())
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	var args [][]interface{}
	for _, inp := range inputs {
		args = append(args, lookupInput(inp))
	}
	applyCartesian(func(args []interface{}) {
		exp := &Experiment{
			Brightness: args[inpIndex("brightness")].(float64),
			Purity:     args[inpIndex("purity")].(float64),
			MinP:       args[inpIndex("minP")].(float64),
		}
		log.Debug().
			Float64("brightness", exp.Brightness).
			Float64("purity", exp.Purity).
			Float64("minP", exp.MinP).
			Msg("benchmarking")
		if err := bench(exp); err != nil {
			log.Error().Err(err).Interface("experiment", exp).Msg("experiment failed")
		}
		if err := tmpl.Execute(os.Stdout, exp); err != nil {
			log.Fatal().Err(err).Msg("BUG: could not fill in line template")
		}
	}, args)
}

func inpIndex(v string) int {
	for i, inp := range inputs {
		if inp == v {
			return i
		}
	}
	return -1
}

// bench runs all four logical inputs of the CNOT through a source with the
// experiment's imperfections and averages the resulting statistics. Fidelity
// is the probability mass landing on the correct truth-table output,
// conditioned on the heralds and the rail post-selection accepting.
func bench(exp *Experiment) error {
	src, err := photon.NewSimulatedSource(photon.SourceOpts{
		Brightness: exp.Brightness,
		Purity:     exp.Purity,
	})
	if err != nil {
		return err
	}
	var fidelity, physical, logical float64
	for c := 0; c < 2; c++ {
		for t := 0; t < 2; t++ {
			p, err := cnot(src, exp.MinP)
			if err != nil {
				return err
			}
			if err := p.WithInput(railState(c, t)); err != nil {
				return err
			}
			want := railState(c, t^c)
			switch *mode {
			case "probs":
				res, err := p.Probs(nil)
				if err != nil {
					return err
				}
				fidelity += res.Results.Prob(want)
				physical += res.PhysicalPerf
				logical += res.LogicalPerf
			case "samples":
				res, err := p.Samples(*samples, nil)
				if err != nil {
					return err
				}
				match := 0
				for _, s := range res.States {
					if s.Equal(want) {
						match++
					}
				}
				fidelity += float64(match) / float64(len(res.States))
				physical += res.PhysicalPerf
				logical += res.LogicalPerf
			default:
				return fmt.Errorf("unknown run mode %q", *mode)
			}
		}
	}
	exp.Fidelity = fidelity / 4
	exp.PhysicalPerf = physical / 4
	exp.LogicalPerf = logical / 4
	exp.Succeeded = true
	return nil
}

// cnot assembles the heralded, post-selected CNOT: a core of three one-third
// reflectivity splitters flanked by balanced ones, vacuum heralds on the
// outer modes, and dual-rail control and target registers on the inner four.
func cnot(src photon.Source, minP float64) (*linopt.Processor, error) {
	var b backend.Backend = backend.Naive{}
	if *mode == "samples" {
		b = backend.NewSampler(backend.SamplerOpts{})
	}
	p, err := linopt.NewProcessor(linopt.ProcessorOpts{
		Backend: b,
		Modes:   6,
		Source:  src,
		MinP:    minP,
	})
	if err != nil {
		return nil, err
	}
	third := 1.0 / 3.0
	h := func(r float64) *optics.BeamSplitter {
		return &optics.BeamSplitter{R: r, PhiB: -math.Pi / 2, PhiD: -math.Pi / 2}
	}
	p.Add(3, h(0.5)).
		Add(0, h(third)).
		Add(2, &optics.BeamSplitter{R: third, PhiA: math.Pi, PhiB: -math.Pi / 2, PhiD: -math.Pi / 2}).
		Add(4, h(third)).
		Add(3, h(0.5)).
		AddHerald(0, 0, "").
		AddHerald(5, 0, "").
		AddPort(1, linopt.NewDataPort(linopt.EncodingDualRail, "data"), linopt.LocationInOut).
		AddPort(3, linopt.NewDataPort(linopt.EncodingDualRail, "ctrl"), linopt.LocationInOut).
		SetPostSelect(func(s fock.State) bool {
			return (s.Get(1) > 0 || s.Get(2) > 0) && (s.Get(3) > 0 || s.Get(4) > 0)
		})
	return p, p.Err()
}

// railState encodes logical control and target bits as a dual-rail photon
// pair: a bit's photon occupies the first rail of its pair for 0, the second
// for 1.
func railState(c, t int) fock.State {
	ket := make([]int, 4)
	ket[c] = 1
	ket[2+t] = 1
	return fock.NewState(ket)
}

func newLogger(level string, pretty bool) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	var output io.Writer = os.Stderr
	if pretty {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

func applyConfig(cfg *Config) {
	if len(cfg.Brightness) > 0 && !flag.CommandLine.Changed("brightness") {
		*brightness = cfg.Brightness
	}
	if len(cfg.Purity) > 0 && !flag.CommandLine.Changed("purity") {
		*purity = cfg.Purity
	}
	if len(cfg.MinP) > 0 && !flag.CommandLine.Changed("minP") {
		*minP = cfg.MinP
	}
	if cfg.Mode != "" && !flag.CommandLine.Changed("mode") {
		*mode = cfg.Mode
	}
	if cfg.Samples > 0 && !flag.CommandLine.Changed("samples") {
		*samples = cfg.Samples
	}
	if cfg.LogLevel != "" && !flag.CommandLine.Changed("logLevel") {
		*logLevel = cfg.LogLevel
	}
	if cfg.Pretty && !flag.CommandLine.Changed("pretty") {
		*pretty = true
	}
}

func header() string {
	return strings.Join(columns, ", ")
}

func lineTmpl() string {
	var els []string
	for _, c := range columns {
		els = append(els, "{{."+c+"}}")
	}
	return strings.Join(els, ", ") + "\n"
}

func lookupInput(name string) []interface{} {
	var r []interface{}
	if v, err := flag.CommandLine.GetIntSlice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else if v, err := flag.CommandLine.GetFloat64Slice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else {
		log.Fatal().Str("input", name).Msg("unknown input type")
	}
	return r
}

func applyCartesian(f func([]interface{}), args [][]interface{}) {
	for i := range args {
		if len(args[i]) == 1 {
			continue
		}
		l := make([][]interface{}, len(args))
		r := make([][]interface{}, len(args))
		copy(l, args)
		copy(r, args)
		l[i] = args[i][:1]
		r[i] = args[i][1:]
		applyCartesian(f, l)
		applyCartesian(f, r)
		return
	}
	x := make([]interface{}, 0, len(args))
	for _, a := range args {
		x = append(x, a[0])
	}
	f(x)
}

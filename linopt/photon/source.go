// Package photon models the photon sources that feed a linear optical
// circuit.
package photon

import (
	"fmt"

	"github.com/alan-christopher/linopt/go/linopt/fock"
)

// A Source describes the photon-number statistics of a triggered emitter
// attached to one optical mode.
type Source interface {
	// ProbabilityDistribution returns the one-mode Fock distribution
	// produced by a single trigger of the source.
	ProbabilityDistribution() *fock.Distribution
}

// SourceOpts configures a SimulatedSource. Zero values default to 1, i.e. a
// perfect source.
type SourceOpts struct {
	// Brightness is the probability that a trigger emits anything at all.
	Brightness float64
	// Purity is the probability that an emission is a lone photon rather
	// than a photon pair.
	Purity float64
	// Indistinguishability is the wave-packet overlap between separate
	// emissions. Photon-number statistics are insensitive to it; it is
	// validated and carried for backends that resolve partial
	// distinguishability.
	Indistinguishability float64
}

// A SimulatedSource is an imperfect single-photon emitter: a trigger yields
// nothing with probability 1-brightness, a single photon with probability
// brightness*purity, and a photon pair with the rest.
type SimulatedSource struct {
	brightness float64
	purity     float64
	indist     float64
}

// NewSimulatedSource constructs a SimulatedSource, or errors if any
// parameter falls outside [0, 1].
func NewSimulatedSource(opts SourceOpts) (*SimulatedSource, error) {
	b, p, i := opts.Brightness, opts.Purity, opts.Indistinguishability
	if b == 0 {
		b = 1
	}
	if p == 0 {
		p = 1
	}
	if i == 0 {
		i = 1
	}
	params := []struct {
		name string
		v    float64
	}{
		{"brightness", b},
		{"purity", p},
		{"indistinguishability", i},
	}
	for _, p := range params {
		if p.v < 0 || p.v > 1 {
			return nil, fmt.Errorf("photon: %s %v outside [0, 1]", p.name, p.v)
		}
	}
	return &SimulatedSource{brightness: b, purity: p, indist: i}, nil
}

// Brightness returns the emission probability per trigger.
func (s *SimulatedSource) Brightness() float64 { return s.brightness }

// Purity returns the single-photon fraction of emissions.
func (s *SimulatedSource) Purity() float64 { return s.purity }

// Indistinguishability returns the inter-emission wave-packet overlap.
func (s *SimulatedSource) Indistinguishability() float64 { return s.indist }

// ProbabilityDistribution returns the one-mode photon-number distribution
// of a trigger. Zero-probability outcomes are omitted.
func (s *SimulatedSource) ProbabilityDistribution() *fock.Distribution {
	d := fock.NewDistribution()
	if p := 1 - s.brightness; p > 0 {
		d.Add(fock.NewState([]int{0}), p)
	}
	if p := s.brightness * s.purity; p > 0 {
		d.Add(fock.NewState([]int{1}), p)
	}
	if p := s.brightness * (1 - s.purity); p > 0 {
		d.Add(fock.NewState([]int{2}), p)
	}
	return d
}

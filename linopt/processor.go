package linopt

import (
	"fmt"
	"math/rand"

	"github.com/alan-christopher/linopt/go/linopt/backend"
	"github.com/alan-christopher/linopt/go/linopt/fock"
	"github.com/alan-christopher/linopt/go/linopt/optics"
	"github.com/alan-christopher/linopt/go/linopt/photon"
)

var (
	// DefaultMinP is the probability below which output contributions are
	// treated as negligible.
	DefaultMinP = 1e-6

	// DefaultSampleSeed seeds a processor's random source when none is
	// supplied, keeping sampling runs reproducible by default.
	DefaultSampleSeed int64 = 1
)

// ProcessorOpts holds the parameters for constructing a Processor.
type ProcessorOpts struct {
	// Backend simulates the assembled circuit. Required.
	Backend backend.Backend

	// Modes sets the initial number of modes of interest. Exactly one of
	// Modes and Circuit must be set.
	Modes int

	// Circuit seeds the processor with an existing circuit's mode count and
	// components.
	Circuit *optics.Circuit

	// Source models the photon emitters feeding the inputs. Defaults to a
	// perfect simulated source.
	Source photon.Source

	// Rand draws input states during sampling runs. Defaults to a source
	// seeded with DefaultSampleSeed.
	Rand *rand.Rand

	// MinP is the negligibility threshold for exact runs. Defaults to
	// DefaultMinP.
	MinP float64
}

// A Processor is a linear optical circuit dressed for execution: modes of
// interest carry user photons, heralded ancilla modes carry the extra
// photons non-deterministic gates need, ports and detectors give modes
// external meaning, and selection rules decide which outputs count.
//
// Structural methods chain, and the first failure latches: every later
// call is a no-op, Err reports the failure, and simulation runs refuse to
// start. A latched processor cannot be repaired.
type Processor struct {
	backend backend.Backend
	source  photon.Source
	rand    *rand.Rand
	minP    float64

	nMOI     int
	nHeralds int
	places   []optics.Placement
	inPorts  map[Port][]int
	outPorts map[Port][]int

	postSelect *PostSelect

	minModePS         int
	minModePSOverride int
	hasOverride       bool

	keepHeralds bool

	inputState fock.State
	hasInput   bool
	inputsMap  *fock.Distribution

	sim backend.Simulator
	err error
}

// NewProcessor constructs a Processor from opts.
func NewProcessor(opts ProcessorOpts) (*Processor, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("linopt: no backend")
	}
	if (opts.Modes != 0) == (opts.Circuit != nil) {
		return nil, fmt.Errorf("linopt: exactly one of Modes and Circuit must be set")
	}
	src := opts.Source
	if src == nil {
		var err error
		src, err = photon.NewSimulatedSource(photon.SourceOpts{})
		if err != nil {
			return nil, fmt.Errorf("linopt: default source: %w", err)
		}
	}
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(DefaultSampleSeed))
	}
	minP := opts.MinP
	if minP == 0 {
		minP = DefaultMinP
	}
	if minP < 0 || minP >= 1 {
		return nil, fmt.Errorf("linopt: negligibility threshold %v outside [0, 1)", minP)
	}
	p := &Processor{
		backend:  opts.Backend,
		source:   src,
		rand:     r,
		minP:     minP,
		inPorts:  make(map[Port][]int),
		outPorts: make(map[Port][]int),
	}
	if opts.Circuit != nil {
		if err := opts.Circuit.Err(); err != nil {
			return nil, fmt.Errorf("linopt: seeding circuit: %w", err)
		}
		p.nMOI = opts.Circuit.Modes()
		for _, pl := range opts.Circuit.Components() {
			p.places = append(p.places, optics.Placement{Mode: pl.Mode, Component: pl.Component.Copy()})
		}
	} else {
		if opts.Modes < 1 {
			return nil, fmt.Errorf("linopt: processor over %d modes", opts.Modes)
		}
		p.nMOI = opts.Modes
	}
	return p, nil
}

// Modes returns the number of modes of interest, the width WithInput
// expects.
func (p *Processor) Modes() int { return p.nMOI }

// CircuitSize returns the full mode count including heralded ancillas.
func (p *Processor) CircuitSize() int { return p.nMOI + p.nHeralds }

// Err returns the first build error, if any.
func (p *Processor) Err() error { return p.err }

// Components returns the circuit placements in application order. Callers
// must not modify the returned components.
func (p *Processor) Components() []optics.Placement {
	out := make([]optics.Placement, len(p.places))
	copy(out, p.places)
	return out
}

// Heralds returns expected photon counts keyed by heralded mode.
func (p *Processor) Heralds() map[int]int {
	out := make(map[int]int, p.nHeralds)
	for port, modes := range p.outPorts {
		if h, ok := port.(*Herald); ok {
			out[modes[0]] = h.Expected()
		}
	}
	return out
}

// PostSelect returns the logical acceptance rule, nil when none is set.
func (p *Processor) PostSelect() *PostSelect { return p.postSelect }

// MinModePostSelect returns the physical selection threshold currently in
// force.
func (p *Processor) MinModePostSelect() int { return p.minModePS }

// InputPortAt returns the port covering mode on the input face, or nil.
func (p *Processor) InputPortAt(mode int) Port { return portAt(p.inPorts, mode) }

// OutputPortAt returns the port covering mode on the output face, or nil.
func (p *Processor) OutputPortAt(mode int) Port { return portAt(p.outPorts, mode) }

func portAt(reg map[Port][]int, mode int) Port {
	for port, modes := range reg {
		for _, m := range modes {
			if m == mode {
				return port
			}
		}
	}
	return nil
}

// InPortNames returns one label per circuit mode on the input face, empty
// where no port sits.
func (p *Processor) InPortNames() []string { return portNames(p.inPorts, p.CircuitSize()) }

// OutPortNames returns one label per circuit mode on the output face,
// empty where no port sits.
func (p *Processor) OutPortNames() []string { return portNames(p.outPorts, p.CircuitSize()) }

func portNames(reg map[Port][]int, n int) []string {
	out := make([]string, n)
	for port, modes := range reg {
		for _, m := range modes {
			out[m] = port.Name()
		}
	}
	return out
}

// AreModesFree reports whether no port covers any of the given modes on
// the given face(s).
func (p *Processor) AreModesFree(modes []int, loc Location) bool {
	clash := func(reg map[Port][]int) bool {
		for _, covered := range reg {
			for _, m := range covered {
				for _, q := range modes {
					if m == q {
						return true
					}
				}
			}
		}
		return false
	}
	if loc.coversInput() && clash(p.inPorts) {
		return false
	}
	if loc.coversOutput() && clash(p.outPorts) {
		return false
	}
	return true
}

// IsModeConnectible reports whether further circuitry may attach to mode:
// the mode must exist and must not be closed on the output face.
func (p *Processor) IsModeConnectible(mode int) bool {
	if mode < 0 || mode >= p.CircuitSize() {
		return false
	}
	if port := p.OutputPortAt(mode); port != nil && port.ClosesMode() {
		return false
	}
	return true
}

// An AttachRequest describes how an item joins a processor.
type AttachRequest struct {
	// Anchor is the first parent mode the item connects to. Ignored when
	// ModeMap is set.
	Anchor int

	// ModeMap explicitly routes the item: entry i names the parent mode
	// feeding the item's i-th visible mode. Entries need not be contiguous
	// or ordered; the processor inserts the permutations realizing the
	// routing.
	ModeMap []int

	// Item is the optics.Component or *Processor to attach.
	Item any

	// ReplacePorts frees parent output ports on the connected modes before
	// a sub-processor's own ports are copied over. Ignored for bare
	// components.
	ReplacePorts bool
}

// Add attaches item, an optics.Component or a *Processor, with its first
// visible mode on parent mode anchor. The item is copied, so later changes
// to the caller's object do not reach the processor.
func (p *Processor) Add(anchor int, item any) *Processor {
	return p.Attach(AttachRequest{Anchor: anchor, Item: item})
}

// AddMapped attaches item with its visible modes routed onto the named
// parent modes. The item is copied.
func (p *Processor) AddMapped(modes []int, item any) *Processor {
	return p.Attach(AttachRequest{ModeMap: modes, Item: item})
}

// Attach attaches req.Item per the request. Composing a sub-processor
// carries over its components, heralds, output ports and post-selection
// rule, appending fresh parent modes for the child's heralded ancillas.
// Once a post-selection rule is in force the processor is sealed and
// Attach fails.
func (p *Processor) Attach(req AttachRequest) *Processor {
	if p.err != nil {
		return p
	}
	if p.postSelect != nil {
		p.err = ErrSealed
		return p
	}
	var err error
	switch item := req.Item.(type) {
	case *Processor:
		err = p.composeProcessor(req, item)
	case optics.Component:
		err = p.addComponent(req, item)
	default:
		err = fmt.Errorf("linopt: cannot add %T to a processor", req.Item)
	}
	if err != nil {
		p.err = err
		return p
	}
	p.invalidate()
	return p
}

func (p *Processor) invalidate() {
	p.sim = nil
	p.inputsMap = nil
	p.hasInput = false
}

func (p *Processor) addComponent(req AttachRequest, c optics.Component) error {
	if c == nil {
		return fmt.Errorf("linopt: adding nil component")
	}
	if sub, ok := c.(*optics.Circuit); ok && sub.Err() != nil {
		return fmt.Errorf("linopt: adding errored circuit: %w", sub.Err())
	}
	conn := newComponentConnector(p, c.Modes())
	mapping, err := conn.resolve(req)
	if err != nil {
		return err
	}
	base, perm := conn.generatePermutation(mapping)
	if perm != nil {
		p.appendPerm(base, perm)
	}
	p.places = append(p.places, optics.Placement{Mode: base, Component: c.Copy()})
	return nil
}

func (p *Processor) composeProcessor(req AttachRequest, child *Processor) error {
	if child == nil {
		return fmt.Errorf("linopt: adding nil processor")
	}
	if child.err != nil {
		return fmt.Errorf("linopt: adding errored processor: %w", child.err)
	}
	child = child.Copy()
	conn := newProcessorConnector(p, child)
	mapping, err := conn.resolve(req)
	if err != nil {
		return err
	}
	if req.ReplacePorts {
		for pm := range mapping {
			p.removeOutputPortAt(pm)
		}
	}
	p.nHeralds += conn.addHeraldedModes(mapping)
	base, perm := conn.generatePermutation(mapping)
	if perm != nil {
		p.appendPerm(base, perm)
	}
	for _, pl := range child.places {
		p.places = append(p.places, optics.Placement{Mode: pl.Mode + base, Component: pl.Component})
	}
	if perm != nil {
		p.appendPerm(base, perm.Inverse())
	}

	// After the closing permutation, child mode cm sits back on the parent
	// mode that feeds it.
	toParent := make([]int, conn.size)
	for pm, cm := range mapping {
		toParent[cm] = pm
	}
	for port, modes := range child.outPorts {
		pm := toParent[modes[0]]
		if h, ok := port.(*Herald); ok {
			p.registerHerald(pm, h)
			continue
		}
		span := make([]int, port.Modes())
		for i := range span {
			span[i] = pm + i
		}
		if pm+port.Modes() <= p.CircuitSize() && p.AreModesFree(span, LocationOutput) {
			p.outPorts[port] = span
		}
	}
	if child.postSelect != nil {
		p.postSelect = child.postSelect.translated(toParent)
	}
	return nil
}

// appendPerm appends a permutation placement, merging it into an
// immediately preceding permutation so rewirings never pile up.
func (p *Processor) appendPerm(base int, perm *optics.Permutation) {
	if n := len(p.places); n > 0 {
		if prev, ok := p.places[n-1].Component.(*optics.Permutation); ok {
			m, merged := permCompose(p.places[n-1].Mode, prev, base, perm)
			p.places[n-1] = optics.Placement{Mode: m, Component: merged}
			return
		}
	}
	p.places = append(p.places, optics.Placement{Mode: base, Component: perm})
}

func (p *Processor) registerHerald(mode int, h *Herald) {
	p.inPorts[h] = []int{mode}
	p.outPorts[h] = []int{mode}
}

func (p *Processor) removeOutputPortAt(mode int) {
	for port, modes := range p.outPorts {
		for _, m := range modes {
			if m == mode {
				delete(p.outPorts, port)
				break
			}
		}
	}
}

// AddPort registers port across port.Modes() modes starting at mode on the
// given face(s). The port object is retained, so stateful detectors stay
// visible to the caller.
func (p *Processor) AddPort(mode int, port Port, loc Location) *Processor {
	if p.err != nil {
		return p
	}
	if port == nil {
		p.err = fmt.Errorf("linopt: adding nil port")
		return p
	}
	if !port.SupportsLocation(loc) {
		p.err = fmt.Errorf("linopt: %T cannot sit on the %v face", port, loc)
		return p
	}
	span := make([]int, port.Modes())
	for i := range span {
		span[i] = mode + i
	}
	if mode < 0 || mode+port.Modes() > p.CircuitSize() {
		p.err = &UnavailableModeError{Modes: span, Reason: "outside the circuit"}
		return p
	}
	if !p.AreModesFree(span, loc) {
		p.err = &UnavailableModeError{Modes: span, Reason: "another port overlaps"}
		return p
	}
	if loc.coversInput() {
		p.inPorts[port] = span
	}
	if loc.coversOutput() {
		p.outPorts[port] = span
	}
	return p
}

// AddHerald converts a mode of interest into a heralded ancilla expecting
// 0 or 1 photons, shrinking the user-visible surface by one mode. The name
// labels the herald in port listings; the empty name leaves it anonymous.
func (p *Processor) AddHerald(mode, expected int, name string) *Processor {
	if p.err != nil {
		return p
	}
	if expected != 0 && expected != 1 {
		p.err = fmt.Errorf("linopt: herald expecting %d photons", expected)
		return p
	}
	if mode < 0 || mode >= p.CircuitSize() {
		p.err = &UnavailableModeError{Modes: []int{mode}, Reason: "outside the circuit"}
		return p
	}
	if !p.AreModesFree([]int{mode}, LocationInOut) {
		p.err = &UnavailableModeError{Modes: []int{mode}, Reason: "another port overlaps"}
		return p
	}
	p.registerHerald(mode, NewHerald(expected, name))
	p.nMOI--
	p.nHeralds++
	p.inputsMap = nil
	p.hasInput = false
	return p
}

// SetPostSelect installs fn as the logical acceptance rule, evaluated over
// the full circuit state including heralded modes. Setting a rule seals
// the processor against further Attach calls until ClearPostSelect.
func (p *Processor) SetPostSelect(fn func(fock.State) bool) *Processor {
	if p.err != nil {
		return p
	}
	if fn == nil {
		p.err = fmt.Errorf("linopt: nil post-selection predicate")
		return p
	}
	p.postSelect = &PostSelect{fn: fn, size: p.CircuitSize()}
	return p
}

// ClearPostSelect removes the acceptance rule and unseals the processor.
func (p *Processor) ClearPostSelect() *Processor {
	if p.err != nil {
		return p
	}
	p.postSelect = nil
	return p
}

// SetModePostSelect overrides the derived physical selection threshold:
// runs keep only outputs lighting at least n modes. The override silently
// wins over the value WithInput derives from the requested photons.
func (p *Processor) SetModePostSelect(n int) *Processor {
	if p.err != nil {
		return p
	}
	p.minModePSOverride = n
	p.hasOverride = true
	p.minModePS = n
	return p
}

// SetSource swaps the photon source model, rebuilding any staged input
// distribution under the new statistics.
func (p *Processor) SetSource(src photon.Source) *Processor {
	if p.err != nil {
		return p
	}
	if src == nil {
		p.err = fmt.Errorf("linopt: nil source")
		return p
	}
	p.source = src
	if p.hasInput {
		p.buildInputsMap()
	}
	return p
}

// KeepHeralds controls whether result states retain their heralded modes.
// By default results are stripped down to the modes of interest.
func (p *Processor) KeepHeralds(keep bool) *Processor {
	if p.err != nil {
		return p
	}
	p.keepHeralds = keep
	return p
}

// LinearCircuit flattens the processor into a single circuit over its full
// mode space.
func (p *Processor) LinearCircuit() *optics.Circuit {
	c := optics.NewCircuit(p.CircuitSize())
	for _, pl := range p.places {
		c.Add(pl.Mode, pl.Component)
	}
	return c
}

func (p *Processor) simulator() (backend.Simulator, error) {
	if p.sim != nil {
		return p.sim, nil
	}
	lc := p.LinearCircuit()
	if err := lc.Err(); err != nil {
		return nil, fmt.Errorf("linopt: flattening circuit: %w", err)
	}
	sim, err := p.backend.NewSimulator(lc.Unitary())
	if err != nil {
		return nil, fmt.Errorf("linopt: binding backend: %w", err)
	}
	p.sim = sim
	return sim, nil
}

// Copy returns a deep structural copy sharing only the backend and source
// models. The copy draws from a fresh random stream seeded off the
// original's, so copies explored in parallel stay reproducible without
// sharing mutable state.
func (p *Processor) Copy() *Processor {
	c := &Processor{
		backend:           p.backend,
		source:            p.source,
		rand:              rand.New(rand.NewSource(p.rand.Int63())),
		minP:              p.minP,
		nMOI:              p.nMOI,
		nHeralds:          p.nHeralds,
		postSelect:        p.postSelect,
		minModePS:         p.minModePS,
		minModePSOverride: p.minModePSOverride,
		hasOverride:       p.hasOverride,
		keepHeralds:       p.keepHeralds,
		inputState:        p.inputState,
		hasInput:          p.hasInput,
		inPorts:           make(map[Port][]int, len(p.inPorts)),
		outPorts:          make(map[Port][]int, len(p.outPorts)),
		err:               p.err,
	}
	for _, pl := range p.places {
		c.places = append(c.places, optics.Placement{Mode: pl.Mode, Component: pl.Component.Copy()})
	}
	copied := make(map[Port]Port, len(p.inPorts)+len(p.outPorts))
	dup := func(port Port) Port {
		if d, ok := copied[port]; ok {
			return d
		}
		d := port.Copy()
		copied[port] = d
		return d
	}
	for port, modes := range p.inPorts {
		c.inPorts[dup(port)] = append([]int(nil), modes...)
	}
	for port, modes := range p.outPorts {
		c.outPorts[dup(port)] = append([]int(nil), modes...)
	}
	if p.inputsMap != nil {
		c.inputsMap = p.inputsMap.Copy()
	}
	return c
}

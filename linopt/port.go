package linopt

import "fmt"

// An Encoding names the logical interpretation of the photonic modes behind
// a port.
type Encoding int

const (
	// EncodingNone marks plain Fock modes carrying no logical value.
	EncodingNone Encoding = iota
	// EncodingDualRail holds one qubit across two modes.
	EncodingDualRail
	// EncodingPolarization holds one qubit in a single mode's polarization.
	EncodingPolarization
	// EncodingTimeBin holds one qubit in a single mode's time bins.
	EncodingTimeBin
	// EncodingQudit holds an n-qubit register across 2^n modes.
	EncodingQudit
)

// Width returns the number of modes the encoding occupies and whether that
// width is fixed by the encoding alone. Qudit ports size themselves per
// port, so Width reports false for EncodingQudit.
func (e Encoding) Width() (int, bool) {
	switch e {
	case EncodingDualRail:
		return 2, true
	case EncodingNone, EncodingPolarization, EncodingTimeBin:
		return 1, true
	}
	return 0, false
}

// String returns the encoding's conventional name.
func (e Encoding) String() string {
	switch e {
	case EncodingNone:
		return "none"
	case EncodingDualRail:
		return "dual rail"
	case EncodingPolarization:
		return "polarization"
	case EncodingTimeBin:
		return "time bin"
	case EncodingQudit:
		return "qudit"
	}
	return "unknown"
}

// A Location names the processor face(s) a port occupies.
type Location int

const (
	LocationInput Location = iota
	LocationOutput
	LocationInOut
)

// String returns the location's conventional name.
func (l Location) String() string {
	switch l {
	case LocationInput:
		return "input"
	case LocationOutput:
		return "output"
	case LocationInOut:
		return "input/output"
	}
	return "unknown"
}

func (l Location) coversInput() bool  { return l == LocationInput || l == LocationInOut }
func (l Location) coversOutput() bool { return l == LocationOutput || l == LocationInOut }

// A Port tags a contiguous run of modes with an external meaning: a logical
// data register, a heralded ancilla, or a detector.
type Port interface {
	// Name returns the user-facing label, possibly empty.
	Name() string
	// Modes returns the number of modes the port spans.
	Modes() int
	// SupportsLocation reports whether the port may occupy the given face.
	SupportsLocation(loc Location) bool
	// ClosesMode reports whether the port withdraws its modes from further
	// composition on the output face.
	ClosesMode() bool
	// Copy returns an independent copy of the port.
	Copy() Port
}

// A DataPort exposes modes of interest under a logical encoding.
type DataPort struct {
	encoding Encoding
	name     string
}

// NewDataPort returns a port for the given fixed-width encoding. It panics
// on EncodingQudit; qudit registers use NewQuditPort.
func NewDataPort(e Encoding, name string) *DataPort {
	if _, ok := e.Width(); !ok {
		panic(fmt.Sprintf("linopt: %v encoding has no fixed width", e))
	}
	return &DataPort{encoding: e, name: name}
}

// Name returns the port's label.
func (p *DataPort) Name() string { return p.name }

// Encoding returns the port's logical encoding.
func (p *DataPort) Encoding() Encoding { return p.encoding }

// Modes returns the encoding's width.
func (p *DataPort) Modes() int {
	w, _ := p.encoding.Width()
	return w
}

// SupportsLocation reports true for every face.
func (p *DataPort) SupportsLocation(Location) bool { return true }

// ClosesMode reports false: data modes remain open to composition.
func (p *DataPort) ClosesMode() bool { return false }

// Copy returns an independent copy.
func (p *DataPort) Copy() Port {
	c := *p
	return &c
}

// A QuditPort exposes an n-qubit register across 2^n modes.
type QuditPort struct {
	qubits int
	name   string
}

// NewQuditPort returns a port spanning 2^qubits modes. It panics if qubits
// is not positive.
func NewQuditPort(qubits int, name string) *QuditPort {
	if qubits < 1 {
		panic(fmt.Sprintf("linopt: qudit port over %d qubits", qubits))
	}
	return &QuditPort{qubits: qubits, name: name}
}

// Name returns the port's label.
func (p *QuditPort) Name() string { return p.name }

// Qubits returns the register width in qubits.
func (p *QuditPort) Qubits() int { return p.qubits }

// Modes returns 2^qubits.
func (p *QuditPort) Modes() int { return 1 << p.qubits }

// SupportsLocation reports true for every face.
func (p *QuditPort) SupportsLocation(Location) bool { return true }

// ClosesMode reports false.
func (p *QuditPort) ClosesMode() bool { return false }

// Copy returns an independent copy.
func (p *QuditPort) Copy() Port {
	c := *p
	return &c
}

// A Herald pins an ancilla mode to an expected photon count: the mode is
// fed that many photons on the input face and a run is kept only when the
// same count exits on the output face.
type Herald struct {
	expected int
	name     string
}

// NewHerald returns a herald expecting 0 or 1 photons; other counts panic.
// The name may be empty.
func NewHerald(expected int, name string) *Herald {
	if expected != 0 && expected != 1 {
		panic(fmt.Sprintf("linopt: herald expecting %d photons", expected))
	}
	return &Herald{expected: expected, name: name}
}

// Name returns the herald's label, possibly empty.
func (h *Herald) Name() string { return h.name }

// Expected returns the pinned photon count.
func (h *Herald) Expected() int { return h.expected }

// Modes returns 1.
func (h *Herald) Modes() int { return 1 }

// SupportsLocation reports true for every face: a herald constrains both.
func (h *Herald) SupportsLocation(Location) bool { return true }

// ClosesMode reports true: heralded modes leave the user-visible surface.
func (h *Herald) ClosesMode() bool { return true }

// Copy returns an independent copy.
func (h *Herald) Copy() Port {
	c := *h
	return &c
}

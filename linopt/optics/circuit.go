package optics

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// A Placement anchors a component at its first mode within a circuit.
type Placement struct {
	Mode      int
	Component Component
}

// A Circuit is an ordered arrangement of components over a fixed block of
// modes; components apply in insertion order. A Circuit is itself a
// Component, so circuits nest.
//
// Build calls chain, and the first failure latches: every later call is a
// no-op and Err reports the failure. A circuit with a latched error has no
// usable unitary.
type Circuit struct {
	m      int
	places []Placement
	err    error
}

// NewCircuit returns an empty circuit over m modes. It panics if m < 1.
func NewCircuit(m int) *Circuit {
	if m < 1 {
		panic(fmt.Sprintf("optics: circuit over %d modes", m))
	}
	return &Circuit{m: m}
}

// Add appends c at the contiguous block starting at mode. The component is
// copied, so later changes to the caller's value do not alter the circuit.
func (cc *Circuit) Add(mode int, c Component) *Circuit {
	if cc.err != nil {
		return cc
	}
	if c == nil {
		cc.err = fmt.Errorf("optics: adding nil component")
		return cc
	}
	if sub, ok := c.(*Circuit); ok && sub.Err() != nil {
		cc.err = fmt.Errorf("optics: adding errored circuit: %w", sub.Err())
		return cc
	}
	if mode < 0 || mode+c.Modes() > cc.m {
		cc.err = fmt.Errorf("optics: %s spanning modes [%d, %d) does not fit a %d-mode circuit",
			c.Kind(), mode, mode+c.Modes(), cc.m)
		return cc
	}
	cc.places = append(cc.places, Placement{Mode: mode, Component: c.Copy()})
	return cc
}

// Err returns the first build error, if any.
func (cc *Circuit) Err() error { return cc.err }

// Modes returns the number of modes the circuit spans.
func (cc *Circuit) Modes() int { return cc.m }

// Kind returns KindCircuit.
func (cc *Circuit) Kind() Kind { return KindCircuit }

// Components returns the placements in application order. Callers must not
// modify the returned components.
func (cc *Circuit) Components() []Placement {
	out := make([]Placement, len(cc.places))
	copy(out, cc.places)
	return out
}

// Unitary returns the whole-circuit transfer matrix, the product of the
// embedded component matrices in application order. It panics if a build
// error is latched.
func (cc *Circuit) Unitary() *mat.CDense {
	if cc.err != nil {
		panic(fmt.Sprintf("optics: unitary of errored circuit: %v", cc.err))
	}
	u := identity(cc.m)
	for _, p := range cc.places {
		step := embed(p.Component.Unitary(), p.Mode, cc.m)
		next := mat.NewCDense(cc.m, cc.m, nil)
		cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, step.RawCMatrix(), u.RawCMatrix(), 0, next.RawCMatrix())
		u = next
	}
	return u
}

// Copy returns an independent deep copy.
func (cc *Circuit) Copy() Component {
	c := &Circuit{m: cc.m, err: cc.err}
	c.places = make([]Placement, len(cc.places))
	for i, p := range cc.places {
		c.places[i] = Placement{Mode: p.Mode, Component: p.Component.Copy()}
	}
	return c
}

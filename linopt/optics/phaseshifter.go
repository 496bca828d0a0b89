package optics

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// A PhaseShifter advances the phase of a single mode by Phi radians.
type PhaseShifter struct {
	Phi float64
}

// Modes returns 1.
func (p *PhaseShifter) Modes() int { return 1 }

// Kind returns KindPhaseShifter.
func (p *PhaseShifter) Kind() Kind { return KindPhaseShifter }

// Unitary returns the 1x1 transfer matrix [e^{iφ}].
func (p *PhaseShifter) Unitary() *mat.CDense {
	u := mat.NewCDense(1, 1, nil)
	u.Set(0, 0, cmplx.Rect(1, p.Phi))
	return u
}

// Copy returns an independent copy.
func (p *PhaseShifter) Copy() Component {
	c := *p
	return &c
}

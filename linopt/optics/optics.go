// Package optics provides the linear components an optical circuit is built
// from, and computes their unitary transfer matrices.
package optics

import "gonum.org/v1/gonum/mat"

// Kind discriminates the closed set of component types.
type Kind int

const (
	KindBeamSplitter Kind = iota
	KindPhaseShifter
	KindPermutation
	KindUnitary
	KindCircuit
)

// String returns a short human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindBeamSplitter:
		return "beam splitter"
	case KindPhaseShifter:
		return "phase shifter"
	case KindPermutation:
		return "permutation"
	case KindUnitary:
		return "unitary"
	case KindCircuit:
		return "circuit"
	}
	return "unknown"
}

// A Component is a linear optical element spanning a contiguous block of
// modes.
type Component interface {
	// Modes returns the number of modes the component spans.
	Modes() int
	// Kind identifies the concrete component type.
	Kind() Kind
	// Unitary returns the component's transfer matrix, freshly allocated.
	Unitary() *mat.CDense
	// Copy returns an independent deep copy of the component.
	Copy() Component
}

func cloneCDense(u *mat.CDense) *mat.CDense {
	r, c := u.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, u.At(i, j))
		}
	}
	return out
}

func identity(n int) *mat.CDense {
	u := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		u.Set(i, i, 1)
	}
	return u
}

// embed returns the n-mode unitary acting as u on the contiguous block
// starting at mode and as the identity elsewhere.
func embed(u *mat.CDense, mode, n int) *mat.CDense {
	out := identity(n)
	k, _ := u.Dims()
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			out.Set(mode+i, mode+j, u.At(i, j))
		}
	}
	return out
}

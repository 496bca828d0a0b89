package optics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// A Permutation reroutes modes without mixing them: input mode i exits on
// mode v[i].
type Permutation struct {
	vector []int
}

// NewPermutation returns the permutation routing input mode i to output
// mode vector[i]. It panics unless vector is a bijection on
// [0, len(vector)).
func NewPermutation(vector []int) *Permutation {
	seen := make([]bool, len(vector))
	for _, v := range vector {
		if v < 0 || v >= len(vector) || seen[v] {
			panic(fmt.Sprintf("optics: %v is not a permutation of [0, %d)", vector, len(vector)))
		}
		seen[v] = true
	}
	c := make([]int, len(vector))
	copy(c, vector)
	return &Permutation{vector: c}
}

// Modes returns the number of modes the permutation spans.
func (p *Permutation) Modes() int { return len(p.vector) }

// Kind returns KindPermutation.
func (p *Permutation) Kind() Kind { return KindPermutation }

// Vector returns a copy of the routing vector.
func (p *Permutation) Vector() []int {
	c := make([]int, len(p.vector))
	copy(c, p.vector)
	return c
}

// IsIdentity reports whether the permutation leaves every mode in place.
func (p *Permutation) IsIdentity() bool {
	for i, v := range p.vector {
		if v != i {
			return false
		}
	}
	return true
}

// Inverse returns the permutation undoing p.
func (p *Permutation) Inverse() *Permutation {
	inv := make([]int, len(p.vector))
	for i, v := range p.vector {
		inv[v] = i
	}
	return &Permutation{vector: inv}
}

// Unitary returns the permutation matrix with entry [v[i], i] = 1.
func (p *Permutation) Unitary() *mat.CDense {
	n := len(p.vector)
	u := mat.NewCDense(n, n, nil)
	for i, v := range p.vector {
		u.Set(v, i, 1)
	}
	return u
}

// Copy returns an independent copy.
func (p *Permutation) Copy() Component {
	return &Permutation{vector: p.Vector()}
}

package optics

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// A Unitary applies an arbitrary fixed transfer matrix to its modes.
type Unitary struct {
	u *mat.CDense
}

const unitaryTol = 1e-9

// NewUnitary returns the component applying u. The matrix is copied. It
// panics if u is not square or not unitary to within 1e-9.
func NewUnitary(u *mat.CDense) *Unitary {
	r, c := u.Dims()
	if r != c {
		panic(fmt.Sprintf("optics: %dx%d matrix is not square", r, c))
	}
	if !isUnitary(u) {
		panic("optics: matrix is not unitary")
	}
	return &Unitary{u: cloneCDense(u)}
}

func isUnitary(u *mat.CDense) bool {
	n, _ := u.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			// Inner product of columns i and j.
			var dot complex128
			for k := 0; k < n; k++ {
				dot += cmplx.Conj(u.At(k, i)) * u.At(k, j)
			}
			want := complex128(0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(dot-want) > unitaryTol {
				return false
			}
		}
	}
	return true
}

// Modes returns the matrix dimension.
func (u *Unitary) Modes() int {
	n, _ := u.u.Dims()
	return n
}

// Kind returns KindUnitary.
func (u *Unitary) Kind() Kind { return KindUnitary }

// Unitary returns a copy of the transfer matrix.
func (u *Unitary) Unitary() *mat.CDense { return cloneCDense(u.u) }

// Copy returns an independent copy.
func (u *Unitary) Copy() Component { return &Unitary{u: cloneCDense(u.u)} }

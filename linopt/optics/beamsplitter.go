package optics

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// A BeamSplitter couples two adjacent modes. R is the intensity
// reflectivity; PhiA, PhiB and PhiD are port phases in radians. Its
// transfer matrix is
//
//	[  sqrt(R)·e^{iφa}          i·sqrt(1-R)·e^{iφd}     ]
//	[  i·sqrt(1-R)·e^{iφb}      sqrt(R)·e^{i(φb+φd-φa)} ]
//
// which is unitary for every parameter choice. The zero value fully crosses
// the two modes.
type BeamSplitter struct {
	R                float64
	PhiA, PhiB, PhiD float64
}

// NewBeamSplitter returns a beam splitter of reflectivity r with all port
// phases zero. It panics unless 0 <= r <= 1.
func NewBeamSplitter(r float64) *BeamSplitter {
	if r < 0 || r > 1 {
		panic(fmt.Sprintf("optics: reflectivity %v outside [0, 1]", r))
	}
	return &BeamSplitter{R: r}
}

// Modes returns 2.
func (b *BeamSplitter) Modes() int { return 2 }

// Kind returns KindBeamSplitter.
func (b *BeamSplitter) Kind() Kind { return KindBeamSplitter }

// Unitary returns the 2x2 transfer matrix.
func (b *BeamSplitter) Unitary() *mat.CDense {
	if b.R < 0 || b.R > 1 {
		panic(fmt.Sprintf("optics: reflectivity %v outside [0, 1]", b.R))
	}
	r := complex(math.Sqrt(b.R), 0)
	t := complex(0, math.Sqrt(1-b.R))
	u := mat.NewCDense(2, 2, nil)
	u.Set(0, 0, r*cmplx.Rect(1, b.PhiA))
	u.Set(0, 1, t*cmplx.Rect(1, b.PhiD))
	u.Set(1, 0, t*cmplx.Rect(1, b.PhiB))
	u.Set(1, 1, r*cmplx.Rect(1, b.PhiB+b.PhiD-b.PhiA))
	return u
}

// Copy returns an independent copy.
func (b *BeamSplitter) Copy() Component {
	c := *b
	return &c
}

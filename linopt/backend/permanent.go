package backend

import (
	"math"
	"math/bits"

	"gonum.org/v1/gonum/mat"

	"github.com/alan-christopher/linopt/go/linopt/fock"
)

// permanent evaluates the matrix permanent by Ryser's formula with
// Gray-code column updates, O(n·2^n). The permanent of the empty matrix is
// 1.
func permanent(a *mat.CDense) complex128 {
	n, _ := a.Dims()
	if n == 0 {
		return 1
	}
	rowSums := make([]complex128, n)
	var total complex128
	for k := uint64(1); k < uint64(1)<<n; k++ {
		g := k ^ (k >> 1)
		j := bits.TrailingZeros64(k)
		if g&(uint64(1)<<j) != 0 {
			for i := 0; i < n; i++ {
				rowSums[i] += a.At(i, j)
			}
		} else {
			for i := 0; i < n; i++ {
				rowSums[i] -= a.At(i, j)
			}
		}
		prod := complex128(1)
		for i := 0; i < n; i++ {
			prod *= rowSums[i]
		}
		if bits.OnesCount64(g)%2 == n%2 {
			total += prod
		} else {
			total -= prod
		}
	}
	return total
}

// amplitude returns the transition amplitude from in to out through the
// m-mode unitary u: perm(U_sub) / sqrt(prod s_i! prod t_j!), where U_sub
// repeats column c in.Get(c) times and row r out.Get(r) times.
func amplitude(u *mat.CDense, in, out fock.State) complex128 {
	n := in.Photons()
	if out.Photons() != n {
		return 0
	}
	if n == 0 {
		return 1
	}
	rows := photonModes(out)
	cols := photonModes(in)
	sub := mat.NewCDense(n, n, nil)
	for i, r := range rows {
		for j, c := range cols {
			sub.Set(i, j, u.At(r, c))
		}
	}
	norm := 1.0
	for i := 0; i < in.Size(); i++ {
		norm *= factorial(in.Get(i))
	}
	for i := 0; i < out.Size(); i++ {
		norm *= factorial(out.Get(i))
	}
	return permanent(sub) / complex(math.Sqrt(norm), 0)
}

// photonModes lists one mode index per photon, e.g. |2,0,1> -> [0,0,2].
func photonModes(s fock.State) []int {
	out := make([]int, 0, s.Photons())
	for i := 0; i < s.Size(); i++ {
		for k := 0; k < s.Get(i); k++ {
			out = append(out, i)
		}
	}
	return out
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

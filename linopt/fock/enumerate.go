package fock

import "gonum.org/v1/gonum/stat/combin"

// Count returns the number of Fock states placing exactly the given photons
// across the given modes.
func Count(modes, photons int) int {
	if modes <= 0 || photons < 0 {
		return 0
	}
	return combin.Binomial(photons+modes-1, modes-1)
}

// Enumerate returns every Fock state of exactly the given photon number
// across the given modes, ordered with photons packed into earlier modes
// first: |n,0,...,0> down to |0,...,0,n>. The order is deterministic, so
// repeated enumerations of the same space agree entry for entry.
func Enumerate(modes, photons int) []State {
	if modes <= 0 || photons < 0 {
		return nil
	}
	out := make([]State, 0, Count(modes, photons))
	counts := make([]int, modes)
	var fill func(mode, left int)
	fill = func(mode, left int) {
		if mode == modes-1 {
			counts[mode] = left
			out = append(out, NewState(counts))
			return
		}
		for k := left; k >= 0; k-- {
			counts[mode] = k
			fill(mode+1, left-k)
		}
	}
	fill(0, photons)
	return out
}

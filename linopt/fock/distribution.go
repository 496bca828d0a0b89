package fock

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// A Distribution is a discrete probability distribution over Fock states.
// Entries keep their insertion order, so iteration and sampling are
// reproducible for a fixed build sequence and random source. The zero value
// via NewDistribution is empty.
type Distribution struct {
	states []State
	probs  []float64
	index  map[string]int
}

// NewDistribution returns an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{index: make(map[string]int)}
}

// Len returns the number of distinct states carrying mass.
func (d *Distribution) Len() int { return len(d.states) }

// At returns the i-th entry in insertion order.
func (d *Distribution) At(i int) (State, float64) { return d.states[i], d.probs[i] }

// Prob returns the probability mass on s, zero if absent.
func (d *Distribution) Prob(s State) float64 {
	if i, ok := d.index[s.String()]; ok {
		return d.probs[i]
	}
	return 0
}

// Add accumulates mass p onto state s, appending a new entry the first time
// s is seen.
func (d *Distribution) Add(s State, p float64) {
	k := s.String()
	if i, ok := d.index[k]; ok {
		d.probs[i] += p
		return
	}
	d.index[k] = len(d.states)
	d.states = append(d.states, s)
	d.probs = append(d.probs, p)
}

// States returns the states in insertion order. The slice is shared; do not
// modify it.
func (d *Distribution) States() []State { return d.states }

// Sum returns the total probability mass.
func (d *Distribution) Sum() float64 { return floats.Sum(d.probs) }

// Scale multiplies every entry's mass by f.
func (d *Distribution) Scale(f float64) {
	if len(d.probs) > 0 {
		floats.Scale(f, d.probs)
	}
}

// Normalize rescales the distribution to unit mass. A distribution with no
// mass is left unchanged.
func (d *Distribution) Normalize() {
	s := d.Sum()
	if s == 0 {
		return
	}
	d.Scale(1 / s)
}

// Copy returns an independent copy of d.
func (d *Distribution) Copy() *Distribution {
	c := NewDistribution()
	for i, s := range d.states {
		c.Add(s, d.probs[i])
	}
	return c
}

// Tensor returns the direct product of d and e: every pairing of a state
// from d with a state from e, concatenated, with multiplied mass. The left
// factor varies slowest. An empty d acts as the identity, so distributions
// can be built up by repeated multiplication.
func (d *Distribution) Tensor(e *Distribution) *Distribution {
	if d.Len() == 0 {
		return e.Copy()
	}
	t := NewDistribution()
	for i, s := range d.states {
		for j, u := range e.states {
			t.Add(s.Concat(u), d.probs[i]*e.probs[j])
		}
	}
	return t
}

// Sample draws n states from d with replacement, weighted by mass. The
// distribution need not be normalized. Sample panics on an empty or
// massless distribution.
func (d *Distribution) Sample(n int, r *rand.Rand) []State {
	total := d.Sum()
	if d.Len() == 0 || total <= 0 {
		panic("fock: sampling from a distribution with no mass")
	}
	cum := make([]float64, len(d.probs))
	floats.CumSum(cum, d.probs)
	out := make([]State, n)
	for i := range out {
		x := r.Float64() * total
		j := sort.SearchFloat64s(cum, x)
		if j == len(cum) {
			j--
		}
		out[i] = d.states[j]
	}
	return out
}

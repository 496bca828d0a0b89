package backend

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/alan-christopher/linopt/go/linopt/fock"
)

// Naive is a strong-simulation backend. It serves exact output
// distributions by evaluating one permanent per output state, and does not
// sample.
type Naive struct{}

// PreferredCommand returns CommandProbs.
func (Naive) PreferredCommand() Command { return CommandProbs }

// NewSimulator binds the backend to a circuit unitary.
func (Naive) NewSimulator(u *mat.CDense) (Simulator, error) {
	c, err := cloneSquare(u)
	if err != nil {
		return nil, err
	}
	return &naiveSim{u: c}, nil
}

type naiveSim struct {
	u *mat.CDense
}

func (s *naiveSim) Sample(in fock.State) (fock.State, error) {
	return fock.State{}, fmt.Errorf("backend: naive backend serves probs, not samples")
}

func (s *naiveSim) AllStateProbs(in fock.State) ProbIterator {
	m, _ := s.u.Dims()
	if in.Size() != m {
		return &probIter{err: fmt.Errorf("backend: input %v spans %d modes, circuit has %d", in, in.Size(), m)}
	}
	return &probIter{u: s.u, in: in, states: fock.Enumerate(m, in.Photons()), i: -1}
}

type probIter struct {
	u      *mat.CDense
	in     fock.State
	states []fock.State
	i      int
	p      float64
	err    error
}

func (it *probIter) Next() bool {
	if it.err != nil || it.i+1 >= len(it.states) {
		return false
	}
	it.i++
	a := amplitude(it.u, it.in, it.states[it.i])
	it.p = real(a)*real(a) + imag(a)*imag(a)
	return true
}

func (it *probIter) State() fock.State { return it.states[it.i] }

func (it *probIter) Prob() float64 { return it.p }

func (it *probIter) Err() error { return it.err }

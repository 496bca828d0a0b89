// Package backend provides the simulation backends a processor drives:
// the interfaces it needs from them, and reference implementations that
// evaluate output amplitudes exactly as permanents of submatrices of the
// circuit unitary.
package backend

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/alan-christopher/linopt/go/linopt/fock"
)

// A Command names a simulation service a backend can serve natively.
type Command string

const (
	// CommandSamples serves single-shot output draws.
	CommandSamples Command = "samples"
	// CommandProbs serves exact output distributions.
	CommandProbs Command = "probs"
)

// A Backend is a family of simulators sharing one simulation strategy.
type Backend interface {
	// PreferredCommand reports the command the family serves natively.
	PreferredCommand() Command
	// NewSimulator binds the strategy to a circuit unitary, which must be
	// square. The matrix is copied.
	NewSimulator(u *mat.CDense) (Simulator, error)
}

// A Simulator runs one bound circuit.
type Simulator interface {
	// Sample draws a single output state for the given input state.
	Sample(in fock.State) (fock.State, error)
	// AllStateProbs iterates the exact output distribution for the given
	// input state. Each call starts a fresh pass.
	AllStateProbs(in fock.State) ProbIterator
}

// A ProbIterator walks (state, probability) pairs:
//
//	for it.Next() {
//		use(it.State(), it.Prob())
//	}
//	if err := it.Err(); err != nil { ... }
type ProbIterator interface {
	Next() bool
	State() fock.State
	Prob() float64
	Err() error
}

func cloneSquare(u *mat.CDense) (*mat.CDense, error) {
	r, c := u.Dims()
	if r != c {
		return nil, fmt.Errorf("backend: %dx%d circuit matrix is not square", r, c)
	}
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, u.At(i, j))
		}
	}
	return out, nil
}

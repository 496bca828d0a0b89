package backend

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/alan-christopher/linopt/go/linopt/fock"
)

// DefaultSamplerSeed seeds a Sampler's random source when none is supplied,
// keeping runs reproducible by default.
var DefaultSamplerSeed int64 = 42

// SamplerOpts holds the parameters for constructing a Sampler.
type SamplerOpts struct {
	// Rand supplies the randomness behind sample draws. Defaults to a
	// source seeded with DefaultSamplerSeed.
	Rand *rand.Rand
}

// A Sampler is a weak-simulation backend. It serves single-shot samples,
// drawing from the exact output distribution of each distinct input, which
// it computes once and caches.
type Sampler struct {
	rand *rand.Rand
}

// NewSampler constructs a Sampler from opts.
func NewSampler(opts SamplerOpts) *Sampler {
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(DefaultSamplerSeed))
	}
	return &Sampler{rand: r}
}

// PreferredCommand returns CommandSamples.
func (s *Sampler) PreferredCommand() Command { return CommandSamples }

// NewSimulator binds the backend to a circuit unitary. Simulators share the
// Sampler's random source, so draws interleave deterministically across
// them for a fixed seed.
func (s *Sampler) NewSimulator(u *mat.CDense) (Simulator, error) {
	c, err := cloneSquare(u)
	if err != nil {
		return nil, err
	}
	return &samplerSim{u: c, rand: s.rand, dists: make(map[string]*fock.Distribution)}, nil
}

type samplerSim struct {
	u     *mat.CDense
	rand  *rand.Rand
	dists map[string]*fock.Distribution
}

func (s *samplerSim) distFor(in fock.State) (*fock.Distribution, error) {
	m, _ := s.u.Dims()
	if in.Size() != m {
		return nil, fmt.Errorf("backend: input %v spans %d modes, circuit has %d", in, in.Size(), m)
	}
	if d, ok := s.dists[in.String()]; ok {
		return d, nil
	}
	d := fock.NewDistribution()
	for _, out := range fock.Enumerate(m, in.Photons()) {
		a := amplitude(s.u, in, out)
		if p := real(a)*real(a) + imag(a)*imag(a); p > 0 {
			d.Add(out, p)
		}
	}
	s.dists[in.String()] = d
	return d, nil
}

func (s *samplerSim) Sample(in fock.State) (fock.State, error) {
	d, err := s.distFor(in)
	if err != nil {
		return fock.State{}, err
	}
	return d.Sample(1, s.rand)[0], nil
}

func (s *samplerSim) AllStateProbs(in fock.State) ProbIterator {
	d, err := s.distFor(in)
	if err != nil {
		return &distIter{err: err}
	}
	return &distIter{d: d, i: -1}
}

type distIter struct {
	d   *fock.Distribution
	i   int
	err error
}

func (it *distIter) Next() bool {
	if it.err != nil || it.i+1 >= it.d.Len() {
		return false
	}
	it.i++
	return true
}

func (it *distIter) State() fock.State {
	s, _ := it.d.At(it.i)
	return s
}

func (it *distIter) Prob() float64 {
	_, p := it.d.At(it.i)
	return p
}

func (it *distIter) Err() error { return it.err }

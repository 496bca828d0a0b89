package backend

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/alan-christopher/linopt/go/linopt/fock"
	"github.com/alan-christopher/linopt/go/linopt/optics"
)

var (
	_ Backend = Naive{}
	_ Backend = (*Sampler)(nil)
)

func TestPermanent(t *testing.T) {
	i3 := mat.NewCDense(3, 3, []complex128{1, 0, 0, 0, 1, 0, 0, 0, 1})
	ones3 := mat.NewCDense(3, 3, []complex128{1, 1, 1, 1, 1, 1, 1, 1, 1})
	c2 := mat.NewCDense(2, 2, []complex128{complex(1, 1), 2, 3, complex(0, 4)})
	tcs := []struct {
		name string
		m    *mat.CDense
		want complex128
	}{
		{name: "identity", m: i3, want: 1},
		{name: "all ones", m: ones3, want: 6},
		{name: "complex 2x2", m: c2, want: complex(2, 4)},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := permanent(tc.m)
			if math.Abs(real(got-tc.want)) > 1e-12 || math.Abs(imag(got-tc.want)) > 1e-12 {
				t.Errorf("permanent = %v, want %v", got, tc.want)
			}
		})
	}
}

func hom(t *testing.T) Simulator {
	t.Helper()
	sim, err := Naive{}.NewSimulator((&optics.BeamSplitter{R: 0.5}).Unitary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sim
}

func TestHongOuMandel(t *testing.T) {
	// Two photons meeting on a balanced beam splitter always bunch.
	it := hom(t).AllStateProbs(fock.MustParse("|1,1>"))
	want := map[string]float64{"|2,0>": 0.5, "|1,1>": 0, "|0,2>": 0.5}
	seen := 0
	for it.Next() {
		seen++
		w, ok := want[it.State().String()]
		if !ok {
			t.Fatalf("unexpected output state %v", it.State())
		}
		if math.Abs(it.Prob()-w) > 1e-12 {
			t.Errorf("P(%v) = %v, want %v", it.State(), it.Prob(), w)
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("unexpected iterator error: %v", err)
	}
	if seen != len(want) {
		t.Errorf("iterator yielded %d states, want %d", seen, len(want))
	}
}

func TestNaiveProbsSumToOne(t *testing.T) {
	u := optics.NewCircuit(3).
		Add(0, &optics.BeamSplitter{R: 0.3, PhiB: 0.7}).
		Add(1, &optics.BeamSplitter{R: 0.6, PhiD: -1.2}).
		Unitary()
	sim, err := Naive{}.NewSimulator(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, in := range []string{"|1,0,0>", "|1,1,0>", "|2,0,1>"} {
		sum := 0.0
		it := sim.AllStateProbs(fock.MustParse(in))
		for it.Next() {
			sum += it.Prob()
		}
		if err := it.Err(); err != nil {
			t.Fatalf("unexpected iterator error: %v", err)
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("probabilities for input %s sum to %v, want 1", in, sum)
		}
	}
}

func TestNaiveDoesNotSample(t *testing.T) {
	if _, err := hom(t).Sample(fock.MustParse("|1,1>")); err == nil {
		t.Error("Sample on the naive backend succeeded, want error")
	}
}

func TestVacuumPassesThrough(t *testing.T) {
	it := hom(t).AllStateProbs(fock.MustParse("|0,0>"))
	if !it.Next() {
		t.Fatal("no output states for the vacuum input")
	}
	if got := it.State(); !got.Equal(fock.MustParse("|0,0>")) || it.Prob() != 1 {
		t.Errorf("vacuum maps to (%v, %v), want (|0,0>, 1)", got, it.Prob())
	}
	if it.Next() {
		t.Error("vacuum input yielded more than one output state")
	}
}

func TestSamplerFollowsPermutation(t *testing.T) {
	s := NewSampler(SamplerOpts{})
	sim, err := s.NewSimulator(optics.NewPermutation([]int{1, 2, 0}).Unitary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 25; i++ {
		got, err := sim.Sample(fock.MustParse("|1,0,0>"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := fock.MustParse("|0,1,0>"); !got.Equal(want) {
			t.Fatalf("Sample = %v, want %v", got, want)
		}
	}
}

func TestSamplerDeterministicAcrossRuns(t *testing.T) {
	run := func() []string {
		s := NewSampler(SamplerOpts{Rand: rand.New(rand.NewSource(99))})
		sim, err := s.NewSimulator((&optics.BeamSplitter{R: 0.5}).Unitary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var out []string
		for i := 0; i < 20; i++ {
			st, err := sim.Sample(fock.MustParse("|1,1>"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			out = append(out, st.String())
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d differs between identically seeded runs: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestSamplerOmitsZeroProbStates(t *testing.T) {
	s := NewSampler(SamplerOpts{})
	sim, err := s.NewSimulator((&optics.BeamSplitter{R: 0.5}).Unitary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	it := sim.AllStateProbs(fock.MustParse("|1,1>"))
	n := 0
	for it.Next() {
		if it.Prob() == 0 {
			t.Errorf("iterator yielded zero-probability state %v", it.State())
		}
		n++
	}
	if n != 2 {
		t.Errorf("iterator yielded %d states, want 2 (the bunched pair)", n)
	}
}

func TestInputSizeMismatch(t *testing.T) {
	in := fock.MustParse("|1,0,0>")
	if it := hom(t).AllStateProbs(in); it.Next() || it.Err() == nil {
		t.Error("naive iterator accepted a mis-sized input")
	}
	s := NewSampler(SamplerOpts{})
	sim, err := s.NewSimulator((&optics.BeamSplitter{R: 0.5}).Unitary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sim.Sample(in); err == nil {
		t.Error("sampler accepted a mis-sized input")
	}
}

func TestNonSquareRejected(t *testing.T) {
	rect := mat.NewCDense(2, 3, nil)
	if _, err := (Naive{}).NewSimulator(rect); err == nil {
		t.Error("Naive accepted a non-square matrix")
	}
	if _, err := NewSampler(SamplerOpts{}).NewSimulator(rect); err == nil {
		t.Error("Sampler accepted a non-square matrix")
	}
}

package linopt

import (
	"errors"
	"testing"

	"github.com/alan-christopher/linopt/go/linopt/backend"
	"github.com/alan-christopher/linopt/go/linopt/fock"
	"github.com/alan-christopher/linopt/go/linopt/optics"
)

func TestNewProcessorValidation(t *testing.T) {
	bs := optics.NewBeamSplitter(0.5)
	seeded := optics.NewCircuit(2)
	seeded.Add(0, bs)
	errored := optics.NewCircuit(2)
	errored.Add(5, bs)

	tcs := []struct {
		name    string
		opts    ProcessorOpts
		wantErr bool
	}{
		{name: "modes only", opts: ProcessorOpts{Backend: backend.Naive{}, Modes: 2}},
		{name: "circuit only", opts: ProcessorOpts{Backend: backend.Naive{}, Circuit: seeded}},
		{name: "no backend", opts: ProcessorOpts{Modes: 2}, wantErr: true},
		{name: "neither modes nor circuit", opts: ProcessorOpts{Backend: backend.Naive{}}, wantErr: true},
		{name: "both modes and circuit", opts: ProcessorOpts{Backend: backend.Naive{}, Modes: 2, Circuit: seeded}, wantErr: true},
		{name: "negative modes", opts: ProcessorOpts{Backend: backend.Naive{}, Modes: -1}, wantErr: true},
		{name: "errored circuit", opts: ProcessorOpts{Backend: backend.Naive{}, Circuit: errored}, wantErr: true},
		{name: "threshold too large", opts: ProcessorOpts{Backend: backend.Naive{}, Modes: 2, MinP: 1.5}, wantErr: true},
		{name: "negative threshold", opts: ProcessorOpts{Backend: backend.Naive{}, Modes: 2, MinP: -0.1}, wantErr: true},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProcessor(tc.opts)
			if gotErr := err != nil; gotErr != tc.wantErr {
				t.Errorf("got error %v, want error %t", err, tc.wantErr)
			}
		})
	}
}

func TestNewProcessorCopiesSeedCircuit(t *testing.T) {
	c := optics.NewCircuit(3)
	c.Add(0, optics.NewBeamSplitter(0.5))
	p, err := NewProcessor(ProcessorOpts{Backend: backend.Naive{}, Circuit: c})
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	if got, want := p.Modes(), 3; got != want {
		t.Errorf("got %d modes, want %d", got, want)
	}

	c.Add(1, &optics.PhaseShifter{Phi: 1})
	if got, want := len(p.Components()), 1; got != want {
		t.Errorf("got %d placements after mutating the seed, want %d", got, want)
	}
}

func TestHeraldingShrinksModesOfInterest(t *testing.T) {
	p := newTestProcessor(t, 3)
	p.Add(0, optics.NewBeamSplitter(0.5)).AddHerald(2, 0, "")
	if err := p.Err(); err != nil {
		t.Fatalf("build: %v", err)
	}
	if got, want := p.Modes(), 2; got != want {
		t.Errorf("got %d modes of interest, want %d", got, want)
	}
	if got, want := p.CircuitSize(), 3; got != want {
		t.Errorf("got circuit size %d, want %d", got, want)
	}
	heralds := p.Heralds()
	if len(heralds) != 1 || heralds[2] != 0 {
		t.Errorf("got heralds %v, want mode 2 expecting 0", heralds)
	}
}

func TestHeraldPortConflicts(t *testing.T) {
	t.Run("port over herald", func(t *testing.T) {
		p := newTestProcessor(t, 3)
		p.AddHerald(1, 0, "").AddPort(0, NewDataPort(EncodingDualRail, "q"), LocationInput)
		var ume *UnavailableModeError
		if !errors.As(p.Err(), &ume) {
			t.Fatalf("got %v, want an UnavailableModeError", p.Err())
		}
	})
	t.Run("herald over port", func(t *testing.T) {
		p := newTestProcessor(t, 3)
		p.AddPort(0, NewDataPort(EncodingDualRail, "q"), LocationInput).AddHerald(1, 0, "")
		var ume *UnavailableModeError
		if !errors.As(p.Err(), &ume) {
			t.Fatalf("got %v, want an UnavailableModeError", p.Err())
		}
	})
}

func TestAddOntoClosedMode(t *testing.T) {
	p := newTestProcessor(t, 3)
	p.AddHerald(2, 0, "").Add(1, optics.NewBeamSplitter(0.5))
	var ume *UnavailableModeError
	if !errors.As(p.Err(), &ume) {
		t.Fatalf("got %v, want an UnavailableModeError", p.Err())
	}
	if !equalInts(ume.Modes, []int{2}) {
		t.Errorf("got bad modes %v, want [2]", ume.Modes)
	}
}

func TestPostSelectionSealsProcessor(t *testing.T) {
	p := newTestProcessor(t, 2)
	p.SetPostSelect(func(fock.State) bool { return true }).Add(0, optics.NewBeamSplitter(0.5))
	if !errors.Is(p.Err(), ErrSealed) {
		t.Fatalf("got %v, want ErrSealed", p.Err())
	}
}

func TestClearPostSelectUnseals(t *testing.T) {
	p := newTestProcessor(t, 2)
	p.SetPostSelect(func(fock.State) bool { return true }).
		ClearPostSelect().
		Add(0, optics.NewBeamSplitter(0.5))
	if err := p.Err(); err != nil {
		t.Fatalf("build after clearing: %v", err)
	}
	if p.PostSelect() != nil {
		t.Error("rule survives ClearPostSelect")
	}
}

func TestAddRejectsUnknownItems(t *testing.T) {
	p := newTestProcessor(t, 2)
	p.Add(0, 42)
	if p.Err() == nil {
		t.Error("no error for an int item")
	}
}

func TestBuildErrorLatches(t *testing.T) {
	p := newTestProcessor(t, 2)
	p.Add(5, optics.NewBeamSplitter(0.5))
	first := p.Err()
	if first == nil {
		t.Fatal("no error for an out-of-range anchor")
	}
	p.Add(0, optics.NewBeamSplitter(0.5)).AddHerald(1, 0, "")
	if got := p.Err(); got != first {
		t.Errorf("got %v after later calls, want the first error %v", got, first)
	}
	if got, want := len(p.Components()), 0; got != want {
		t.Errorf("got %d placements on a latched processor, want %d", got, want)
	}
}

func TestComposeAtTailNeedsNoRouting(t *testing.T) {
	child := newTestProcessor(t, 3)
	child.Add(0, optics.NewBeamSplitter(0.5)).AddHerald(2, 1, "anc")
	parent := newTestProcessor(t, 4)
	parent.Add(2, child)
	if err := parent.Err(); err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got, want := parent.Modes(), 4; got != want {
		t.Errorf("got %d modes, want %d", got, want)
	}
	if got, want := parent.CircuitSize(), 5; got != want {
		t.Errorf("got circuit size %d, want %d", got, want)
	}
	heralds := parent.Heralds()
	if len(heralds) != 1 || heralds[4] != 1 {
		t.Errorf("got heralds %v, want mode 4 expecting 1", heralds)
	}
	if got, want := parent.OutputPortAt(4).Name(), "anc"; got != want {
		t.Errorf("got herald name %q, want %q", got, want)
	}
	comps := parent.Components()
	if len(comps) != 1 {
		t.Fatalf("got %d placements, want 1", len(comps))
	}
	if comps[0].Mode != 2 || comps[0].Component.Kind() != optics.KindBeamSplitter {
		t.Errorf("got %v at mode %d, want a beam splitter at 2", comps[0].Component.Kind(), comps[0].Mode)
	}
}

func TestComposeRoutesAroundAppendedHeralds(t *testing.T) {
	child := newTestProcessor(t, 3)
	child.Add(0, optics.NewBeamSplitter(0.5)).AddHerald(2, 1, "")
	parent := newTestProcessor(t, 4)
	parent.Add(0, child)
	if err := parent.Err(); err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got, want := parent.CircuitSize(), 5; got != want {
		t.Errorf("got circuit size %d, want %d", got, want)
	}
	comps := parent.Components()
	if len(comps) != 3 {
		t.Fatalf("got %d placements, want 3", len(comps))
	}
	in, ok := comps[0].Component.(*optics.Permutation)
	if !ok {
		t.Fatalf("placement 0 is a %v, want a permutation", comps[0].Component.Kind())
	}
	if got, want := in.Vector(), []int{0, 1, 3, 4, 2}; !equalInts(got, want) {
		t.Errorf("got opening permutation %v, want %v", got, want)
	}
	out, ok := comps[2].Component.(*optics.Permutation)
	if !ok {
		t.Fatalf("placement 2 is a %v, want a permutation", comps[2].Component.Kind())
	}
	if got, want := out.Vector(), []int{0, 1, 4, 2, 3}; !equalInts(got, want) {
		t.Errorf("got closing permutation %v, want %v", got, want)
	}
	heralds := parent.Heralds()
	if len(heralds) != 1 || heralds[4] != 1 {
		t.Errorf("got heralds %v, want mode 4 expecting 1", heralds)
	}
}

func TestComposeMergesAdjacentPermutations(t *testing.T) {
	child := newTestProcessor(t, 2)
	child.Add(0, optics.NewBeamSplitter(0.3))
	p := newTestProcessor(t, 2)
	p.AddMapped([]int{1, 0}, child).AddMapped([]int{1, 0}, child)
	if err := p.Err(); err != nil {
		t.Fatalf("compose: %v", err)
	}
	comps := p.Components()
	if len(comps) != 5 {
		t.Fatalf("got %d placements, want 5", len(comps))
	}
	mid, ok := comps[2].Component.(*optics.Permutation)
	if !ok {
		t.Fatalf("placement 2 is a %v, want the merged permutation", comps[2].Component.Kind())
	}
	if !mid.IsIdentity() {
		t.Errorf("got merged permutation %v, want the identity", mid.Vector())
	}
	for _, i := range []int{0, 4} {
		perm, ok := comps[i].Component.(*optics.Permutation)
		if !ok {
			t.Fatalf("placement %d is a %v, want a permutation", i, comps[i].Component.Kind())
		}
		if got, want := perm.Vector(), []int{1, 0}; !equalInts(got, want) {
			t.Errorf("placement %d: got %v, want %v", i, got, want)
		}
	}
}

func TestComposeReplacePorts(t *testing.T) {
	child := newTestProcessor(t, 1)
	child.AddPort(0, NewDataPort(EncodingNone, "new"), LocationOutput)

	t.Run("replaced", func(t *testing.T) {
		parent := newTestProcessor(t, 1)
		parent.AddPort(0, NewDataPort(EncodingNone, "old"), LocationOutput)
		parent.Attach(AttachRequest{Anchor: 0, Item: child, ReplacePorts: true})
		if err := parent.Err(); err != nil {
			t.Fatalf("compose: %v", err)
		}
		port := parent.OutputPortAt(0)
		if port == nil || port.Name() != "new" {
			t.Errorf("got port %v, want the child's", port)
		}
	})
	t.Run("kept", func(t *testing.T) {
		parent := newTestProcessor(t, 1)
		parent.AddPort(0, NewDataPort(EncodingNone, "old"), LocationOutput)
		parent.Attach(AttachRequest{Anchor: 0, Item: child})
		if err := parent.Err(); err != nil {
			t.Fatalf("compose: %v", err)
		}
		port := parent.OutputPortAt(0)
		if port == nil || port.Name() != "old" {
			t.Errorf("got port %v, want the parent's", port)
		}
	})
}

func TestPortAccessors(t *testing.T) {
	p := newTestProcessor(t, 3)
	q := NewDataPort(EncodingDualRail, "q0")
	p.AddPort(0, q, LocationInput).AddHerald(2, 0, "")
	if err := p.Err(); err != nil {
		t.Fatalf("build: %v", err)
	}

	if got, want := p.InPortNames(), []string{"q0", "q0", ""}; !equalStrings(got, want) {
		t.Errorf("got input names %v, want %v", got, want)
	}
	if got, want := p.OutPortNames(), []string{"", "", ""}; !equalStrings(got, want) {
		t.Errorf("got output names %v, want %v", got, want)
	}
	if got := p.InputPortAt(1); got != Port(q) {
		t.Errorf("got input port %v at mode 1, want q0", got)
	}
	if p.InputPortAt(2) == nil {
		t.Error("no input port over the heralded mode")
	}
	if h, ok := p.OutputPortAt(2).(*Herald); !ok || h.Expected() != 0 {
		t.Errorf("got output port %v at mode 2, want a herald expecting 0", p.OutputPortAt(2))
	}
	if p.OutputPortAt(0) != nil {
		t.Error("phantom output port on a data mode")
	}

	if !p.AreModesFree([]int{0, 1}, LocationOutput) {
		t.Error("output face of the data modes is not free")
	}
	if p.AreModesFree([]int{1}, LocationInput) {
		t.Error("input face under q0 reported free")
	}
	if p.IsModeConnectible(2) {
		t.Error("heralded mode reported connectible")
	}
	if !p.IsModeConnectible(0) {
		t.Error("ported data mode reported closed")
	}
	if p.IsModeConnectible(3) {
		t.Error("out-of-range mode reported connectible")
	}
}

func TestAddPortChecksFace(t *testing.T) {
	p := newTestProcessor(t, 2)
	p.AddPort(0, NewCounterDetector("det"), LocationInput)
	if p.Err() == nil {
		t.Error("no error for a detector on the input face")
	}
}

func TestLinearCircuitFlattens(t *testing.T) {
	p := newTestProcessor(t, 3)
	p.Add(0, optics.NewBeamSplitter(0.5)).Add(1, &optics.PhaseShifter{Phi: 1})
	lc := p.LinearCircuit()
	if err := lc.Err(); err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if got, want := lc.Modes(), 3; got != want {
		t.Errorf("got %d modes, want %d", got, want)
	}
	comps := lc.Components()
	if len(comps) != 2 {
		t.Fatalf("got %d placements, want 2", len(comps))
	}
	if comps[0].Mode != 0 || comps[0].Component.Kind() != optics.KindBeamSplitter {
		t.Errorf("placement 0: got %v at %d, want a beam splitter at 0", comps[0].Component.Kind(), comps[0].Mode)
	}
	if comps[1].Mode != 1 || comps[1].Component.Kind() != optics.KindPhaseShifter {
		t.Errorf("placement 1: got %v at %d, want a phase shifter at 1", comps[1].Component.Kind(), comps[1].Mode)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	p := newTestProcessor(t, 2)
	det := NewCounterDetector("click")
	p.Add(0, optics.NewBeamSplitter(0.5)).AddPort(1, det, LocationOutput)
	c := p.Copy()

	p.Add(0, &optics.PhaseShifter{Phi: 0.5})
	if got, want := len(p.Components()), 2; got != want {
		t.Errorf("got %d placements on the original, want %d", got, want)
	}
	if got, want := len(c.Components()), 1; got != want {
		t.Errorf("got %d placements on the copy, want %d", got, want)
	}

	cd, ok := c.OutputPortAt(1).(*CounterDetector)
	if !ok {
		t.Fatalf("copy's port is a %T, want a *CounterDetector", c.OutputPortAt(1))
	}
	if cd == det {
		t.Fatal("copy shares the original's detector")
	}
	det.Trigger(1)
	if got, want := cd.Count(), 0; got != want {
		t.Errorf("got %d events on the copy's detector, want %d", got, want)
	}
	if got, want := cd.Name(), "click"; got != want {
		t.Errorf("got detector name %q, want %q", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

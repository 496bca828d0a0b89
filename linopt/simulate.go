package linopt

import (
	"fmt"

	"github.com/alan-christopher/linopt/go/linopt/backend"
	"github.com/alan-christopher/linopt/go/linopt/fock"
)

// WithInput stages the photon counts requested on each mode of interest
// and derives the run's input distribution: modes requesting photons, and
// heralds expecting one, draw from the source model; everything else holds
// vacuum. Unless overridden, the physical selection threshold becomes the
// number of modes expected to light.
func (p *Processor) WithInput(in fock.State) error {
	if p.err != nil {
		return p.err
	}
	if in.Size() != p.nMOI {
		return fmt.Errorf("linopt: input %v spans %d modes, processor exposes %d", in, in.Size(), p.nMOI)
	}
	p.inputState = in
	p.hasInput = true
	p.buildInputsMap()
	return nil
}

func (p *Processor) buildInputsMap() {
	heralds := p.Heralds()
	src := p.source.ProbabilityDistribution()
	vacuum := fock.NewDistribution()
	vacuum.Add(fock.NewState([]int{0}), 1)

	dist := fock.NewDistribution()
	expected := 0
	idx := 0
	for m := 0; m < p.CircuitSize(); m++ {
		mode := vacuum
		if exp, ok := heralds[m]; ok {
			if exp == 1 {
				mode = src
				expected++
			}
		} else {
			if p.inputState.Get(idx) > 0 {
				mode = src
				expected++
			}
			idx++
		}
		dist = dist.Tensor(mode)
	}
	p.inputsMap = dist
	if p.hasOverride {
		p.minModePS = p.minModePSOverride
	} else {
		p.minModePS = expected
	}
}

// stateSelected reports whether an output state clears logical selection:
// every herald sees its expected count and any post-selection rule
// accepts.
func (p *Processor) stateSelected(s fock.State) bool {
	for mode, want := range p.Heralds() {
		if s.Get(mode) != want {
			return false
		}
	}
	return p.postSelect.Accepts(s)
}

// stripHeralds projects a full circuit state down to the modes of
// interest, dropping heralded modes.
func (p *Processor) stripHeralds(s fock.State) fock.State {
	if p.keepHeralds || p.nHeralds == 0 {
		return s
	}
	heralds := p.Heralds()
	counts := make([]int, 0, p.nMOI)
	for m := 0; m < s.Size(); m++ {
		if _, ok := heralds[m]; ok {
			continue
		}
		counts = append(counts, s.Get(m))
	}
	return fock.NewState(counts)
}

// triggerDetectors feeds an accepted output state to every detector on
// the output face.
func (p *Processor) triggerDetectors(s fock.State) {
	for port, modes := range p.outPorts {
		det, ok := port.(Detector)
		if !ok {
			continue
		}
		total := 0
		for _, m := range modes {
			total += s.Get(m)
		}
		det.Trigger(total)
	}
}

func (p *Processor) checkRun(cmd backend.Command) error {
	if p.err != nil {
		return p.err
	}
	if !p.hasInput {
		return ErrNoInput
	}
	if p.backend.PreferredCommand() != cmd {
		return fmt.Errorf("linopt: backend serves %q: %w", p.backend.PreferredCommand(), ErrWrongCommand)
	}
	return nil
}

// SamplesResult holds the outcome of a sampling run.
type SamplesResult struct {
	// States are the accepted output states, stripped to the modes of
	// interest unless KeepHeralds is in force.
	States []fock.State

	// PhysicalPerf estimates the fraction of shots surviving physical
	// selection; LogicalPerf the fraction of those surviving heralds and
	// post-selection.
	PhysicalPerf float64
	LogicalPerf  float64
}

// Samples draws until count output states survive selection. Each shot
// draws an input from the source statistics, discards it when too few
// photons arrive, asks the backend for an output, and applies physical
// then logical selection. Detectors fire once per accepted state.
//
// progress, when non-nil, is called with the completed fraction after
// each accepted state; returning a non-nil error aborts the run and
// surfaces that error. With selection rules that can never pass, a run
// without a progress callback will not terminate.
func (p *Processor) Samples(count int, progress func(float64) error) (*SamplesResult, error) {
	if err := p.checkRun(backend.CommandSamples); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("linopt: sampling %d states", count)
	}
	sim, err := p.simulator()
	if err != nil {
		return nil, err
	}

	res := &SamplesResult{States: make([]fock.State, 0, count)}
	var notPhysical, notSelected int
	batch := p.inputsMap.Sample(count, p.rand)
	idx := 0
	for len(res.States) < count {
		if idx == len(batch) {
			batch = p.inputsMap.Sample(count, p.rand)
			idx = 0
		}
		in := batch[idx]
		idx++
		if in.Photons() < p.minModePS {
			notPhysical++
			continue
		}
		out, err := sim.Sample(in)
		if err != nil {
			return nil, fmt.Errorf("linopt: sampling backend: %w", err)
		}
		if out.ModesWithPhotons() < p.minModePS {
			notPhysical++
			continue
		}
		if !p.stateSelected(out) {
			notSelected++
			continue
		}
		p.triggerDetectors(out)
		res.States = append(res.States, p.stripHeralds(out))
		if progress != nil {
			if err := progress(float64(len(res.States)) / float64(count)); err != nil {
				return nil, fmt.Errorf("linopt: sampling aborted: %w", err)
			}
		}
	}

	total := count + notSelected + notPhysical
	res.PhysicalPerf = float64(count+notSelected) / float64(total)
	res.LogicalPerf = float64(count) / float64(count+notSelected)
	return res, nil
}

// ProbsResult holds the outcome of an exact probability run.
type ProbsResult struct {
	// Results maps accepted output states, stripped to the modes of
	// interest unless KeepHeralds is in force, to their renormalized
	// probabilities.
	Results *fock.Distribution

	// PhysicalPerf is the probability mass surviving physical selection;
	// LogicalPerf the surviving fraction of that mass after heralds and
	// post-selection. LogicalPerf is meaningful only when HasLogicalPerf.
	PhysicalPerf   float64
	LogicalPerf    float64
	HasLogicalPerf bool
}

// Probs enumerates the exact output distribution: every input the source
// statistics can produce is pushed through the backend, joint
// probabilities below the negligibility threshold are skipped, and the
// surviving mass is split by physical and logical selection before the
// accepted part is renormalized.
//
// progress, when non-nil, is called with the completed fraction after
// each input state; returning a non-nil error aborts the run.
func (p *Processor) Probs(progress func(float64) error) (*ProbsResult, error) {
	if err := p.checkRun(backend.CommandProbs); err != nil {
		return nil, err
	}
	sim, err := p.simulator()
	if err != nil {
		return nil, err
	}

	accepted := fock.NewDistribution()
	physicalPerf := 1.0
	discarded := 0.0
	inputs := p.inputsMap
	for i := 0; i < inputs.Len(); i++ {
		in, inProb := inputs.At(i)
		if in.Photons() < p.minModePS {
			physicalPerf -= inProb
		} else {
			it := sim.AllStateProbs(in)
			for it.Next() {
				joint := inProb * it.Prob()
				if joint < p.minP {
					continue
				}
				out := it.State()
				if out.ModesWithPhotons() < p.minModePS {
					physicalPerf -= joint
					continue
				}
				if p.stateSelected(out) {
					accepted.Add(p.stripHeralds(out), joint)
				} else {
					discarded += joint
				}
			}
			if err := it.Err(); err != nil {
				return nil, fmt.Errorf("linopt: enumerating backend: %w", err)
			}
		}
		if progress != nil {
			if err := progress(float64(i+1) / float64(inputs.Len())); err != nil {
				return nil, fmt.Errorf("linopt: enumeration aborted: %w", err)
			}
		}
	}

	if physicalPerf < p.minP {
		physicalPerf = 0
	}
	res := &ProbsResult{Results: accepted, PhysicalPerf: physicalPerf}
	if mass := accepted.Sum(); mass > 0 {
		res.LogicalPerf = mass / (mass + discarded)
		res.HasLogicalPerf = true
		accepted.Normalize()
	}
	return res, nil
}

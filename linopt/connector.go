package linopt

import (
	"fmt"
	"sort"

	"github.com/alan-christopher/linopt/go/linopt/optics"
)

// A modeConnector works out how a child attaches to a parent processor:
// which parent modes feed which child modes, the permutation realizing that
// routing, and the fresh parent modes claimed by the child's heralded
// ancillas.
type modeConnector struct {
	parent   *Processor
	external []int // child modes visible to the caller, ascending
	heralds  []int // child modes closed by heralds, ascending
	size     int   // child's full mode count
}

func newComponentConnector(parent *Processor, modes int) *modeConnector {
	ext := make([]int, modes)
	for i := range ext {
		ext[i] = i
	}
	return &modeConnector{parent: parent, external: ext, size: modes}
}

func newProcessorConnector(parent *Processor, child *Processor) *modeConnector {
	heralded := child.Heralds()
	var ext, her []int
	for m := 0; m < child.CircuitSize(); m++ {
		if _, ok := heralded[m]; ok {
			her = append(her, m)
		} else {
			ext = append(ext, m)
		}
	}
	return &modeConnector{parent: parent, external: ext, heralds: her, size: child.CircuitSize()}
}

// resolve maps parent modes onto the child's externally visible modes,
// anchored at req.Anchor or routed explicitly through req.ModeMap.
func (c *modeConnector) resolve(req AttachRequest) (map[int]int, error) {
	parents := req.ModeMap
	if parents == nil {
		parents = make([]int, len(c.external))
		for i := range parents {
			parents[i] = req.Anchor + i
		}
	}
	if len(parents) != len(c.external) {
		return nil, fmt.Errorf("linopt: mapping names %d parent modes, child exposes %d", len(parents), len(c.external))
	}
	mapping := make(map[int]int, len(parents))
	var bad []int
	for i, pm := range parents {
		if _, dup := mapping[pm]; dup || !c.parent.IsModeConnectible(pm) {
			bad = append(bad, pm)
			continue
		}
		mapping[pm] = c.external[i]
	}
	if len(bad) > 0 {
		sort.Ints(bad)
		return nil, &UnavailableModeError{Modes: bad, Reason: "not connectible on the parent"}
	}
	return mapping, nil
}

// addHeraldedModes extends mapping with one fresh parent mode per child
// herald, appended past the parent's current mode space, and returns how
// many modes were added.
func (c *modeConnector) addHeraldedModes(mapping map[int]int) int {
	base := c.parent.CircuitSize()
	for j, h := range c.heralds {
		mapping[base+j] = h
	}
	return len(c.heralds)
}

// generatePermutation turns the resolved mapping into a permutation over
// [base, base+n): parent mode p routes into child position mapping[p], and
// unmapped parent modes in the span fill the remaining positions in
// ascending order. A routing that is already the identity yields a nil
// permutation.
func (c *modeConnector) generatePermutation(mapping map[int]int) (base int, perm *optics.Permutation) {
	keys := make([]int, 0, len(mapping))
	for p := range mapping {
		keys = append(keys, p)
	}
	sort.Ints(keys)
	base = keys[0]
	n := keys[len(keys)-1] - base + 1
	vec := make([]int, n)
	taken := make([]bool, n)
	for i := range vec {
		vec[i] = -1
	}
	for _, p := range keys {
		vec[p-base] = mapping[p]
		taken[mapping[p]] = true
	}
	next := 0
	for i := range vec {
		if vec[i] >= 0 {
			continue
		}
		for taken[next] {
			next++
		}
		vec[i] = next
		taken[next] = true
	}
	p := optics.NewPermutation(vec)
	if p.IsIdentity() {
		return base, nil
	}
	return base, p
}

// permCompose merges two permutations applied back to back into a single
// one spanning the union of their mode ranges.
func permCompose(aMode int, a *optics.Permutation, bMode int, b *optics.Permutation) (int, *optics.Permutation) {
	lo := aMode
	if bMode < lo {
		lo = bMode
	}
	hi := aMode + a.Modes()
	if bMode+b.Modes() > hi {
		hi = bMode + b.Modes()
	}
	extend := func(m0 int, p *optics.Permutation) []int {
		e := make([]int, hi-lo)
		for i := range e {
			e[i] = i
		}
		for i, v := range p.Vector() {
			e[m0-lo+i] = m0 - lo + v
		}
		return e
	}
	ea, eb := extend(aMode, a), extend(bMode, b)
	vec := make([]int, hi-lo)
	for i := range vec {
		vec[i] = eb[ea[i]]
	}
	return lo, optics.NewPermutation(vec)
}

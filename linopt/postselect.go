package linopt

import "github.com/alan-christopher/linopt/go/linopt/fock"

// A PostSelect is a logical acceptance rule over output states. It pairs a
// predicate with a remap vector locating the predicate's modes inside the
// observed state, so a rule written against a sub-processor's local modes
// survives composition as plain data: composing builds a new remap vector
// rather than nesting closures.
type PostSelect struct {
	fn    func(fock.State) bool
	size  int
	remap []int // remap[i] is the observed mode feeding predicate mode i; nil is the identity
}

// Accepts reports whether the observed state passes the rule. A nil rule
// accepts every state.
func (ps *PostSelect) Accepts(observed fock.State) bool {
	if ps == nil {
		return true
	}
	local := make([]int, ps.size)
	for i := range local {
		src := i
		if ps.remap != nil {
			src = ps.remap[i]
		}
		local[i] = observed.Get(src)
	}
	return ps.fn(fock.NewState(local))
}

// translated returns a copy of ps whose predicate mode i reads observed
// mode toParent[j], where j is the mode ps itself would read. toParent maps
// the rule's current mode space into the parent's.
func (ps *PostSelect) translated(toParent []int) *PostSelect {
	remap := make([]int, ps.size)
	for i := 0; i < ps.size; i++ {
		j := i
		if ps.remap != nil {
			j = ps.remap[i]
		}
		remap[i] = toParent[j]
	}
	return &PostSelect{fn: ps.fn, size: ps.size, remap: remap}
}

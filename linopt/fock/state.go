// Package fock provides photon-number (Fock) states over optical modes and
// discrete probability distributions across them.
package fock

import (
	"fmt"
	"strconv"
	"strings"
)

// A State is an immutable assignment of photon counts to a contiguous block
// of optical modes. The zero value is the state over zero modes.
type State struct {
	counts []int
}

// NewState returns the state with the given per-mode photon counts. The
// slice is copied, so callers may reuse it. NewState panics if any count is
// negative.
func NewState(counts []int) State {
	c := make([]int, len(counts))
	for i, n := range counts {
		if n < 0 {
			panic(fmt.Sprintf("fock: negative photon count %d in mode %d", n, i))
		}
		c[i] = n
	}
	return State{counts: c}
}

// Parse parses ket notation, e.g. "|1,0,2>", into a State.
func Parse(s string) (State, error) {
	if len(s) < 2 || s[0] != '|' || s[len(s)-1] != '>' {
		return State{}, fmt.Errorf("fock: %q is not a ket", s)
	}
	body := s[1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return State{}, fmt.Errorf("fock: empty ket %q", s)
	}
	parts := strings.Split(body, ",")
	counts := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return State{}, fmt.Errorf("fock: bad photon count %q in %q", p, s)
		}
		counts[i] = n
	}
	return State{counts: counts}, nil
}

// MustParse is Parse, panicking on malformed input.
func MustParse(s string) State {
	st, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return st
}

// Size returns the number of modes the state spans.
func (s State) Size() int { return len(s.counts) }

// Photons returns the total photon number.
func (s State) Photons() int {
	n := 0
	for _, c := range s.counts {
		n += c
	}
	return n
}

// Get returns the photon count in mode i.
func (s State) Get(i int) int { return s.counts[i] }

// Counts returns a copy of the per-mode photon counts.
func (s State) Counts() []int {
	c := make([]int, len(s.counts))
	copy(c, s.counts)
	return c
}

// ModesWithPhotons returns the number of modes holding at least one photon.
func (s State) ModesWithPhotons() int {
	n := 0
	for _, c := range s.counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// Concat returns the state over the concatenated mode blocks of s then t.
func (s State) Concat(t State) State {
	c := make([]int, 0, len(s.counts)+len(t.counts))
	c = append(c, s.counts...)
	c = append(c, t.counts...)
	return State{counts: c}
}

// Equal reports whether s and t assign identical counts to identical modes.
func (s State) Equal(t State) bool {
	if len(s.counts) != len(t.counts) {
		return false
	}
	for i, c := range s.counts {
		if t.counts[i] != c {
			return false
		}
	}
	return true
}

// String renders the state in ket notation.
func (s State) String() string {
	var b strings.Builder
	b.WriteByte('|')
	for i, c := range s.counts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(c))
	}
	b.WriteByte('>')
	return b.String()
}

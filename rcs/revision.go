package rcs

import (
	"strconv"
	"strings"
)

// Revision is a dot-separated RCS revision number, e.g. "1.1" or "1.2.4.1".
// The string form is kept as the canonical representation (it's what the
// rest of the file format, and callers, deal in); Components is computed
// lazily for ordering comparisons.
type Revision string

// Components splits a revision number into its dotted integer parts.
// A malformed component (non-numeric) is returned as 0; the parser does
// not check revision-number syntax, so such components can reach here.
func (r Revision) Components() []int {
	if r == "" {
		return nil
	}
	parts := strings.Split(string(r), ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, _ := strconv.Atoi(p)
		out[i] = n
	}
	return out
}

// IsTrunk reports whether r has exactly two components, e.g. "1.7".
func (r Revision) IsTrunk() bool {
	return len(r.Components()) == 2
}

// Compare returns -1, 0, or 1 according to numeric, component-wise ordering.
// Shorter component lists compare as less than longer ones that share the
// same prefix, matching Python's tuple comparison semantics that the
// original tool relied on (informally) via list comparison.
func (r Revision) Compare(other Revision) int {
	a, b := r.Components(), other.Components()
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

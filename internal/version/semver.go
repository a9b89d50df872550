// Package version compares bundle version strings such as the application
// versions carried in receipts.
package version

import (
	"strconv"
	"strings"
)

// Compare orders two dot-separated numeric versions with any number of
// components. Missing components count as zero, so "1.2" equals "1.2.0". It
// reports false when either version is not numeric.
func Compare(a, b string) (int, bool) {
	av, okA := parse(a)
	bv, okB := parse(b)
	if !okA || !okB {
		return 0, false
	}
	for i := 0; i < max(len(av), len(bv)); i++ {
		x, y := at(av, i), at(bv, i)
		if x != y {
			if x < y {
				return -1, true
			}
			return 1, true
		}
	}
	return 0, true
}

// IsOutdated reports whether current is older than minimum. Versions that
// cannot be compared are never outdated.
func IsOutdated(current, minimum string) bool {
	c, ok := Compare(current, minimum)
	return ok && c < 0
}

func parse(v string) ([]int, bool) {
	s := strings.TrimSpace(v)
	s = strings.TrimPrefix(s, "v")
	s = strings.TrimPrefix(s, "V")
	if i := strings.IndexAny(s, "-+ "); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func at(v []int, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

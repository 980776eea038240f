package migrate

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseVersion splits a dotted version into numeric components.
func ParseVersion(v string) ([]int, error) {
	if v == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidVersion)
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, v)
		}
		out[i] = n
	}
	return out, nil
}

// CompareVersions compares dotted versions component by component. Missing
// components count as 0, so "1.0" equals "1.0.0". Components that are not
// numbers also count as 0.
func CompareVersions(a, b string) int {
	pa, pb := components(a), components(b)
	for i := range max(len(pa), len(pb)) {
		x, y := at(pa, i), at(pb, i)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func components(v string) []int {
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		out[i], _ = strconv.Atoi(p)
	}
	return out
}

func at(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

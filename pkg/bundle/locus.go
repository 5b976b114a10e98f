package bundle

import (
	"fmt"
	"strings"
)

// Locus is a half-open genomic interval on one reference
type Locus struct {
	Reference string
	Start     int
	End       int
}

// ParseLocus parses a locus string like "chr1:1000000-2000000".
// A bare reference name selects the whole reference.
func ParseLocus(s string) (Locus, error) {
	locus := Locus{}

	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		if s == "" {
			return locus, fmt.Errorf("empty region")
		}
		locus.Reference = s
		locus.End = -1
		return locus, nil
	}
	locus.Reference = s[:i]

	posParts := strings.Split(strings.ReplaceAll(s[i+1:], ",", ""), "-")
	if len(posParts) != 2 {
		return locus, fmt.Errorf("invalid region format: %s (expected chr:start-end)", s)
	}

	if _, err := fmt.Sscanf(posParts[0], "%d", &locus.Start); err != nil {
		return locus, fmt.Errorf("invalid start position: %w", err)
	}
	if _, err := fmt.Sscanf(posParts[1], "%d", &locus.End); err != nil {
		return locus, fmt.Errorf("invalid end position: %w", err)
	}
	if locus.Start < 0 || locus.End <= locus.Start {
		return locus, fmt.Errorf("invalid region %s: end must be greater than start", s)
	}

	return locus, nil
}

// Overlaps reports whether [start, end) on ref intersects the locus
func (l Locus) Overlaps(ref string, start, end int) bool {
	if ref != l.Reference {
		return false
	}
	if l.End < 0 {
		return true
	}
	return end > l.Start && start < l.End
}

func (l Locus) String() string {
	if l.End < 0 {
		return l.Reference
	}
	return fmt.Sprintf("%s:%d-%d", l.Reference, l.Start, l.End)
}

package bridge

import (
	"log/slog"
)

// TypeCounts counts fragments per FragmentType, indexed by the type value
type TypeCounts [3]int

// Report summarizes one bridging pass over a bundle
type Report struct {
	Kind   string       `json:"kind"`
	Total  int          `json:"total"`
	Fixed  [4]int       `json:"fixed"` // fragments with at least one path after each round
	Bounds LengthBounds `json:"bounds"`

	TotalByType   TypeCounts `json:"total_by_type"`
	BridgedByType TypeCounts `json:"bridged_by_type"`
}

// Bridged is the number of fragments holding a path after the last round
func (r *Report) Bridged() int {
	return r.Fixed[len(r.Fixed)-1]
}

// Ratio is the bridged percentage after round i
func (r *Report) Ratio(i int) float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Fixed[i]) * 100 / float64(r.Total)
}

// Add accumulates another report of the same kind
func (r *Report) Add(o Report) {
	r.Total += o.Total
	for i := range r.Fixed {
		r.Fixed[i] += o.Fixed[i]
	}
	for i := range r.TotalByType {
		r.TotalByType[i] += o.TotalByType[i]
		r.BridgedByType[i] += o.BridgedByType[i]
	}
	r.Bounds = o.Bounds
}

// countWithPaths counts fragments holding at least one path
func countWithPaths(frags []Fragment) int {
	n := 0
	for i := range frags {
		if len(frags[i].Paths) >= 1 {
			n++
		}
	}
	return n
}

// countByType fills the per-type totals; a fragment is bridged when it holds
// exactly one path
func (r *Report) countByType(frags []Fragment) {
	for i := range frags {
		t := frags[i].Type
		if t < PairedEnd || t > Both {
			continue
		}
		r.TotalByType[t]++
		if len(frags[i].Paths) == 1 {
			r.BridgedByType[t]++
		}
	}
}

func (r *Report) log(logger *slog.Logger, chrom string, lpos, rpos int32) {
	logger.Debug("bridged fragments",
		"kind", r.Kind,
		"chrom", chrom,
		"lpos", lpos,
		"rpos", rpos,
		"fragments", r.Total,
		"fixed", r.Fixed,
		"remain", r.Total-r.Bridged(),
		"length", []int32{r.Bounds.Low, r.Bounds.Median, r.Bounds.High},
		slog.Group("total",
			"paired_end", r.TotalByType[PairedEnd],
			"umi_linked", r.TotalByType[UMILinked],
			"both", r.TotalByType[Both]),
		slog.Group("bridged",
			"paired_end", r.BridgedByType[PairedEnd],
			"umi_linked", r.BridgedByType[UMILinked],
			"both", r.BridgedByType[Both]),
	)
}

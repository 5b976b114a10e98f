package pipeline

import (
	"log/slog"
	"sort"

	"github.com/Shao-Group/TERRACE/pkg/bridge"
)

// circRNA sources
const (
	SourceBridged = "bridged"
	SourceClipped = "clipped"
)

// circStats counts how the circles of a bundle were resolved
type circStats struct {
	bridged    int
	clipped    int
	clipFailed int
}

// assembleCircRNAs turns every back-splice of the bundle into a circular
// transcript: from the chosen path when its fragment was bridged, otherwise
// by clipping through the junction graph
func assembleCircRNAs(br *bridge.Bridger, bd *bridge.Bundle, logger *slog.Logger) ([]bridge.CircularTranscript, circStats) {
	var out []bridge.CircularTranscript
	var st circStats

	for _, c := range bd.Circles {
		if c.Fragment >= 0 && c.Fragment < len(bd.CircFragments) {
			fr := &bd.CircFragments[c.Fragment]
			if fr.Bridged && len(fr.Paths) == 1 && len(fr.Paths[0].MergedRegions) > 0 {
				out = append(out, withEvidence(fromBridgedPath(bd, fr, c.ReadName), bd, c))
				st.bridged++
				continue
			}
		}

		ct, err := br.BridgeClip(c.P1, c.P2)
		if err != nil {
			st.clipFailed++
			logger.Debug("circle not assembled", "read", c.ReadName, "p1", c.P1, "p2", c.P2, "error", err)
			continue
		}
		ct.Coverage = 1
		ct.PathCounts[0] = 1
		ct.Source = SourceClipped
		ct.ReadNames = []string{c.ReadName}
		out = append(out, withEvidence(*ct, bd, c))
		st.clipped++
	}
	return out, st
}

// withEvidence attaches the bundle context and the read's chimeric evidence
func withEvidence(ct bridge.CircularTranscript, bd *bridge.Bundle, c bridge.Circle) bridge.CircularTranscript {
	ct.BundleSize = len(bd.Hits)
	ct.RefTrstsSize = len(bd.Ref.Phases)
	ct.SuppleLen = c.SuppleLen
	if c.Fragment < 0 {
		ct.FakeCount = 1
	}
	return ct
}

func fromBridgedPath(bd *bridge.Bundle, fr *bridge.Fragment, readName string) bridge.CircularTranscript {
	p := fr.Paths[0]
	merged := p.MergedRegions
	ct := bridge.CircularTranscript{
		Chrom:              bd.Chrom,
		Strand:             bd.Strand,
		Start:              merged[0].LPos,
		End:                merged[len(merged)-1].RPos,
		CircPath:           p.V,
		PathRegions:        p.PathRegions,
		MergedRegions:      merged,
		Coverage:           1,
		PathScore:          p.Score,
		CandidatePathCount: fr.CandidatePathCount,
		Source:             SourceBridged,
		ReadNames:          []string{readName},
	}
	if p.Type >= bridge.RefExact && p.Type <= bridge.ReadOutOfRange {
		ct.PathCounts[p.Type] = 1
	}
	return ct
}

// Keep reports whether a circRNA passes the exon length and vertex limits
func (f CircFilter) Keep(c *bridge.CircularTranscript) bool {
	if len(c.CircPath) > f.MaxCircVertices {
		return false
	}
	limit := f.MaxMultiExonLength
	if len(c.MergedRegions) == 1 {
		limit = f.MaxSingleExonLength
	}
	for _, r := range c.MergedRegions {
		if r.Len() > limit {
			return false
		}
	}
	return true
}

// Collapse merges circRNAs with the same isoform key, summing their
// coverage, path scores and read evidence. The result is sorted by position.
func Collapse(circs []bridge.CircularTranscript) []bridge.CircularTranscript {
	byKey := make(map[string]int)
	var out []bridge.CircularTranscript
	for _, c := range circs {
		key := c.Key()
		i, ok := byKey[key]
		if !ok {
			byKey[key] = len(out)
			c.ReadNames = append([]string(nil), c.ReadNames...)
			out = append(out, c)
			continue
		}
		m := &out[i]
		m.Coverage += c.Coverage
		m.PathScore += c.PathScore
		m.CandidatePathCount += c.CandidatePathCount
		m.FakeCount += c.FakeCount
		m.SuppleLen += c.SuppleLen
		for k := range m.PathCounts {
			m.PathCounts[k] += c.PathCounts[k]
		}
		m.ReadNames = append(m.ReadNames, c.ReadNames...)
	}
	sortCircs(out)
	return out
}

// MergeNearby folds circRNAs sharing an intron chain whose starts and ends
// both lie within maxDiff of each other into the better covered one.
// Bridged circRNAs are placed first, then clipped ones are folded into
// everything kept so far, so a clipped circRNA can be absorbed by a bridged
// one and the other way round. Within a source, input order decides ties.
func MergeNearby(circs []bridge.CircularTranscript, maxDiff int32) []bridge.CircularTranscript {
	if maxDiff <= 0 {
		return circs
	}
	var kept []bridge.CircularTranscript
	for _, clipped := range []bool{false, true} {
		for _, c := range circs {
			if (c.Source == SourceClipped) != clipped {
				continue
			}
			kept = mergeInto(kept, c, maxDiff)
		}
	}
	sortCircs(kept)
	return kept
}

// mergeInto replaces the first nearby kept circRNA that c outcovers, or
// appends c when nothing nearby exists
func mergeInto(kept []bridge.CircularTranscript, c bridge.CircularTranscript, maxDiff int32) []bridge.CircularTranscript {
	chain := c.IntronChain()
	collided := false
	for i := range kept {
		k := &kept[i]
		if k.Chrom != c.Chrom || k.IntronChain() != chain {
			continue
		}
		if abs32(k.Start-c.Start) >= maxDiff || abs32(k.End-c.End) >= maxDiff {
			continue
		}
		collided = true
		if c.Coverage > k.Coverage {
			*k = c
			return kept
		}
	}
	if collided {
		return kept
	}
	return append(kept, c)
}

func sortCircs(circs []bridge.CircularTranscript) {
	sort.SliceStable(circs, func(i, j int) bool {
		a, b := &circs[i], &circs[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

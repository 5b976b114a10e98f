package bridge

import "sort"

// PickBridgePath reduces the candidate paths of a circular fragment to one.
// Read paths through gapped interior regions and paths retaining another
// candidate's intron are dropped; weak read paths are dropped when a stronger
// one exists. Among the rest a read path also supported by the reference is
// preferred, then the best read path, then the first reference path.
func (b *Bridger) PickBridgePath(fr *Fragment) {
	if len(fr.Paths) == 0 {
		fr.Bridged = false
		return
	}

	for i := range fr.Paths {
		b.bundle.decoratePath(&fr.Paths[i])
	}

	removed := make(map[string]bool)
	for _, p := range fr.Paths {
		if p.Type.FromReference() {
			continue
		}
		for j := 1; j+1 < len(p.PathRegions); j++ {
			if p.PathRegions[j].Gapped {
				removed[p.key()] = true
				break
			}
		}
	}

	for _, p1 := range fr.Paths {
		for _, junc := range p1.Junctions {
			for _, p2 := range fr.Paths {
				if retainsIntron(p2.MergedRegions, junc) {
					removed[p2.key()] = true
				}
			}
		}
	}

	var primary []Path
	for _, p := range fr.Paths {
		if !removed[p.key()] {
			primary = append(primary, p)
		}
	}

	strong := false
	for _, p := range primary {
		if p.Type.FromReads() && p.Score > b.cfg.MinPathScore {
			strong = true
			break
		}
	}

	var selected []Path
	if strong {
		weak := make(map[string]bool)
		for _, p := range primary {
			if p.Type.FromReads() && p.Score <= b.cfg.MinPathScore {
				weak[p.key()] = true
			}
		}
		for _, p := range primary {
			if !weak[p.key()] {
				selected = append(selected, p)
			}
		}
	} else {
		selected = primary
	}

	if len(selected) == 0 {
		fr.Paths = nil
		fr.Bridged = false
		return
	}
	fr.CandidatePathCount = len(selected)

	refPaths := make(map[string]Path)
	readPaths := make(map[string]Path)
	for _, p := range selected {
		k := vertexKey(p.V)
		switch {
		case p.Type.FromReference():
			if _, ok := refPaths[k]; !ok {
				refPaths[k] = p
			}
		case p.Type.FromReads():
			if _, ok := readPaths[k]; !ok {
				readPaths[k] = p
			}
		}
	}

	var best *Path
	for _, k := range sortedPathKeys(readPaths) {
		if _, ok := refPaths[k]; !ok {
			continue
		}
		p := readPaths[k]
		if best == nil || p.Score > best.Score {
			best = &p
		}
	}
	if best == nil {
		for _, k := range sortedPathKeys(readPaths) {
			p := readPaths[k]
			if best == nil || p.Score > best.Score {
				best = &p
			}
		}
	}
	if best == nil {
		keys := sortedPathKeys(refPaths)
		p := refPaths[keys[0]]
		best = &p
	}

	fr.Paths = []Path{*best}
	fr.Bridged = true
}

// retainsIntron reports whether some merged block covers the junction
func retainsIntron(merged []Region, j Junction) bool {
	for _, r := range merged {
		if j.Start >= r.LPos && j.End <= r.RPos {
			return true
		}
	}
	return false
}

func sortedPathKeys(m map[string]Path) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

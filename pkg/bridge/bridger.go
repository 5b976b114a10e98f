// Package bridge resolves, for every pair of linked read fragments in a
// bundle, the splicing path most likely connecting them.
package bridge

import (
	"log/slog"
)

// Bridger bridges the fragments of one bundle. It is not safe for
// concurrent use; bundles are independent and get one Bridger each.
type Bridger struct {
	bundle *Bundle
	cfg    Config
	bounds LengthBounds
	logger *slog.Logger

	// window length of the last path-node pass
	windowLen int
}

// New creates a bridger for the bundle. A nil logger uses slog.Default().
func New(bundle *Bundle, cfg Config, logger *slog.Logger) *Bridger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridger{
		bundle: bundle,
		cfg:    cfg,
		bounds: cfg.NormalBounds(),
		logger: logger,
	}
}

// Bounds returns the length bounds paths are checked against
func (b *Bridger) Bounds() LengthBounds {
	return b.bounds
}

// BridgeNormalFragments bridges the linear fragments of the bundle in four
// rounds of increasing reference dependence and stores the result back
func (b *Bridger) BridgeNormalFragments() Report {
	b.bounds = b.cfg.NormalBounds()
	r := Report{Kind: "normal", Total: len(b.bundle.Fragments), Bounds: b.bounds}

	frags := b.overlapRound(b.bundle.Fragments)
	r.Fixed[0] = countWithPaths(frags)

	frags = b.phasedRound(frags)
	r.Fixed[1] = countWithPaths(frags)

	frags = b.hardRound(frags)
	r.Fixed[2] = countWithPaths(frags)

	frags = b.phasedRound(frags)
	r.Fixed[3] = countWithPaths(frags)

	b.bundle.Fragments = frags
	r.countByType(frags)
	r.log(b.logger, b.bundle.Chrom, b.bundle.LPos, b.bundle.RPos)
	return r
}

// BridgeCircFragments bridges the back-spliced fragments of the bundle using
// the junction graph of the linear fragments, then picks one path per fragment
func (b *Bridger) BridgeCircFragments() Report {
	b.bounds = b.cfg.NormalBounds()
	r := Report{Kind: "circular", Total: len(b.bundle.CircFragments), Bounds: b.bounds}

	frags := cloneFragments(b.bundle.CircFragments)
	b.bridgeOverlappedFragments(frags)
	r.Fixed[0] = countWithPaths(frags)

	clusters := b.clusterOpenFragments(frags)
	g := b.buildJunctionGraph(b.bundle.Fragments, b.overlapIndexFor(b.bundle.Fragments))
	b.bridgeHardFragmentsCirc(g, frags, clusters)
	r.Fixed[1] = countWithPaths(frags)

	b.bridgePhasedFragments(frags, clusters)
	r.Fixed[2] = countWithPaths(frags)
	r.Fixed[3] = r.Fixed[2]

	for i := range frags {
		b.PickBridgePath(&frags[i])
	}

	b.bundle.CircFragments = frags
	r.countByType(frags)
	r.log(b.logger, b.bundle.Chrom, b.bundle.LPos, b.bundle.RPos)
	return r
}

// overlapRound bridges fragments whose mates overlap
func (b *Bridger) overlapRound(in []Fragment) []Fragment {
	frags := cloneFragments(in)
	b.bridgeOverlappedFragments(frags)
	b.filterPaths(frags)
	return frags
}

// phasedRound bridges open fragments through reference transcripts
func (b *Bridger) phasedRound(in []Fragment) []Fragment {
	frags := cloneFragments(in)
	clusters := b.clusterOpenFragments(frags)
	b.bridgePhasedFragments(frags, clusters)
	b.filterPaths(frags)
	return frags
}

// hardRound bridges open fragments through the junction graph twice; the
// second pass sees the graph rebuilt from the first pass. The overlap index
// is built once from the round's input and shared by both passes.
func (b *Bridger) hardRound(in []Fragment) []Fragment {
	frags := cloneFragments(in)
	clusters := b.clusterOpenFragments(frags)
	ov := b.overlapIndexFor(frags)

	g := b.buildJunctionGraph(frags, ov)
	b.bridgeHardFragmentsNormal(g, frags, clusters)
	b.filterPaths(frags)

	g = b.buildJunctionGraph(frags, ov)
	b.bridgeHardFragmentsNormal(g, frags, clusters)
	b.filterPaths(frags)
	return frags
}

func cloneFragments(in []Fragment) []Fragment {
	out := make([]Fragment, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}

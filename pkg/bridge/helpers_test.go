package bridge

import (
	"io"
	"log/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// span builds a region without coverage metadata
func span(l, r int32) Region {
	return Region{LPos: l, RPos: r, Ave: 1}
}

// testBundle wraps regions into a bundle on chr1
func testBundle(regions ...Region) *Bundle {
	bd := &Bundle{Chrom: "chr1", Strand: '+', Regions: regions}
	if len(regions) > 0 {
		bd.LPos = regions[0].LPos
		bd.RPos = regions[len(regions)-1].RPos
	}
	return bd
}

// addReads appends n hits spanning v
func addReads(bd *Bundle, v []int, n int) {
	for i := 0; i < n; i++ {
		id := len(bd.Hits)
		bd.Hits = append(bd.Hits, Hit{
			ID:    id,
			Pos:   bd.Regions[v[0]].LPos,
			RPos:  bd.Regions[last(v)].RPos,
			VList: append([]int(nil), v...),
		})
	}
}

// testFragment links two mates with the given flanks
func testFragment(v1, v2 []int, k1l, k2r int32) Fragment {
	return Fragment{
		H1:  &Hit{ID: -1, VList: v1},
		H2:  &Hit{ID: -2, VList: v2},
		K1L: k1l,
		K2R: k2r,
	}
}

func newTestBridger(bd *Bundle) *Bridger {
	return New(bd, DefaultConfig(), discardLogger())
}

package bundle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shao-Group/TERRACE/pkg/bridge"
)

// buildOne scans the records into a single group and builds it
func buildOne(t *testing.T, lines ...string) *bridge.Bundle {
	t.Helper()
	s, err := NewScanner(samReader(t, lines...), DefaultOptions())
	require.NoError(t, err)
	groups := collect(t, s)
	require.Len(t, groups, 1)

	bd, err := Build(groups[0], DefaultOptions())
	require.NoError(t, err)
	return bd
}

func TestBuildSplicedBundle(t *testing.T) {
	bd := buildOne(t,
		"a\t99\tchr1\t101\t60\t50M100N50M\t=\t261\t200\t*\t*\tXS:A:+",
		"b\t0\tchr1\t121\t60\t30M\t*\t0\t0\t*\t*\tUB:Z:AAA",
		"a\t147\tchr1\t261\t60\t40M\t=\t101\t-200\t*\t*\tXS:A:+",
		"c\t0\tchr1\t271\t60\t30M\t*\t0\t0\t*\t*\tUB:Z:AAA",
	)

	assert.Equal(t, "chr1", bd.Chrom)
	assert.Equal(t, byte('+'), bd.Strand)
	assert.Equal(t, int32(100), bd.LPos)
	assert.Equal(t, int32(300), bd.RPos)

	want := []bridge.Region{
		{LPos: 100, RPos: 150, Ave: 1.6},
		{LPos: 250, RPos: 300, Ave: 2.4},
	}
	if diff := cmp.Diff(want, bd.Regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, bd.Hits, 4)
	assert.Equal(t, []int{0, 1}, bd.Hits[0].VList)
	assert.Equal(t, []int{0}, bd.Hits[1].VList)
	assert.Equal(t, []int{1}, bd.Hits[2].VList)
	assert.Equal(t, []int{1}, bd.Hits[3].VList)
	assert.Equal(t, "AAA", bd.Hits[1].UMI)

	require.Len(t, bd.Fragments, 2)

	pe := bd.Fragments[0]
	assert.Equal(t, bridge.PairedEnd, pe.Type)
	assert.Same(t, &bd.Hits[0], pe.H1)
	assert.Same(t, &bd.Hits[2], pe.H2)
	assert.Equal(t, []int32{0, 0, 10, 0}, []int32{pe.K1L, pe.K1R, pe.K2L, pe.K2R})
	assert.Equal(t, int32(100), pe.LPos)
	assert.Equal(t, int32(300), pe.RPos)

	umi := bd.Fragments[1]
	assert.Equal(t, bridge.UMILinked, umi.Type)
	assert.Same(t, &bd.Hits[1], umi.H1)
	assert.Same(t, &bd.Hits[3], umi.H2)
	assert.Equal(t, []int32{20, 0, 20, 0}, []int32{umi.K1L, umi.K1R, umi.K2L, umi.K2R})

	assert.Empty(t, bd.CircFragments)
	assert.Empty(t, bd.Circles)
}

func TestBuildBackSplice(t *testing.T) {
	bd := buildOne(t,
		"circ\t0\tchr1\t1001\t60\t30S70M\t*\t0\t0\t*\t*\tSA:Z:chr1,1101,+,70M30S,60,0;",
		"circ\t2048\tchr1\t1101\t60\t70M30H\t*\t0\t0\t*\t*\tSA:Z:chr1,1001,+,30S70M,60,0;",
	)

	require.Len(t, bd.Regions, 2)
	assert.Equal(t, int32(1070), bd.Regions[0].RPos)
	assert.Equal(t, int32(1100), bd.Regions[1].LPos)

	// the supplementary record never pairs
	assert.Empty(t, bd.Fragments)

	require.Len(t, bd.Circles, 1)
	assert.Equal(t, bridge.Circle{P1: 1000, P2: 1170, Fragment: 0, ReadName: "circ", SuppleLen: 70}, bd.Circles[0])

	require.Len(t, bd.CircFragments, 1)
	fr := bd.CircFragments[0]
	assert.Same(t, &bd.Hits[0], fr.H1)
	assert.Equal(t, []int{1}, fr.H2.VList)
	assert.Equal(t, int32(1100), fr.H2.Pos)
	assert.Equal(t, int32(1170), fr.H2.RPos)
	assert.Equal(t, []int32{0, 0, 0, 0}, []int32{fr.K1L, fr.K1R, fr.K2L, fr.K2R})
}

func TestBuildBackSpliceOutsideBundle(t *testing.T) {
	bd := buildOne(t,
		"circ\t0\tchr1\t1001\t60\t30S70M\t*\t0\t0\t*\t*\tSA:Z:chr1,5001,+,70M30S,60,0;",
	)

	// the circle is still reported, without a fragment to bridge
	require.Len(t, bd.Circles, 1)
	assert.Equal(t, -1, bd.Circles[0].Fragment)
	assert.Equal(t, int32(5070), bd.Circles[0].P2)
	assert.Empty(t, bd.CircFragments)
}

func TestBuildRegionsCutsAtClips(t *testing.T) {
	bd := buildOne(t,
		"x\t0\tchr1\t101\t60\t100M\t*\t0\t0\t*\t*",
		"y\t0\tchr1\t131\t60\t10S30M10S\t*\t0\t0\t*\t*",
	)

	want := []bridge.Region{
		{LPos: 100, RPos: 130, Ave: 1},
		{LPos: 130, RPos: 160, Ave: 2},
		{LPos: 160, RPos: 200, Ave: 1},
	}
	if diff := cmp.Diff(want, bd.Regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{0, 1, 2}, bd.Hits[0].VList)
	assert.Equal(t, []int{1}, bd.Hits[1].VList)
}

func TestMapBlocks(t *testing.T) {
	regions := []bridge.Region{
		{LPos: 0, RPos: 10},
		{LPos: 20, RPos: 30},
		{LPos: 30, RPos: 40},
	}
	assert.Equal(t, []int{0, 1}, mapBlocks(regions, []block{{5, 25}}))
	assert.Equal(t, []int{1, 2}, mapBlocks(regions, []block{{25, 35}}))
	assert.Equal(t, []int{0, 2}, mapBlocks(regions, []block{{0, 5}, {35, 40}}))
	assert.Nil(t, mapBlocks(regions, []block{{12, 15}}))
}

func TestInferStrand(t *testing.T) {
	assert.Equal(t, byte('.'), inferStrand(nil))
	assert.Equal(t, byte('-'), inferStrand([]*segment{{strand: '-'}, {strand: '-'}, {strand: '+'}}))
	assert.Equal(t, byte('.'), inferStrand([]*segment{{strand: '-'}, {strand: '+'}, {}}))
}

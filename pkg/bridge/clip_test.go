package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeClipSingleExon(t *testing.T) {
	b := newTestBridger(testBundle(span(50, 100), span(100, 200)))

	circ, err := b.BridgeClip(100, 200)
	require.NoError(t, err)
	assert.Equal(t, int32(100), circ.Start)
	assert.Equal(t, int32(200), circ.End)
	assert.Equal(t, []int{1}, circ.CircPath)
	assert.Equal(t, []Region{{LPos: 100, RPos: 200}}, circ.MergedRegions)
	assert.Equal(t, "chr1:100|200", circ.ID())
}

func TestBridgeClipReversed(t *testing.T) {
	var regions []Region
	for i := int32(0); i < 6; i++ {
		regions = append(regions, span(i*100, i*100+50))
	}
	b := newTestBridger(testBundle(regions...))

	_, err := b.BridgeClip(500, 250)
	require.ErrorIs(t, err, ErrInvalidClip)
}

func TestBridgeClipNotFound(t *testing.T) {
	b := newTestBridger(testBundle(span(0, 100), span(200, 300)))

	_, err := b.BridgeClip(10, 300)
	require.ErrorIs(t, err, ErrClipNotFound)

	_, err = b.BridgeClip(0, 310)
	require.ErrorIs(t, err, ErrClipNotFound)
}

func TestBridgeClipNoPath(t *testing.T) {
	b := newTestBridger(testBundle(span(0, 100), span(200, 300)))

	_, err := b.BridgeClip(0, 300)
	require.ErrorIs(t, err, ErrNoClipPath)
}

func TestBridgeClipMultiExon(t *testing.T) {
	bd := testBundle(span(0, 100), span(100, 200), span(300, 400))
	addReads(bd, []int{1, 2}, 2)
	b := newTestBridger(bd)

	circ, err := b.BridgeClip(0, 400)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, circ.CircPath)
	assert.Len(t, circ.PathRegions, 3)
	assert.Equal(t, []Region{{LPos: 0, RPos: 200}, {LPos: 300, RPos: 400}}, circ.MergedRegions)
}

func TestBridgeClipSkipsOverlapIndex(t *testing.T) {
	bd := testBundle(span(0, 100), span(100, 200), span(300, 400))
	addReads(bd, []int{1, 2}, 2)
	cfg := DefaultConfig()
	cfg.UseOverlapScoring = true
	b := New(bd, cfg, discardLogger())

	circ, err := b.BridgeClip(0, 400)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, circ.CircPath)

	// only the junction window was built; bounded path nodes would widen it
	assert.Equal(t, 2, b.windowLen)
}

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeRegions(t *testing.T) {
	got := mergeRegions([]Region{
		{LPos: 300, RPos: 400},
		{LPos: 0, RPos: 100},
		{LPos: 100, RPos: 150, Ave: 3},
		{LPos: 120, RPos: 130},
		{LPos: 160, RPos: 200},
	})
	assert.Equal(t, []Region{
		{LPos: 0, RPos: 150},
		{LPos: 160, RPos: 200},
		{LPos: 300, RPos: 400},
	}, got)
	assert.Nil(t, mergeRegions(nil))
}

func TestJunctionsOf(t *testing.T) {
	js := junctionsOf([]Region{{LPos: 0, RPos: 150}, {LPos: 160, RPos: 200}, {LPos: 300, RPos: 400}})
	assert.Equal(t, []Junction{{Start: 151, End: 159}, {Start: 201, End: 299}}, js)
	assert.Empty(t, junctionsOf([]Region{{LPos: 0, RPos: 10}}))
}

func TestBundleValidate(t *testing.T) {
	bd := testBundle(span(0, 100), span(200, 300))
	addReads(bd, []int{0, 1}, 1)
	assert.NoError(t, bd.Validate())

	bd.Hits = append(bd.Hits, Hit{ID: 9, VList: []int{1, 0}})
	assert.ErrorContains(t, bd.Validate(), "not ascending")

	bd = testBundle(span(0, 100), span(50, 300))
	assert.ErrorContains(t, bd.Validate(), "overlaps")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.InsertSizeHigh = 10
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DPStackSize = 0
	assert.Error(t, cfg.Validate())

	b := DefaultConfig().NormalBounds()
	assert.Equal(t, LengthBounds{Low: 40, Median: 250, High: 500}, b)
	assert.True(t, b.Contains(40))
	assert.True(t, b.Contains(500))
	assert.False(t, b.Contains(501))
}

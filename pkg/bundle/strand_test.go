package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupStrandEvidence(t *testing.T) {
	r := samReader(t,
		// dUTP-like pair: both mates count as antisense
		"p1\t65\tchr1\t101\t60\t20M100N30M\t*\t0\t0\t*\t*\tXS:A:-",
		"p1\t145\tchr1\t121\t60\t50M\t*\t0\t0\t*\t*\tXS:A:-",
		// single read on the transcript strand
		"s1\t0\tchr1\t131\t60\t20M50N30M\t*\t0\t0\t*\t*\tXS:A:+",
		// no strand information
		"n1\t0\tchr1\t141\t60\t50M\t*\t0\t0\t*\t*",
	)
	s, err := NewScanner(r, DefaultOptions())
	require.NoError(t, err)
	groups := collect(t, s)
	require.Len(t, groups, 1)

	e := groups[0].StrandEvidence()
	assert.Equal(t, StrandEvidence{Sense: 1, Antisense: 2}, e)

	e.Add(StrandEvidence{Sense: 4})
	assert.Equal(t, StrandEvidence{Sense: 5, Antisense: 2}, e)
}

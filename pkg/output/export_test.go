package output

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shao-Group/TERRACE/pkg/bundle"
)

func TestSupportingReads(t *testing.T) {
	circs := []CircRNARecord{
		{Chrom: "chr1", Start: 100, End: 500, Coverage: 2, ReadNames: []string{"a", "b"}},
		{Chrom: "chr1", Start: 900, End: 1500, Coverage: 1, ReadNames: []string{"c"}},
		{Chrom: "chr2", Start: 100, End: 500, Coverage: 3, ReadNames: []string{"d"}},
	}

	all := SupportingReads(circs, ExportOptions{})
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true, "d": true}, all)

	l, err := bundle.ParseLocus("chr1:0-1000")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true},
		SupportingReads(circs, ExportOptions{Locus: &l}))

	assert.Equal(t, map[string]bool{"a": true, "b": true, "d": true},
		SupportingReads(circs, ExportOptions{MinCoverage: 2}))
}

func TestExportBAM(t *testing.T) {
	in := "@HD\tVN:1.6\tSO:coordinate\n@SQ\tSN:chr1\tLN:100000\n" +
		"circ\t0\tchr1\t1001\t60\t30S70M\t*\t0\t0\t*\t*\n" +
		"lin\t0\tchr1\t1051\t60\t20M30N20M\t*\t0\t0\t*\t*\n" +
		"circ\t2048\tchr1\t1101\t60\t70M30H\t*\t0\t0\t*\t*\n"
	sr, err := sam.NewReader(strings.NewReader(in))
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := ExportBAM(sr, sr.Header(), &buf, map[string]bool{"circ": true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	br, err := bam.NewReader(&buf, 1)
	require.NoError(t, err)
	defer br.Close()

	var pos []int
	for {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, "circ", rec.Name)
		pos = append(pos, rec.Pos)
	}
	assert.Equal(t, []int{1000, 1100}, pos)
}

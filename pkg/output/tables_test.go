package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shao-Group/TERRACE/pkg/bridge"
)

func featureCirc() *bridge.CircularTranscript {
	c := &bridge.CircularTranscript{
		Chrom: "chr1", Strand: '-', Start: 100, End: 700,
		CircPath:           []int{0, 1, 2},
		MergedRegions:      []bridge.Region{{LPos: 100, RPos: 200}, {LPos: 300, RPos: 350}, {LPos: 600, RPos: 700}},
		Coverage:           4,
		PathScore:          2.5,
		CandidatePathCount: 6,
		Source:             "bridged",
		BundleSize:         120,
		RefTrstsSize:       3,
		FakeCount:          1,
		SuppleLen:          90,
	}
	c.PathCounts = [5]int{1, 2, 0, 1, 0}
	return c
}

func TestNewCircRNARecordFeatures(t *testing.T) {
	rec := NewCircRNARecord(featureCirc())

	assert.Equal(t, "chr1:100|700", rec.ID)
	assert.Equal(t, "chr1:100|700|200-300|350-600|", rec.Isoform)
	assert.Equal(t, 120, rec.BundleSize)
	assert.Equal(t, 3, rec.RefTrstsSize)
	assert.Equal(t, 1, rec.FakeCount)
	assert.Equal(t, int32(90), rec.SuppleLen)
	assert.Equal(t, 3, rec.ExonCount)
	assert.Equal(t, int32(250), rec.TotalExonLen)
	assert.Equal(t, int32(100), rec.MaxExonLen)
	assert.Equal(t, int32(50), rec.MinExonLen)
	assert.InDelta(t, 83.33, rec.AvgExonLen, 0.01)
}

func TestWriteFeatures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, []CircRNARecord{NewCircRNARecord(featureCirc())}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, FeatureHeader, rows[0])
	assert.Equal(t, []string{
		"chr1:100|700|200-300|350-600|", "120", "3", "4", "1", "90", "6", "2.5",
		"2", "0", "1", "0", "3", "250", "100", "50", "83.33",
	}, rows[1])
}

func TestWriteFeaturesEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, nil))
	assert.Equal(t, strings.Join(FeatureHeader, ",")+"\n", buf.String())
}

func TestWriteGTF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGTF(&buf, []CircRNARecord{NewCircRNARecord(featureCirc())}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	attrs := `gene_id "chr1:100|700|200-300|350-600|"; transcript_id "chr1:100|700|200-300|350-600|"; circ_id "chr1:100|700"; source "bridged"; cov "4";`
	assert.Equal(t, "chr1\tterrace\ttranscript\t101\t700\t4\t-\t.\t"+attrs, lines[0])
	assert.Equal(t, "chr1\tterrace\texon\t101\t200\t4\t-\t.\t"+attrs+` exon_number "1";`, lines[1])
	assert.Equal(t, "chr1\tterrace\texon\t301\t350\t4\t-\t.\t"+attrs+` exon_number "2";`, lines[2])
	assert.Equal(t, "chr1\tterrace\texon\t601\t700\t4\t-\t.\t"+attrs+` exon_number "3";`, lines[3])

	err := WriteGTF(&buf, []CircRNARecord{{ID: "chr1:1|2"}})
	assert.ErrorContains(t, err, "no exons")
}

func TestWriteCircRNAsTables(t *testing.T) {
	ctx := context.Background()
	recs := []CircRNARecord{NewCircRNARecord(featureCirc())}

	dir := t.TempDir()
	w, err := NewWriter(ctx, dir, DefaultWriterOptions())
	require.NoError(t, err)
	require.NoError(t, w.WriteCircRNAs(ctx, recs))
	for _, f := range []string{CircJSONFile, CircBEDFile, CircGTFFile, FeatureFile} {
		assert.FileExists(t, filepath.Join(dir, f))
	}

	off := DefaultWriterOptions()
	off.GTF = false
	off.Features = false
	dir = t.TempDir()
	w, err = NewWriter(ctx, dir, off)
	require.NoError(t, err)
	require.NoError(t, w.WriteCircRNAs(ctx, recs))
	assert.FileExists(t, filepath.Join(dir, CircBEDFile))
	_, err = os.Stat(filepath.Join(dir, CircGTFFile))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, FeatureFile))
	assert.True(t, os.IsNotExist(err))
}

package reference

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGTF = `#!genome-build test
chr1	test	gene	101	900	.	+	.	gene_id "g1";
chr1	test	exon	501	600	.	+	.	gene_id "g1"; transcript_id "t1";
chr1	test	exon	101	200	.	+	.	gene_id "g1"; transcript_id "t1";
chr1	test	exon	801	900	.	+	.	gene_id "g1"; transcript_id "t1";
chr1	test	exon	101	200	.	+	.	gene_id "g1"; transcript_id "t2";
chr1	test	exon	801	900	.	+	.	gene_id "g1"; transcript_id "t2";
chr2	test	exon	11	50	.	-	.	gene_id "g2"; transcript_id "t3";
`

func TestLoadGTF(t *testing.T) {
	ts, err := LoadGTF(strings.NewReader(testGTF))
	require.NoError(t, err)

	want := []Transcript{
		{ID: "t1", GeneID: "g1", Chrom: "chr1", Strand: '+', Exons: []Exon{{100, 200}, {500, 600}, {800, 900}}},
		{ID: "t2", GeneID: "g1", Chrom: "chr1", Strand: '+', Exons: []Exon{{100, 200}, {800, 900}}},
		{ID: "t3", GeneID: "g2", Chrom: "chr2", Strand: '-', Exons: []Exon{{10, 50}}},
	}
	if diff := cmp.Diff(want, ts); diff != "" {
		t.Errorf("transcripts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int32(100), ts[0].Start())
	assert.Equal(t, int32(900), ts[0].End())
}

func TestLoadGTFErrors(t *testing.T) {
	tests := map[string]string{
		"short line":   "chr1\ttest\texon\t1\t10\n",
		"bad start":    "chr1\ttest\texon\tx\t10\t.\t+\t.\ttranscript_id \"t\";\n",
		"inverted":     "chr1\ttest\texon\t20\t10\t.\t+\t.\ttranscript_id \"t\";\n",
		"no id":        "chr1\ttest\texon\t1\t10\t.\t+\t.\tgene_id \"g\";\n",
		"two contigs": "chr1\ttest\texon\t1\t10\t.\t+\t.\ttranscript_id \"t\";\n" +
			"chr2\ttest\texon\t20\t30\t.\t+\t.\ttranscript_id \"t\";\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadGTF(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestLoadGTFFileGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.gtf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(testGTF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	ts, err := LoadGTFFile(path)
	require.NoError(t, err)
	assert.Len(t, ts, 3)

	_, err = LoadGTFFile(filepath.Join(t.TempDir(), "missing.gtf"))
	assert.Error(t, err)
}

func TestParseAttributes(t *testing.T) {
	got := parseAttributes(`gene_id "g1"; transcript_id "t1"; exon_number 2; tag`)
	assert.Equal(t, map[string]string{
		"gene_id":       "g1",
		"transcript_id": "t1",
		"exon_number":   "2",
	}, got)
}

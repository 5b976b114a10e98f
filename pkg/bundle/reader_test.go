package bundle

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRecords(t *testing.T, r RecordReader) int {
	t.Helper()
	n := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			return n
		}
		require.NoError(t, err)
		n++
	}
}

func TestOpenReaderSAM(t *testing.T) {
	in := testHeader + "r1\t0\tchr1\t101\t60\t50M\t*\t0\t0\t*\t*\n"
	src, err := OpenReader(strings.NewReader(in), 1)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "SAM", src.Format)
	assert.Len(t, src.Header.Refs(), 2)
	assert.Equal(t, 1, countRecords(t, src))
}

func TestOpenBAM(t *testing.T) {
	ref, err := sam.NewReference("chr1", "", "", 100000, nil, nil)
	require.NoError(t, err)
	h, err := sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := bam.NewWriter(&buf, h, 1)
	require.NoError(t, err)
	for i, pos := range []int{100, 200} {
		rec, err := sam.NewRecord("r"+string(rune('a'+i)), ref, nil, pos, -1, 0, 60,
			[]sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 50)}, nil, nil, nil)
		require.NoError(t, err)
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "in.bam")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	src, err := Open(path, 2)
	require.NoError(t, err)
	assert.Equal(t, "BAM", src.Format)
	assert.Equal(t, 2, countRecords(t, src))
	require.NoError(t, src.Close())

	_, err = Open(filepath.Join(t.TempDir(), "missing.bam"), 1)
	assert.Error(t, err)
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "stdin", SourceName(StdinPath))
	assert.Equal(t, "a.bam", SourceName("a.bam"))
}

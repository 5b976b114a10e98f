package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shao-Group/TERRACE/pkg/bundle"
	"github.com/Shao-Group/TERRACE/pkg/output"
)

const testSAM = `@HD	VN:1.6	SO:coordinate
@SQ	SN:chr1	LN:100000
circ	0	chr1	1001	60	30S70M	*	0	0	*	*	SA:Z:chr1,1101,+,70M30S,60,0;
lin	0	chr1	1051	60	20M30N20M	*	0	0	*	*
circ	2048	chr1	1101	60	70M30H	*	0	0	*	*	SA:Z:chr1,1001,+,30S70M,60,0;
`

func TestBridgeStatsQuery(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sample.sam")
	out := filepath.Join(dir, "sample.terrace")
	require.NoError(t, os.WriteFile(in, []byte(testSAM), 0644))

	ctx := context.Background()
	rootCmd.SetArgs([]string{"bridge", in, out, "--workers=1", "--log-level=error"})
	require.NoError(t, rootCmd.ExecuteContext(ctx))

	r, err := output.OpenResult(ctx, out, "")
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "SAM", r.Metadata().Source.Format)
	assert.Equal(t, 1, r.Statistics().Bundles)

	circs, err := r.CircRNAs(ctx)
	require.NoError(t, err)
	require.Len(t, circs, 1)
	assert.Equal(t, "chr1:1000|1170", circs[0].ID)

	bed, err := os.ReadFile(filepath.Join(out, output.CircBEDFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(bed), "chr1\t1000\t1170\t"))

	gtf, err := os.ReadFile(filepath.Join(out, output.CircGTFFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(gtf), "chr1\tterrace\ttranscript\t1001\t1170\t"))
	features, err := os.ReadFile(filepath.Join(out, output.FeatureFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(features), "circRNA_id,bundle_size,"))
	assert.Equal(t, 2, strings.Count(string(features), "\n"))

	rootCmd.SetArgs([]string{"stats", out})
	require.NoError(t, rootCmd.ExecuteContext(ctx))

	rootCmd.SetArgs([]string{"query", out, "chr1:0-5000", "--circ"})
	require.NoError(t, rootCmd.ExecuteContext(ctx))

	reads := filepath.Join(dir, "circ.bam")
	rootCmd.SetArgs([]string{"extract", in, out, reads})
	require.NoError(t, rootCmd.ExecuteContext(ctx))
	src, err := bundle.Open(reads, 1)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, "BAM", src.Format)
	rec, err := src.Read()
	require.NoError(t, err)
	assert.Equal(t, "circ", rec.Name)

	rootCmd.SetArgs([]string{"query", out, "chr1:0"})
	assert.Error(t, rootCmd.ExecuteContext(ctx))
}

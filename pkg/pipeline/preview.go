package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/Shao-Group/TERRACE/internal/ctxlog"
	"github.com/Shao-Group/TERRACE/pkg/bridge"
	"github.com/Shao-Group/TERRACE/pkg/bundle"
)

// Library strandness reported by the preview
const (
	Unstranded = "unstranded"
	FRFirst    = "fr-first"  // first read antisense to the transcript
	FRSecond   = "fr-second" // first read on the transcript strand
)

// strandedFraction is the share of one orientation that calls a library stranded
const strandedFraction = 0.8

// previewConfig accepts any bridged length so the sample is not clipped
// by the bounds being estimated
func previewConfig(cfg bridge.Config) bridge.Config {
	cfg.InsertSizeLow = 0
	cfg.InsertSizeMedian = 20000
	cfg.InsertSizeHigh = 60000
	return cfg
}

// Preview is what a quick pass over the head of the input learned
type Preview struct {
	Bundles    int
	Fragments  int // bridged paired-end fragments sampled
	Mean       float64
	Std        float64
	Low        int32
	Median     int32
	High       int32
	Strand     bundle.StrandEvidence
	Strandness string
}

// Enough reports whether enough fragments were sampled to trust the bounds
func (pv *Preview) Enough(n int) bool {
	return pv.Fragments > 0 && pv.Fragments >= n
}

// Preview bridges the paired fragments of the first PreviewBundles bundles
// of r with permissive bounds and estimates the insert-size distribution
// and library strandness from them. r is consumed; reopen the input for Run.
func (p *Pipeline) Preview(ctx context.Context, r bundle.RecordReader) (*Preview, error) {
	logger := ctxlog.FromContext(ctx)
	scanner, err := bundle.NewScanner(r, p.opts.Ingest)
	if err != nil {
		return nil, err
	}
	cfg := previewConfig(p.opts.Bridge)

	pv := &Preview{}
	var lengths []int32
	for pv.Bundles < p.opts.PreviewBundles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		pv.Bundles++
		pv.Strand.Add(g.StrandEvidence())
		if g.Len() < 2 {
			continue
		}

		bd, err := bundle.Build(g, p.opts.Ingest)
		if err != nil {
			logger.Debug("preview skipped bundle", "chrom", g.Chrom, "lpos", g.LPos, "error", err)
			continue
		}
		if len(bd.Fragments) == 0 {
			continue
		}
		bridge.New(bd, cfg, logger).BridgeNormalFragments()
		for i := range bd.Fragments {
			fr := &bd.Fragments[i]
			if fr.Type == bridge.UMILinked || len(fr.Paths) != 1 || fr.Paths[0].Length <= 0 {
				continue
			}
			lengths = append(lengths, fr.Paths[0].Length)
		}
	}

	pv.Fragments = len(lengths)
	pv.Strandness = strandness(pv.Strand)
	if len(lengths) > 0 {
		pv.Low, pv.Median, pv.High, pv.Mean, pv.Std = insertSizes(lengths)
	}
	logger.Info("preview complete",
		"bundles", pv.Bundles,
		"fragments", pv.Fragments,
		"insert_low", pv.Low,
		"insert_median", pv.Median,
		"insert_high", pv.High,
		"strandness", pv.Strandness)
	return pv, nil
}

// ApplyPreview replaces the insert-size bounds with the estimated ones when
// the preview sampled at least PreviewMinFragments fragments
func (p *Pipeline) ApplyPreview(pv *Preview) (bool, error) {
	if pv == nil || !pv.Enough(p.opts.PreviewMinFragments) {
		return false, nil
	}
	cfg := p.opts.Bridge
	cfg.InsertSizeLow = pv.Low
	cfg.InsertSizeMedian = pv.Median
	cfg.InsertSizeHigh = pv.High
	if err := cfg.Validate(); err != nil {
		return false, fmt.Errorf("estimated insert sizes rejected: %w", err)
	}
	p.opts.Bridge = cfg
	return true, nil
}

// BridgeConfig returns the bridging configuration the run will use
func (p *Pipeline) BridgeConfig() bridge.Config {
	return p.opts.Bridge
}

// insertSizes returns the 0.5th, 50th and 99.5th percentiles with the mean
// and standard deviation of the sampled lengths
func insertSizes(lengths []int32) (low, median, high int32, mean, std float64) {
	v := append([]int32(nil), lengths...)
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
	at := func(q float64) int32 {
		return v[int(q*float64(len(v)-1))]
	}

	var sum, sq float64
	for _, x := range v {
		sum += float64(x)
		sq += float64(x) * float64(x)
	}
	n := float64(len(v))
	mean = sum / n
	std = math.Sqrt(math.Max(sq/n-mean*mean, 0))
	return at(0.005), at(0.5), at(0.995), mean, std
}

func strandness(e bundle.StrandEvidence) string {
	total := e.Sense + e.Antisense
	if total == 0 {
		return Unstranded
	}
	switch {
	case float64(e.Antisense) >= strandedFraction*float64(total):
		return FRFirst
	case float64(e.Sense) >= strandedFraction*float64(total):
		return FRSecond
	}
	return Unstranded
}

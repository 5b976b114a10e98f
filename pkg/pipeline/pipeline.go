// Package pipeline runs ingestion, bridging and circRNA assembly over a
// coordinate-sorted alignment stream with a pool of bundle workers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/Shao-Group/TERRACE/internal/ctxlog"
	"github.com/Shao-Group/TERRACE/pkg/bridge"
	"github.com/Shao-Group/TERRACE/pkg/bundle"
	"github.com/Shao-Group/TERRACE/pkg/output"
	"github.com/Shao-Group/TERRACE/pkg/reference"
)

const maxWorkers = 32

// Pipeline processes bundles in parallel and stores the results
type Pipeline struct {
	opts    Options
	ref     *reference.Index
	writer  *output.Writer
	workers int

	progressOut io.Writer
}

// Summary is the outcome of a run
type Summary struct {
	Statistics output.Statistics
	CircRNAs   []bridge.CircularTranscript
	Workers    int
}

// bundleJob is one group of alignments to process
type bundleJob struct {
	index int
	group *bundle.Group
}

// bundleResult is what a worker produced for one job
type bundleResult struct {
	index    int
	skipped  bool
	failed   bool
	normal   bridge.Report
	circular bridge.Report
	circs    []bridge.CircularTranscript
	circ     circStats
	err      error
}

// New creates a pipeline. ref and w may be nil: without ref no phases are
// used, without w nothing is stored.
func New(opts Options, ref *reference.Index, w *output.Writer) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DetectSystem().OptimalWorkers()
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return &Pipeline{opts: opts, ref: ref, writer: w, workers: workers, progressOut: os.Stderr}, nil
}

// SetProgressOutput redirects progress lines; nil silences them
func (p *Pipeline) SetProgressOutput(w io.Writer) {
	p.progressOut = w
}

// Workers returns the size of the worker pool
func (p *Pipeline) Workers() int {
	return p.workers
}

// Run reads r to the end, bridges every bundle and assembles circRNAs.
// The first storage or input error stops the run.
func (p *Pipeline) Run(ctx context.Context, r bundle.RecordReader) (*Summary, error) {
	logger := ctxlog.FromContext(ctx)

	scanner, err := bundle.NewScanner(r, p.opts.Ingest)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan bundleJob, p.workers*2)
	results := make(chan bundleResult, p.workers*2)

	var workerWg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		workerWg.Add(1)
		go func(id int) {
			defer workerWg.Done()
			wlog := logger.With("worker", id)
			for job := range jobs {
				res := p.process(ctx, job, wlog)
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}

	var (
		collected []bundleResult
		firstErr  error
		errOnce   sync.Once
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	prog := newProgress()
	var progressWg sync.WaitGroup
	progressDone := make(chan struct{})
	if p.progressOut != nil && p.opts.ProgressInterval > 0 {
		progressWg.Add(1)
		go func() {
			defer progressWg.Done()
			prog.report(p.progressOut, p.opts.ProgressInterval, progressDone)
		}()
	}

	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for res := range results {
			if res.err != nil {
				fail(res.err)
				continue
			}
			prog.add(&res)
			collected = append(collected, res)
		}
	}()

	index := 0
produce:
	for {
		g, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fail(err)
			break
		}
		select {
		case jobs <- bundleJob{index: index, group: g}:
			index++
		case <-ctx.Done():
			break produce
		}
	}
	close(jobs)
	workerWg.Wait()
	close(results)
	collectWg.Wait()
	close(progressDone)
	progressWg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })
	s := p.summarize(collected, scanner.Stats())
	logger.Info("run complete",
		"bundles", s.Statistics.Bundles,
		"skipped", s.Statistics.Skipped,
		"failed", s.Statistics.Failed,
		"circrnas", s.Statistics.CircRNAs)
	return s, nil
}

// process builds and bridges one bundle
func (p *Pipeline) process(ctx context.Context, job bundleJob, logger *slog.Logger) bundleResult {
	res := bundleResult{index: job.index}
	g := job.group
	blog := logger.With("bundle", fmt.Sprintf("%s:%d-%d", g.Chrom, g.LPos, g.RPos))

	if g.Len() < p.opts.MinHitsInBundle {
		res.skipped = true
		return res
	}
	if p.ref != nil && p.ref.Len() > 0 && !p.ref.HasChrom(g.Chrom) {
		res.skipped = true
		return res
	}

	bd, err := bundle.Build(g, p.opts.Ingest)
	if err != nil {
		blog.Warn("failed to build bundle", "error", err)
		res.failed = true
		return res
	}
	if p.ref != nil {
		bd.Ref = p.ref.PhaseIndex(bd)
	}

	br := bridge.New(bd, p.opts.Bridge, blog)
	res.normal = br.BridgeNormalFragments()
	res.circular = br.BridgeCircFragments()
	res.circs, res.circ = assembleCircRNAs(br, bd, blog)

	if p.writer != nil {
		if _, err := p.writer.WriteBundle(ctx, output.NewBundleRecord(bd, res.normal, res.circular)); err != nil {
			res.err = err
		}
	}
	return res
}

// summarize folds the per-bundle results in input order
func (p *Pipeline) summarize(results []bundleResult, reads bundle.Stats) *Summary {
	st := output.Statistics{
		Reads:    reads,
		Normal:   bridge.Report{Kind: "normal"},
		Circular: bridge.Report{Kind: "circular"},
	}
	var circs []bridge.CircularTranscript
	for _, res := range results {
		switch {
		case res.skipped:
			st.Skipped++
			continue
		case res.failed:
			st.Failed++
			continue
		}
		st.Bundles++
		st.Normal.Add(res.normal)
		st.Circular.Add(res.circular)
		st.ClippedCirc += res.circ.clipped
		st.ClipFailed += res.circ.clipFailed
		circs = append(circs, res.circs...)
	}

	var kept []bridge.CircularTranscript
	for i := range circs {
		if p.opts.Filter.Keep(&circs[i]) {
			kept = append(kept, circs[i])
		}
	}
	st.FilteredCirc = len(circs) - len(kept)

	collapsed := Collapse(kept)
	st.CollapsedCirc = len(kept) - len(collapsed)
	final := MergeNearby(collapsed, p.opts.Filter.MergeEndDiff)
	st.CircRNAs = len(final)

	return &Summary{Statistics: st, CircRNAs: final, Workers: p.workers}
}

// Store writes the circRNAs and metadata of a finished run
func (p *Pipeline) Store(ctx context.Context, s *Summary, src output.Source) (output.Metadata, error) {
	if p.writer == nil {
		return output.Metadata{}, fmt.Errorf("pipeline has no output writer")
	}
	recs := make([]output.CircRNARecord, len(s.CircRNAs))
	for i := range s.CircRNAs {
		recs[i] = output.NewCircRNARecord(&s.CircRNAs[i])
	}
	if err := p.writer.WriteCircRNAs(ctx, recs); err != nil {
		return output.Metadata{}, err
	}
	p.writer.SetSource(src)
	return p.writer.Finalize(ctx, s.Statistics)
}

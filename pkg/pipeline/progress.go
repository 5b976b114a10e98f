package pipeline

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// progress counts finished bundles while a run is in flight
type progress struct {
	start   time.Time
	bundles atomic.Int64
	circs   atomic.Int64
}

func newProgress() *progress {
	return &progress{start: time.Now()}
}

func (p *progress) add(res *bundleResult) {
	p.bundles.Add(1)
	p.circs.Add(int64(len(res.circs)))
}

// report prints a progress line every interval until done is closed
func (p *progress) report(w io.Writer, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			fmt.Fprintf(w, "\n")
			return
		case <-ticker.C:
			p.print(w)
		}
	}
}

func (p *progress) print(w io.Writer) {
	elapsed := time.Since(p.start)
	n := p.bundles.Load()
	fmt.Fprintf(w, "\rProgress: %d bundles (%.1f bundles/s) | circRNAs: %d | Elapsed: %s",
		n,
		float64(n)/elapsed.Seconds(),
		p.circs.Load(),
		FormatDuration(elapsed),
	)
}

// FormatDuration renders d as "1h 2m 3s", dropping leading zero units
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

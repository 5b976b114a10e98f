// Package reference loads annotated transcripts and projects them onto
// bundle regions as reference phases.
package reference

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Exon is a half-open, 0-based interval
type Exon struct {
	Start int32
	End   int32
}

// Transcript is one annotated isoform with exons in ascending order
type Transcript struct {
	ID     string
	GeneID string
	Chrom  string
	Strand byte
	Exons  []Exon
}

// Start returns the leftmost exon start
func (t *Transcript) Start() int32 {
	return t.Exons[0].Start
}

// End returns the rightmost exon end
func (t *Transcript) End() int32 {
	return t.Exons[len(t.Exons)-1].End
}

// LoadGTFFile reads a GTF file, gunzipping it when the name ends in .gz
func LoadGTFFile(path string) ([]Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip annotation: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return LoadGTF(r)
}

// LoadGTF parses the exon lines of a GTF stream and groups them by
// transcript_id. Transcripts keep the order of their first exon.
func LoadGTF(r io.Reader) ([]Transcript, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var ts []Transcript
	index := make(map[string]int)

	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 9 {
			return nil, fmt.Errorf("gtf line %d: expected 9 fields, got %d", line, len(fields))
		}
		if fields[2] != "exon" {
			continue
		}

		start, err := strconv.ParseInt(fields[3], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("gtf line %d: invalid start %q", line, fields[3])
		}
		end, err := strconv.ParseInt(fields[4], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("gtf line %d: invalid end %q", line, fields[4])
		}
		if start < 1 || end < start {
			return nil, fmt.Errorf("gtf line %d: invalid interval %d-%d", line, start, end)
		}

		attrs := parseAttributes(fields[8])
		tid := attrs["transcript_id"]
		if tid == "" {
			return nil, fmt.Errorf("gtf line %d: exon without transcript_id", line)
		}

		strand := byte('.')
		if len(fields[6]) == 1 {
			strand = fields[6][0]
		}

		i, ok := index[tid]
		if !ok {
			i = len(ts)
			index[tid] = i
			ts = append(ts, Transcript{
				ID:     tid,
				GeneID: attrs["gene_id"],
				Chrom:  fields[0],
				Strand: strand,
			})
		} else if ts[i].Chrom != fields[0] {
			return nil, fmt.Errorf("gtf line %d: transcript %s spans %s and %s", line, tid, ts[i].Chrom, fields[0])
		}
		ts[i].Exons = append(ts[i].Exons, Exon{Start: int32(start - 1), End: int32(end)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read annotation: %w", err)
	}

	for i := range ts {
		ex := ts[i].Exons
		sort.Slice(ex, func(a, b int) bool { return ex[a].Start < ex[b].Start })
	}
	return ts, nil
}

// parseAttributes reads `key "value";` pairs
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}
		attrs[k] = strings.Trim(strings.TrimSpace(v), `"`)
	}
	return attrs
}

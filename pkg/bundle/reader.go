package bundle

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// StdinPath selects standard input as the alignment source
const StdinPath = "-"

// RecordReader yields alignment records in file order
type RecordReader interface {
	Read() (*sam.Record, error)
}

// Source is an opened BAM or SAM stream
type Source struct {
	RecordReader
	Header *sam.Header
	Format string // "BAM" or "SAM"

	closers []io.Closer
}

// Open opens a BAM or SAM file, or standard input when path is "-".
// The format is detected from the content. BAM decompression runs on the
// given number of goroutines.
func Open(path string, threads int) (*Source, error) {
	if path == StdinPath {
		return OpenReader(os.Stdin, threads)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alignment file: %w", err)
	}
	src, err := OpenReader(f, threads)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closers = append(src.closers, f)
	return src, nil
}

// OpenReader reads BAM when the stream starts with the gzip magic, SAM otherwise
func OpenReader(r io.Reader, threads int) (*Source, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read alignment stream: %w", err)
	}

	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		r, err := bam.NewReader(br, threads)
		if err != nil {
			return nil, fmt.Errorf("failed to create BAM reader: %w", err)
		}
		return &Source{RecordReader: r, Header: r.Header(), Format: "BAM", closers: []io.Closer{r}}, nil
	}

	sr, err := sam.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to create SAM reader: %w", err)
	}
	return &Source{RecordReader: sr, Header: sr.Header(), Format: "SAM"}, nil
}

// SourceName is how a path is recorded in result metadata
func SourceName(path string) string {
	if path == StdinPath {
		return "stdin"
	}
	return path
}

// Close releases the reader and the underlying file
func (s *Source) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

package output

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"sync"
	"time"
)

// WriterOptions controls how a result set is stored
type WriterOptions struct {
	Compression string `mapstructure:"compression"`
	Level       int    `mapstructure:"compression-level"`
	AWSRegion   string `mapstructure:"aws-region"`
	GTF         bool   `mapstructure:"gtf"`
	Features    bool   `mapstructure:"features"`
}

// DefaultWriterOptions stores zstd-compressed chunks, the GTF and the
// feature table
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Compression: CompressionZstd, GTF: true, Features: true}
}

// Validate checks option values
func (o WriterOptions) Validate() error {
	switch o.Compression {
	case CompressionNone, CompressionZstd:
	default:
		return fmt.Errorf("compression must be %q or %q, got %q", CompressionNone, CompressionZstd, o.Compression)
	}
	if o.Level < 0 || o.Level > 4 {
		return fmt.Errorf("compression-level must be in [0, 4], got %d", o.Level)
	}
	return nil
}

// Writer stores bundle chunks, circRNAs and metadata. WriteBundle may be
// called from several goroutines.
type Writer struct {
	storage    Storage
	opts       WriterOptions
	compressor *Compressor

	mu       sync.Mutex
	metadata Metadata
	chunks   []ChunkInfo
}

// NewWriter creates a writer for a local directory or an s3:// location
func NewWriter(ctx context.Context, path string, opts WriterOptions) (*Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	storage, err := NewStorage(ctx, path, opts.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	return newWriter(storage, opts)
}

func newWriter(storage Storage, opts WriterOptions) (*Writer, error) {
	w := &Writer{
		storage: storage,
		opts:    opts,
		metadata: Metadata{
			Format:    FormatName,
			Version:   FormatVersion,
			Created:   time.Now(),
			CreatedBy: "terrace",
			Compression: CompressionConfig{
				Algorithm: opts.Compression,
				Level:     opts.Level,
			},
		},
	}
	if opts.Compression == CompressionZstd {
		c, err := NewCompressor(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to create compressor: %w", err)
		}
		w.compressor = c
	}
	return w, nil
}

// Storage returns the backend the writer stores into
func (w *Writer) Storage() Storage {
	return w.storage
}

// SetSource records the inputs of the run
func (w *Writer) SetSource(src Source) {
	w.mu.Lock()
	w.metadata.Source = src
	w.mu.Unlock()
}

// chunkPath names the chunk of a bundle
func (w *Writer) chunkPath(chrom string, start, end int32) string {
	name := fmt.Sprintf("%09d-%09d.json", start, end)
	if w.compressor != nil {
		name += ".zst"
	}
	return path.Join(BundlesDir, chrom, name)
}

// WriteBundle stores one bundle record and returns its chunk info
func (w *Writer) WriteBundle(ctx context.Context, rec BundleRecord) (ChunkInfo, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return ChunkInfo{}, fmt.Errorf("failed to encode bundle %s:%d-%d: %w", rec.Chrom, rec.Start, rec.End, err)
	}
	if w.compressor != nil {
		data = w.compressor.Compress(data)
	}

	p := w.chunkPath(rec.Chrom, rec.Start, rec.End)
	if err := w.storage.WriteFile(ctx, p, data); err != nil {
		return ChunkInfo{}, fmt.Errorf("failed to write chunk %s: %w", p, err)
	}

	info := ChunkInfo{
		Path:        p,
		Reference:   rec.Chrom,
		Start:       int(rec.Start),
		End:         int(rec.End),
		Fragments:   rec.Normal.Total,
		Bridged:     rec.Normal.Bridged(),
		SizeBytes:   int64(len(data)),
		Compression: w.opts.Compression,
		Checksum:    fmt.Sprintf("%x", sha256.Sum256(data)),
		Created:     time.Now(),
	}

	w.mu.Lock()
	w.chunks = append(w.chunks, info)
	w.mu.Unlock()
	return info, nil
}

// WriteCircRNAs stores the circRNAs as JSON and BED12, plus GTF and the
// feature table when enabled
func (w *Writer) WriteCircRNAs(ctx context.Context, recs []CircRNARecord) error {
	if recs == nil {
		recs = []CircRNARecord{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode circRNAs: %w", err)
	}
	if err := w.storage.WriteFile(ctx, CircJSONFile, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", CircJSONFile, err)
	}

	var bed bytes.Buffer
	if err := WriteBED(&bed, recs); err != nil {
		return err
	}
	if err := w.storage.WriteFile(ctx, CircBEDFile, bed.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", CircBEDFile, err)
	}

	if w.opts.GTF {
		if err := w.writeTable(ctx, CircGTFFile, recs, WriteGTF); err != nil {
			return err
		}
	}
	if w.opts.Features {
		if err := w.writeTable(ctx, FeatureFile, recs, WriteFeatures); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeTable(ctx context.Context, p string, recs []CircRNARecord, write func(io.Writer, []CircRNARecord) error) error {
	var buf bytes.Buffer
	if err := write(&buf, recs); err != nil {
		return err
	}
	if err := w.storage.WriteFile(ctx, p, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// Finalize writes the metadata and the spatial index
func (w *Writer) Finalize(ctx context.Context, stats Statistics) (Metadata, error) {
	w.mu.Lock()
	sort.Slice(w.chunks, func(i, j int) bool {
		a, b := w.chunks[i], w.chunks[j]
		if a.Reference != b.Reference {
			return a.Reference < b.Reference
		}
		return a.Start < b.Start
	})
	w.metadata.Statistics = stats
	w.metadata.Chunks = append([]ChunkInfo(nil), w.chunks...)
	md := w.metadata
	w.mu.Unlock()

	if w.compressor != nil {
		w.compressor.Close()
	}

	if err := w.writeJSON(ctx, IndexFile, buildIndex(md.Chunks)); err != nil {
		return md, fmt.Errorf("failed to write spatial index: %w", err)
	}
	if err := w.writeJSON(ctx, MetadataFile, md); err != nil {
		return md, fmt.Errorf("failed to write metadata: %w", err)
	}
	return md, nil
}

func (w *Writer) writeJSON(ctx context.Context, p string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return w.storage.WriteFile(ctx, p, data)
}

func buildIndex(chunks []ChunkInfo) SpatialIndex {
	idx := SpatialIndex{References: make(map[string]ReferenceIndex)}
	for _, c := range chunks {
		ref := idx.References[c.Reference]
		ref.Name = c.Reference
		ref.Chunks = append(ref.Chunks, c)
		idx.References[c.Reference] = ref
	}
	return idx
}

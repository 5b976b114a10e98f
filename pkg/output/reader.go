package output

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Shao-Group/TERRACE/pkg/bundle"
)

// ErrChecksumMismatch is returned when a chunk does not match its recorded checksum
var ErrChecksumMismatch = errors.New("chunk checksum mismatch")

// Reader reads a result set written by Writer
type Reader struct {
	storage    Storage
	metadata   Metadata
	index      SpatialIndex
	compressor *Compressor
}

// OpenResult opens a result set in a local directory or an s3:// location
func OpenResult(ctx context.Context, path, awsRegion string) (*Reader, error) {
	storage, err := NewStorage(ctx, path, awsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	return openResult(ctx, storage)
}

func openResult(ctx context.Context, storage Storage) (*Reader, error) {
	r := &Reader{storage: storage}

	if err := r.loadJSON(ctx, MetadataFile, &r.metadata); err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	if r.metadata.Format != FormatName {
		return nil, fmt.Errorf("unexpected format %q in %s", r.metadata.Format, MetadataFile)
	}
	if err := r.loadJSON(ctx, IndexFile, &r.index); err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	if r.metadata.Compression.Algorithm == CompressionZstd {
		c, err := NewCompressor(0)
		if err != nil {
			return nil, err
		}
		r.compressor = c
	}
	return r, nil
}

func (r *Reader) loadJSON(ctx context.Context, p string, v any) error {
	data, err := r.storage.ReadFile(ctx, p)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Metadata returns the result set metadata
func (r *Reader) Metadata() Metadata {
	return r.metadata
}

// Statistics returns the run statistics
func (r *Reader) Statistics() Statistics {
	return r.metadata.Statistics
}

// FindChunks returns the chunks overlapping the locus in position order
func (r *Reader) FindChunks(l bundle.Locus) []ChunkInfo {
	ref, ok := r.index.References[l.Reference]
	if !ok {
		return nil
	}
	if l.End < 0 {
		return ref.Chunks
	}
	chunks := ref.Chunks
	i := sort.Search(len(chunks), func(i int) bool { return chunks[i].End > l.Start })
	var out []ChunkInfo
	for ; i < len(chunks) && chunks[i].Start < l.End; i++ {
		out = append(out, chunks[i])
	}
	return out
}

// QueryRegion loads the bundles overlapping the locus
func (r *Reader) QueryRegion(ctx context.Context, l bundle.Locus) ([]BundleRecord, error) {
	var recs []BundleRecord
	for _, c := range r.FindChunks(l) {
		rec, err := r.LoadChunk(ctx, c)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// LoadChunk reads, verifies and decodes one bundle chunk
func (r *Reader) LoadChunk(ctx context.Context, c ChunkInfo) (BundleRecord, error) {
	var rec BundleRecord
	data, err := r.storage.ReadFile(ctx, c.Path)
	if err != nil {
		return rec, fmt.Errorf("failed to load chunk %s: %w", c.Path, err)
	}
	if sum := fmt.Sprintf("%x", sha256.Sum256(data)); c.Checksum != "" && sum != c.Checksum {
		return rec, fmt.Errorf("%w: %s", ErrChecksumMismatch, c.Path)
	}
	if c.Compression == CompressionZstd {
		if r.compressor == nil {
			return rec, fmt.Errorf("chunk %s is zstd-compressed but the result set is not", c.Path)
		}
		if data, err = r.compressor.Decompress(data); err != nil {
			return rec, fmt.Errorf("chunk %s: %w", c.Path, err)
		}
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to parse chunk %s: %w", c.Path, err)
	}
	return rec, nil
}

// CircRNAs loads the stored circRNAs
func (r *Reader) CircRNAs(ctx context.Context) ([]CircRNARecord, error) {
	var recs []CircRNARecord
	if err := r.loadJSON(ctx, CircJSONFile, &recs); err != nil {
		return nil, fmt.Errorf("failed to load circRNAs: %w", err)
	}
	return recs, nil
}

// Close releases the decoder
func (r *Reader) Close() error {
	if r.compressor != nil {
		r.compressor.Close()
	}
	return nil
}

package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Storage reads and writes the files of a result set.
// Paths are slash-separated and relative to the base path.
type Storage interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	// List returns the files under prefix, relative to the base path
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
	BasePath() string
	IsS3() bool
}

// NewStorage picks S3 for s3:// paths and the local filesystem otherwise
func NewStorage(ctx context.Context, path, region string) (Storage, error) {
	if IsS3URI(path) {
		return NewS3Storage(ctx, path, region)
	}
	return NewLocalStorage(path), nil
}

// LocalStorage keeps result files under a directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a local storage rooted at basePath
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

func (s *LocalStorage) full(p string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(p))
}

func (s *LocalStorage) ReadFile(_ context.Context, p string) ([]byte, error) {
	return os.ReadFile(s.full(p))
}

func (s *LocalStorage) WriteFile(_ context.Context, p string, data []byte) error {
	fullPath := s.full(p)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

func (s *LocalStorage) List(_ context.Context, prefix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.full(prefix), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return files, err
}

func (s *LocalStorage) Exists(_ context.Context, p string) (bool, error) {
	_, err := os.Stat(s.full(p))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *LocalStorage) BasePath() string {
	return s.basePath
}

func (s *LocalStorage) IsS3() bool {
	return false
}

// S3URI is a parsed s3://bucket/prefix location
type S3URI struct {
	Bucket string
	Prefix string
}

// IsS3URI reports whether path is an s3:// location
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ParseS3URI splits an s3:// location into bucket and prefix
func ParseS3URI(uri string) (*S3URI, error) {
	if !IsS3URI(uri) {
		return nil, fmt.Errorf("invalid S3 URI: %s (must start with s3://)", uri)
	}
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
	if bucket == "" {
		return nil, fmt.Errorf("invalid S3 URI: %s (missing bucket name)", uri)
	}
	return &S3URI{Bucket: bucket, Prefix: strings.TrimSuffix(prefix, "/")}, nil
}

func (u *S3URI) key(p string) string {
	if u.Prefix == "" {
		return p
	}
	return path.Join(u.Prefix, p)
}

func (u *S3URI) String() string {
	if u.Prefix == "" {
		return "s3://" + u.Bucket
	}
	return "s3://" + u.Bucket + "/" + u.Prefix
}

// S3Storage keeps result files in an S3 bucket
type S3Storage struct {
	uri        *S3URI
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader

	mu            sync.Mutex
	uploadedBytes int64
}

// NewS3Storage creates an S3 storage; an empty region uses the default chain
func NewS3Storage(ctx context.Context, uri, region string) (*S3Storage, error) {
	u, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Storage{
		uri:    u,
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = 10 * 1024 * 1024
			u.Concurrency = 3
		}),
		downloader: manager.NewDownloader(client),
	}, nil
}

func (s *S3Storage) ReadFile(ctx context.Context, p string) ([]byte, error) {
	key := s.uri.key(p)
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.uri.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.uri.Bucket, key, err)
	}
	return buf.Bytes(), nil
}

func (s *S3Storage) WriteFile(ctx context.Context, p string, data []byte) error {
	key := s.uri.key(p)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.uri.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.uri.Bucket, key, err)
	}

	s.mu.Lock()
	s.uploadedBytes += int64(len(data))
	s.mu.Unlock()
	return nil
}

func (s *S3Storage) List(ctx context.Context, prefix string) ([]string, error) {
	var files []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.uri.Bucket),
		Prefix: aws.String(s.uri.key(prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if s.uri.Prefix != "" {
				key = strings.TrimPrefix(key, s.uri.Prefix+"/")
			}
			files = append(files, key)
		}
	}
	return files, nil
}

func (s *S3Storage) Exists(ctx context.Context, p string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.uri.Bucket),
		Key:    aws.String(s.uri.key(p)),
	})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, err
}

func (s *S3Storage) BasePath() string {
	return s.uri.String()
}

func (s *S3Storage) IsS3() bool {
	return true
}

// UploadedBytes returns the bytes written so far
func (s *S3Storage) UploadedBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadedBytes
}

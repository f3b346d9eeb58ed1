package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ulikunitz/xz"

	"github.com/knowledge-engine/ayahfinder/internal/fetcher"
)

// DatasetStorage defines the interface for reading raw datasets
type DatasetStorage interface {
	Get(ctx context.Context, location string) ([]byte, error)
	Save(name string, data []byte) error
	Close() error
}

// FileStorage implements DatasetStorage on the local file system. Remote
// locations are downloaded through the fetcher when one is configured.
// Files ending in ".xz" are decompressed transparently.
type FileStorage struct {
	baseDir string
	fetcher *fetcher.Fetcher
	mu      sync.RWMutex
}

// NewFileStorage creates a new file-based storage
func NewFileStorage(baseDir string, f *fetcher.Fetcher) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{
		baseDir: baseDir,
		fetcher: f,
	}, nil
}

// BaseDir returns the directory local locations are resolved against
func (fs *FileStorage) BaseDir() string {
	return fs.baseDir
}

// Get reads the dataset at location
func (fs *FileStorage) Get(ctx context.Context, location string) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if fetcher.IsRemote(location) {
		if fs.fetcher == nil {
			return nil, fmt.Errorf("remote location %s: no fetcher configured", location)
		}
		res, ferr := fs.fetcher.Fetch(ctx, location)
		if ferr != nil {
			return nil, ferr
		}
		data = res.Body
	} else {
		fs.mu.RLock()
		data, err = os.ReadFile(fs.path(location))
		fs.mu.RUnlock()
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}

	if isCompressed(location) {
		return decompress(data)
	}
	return data, nil
}

// Save writes a dataset under name. Names ending in ".xz" are compressed.
func (fs *FileStorage) Save(name string, data []byte) error {
	if isCompressed(name) {
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("failed to create xz writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("failed to compress: %w", err)
		}
		data = buf.Bytes()
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := fs.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Close is a no-op for file storage
func (fs *FileStorage) Close() error {
	return nil
}

func (fs *FileStorage) path(location string) string {
	if filepath.IsAbs(location) {
		return location
	}
	return filepath.Join(fs.baseDir, filepath.FromSlash(location))
}

func isCompressed(location string) bool {
	return strings.HasSuffix(strings.ToLower(location), ".xz")
}

func decompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xz stream: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return out, nil
}

// LocalName derives a file name for saving a remote location offline
func LocalName(location string) string {
	if !fetcher.IsRemote(location) {
		return location
	}
	name := location
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = name[strings.LastIndex(name, "/")+1:]
	if name == "" {
		return safeFilename(location)
	}
	return name
}

// safeFilename converts a URL to a safe filename
func safeFilename(rawURL string) string {
	var b strings.Builder
	for _, r := range rawURL {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	safe := b.String()
	if len(safe) > 100 {
		safe = safe[:100]
	}
	return safe + ".json"
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
)

// FileSource reads the catalog from the local filesystem
type FileSource struct {
	path    string
	maxSize int64
}

// NewFileSource creates a FileSource
func NewFileSource(path string, maxSize int64) *FileSource {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &FileSource{path: path, maxSize: maxSize}
}

// Fetch reads the whole file
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	data, err := readLimited(f, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", s.path, err)
	}
	return data, nil
}

// Describe returns file:<path>
func (s *FileSource) Describe() string {
	return "file:" + s.path
}

var _ catalog.Source = (*FileSource)(nil)

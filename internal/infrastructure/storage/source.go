// Package storage provides the catalog document sources: local files, HTTP(S)
// endpoints and S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
	infraconfig "github.com/coupang-catalog/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DefaultMaxSize bounds a catalog document when no limit is configured
const DefaultMaxSize int64 = 32 << 20

var (
	// ErrSourceNotFound is returned when the document does not exist
	ErrSourceNotFound = errors.New("catalog source not found")
	// ErrSourceTooLarge is returned when the document exceeds the size limit
	ErrSourceTooLarge = errors.New("catalog source exceeds size limit")
	// ErrUnexpectedStatus is returned for non-2xx HTTP responses
	ErrUnexpectedStatus = errors.New("catalog source returned unexpected status")
	// ErrUnsupportedScheme is returned for URIs no source can serve
	ErrUnsupportedScheme = errors.New("unsupported catalog source scheme")
)

// Options configures source construction
type Options struct {
	// Storage is required for s3:// sources
	Storage    *infraconfig.StorageConfig
	HTTPClient *http.Client
	Timeout    time.Duration
	MaxSize    int64
	Logger     *zap.Logger
}

func (o Options) maxSize() int64 {
	if o.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return o.MaxSize
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// NewSource picks a source implementation from the URI scheme.
// Supported: plain paths, file://, http://, https:// and s3://bucket/key.
func NewSource(ctx context.Context, uri string, opts Options) (catalog.Source, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, errors.New("catalog source is required")
	}

	if !strings.Contains(uri, "://") {
		return NewFileSource(uri, opts.maxSize()), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog source %q: %w", uri, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		path := u.Path
		if u.Host != "" {
			path = u.Host + u.Path
		}
		return NewFileSource(path, opts.maxSize()), nil
	case "http", "https":
		return NewHTTPSource(uri, opts.HTTPClient, opts.Timeout, opts.maxSize()), nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 catalog source must look like s3://bucket/key, got %q", uri)
		}
		return NewS3Source(ctx, opts.Storage, u.Host, key,
			WithLogger(opts.logger()),
			WithMaxSize(opts.maxSize()),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// readLimited reads r fully, failing once more than limit bytes arrive
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrSourceTooLarge, limit)
	}
	return buf.Bytes(), nil
}

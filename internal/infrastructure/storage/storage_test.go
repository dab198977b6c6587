package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	infraconfig "github.com/coupang-catalog/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sampleDocument = `{"popular_products":[{"name":"A","price":"₩1,000","rating":4.5,"review_count":10,"product_url":"https://example.com/a"}]}`

func TestNewSource(t *testing.T) {
	ctx := context.Background()
	storageCfg := &infraconfig.StorageConfig{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	}

	tests := []struct {
		name     string
		uri      string
		describe string
		wantErr  string
	}{
		{name: "plain path", uri: "data/products.json", describe: "file:data/products.json"},
		{name: "file uri", uri: "file:///var/lib/catalog.json", describe: "file:/var/lib/catalog.json"},
		{name: "http url", uri: "http://example.com/c.json", describe: "http://example.com/c.json"},
		{name: "https url", uri: "https://example.com/c.json", describe: "https://example.com/c.json"},
		{name: "s3 uri", uri: "s3://catalogs/2024/latest.json", describe: "s3://catalogs/2024/latest.json"},
		{name: "s3 uri without key", uri: "s3://catalogs", wantErr: "s3://bucket/key"},
		{name: "unknown scheme", uri: "ftp://example.com/c.json", wantErr: "unsupported catalog source scheme"},
		{name: "empty", uri: "  ", wantErr: "catalog source is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(ctx, tt.uri, Options{Storage: storageCfg})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.describe, src.Describe())
		})
	}

	t.Run("s3 without storage config", func(t *testing.T) {
		_, err := NewSource(ctx, "s3://catalogs/latest.json", Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage configuration is required")
	})
}

func TestFileSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o600))

	t.Run("reads the file", func(t *testing.T) {
		data, err := NewFileSource(path, 0).Fetch(context.Background())
		require.NoError(t, err)
		assert.JSONEq(t, sampleDocument, string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(dir, "absent.json"), 0).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})

	t.Run("file larger than limit", func(t *testing.T) {
		_, err := NewFileSource(path, 8).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrSourceTooLarge)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFileSource(path, 0).Fetch(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products.json":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleDocument))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(sampleDocument))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	t.Run("2xx returns the body", func(t *testing.T) {
		data, err := NewHTTPSource(server.URL+"/products.json", nil, time.Second, 0).Fetch(context.Background())
		require.NoError(t, err)
		assert.JSONEq(t, sampleDocument, string(data))
	})

	t.Run("non-2xx fails", func(t *testing.T) {
		_, err := NewHTTPSource(server.URL+"/broken", nil, time.Second, 0).Fetch(context.Background())
		require.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("404 is not found", func(t *testing.T) {
		_, err := NewHTTPSource(server.URL+"/missing", nil, time.Second, 0).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})

	t.Run("client timeout", func(t *testing.T) {
		_, err := NewHTTPSource(server.URL+"/slow", nil, 20*time.Millisecond, 0).Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch catalog")
	})

	t.Run("body larger than limit", func(t *testing.T) {
		_, err := NewHTTPSource(server.URL+"/products.json", nil, time.Second, 16).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrSourceTooLarge)
	})
}

func TestS3Source_Fetch(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	var (
		mu        sync.Mutex
		requested []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "AWS4-HMAC-SHA256"))

		switch r.URL.Path {
		case "/catalogs/latest.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleDocument))
		default:
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
		}
	}))
	defer server.Close()

	cfg := &infraconfig.StorageConfig{
		Endpoint:        server.URL,
		Region:          "ap-northeast-2",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}
	ctx := context.Background()

	t.Run("downloads the object with path-style addressing", func(t *testing.T) {
		src, err := NewS3Source(ctx, cfg, "catalogs", "latest.json", WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)

		data, err := src.Fetch(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, sampleDocument, string(data))
		mu.Lock()
		assert.Contains(t, requested, "/catalogs/latest.json")
		mu.Unlock()
		assert.Equal(t, "catalogs", src.Bucket())
	})

	t.Run("missing key is not found", func(t *testing.T) {
		src, err := NewS3Source(ctx, cfg, "catalogs", "absent.json")
		require.NoError(t, err)

		_, err = src.Fetch(ctx)
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})

	t.Run("object larger than limit", func(t *testing.T) {
		src, err := NewS3Source(ctx, cfg, "catalogs", "latest.json", WithMaxSize(10))
		require.NoError(t, err)

		_, err = src.Fetch(ctx)
		assert.ErrorIs(t, err, ErrSourceTooLarge)
	})
}

func TestNewS3Source_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3Source(ctx, nil, "b", "k")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("access key without secret", func(t *testing.T) {
		_, err := NewS3Source(ctx, &infraconfig.StorageConfig{AccessKeyID: "k"}, "b", "k")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret access key is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, err := NewS3Source(ctx, &infraconfig.StorageConfig{}, "", "k")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})
}

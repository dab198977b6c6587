package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPSource downloads the catalog with a GET request
type HTTPSource struct {
	url     string
	client  *http.Client
	maxSize int64
}

// NewHTTPSource creates an HTTPSource. A nil client gets a traced client
// with the given timeout.
func NewHTTPSource(url string, client *http.Client, timeout time.Duration, maxSize int64) *HTTPSource {
	if client == nil {
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &HTTPSource{url: url, client: client, maxSize: maxSize}
}

// Fetch performs the GET and returns the body of a 2xx response
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	data, err := readLimited(resp.Body, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}
	return data, nil
}

// Describe returns the URL
func (s *HTTPSource) Describe() string {
	return s.url
}

var _ catalog.Source = (*HTTPSource)(nil)

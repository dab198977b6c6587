// Package notion writes catalog products into Notion databases.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/coupang-catalog/backend/internal/domain/integration"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Adapter implements integration.NotionGateway over the Notion REST API
type Adapter struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithHTTPClient replaces the traced default client
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		a.httpClient = c
	}
}

// WithLogger sets the adapter logger
func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

// NewAdapter creates a new Notion adapter
func NewAdapter(config *Config, opts ...Option) (*Adapter, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// CreatePage creates one page in a database
func (a *Adapter) CreatePage(ctx context.Context, apiKey string, req integration.NotionPageRequest) (*integration.NotionPage, error) {
	var resp pageResponse
	if err := a.post(ctx, "/v1/pages", apiKey, req, &resp); err != nil {
		return nil, err
	}
	return &integration.NotionPage{ID: resp.ID, URL: resp.URL}, nil
}

// CreateDatabase creates a database under a page
func (a *Adapter) CreateDatabase(ctx context.Context, apiKey string, req integration.NotionDatabaseRequest) (*integration.NotionDatabase, error) {
	var resp databaseResponse
	if err := a.post(ctx, "/v1/databases", apiKey, req, &resp); err != nil {
		return nil, err
	}

	title := plainText(resp.Title)
	if title == "" && len(req.Title) > 0 {
		title = req.Title[0].Text.Content
	}
	return &integration.NotionDatabase{ID: resp.ID, URL: resp.URL, Title: title}, nil
}

func (a *Adapter) post(ctx context.Context, path, apiKey string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notion: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notion: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Notion-Version", a.config.Version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return integration.NewTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return integration.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		de := integration.NewHTTPStatusError(resp.StatusCode)
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			de.Message = fmt.Sprintf("%s (%s: %s)", de.Message, apiErr.Code, apiErr.Message)
		}
		a.logger.Warn("notion request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		return de
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &integration.DispatchError{
			Kind:    integration.ErrIntegration,
			Message: "Notion 응답을 해석할 수 없습니다.",
			Err:     err,
		}
	}
	return nil
}

var _ integration.NotionGateway = (*Adapter)(nil)

// Package n8n posts catalog payloads to n8n webhooks and reads workflow
// executions from the n8n public API.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/coupang-catalog/backend/internal/domain/integration"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Adapter implements the webhook and execution gateways over HTTP
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

// NewAdapter creates a new n8n adapter with the given configuration
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

// Post sends req.Body as JSON to req.URL
func (a *Adapter) Post(ctx context.Context, req integration.WebhookRequest) (*integration.WebhookResponse, error) {
	target, err := parseHTTPURL(req.URL)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("n8n: failed to encode payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("n8n: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.APIKey != "" {
		httpReq.Header.Set(APIKeyHeader, req.APIKey)
	}

	status, respBody, err := a.do(httpReq)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("n8n webhook accepted",
		zap.String("host", httpReq.URL.Host),
		zap.Int("status", status),
		zap.Int("request_bytes", len(body)),
	)
	return &integration.WebhookResponse{StatusCode: status, Body: respBody}, nil
}

// GetExecution reads one execution from <baseURL>/api/v1/executions/<id>.
// An empty baseURL falls back to the configured API base.
func (a *Adapter) GetExecution(ctx context.Context, baseURL, apiKey, executionID string) (*integration.Execution, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = a.config.APIBaseURL
	}
	base, err := parseHTTPURL(baseURL)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(base, "/") + "/api/v1/executions/" + url.PathEscape(executionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("n8n: failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(APIKeyHeader, apiKey)

	_, respBody, err := a.do(httpReq)
	if err != nil {
		return nil, err
	}

	var resp executionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &integration.DispatchError{
			Kind:    integration.ErrIntegration,
			Message: "n8n 실행 정보를 해석할 수 없습니다.",
			Err:     err,
		}
	}

	id := rawID(resp.ID)
	if id == "" {
		id = executionID
	}
	return &integration.Execution{
		ID:         id,
		Status:     resp.status(),
		StartedAt:  resp.StartedAt,
		FinishedAt: resp.StoppedAt,
		Data:       resp.Data,
	}, nil
}

// do executes req and classifies failures: network errors are transport
// errors, non-2xx replies are integration errors
func (a *Adapter) do(req *http.Request) (int, []byte, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, nil, integration.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.config.MaxResponseSize))
	if err != nil {
		return 0, nil, integration.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.logger.Warn("n8n request failed",
			zap.String("method", req.Method),
			zap.String("host", req.URL.Host),
			zap.Int("status", resp.StatusCode),
		)
		return resp.StatusCode, body, integration.NewHTTPStatusError(resp.StatusCode)
	}
	return resp.StatusCode, body, nil
}

func parseHTTPURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", integration.NewValidationError("유효한 http(s) URL이 필요합니다: " + raw)
	}
	return u.String(), nil
}

var (
	_ integration.WebhookGateway   = (*Adapter)(nil)
	_ integration.ExecutionGateway = (*Adapter)(nil)
)

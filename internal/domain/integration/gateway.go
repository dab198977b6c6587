package integration

import (
	"context"
	"time"
)

// WebhookRequest is one outbound POST with a JSON body
type WebhookRequest struct {
	URL    string
	APIKey string
	Body   any
}

// WebhookResponse is the remote reply to a successful (2xx) POST
type WebhookResponse struct {
	StatusCode int
	Body       []byte
}

// WebhookGateway posts payloads to user-supplied webhook URLs.
// Non-2xx replies are returned as errors matching ErrIntegration and network
// failures as errors matching ErrTransport.
type WebhookGateway interface {
	Post(ctx context.Context, req WebhookRequest) (*WebhookResponse, error)
}

// Execution is the state of one n8n workflow execution
type Execution struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Data       map[string]any `json:"data"`
}

// ExecutionGateway reads workflow executions from the n8n API
type ExecutionGateway interface {
	GetExecution(ctx context.Context, baseURL, apiKey, executionID string) (*Execution, error)
}

// NotionPage is a created page
type NotionPage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// NotionDatabase is a created database
type NotionDatabase struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// NotionGateway creates pages and databases through the Notion API
type NotionGateway interface {
	CreatePage(ctx context.Context, apiKey string, req NotionPageRequest) (*NotionPage, error)
	CreateDatabase(ctx context.Context, apiKey string, req NotionDatabaseRequest) (*NotionDatabase, error)
}

package integration

import (
	"time"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/coupang-catalog/backend/internal/domain/integration"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// DispatchRequest is the body of the n8n dispatch endpoints. Products are
// taken from the session view when session_id is set, from product_ids
// otherwise, and from the catalog as a last resort.
type DispatchRequest struct {
	WebhookURL string      `json:"webhook_url" binding:"omitempty,max=2048"`
	APIKey     string      `json:"api_key" binding:"omitempty,max=512"`
	SessionID  *uuid.UUID  `json:"session_id"`
	ProductIDs []uuid.UUID `json:"product_ids" binding:"omitempty,max=100"`
}

// NotionUploadRequest is the body of the Notion page upload endpoint
type NotionUploadRequest struct {
	APIKey     string      `json:"api_key" binding:"omitempty,max=512"`
	DatabaseID string      `json:"database_id" binding:"omitempty,max=128"`
	SessionID  *uuid.UUID  `json:"session_id"`
	ProductIDs []uuid.UUID `json:"product_ids" binding:"omitempty,max=100"`
}

// NotionDatabaseCreateRequest is the body of the Notion database endpoint
type NotionDatabaseCreateRequest struct {
	APIKey       string `json:"api_key" binding:"omitempty,max=512"`
	ParentPageID string `json:"parent_page_id" binding:"omitempty,max=128"`
}

// WorkflowStatusRequest carries the query of the execution lookup endpoint
type WorkflowStatusRequest struct {
	APIBaseURL string `form:"api_base_url" binding:"omitempty,max=2048"`
	APIKey     string `form:"api_key" binding:"omitempty,max=512"`
}

// ---------------------------------------------------------------------------
// Service inputs
// ---------------------------------------------------------------------------

// WebhookTarget is a user-supplied n8n webhook
type WebhookTarget struct {
	URL    string
	APIKey string
}

// SetupWorkflowInput starts a workflow for one product
type SetupWorkflowInput struct {
	Target  WebhookTarget
	Product *catalog.Product
}

// SendDataInput sends the visible products; only the first ten are posted
type SendDataInput struct {
	Target   WebhookTarget
	Products []catalog.Product
}

// SendNotificationInput announces one product
type SendNotificationInput struct {
	Target  WebhookTarget
	Product *catalog.Product
}

// WorkflowStatusInput looks up one execution
type WorkflowStatusInput struct {
	ExecutionID string
	APIBaseURL  string
	APIKey      string
}

// NotionUploadInput writes products into a Notion database
type NotionUploadInput struct {
	APIKey     string
	DatabaseID string
	Products   []catalog.Product
}

// NotionDatabaseInput creates the product database under a page
type NotionDatabaseInput struct {
	APIKey       string
	ParentPageID string
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ChannelStatusResponse is one status entry
type ChannelStatusResponse struct {
	Channel     integration.Channel `json:"channel"`
	DisplayName string              `json:"display_name"`
	Action      integration.Action  `json:"action,omitempty"`
	Status      integration.Status  `json:"status"`
	Message     string              `json:"message"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// StatusBoardResponse lists channel and action statuses
type StatusBoardResponse struct {
	Channels []ChannelStatusResponse `json:"channels"`
	Actions  []ChannelStatusResponse `json:"actions"`
}

// DispatchResult is the outcome of a successful dispatch
type DispatchResult struct {
	Action      integration.Action    `json:"action"`
	Success     bool                  `json:"success"`
	ExecutionID string                `json:"execution_id,omitempty"`
	StatusCode  int                   `json:"status_code,omitempty"`
	Sent        int                   `json:"sent"`
	Status      ChannelStatusResponse `json:"status"`
}

// NotionUploadResult lists the created pages
type NotionUploadResult struct {
	DispatchResult
	Pages []integration.NotionPage `json:"pages"`
}

// NotionDatabaseResult is the created database
type NotionDatabaseResult struct {
	DispatchResult
	Database integration.NotionDatabase `json:"database"`
}

// ToChannelStatusResponse converts a domain status entry
func ToChannelStatusResponse(cs integration.ChannelStatus) ChannelStatusResponse {
	return ChannelStatusResponse{
		Channel:     cs.Channel,
		DisplayName: cs.Channel.DisplayName(),
		Action:      cs.Action,
		Status:      cs.Status,
		Message:     cs.Message,
		UpdatedAt:   cs.UpdatedAt,
	}
}

// ToStatusBoardResponse converts a status board
func ToStatusBoardResponse(b integration.StatusBoard) StatusBoardResponse {
	resp := StatusBoardResponse{}
	for _, cs := range b.Channels() {
		resp.Channels = append(resp.Channels, ToChannelStatusResponse(cs))
	}
	for _, cs := range b.Actions() {
		resp.Actions = append(resp.Actions, ToChannelStatusResponse(cs))
	}
	return resp
}

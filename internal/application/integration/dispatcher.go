package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coupang-catalog/backend/internal/domain/integration"
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/coupang-catalog/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher sends catalog data to n8n and Notion and keeps the status board.
// Every action has its own in-flight gate: a second dispatch of an action
// that is still loading is rejected and leaves the board untouched.
type Dispatcher struct {
	webhooks   integration.WebhookGateway
	executions integration.ExecutionGateway
	notion     integration.NotionGateway
	logger     *zap.Logger
	metrics    *telemetry.BusinessMetrics
	eventBus   shared.EventPublisher
	now        func() time.Time
	newID      func() string

	// publishMu orders status events the same way board swaps happen. It
	// is taken before mu and held across the publish.
	publishMu sync.Mutex
	mu        sync.Mutex
	board     integration.StatusBoard
}

// NewDispatcher creates a new Dispatcher with every channel idle
func NewDispatcher(
	webhooks integration.WebhookGateway,
	executions integration.ExecutionGateway,
	notion integration.NotionGateway,
	logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		webhooks:   webhooks,
		executions: executions,
		notion:     notion,
		logger:     logger,
		now:        time.Now,
		newID:      func() string { return "exec_" + uuid.NewString() },
		board:      integration.NewStatusBoard(time.Now()),
	}
}

// SetBusinessMetrics sets the metrics recorder
func (d *Dispatcher) SetBusinessMetrics(m *telemetry.BusinessMetrics) {
	d.metrics = m
}

// SetEventBus sets the publisher for status change events
func (d *Dispatcher) SetEventBus(bus shared.EventPublisher) {
	d.eventBus = bus
}

// Board returns the current status board
func (d *Dispatcher) Board() integration.StatusBoard {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.board
}

// Statuses returns the current status board as a response
func (d *Dispatcher) Statuses() StatusBoardResponse {
	return ToStatusBoardResponse(d.Board())
}

// ---------------------------------------------------------------------------
// n8n
// ---------------------------------------------------------------------------

// SetupWorkflow posts one product to the workflow webhook and returns the
// execution id reported by n8n, or a generated one
func (d *Dispatcher) SetupWorkflow(ctx context.Context, in SetupWorkflowInput) (*DispatchResult, error) {
	a := integration.ActionSetupWorkflow
	if err := d.validateTarget(ctx, a, in.Target); err != nil {
		return nil, err
	}
	if in.Product == nil {
		return nil, d.rejectInvalid(ctx, a, msgProductRequired)
	}

	result := &DispatchResult{Action: a}
	entry, err := d.dispatch(ctx, a, func(ctx context.Context) error {
		resp, err := d.webhooks.Post(ctx, integration.WebhookRequest{
			URL:    in.Target.URL,
			APIKey: in.Target.APIKey,
			Body:   integration.NewWorkflowSetupPayload(*in.Product),
		})
		if err != nil {
			return err
		}
		result.StatusCode = resp.StatusCode
		result.ExecutionID = d.executionID(resp.Body)
		result.Sent = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d.finish(result, entry), nil
}

// SendData posts the first MaxDataUpdateProducts products in their current order
func (d *Dispatcher) SendData(ctx context.Context, in SendDataInput) (*DispatchResult, error) {
	a := integration.ActionSendData
	if err := d.validateTarget(ctx, a, in.Target); err != nil {
		return nil, err
	}

	payload := integration.NewDataUpdatePayload(in.Products)
	result := &DispatchResult{Action: a}
	entry, err := d.dispatch(ctx, a, func(ctx context.Context) error {
		resp, err := d.webhooks.Post(ctx, integration.WebhookRequest{
			URL:    in.Target.URL,
			APIKey: in.Target.APIKey,
			Body:   payload,
		})
		if err != nil {
			return err
		}
		result.StatusCode = resp.StatusCode
		result.Sent = len(payload.Products)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d.finish(result, entry), nil
}

// SendNotification posts a notification about one product
func (d *Dispatcher) SendNotification(ctx context.Context, in SendNotificationInput) (*DispatchResult, error) {
	a := integration.ActionSendNotification
	if err := d.validateTarget(ctx, a, in.Target); err != nil {
		return nil, err
	}
	if in.Product == nil {
		return nil, d.rejectInvalid(ctx, a, msgProductRequired)
	}

	result := &DispatchResult{Action: a}
	entry, err := d.dispatch(ctx, a, func(ctx context.Context) error {
		resp, err := d.webhooks.Post(ctx, integration.WebhookRequest{
			URL:    in.Target.URL,
			APIKey: in.Target.APIKey,
			Body:   integration.NewNotificationPayload(*in.Product, d.now()),
		})
		if err != nil {
			return err
		}
		result.StatusCode = resp.StatusCode
		result.Sent = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d.finish(result, entry), nil
}

// GetWorkflowStatus reads an execution from the n8n API. It does not touch
// the status board.
func (d *Dispatcher) GetWorkflowStatus(ctx context.Context, in WorkflowStatusInput) (*integration.Execution, error) {
	if strings.TrimSpace(in.ExecutionID) == "" || strings.TrimSpace(in.APIKey) == "" {
		return nil, integration.NewValidationError(msgExecutionRequired)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "integration", "get_workflow_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrChannel, integration.ChannelN8N.String(),
		telemetry.SpanAttrExecutionID, in.ExecutionID,
	)

	exec, err := d.executions.GetExecution(ctx, in.APIBaseURL, in.APIKey, in.ExecutionID)
	if err != nil {
		telemetry.RecordError(span, err)
		d.logger.Warn("Workflow status lookup failed",
			zap.String("execution_id", in.ExecutionID),
			zap.Error(err),
		)
		return nil, err
	}
	telemetry.SetOK(span)
	return exec, nil
}

// ---------------------------------------------------------------------------
// Notion
// ---------------------------------------------------------------------------

// UploadToNotion creates one database page per product. The first failure
// stops the upload.
func (d *Dispatcher) UploadToNotion(ctx context.Context, in NotionUploadInput) (*NotionUploadResult, error) {
	a := integration.ActionUploadToNotion
	if strings.TrimSpace(in.APIKey) == "" || strings.TrimSpace(in.DatabaseID) == "" {
		return nil, d.rejectInvalid(ctx, a, msgNotionDatabaseMissing)
	}
	if len(in.Products) == 0 {
		return nil, d.rejectInvalid(ctx, a, msgProductRequired)
	}

	result := &NotionUploadResult{DispatchResult: DispatchResult{Action: a}}
	entry, err := d.dispatch(ctx, a, func(ctx context.Context) error {
		for _, p := range in.Products {
			page, err := d.notion.CreatePage(ctx, in.APIKey, integration.NewNotionPageRequest(in.DatabaseID, p))
			if err != nil {
				return err
			}
			result.Pages = append(result.Pages, *page)
		}
		result.Sent = len(result.Pages)
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.finish(&result.DispatchResult, entry)
	return result, nil
}

// CreateNotionDatabase creates the product database under a page
func (d *Dispatcher) CreateNotionDatabase(ctx context.Context, in NotionDatabaseInput) (*NotionDatabaseResult, error) {
	a := integration.ActionCreateNotionDatabase
	if strings.TrimSpace(in.APIKey) == "" || strings.TrimSpace(in.ParentPageID) == "" {
		return nil, d.rejectInvalid(ctx, a, msgNotionParentMissing)
	}

	result := &NotionDatabaseResult{DispatchResult: DispatchResult{Action: a}}
	entry, err := d.dispatch(ctx, a, func(ctx context.Context) error {
		db, err := d.notion.CreateDatabase(ctx, in.APIKey, integration.NewNotionDatabaseRequest(in.ParentPageID))
		if err != nil {
			return err
		}
		result.Database = *db
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.finish(&result.DispatchResult, entry)
	return result, nil
}

// ---------------------------------------------------------------------------
// State machine
// ---------------------------------------------------------------------------

// dispatch moves a to loading, runs call and records the terminal status.
// The error returned is call's error, or ErrDispatchInProgress when a is
// already loading.
func (d *Dispatcher) dispatch(ctx context.Context, a integration.Action, call func(context.Context) error) (integration.ChannelStatus, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "integration", a.String())
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrChannel, a.Channel().String(),
		telemetry.SpanAttrAction, a.String(),
	)

	_, err := d.transition(ctx, a, func(b integration.StatusBoard) (integration.StatusBoard, integration.ChannelStatus, error) {
		return b.Begin(a, loadingMessage(a), d.now())
	})
	if err != nil {
		d.record(ctx, a, telemetry.OutcomeRejected, 0)
		if errors.Is(err, integration.ErrDispatchInProgress) {
			d.logger.Info("Dispatch rejected, action in progress", zap.String("action", a.String()))
			return integration.ChannelStatus{}, &integration.DispatchError{
				Kind:    integration.ErrDispatchInProgress,
				Message: "이미 처리 중인 요청입니다.",
				Err:     err,
			}
		}
		return integration.ChannelStatus{}, err
	}

	start := time.Now()
	// The remote side may already have acted once the request is out, so a
	// client that disconnects must not turn the outcome into an error.
	callErr := call(context.WithoutCancel(ctx))
	elapsed := time.Since(start)

	next, message, outcome := integration.StatusSuccess, successMessage(a), telemetry.OutcomeSuccess
	if callErr != nil {
		next, message, outcome = integration.StatusError, errorMessage(a, callErr), telemetry.OutcomeError
		telemetry.RecordError(span, callErr)
	}

	entry, err := d.transition(ctx, a, func(b integration.StatusBoard) (integration.StatusBoard, integration.ChannelStatus, error) {
		return b.Complete(a, next, message, d.now())
	})
	if err != nil {
		return integration.ChannelStatus{}, err
	}
	d.record(ctx, a, outcome, elapsed)

	if callErr != nil {
		d.logger.Warn("Dispatch failed",
			zap.String("channel", a.Channel().String()),
			zap.String("action", a.String()),
			zap.Duration("duration", elapsed),
			zap.Error(callErr),
		)
		return entry, callErr
	}

	telemetry.SetOK(span)
	d.logger.Info("Dispatch succeeded",
		zap.String("channel", a.Channel().String()),
		zap.String("action", a.String()),
		zap.Duration("duration", elapsed),
	)
	return entry, nil
}

// transition swaps in the board returned by step and publishes the change.
// Subscribers see changes in swap order.
func (d *Dispatcher) transition(
	ctx context.Context,
	a integration.Action,
	step func(integration.StatusBoard) (integration.StatusBoard, integration.ChannelStatus, error),
) (integration.ChannelStatus, error) {
	d.publishMu.Lock()
	defer d.publishMu.Unlock()

	d.mu.Lock()
	previous := d.board.Action(a).Status
	next, entry, err := step(d.board)
	if err != nil {
		d.mu.Unlock()
		return integration.ChannelStatus{}, err
	}
	d.board = next
	d.mu.Unlock()

	if d.eventBus != nil {
		if err := d.eventBus.Publish(context.WithoutCancel(ctx), integration.NewChannelStatusChangedEvent(previous, entry)); err != nil {
			d.logger.Warn("Failed to publish status change", zap.String("action", a.String()), zap.Error(err))
		}
	}
	return entry, nil
}

func (d *Dispatcher) finish(result *DispatchResult, entry integration.ChannelStatus) *DispatchResult {
	result.Success = true
	result.Status = ToChannelStatusResponse(entry)
	return result
}

func (d *Dispatcher) record(ctx context.Context, a integration.Action, outcome string, elapsed time.Duration) {
	if d.metrics != nil {
		d.metrics.RecordDispatch(ctx, a.Channel().String(), a.String(), outcome, elapsed)
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func (d *Dispatcher) validateTarget(ctx context.Context, a integration.Action, t WebhookTarget) error {
	raw := strings.TrimSpace(t.URL)
	if raw == "" {
		return d.rejectInvalid(ctx, a, msgWebhookURLRequired)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return d.rejectInvalid(ctx, a, "유효한 http(s) URL이 필요합니다: "+raw)
	}
	return nil
}

func (d *Dispatcher) rejectInvalid(ctx context.Context, a integration.Action, message string) error {
	d.record(ctx, a, telemetry.OutcomeValidation, 0)
	return integration.NewValidationError(message)
}

// ---------------------------------------------------------------------------
// Execution id
// ---------------------------------------------------------------------------

var executionIDFields = []string{"executionId", "execution_id", "id"}

// executionID reads the id n8n put in the webhook reply. Replies may be an
// object or an array holding one; anything else yields a generated id.
func (d *Dispatcher) executionID(body []byte) string {
	body = bytes.TrimSpace(body)
	var fields map[string]json.RawMessage
	if len(body) > 0 && body[0] == '[' {
		var items []map[string]json.RawMessage
		if json.Unmarshal(body, &items) == nil && len(items) > 0 {
			fields = items[0]
		}
	} else {
		_ = json.Unmarshal(body, &fields)
	}

	for _, key := range executionIDFields {
		if id := scalarString(fields[key]); id != "" {
			return id
		}
	}
	return d.newID()
}

func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

package handler

import (
	"context"

	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	appintegration "github.com/coupang-catalog/backend/internal/application/integration"
	appview "github.com/coupang-catalog/backend/internal/application/view"
	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/coupang-catalog/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntegrationHandler dispatches products to n8n and Notion
type IntegrationHandler struct {
	BaseHandler
	dispatcher *appintegration.Dispatcher
	products   *productResolver
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(
	dispatcher *appintegration.Dispatcher,
	catalogService *appcatalog.CatalogService,
	sessionService *appview.SessionService,
) *IntegrationHandler {
	return &IntegrationHandler{
		dispatcher: dispatcher,
		products:   &productResolver{catalog: catalogService, sessions: sessionService},
	}
}

// Status handles GET /integrations/status
func (h *IntegrationHandler) Status(c *gin.Context) {
	h.Success(c, h.dispatcher.Statuses())
}

// SetupWorkflow handles POST /integrations/n8n/workflow
func (h *IntegrationHandler) SetupWorkflow(c *gin.Context) {
	var req appintegration.DispatchRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.products.single(c.Request.Context(), req.SessionID, req.ProductIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.dispatcher.SetupWorkflow(c.Request.Context(), appintegration.SetupWorkflowInput{
		Target:  target(req),
		Product: product,
	})
	h.respond(c, result, err)
}

// SendData handles POST /integrations/n8n/data
func (h *IntegrationHandler) SendData(c *gin.Context) {
	var req appintegration.DispatchRequest
	if !h.bind(c, &req) {
		return
	}

	products, err := h.products.list(c.Request.Context(), req.SessionID, req.ProductIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.dispatcher.SendData(c.Request.Context(), appintegration.SendDataInput{
		Target:   target(req),
		Products: products,
	})
	h.respond(c, result, err)
}

// SendNotification handles POST /integrations/n8n/notification
func (h *IntegrationHandler) SendNotification(c *gin.Context) {
	var req appintegration.DispatchRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.products.single(c.Request.Context(), req.SessionID, req.ProductIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.dispatcher.SendNotification(c.Request.Context(), appintegration.SendNotificationInput{
		Target:  target(req),
		Product: product,
	})
	h.respond(c, result, err)
}

// WorkflowStatus handles GET /integrations/n8n/executions/:id
func (h *IntegrationHandler) WorkflowStatus(c *gin.Context) {
	var req appintegration.WorkflowStatusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	execution, err := h.dispatcher.GetWorkflowStatus(c.Request.Context(), appintegration.WorkflowStatusInput{
		ExecutionID: c.Param("id"),
		APIBaseURL:  req.APIBaseURL,
		APIKey:      req.APIKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, execution)
}

// UploadToNotion handles POST /integrations/notion/pages
func (h *IntegrationHandler) UploadToNotion(c *gin.Context) {
	var req appintegration.NotionUploadRequest
	if !h.bind(c, &req) {
		return
	}

	products, err := h.products.list(c.Request.Context(), req.SessionID, req.ProductIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.dispatcher.UploadToNotion(c.Request.Context(), appintegration.NotionUploadInput{
		APIKey:     req.APIKey,
		DatabaseID: req.DatabaseID,
		Products:   products,
	})
	h.respond(c, result, err)
}

// CreateNotionDatabase handles POST /integrations/notion/databases
func (h *IntegrationHandler) CreateNotionDatabase(c *gin.Context) {
	var req appintegration.NotionDatabaseCreateRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.dispatcher.CreateNotionDatabase(c.Request.Context(), appintegration.NotionDatabaseInput{
		APIKey:       req.APIKey,
		ParentPageID: req.ParentPageID,
	})
	h.respond(c, result, err)
}

func (h *IntegrationHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.BindingError(c, err)
		return false
	}
	return true
}

// respond writes result, or the dispatch error. The error message is the one
// also shown on the channel status.
func (h *IntegrationHandler) respond(c *gin.Context, result any, err error) {
	if err != nil {
		logger.GetGinLogger(c).Info("Dispatch rejected or failed", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func target(req appintegration.DispatchRequest) appintegration.WebhookTarget {
	return appintegration.WebhookTarget{URL: req.WebhookURL, APIKey: req.APIKey}
}

// productResolver picks the products a dispatch acts on: the session view
// when a session is given, the listed ids otherwise, and the catalog itself as
// a last resort
type productResolver struct {
	catalog  *appcatalog.CatalogService
	sessions *appview.SessionService
}

// single returns the selected product, the first listed one, or the most
// popular product. A nil product with a nil error means none is available.
func (r *productResolver) single(ctx context.Context, sessionID *uuid.UUID, ids []uuid.UUID) (*catalog.Product, error) {
	switch {
	case sessionID != nil:
		return r.sessions.Selected(ctx, *sessionID)
	case len(ids) > 0:
		products, err := r.catalog.Products(ctx, ids[:1])
		if err != nil {
			return nil, err
		}
		return &products[0], nil
	}

	snap, err := r.catalog.Snapshot()
	if err != nil {
		return nil, nil
	}
	if p, ok := snap.Catalog.MostPopular(); ok {
		return &p, nil
	}
	return nil, nil
}

// list returns the session's visible products, the listed ones, or the whole
// catalog in popularity order. Without a loaded catalog the list is empty.
func (r *productResolver) list(ctx context.Context, sessionID *uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	switch {
	case sessionID != nil:
		return r.sessions.Visible(ctx, *sessionID)
	case len(ids) > 0:
		return r.catalog.Products(ctx, ids)
	}

	snap, err := r.catalog.Snapshot()
	if err != nil {
		return nil, nil
	}
	return snap.Catalog.Query(catalog.Query{Sort: catalog.SortPopularity}), nil
}

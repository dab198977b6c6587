package handler

import (
	appview "github.com/coupang-catalog/backend/internal/application/view"
	"github.com/coupang-catalog/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler exposes server-held view sessions
type SessionHandler struct {
	BaseHandler
	sessionService *appview.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService *appview.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create handles POST /sessions
func (h *SessionHandler) Create(c *gin.Context) {
	resp, err := h.sessionService.Create(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	resp, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Apply handles POST /sessions/:id/actions
func (h *SessionHandler) Apply(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req appview.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.sessionService.Apply(c.Request.Context(), id, req)
	if err != nil {
		logger.GetGinLogger(c).Debug("View action rejected",
			zap.String("session_id", id.String()),
			zap.String("action", string(req.Type)),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/coupang-catalog/backend/internal/domain/integration"
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/coupang-catalog/backend/internal/interfaces/http/dto"
	"github.com/coupang-catalog/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = middleware.RequestIDKey

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindingError sends a 400 response for a failed ShouldBind call
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// ParseID reads the :id path parameter as a UUID, writing a 400 response
// when it is not one
func (h *BaseHandler) ParseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindingError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// HandleError maps domain and integration errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if kind := integration.Kind(err); kind != nil {
		code := integrationCode(kind)
		h.Error(c, dto.GetHTTPStatus(code), code, integration.Reason(err, kind.Error()))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	h.InternalError(c, "An unexpected error occurred")
}

func integrationCode(kind error) string {
	switch kind {
	case integration.ErrValidation:
		return dto.ErrCodeValidation
	case integration.ErrDispatchInProgress:
		return dto.ErrCodeDispatchInProgress
	case integration.ErrTransport:
		return dto.ErrCodeTransport
	default:
		return dto.ErrCodeIntegration
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/coupang-catalog/backend/internal/domain/integration"
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/coupang-catalog/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context string",
			setup: func(c *gin.Context) {
				c.Set(RequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(RequestIDKey, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(RequestIDKey, "ctx-id")
				c.Request.Header.Set(RequestIDKey, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/")
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodPost, "/")

	h.Created(c, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}

	router := gin.New()
	router.DELETE("/test", func(c *gin.Context) {
		h.NoContent(c)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/test", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name         string
		method       func(*BaseHandler, *gin.Context)
		expectedCode int
		expectedErr  string
	}{
		{
			name: "BadRequest",
			method: func(h *BaseHandler, c *gin.Context) {
				h.BadRequest(c, "Invalid request")
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeBadRequest,
		},
		{
			name: "NotFound",
			method: func(h *BaseHandler, c *gin.Context) {
				h.NotFound(c, "Resource not found")
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name: "InternalError",
			method: func(h *BaseHandler, c *gin.Context) {
				h.InternalError(c, "Server error")
			},
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeInternal,
		},
		{
			name: "ErrorWithCode derives the status",
			method: func(h *BaseHandler, c *gin.Context) {
				h.ErrorWithCode(c, dto.ErrCodeCatalogUnavailable, "Catalog is not loaded")
			},
			expectedCode: http.StatusServiceUnavailable,
			expectedErr:  dto.ErrCodeCatalogUnavailable,
		},
		{
			name: "ErrorWithCode normalizes legacy codes",
			method: func(h *BaseHandler, c *gin.Context) {
				h.ErrorWithCode(c, "INVALID_SORT", "Unknown sort key")
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeInvalidSort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")

			tt.method(&BaseHandler{}, c)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerErrorWithRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")
	c.Set(RequestIDKey, "test-request-123")

	h.BadRequest(c, "Invalid request")

	assert.Equal(t, "test-request-123", decodeResponse(t, w).Error.RequestID)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
		expectedMsg  string
	}{
		{
			name:         "domain not found",
			err:          shared.NewDomainError("NOT_FOUND", "Product not found"),
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
			expectedMsg:  "Product not found",
		},
		{
			name:         "catalog unavailable",
			err:          catalog.ErrCatalogUnavailable,
			expectedCode: http.StatusServiceUnavailable,
			expectedErr:  dto.ErrCodeCatalogUnavailable,
			expectedMsg:  "Catalog is not loaded",
		},
		{
			name:         "wrapped domain error",
			err:          fmt.Errorf("browse: %w", shared.NewDomainError("INVALID_SORT", "bad sort")),
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeInvalidSort,
			expectedMsg:  "bad sort",
		},
		{
			name:         "dispatch validation",
			err:          integration.NewValidationError("n8n 웹훅 URL이 필요합니다."),
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeValidation,
			expectedMsg:  "n8n 웹훅 URL이 필요합니다.",
		},
		{
			name: "dispatch in progress",
			err: &integration.DispatchError{
				Kind:    integration.ErrDispatchInProgress,
				Message: "이미 처리 중인 요청입니다.",
			},
			expectedCode: http.StatusConflict,
			expectedErr:  dto.ErrCodeDispatchInProgress,
			expectedMsg:  "이미 처리 중인 요청입니다.",
		},
		{
			name:         "remote status",
			err:          integration.NewHTTPStatusError(http.StatusNotFound),
			expectedCode: http.StatusBadGateway,
			expectedErr:  dto.ErrCodeIntegration,
			expectedMsg:  "HTTP error! status: 404",
		},
		{
			name:         "transport",
			err:          integration.NewTransportError(errors.New("dial tcp: timeout")),
			expectedCode: http.StatusBadGateway,
			expectedErr:  dto.ErrCodeTransport,
			expectedMsg:  "dial tcp: timeout",
		},
		{
			name:         "unknown error is hidden",
			err:          assert.AnError,
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeInternal,
			expectedMsg:  "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			c.Set(RequestIDKey, "req-1")

			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, tt.expectedMsg, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		(&BaseHandler{}).HandleError(c, nil)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("unknown error is attached to the context", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		(&BaseHandler{}).HandleError(c, assert.AnError)
		require.Len(t, c.Errors, 1)
		assert.ErrorIs(t, c.Errors[0].Err, assert.AnError)
	})
}

func TestBaseHandlerParseID(t *testing.T) {
	h := &BaseHandler{}
	id := uuid.New()

	tests := []struct {
		name   string
		param  string
		wantOK bool
	}{
		{"valid uuid", id.String(), true},
		{"not a uuid", "abc", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			c.Params = gin.Params{{Key: "id", Value: tt.param}}

			got, ok := h.ParseID(c)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, id, got)
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestBaseHandlerBindingError(t *testing.T) {
	type body struct {
		Name string `json:"name" binding:"required"`
	}

	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			(&BaseHandler{}).BindingError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
}

package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStatus appcatalog.StatusResponse

func (f fixedStatus) Status() appcatalog.StatusResponse {
	return appcatalog.StatusResponse(f)
}

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("Coupang Catalog API", fixedStatus{})
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("Coupang Catalog API", fixedStatus{})
	h.startTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return h.startTime.Add(90 * time.Second) }

	c, w := newTestContext(http.MethodGet, "/system/info")
	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "Coupang Catalog API", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.Equal(t, "1m30s", data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("Coupang Catalog API", fixedStatus{})

	c, w := newTestContext(http.MethodGet, "/system/ping")
	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "pong", data["message"])

	_, err := time.Parse(time.RFC3339, data["timestamp"].(string))
	assert.NoError(t, err)
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		status     appcatalog.StatusResponse
		wantCode   int
		wantStatus string
	}{
		{
			name:       "ready catalog",
			status:     appcatalog.StatusResponse{State: appcatalog.LoadStateReady, Version: 3},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name:       "ready with a failed reload",
			status:     appcatalog.StatusResponse{State: appcatalog.LoadStateReady, Version: 3, Error: "fetch failed"},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name:       "not loaded yet",
			status:     appcatalog.StatusResponse{State: appcatalog.LoadStateIdle},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
		{
			name:       "first load failed",
			status:     appcatalog.StatusResponse{State: appcatalog.LoadStateFailed, Error: "no such file"},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("Coupang Catalog API", fixedStatus(tt.status))

			c, w := newTestContext(http.MethodGet, "/health")
			h.Health(c)

			assert.Equal(t, tt.wantCode, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, string(tt.status.State), body["catalog"])
		})
	}
}

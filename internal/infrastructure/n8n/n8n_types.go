package n8n

import (
	"bytes"
	"encoding/json"
	"time"
)

// executionResponse is the n8n public API execution shape
type executionResponse struct {
	ID         json.RawMessage `json:"id"`
	Finished   bool            `json:"finished"`
	Mode       string          `json:"mode"`
	Status     string          `json:"status"`
	StartedAt  *time.Time      `json:"startedAt"`
	StoppedAt  *time.Time      `json:"stoppedAt"`
	WorkflowID json.RawMessage `json:"workflowId"`
	Data       map[string]any  `json:"data"`
}

// status falls back to the legacy finished flag on older n8n versions
func (r executionResponse) status() string {
	if r.Status != "" {
		return r.Status
	}
	if r.Finished {
		return "success"
	}
	if r.StoppedAt != nil {
		return "error"
	}
	return "running"
}

// rawID renders a string or numeric JSON id as text
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

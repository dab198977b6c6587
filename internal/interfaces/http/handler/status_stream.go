package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	appintegration "github.com/coupang-catalog/backend/internal/application/integration"
	"github.com/coupang-catalog/backend/internal/domain/integration"
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/coupang-catalog/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sseMessageBufferSize = 100

// SSE event names
const (
	SSEEventConnected     = "connected"
	SSEEventStatusBoard   = "status_board"
	SSEEventStatusChanged = "status_changed"
	SSEEventHeartbeat     = "heartbeat"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID   string
	Chan chan SSEMessage
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// StatusChangedEvent is the payload of a status_changed message
type StatusChangedEvent struct {
	Previous integration.Status                   `json:"previous"`
	Current  appintegration.ChannelStatusResponse `json:"current"`
}

// StatusBoardSource returns the current status board
type StatusBoardSource interface {
	Statuses() appintegration.StatusBoardResponse
}

// StatusStreamHandler pushes integration status changes to browsers over
// Server-Sent Events. It is subscribed to the event bus for
// ChannelStatusChanged.
type StatusStreamHandler struct {
	BaseHandler
	board      StatusBoardSource
	logger     *zap.Logger
	clients    sync.Map // map[string]*SSEClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	maxClients int
	startOnce  sync.Once
}

// StatusStreamOption is a functional option for configuring the handler
type StatusStreamOption func(*StatusStreamHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) StatusStreamOption {
	return func(h *StatusStreamHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) StatusStreamOption {
	return func(h *StatusStreamHandler) {
		h.heartbeat = interval
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients
func WithSSEMaxClients(n int) StatusStreamOption {
	return func(h *StatusStreamHandler) {
		h.maxClients = n
	}
}

// NewStatusStreamHandler creates a new StatusStreamHandler
func NewStatusStreamHandler(board StatusBoardSource, opts ...StatusStreamOption) *StatusStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &StatusStreamHandler{
		board:      board,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 1000,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start begins the heartbeat loop. Calling it again has no effect.
func (h *StatusStreamHandler) Start() {
	h.startOnce.Do(func() {
		go h.sendHeartbeats()
		h.logger.Info("Status stream started")
	})
}

// Stop disconnects all clients and ends the heartbeat loop
func (h *StatusStreamHandler) Stop() {
	h.cancel()
	h.logger.Info("Status stream stopped", zap.Int("clients", h.ClientCount()))
}

// Handle implements shared.EventHandler
func (h *StatusStreamHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*integration.ChannelStatusChangedEvent)
	if !ok {
		return nil
	}

	data, err := json.Marshal(StatusChangedEvent{
		Previous: changed.Previous,
		Current:  appintegration.ToChannelStatusResponse(changed.Current),
	})
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}

	h.broadcast(SSEMessage{
		Event: SSEEventStatusChanged,
		Data:  string(data),
		ID:    event.EventID().String(),
	})
	return nil
}

// EventTypes implements shared.EventHandler
func (h *StatusStreamHandler) EventTypes() []string {
	return []string{integration.EventTypeChannelStatusChanged}
}

// broadcast queues msg for every client. A client whose buffer is full
// misses the message.
func (h *StatusStreamHandler) broadcast(msg SSEMessage) {
	h.clients.Range(func(_, value any) bool {
		client := value.(*SSEClient)
		select {
		case client.Chan <- msg:
		default:
			h.logger.Warn("Client channel full, dropping message",
				zap.String("client_id", client.ID),
				zap.String("event", msg.Event))
		}
		return true
	})
}

func (h *StatusStreamHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case t := <-ticker.C:
			h.broadcast(SSEMessage{
				Event: SSEEventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, t.Unix()),
			})
		}
	}
}

// Stream handles GET /integrations/status/stream. The first messages are
// connected and the current status_board.
func (h *StatusStreamHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.ClientCount() >= h.maxClients {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeRateLimited, "Maximum number of status stream connections reached")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	client := &SSEClient{
		ID:   uuid.NewString(),
		Chan: make(chan SSEMessage, sseMessageBufferSize),
	}
	h.clients.Store(client.ID, client)
	defer h.clients.Delete(client.ID)

	h.logger.Debug("Status stream client connected", zap.String("client_id", client.ID))

	writeSSE(c.Writer, SSEMessage{
		Event: SSEEventConnected,
		Data:  fmt.Sprintf(`{"client_id":%q,"timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	if board, err := json.Marshal(h.board.Statuses()); err == nil {
		writeSSE(c.Writer, SSEMessage{Event: SSEEventStatusBoard, Data: string(board)})
	}
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Debug("Status stream client disconnected", zap.String("client_id", client.ID))
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.Chan:
			writeSSE(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *StatusStreamHandler) ClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func writeSSE(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

var _ shared.EventHandler = (*StatusStreamHandler)(nil)

package event

import (
	"context"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/coupang-catalog/backend/internal/domain/integration"
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LogHandler writes catalog and channel lifecycle events to the log
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a LogHandler
func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger.Named("events")}
}

// EventTypes returns the event types the handler logs
func (h *LogHandler) EventTypes() []string {
	return []string{
		catalog.EventTypeCatalogLoaded,
		catalog.EventTypeCatalogLoadFailed,
		integration.EventTypeChannelStatusChanged,
	}
}

// Handle logs a single event
func (h *LogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	base := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
	}

	switch e := event.(type) {
	case *catalog.CatalogLoadedEvent:
		h.logger.Info("catalog loaded", append(base,
			zap.Int64("version", e.Version),
			zap.Int("product_count", e.ProductCount),
			zap.String("most_popular_id", e.MostPopularID.String()),
			zap.String("source", e.Source),
		)...)
	case *catalog.CatalogLoadFailedEvent:
		h.logger.Warn("catalog load failed", append(base,
			zap.String("source", e.Source),
			zap.String("reason", e.Reason),
		)...)
	case *integration.ChannelStatusChangedEvent:
		fields := append(base,
			zap.String("channel", e.Current.Channel.String()),
			zap.String("action", e.Current.Action.String()),
			zap.String("previous", string(e.Previous)),
			zap.String("status", string(e.Current.Status)),
		)
		if e.Current.Status == integration.StatusError {
			h.logger.Warn("channel dispatch failed", append(fields, zap.String("message", e.Current.Message))...)
			return nil
		}
		h.logger.Debug("channel status changed", fields...)
	default:
		h.logger.Debug("event received", base...)
	}
	return nil
}

var _ shared.EventHandler = (*LogHandler)(nil)

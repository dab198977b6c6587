package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/coupang-catalog/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers events to subscribed handlers synchronously, in
// publish order, on the publisher's goroutine
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	running   atomic.Bool
	delivered atomic.Int64
	failed    atomic.Int64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish delivers each event to its handlers. A failing or panicking
// handler is logged and does not stop delivery to the others.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.deliver(ctx, handler, event); err != nil {
				b.failed.Add(1)
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
				continue
			}
			b.delivered.Add(1)
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, falling back to the types the
// handler declares itself
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start marks the bus as running
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop marks the bus as stopped. Delivery is synchronous so nothing is in flight.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped",
		zap.Int64("delivered", b.delivered.Load()),
		zap.Int64("failed", b.failed.Load()),
	)
	return nil
}

// IsRunning reports whether Start was called without a later Stop
func (b *InMemoryEventBus) IsRunning() bool {
	return b.running.Load()
}

// Stats returns the delivered and failed handler invocation counts
func (b *InMemoryEventBus) Stats() (delivered, failed int64) {
	return b.delivered.Load(), b.failed.Load()
}

func (b *InMemoryEventBus) deliver(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

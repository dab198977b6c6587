package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/coupang-catalog/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentSanitizer cleans scraped text before the catalog is built
type DocumentSanitizer interface {
	SanitizeDocument(doc *catalog.Document)
}

// Snapshot is an immutable catalog together with its load version
type Snapshot struct {
	Catalog *catalog.Catalog
	Version int64
}

// CatalogService loads the catalog and answers product queries against the
// current snapshot. A reload swaps the snapshot atomically; readers never
// see a partially built catalog.
type CatalogService struct {
	source    catalog.Source
	sanitizer DocumentSanitizer
	logger    *zap.Logger
	metrics   *telemetry.BusinessMetrics
	eventBus  shared.EventPublisher
	now       func() time.Time

	loadMu sync.Mutex

	mu       sync.RWMutex
	snapshot *Snapshot
	status   StatusResponse
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(source catalog.Source, sanitizer DocumentSanitizer, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		source:    source,
		sanitizer: sanitizer,
		logger:    logger,
		now:       time.Now,
		status: StatusResponse{
			State:  LoadStateIdle,
			Source: source.Describe(),
		},
	}
}

// SetBusinessMetrics sets the metrics recorder
func (s *CatalogService) SetBusinessMetrics(m *telemetry.BusinessMetrics) {
	s.metrics = m
}

// SetEventBus sets the publisher for catalog events
func (s *CatalogService) SetEventBus(bus shared.EventPublisher) {
	s.eventBus = bus
}

// Load fetches, parses and installs a new snapshot. Concurrent calls are
// serialized. When a load fails and an earlier snapshot exists, the earlier
// snapshot keeps serving and the failure is reported in the status.
func (s *CatalogService) Load(ctx context.Context) (*StatusResponse, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "load")
	defer span.End()
	source := s.source.Describe()
	telemetry.SetAttributes(span, telemetry.SpanAttrSource, source)

	s.mu.Lock()
	previous := s.status
	if s.snapshot == nil {
		s.status.State = LoadStateLoading
	}
	s.mu.Unlock()

	c, err := s.fetch(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return s.loadFailed(ctx, source, previous, err)
	}

	now := s.now()
	s.mu.Lock()
	version := previous.Version + 1
	s.snapshot = &Snapshot{Catalog: c, Version: version}
	s.status = StatusResponse{
		State:        LoadStateReady,
		Source:       source,
		Version:      version,
		ProductCount: c.Len(),
		SkippedCount: len(c.Skipped()),
		LoadedAt:     &now,
	}
	if id := c.MostPopularID(); id != uuid.Nil {
		s.status.MostPopularID = &id
	}
	status := s.status
	s.mu.Unlock()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrVersion, version,
		telemetry.SpanAttrProductCount, c.Len(),
	)
	telemetry.SetOK(span)

	if s.metrics != nil {
		s.metrics.RecordCatalogLoad(ctx, source, telemetry.OutcomeSuccess, c.Len())
	}
	s.publish(ctx, catalog.NewCatalogLoadedEvent(version, c, source))

	for _, rec := range c.Skipped() {
		s.logger.Warn("Catalog record skipped",
			zap.String("source", source),
			zap.Int("position", rec.Position),
			zap.String("name", rec.Name),
			zap.String("reason", rec.Reason),
		)
	}
	s.logger.Info("Catalog loaded",
		zap.String("source", source),
		zap.Int64("version", version),
		zap.Int("products", c.Len()),
		zap.Int("skipped", len(c.Skipped())),
		zap.Bool("most_popular_listed", c.MostPopularListed()),
	)
	return &status, nil
}

// Reload is Load triggered by an operator
func (s *CatalogService) Reload(ctx context.Context) (*StatusResponse, error) {
	s.logger.Info("Catalog reload requested", zap.String("source", s.source.Describe()))
	return s.Load(ctx)
}

func (s *CatalogService) fetch(ctx context.Context) (*catalog.Catalog, error) {
	data, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := catalog.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	if s.sanitizer != nil {
		s.sanitizer.SanitizeDocument(&doc)
	}
	return doc.Build()
}

func (s *CatalogService) loadFailed(ctx context.Context, source string, previous StatusResponse, cause error) (*StatusResponse, error) {
	reason := cause.Error()

	s.mu.Lock()
	if s.snapshot == nil {
		s.status = StatusResponse{
			State:  LoadStateFailed,
			Source: source,
			Error:  reason,
		}
	} else {
		s.status = previous
		s.status.Error = reason
	}
	status := s.status
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCatalogLoad(ctx, source, telemetry.OutcomeError, 0)
	}
	s.publish(ctx, catalog.NewCatalogLoadFailedEvent(source, reason))

	s.logger.Error("Catalog load failed",
		zap.String("source", source),
		zap.String("state", string(status.State)),
		zap.Error(cause),
	)
	return &status, shared.NewDomainError(catalog.ErrCatalogUnavailable.Code,
		fmt.Sprintf("Catalog could not be loaded from %s: %s", source, reason))
}

func (s *CatalogService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish catalog event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

// Status returns the current load status
func (s *CatalogService) Status() StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Snapshot returns the current snapshot, or ErrCatalogUnavailable
func (s *CatalogService) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, s.unavailable()
	}
	return s.snapshot, nil
}

// unavailable carries the last load error when there is one. Callers hold mu.
func (s *CatalogService) unavailable() error {
	if s.status.Error == "" {
		return catalog.ErrCatalogUnavailable
	}
	return shared.NewDomainError(catalog.ErrCatalogUnavailable.Code,
		"Catalog is not loaded: "+s.status.Error)
}

// Browse filters and sorts the catalog
func (s *CatalogService) Browse(ctx context.Context, req BrowseRequest) (*ProductListResponse, error) {
	key, err := catalog.ParseSortKey(req.Sort)
	if err != nil {
		return nil, err
	}

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	_, span := telemetry.StartServiceSpan(ctx, "catalog", "browse")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSearchTerm, req.Search,
		telemetry.SpanAttrSortKey, key.String(),
		telemetry.SpanAttrVersion, snap.Version,
	)

	products := snap.Catalog.Query(catalog.Query{Search: req.Search, Sort: key})
	telemetry.SetAttributes(span, telemetry.SpanAttrProductCount, len(products))

	return &ProductListResponse{
		Products:     ToProductListItems(products, snap.Catalog.MostPopularID()),
		Total:        len(products),
		CatalogTotal: snap.Catalog.Len(),
		Search:       strings.TrimSpace(req.Search),
		Sort:         key,
		Version:      snap.Version,
	}, nil
}

// Get returns one product by id
func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	p, ok := snap.Catalog.Get(id)
	if !ok {
		return nil, productNotFound(id)
	}
	resp := ToProductResponse(p, snap.Catalog.MostPopularID())
	return &resp, nil
}

// MostPopular returns the flagged most popular product
func (s *CatalogService) MostPopular(ctx context.Context) (*ProductResponse, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	p, ok := snap.Catalog.MostPopular()
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Catalog has no products")
	}
	resp := ToProductResponse(p, p.ID)
	return &resp, nil
}

// Reviews returns a product's reviews with their statistics
func (s *CatalogService) Reviews(ctx context.Context, id uuid.UUID) (*ProductReviewsResponse, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	p, ok := snap.Catalog.Get(id)
	if !ok {
		return nil, productNotFound(id)
	}
	return &ProductReviewsResponse{
		ProductID: p.ID,
		Stats:     ToReviewStatsResponse(p.Stats()),
		Reviews:   ToReviewResponses(p.Reviews),
	}, nil
}

// Products resolves ids against the current snapshot, keeping their order
func (s *CatalogService) Products(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := snap.Catalog.Get(id)
		if !ok {
			return nil, productNotFound(id)
		}
		out = append(out, p)
	}
	return out, nil
}

func productNotFound(id uuid.UUID) error {
	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", id))
}

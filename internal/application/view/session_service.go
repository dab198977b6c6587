package view

import (
	"context"
	"errors"
	"sync"
	"time"

	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	appintegration "github.com/coupang-catalog/backend/internal/application/integration"
	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/coupang-catalog/backend/internal/domain/view"
	"github.com/coupang-catalog/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogReader exposes the current catalog snapshot
type CatalogReader interface {
	Snapshot() (*appcatalog.Snapshot, error)
	Status() appcatalog.StatusResponse
}

// StatusReader exposes the integration status board
type StatusReader interface {
	Statuses() appintegration.StatusBoardResponse
}

// ErrSessionNotFound is returned for an unknown or expired session
var ErrSessionNotFound = shared.NewDomainError("NOT_FOUND", "Session not found")

const sessionLockStripes = 32

// SessionService keeps one view state per session and applies reducer
// actions to it. Updates to the same session are serialized.
type SessionService struct {
	store    view.SessionStore
	catalog  CatalogReader
	statuses StatusReader
	logger   *zap.Logger
	metrics  *telemetry.BusinessMetrics
	now      func() time.Time

	locks [sessionLockStripes]sync.Mutex
}

// NewSessionService creates a new SessionService
func NewSessionService(store view.SessionStore, catalogReader CatalogReader, statuses StatusReader, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		store:    store,
		catalog:  catalogReader,
		statuses: statuses,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the metrics recorder
func (s *SessionService) SetBusinessMetrics(m *telemetry.BusinessMetrics) {
	s.metrics = m
}

// Create starts a session. When a catalog is loaded the most popular
// product is selected.
func (s *SessionService) Create(ctx context.Context) (*SessionResponse, error) {
	now := s.now()
	session := view.Session{
		ID:        uuid.New(),
		State:     view.InitialState(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	snap, _ := s.catalog.Snapshot()
	session.State = syncCatalog(session.State, snap)

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSessionCreated(ctx)
	}

	s.logger.Debug("View session created", zap.String("session_id", session.ID.String()))
	return s.render(session, snap), nil
}

// Get returns a session, first catching it up with the current catalog version
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*SessionResponse, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	snap, _ := s.catalog.Snapshot()
	if next := syncCatalog(session.State, snap); next != session.State {
		session.State = next
		session.UpdatedAt = s.now()
		if err := s.store.Save(ctx, session); err != nil {
			return nil, err
		}
	}
	return s.render(session, snap), nil
}

// Apply runs one client action through the reducer. An invalid action leaves
// the stored state unchanged.
func (s *SessionService) Apply(ctx context.Context, id uuid.UUID, req ActionRequest) (*SessionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "view", "apply")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSessionID, id.String(),
		telemetry.SpanAttrAction, string(req.Type),
	)

	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	snap, _ := s.catalog.Snapshot()
	state := syncCatalog(session.State, snap)

	var lookup view.ProductLookup
	if snap != nil {
		lookup = snap.Catalog
	}

	next, err := view.Reduce(state, req.ToAction(), lookup)
	if err != nil {
		s.recordAction(ctx, req.Type, telemetry.OutcomeValidation)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Type == view.ActionReset {
		next = syncCatalog(next, snap)
	}

	session.State = next
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session); err != nil {
		s.recordAction(ctx, req.Type, telemetry.OutcomeError)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.recordAction(ctx, req.Type, telemetry.OutcomeSuccess)
	telemetry.SetOK(span)
	return s.render(session, snap), nil
}

// Delete removes a session
func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.logger.Debug("View session deleted", zap.String("session_id", id.String()))
	return nil
}

// Selected returns the product selected in a session
func (s *SessionService) Selected(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	session, snap, err := s.current(ctx, id)
	if err != nil {
		return nil, err
	}
	selected, ok := session.State.Selected()
	if !ok {
		return nil, nil
	}
	p, ok := snap.Catalog.Get(selected)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Visible returns the products a session currently shows, in display order
func (s *SessionService) Visible(ctx context.Context, id uuid.UUID) ([]catalog.Product, error) {
	session, snap, err := s.current(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Catalog.Query(session.State.Query()), nil
}

func (s *SessionService) current(ctx context.Context, id uuid.UUID) (view.Session, *appcatalog.Snapshot, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return view.Session{}, nil, err
	}
	snap, err := s.catalog.Snapshot()
	if err != nil {
		return view.Session{}, nil, err
	}
	session.State = syncCatalog(session.State, snap)
	return session, snap, nil
}

func (s *SessionService) load(ctx context.Context, id uuid.UUID) (view.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return view.Session{}, notFound(err)
	}
	return session, nil
}

func (s *SessionService) render(session view.Session, snap *appcatalog.Snapshot) *SessionResponse {
	rv := RenderedView{
		CatalogState: s.catalog.Status().State,
		Products:     []appcatalog.ProductListItem{},
	}
	if s.statuses != nil {
		rv.Integrations = s.statuses.Statuses()
	}

	if snap != nil {
		c := snap.Catalog
		mostPopularID := c.MostPopularID()
		visible := c.Query(session.State.Query())

		rv.Products = appcatalog.ToProductListItems(visible, mostPopularID)
		rv.Total = len(visible)
		rv.CatalogTotal = c.Len()

		if mp, ok := c.MostPopular(); ok {
			resp := appcatalog.ToProductResponse(mp, mostPopularID)
			rv.MostPopular = &resp
		}
		if id, ok := session.State.Selected(); ok {
			if p, found := c.Get(id); found {
				resp := appcatalog.ToProductResponse(p, mostPopularID)
				rv.Selected = &resp
			}
		}
	}

	return &SessionResponse{
		ID:        session.ID,
		State:     session.State,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		View:      rv,
	}
}

func (s *SessionService) recordAction(ctx context.Context, t view.ActionType, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordViewAction(ctx, string(t), outcome)
	}
}

func (s *SessionService) lock(id uuid.UUID) *sync.Mutex {
	return &s.locks[int(id[0])%sessionLockStripes]
}

// syncCatalog applies catalog_loaded for the snapshot version
func syncCatalog(state view.State, snap *appcatalog.Snapshot) view.State {
	if snap == nil {
		return state
	}
	next, err := view.Reduce(state, view.CatalogLoaded(snap.Catalog.MostPopularID(), snap.Version), nil)
	if err != nil {
		return state
	}
	return next
}

func notFound(err error) error {
	if errors.Is(err, view.ErrSessionNotFound) {
		return ErrSessionNotFound
	}
	return err
}

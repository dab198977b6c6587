package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	appintegration "github.com/coupang-catalog/backend/internal/application/integration"
	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/coupang-catalog/backend/internal/domain/view"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sessionDocument = `{
  "popular_products": [
    {"name": "Apple 주스", "price": "₩3,000", "review_count": 40},
    {"name": "바나나", "price": "₩1,500", "review_count": 300},
    {"name": "apple 잼", "price": "₩5,000", "review_count": 12}
  ],
  "most_popular_product": {"name": "바나나"}
}`

type memoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]view.Session
	saveErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: map[uuid.UUID]view.Session{}}
}

func (m *memoryStore) Save(_ context.Context, s view.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (view.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return view.Session{}, view.ErrSessionNotFound
	}
	return s, nil
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return view.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memoryStore) Close() error { return nil }

type staticSource struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func (s *staticSource) Fetch(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.err
}

func (s *staticSource) Describe() string { return "file:session.json" }

type fixedStatuses struct{}

func (fixedStatuses) Statuses() appintegration.StatusBoardResponse {
	return appintegration.StatusBoardResponse{
		Channels: []appintegration.ChannelStatusResponse{{Channel: "n8n", Status: "idle"}},
	}
}

func newSessionFixture(t *testing.T, load bool) (*SessionService, *appcatalog.CatalogService, *memoryStore, *staticSource) {
	t.Helper()
	source := &staticSource{data: []byte(sessionDocument)}
	catalogSvc := appcatalog.NewCatalogService(source, nil, zap.NewNop())
	if load {
		_, err := catalogSvc.Load(context.Background())
		require.NoError(t, err)
	}
	store := newMemoryStore()
	return NewSessionService(store, catalogSvc, fixedStatuses{}, zap.NewNop()), catalogSvc, store, source
}

func names(items []appcatalog.ProductListItem) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.Name
	}
	return out
}

func TestSessionService_Create(t *testing.T) {
	t.Run("selects the most popular product", func(t *testing.T) {
		svc, _, store, _ := newSessionFixture(t, true)

		resp, err := svc.Create(context.Background())
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, resp.ID)
		assert.Equal(t, int64(1), resp.State.CatalogVersion)
		require.NotNil(t, resp.View.Selected)
		assert.Equal(t, "바나나", resp.View.Selected.Name)
		require.NotNil(t, resp.View.MostPopular)
		assert.Equal(t, resp.View.Selected.ID, resp.View.MostPopular.ID)
		assert.Equal(t, 3, resp.View.Total)
		assert.Equal(t, appcatalog.LoadStateReady, resp.View.CatalogState)
		assert.Len(t, resp.View.Integrations.Channels, 1)

		_, err = store.Get(context.Background(), resp.ID)
		assert.NoError(t, err)
	})

	t.Run("without a catalog nothing is selected", func(t *testing.T) {
		svc, _, _, _ := newSessionFixture(t, false)

		resp, err := svc.Create(context.Background())
		require.NoError(t, err)
		assert.Nil(t, resp.State.SelectedID)
		assert.Nil(t, resp.View.Selected)
		assert.NotNil(t, resp.View.Products)
		assert.Empty(t, resp.View.Products)
		assert.Equal(t, appcatalog.LoadStateIdle, resp.View.CatalogState)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, _, store, _ := newSessionFixture(t, true)
		store.saveErr = errors.New("redis down")
		_, err := svc.Create(context.Background())
		assert.EqualError(t, err, "redis down")
	})
}

func TestSessionService_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("search and sort shape the visible list", func(t *testing.T) {
		svc, _, _, _ := newSessionFixture(t, true)
		created, err := svc.Create(ctx)
		require.NoError(t, err)

		resp, err := svc.Apply(ctx, created.ID, ActionRequest{Type: view.ActionSearchChanged, Term: "APPLE"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Apple 주스", "apple 잼"}, names(resp.View.Products))
		assert.Equal(t, 3, resp.View.CatalogTotal)

		resp, err = svc.Apply(ctx, created.ID, ActionRequest{Type: view.ActionSortChanged, Sort: "price"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Apple 주스", "apple 잼"}, names(resp.View.Products))

		resp, err = svc.Apply(ctx, created.ID, ActionRequest{Type: view.ActionSearchChanged, Term: ""})
		require.NoError(t, err)
		assert.Equal(t, []string{"바나나", "Apple 주스", "apple 잼"}, names(resp.View.Products))
	})

	t.Run("selection may be hidden by the filter", func(t *testing.T) {
		svc, catalogSvc, _, _ := newSessionFixture(t, true)
		created, err := svc.Create(ctx)
		require.NoError(t, err)

		resp, err := svc.Apply(ctx, created.ID, ActionRequest{Type: view.ActionSearchChanged, Term: "apple"})
		require.NoError(t, err)
		require.NotNil(t, resp.View.Selected)
		assert.Equal(t, "바나나", resp.View.Selected.Name)

		snap, err := catalogSvc.Snapshot()
		require.NoError(t, err)
		jam := snap.Catalog.Products()[2]

		resp, err = svc.Apply(ctx, created.ID, ActionRequest{Type: view.ActionProductSelected, ProductID: jam.ID})
		require.NoError(t, err)
		assert.Equal(t, "apple 잼", resp.View.Selected.Name)

		p, err := svc.Selected(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, jam.ID, p.ID)
	})

	t.Run("unknown product keeps the state", func(t *testing.T) {
		svc, _, store, _ := newSessionFixture(t, true)
		created, err := svc.Create(ctx)
		require.NoError(t, err)

		_, err = svc.Apply(ctx, created.ID, ActionRequest{Type: view.ActionProductSelected, ProductID: uuid.New()})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		stored, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.State, stored.State)
	})

	t.Run("reset reselects the most popular product", func(t *testing.T) {
		svc, catalogSvc, _, _ := newSessionFixture(t, true)
		created, err := svc.Create(ctx)
		require.NoError(t, err)
		snap, _ := catalogSvc.Snapshot()
		first := snap.Catalog.Products()[0]

		_, err = svc.Apply(ctx, created.ID, ActionRequest{Type: view.ActionProductSelected, ProductID: first.ID})
		require.NoError(t, err)
		_, err = svc.Apply(ctx, created.ID, ActionRequest{Type: view.ActionTabChanged, Tab: view.TabIntegration})
		require.NoError(t, err)

		resp, err := svc.Apply(ctx, created.ID, ActionRequest{Type: view.ActionReset})
		require.NoError(t, err)
		assert.Equal(t, view.TabProducts, resp.State.ActiveTab)
		assert.Equal(t, "바나나", resp.View.Selected.Name)
	})

	t.Run("unknown session", func(t *testing.T) {
		svc, _, _, _ := newSessionFixture(t, true)
		_, err := svc.Apply(ctx, uuid.New(), ActionRequest{Type: view.ActionReset})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestSessionService_CatalogReload(t *testing.T) {
	ctx := context.Background()
	svc, catalogSvc, _, source := newSessionFixture(t, false)

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.Nil(t, created.View.Selected)

	_, err = catalogSvc.Load(ctx)
	require.NoError(t, err)

	resp, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.State.CatalogVersion)
	require.NotNil(t, resp.View.Selected)
	assert.Equal(t, "바나나", resp.View.Selected.Name)

	source.mu.Lock()
	source.data = []byte(`{"popular_products": [{"name": "새 상품"}]}`)
	source.mu.Unlock()
	_, err = catalogSvc.Reload(ctx)
	require.NoError(t, err)

	visible, err := svc.Visible(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	resp, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.State.CatalogVersion)
	assert.Equal(t, "새 상품", resp.View.Selected.Name)
}

func TestSessionService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newSessionFixture(t, true)
	created, err := svc.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrSessionNotFound)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_VisibleWithoutCatalog(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newSessionFixture(t, false)
	created, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.Visible(ctx, created.ID)
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
}

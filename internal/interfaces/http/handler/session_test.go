package handler

import (
	"net/http"
	"testing"

	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	appview "github.com/coupang-catalog/backend/internal/application/view"
	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/coupang-catalog/backend/internal/domain/view"
	"github.com/coupang-catalog/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSession(t *testing.T, s *testServer) appview.SessionResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decode[appview.SessionResponse](t, w).Data
}

func TestSessionHandler_Create(t *testing.T) {
	t.Run("selects the most popular product", func(t *testing.T) {
		s := newTestServer(t, true)
		session := createSession(t, s)

		assert.NotEqual(t, uuid.Nil, session.ID)
		assert.Equal(t, catalog.SortPopularity, session.State.SortKey)
		assert.Equal(t, view.TabProducts, session.State.ActiveTab)
		require.NotNil(t, session.View.Selected)
		assert.Equal(t, "보조배터리", session.View.Selected.Name)
		assert.Len(t, session.View.Products, 3)
		assert.Equal(t, appcatalog.LoadStateReady, session.View.CatalogState)
		assert.Len(t, session.View.Integrations.Actions, 5)
	})

	t.Run("without a catalog the view is empty", func(t *testing.T) {
		s := newTestServer(t, false)
		session := createSession(t, s)

		assert.Nil(t, session.View.Selected)
		assert.Empty(t, session.View.Products)
		assert.Equal(t, appcatalog.LoadStateIdle, session.View.CatalogState)
	})
}

func TestSessionHandler_Apply(t *testing.T) {
	s := newTestServer(t, true)
	ids := s.productIDs(t)
	session := createSession(t, s)
	path := "/api/v1/sessions/" + session.ID.String() + "/actions"

	t.Run("search narrows the visible products", func(t *testing.T) {
		w := s.do(t, http.MethodPost, path, map[string]any{"type": "search_changed", "term": "무선"})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[appview.SessionResponse](t, w).Data
		assert.Equal(t, "무선", resp.State.SearchTerm)
		assert.Equal(t, 2, resp.View.Total)
		assert.Equal(t, 3, resp.View.CatalogTotal)
		require.NotNil(t, resp.View.Selected, "selection survives a filter that hides it")
		assert.Equal(t, "보조배터리", resp.View.Selected.Name)
	})

	t.Run("sort changes the order", func(t *testing.T) {
		w := s.do(t, http.MethodPost, path, map[string]any{"type": "sort_changed", "sort": "price"})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[appview.SessionResponse](t, w).Data
		assert.Equal(t, catalog.SortPrice, resp.State.SortKey)
		require.Len(t, resp.View.Products, 2)
		assert.Equal(t, "무선 충전기", resp.View.Products[0].Name)
	})

	t.Run("select a product", func(t *testing.T) {
		w := s.do(t, http.MethodPost, path, map[string]any{"type": "product_selected", "product_id": ids[0]})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[appview.SessionResponse](t, w).Data
		require.NotNil(t, resp.View.Selected)
		assert.Equal(t, ids[0], resp.View.Selected.ID.String())
	})

	t.Run("unknown product leaves the state unchanged", func(t *testing.T) {
		w := s.do(t, http.MethodPost, path, map[string]any{"type": "product_selected", "product_id": uuid.NewString()})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/sessions/"+session.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[appview.SessionResponse](t, w).Data
		require.NotNil(t, resp.State.SelectedID)
		assert.Equal(t, ids[0], resp.State.SelectedID.String())
	})

	t.Run("switch tab", func(t *testing.T) {
		w := s.do(t, http.MethodPost, path, map[string]any{"type": "tab_changed", "tab": "integration"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, view.TabIntegration, decode[appview.SessionResponse](t, w).Data.State.ActiveTab)
	})

	t.Run("reset restores defaults and reselects the most popular", func(t *testing.T) {
		w := s.do(t, http.MethodPost, path, map[string]any{"type": "reset"})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[appview.SessionResponse](t, w).Data
		assert.Empty(t, resp.State.SearchTerm)
		assert.Equal(t, catalog.SortPopularity, resp.State.SortKey)
		assert.Equal(t, view.TabProducts, resp.State.ActiveTab)
		require.NotNil(t, resp.View.Selected)
		assert.Equal(t, "보조배터리", resp.View.Selected.Name)
	})

	rejected := []struct {
		name string
		body any
	}{
		{"catalog_loaded is server only", map[string]any{"type": "catalog_loaded"}},
		{"unknown action", map[string]any{"type": "explode"}},
		{"unknown sort", map[string]any{"type": "sort_changed", "sort": "rating"}},
		{"unknown tab", map[string]any{"type": "tab_changed", "tab": "settings"}},
		{"malformed body", "{"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("missing product id", func(t *testing.T) {
		w := s.do(t, http.MethodPost, path, map[string]any{"type": "product_selected"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, errorCode(t, w))
	})
}

func TestSessionHandler_CatalogReloadReselects(t *testing.T) {
	s := newTestServer(t, true)
	ids := s.productIDs(t)
	session := createSession(t, s)
	path := "/api/v1/sessions/" + session.ID.String()

	w := s.do(t, http.MethodPost, path+"/actions", map[string]any{"type": "product_selected", "product_id": ids[0]})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/catalog/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[appview.SessionResponse](t, w).Data
	assert.Equal(t, int64(2), resp.State.CatalogVersion)
	require.NotNil(t, resp.View.Selected)
	assert.Equal(t, "보조배터리", resp.View.Selected.Name)
}

func TestSessionHandler_GetAndDelete(t *testing.T) {
	s := newTestServer(t, true)
	session := createSession(t, s)
	path := "/api/v1/sessions/" + session.ID.String()

	w := s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.ID, decode[appview.SessionResponse](t, w).Data.ID)

	w = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, errorCode(t, w))

	w = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/sessions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

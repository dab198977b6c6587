package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	appintegration "github.com/coupang-catalog/backend/internal/application/integration"
	appview "github.com/coupang-catalog/backend/internal/application/view"
	"github.com/coupang-catalog/backend/internal/domain/integration"
	"github.com/coupang-catalog/backend/internal/infrastructure/cache"
	"github.com/coupang-catalog/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const handlerDocument = `{
  "popular_products": [
    {"name": "무선 이어폰", "price": "₩39,900", "rating": 4.6, "review_count": 812, "product_url": "https://www.coupang.com/vp/products/1",
     "reviews": [{"user": "kim", "rating": 5, "date": "2024-03-01", "content": "좋아요"}, {"user": "lee", "rating": 4, "date": "2024-03-02", "content": "괜찮음"}]},
    {"name": "보조배터리", "price": "₩19,800", "rating": 4.4, "review_count": 2301, "product_url": "https://www.coupang.com/vp/products/2"},
    {"name": "무선 충전기", "price": "₩25,000", "rating": 4.2, "review_count": 95, "product_url": "https://www.coupang.com/vp/products/3"}
  ],
  "most_popular_product": {"name": "보조배터리", "product_url": "https://www.coupang.com/vp/products/2"}
}`

// staticSource serves a fixed document that tests may swap
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

func (s *staticSource) Describe() string { return "memory:test" }

func (s *staticSource) set(data string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = []byte(data)
	s.err = err
}

type MockWebhookGateway struct {
	mock.Mock
}

func (m *MockWebhookGateway) Post(ctx context.Context, req integration.WebhookRequest) (*integration.WebhookResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.WebhookResponse), args.Error(1)
}

type MockExecutionGateway struct {
	mock.Mock
}

func (m *MockExecutionGateway) GetExecution(ctx context.Context, baseURL, apiKey, executionID string) (*integration.Execution, error) {
	args := m.Called(ctx, baseURL, apiKey, executionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Execution), args.Error(1)
}

type MockNotionGateway struct {
	mock.Mock
}

func (m *MockNotionGateway) CreatePage(ctx context.Context, apiKey string, req integration.NotionPageRequest) (*integration.NotionPage, error) {
	args := m.Called(ctx, apiKey, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.NotionPage), args.Error(1)
}

func (m *MockNotionGateway) CreateDatabase(ctx context.Context, apiKey string, req integration.NotionDatabaseRequest) (*integration.NotionDatabase, error) {
	args := m.Called(ctx, apiKey, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.NotionDatabase), args.Error(1)
}

// testServer wires real services behind the handlers, with mocked gateways
type testServer struct {
	source     *staticSource
	catalog    *appcatalog.CatalogService
	sessions   *appview.SessionService
	dispatcher *appintegration.Dispatcher
	webhooks   *MockWebhookGateway
	executions *MockExecutionGateway
	notion     *MockNotionGateway
	engine     *gin.Engine
}

func newTestServer(t *testing.T, loaded bool) *testServer {
	t.Helper()

	s := &testServer{
		source:     &staticSource{data: []byte(handlerDocument)},
		webhooks:   new(MockWebhookGateway),
		executions: new(MockExecutionGateway),
		notion:     new(MockNotionGateway),
	}
	s.catalog = appcatalog.NewCatalogService(s.source, nil, zap.NewNop())
	if loaded {
		_, err := s.catalog.Load(context.Background())
		require.NoError(t, err)
	}
	s.dispatcher = appintegration.NewDispatcher(s.webhooks, s.executions, s.notion, zap.NewNop())

	store := cache.NewInMemorySessionStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	s.sessions = appview.NewSessionService(store, s.catalog, s.dispatcher, zap.NewNop())

	catalogHandler := NewCatalogHandler(s.catalog)
	sessionHandler := NewSessionHandler(s.sessions)
	integrationHandler := NewIntegrationHandler(s.dispatcher, s.catalog, s.sessions)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/catalog/status", catalogHandler.Status)
	api.POST("/catalog/reload", catalogHandler.Reload)
	api.GET("/catalog/products", catalogHandler.List)
	api.GET("/catalog/products/most-popular", catalogHandler.MostPopular)
	api.GET("/catalog/products/:id", catalogHandler.Get)
	api.GET("/catalog/products/:id/reviews", catalogHandler.Reviews)

	api.POST("/sessions", sessionHandler.Create)
	api.GET("/sessions/:id", sessionHandler.Get)
	api.POST("/sessions/:id/actions", sessionHandler.Apply)
	api.DELETE("/sessions/:id", sessionHandler.Delete)

	api.GET("/integrations/status", integrationHandler.Status)
	api.POST("/integrations/n8n/workflow", integrationHandler.SetupWorkflow)
	api.POST("/integrations/n8n/data", integrationHandler.SendData)
	api.POST("/integrations/n8n/notification", integrationHandler.SendNotification)
	api.GET("/integrations/n8n/executions/:id", integrationHandler.WorkflowStatus)
	api.POST("/integrations/notion/pages", integrationHandler.UploadToNotion)
	api.POST("/integrations/notion/databases", integrationHandler.CreateNotionDatabase)
	s.engine = r

	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// productIDs returns the catalog's product ids in popularity order
func (s *testServer) productIDs(t *testing.T) []string {
	t.Helper()
	w := s.do(t, http.MethodGet, "/api/v1/catalog/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[appcatalog.ProductListResponse](t, w)
	ids := make([]string, len(resp.Data.Products))
	for i, p := range resp.Data.Products {
		ids[i] = p.ID.String()
	}
	return ids
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode[json.RawMessage](t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return env.Error.Code
}

package handler

import (
	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	"github.com/coupang-catalog/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler serves the loaded product catalog
type CatalogHandler struct {
	BaseHandler
	catalogService *appcatalog.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *appcatalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Status handles GET /catalog/status
func (h *CatalogHandler) Status(c *gin.Context) {
	h.Success(c, h.catalogService.Status())
}

// Reload handles POST /catalog/reload. A failed reload answers 503 and keeps
// serving the previous snapshot, if any.
func (h *CatalogHandler) Reload(c *gin.Context) {
	status, err := h.catalogService.Reload(c.Request.Context())
	if err != nil {
		logger.GetGinLogger(c).Warn("Catalog reload failed", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// List handles GET /catalog/products?search=&sort=
func (h *CatalogHandler) List(c *gin.Context) {
	var req appcatalog.BrowseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.catalogService.Browse(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MostPopular handles GET /catalog/products/most-popular
func (h *CatalogHandler) MostPopular(c *gin.Context) {
	resp, err := h.catalogService.MostPopular(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get handles GET /catalog/products/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	resp, err := h.catalogService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reviews handles GET /catalog/products/:id/reviews
func (h *CatalogHandler) Reviews(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	resp, err := h.catalogService.Reviews(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

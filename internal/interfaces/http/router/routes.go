package router

import (
	"github.com/coupang-catalog/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers of the catalog API
type Handlers struct {
	System       *handler.SystemHandler
	Catalog      *handler.CatalogHandler
	Session      *handler.SessionHandler
	Integration  *handler.IntegrationHandler
	StatusStream *handler.StatusStreamHandler
}

// DomainGroups builds one route group per API domain
func (h Handlers) DomainGroups() []RouteRegistrar {
	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)
	systemRoutes.GET("/ping", h.System.Ping)

	catalogRoutes := NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/status", h.Catalog.Status)
	catalogRoutes.POST("/reload", h.Catalog.Reload)
	catalogRoutes.GET("/products", h.Catalog.List)
	catalogRoutes.GET("/products/most-popular", h.Catalog.MostPopular)
	catalogRoutes.GET("/products/:id", h.Catalog.Get)
	catalogRoutes.GET("/products/:id/reviews", h.Catalog.Reviews)

	sessionRoutes := NewDomainGroup("sessions", "/sessions")
	sessionRoutes.POST("", h.Session.Create)
	sessionRoutes.GET("/:id", h.Session.Get)
	sessionRoutes.POST("/:id/actions", h.Session.Apply)
	sessionRoutes.DELETE("/:id", h.Session.Delete)

	integrationRoutes := NewDomainGroup("integrations", "/integrations")
	integrationRoutes.GET("/status", h.Integration.Status)
	if h.StatusStream != nil {
		integrationRoutes.GET("/status/stream", h.StatusStream.Stream)
	}

	n8nRoutes := integrationRoutes.Group("n8n", "/n8n")
	n8nRoutes.POST("/workflow", h.Integration.SetupWorkflow)
	n8nRoutes.POST("/data", h.Integration.SendData)
	n8nRoutes.POST("/notification", h.Integration.SendNotification)
	n8nRoutes.GET("/executions/:id", h.Integration.WorkflowStatus)

	notionRoutes := integrationRoutes.Group("notion", "/notion")
	notionRoutes.POST("/pages", h.Integration.UploadToNotion)
	notionRoutes.POST("/databases", h.Integration.CreateNotionDatabase)

	return []RouteRegistrar{systemRoutes, catalogRoutes, sessionRoutes, integrationRoutes}
}

// RegisterHealth registers the unversioned health check
func RegisterHealth(engine *gin.Engine, system *handler.SystemHandler) {
	engine.GET("/health", system.Health)
}

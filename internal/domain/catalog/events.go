package catalog

import (
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type and event type constants for the catalog
const (
	AggregateTypeCatalog = "Catalog"

	EventTypeCatalogLoaded     = "CatalogLoaded"
	EventTypeCatalogLoadFailed = "CatalogLoadFailed"
)

// catalogAggregateID is fixed: there is a single catalog per process
var catalogAggregateID = uuid.NewSHA1(productNamespace, []byte("catalog"))

// CatalogLoadedEvent is raised after a catalog snapshot replaces the previous one
type CatalogLoadedEvent struct {
	shared.BaseDomainEvent
	Version       int64     `json:"version"`
	ProductCount  int       `json:"product_count"`
	MostPopularID uuid.UUID `json:"most_popular_id"`
	Source        string    `json:"source"`
}

// NewCatalogLoadedEvent creates a CatalogLoadedEvent
func NewCatalogLoadedEvent(version int64, c *Catalog, source string) *CatalogLoadedEvent {
	return &CatalogLoadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogLoaded, AggregateTypeCatalog, catalogAggregateID),
		Version:         version,
		ProductCount:    c.Len(),
		MostPopularID:   c.MostPopularID(),
		Source:          source,
	}
}

// CatalogLoadFailedEvent is raised when a load attempt fails
type CatalogLoadFailedEvent struct {
	shared.BaseDomainEvent
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// NewCatalogLoadFailedEvent creates a CatalogLoadFailedEvent
func NewCatalogLoadFailedEvent(source, reason string) *CatalogLoadFailedEvent {
	return &CatalogLoadFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogLoadFailed, AggregateTypeCatalog, catalogAggregateID),
		Source:          source,
		Reason:          reason,
	}
}

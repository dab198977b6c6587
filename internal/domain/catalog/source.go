package catalog

import (
	"context"

	"github.com/coupang-catalog/backend/internal/domain/shared"
)

// Source reads a catalog document from wherever it is stored
type Source interface {
	// Fetch returns the raw document bytes
	Fetch(ctx context.Context) ([]byte, error)
	// Describe returns a printable location for logs
	Describe() string
}

// ErrCatalogUnavailable is returned while no catalog snapshot is loaded
var ErrCatalogUnavailable = shared.NewDomainError("CATALOG_UNAVAILABLE", "Catalog is not loaded")

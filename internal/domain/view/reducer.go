package view

import (
	"fmt"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxSearchTermLength bounds the search term in runes
const MaxSearchTermLength = 200

// ProductLookup answers whether a product id exists in the current catalog
type ProductLookup interface {
	Get(id uuid.UUID) (catalog.Product, bool)
}

// Reduce applies an action to a state and returns the next state. On an
// invalid action it returns the unchanged state and an error. lookup may be
// nil when no catalog is loaded; selecting a product then fails.
//
// Selection is checked against the catalog, not the current filter: a
// selected product may be hidden by the search term.
func Reduce(s State, a Action, lookup ProductLookup) (State, error) {
	switch a.Type {
	case ActionSearchChanged:
		if len([]rune(a.Term)) > MaxSearchTermLength {
			return s, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Search term cannot exceed %d characters", MaxSearchTermLength))
		}
		next := s
		next.SearchTerm = a.Term
		return next, nil

	case ActionSortChanged:
		key, err := catalog.ParseSortKey(a.Sort)
		if err != nil {
			return s, err
		}
		next := s
		next.SortKey = key
		return next, nil

	case ActionProductSelected:
		if a.ProductID == uuid.Nil {
			return s, shared.NewDomainError("INVALID_INPUT", "product_id is required")
		}
		if lookup == nil {
			return s, shared.NewDomainError("UNAVAILABLE", "Catalog is not loaded")
		}
		if _, ok := lookup.Get(a.ProductID); !ok {
			return s, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return s.withSelected(a.ProductID), nil

	case ActionTabChanged:
		if !a.Tab.IsValid() {
			return s, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown tab %q", a.Tab))
		}
		next := s
		next.ActiveTab = a.Tab
		return next, nil

	case ActionCatalogLoaded:
		if a.Version < s.CatalogVersion {
			return s, nil
		}
		next := s
		changed := a.Version != s.CatalogVersion
		next.CatalogVersion = a.Version
		if s.SelectedID == nil || changed {
			if a.MostPopularID == uuid.Nil {
				next.SelectedID = nil
			} else {
				next = next.withSelected(a.MostPopularID)
			}
		}
		return next, nil

	case ActionReset:
		next := InitialState()
		next.CatalogVersion = s.CatalogVersion
		return next, nil
	}
	return s, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown action %q", a.Type))
}

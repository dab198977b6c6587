package view

import (
	"github.com/google/uuid"
)

// ActionType names a view transition
type ActionType string

const (
	ActionSearchChanged   ActionType = "search_changed"
	ActionSortChanged     ActionType = "sort_changed"
	ActionProductSelected ActionType = "product_selected"
	ActionTabChanged      ActionType = "tab_changed"
	ActionCatalogLoaded   ActionType = "catalog_loaded"
	ActionReset           ActionType = "reset"
)

// Action is one input to the reducer. Only the fields relevant to Type are read.
type Action struct {
	Type          ActionType `json:"type"`
	Term          string     `json:"term,omitempty"`
	Sort          string     `json:"sort,omitempty"`
	ProductID     uuid.UUID  `json:"product_id,omitempty"`
	Tab           Tab        `json:"tab,omitempty"`
	MostPopularID uuid.UUID  `json:"most_popular_id,omitempty"`
	Version       int64      `json:"version,omitempty"`
}

// SearchChanged sets the search term
func SearchChanged(term string) Action {
	return Action{Type: ActionSearchChanged, Term: term}
}

// SortChanged sets the sort key
func SortChanged(sort string) Action {
	return Action{Type: ActionSortChanged, Sort: sort}
}

// ProductSelected selects a product
func ProductSelected(id uuid.UUID) Action {
	return Action{Type: ActionProductSelected, ProductID: id}
}

// TabChanged switches the active tab
func TabChanged(tab Tab) Action {
	return Action{Type: ActionTabChanged, Tab: tab}
}

// CatalogLoaded tells the view a catalog version is available
func CatalogLoaded(mostPopularID uuid.UUID, version int64) Action {
	return Action{Type: ActionCatalogLoaded, MostPopularID: mostPopularID, Version: version}
}

// Reset returns to the initial state
func Reset() Action {
	return Action{Type: ActionReset}
}

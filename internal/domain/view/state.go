package view

import (
	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// Tab is the active panel of the view
type Tab string

const (
	TabProducts    Tab = "products"
	TabIntegration Tab = "integration"
)

// IsValid returns true if the tab is known
func (t Tab) IsValid() bool {
	return t == TabProducts || t == TabIntegration
}

// State is the immutable view state of one session. Reduce returns new
// values; a State is never modified in place.
type State struct {
	SearchTerm     string          `json:"search_term"`
	SortKey        catalog.SortKey `json:"sort_key"`
	SelectedID     *uuid.UUID      `json:"selected_id,omitempty"`
	ActiveTab      Tab             `json:"active_tab"`
	CatalogVersion int64           `json:"catalog_version"`
}

// InitialState is the state of a fresh session before the catalog is known
func InitialState() State {
	return State{
		SortKey:   catalog.SortPopularity,
		ActiveTab: TabProducts,
	}
}

// Selected returns the selected product id, if any
func (s State) Selected() (uuid.UUID, bool) {
	if s.SelectedID == nil {
		return uuid.Nil, false
	}
	return *s.SelectedID, true
}

// Query returns the catalog query described by the state
func (s State) Query() catalog.Query {
	return catalog.Query{Search: s.SearchTerm, Sort: s.SortKey}
}

func (s State) withSelected(id uuid.UUID) State {
	s.SelectedID = &id
	return s
}

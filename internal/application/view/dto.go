package view

import (
	"time"

	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	appintegration "github.com/coupang-catalog/backend/internal/application/integration"
	"github.com/coupang-catalog/backend/internal/domain/view"
	"github.com/google/uuid"
)

// ActionRequest is a client view action. catalog_loaded is applied by the
// server and cannot be sent.
type ActionRequest struct {
	Type      view.ActionType `json:"type" binding:"required,oneof=search_changed sort_changed product_selected tab_changed reset"`
	Term      string          `json:"term" binding:"max=200"`
	Sort      string          `json:"sort" binding:"omitempty,oneof=popularity reviews price"`
	ProductID uuid.UUID       `json:"product_id"`
	Tab       view.Tab        `json:"tab" binding:"omitempty,oneof=products integration"`
}

// ToAction converts the request into a reducer action
func (r ActionRequest) ToAction() view.Action {
	return view.Action{
		Type:      r.Type,
		Term:      r.Term,
		Sort:      r.Sort,
		ProductID: r.ProductID,
		Tab:       r.Tab,
	}
}

// RenderedView is what a client shows for a session
type RenderedView struct {
	CatalogState appcatalog.LoadState               `json:"catalog_state"`
	Products     []appcatalog.ProductListItem       `json:"products"`
	Total        int                                `json:"total"`
	CatalogTotal int                                `json:"catalog_total"`
	Selected     *appcatalog.ProductResponse        `json:"selected,omitempty"`
	MostPopular  *appcatalog.ProductResponse        `json:"most_popular,omitempty"`
	Integrations appintegration.StatusBoardResponse `json:"integrations"`
}

// SessionResponse is a session with its rendered view
type SessionResponse struct {
	ID        uuid.UUID    `json:"id"`
	State     view.State   `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	View      RenderedView `json:"view"`
}

package catalog

import (
	"time"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BrowseRequest represents a filtered, sorted product listing request
type BrowseRequest struct {
	Search string `form:"search" json:"search" binding:"max=200"`
	Sort   string `form:"sort" json:"sort" binding:"omitempty,oneof=popularity reviews price"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	User    string  `json:"user"`
	Rating  float64 `json:"rating"`
	Date    string  `json:"date"`
	Content string  `json:"content"`
}

// ReviewStatsResponse represents review statistics
type ReviewStatsResponse struct {
	Count         int             `json:"count"`
	AverageRating decimal.Decimal `json:"average_rating"`
	Stars         int             `json:"stars"`
	Distribution  map[int]int     `json:"distribution"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	Price        string               `json:"price"`
	PriceValue   decimal.Decimal      `json:"price_value"`
	Rating       float64              `json:"rating"`
	ReviewCount  int                  `json:"review_count"`
	ProductURL   string               `json:"product_url"`
	DetailedInfo map[string]string    `json:"detailed_info"`
	Reviews      []ReviewResponse     `json:"reviews"`
	ReviewStats  *ReviewStatsResponse `json:"review_stats,omitempty"`
	MostPopular  bool                 `json:"most_popular"`
}

// ProductListItem represents a list item for products
type ProductListItem struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       string          `json:"price"`
	PriceValue  decimal.Decimal `json:"price_value"`
	Rating      float64         `json:"rating"`
	ReviewCount int             `json:"review_count"`
	ProductURL  string          `json:"product_url"`
	MostPopular bool            `json:"most_popular"`
}

// ProductListResponse is the result of a browse request
type ProductListResponse struct {
	Products     []ProductListItem `json:"products"`
	Total        int               `json:"total"`
	CatalogTotal int               `json:"catalog_total"`
	Search       string            `json:"search"`
	Sort         catalog.SortKey   `json:"sort"`
	Version      int64             `json:"version"`
}

// ProductReviewsResponse lists the reviews of one product
type ProductReviewsResponse struct {
	ProductID uuid.UUID           `json:"product_id"`
	Stats     ReviewStatsResponse `json:"stats"`
	Reviews   []ReviewResponse    `json:"reviews"`
}

// LoadState is the lifecycle of the catalog snapshot
type LoadState string

const (
	LoadStateIdle    LoadState = "idle"
	LoadStateLoading LoadState = "loading"
	LoadStateReady   LoadState = "ready"
	LoadStateFailed  LoadState = "failed"
)

// StatusResponse describes the loaded catalog
type StatusResponse struct {
	State         LoadState  `json:"state"`
	Source        string     `json:"source"`
	Version       int64      `json:"version"`
	ProductCount  int        `json:"product_count"`
	SkippedCount  int        `json:"skipped_count"`
	MostPopularID *uuid.UUID `json:"most_popular_id,omitempty"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p catalog.Product, mostPopularID uuid.UUID) ProductResponse {
	stats := ToReviewStatsResponse(p.Stats())
	info := make(map[string]string, len(p.DetailedInfo))
	for k, v := range p.DetailedInfo {
		info[k] = v
	}
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		PriceValue:   p.PriceValue(),
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
		ProductURL:   p.ProductURL,
		DetailedInfo: info,
		Reviews:      ToReviewResponses(p.Reviews),
		ReviewStats:  &stats,
		MostPopular:  p.ID == mostPopularID,
	}
}

// ToProductListItems converts domain products to list items
func ToProductListItems(products []catalog.Product, mostPopularID uuid.UUID) []ProductListItem {
	items := make([]ProductListItem, len(products))
	for i, p := range products {
		items[i] = ProductListItem{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			PriceValue:  p.PriceValue(),
			Rating:      p.Rating,
			ReviewCount: p.ReviewCount,
			ProductURL:  p.ProductURL,
			MostPopular: p.ID == mostPopularID,
		}
	}
	return items
}

// ToReviewResponses converts reviews; the result is never nil
func ToReviewResponses(reviews []catalog.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = ReviewResponse{User: r.User, Rating: r.Rating, Date: r.Date, Content: r.Content}
	}
	return out
}

// ToReviewStatsResponse converts review statistics
func ToReviewStatsResponse(s catalog.ReviewStats) ReviewStatsResponse {
	return ReviewStatsResponse{
		Count:         s.Count,
		AverageRating: s.AverageRating,
		Stars:         s.Stars,
		Distribution:  s.Distribution,
	}
}

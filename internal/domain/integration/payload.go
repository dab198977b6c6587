package integration

import (
	"time"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
)

// MaxDataUpdateProducts caps the number of products sent in one data update
const MaxDataUpdateProducts = 10

// Webhook payload action names
const (
	PayloadActionDataUpdate       = "data_update"
	PayloadActionSendNotification = "send_notification"
)

// ISO8601Millis is the timestamp layout used in notification payloads
const ISO8601Millis = "2006-01-02T15:04:05.000Z"

// WorkflowSetupPayload is posted to the n8n webhook to start a workflow for one product
type WorkflowSetupPayload struct {
	ProductName        string            `json:"product_name"`
	ProductPrice       string            `json:"product_price"`
	ProductRating      float64           `json:"product_rating"`
	ProductReviewCount int               `json:"product_review_count"`
	ProductURL         string            `json:"product_url"`
	DetailedInfo       map[string]string `json:"detailed_info"`
	Reviews            []catalog.Review  `json:"reviews"`
}

// NewWorkflowSetupPayload builds the setup payload. Missing detail and
// reviews are sent as an empty object and an empty array.
func NewWorkflowSetupPayload(p catalog.Product) WorkflowSetupPayload {
	info := p.DetailedInfo
	if info == nil {
		info = map[string]string{}
	}
	reviews := p.Reviews
	if reviews == nil {
		reviews = []catalog.Review{}
	}
	return WorkflowSetupPayload{
		ProductName:        p.Name,
		ProductPrice:       p.Price,
		ProductRating:      p.Rating,
		ProductReviewCount: p.ReviewCount,
		ProductURL:         p.ProductURL,
		DetailedInfo:       info,
		Reviews:            reviews,
	}
}

// ProductPayload is a product as sent in a data update
type ProductPayload struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Price        string            `json:"price"`
	Rating       float64           `json:"rating"`
	ReviewCount  int               `json:"review_count"`
	ProductURL   string            `json:"product_url"`
	DetailedInfo map[string]string `json:"detailed_info,omitempty"`
	Reviews      []catalog.Review  `json:"reviews,omitempty"`
}

// DataUpdatePayload sends the top products in their current order
type DataUpdatePayload struct {
	Action   string           `json:"action"`
	Products []ProductPayload `json:"products"`
}

// NewDataUpdatePayload keeps at most MaxDataUpdateProducts products
func NewDataUpdatePayload(products []catalog.Product) DataUpdatePayload {
	n := min(len(products), MaxDataUpdateProducts)
	out := make([]ProductPayload, 0, n)
	for _, p := range products[:n] {
		out = append(out, ProductPayload{
			ID:           p.ID.String(),
			Name:         p.Name,
			Price:        p.Price,
			Rating:       p.Rating,
			ReviewCount:  p.ReviewCount,
			ProductURL:   p.ProductURL,
			DetailedInfo: p.DetailedInfo,
			Reviews:      p.Reviews,
		})
	}
	return DataUpdatePayload{Action: PayloadActionDataUpdate, Products: out}
}

// NotificationPayload announces one product
type NotificationPayload struct {
	Action    string `json:"action"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewNotificationPayload formats the notification message for a product
func NewNotificationPayload(p catalog.Product, now time.Time) NotificationPayload {
	return NotificationPayload{
		Action:    PayloadActionSendNotification,
		Message:   "인기 상품 알림: " + p.Name + " - " + p.Price,
		Timestamp: now.UTC().Format(ISO8601Millis),
	}
}

// ---------------------------------------------------------------------------
// Notion shapes
// ---------------------------------------------------------------------------

// NotionDatabaseTitle is the title given to databases created for the catalog
const NotionDatabaseTitle = "쿠팡 인기 상품 데이터베이스"

// NotionText is a Notion rich text element
type NotionText struct {
	Type string            `json:"type,omitempty"`
	Text NotionTextContent `json:"text"`
}

// NotionTextContent is the content of a text element
type NotionTextContent struct {
	Content string `json:"content"`
}

// NotionProductProperties are the page properties written for one product
type NotionProductProperties struct {
	Name struct {
		Title []NotionText `json:"title"`
	} `json:"Name"`
	Price struct {
		RichText []NotionText `json:"rich_text"`
	} `json:"Price"`
	Rating struct {
		Number float64 `json:"number"`
	} `json:"Rating"`
	Reviews struct {
		Number int `json:"number"`
	} `json:"Reviews"`
	URL struct {
		URL *string `json:"url"`
	} `json:"URL"`
}

// NotionParent addresses the container of a page or database
type NotionParent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// NotionPageRequest creates one page in a database
type NotionPageRequest struct {
	Parent     NotionParent            `json:"parent"`
	Properties NotionProductProperties `json:"properties"`
}

// NewNotionPageRequest maps a product onto the database property schema
func NewNotionPageRequest(databaseID string, p catalog.Product) NotionPageRequest {
	req := NotionPageRequest{
		Parent: NotionParent{DatabaseID: databaseID},
	}
	req.Properties.Name.Title = []NotionText{{Text: NotionTextContent{Content: p.Name}}}
	req.Properties.Price.RichText = []NotionText{{Text: NotionTextContent{Content: p.Price}}}
	req.Properties.Rating.Number = p.Rating
	req.Properties.Reviews.Number = p.ReviewCount
	if p.ProductURL != "" {
		u := p.ProductURL
		req.Properties.URL.URL = &u
	}
	return req
}

// NotionDatabaseRequest creates the product database under a page
type NotionDatabaseRequest struct {
	Parent     NotionParent              `json:"parent"`
	Title      []NotionText              `json:"title"`
	Properties map[string]map[string]any `json:"properties"`
}

// NewNotionDatabaseRequest builds the database schema used for product pages
func NewNotionDatabaseRequest(parentPageID string) NotionDatabaseRequest {
	return NotionDatabaseRequest{
		Parent: NotionParent{Type: "page_id", PageID: parentPageID},
		Title:  []NotionText{{Type: "text", Text: NotionTextContent{Content: NotionDatabaseTitle}}},
		Properties: map[string]map[string]any{
			"Name":    {"title": map[string]any{}},
			"Price":   {"rich_text": map[string]any{}},
			"Rating":  {"number": map[string]any{"format": "number"}},
			"Reviews": {"number": map[string]any{"format": "number"}},
			"URL":     {"url": map[string]any{}},
		},
	}
}

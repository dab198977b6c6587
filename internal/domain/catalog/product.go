package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// productNamespace seeds the name-based ids assigned to products that arrive
// without one, so the same document always yields the same ids.
var productNamespace = uuid.MustParse("6f1c2b8e-7d0a-4c55-9a3e-2b7c1f0e9d41")

// Review is a single customer review attached to a product
type Review struct {
	User    string  `json:"user"`
	Rating  float64 `json:"rating"`
	Date    string  `json:"date"`
	Content string  `json:"content"`
}

// Product is a catalog listing. Products are values and are never modified
// after the catalog is built; callers must treat DetailedInfo and Reviews as
// read-only.
type Product struct {
	ID           uuid.UUID
	Name         string
	Price        string
	Rating       float64
	ReviewCount  int
	ProductURL   string
	DetailedInfo map[string]string
	Reviews      []Review
}

// ProductSpec carries the raw attributes used to build a Product
type ProductSpec struct {
	ID           string
	Name         string
	Price        string
	Rating       float64
	ReviewCount  int
	ProductURL   string
	DetailedInfo map[string]string
	Reviews      []Review
}

// NewProduct validates a spec and builds a product. position is the
// product's place in the source document and feeds the derived id.
func NewProduct(position int, spec ProductSpec) (Product, error) {
	name := strings.TrimSpace(spec.Name)
	if err := validateProductName(name); err != nil {
		return Product{}, err
	}
	if spec.ReviewCount < 0 {
		return Product{}, shared.NewDomainError("INVALID_PRODUCT",
			fmt.Sprintf("Product %q has a negative review count", name))
	}

	id, err := productID(position, name, spec)
	if err != nil {
		return Product{}, err
	}

	var info map[string]string
	if len(spec.DetailedInfo) > 0 {
		info = make(map[string]string, len(spec.DetailedInfo))
		for k, v := range spec.DetailedInfo {
			info[k] = v
		}
	}
	var reviews []Review
	if len(spec.Reviews) > 0 {
		reviews = make([]Review, len(spec.Reviews))
		for i, r := range spec.Reviews {
			r.Rating = clampRating(r.Rating)
			reviews[i] = r
		}
	}

	return Product{
		ID:           id,
		Name:         name,
		Price:        strings.TrimSpace(spec.Price),
		Rating:       spec.Rating,
		ReviewCount:  spec.ReviewCount,
		ProductURL:   strings.TrimSpace(spec.ProductURL),
		DetailedInfo: info,
		Reviews:      reviews,
	}, nil
}

// PriceValue returns the numeric value of the product's price
func (p Product) PriceValue() decimal.Decimal {
	return PriceValue(p.Price)
}

// Stats summarizes the product's reviews
func (p Product) Stats() ReviewStats {
	return SummarizeReviews(p.Reviews)
}

func productID(position int, name string, spec ProductSpec) (uuid.UUID, error) {
	if raw := strings.TrimSpace(spec.ID); raw != "" {
		id, err := uuid.Parse(raw)
		if err == nil {
			return id, nil
		}
		// Non-uuid source ids still identify the product; hash them.
		return uuid.NewSHA1(productNamespace, []byte("id\x00"+raw)), nil
	}
	key := fmt.Sprintf("%d\x00%s\x00%s", position, name, strings.TrimSpace(spec.ProductURL))
	return uuid.NewSHA1(productNamespace, []byte(key)), nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if len([]rune(name)) > 500 {
		return shared.NewDomainError("INVALID_PRODUCT", "Product name cannot exceed 500 characters")
	}
	return nil
}

// clampRating pulls a review rating into 0-5
func clampRating(r float64) float64 {
	if math.IsNaN(r) {
		return 0
	}
	return min(max(r, 0), 5)
}

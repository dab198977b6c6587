package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Document is the wire shape of a catalog source
type Document struct {
	PopularProducts    []ProductRecord `json:"popular_products"`
	MostPopularProduct *ProductRecord  `json:"most_popular_product,omitempty"`
}

// ProductRecord is a product as it appears in a catalog document. Numeric
// fields tolerate strings and floats because scraped documents are loose.
type ProductRecord struct {
	ID           string                `json:"id,omitempty"`
	Name         string                `json:"name"`
	Price        FlexString            `json:"price"`
	Rating       FlexFloat             `json:"rating"`
	ReviewCount  FlexInt               `json:"review_count"`
	ProductURL   string                `json:"product_url"`
	DetailedInfo map[string]FlexString `json:"detailed_info,omitempty"`
	Reviews      []ReviewRecord        `json:"reviews,omitempty"`
}

// ReviewRecord is a review as it appears in a catalog document
type ReviewRecord struct {
	User    string     `json:"user"`
	Rating  FlexFloat  `json:"rating"`
	Date    FlexString `json:"date"`
	Content string     `json:"content"`
}

// FlexString accepts a JSON string, number or bool
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(b)
	return nil
}

// FlexFloat accepts a JSON number or a numeric string
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s, err := numericText(b)
	if err != nil || s == "" {
		*f = 0
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt accepts a JSON integer, float or a string such as "1,234"
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s, err := numericText(b)
	if err != nil || s == "" {
		*f = 0
		return err
	}
	s = strings.ReplaceAll(s, ",", "")
	if v, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(v)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*f = FlexInt(int(v))
	return nil
}

func numericText(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	return string(b), nil
}

// Spec converts the record into the attributes of a product
func (r ProductRecord) Spec() ProductSpec {
	spec := ProductSpec{
		ID:          r.ID,
		Name:        r.Name,
		Price:       string(r.Price),
		Rating:      float64(r.Rating),
		ReviewCount: int(r.ReviewCount),
		ProductURL:  r.ProductURL,
	}
	if len(r.DetailedInfo) > 0 {
		spec.DetailedInfo = make(map[string]string, len(r.DetailedInfo))
		for k, v := range r.DetailedInfo {
			spec.DetailedInfo[k] = string(v)
		}
	}
	for _, rv := range r.Reviews {
		spec.Reviews = append(spec.Reviews, Review{
			User:    rv.User,
			Rating:  float64(rv.Rating),
			Date:    string(rv.Date),
			Content: rv.Content,
		})
	}
	return spec
}

// ParseDocument decodes a catalog document
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, shared.NewDomainError("INVALID_DOCUMENT", "Malformed catalog document: "+err.Error())
	}
	if doc.PopularProducts == nil && doc.MostPopularProduct == nil {
		return Document{}, shared.NewDomainError("INVALID_DOCUMENT", "Catalog document has no popular_products")
	}
	return doc, nil
}

// SkippedRecord is a document record Build left out of the catalog.
// Position is -1 for the most popular flag.
type SkippedRecord struct {
	Position int
	Name     string
	Reason   string
}

// Build converts the document into a Catalog. Records that fail validation
// or repeat an earlier id are skipped and reported by Catalog.Skipped. The
// flagged most popular product is matched against the list by id, then by
// name and url, then by name; an unmatched flag is kept as a standalone
// product and an absent or invalid flag selects the first listed product.
func (d Document) Build() (*Catalog, error) {
	var skipped []SkippedRecord
	products := make([]Product, 0, len(d.PopularProducts))
	seen := make(map[uuid.UUID]struct{}, len(d.PopularProducts))
	for i, rec := range d.PopularProducts {
		p, err := NewProduct(i, rec.Spec())
		if err != nil {
			skipped = append(skipped, SkippedRecord{Position: i, Name: strings.TrimSpace(rec.Name), Reason: err.Error()})
			continue
		}
		if _, dup := seen[p.ID]; dup {
			skipped = append(skipped, SkippedRecord{Position: i, Name: p.Name, Reason: "Product id " + p.ID.String() + " appears more than once"})
			continue
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}

	mostPopularID := uuid.Nil
	var standalone *Product
	if d.MostPopularProduct != nil {
		flag := *d.MostPopularProduct
		if id := matchMostPopular(products, flag); id != uuid.Nil {
			mostPopularID = id
		} else if p, err := NewProduct(-1, flag.Spec()); err != nil {
			skipped = append(skipped, SkippedRecord{Position: -1, Name: strings.TrimSpace(flag.Name), Reason: err.Error()})
		} else if _, dup := seen[p.ID]; dup {
			skipped = append(skipped, SkippedRecord{Position: -1, Name: p.Name, Reason: "Most popular product id collides with a listed product"})
		} else {
			standalone = &p
		}
	}

	c, err := NewCatalog(products, mostPopularID, standalone)
	if err != nil {
		return nil, err
	}
	c.skipped = skipped
	return c, nil
}

func matchMostPopular(products []Product, flag ProductRecord) uuid.UUID {
	if strings.TrimSpace(flag.ID) != "" {
		want, err := productID(0, "", ProductSpec{ID: flag.ID})
		if err == nil {
			for _, p := range products {
				if p.ID == want {
					return p.ID
				}
			}
		}
	}
	name := strings.TrimSpace(flag.Name)
	url := strings.TrimSpace(flag.ProductURL)
	if url != "" {
		for _, p := range products {
			if p.Name == name && p.ProductURL == url {
				return p.ID
			}
		}
	}
	for _, p := range products {
		if p.Name == name {
			return p.ID
		}
	}
	return uuid.Nil
}

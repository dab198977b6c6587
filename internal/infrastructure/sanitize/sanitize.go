// Package sanitize strips markup from scraped catalog text.
package sanitize

import (
	"html"
	"strings"

	"github.com/coupang-catalog/backend/internal/domain/catalog"
	"github.com/microcosm-cc/bluemonday"
)

// DocumentSanitizer removes every HTML element from the free-text fields of
// a catalog document. URLs and numbers are left alone.
type DocumentSanitizer struct {
	policy *bluemonday.Policy
}

// NewDocumentSanitizer creates a sanitizer backed by the strict policy
func NewDocumentSanitizer() *DocumentSanitizer {
	return &DocumentSanitizer{policy: bluemonday.StrictPolicy()}
}

// Text returns s without markup. Entities are decoded again because the
// JSON API returns plain text, not HTML.
func (s *DocumentSanitizer) Text(v string) string {
	if !strings.ContainsAny(v, "<>&") {
		return v
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

// SanitizeDocument rewrites doc in place
func (s *DocumentSanitizer) SanitizeDocument(doc *catalog.Document) {
	for i := range doc.PopularProducts {
		s.record(&doc.PopularProducts[i])
	}
	if doc.MostPopularProduct != nil {
		s.record(doc.MostPopularProduct)
	}
}

func (s *DocumentSanitizer) record(r *catalog.ProductRecord) {
	r.Name = s.Text(r.Name)
	r.Price = catalog.FlexString(s.Text(string(r.Price)))

	if len(r.DetailedInfo) > 0 {
		info := make(map[string]catalog.FlexString, len(r.DetailedInfo))
		for k, v := range r.DetailedInfo {
			info[s.Text(k)] = catalog.FlexString(s.Text(string(v)))
		}
		r.DetailedInfo = info
	}

	for i := range r.Reviews {
		rv := &r.Reviews[i]
		rv.User = s.Text(rv.User)
		rv.Date = catalog.FlexString(s.Text(string(rv.Date)))
		rv.Content = s.Text(rv.Content)
	}
}

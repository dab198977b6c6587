package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SortKey selects the ordering of a catalog query
type SortKey string

const (
	SortPopularity SortKey = "popularity"
	SortReviews    SortKey = "reviews"
	SortPrice      SortKey = "price"
)

// AllSortKeys returns all valid sort keys
func AllSortKeys() []SortKey {
	return []SortKey{SortPopularity, SortReviews, SortPrice}
}

// IsValid reports whether the sort key is known
func (k SortKey) IsValid() bool {
	switch k {
	case SortPopularity, SortReviews, SortPrice:
		return true
	}
	return false
}

func (k SortKey) String() string {
	return string(k)
}

// ParseSortKey parses a sort key. An empty string means popularity.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortPopularity, nil
	}
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", shared.NewDomainError("INVALID_SORT",
			fmt.Sprintf("Unknown sort key %q, expected one of popularity, reviews, price", s))
	}
	return k, nil
}

// Query is a search term plus a sort key
type Query struct {
	Search string
	Sort   SortKey
}

// Apply returns the products whose name contains term (case-insensitive),
// ordered by key. The input slice is never modified. Ties keep the input order.
func Apply(products []Product, term string, key SortKey) []Product {
	out := Filter(products, term)
	switch key {
	case SortReviews:
		slices.SortStableFunc(out, func(a, b Product) int {
			return b.ReviewCount - a.ReviewCount
		})
	case SortPrice:
		sortByPrice(out)
	}
	return out
}

// Filter returns the products whose name contains term, in input order.
// A term that is blank after trimming matches everything.
func Filter(products []Product, term string) []Product {
	out := make([]Product, 0, len(products))
	if strings.TrimSpace(term) == "" {
		return append(out, products...)
	}
	// Casers keep state and must not be shared across goroutines.
	lower := cases.Lower(language.Und)
	needle := lower.String(norm.NFC.String(term))
	for _, p := range products {
		if strings.Contains(lower.String(norm.NFC.String(p.Name)), needle) {
			out = append(out, p)
		}
	}
	return out
}

// MatchesSearch reports whether name contains term case-insensitively
func MatchesSearch(name, term string) bool {
	if strings.TrimSpace(term) == "" {
		return true
	}
	lower := cases.Lower(language.Und)
	return strings.Contains(lower.String(norm.NFC.String(name)), lower.String(norm.NFC.String(term)))
}

func sortByPrice(products []Product) {
	type keyed struct {
		p     Product
		value decimal.Decimal
	}
	ks := make([]keyed, len(products))
	for i, p := range products {
		ks[i] = keyed{p: p, value: p.PriceValue()}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		return a.value.Cmp(b.value)
	})
	for i := range ks {
		products[i] = ks[i].p
	}
}

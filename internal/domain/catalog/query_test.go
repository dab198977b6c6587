package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProducts(t *testing.T, specs ...ProductSpec) []Product {
	t.Helper()
	out := make([]Product, 0, len(specs))
	for i, s := range specs {
		p, err := NewProduct(i, s)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func names(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", SortPopularity, false},
		{"popularity", SortPopularity, false},
		{"reviews", SortReviews, false},
		{"PRICE", SortPrice, false},
		{"rating", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortKey(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Unknown sort key")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	t.Run("reviews sort is descending and stable", func(t *testing.T) {
		products := mustProducts(t,
			ProductSpec{Name: "A", ReviewCount: 5},
			ProductSpec{Name: "B", ReviewCount: 10},
			ProductSpec{Name: "A2", ReviewCount: 5},
		)
		got := Apply(products, "", SortReviews)
		assert.Equal(t, []string{"B", "A", "A2"}, names(got))
	})

	t.Run("price sort is ascending with digitless prices first", func(t *testing.T) {
		products := mustProducts(t,
			ProductSpec{Name: "expensive", Price: "₩129,000"},
			ProductSpec{Name: "cheap", Price: "₩9,900"},
			ProductSpec{Name: "unknown", Price: "품절"},
			ProductSpec{Name: "cheap2", Price: "9900원"},
		)
		got := Apply(products, "", SortPrice)
		assert.Equal(t, []string{"unknown", "cheap", "cheap2", "expensive"}, names(got))
	})

	t.Run("popularity keeps catalog order", func(t *testing.T) {
		products := mustProducts(t,
			ProductSpec{Name: "C", ReviewCount: 1},
			ProductSpec{Name: "A", ReviewCount: 3},
			ProductSpec{Name: "B", ReviewCount: 2},
		)
		got := Apply(products, "", SortPopularity)
		assert.Equal(t, []string{"C", "A", "B"}, names(got))
	})

	t.Run("does not modify the input", func(t *testing.T) {
		products := mustProducts(t,
			ProductSpec{Name: "A", ReviewCount: 1},
			ProductSpec{Name: "B", ReviewCount: 2},
		)
		_ = Apply(products, "", SortReviews)
		assert.Equal(t, []string{"A", "B"}, names(products))
	})

	t.Run("empty catalog yields empty result", func(t *testing.T) {
		got := Apply(nil, "x", SortPrice)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestFilter(t *testing.T) {
	products := mustProducts(t,
		ProductSpec{Name: "Apple iPhone 15"},
		ProductSpec{Name: "삼성 갤럭시 S24"},
		ProductSpec{Name: "APPLE Watch"},
		ProductSpec{Name: "Straße Kabel"},
	)

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"Apple iPhone 15", "삼성 갤럭시 S24", "APPLE Watch", "Straße Kabel"}},
		{"   ", []string{"Apple iPhone 15", "삼성 갤럭시 S24", "APPLE Watch", "Straße Kabel"}},
		{"apple", []string{"Apple iPhone 15", "APPLE Watch"}},
		{"갤럭시", []string{"삼성 갤럭시 S24"}},
		{"STRAßE", []string{"Straße Kabel"}},
		{"STRASSE", []string{}},
		{"ss", []string{}},
		{"missing", []string{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("term %q", tt.term), func(t *testing.T) {
			assert.Equal(t, tt.want, names(Filter(products, tt.term)))
		})
	}

	t.Run("decomposed hangul matches composed names", func(t *testing.T) {
		// 갤럭시 spelled with conjoining jamo
		decomposed := "\u1100\u1162\u11af\u1105\u1165\u11a8\u1109\u1175"
		assert.Equal(t, []string{"삼성 갤럭시 S24"}, names(Filter(products, decomposed)))
	})
}

// Every output element matches, every matching input element appears exactly
// once, and relative order is preserved.
func TestFilterProperties(t *testing.T) {
	products := mustProducts(t,
		ProductSpec{Name: "ab"}, ProductSpec{Name: "b"}, ProductSpec{Name: "AB"},
		ProductSpec{Name: "cab"}, ProductSpec{Name: "ba"}, ProductSpec{Name: "xyz"},
	)
	for _, term := range []string{"a", "ab", "B", "z", "q", ""} {
		got := Filter(products, term)
		j := 0
		for _, p := range products {
			if !MatchesSearch(p.Name, term) {
				continue
			}
			require.Less(t, j, len(got), "term %q", term)
			assert.Equal(t, p.ID, got[j].ID, "term %q", term)
			j++
		}
		assert.Equal(t, j, len(got), "term %q", term)
	}
}

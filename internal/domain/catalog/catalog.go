package catalog

import (
	"github.com/coupang-catalog/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Catalog is an immutable, ordered snapshot of products together with the
// product the source flagged as most popular.
type Catalog struct {
	products    []Product
	index       map[uuid.UUID]int
	mostPopular *Product
	standalone  bool
	skipped     []SkippedRecord
}

// NewCatalog builds a catalog. mostPopularID must reference one of products
// unless standalone is supplied, in which case that product is held outside
// the ordered list but is still addressable by id.
func NewCatalog(products []Product, mostPopularID uuid.UUID, standalone *Product) (*Catalog, error) {
	c := &Catalog{
		products: append([]Product(nil), products...),
		index:    make(map[uuid.UUID]int, len(products)),
	}
	for i, p := range c.products {
		if _, dup := c.index[p.ID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product id "+p.ID.String()+" appears more than once")
		}
		c.index[p.ID] = i
	}

	switch {
	case standalone != nil:
		if _, dup := c.index[standalone.ID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Most popular product id collides with a listed product")
		}
		mp := *standalone
		c.mostPopular = &mp
		c.standalone = true
	case mostPopularID != uuid.Nil:
		i, ok := c.index[mostPopularID]
		if !ok {
			return nil, shared.NewDomainError("INVALID_CATALOG", "Most popular product is not in the catalog")
		}
		c.mostPopular = &c.products[i]
	case len(c.products) > 0:
		c.mostPopular = &c.products[0]
	}
	return c, nil
}

// EmptyCatalog returns a catalog with no products
func EmptyCatalog() *Catalog {
	return &Catalog{index: map[uuid.UUID]int{}}
}

// Products returns a copy of the products in source order
func (c *Catalog) Products() []Product {
	return append([]Product(nil), c.products...)
}

// Skipped returns the document records left out when the catalog was built
func (c *Catalog) Skipped() []SkippedRecord {
	return append([]SkippedRecord(nil), c.skipped...)
}

// Len returns the number of listed products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Get returns the product with the given id, including a standalone most
// popular product.
func (c *Catalog) Get(id uuid.UUID) (Product, bool) {
	if i, ok := c.index[id]; ok {
		return c.products[i], true
	}
	if c.standalone && c.mostPopular.ID == id {
		return *c.mostPopular, true
	}
	return Product{}, false
}

// MostPopular returns the most popular product, if any
func (c *Catalog) MostPopular() (Product, bool) {
	if c.mostPopular == nil {
		return Product{}, false
	}
	return *c.mostPopular, true
}

// MostPopularID returns the id of the most popular product or uuid.Nil
func (c *Catalog) MostPopularID() uuid.UUID {
	if c.mostPopular == nil {
		return uuid.Nil
	}
	return c.mostPopular.ID
}

// MostPopularListed reports whether the most popular product is part of the
// ordered list
func (c *Catalog) MostPopularListed() bool {
	return c.mostPopular != nil && !c.standalone
}

// Query filters and sorts the catalog
func (c *Catalog) Query(q Query) []Product {
	return Apply(c.products, q.Search, q.Sort)
}

// Package memory implements an in-memory catalog repository.
package memory

import (
	"context"

	"storefront/pkg/catalog"
)

// Repository serves a fixed product list. It is safe for concurrent use
// because it is never written after New.
type Repository struct {
	products []catalog.Product
	byID     map[string]catalog.Product
}

// New creates a repository over products.
func New(products []catalog.Product) *Repository {
	r := &Repository{
		products: append([]catalog.Product(nil), products...),
		byID:     make(map[string]catalog.Product, len(products)),
	}
	for _, p := range products {
		r.byID[p.ID] = p
	}
	return r
}

// Get retrieves a product by ID.
func (r *Repository) Get(ctx context.Context, id string) (catalog.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

// List returns a sorted page of products and the total before paging.
func (r *Repository) List(ctx context.Context, q catalog.Query) ([]catalog.Product, int, error) {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}
	catalog.SortProducts(out, q.Sort)
	return catalog.Paginate(out, q), len(out), nil
}

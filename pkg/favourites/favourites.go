// Package favourites manages a session's favourite products with the same
// write-through persistence as the cart.
package favourites

import (
	"context"
	"sync"

	"storefront/pkg/catalog"
	"storefront/pkg/logger"
	"storefront/pkg/storage"
)

// Manager holds the favourites in insertion order.
type Manager struct {
	mu       sync.Mutex
	adapter  *storage.Adapter
	log      *logger.Logger
	products []catalog.Product
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used to report repaired stored data.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// Load reads the persisted favourites. Duplicate ids in the stored list are
// collapsed to their first occurrence.
func Load(ctx context.Context, adapter *storage.Adapter, opts ...Option) *Manager {
	m := &Manager{adapter: adapter, log: logger.NewNop()}
	for _, opt := range opts {
		opt(m)
	}

	stored := storage.Get[catalog.Product](ctx, adapter, storage.FavouritesList)
	seen := make(map[string]bool, len(stored))
	m.products = make([]catalog.Product, 0, len(stored))
	for _, p := range stored {
		switch {
		case p.ID == "":
			m.log.Warn(ctx, "dropping favourite without id")
			continue
		case seen[p.ID]:
			m.log.Warn(ctx, "dropping duplicate favourite", "product", p.ID)
			continue
		}
		seen[p.ID] = true
		m.products = append(m.products, p)
	}
	return m
}

// List returns a copy of the favourites.
func (m *Manager) List() []catalog.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]catalog.Product{}, m.products...)
}

// Len returns the number of favourites.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}

// Contains reports whether the product is a favourite.
func (m *Manager) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(id) >= 0
}

// Add appends product. Adding an existing favourite is a no-op.
func (m *Manager) Add(ctx context.Context, product catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(product.ID) >= 0 {
		return nil
	}
	next := append(append([]catalog.Product{}, m.products...), product)
	return m.commit(ctx, next)
}

// Remove drops the product with id. Removing an absent id is a no-op.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]catalog.Product, 0, len(m.products)-1)
	next = append(next, m.products[:i]...)
	next = append(next, m.products[i+1:]...)
	return m.commit(ctx, next)
}

// Toggle adds product if absent and removes it otherwise. It reports whether
// the product is a favourite afterwards.
func (m *Manager) Toggle(ctx context.Context, product catalog.Product) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(product.ID)
	if i < 0 {
		next := append(append([]catalog.Product{}, m.products...), product)
		if err := m.commit(ctx, next); err != nil {
			return false, err
		}
		return true, nil
	}
	next := make([]catalog.Product, 0, len(m.products)-1)
	next = append(next, m.products[:i]...)
	next = append(next, m.products[i+1:]...)
	if err := m.commit(ctx, next); err != nil {
		return true, err
	}
	return false, nil
}

// Clear removes every favourite.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit(ctx, []catalog.Product{})
}

func (m *Manager) commit(ctx context.Context, next []catalog.Product) error {
	if err := storage.Set(ctx, m.adapter, storage.FavouritesList, next); err != nil {
		return err
	}
	m.products = next
	return nil
}

func (m *Manager) indexOf(id string) int {
	for i, p := range m.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

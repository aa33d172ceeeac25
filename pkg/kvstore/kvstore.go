// Package kvstore defines the byte-oriented key-value store that backs the
// persisted cart and favourites lists.
package kvstore

import (
	"context"
	"strings"
)

// Store is a flat key-value store. Get reports found=false for absent keys
// without an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Prefixed scopes every key of an underlying Store under a fixed namespace.
type Prefixed struct {
	store  Store
	prefix string
}

// WithPrefix returns a Store whose keys are stored as "<part>:<part>:...:<key>".
func WithPrefix(store Store, parts ...string) *Prefixed {
	return &Prefixed{store: store, prefix: strings.Join(parts, ":") + ":"}
}

// Key returns the underlying key for key.
func (p *Prefixed) Key(key string) string {
	return p.prefix + key
}

// Get reads key from the namespace.
func (p *Prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.store.Get(ctx, p.Key(key))
}

// Set writes key in the namespace.
func (p *Prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.store.Set(ctx, p.Key(key), value)
}

// Delete removes key from the namespace.
func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.store.Delete(ctx, p.Key(key))
}

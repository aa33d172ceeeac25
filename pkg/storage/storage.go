// Package storage reads and writes named lists as JSON arrays in a key-value
// store. Reads fail soft: an absent, unreadable or malformed list is empty.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/pkg/kvstore"
	"storefront/pkg/logger"
)

// List names used by the storefront.
const (
	CartList       = "toBuy"
	FavouritesList = "favourites"
)

// Adapter binds a store to a logger for soft-failure reporting.
type Adapter struct {
	store kvstore.Store
	log   *logger.Logger
}

// New returns an Adapter. A nil log discards warnings.
func New(store kvstore.Store, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{store: store, log: log}
}

// Get decodes the list stored under name. It never fails: missing keys,
// backend errors and malformed JSON all yield an empty, non-nil slice.
func Get[T any](ctx context.Context, a *Adapter, name string) []T {
	raw, found, err := a.store.Get(ctx, name)
	if err != nil {
		a.log.Warn(ctx, "reading list", "list", name, "error", err)
		return []T{}
	}
	if !found || len(raw) == 0 {
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		a.log.Warn(ctx, "malformed list, using empty", "list", name, "error", err)
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

// Set replaces the list stored under name with items.
func Set[T any](ctx context.Context, a *Adapter, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := a.store.Set(ctx, name, raw); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

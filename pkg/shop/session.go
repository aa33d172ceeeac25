// Package shop holds the per-session application state shared by every
// storefront view: the cart, the favourites and the pending-removal marker.
package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/pkg/cart"
	"storefront/pkg/favourites"
	"storefront/pkg/kvstore"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	"storefront/pkg/storage"
)

var (
	// ErrEmptyCart is returned when checking out a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrRemovalPending is returned when checking out while a line is
	// still being removed.
	ErrRemovalPending = errors.New("cart has a pending removal")
)

// Options configures sessions.
type Options struct {
	KeyPrefix string
	// RemovalDelay of zero means cart.DefaultRemovalDelay.
	RemovalDelay time.Duration
	Log          *logger.Logger
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.KeyPrefix == "" {
		o.KeyPrefix = "storefront"
	}
	if o.RemovalDelay == 0 {
		o.RemovalDelay = cart.DefaultRemovalDelay
	}
	if o.Log == nil {
		o.Log = logger.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Session is the state of one browsing session.
type Session struct {
	id         string
	now        func() time.Time
	cart       *cart.Manager
	favourites *favourites.Manager

	checkout sync.Mutex

	mu       sync.Mutex
	lastSeen time.Time
}

// Open builds a session by reading its lists from store under
// "<KeyPrefix>:<id>:".
func Open(ctx context.Context, id string, store kvstore.Store, opts Options) *Session {
	opts = opts.withDefaults()
	adapter := storage.New(kvstore.WithPrefix(store, opts.KeyPrefix, id), opts.Log)
	return &Session{
		id:         id,
		now:        opts.Now,
		cart:       cart.Load(ctx, adapter, cart.WithRemovalDelay(opts.RemovalDelay), cart.WithLogger(opts.Log)),
		favourites: favourites.Load(ctx, adapter, favourites.WithLogger(opts.Log)),
		lastSeen:   opts.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Cart returns the session's cart.
func (s *Session) Cart() *cart.Manager { return s.cart }

// Favourites returns the session's favourites.
func (s *Session) Favourites() *favourites.Manager { return s.favourites }

// LoadingIndex returns the cart line currently shown as loading.
func (s *Session) LoadingIndex() (int, bool) { return s.cart.LoadingIndex() }

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last Touch.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Checkout stores the cart as an order and takes the ordered lines out of
// the cart. Lines added while the order is being stored stay in the cart.
func (s *Session) Checkout(ctx context.Context, orders order.Repository) (order.Order, error) {
	s.checkout.Lock()
	defer s.checkout.Unlock()

	snap := s.cart.Snapshot()
	if snap.Pending > 0 {
		return order.Order{}, ErrRemovalPending
	}
	if len(snap.Items) == 0 {
		return order.Order{}, ErrEmptyCart
	}
	o := order.FromCart(s.id, snap.Items, s.now())
	if err := orders.Create(ctx, o); err != nil {
		return order.Order{}, fmt.Errorf("creating order: %w", err)
	}
	if err := s.cart.Settle(ctx, snap.Items); err != nil {
		return o, fmt.Errorf("settling cart after order %s: %w", o.ID, err)
	}
	return o, nil
}

// Close cancels pending cart removals.
func (s *Session) Close() {
	s.cart.Close()
}

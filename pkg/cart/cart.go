// Package cart manages a session's shopping cart. Every mutation is written
// through to the key-value store before it becomes visible in memory.
package cart

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"storefront/pkg/catalog"
	"storefront/pkg/logger"
	"storefront/pkg/storage"
)

const (
	MinQuantity = 1
	MaxQuantity = 5

	// DefaultRemovalDelay is how long a line stays in the loading state
	// before Remove takes effect.
	DefaultRemovalDelay = time.Second
)

var (
	// ErrIndexOutOfRange indicates no line exists at the given index.
	ErrIndexOutOfRange = errors.New("cart index out of range")
	// ErrQuantityOutOfRange indicates a quantity outside [MinQuantity, MaxQuantity].
	ErrQuantityOutOfRange = errors.New("cart quantity out of range")
	// ErrItemMismatch indicates the item passed to Update is not the product
	// at that index.
	ErrItemMismatch = errors.New("cart item does not match index")
)

// LineItem is a product and how many of it are in the cart.
type LineItem struct {
	Item     catalog.Product `json:"item"`
	Quantity int             `json:"quantity"`
}

// Cost returns the discounted price times quantity.
func (l LineItem) Cost() decimal.Decimal {
	return l.Item.RealPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Option configures a Manager.
type Option func(*Manager)

// WithRemovalDelay overrides DefaultRemovalDelay.
func WithRemovalDelay(d time.Duration) Option {
	return func(m *Manager) { m.delay = d }
}

// WithLogger sets the logger used for failures that have no caller to
// return to, such as a removal whose write fails after the delay.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// Manager holds the in-memory cart and mirrors it to storage.CartList.
type Manager struct {
	mu      sync.Mutex
	adapter *storage.Adapter
	log     *logger.Logger
	delay   time.Duration

	items   []LineItem
	pending map[string]*Removal
	last    string
}

// Load reads the persisted cart and returns a Manager over it.
func Load(ctx context.Context, adapter *storage.Adapter, opts ...Option) *Manager {
	m := &Manager{
		adapter: adapter,
		log:     logger.NewNop(),
		delay:   DefaultRemovalDelay,
		pending: make(map[string]*Removal),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.items = m.sanitize(ctx, storage.Get[LineItem](ctx, adapter, storage.CartList))
	return m
}

// sanitize drops lines without a product, merges repeated products into
// their first line and clamps quantities, so a hand-edited store cannot break
// the one-line-per-product and quantity invariants.
func (m *Manager) sanitize(ctx context.Context, items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	at := make(map[string]int, len(items))
	for _, it := range items {
		if it.Item.ID == "" {
			m.log.Warn(ctx, "dropping cart line without product")
			continue
		}
		if i, ok := at[it.Item.ID]; ok {
			m.log.Warn(ctx, "merging duplicate cart line", "product", it.Item.ID)
			out[i].Quantity += it.Quantity
			continue
		}
		at[it.Item.ID] = len(out)
		out = append(out, it)
	}
	for i := range out {
		if q := out[i].Quantity; q < MinQuantity || q > MaxQuantity {
			m.log.Warn(ctx, "clamping stored cart quantity", "product", out[i].Item.ID, "quantity", q)
			out[i].Quantity = clamp(q)
		}
	}
	return out
}

func clamp(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// Items returns a copy of the cart lines in order.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LineItem{}, m.items...)
}

// Len returns the number of lines.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Contains reports whether the product is in the cart.
func (m *Manager) Contains(productID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(productID) >= 0
}

// Cost sums the discounted cost of every line.
func (m *Manager) Cost() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, it := range m.items {
		total = total.Add(it.Cost())
	}
	return total
}

// Quantity sums the quantity of every line.
func (m *Manager) Quantity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, it := range m.items {
		n += it.Quantity
	}
	return n
}

// Add puts one of product in the cart. A product already present has its
// quantity incremented instead, which also supersedes a pending removal.
func (m *Manager) Add(ctx context.Context, product catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := append([]LineItem{}, m.items...)
	if i := m.indexOf(product.ID); i >= 0 {
		if next[i].Quantity >= MaxQuantity {
			return ErrQuantityOutOfRange
		}
		next[i].Quantity++
	} else {
		next = append(next, LineItem{Item: product, Quantity: MinQuantity})
	}

	if err := m.persist(ctx, next); err != nil {
		return err
	}
	m.items = next
	m.cancelLocked(product.ID)
	return nil
}

// Update replaces the line at index with item carrying quantity. Calling it
// on a line with a pending removal cancels the removal.
func (m *Manager) Update(ctx context.Context, index, quantity int, item LineItem) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return ErrQuantityOutOfRange
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.items) {
		return ErrIndexOutOfRange
	}
	if m.items[index].Item.ID != item.Item.ID {
		return ErrItemMismatch
	}

	next := append([]LineItem{}, m.items...)
	next[index] = LineItem{Item: item.Item, Quantity: quantity}
	if err := m.persist(ctx, next); err != nil {
		return err
	}
	m.items = next
	m.cancelLocked(item.Item.ID)
	return nil
}

// Clear empties the cart and cancels every pending removal.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persist(ctx, []LineItem{}); err != nil {
		return err
	}
	m.items = []LineItem{}
	for id := range m.pending {
		m.cancelLocked(id)
	}
	return nil
}

// Settle takes ordered out of the cart, as after a checkout of those lines.
// Each matching line loses the ordered quantity; lines added or increased in
// the meantime keep the difference. Lines that drop out have their pending
// removal cancelled.
func (m *Manager) Settle(ctx context.Context, ordered []LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	taken := make(map[string]int, len(ordered))
	for _, it := range ordered {
		taken[it.Item.ID] += it.Quantity
	}
	next := make([]LineItem, 0, len(m.items))
	var gone []string
	for _, it := range m.items {
		it.Quantity -= taken[it.Item.ID]
		if it.Quantity < MinQuantity {
			gone = append(gone, it.Item.ID)
			continue
		}
		next = append(next, it)
	}

	if err := m.persist(ctx, next); err != nil {
		return err
	}
	m.items = next
	for _, id := range gone {
		m.cancelLocked(id)
	}
	return nil
}

// Snapshot is the cart at a single instant.
type Snapshot struct {
	Items    []LineItem
	Cost     decimal.Decimal
	Quantity int
	// Loading holds the ascending indexes of lines with a pending removal.
	Loading []int
	// LoadingIndex is the line shown as loading, or -1.
	LoadingIndex int
	Pending      int
}

// Snapshot returns the lines, totals and loading state under one lock.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Items:        append([]LineItem{}, m.items...),
		Cost:         decimal.Zero,
		Loading:      m.pendingIndexesLocked(),
		LoadingIndex: m.loadingIndexLocked(),
		Pending:      len(m.pending),
	}
	for _, it := range m.items {
		s.Cost = s.Cost.Add(it.Cost())
		s.Quantity += it.Quantity
	}
	return s
}

func (m *Manager) persist(ctx context.Context, items []LineItem) error {
	return storage.Set(ctx, m.adapter, storage.CartList, items)
}

func (m *Manager) indexOf(productID string) int {
	for i, it := range m.items {
		if it.Item.ID == productID {
			return i
		}
	}
	return -1
}

// LoadingIndex returns the current index of the most recently scheduled
// removal that is still pending.
func (m *Manager) LoadingIndex() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.loadingIndexLocked()
	return i, i >= 0
}

func (m *Manager) loadingIndexLocked() int {
	if _, ok := m.pending[m.last]; ok {
		if i := m.indexOf(m.last); i >= 0 {
			return i
		}
	}
	idx := m.pendingIndexesLocked()
	if len(idx) == 0 {
		return -1
	}
	return idx[len(idx)-1]
}

// LoadingIndexes returns the indexes of every line with a pending removal,
// in ascending order.
func (m *Manager) LoadingIndexes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingIndexesLocked()
}

func (m *Manager) pendingIndexesLocked() []int {
	out := make([]int, 0, len(m.pending))
	for id := range m.pending {
		if i := m.indexOf(id); i >= 0 {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// IsLoading reports whether the line at index has a pending removal.
func (m *Manager) IsLoading(index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.items) {
		return false
	}
	_, ok := m.pending[m.items[index].Item.ID]
	return ok
}

// Pending returns the number of scheduled removals.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Close cancels every pending removal without touching the cart.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.pending {
		m.cancelLocked(id)
	}
}

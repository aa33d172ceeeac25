package cart

import (
	"context"
	"time"
)

// State is the lifecycle of a scheduled removal.
type State int

const (
	StatePending State = iota
	StateRemoved
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRemoved:
		return "removed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Removal is a handle on a line scheduled for removal. The line is tracked
// by product id, so removals that complete first and shift indexes do not
// redirect it to a different line.
type Removal struct {
	m         *Manager
	productID string
	timer     *time.Timer
	done      chan struct{}

	// guarded by m.mu
	state State
	err   error
}

// ProductID returns the product whose line is being removed.
func (r *Removal) ProductID() string { return r.productID }

// Done is closed once the removal is applied, cancelled or has failed.
func (r *Removal) Done() <-chan struct{} { return r.done }

// State returns the current state.
func (r *Removal) State() State {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.state
}

// Err returns the write error of a failed removal.
func (r *Removal) Err() error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.err
}

// Cancel stops the removal if it is still pending.
func (r *Removal) Cancel() bool {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.pending[r.productID] != r {
		return false
	}
	r.m.cancelLocked(r.productID)
	return true
}

// Remove marks the line at index as loading and removes it once the
// removal delay has elapsed. Removing a line that is already pending
// returns the existing handle.
func (m *Manager) Remove(ctx context.Context, index int) (*Removal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.items) {
		return nil, ErrIndexOutOfRange
	}
	id := m.items[index].Item.ID
	if r, ok := m.pending[id]; ok {
		return r, nil
	}

	r := &Removal{m: m, productID: id, done: make(chan struct{}), state: StatePending}
	m.pending[id] = r
	m.last = id
	fireCtx := context.WithoutCancel(ctx)
	r.timer = time.AfterFunc(m.delay, func() { m.fire(fireCtx, r) })
	return r, nil
}

// Cancel stops the pending removal of the line at index.
func (m *Manager) Cancel(index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.items) {
		return false
	}
	return m.cancelLocked(m.items[index].Item.ID)
}

func (m *Manager) cancelLocked(productID string) bool {
	r, ok := m.pending[productID]
	if !ok {
		return false
	}
	r.timer.Stop()
	delete(m.pending, productID)
	r.state = StateCancelled
	close(r.done)
	return true
}

func (m *Manager) fire(ctx context.Context, r *Removal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Cancelled or superseded while the timer was firing.
	if m.pending[r.productID] != r {
		return
	}
	delete(m.pending, r.productID)
	defer close(r.done)

	i := m.indexOf(r.productID)
	if i < 0 {
		r.state = StateRemoved
		return
	}
	next := make([]LineItem, 0, len(m.items)-1)
	next = append(next, m.items[:i]...)
	next = append(next, m.items[i+1:]...)
	if err := m.persist(ctx, next); err != nil {
		r.state = StateFailed
		r.err = err
		m.log.Error(ctx, "removing cart line", "product", r.productID, "error", err)
		return
	}
	m.items = next
	r.state = StateRemoved
}

package shop

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront/pkg/kvstore"
)

// Registry keeps live sessions in memory and opens them from the store on
// first use. Sessions on different server instances are not synchronized.
type Registry struct {
	store kvstore.Store
	opts  Options
	group singleflight.Group

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a registry over store.
func NewRegistry(store kvstore.Store, opts Options) *Registry {
	return &Registry{
		store:    store,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for id, opening it if needed. The session is
// touched while the registry lock is held, so a concurrent Sweep either
// evicts it before Get finds it or sees it as fresh.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	for {
		if s, ok := r.touch(id); ok {
			return s
		}
		r.group.Do(id, func() (any, error) {
			if _, ok := r.touch(id); ok {
				return nil, nil
			}
			s := Open(context.WithoutCancel(ctx), id, r.store, r.opts)
			r.mu.Lock()
			r.sessions[id] = s
			r.mu.Unlock()
			r.opts.Log.Debug(ctx, "session opened", "session", id)
			return nil, nil
		})
	}
}

func (r *Registry) touch(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if ok {
		s.Touch()
	}
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than idle that have no pending
// removal. Evicted sessions are reopened from the store on next use.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.opts.Now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.LastSeen().After(cutoff) || s.Cart().Pending() > 0 {
			continue
		}
		delete(r.sessions, id)
		n++
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(idle); n > 0 {
				r.opts.Log.Info(ctx, "evicted idle sessions", "count", n, "live", r.Len())
			}
		}
	}
}

// Close cancels pending removals in every live session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		s.Close()
	}
}

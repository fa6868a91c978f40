package widget

import (
	"sync"
	"time"

	"github.com/fjod/order-widget/internal/domain"
	"github.com/google/uuid"
)

const (
	// DefaultIdleTTL is how long an unused session is kept.
	DefaultIdleTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often the background cleanup runs
	DefaultCleanupInterval = time.Minute
)

// Factory builds the widget for a new session.
type Factory func(id string, lang domain.Language) *Widget

// Registry keeps one widget per browser session in memory.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Widget
	factory  Factory
	idleTTL  time.Duration
	now      func() time.Time
	onExpire func(id string)

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

type RegistryOption func(*Registry)

func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTTL = d
		}
	}
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// OnExpire registers a hook run after a session is dropped.
func OnExpire(fn func(id string)) RegistryOption {
	return func(r *Registry) { r.onExpire = fn }
}

// NewRegistry creates a registry and starts its cleanup loop. A
// non-positive interval disables the loop; ExpireIdle can still be called.
func NewRegistry(factory Factory, cleanupInterval time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions:    make(map[string]*Widget),
		factory:     factory,
		idleTTL:     DefaultIdleTTL,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if cleanupInterval > 0 {
		r.wg.Add(1)
		go r.cleanupLoop(cleanupInterval)
	}

	return r
}

func (r *Registry) cleanupLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.ExpireIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// ExpireIdle drops sessions unused for longer than the idle TTL. Sessions
// with an order in flight are kept. It returns how many were dropped.
func (r *Registry) ExpireIdle() int {
	now := r.now()

	r.mu.Lock()
	var expired []string
	for id, w := range r.sessions {
		if w.Busy() || w.idleSince(now) < r.idleTTL {
			continue
		}
		delete(r.sessions, id)
		expired = append(expired, id)
	}
	r.mu.Unlock()

	if r.onExpire != nil {
		for _, id := range expired {
			r.onExpire(id)
		}
	}
	return len(expired)
}

// Get returns the widget for id.
func (r *Registry) Get(id string) (*Widget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return w, nil
}

// Create starts a new session with a fresh id.
func (r *Registry) Create(lang domain.Language) *Widget {
	id := uuid.New().String()
	w := r.factory(id, lang)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = w
	return w
}

// Resolve returns the widget for id, creating a new session when id is
// unknown. The boolean reports whether a session was created.
func (r *Registry) Resolve(id string, lang domain.Language) (*Widget, bool) {
	if id != "" {
		if w, err := r.Get(id); err == nil {
			w.Touch()
			return w, false
		}
	}
	return r.Create(lang), true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the background cleanup and waits for it to finish
func (r *Registry) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()
	return nil
}

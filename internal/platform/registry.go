package platform

import (
	"errors"
	"sort"
	"sync"
)

// ErrNoPublisher is returned when no Publisher is registered for a
// platform. The dispatcher treats this as a configuration gap, not a
// delivery failure: the post stays pending.
var ErrNoPublisher = errors.New("no publisher registered")

// Registry maps platforms to their Publisher. Adding a platform means
// registering a capability here; dispatch logic never changes.
//
// Safe for concurrent use. Registrations may arrive after start (e.g.
// when a config reload enables a platform).
type Registry struct {
	mu   sync.RWMutex
	pubs map[Platform]Publisher
}

func NewRegistry() *Registry {
	return &Registry{pubs: map[Platform]Publisher{}}
}

func (r *Registry) Register(p Platform, pub Publisher) {
	if pub == nil {
		return
	}
	r.mu.Lock()
	r.pubs[p] = pub
	r.mu.Unlock()
}

// Unregister removes a platform's publisher, e.g. when it is disabled
// via config reload.
func (r *Registry) Unregister(p Platform) {
	r.mu.Lock()
	delete(r.pubs, p)
	r.mu.Unlock()
}

// Resolve returns the Publisher for p, or ErrNoPublisher.
func (r *Registry) Resolve(p Platform) (Publisher, error) {
	r.mu.RLock()
	pub := r.pubs[p]
	r.mu.RUnlock()
	if pub == nil {
		return nil, ErrNoPublisher
	}
	return pub, nil
}

// Registered lists platforms with a publisher, sorted for stable logs.
func (r *Registry) Registered() []Platform {
	r.mu.RLock()
	out := make([]Platform, 0, len(r.pubs))
	for p := range r.pubs {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

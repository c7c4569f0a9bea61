package realtime

import "sync"

// Registry is the set of admitted connections.
type Registry struct {
	mu    sync.RWMutex
	conns map[*Connection]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[*Connection]struct{})}
}

// Add inserts c. Adding the same connection twice is a no-op.
func (r *Registry) Add(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

// Remove deletes c. Removing an absent connection is a no-op.
func (r *Registry) Remove(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// ForEach calls fn for each connection registered at the time of the call.
// The lock is not held while fn runs, so fn may block on network writes and
// connections may come and go meanwhile.
func (r *Registry) ForEach(fn func(*Connection)) {
	for _, c := range r.snapshot() {
		fn(c)
	}
}

func (r *Registry) snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.conns))
	for c := range r.conns {
		out = append(out, c)
	}
	return out
}

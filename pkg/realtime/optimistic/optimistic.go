// Package optimistic applies a toggle locally before the server confirms it
// and reconciles once the server answers.
package optimistic

import "sync"

// Delta is what Begin applied: the count change and whether the flag flipped.
type Delta struct {
	Count   int
	Flipped bool
}

// Snapshot is a toggle's displayable state.
type Snapshot struct {
	Count  int
	Active bool
}

// Toggle holds a counted on/off state, such as a like and its count. A
// bookmark is a Toggle whose count is ignored.
type Toggle struct {
	mu     sync.Mutex
	count  int
	active bool
}

func NewToggle(count int, active bool) *Toggle {
	return &Toggle{count: count, active: active}
}

func (t *Toggle) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{Count: t.count, Active: t.active}
}

// Set replaces the state, for example when a fresh copy arrives from the
// server.
func (t *Toggle) Set(s Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count, t.active = s.Count, s.Active
}

// Begin flips the flag and moves the count by one in the same direction.
// The returned Pending must be resolved with Confirm or Rollback.
func (t *Toggle) Begin() *Pending {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := Delta{Count: 1, Flipped: true}
	if t.active {
		d.Count = -1
	}
	t.apply(d)
	return &Pending{toggle: t, delta: d}
}

func (t *Toggle) apply(d Delta) {
	t.count += d.Count
	if d.Flipped {
		t.active = !t.active
	}
}

// Pending is one optimistic change awaiting the server.
type Pending struct {
	toggle *Toggle
	delta  Delta
	once   sync.Once
}

func (p *Pending) Delta() Delta { return p.delta }

// Confirm discards the local delta and adopts the server's state.
func (p *Pending) Confirm(server Snapshot) {
	p.once.Do(func() {
		p.toggle.Set(server)
	})
}

// Rollback inverts exactly the delta Begin applied. Changes made since then
// by other sources are kept.
func (p *Pending) Rollback() {
	p.once.Do(func() {
		p.toggle.mu.Lock()
		defer p.toggle.mu.Unlock()
		p.toggle.apply(Delta{Count: -p.delta.Count, Flipped: p.delta.Flipped})
	})
}

// Do runs the whole cycle: Begin, call, then Confirm with the call's result
// or Rollback on error. The error is returned unchanged.
func (t *Toggle) Do(call func() (Snapshot, error)) (Snapshot, error) {
	p := t.Begin()
	server, err := call()
	if err != nil {
		p.Rollback()
		return t.Snapshot(), err
	}
	p.Confirm(server)
	return t.Snapshot(), nil
}

package engine

import (
	"github.com/lixenwraith/fitts/core"
)

// slot holds one arena cell; generation bumps on every free so old handles go stale
type slot[T any] struct {
	value      T
	generation uint32
	alive      bool
}

// Registry is a generational arena owning values of type T
// Handles issued by Create stay detectable as stale after Destroy
// Iteration follows creation order, which callers rely on for deterministic tie-breaks
// Not safe for concurrent use: the study runs on a single tick goroutine
type Registry[T any] struct {
	slots []slot[T]
	free  []uint32
	order []core.Entity // Live handles in creation order
}

// NewRegistry creates an empty arena
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		slots: make([]slot[T], 0, 32),
		order: make([]core.Entity, 0, 32),
	}
}

// Create stores val and returns its handle
func (r *Registry[T]) Create(val T) core.Entity {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot[T]{})
	}

	s := &r.slots[idx]
	s.generation++
	if s.generation == 0 {
		// Wrapped; zero generation is reserved for NoEntity
		s.generation = 1
	}
	s.value = val
	s.alive = true

	e := core.NewEntity(idx, s.generation)
	r.order = append(r.order, e)
	return e
}

// Get returns a pointer to the live value, or false for stale/unknown handles
// The pointer is valid until the next Create/Destroy
func (r *Registry[T]) Get(e core.Entity) (*T, bool) {
	s := r.lookup(e)
	if s == nil {
		return nil, false
	}
	return &s.value, true
}

// Alive reports whether e still refers to a live value
func (r *Registry[T]) Alive(e core.Entity) bool {
	return r.lookup(e) != nil
}

// Destroy frees the slot; returns false for stale handles
func (r *Registry[T]) Destroy(e core.Entity) bool {
	s := r.lookup(e)
	if s == nil {
		return false
	}

	var zero T
	s.value = zero
	s.alive = false
	r.free = append(r.free, e.Index())

	// Order-preserving removal keeps iteration deterministic
	for i, live := range r.order {
		if live == e {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns a copy of live handles in creation order
// Safe to iterate while destroying
func (r *Registry[T]) Snapshot() []core.Entity {
	out := make([]core.Entity, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns number of live values
func (r *Registry[T]) Len() int {
	return len(r.order)
}

// Clear destroys every live value, invalidating all outstanding handles
func (r *Registry[T]) Clear() {
	for _, e := range r.Snapshot() {
		r.Destroy(e)
	}
}

func (r *Registry[T]) lookup(e core.Entity) *slot[T] {
	if !e.Valid() {
		return nil
	}
	idx := e.Index()
	if int(idx) >= len(r.slots) {
		return nil
	}
	s := &r.slots[idx]
	if !s.alive || s.generation != e.Generation() {
		return nil
	}
	return s
}

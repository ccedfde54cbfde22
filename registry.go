// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sync"
	"weak"

	"github.com/db47h/logicsim/internal/arena"
	"github.com/pkg/errors"
)

// Registry is the shared collection of components in a circuit.
//
// The registry is owned by whatever owns the circuit. Nets only hold a Ref to
// it and fail with ErrInvalidArena once it is gone.
//
type Registry struct {
	mu     sync.RWMutex
	a      *arena.Arena[Component]
	closed bool
}

// NewRegistry returns a new, empty registry.
//
func NewRegistry() *Registry {
	return &Registry{a: arena.New[Component](0)}
}

// Insert adds c to the registry and returns its identity. Once the registry is
// closed, Insert does nothing and returns the zero ID.
//
func (r *Registry) Insert(c Component) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ID{}
	}
	return r.a.Insert(c)
}

// Get returns the component with the given identity.
//
func (r *Registry) Get(id ID) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.a.Get(id)
}

// Remove removes the component with the given identity from the registry. The
// component is not unbound from its nets; see Circuit.RemoveComponent.
//
func (r *Registry) Remove(id ID) (Component, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.a.Remove(id)
}

// Len returns the number of live components.
//
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.a.Len()
}

// Each calls fn for every component until fn returns false. The registry is
// read-locked for the duration of the call.
//
func (r *Registry) Each(fn func(ID, Component) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.a.Each(fn)
}

func (r *Registry) snapshot(dst []Component) []Component {
	r.Each(func(_ ID, c Component) bool {
		dst = append(dst, c)
		return true
	})
	return dst
}

// Close tears down the registry. All components are dropped and any Ref to
// the registry fails to upgrade from now on.
//
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.a.Clear()
}

// Ref returns a non-owning reference to r.
//
func (r *Registry) Ref() Ref {
	return Ref{p: weak.Make(r)}
}

// Ref is a weak reference to a Registry. The zero Ref never upgrades.
//
type Ref struct {
	p weak.Pointer[Registry]
}

// Upgrade returns the referenced registry, or false if it has been garbage
// collected or closed.
//
func (ref Ref) Upgrade() (*Registry, bool) {
	r := ref.p.Value()
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	return r, !closed
}

// tryWrite upgrades ref and calls fn with the registry write-locked. It never
// blocks: if the lock is held elsewhere it fails with ErrInvalidArena.
func (ref Ref) tryWrite(fn func(a *arena.Arena[Component]) error) error {
	r := ref.p.Value()
	if r == nil {
		return errors.Wrap(ErrInvalidArena, "registry released")
	}
	if !r.mu.TryLock() {
		return errors.Wrap(ErrInvalidArena, "registry locked")
	}
	defer r.mu.Unlock()
	if r.closed {
		return errors.Wrap(ErrInvalidArena, "registry closed")
	}
	return fn(r.a)
}

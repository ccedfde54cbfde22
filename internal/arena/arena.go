// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package arena implements a generational arena: a slice of slots addressed by
// (slot, generation) indices that stay valid across unrelated insertions and
// removals, and that are detected as stale once their slot has been reused.
//
package arena

import "strconv"

// Index identifies a value stored in an Arena.
//
// Generations start at 1, so the zero Index never refers to a live value and
// can be used as an "unset" marker.
//
type Index struct {
	Slot uint32
	Gen  uint32
}

// IsZero returns true if i is the zero Index.
//
func (i Index) IsZero() bool { return i.Gen == 0 }

func (i Index) String() string {
	return strconv.FormatUint(uint64(i.Slot), 10) + "v" + strconv.FormatUint(uint64(i.Gen), 10)
}

type entry[T any] struct {
	v    T
	gen  uint32
	used bool
}

// Arena is a generational arena of values of type T.
// An Arena is not safe for concurrent mutation.
//
type Arena[T any] struct {
	entries []entry[T]
	free    []uint32
	n       int
}

// New returns a new Arena with room for capacity values.
//
func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{entries: make([]entry[T], 0, capacity)}
}

// Insert stores v and returns its index.
//
func (a *Arena[T]) Insert(v T) Index {
	var slot uint32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		slot = uint32(len(a.entries))
		a.entries = append(a.entries, entry[T]{})
	}
	e := &a.entries[slot]
	e.gen++
	e.v = v
	e.used = true
	a.n++
	return Index{Slot: slot, Gen: e.gen}
}

func (a *Arena[T]) lookup(i Index) *entry[T] {
	if i.Gen == 0 || int(i.Slot) >= len(a.entries) {
		return nil
	}
	e := &a.entries[i.Slot]
	if !e.used || e.gen != i.Gen {
		return nil
	}
	return e
}

// Get returns the value at index i. ok is false if i is stale or was never
// allocated.
//
func (a *Arena[T]) Get(i Index) (v T, ok bool) {
	if e := a.lookup(i); e != nil {
		return e.v, true
	}
	return v, false
}

// Contains returns true if i refers to a live value.
//
func (a *Arena[T]) Contains(i Index) bool { return a.lookup(i) != nil }

// Remove removes the value at index i and returns it.
// The slot is recycled by subsequent calls to Insert with a new generation.
//
func (a *Arena[T]) Remove(i Index) (v T, ok bool) {
	e := a.lookup(i)
	if e == nil {
		return v, false
	}
	v = e.v
	var zero T
	e.v = zero
	e.used = false
	a.free = append(a.free, i.Slot)
	a.n--
	return v, true
}

// Len returns the number of live values.
//
func (a *Arena[T]) Len() int { return a.n }

// Each calls fn for every live value in slot order until fn returns false.
//
func (a *Arena[T]) Each(fn func(Index, T) bool) {
	for slot := range a.entries {
		e := &a.entries[slot]
		if !e.used {
			continue
		}
		if !fn(Index{Slot: uint32(slot), Gen: e.gen}, e.v) {
			return
		}
	}
}

// Clear removes all values. Indices obtained before Clear are all stale
// afterwards.
//
func (a *Arena[T]) Clear() {
	var zero T
	a.free = a.free[:0]
	for slot := len(a.entries) - 1; slot >= 0; slot-- {
		e := &a.entries[slot]
		if e.used {
			e.v = zero
			e.used = false
		}
		a.free = append(a.free, uint32(slot))
	}
	a.n = 0
}

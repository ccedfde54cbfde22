// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import "github.com/db47h/logicsim/internal/arena"

// ID is the stable identity of a component or net within the structure that
// holds it. Two IDs are equal only if both their slot and generation match, so
// an ID captured before its slot was reused never aliases the new occupant.
//
// The zero ID is never assigned.
//
type ID = arena.Index

// Nets resolves net identities. Net returns nil if id does not refer to a live
// net.
//
type Nets interface {
	Net(id ID) *Net
}

// A Component is any circuit element that can be wired to nets.
//
// Evaluate reads the active value of the nets bound to its input pins and
// writes the future value of the nets bound to its output pins. It must never
// write active values.
//
// Bind records that pin is connected to the given net, replacing any previous
// binding for that pin. Unbind clears the binding of pin; unbinding an
// unbound pin is not an error.
//
// Bind and Unbind are only called by nets, with the component registry write
// lock held. Components must not call back into nets or the registry from
// these methods.
//
type Component interface {
	Evaluate(nets Nets)
	Bind(pin int, net ID)
	Unbind(pin int)
}

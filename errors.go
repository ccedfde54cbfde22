// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import "github.com/pkg/errors"

// Errors returned by net operations that reach into the component registry.
// Returned errors wrap one of these values; test for them with errors.Is.
//
var (
	// ErrInvalidNet is returned when a net's own identity has not been set,
	// or when a net identity does not resolve to a live net.
	ErrInvalidNet = errors.New("net identity not assigned")
	// ErrInvalidArena is returned when the component registry has been torn
	// down or its write lock is held by another operation.
	ErrInvalidArena = errors.New("component registry unavailable")
	// ErrInvalidComponent is returned when a component identity does not
	// resolve to a live component.
	ErrInvalidComponent = errors.New("invalid component")
)

// errKind returns a short label for the sentinel wrapped by err.
func errKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidNet):
		return "invalid_net"
	case errors.Is(err, ErrInvalidArena):
		return "invalid_arena"
	case errors.Is(err, ErrInvalidComponent):
		return "invalid_component"
	}
	return "other"
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Signal is the state of a single wire.
//
// The zero value is Floating.
//
type Signal uint8

// Signal values.
//
const (
	Floating Signal = iota // undriven, high impedance
	Low
	High
	Error // conflicting drivers
)

// FromBool returns High if b is true, Low otherwise.
//
func FromBool(b bool) Signal {
	if b {
		return High
	}
	return Low
}

// Bool returns the boolean value of s. ok is false if s is neither Low nor
// High.
//
func (s Signal) Bool() (v bool, ok bool) {
	switch s {
	case Low:
		return false, true
	case High:
		return true, true
	}
	return false, false
}

// Determined returns true if s is Low or High.
//
func (s Signal) Determined() bool { return s == Low || s == High }

// Merge resolves two drivers on the same wire.
//
// Equal values are kept, Error wins over anything, Floating yields to the
// other value, and Low against High is an Error.
//
func Merge(a, b Signal) Signal {
	switch {
	case a == b:
		return a
	case a == Error || b == Error:
		return Error
	case a == Floating:
		return b
	case b == Floating:
		return a
	}
	return Error
}

// undetermined returns the result of a gate when one of its inputs is not
// Low or High. ok is false when both inputs are determined.
func undetermined(a, b Signal) (s Signal, ok bool) {
	switch {
	case a == Error || b == Error:
		return Error, true
	case a == Floating || b == Floating:
		return Floating, true
	}
	return Floating, false
}

// And returns a AND b.
//
func And(a, b Signal) Signal {
	if s, ok := undetermined(a, b); ok {
		return s
	}
	return FromBool(a == High && b == High)
}

// Or returns a OR b.
//
func Or(a, b Signal) Signal {
	if s, ok := undetermined(a, b); ok {
		return s
	}
	return FromBool(a == High || b == High)
}

// Xor returns a XOR b.
//
func Xor(a, b Signal) Signal {
	if s, ok := undetermined(a, b); ok {
		return s
	}
	return FromBool(a != b)
}

// Not swaps Low and High. Floating and Error are returned unchanged.
//
func Not(a Signal) Signal {
	switch a {
	case Low:
		return High
	case High:
		return Low
	}
	return a
}

// Nand returns NOT (a AND b).
//
func Nand(a, b Signal) Signal { return Not(And(a, b)) }

// Nor returns NOT (a OR b).
//
func Nor(a, b Signal) Signal { return Not(Or(a, b)) }

// Xnor returns NOT (a XOR b).
//
func Xnor(a, b Signal) Signal { return Not(Xor(a, b)) }

var signalNames = [...]string{Floating: "Z", Low: "0", High: "1", Error: "X"}

func (s Signal) String() string {
	if int(s) < len(signalNames) {
		return signalNames[s]
	}
	return "Signal(" + strconv.Itoa(int(s)) + ")"
}

// ParseSignal parses a signal name. It accepts "0", "1", "Z", "X" as well as
// "low", "high", "floating" and "error", case-insensitive.
//
func ParseSignal(text string) (Signal, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "0", "low":
		return Low, nil
	case "1", "high":
		return High, nil
	case "z", "floating":
		return Floating, nil
	case "x", "error":
		return Error, nil
	}
	return Floating, errors.Errorf("invalid signal value %q", text)
}

// MarshalText implements encoding.TextMarshaler.
//
func (s Signal) MarshalText() ([]byte, error) {
	if int(s) >= len(signalNames) {
		return nil, errors.Errorf("invalid signal value %d", uint8(s))
	}
	return []byte(signalNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
func (s *Signal) UnmarshalText(text []byte) error {
	v, err := ParseSignal(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// FormatSignals returns the compact representation of a signal sequence, index
// 0 first. For example "10ZX".
//
func FormatSignals(v []Signal) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, s := range v {
		b.WriteString(s.String())
	}
	return b.String()
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable components for logicsim.
//
// All components operate bitwise on nets of any width: the width of the
// output net decides how many bits are computed, and missing input bits read
// as Floating. Outputs are written with Net.Drive, so two outputs wired to the
// same net resolve with logicsim.Merge.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package hwlib

import "github.com/db47h/logicsim"

// Not gate pins.
const (
	NotIn = iota
	NotOut
)

type not struct {
	Pins
}

// Not returns a NOT gate.
//
//	Pins: NotIn, NotOut
//	Function: out = !in
//
func Not() logicsim.Component { return &not{MakePins(2)} }

func (g *not) Evaluate(nets logicsim.Nets) {
	in, out := g.Net(nets, NotIn), g.Net(nets, NotOut)
	for bit := 0; bit < width(out); bit++ {
		out.Drive(bit, logicsim.Not(get(in, bit)))
	}
}

func (g *not) String() string { return "NOT" }

// Two-input gate pins.
const (
	GateA = iota
	GateB
	GateOut
)

type gate struct {
	Pins
	name string
	fn   func(a, b logicsim.Signal) logicsim.Signal
}

func (g *gate) Evaluate(nets logicsim.Nets) {
	a, b, out := g.Net(nets, GateA), g.Net(nets, GateB), g.Net(nets, GateOut)
	for bit := 0; bit < width(out); bit++ {
		out.Drive(bit, g.fn(get(a, bit), get(b, bit)))
	}
}

func (g *gate) String() string { return g.name }

// Gate returns a two-input gate computing fn.
//
//	Pins: GateA, GateB, GateOut
//	Function: out = fn(a, b)
//
func Gate(name string, fn func(a, b logicsim.Signal) logicsim.Signal) logicsim.Component {
	return &gate{MakePins(3), name, fn}
}

// And returns a AND gate.
//
//	Pins: GateA, GateB, GateOut
//	Function: out = a && b
//
func And() logicsim.Component { return Gate("AND", logicsim.And) }

// Nand returns a NAND gate.
//
//	Pins: GateA, GateB, GateOut
//	Function: out = !(a && b)
//
func Nand() logicsim.Component { return Gate("NAND", logicsim.Nand) }

// Or returns a OR gate.
//
//	Pins: GateA, GateB, GateOut
//	Function: out = a || b
//
func Or() logicsim.Component { return Gate("OR", logicsim.Or) }

// Nor returns a NOR gate.
//
//	Pins: GateA, GateB, GateOut
//	Function: out = !(a || b)
//
func Nor() logicsim.Component { return Gate("NOR", logicsim.Nor) }

// Xor returns a XOR gate.
//
//	Pins: GateA, GateB, GateOut
//	Function: out = (a && !b) || (!a && b)
//
func Xor() logicsim.Component { return Gate("XOR", logicsim.Xor) }

// Xnor returns a XNOR gate.
//
//	Pins: GateA, GateB, GateOut
//	Function: out = a && b || !a && !b
//
func Xnor() logicsim.Component { return Gate("XNOR", logicsim.Xnor) }

// Tristate buffer pins.
const (
	BufferIn = iota
	BufferEnable
	BufferOut
)

type buffer struct {
	Pins
}

// Buffer returns a tristate buffer. Several buffers can drive the same bus as
// long as at most one of them is enabled.
//
//	Pins: BufferIn, BufferEnable, BufferOut
//	Function: if en { out = in } else { out = Floating }
//
// An undetermined enable signal drives Error.
//
func Buffer() logicsim.Component { return &buffer{MakePins(3)} }

func (b *buffer) Evaluate(nets logicsim.Nets) {
	in, out := b.Net(nets, BufferIn), b.Net(nets, BufferOut)
	en := get(b.Net(nets, BufferEnable), 0)
	for bit := 0; bit < width(out); bit++ {
		switch en {
		case logicsim.High:
			out.Drive(bit, get(in, bit))
		case logicsim.Low:
		default:
			out.Drive(bit, logicsim.Error)
		}
	}
}

func (b *buffer) String() string { return "BUFFER" }

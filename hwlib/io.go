// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/logicsim"
)

// Input pins.
const (
	InputOut = iota
)

// Output pins.
const (
	OutputIn = iota
)

type input struct {
	Pins
	name string
	fn   func() uint64
}

func (i *input) Evaluate(nets logicsim.Nets) {
	driveUint64(i.Net(nets, InputOut), i.fn())
}

func (i *input) String() string { return i.name }

// Input creates a function based input. fn is called on every step and its
// result driven on the output net, bit 0 being the most significant bit.
//
//	Pins: InputOut
//	Function: out = f()
//
func Input(fn func() uint64) logicsim.Component {
	return &input{MakePins(1), "INPUT", fn}
}

// Const returns a component driving the constant value v.
//
//	Pins: ConstOut (same as InputOut)
//	Function: out = v
//
func Const(v uint64) logicsim.Component {
	return &input{MakePins(1), "CONST" + strconv.FormatUint(v, 10), func() uint64 { return v }}
}

// ConstOut is the output pin of Const.
const ConstOut = InputOut

type output struct {
	Pins
	fn func(v uint64, ok bool)
}

func (o *output) Evaluate(nets logicsim.Nets) {
	n := o.Net(nets, OutputIn)
	if n == nil {
		o.fn(0, false)
		return
	}
	o.fn(n.ReadUint64())
}

func (o *output) String() string { return "OUTPUT" }

// Output creates an output or probe. fn is called on every step with the
// active value of the input net as returned by Net.ReadUint64.
//
//	Pins: OutputIn
//	Function: f(in)
//
func Output(fn func(v uint64, ok bool)) logicsim.Component {
	return &output{MakePins(1), fn}
}

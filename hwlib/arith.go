// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/logicsim"

// Adder pins.
const (
	AdderA = iota
	AdderB
	AdderOut
	AdderCarry
)

type adder struct {
	Pins
}

// Adder returns a ripple-carry adder. The width of the output net sets the
// number of bits added. The last bit is the least significant one.
//
//	Pins: AdderA, AdderB, AdderOut, AdderCarry
//	Function: out = lsb(a + b)
//	          carry = msb(a + b)
//
// Undetermined input bits make the corresponding sum bit and every carry
// above it undetermined.
//
func Adder() logicsim.Component { return &adder{MakePins(4)} }

func (ad *adder) Evaluate(nets logicsim.Nets) {
	a, b, out := ad.Net(nets, AdderA), ad.Net(nets, AdderB), ad.Net(nets, AdderOut)
	c := logicsim.Low
	for bit := width(out) - 1; bit >= 0; bit-- {
		va, vb := get(a, bit), get(b, bit)
		s := logicsim.Xor(va, vb)
		out.Drive(bit, logicsim.Xor(s, c))
		c = logicsim.Or(logicsim.And(va, vb), logicsim.And(s, c))
	}
	if carry := ad.Net(nets, AdderCarry); carry != nil {
		carry.Drive(0, c)
	}
}

func (ad *adder) String() string { return "ADDER" }

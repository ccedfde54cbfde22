// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/logicsim"

// Mux pins.
const (
	MuxA = iota
	MuxB
	MuxSel
	MuxOut
)

type mux struct {
	Pins
}

// Mux returns a multiplexer. Bit 0 of sel selects the input for every bit.
//
//	Pins: MuxA, MuxB, MuxSel, MuxOut
//	Function: if sel == 0 { out = a } else { out = b }
//
// The input that is not selected is ignored. If sel is Floating or Error, every
// output bit is driven with that value.
//
func Mux() logicsim.Component { return &mux{MakePins(4)} }

func (m *mux) Evaluate(nets logicsim.Nets) {
	a, b, out := m.Net(nets, MuxA), m.Net(nets, MuxB), m.Net(nets, MuxOut)
	var in *logicsim.Net
	sel := get(m.Net(nets, MuxSel), 0)
	switch sel {
	case logicsim.Low:
		in = a
	case logicsim.High:
		in = b
	default:
		for bit := 0; bit < width(out); bit++ {
			out.Drive(bit, sel)
		}
		return
	}
	for bit := 0; bit < width(out); bit++ {
		out.Drive(bit, get(in, bit))
	}
}

func (m *mux) String() string { return "MUX" }

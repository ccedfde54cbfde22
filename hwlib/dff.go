// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/logicsim"

// DFF pins.
const (
	DFFIn = iota
	DFFClk
	DFFOut
)

type dff struct {
	Pins
	clk   logicsim.Signal // clock value seen on the previous step
	state []logicsim.Signal
}

// DFF returns a clocked data flip flop. The initial state is Low on every bit.
//
//	Pins: DFFIn, DFFClk, DFFOut
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
// in is latched when clk goes from Low to High.
//
func DFF() logicsim.Component { return &dff{Pins: MakePins(3)} }

func (d *dff) Evaluate(nets logicsim.Nets) {
	in, out := d.Net(nets, DFFIn), d.Net(nets, DFFOut)
	clk := get(d.Net(nets, DFFClk), 0)
	// raising edge?
	if d.clk == logicsim.Low && clk == logicsim.High {
		d.state = d.state[:0]
		for bit := 0; bit < width(in); bit++ {
			d.state = append(d.state, in.Get(bit))
		}
	}
	d.clk = clk
	for bit := 0; bit < width(out); bit++ {
		v := logicsim.Low
		if bit < len(d.state) {
			v = d.state[bit]
		}
		out.Drive(bit, v)
	}
}

func (d *dff) String() string { return "DFF" }

// Clock pins.
const (
	ClockOut = iota
)

type clock struct {
	Pins
	half int
	n    int
}

// Clock returns a clock signal generator. The output starts Low and toggles
// every halfPeriod steps. A halfPeriod less than 1 is treated as 1.
//
//	Pins: ClockOut
//
func Clock(halfPeriod int) logicsim.Component {
	if halfPeriod < 1 {
		halfPeriod = 1
	}
	return &clock{Pins: MakePins(1), half: halfPeriod}
}

func (c *clock) Evaluate(nets logicsim.Nets) {
	v := logicsim.FromBool((c.n/c.half)&1 != 0)
	c.n++
	out := c.Net(nets, ClockOut)
	for bit := 0; bit < width(out); bit++ {
		out.Drive(bit, v)
	}
}

func (c *clock) String() string { return "CLOCK" }

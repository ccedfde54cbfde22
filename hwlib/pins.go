// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/logicsim"

// Pins is a fixed-size pin binding table. Embedding Pins in a component
// provides the Bind and Unbind methods of logicsim.Component for free.
//
// Binding a pin number outside of the table is ignored.
//
type Pins struct {
	nets []logicsim.ID
}

// MakePins returns a Pins with room for n pins, all unbound.
//
func MakePins(n int) Pins {
	return Pins{nets: make([]logicsim.ID, n)}
}

// Bind implements logicsim.Component.
//
func (p *Pins) Bind(pin int, net logicsim.ID) {
	if pin >= 0 && pin < len(p.nets) {
		p.nets[pin] = net
	}
}

// Unbind implements logicsim.Component.
//
func (p *Pins) Unbind(pin int) {
	if pin >= 0 && pin < len(p.nets) {
		p.nets[pin] = logicsim.ID{}
	}
}

// Bound returns the identity of the net bound to pin.
//
func (p *Pins) Bound(pin int) (logicsim.ID, bool) {
	if pin < 0 || pin >= len(p.nets) || p.nets[pin].IsZero() {
		return logicsim.ID{}, false
	}
	return p.nets[pin], true
}

// Net returns the net bound to pin, or nil if the pin is unbound or the net no
// longer exists.
//
func (p *Pins) Net(nets logicsim.Nets, pin int) *logicsim.Net {
	id, ok := p.Bound(pin)
	if !ok {
		return nil
	}
	return nets.Net(id)
}

// get returns the active value of a bit of n, Floating if n is nil.
func get(n *logicsim.Net, bit int) logicsim.Signal {
	if n == nil {
		return logicsim.Floating
	}
	return n.Get(bit)
}

// width returns the width of n, 0 if n is nil.
func width(n *logicsim.Net) int {
	if n == nil {
		return 0
	}
	return n.Width()
}

// driveUint64 drives v on n, bit 0 being the most significant bit.
func driveUint64(n *logicsim.Net, v uint64) {
	for bit := width(n) - 1; bit >= 0; bit-- {
		n.Drive(bit, logicsim.FromBool(v&1 != 0))
		v >>= 1
	}
}

/*
Package logicsim provides the simulation substrate of a digital logic circuit
simulator: nets carrying four-valued signals, the contract that circuit
components implement, and a reference driver running the evaluate/commit
protocol.

Signals

A Signal is one of Low, High, Floating (undriven) and Error (conflicting
drivers). Merge resolves two drivers on the same wire. The gate operators And,
Or, Xor and Not propagate unknowns: any Error input gives Error, otherwise any
Floating input gives Floating.

Nets

A Net is a wire or a bus. Components read the active value of nets and write
their future value; Commit makes the future values active. Within one
simulation step every component sees the state committed at the end of the
previous step, whatever the order in which components are evaluated.

Nets and components reference each other through stable identities (ID) rather
than pointers. Components live in a Registry; nets only hold a weak Ref to it.
Wiring operations (Connect, Disconnect, Clear, Absorb) try to write-lock the
registry without blocking and fail with ErrInvalidArena if it is busy or gone.

Circuits

A Circuit owns a registry and a set of nets and implements the tick protocol:

	c := logicsim.NewCircuit(0)
	defer c.Close()
	a, out := c.NewNet(1), c.NewNet(1)
	not := c.AddComponent(hwlib.Not())
	c.Connect(a, not, hwlib.NotIn)
	c.Connect(out, not, hwlib.NotOut)
	c.Net(a).Overwrite(0, logicsim.Low)
	c.Step(ctx) // out is now High

The hwlib package provides a library of components.
*/
package logicsim

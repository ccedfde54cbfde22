// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing components.
//
package hwtest

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/db47h/logicsim"
	"github.com/google/go-cmp/cmp"
)

// A Fixture installs a part into c and wires it to the given port nets.
//
type Fixture func(c *logicsim.Circuit, ports []logicsim.ID) error

// Single returns a Fixture adding comp to the circuit with pin i connected to
// port i.
//
func Single(comp logicsim.Component) Fixture {
	return func(c *logicsim.Circuit, ports []logicsim.ID) error {
		id := c.AddComponent(comp)
		for pin, net := range ports {
			if err := c.Connect(net, id, pin); err != nil {
				return err
			}
		}
		return nil
	}
}

// driver drives a fixed sequence of signals on a net every step.
type driver struct {
	net    logicsim.ID
	values []logicsim.Signal
}

func (d *driver) Evaluate(nets logicsim.Nets) {
	n := nets.Net(d.net)
	if n == nil {
		return
	}
	for bit, v := range d.values {
		n.Drive(bit, v)
	}
}

func (d *driver) Bind(pin int, net logicsim.ID) { d.net = net }
func (d *driver) Unbind(pin int)                { d.net = logicsim.ID{} }

// Bench is a circuit with one net per port of a fixture under test.
//
type Bench struct {
	C       *logicsim.Circuit
	Ports   []logicsim.ID
	drivers map[int]*driver
}

// NewBench builds a bench for f. One net is created for each entry in widths,
// with the given bit width. The circuit is closed when the test ends.
//
func NewBench(t testing.TB, f Fixture, widths ...int) *Bench {
	t.Helper()
	c := logicsim.NewCircuit(0)
	t.Cleanup(c.Close)
	b := &Bench{C: c, drivers: make(map[int]*driver)}
	for _, w := range widths {
		b.Ports = append(b.Ports, c.NewNet(w))
	}
	if err := f(c, b.Ports); err != nil {
		t.Fatalf("%+v", err)
	}
	return b
}

// Net returns the net of the given port.
//
func (b *Bench) Net(port int) *logicsim.Net { return b.C.Net(b.Ports[port]) }

// Drive makes the bench drive values on the given port on every step until
// Drive is called again for that port.
//
func (b *Bench) Drive(t testing.TB, port int, values ...logicsim.Signal) {
	t.Helper()
	d, ok := b.drivers[port]
	if !ok {
		d = new(driver)
		id := b.C.AddComponent(d)
		if err := b.C.Connect(b.Ports[port], id, 0); err != nil {
			t.Fatalf("%+v", err)
		}
		b.drivers[port] = d
	}
	d.values = append(d.values[:0], values...)
}

// DriveUint64 drives v on the given port, bit 0 being the most significant bit.
//
func (b *Bench) DriveUint64(t testing.TB, port int, v uint64) {
	t.Helper()
	s := make([]logicsim.Signal, b.Net(port).Width())
	for i := len(s) - 1; i >= 0; i-- {
		s[i] = logicsim.FromBool(v&1 != 0)
		v >>= 1
	}
	b.Drive(t, port, s...)
}

// Step runs n simulation steps.
//
func (b *Bench) Step(t testing.TB, n int) {
	t.Helper()
	if err := b.C.Run(context.Background(), n); err != nil {
		t.Fatalf("%+v", err)
	}
}

// Read returns the active values of the given port.
//
func (b *Bench) Read(port int) []logicsim.Signal { return b.Net(port).Active() }

var signals = [...]logicsim.Signal{logicsim.Low, logicsim.High, logicsim.Floating, logicsim.Error}

func randSignals(r *rand.Rand, n int, determined bool) []logicsim.Signal {
	s := make([]logicsim.Signal, n)
	for i := range s {
		if determined {
			s[i] = signals[r.Intn(2)]
		} else {
			s[i] = signals[r.Intn(len(signals))]
		}
	}
	return s
}

// CompareOptions configures Compare.
//
type CompareOptions struct {
	// Steps to run after each input change. Must be at least one more than the
	// propagation delay of the slowest fixture.
	Steps int
	// Number of random input sets to try.
	Iterations int
	// Only use Low and High as input values.
	Determined bool
}

// Compare builds two benches with the same ports and compares their outputs
// given the same random inputs. inputs lists the input port numbers; every
// other port is compared after opts.Steps steps.
//
func Compare(t *testing.T, opts CompareOptions, f1, f2 Fixture, inputs []int, widths ...int) {
	t.Helper()

	seed := time.Now().UnixNano()
	r := rand.New(rand.NewSource(seed))
	b1, b2 := NewBench(t, f1, widths...), NewBench(t, f2, widths...)

	isInput := make(map[int]bool, len(inputs))
	for _, in := range inputs {
		isInput[in] = true
	}

	start := time.Now()
	for i := 0; i < opts.Iterations; i++ {
		in := make(map[int][]logicsim.Signal, len(inputs))
		for _, p := range inputs {
			v := randSignals(r, widths[p], opts.Determined)
			in[p] = v
			b1.Drive(t, p, v...)
			b2.Drive(t, p, v...)
		}
		b1.Step(t, opts.Steps)
		b2.Step(t, opts.Steps)
		for p := range widths {
			if isInput[p] {
				continue
			}
			if diff := cmp.Diff(b1.Read(p), b2.Read(p)); diff != "" {
				t.Fatalf("seed %d, inputs %v: port %d mismatch (-f1 +f2):\n%s", seed, in, p, diff)
			}
		}
	}
	t.Logf("%d iterations, %d steps in %v", opts.Iterations, b1.C.Ticks(), time.Since(start))
}

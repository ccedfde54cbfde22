package logicsim_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	ls "github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newCircuit(t *testing.T, workers int, opts ...ls.Option) *ls.Circuit {
	c := ls.NewCircuit(workers, opts...)
	t.Cleanup(c.Close)
	return c
}

// wire adds comp to c with pin i connected to nets[i].
func wire(t *testing.T, c *ls.Circuit, comp ls.Component, nets ...ls.ID) ls.ID {
	t.Helper()
	id := c.AddComponent(comp)
	for pin, n := range nets {
		require.NoError(t, c.Connect(n, id, pin))
	}
	return id
}

func step(t *testing.T, c *ls.Circuit, n int) {
	t.Helper()
	require.NoError(t, c.Run(context.Background(), n))
}

func TestNewCircuit(t *testing.T) {
	c := newCircuit(t, 0)
	assert.GreaterOrEqual(t, c.Workers(), 1)
	assert.Equal(t, 3, newCircuit(t, 3).Workers())
	assert.Zero(t, c.Ticks())
	assert.Zero(t, c.NetCount())
	assert.NotNil(t, c.Registry())
	assert.Nil(t, c.Net(ls.ID{}))

	// stepping an empty circuit is fine.
	step(t, c, 2)
	assert.Equal(t, uint64(2), c.Ticks())
}

func TestCircuit_propagation_delay(t *testing.T) {
	c := newCircuit(t, 1)
	in := c.NewNet(1)
	nets := []ls.ID{in}
	wire(t, c, hwlib.Const(0), in)
	for i := 0; i < 3; i++ {
		out := c.NewNet(1)
		wire(t, c, hwlib.Not(), nets[i], out)
		nets = append(nets, out)
	}
	trace := func() string {
		var b strings.Builder
		for _, id := range nets {
			b.WriteString(c.Net(id).String())
		}
		return b.String()
	}

	assert.Equal(t, "ZZZZ", trace())
	for _, want := range []string{"0ZZZ", "01ZZ", "010Z", "0101", "0101"} {
		step(t, c, 1)
		assert.Equal(t, want, trace(), "tick %d", c.Ticks())
	}
}

type gateDef struct {
	fn        func() ls.Component
	a, b, out int
}

// randomTrace builds a random gate network and returns the values of all nets
// after each step.
func randomTrace(t *testing.T, seed int64, workers int, reverse bool) []string {
	const nets, gates, width, steps = 24, 64, 3, 12
	fns := []func() ls.Component{hwlib.And, hwlib.Nand, hwlib.Or, hwlib.Nor, hwlib.Xor, hwlib.Xnor}

	r := rand.New(rand.NewSource(seed))
	defs := make([]gateDef, gates)
	for i := range defs {
		defs[i] = gateDef{fns[r.Intn(len(fns))], r.Intn(nets), r.Intn(nets), r.Intn(nets)}
	}
	if reverse {
		for i, j := 0, len(defs)-1; i < j; i, j = i+1, j-1 {
			defs[i], defs[j] = defs[j], defs[i]
		}
	}

	c := newCircuit(t, workers)
	ids := make([]ls.ID, nets)
	for i := range ids {
		ids[i] = c.NewNet(width)
		n := c.Net(ids[i])
		for bit := 0; bit < width; bit++ {
			n.Overwrite(bit, randSignal(uint8(r.Intn(4))))
		}
	}
	for _, s := range defs {
		wire(t, c, s.fn(), ids[s.a], ids[s.b], ids[s.out])
	}

	var trace []string
	for i := 0; i < steps; i++ {
		step(t, c, 1)
		var b strings.Builder
		for _, id := range ids {
			b.WriteString(c.Net(id).String())
			b.WriteByte(' ')
		}
		trace = append(trace, b.String())
	}
	return trace
}

func TestCircuit_evaluation_order(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		want := randomTrace(t, seed, 1, false)
		assert.Equal(t, want, randomTrace(t, seed, 1, true), "seed %d: reversed insertion", seed)
		assert.Equal(t, want, randomTrace(t, seed, 4, false), "seed %d: 4 workers", seed)
		assert.Equal(t, want, randomTrace(t, seed, 7, true), "seed %d: 7 workers, reversed", seed)
	}
}

func TestCircuit_merge(t *testing.T) {
	c := newCircuit(t, 2)
	a, b, out := c.NewNet(1), c.NewNet(1), c.NewNet(1)
	wire(t, c, hwlib.Const(1), a)
	not := wire(t, c, hwlib.Not(), b, out)

	step(t, c, 2)
	assert.Equal(t, "Z", c.Net(out).String())

	require.NoError(t, c.Merge(a, b))
	assert.Nil(t, c.Net(b))
	assert.Equal(t, 2, c.NetCount())
	assert.True(t, c.Net(a).IsBound(not, hwlib.NotIn))

	step(t, c, 2)
	assert.Equal(t, "0", c.Net(out).String())

	require.NoError(t, c.Merge(a, a))
	assert.ErrorIs(t, c.Merge(a, b), ls.ErrInvalidNet)
	assert.ErrorIs(t, c.Merge(b, a), ls.ErrInvalidNet)
	assert.NotNil(t, c.Net(a))
}

func TestCircuit_remove_component(t *testing.T) {
	c := newCircuit(t, 1)
	in, out := c.NewNet(1), c.NewNet(1)
	id := wire(t, c, hwlib.Not(), in, out)
	wire(t, c, hwlib.Const(0), in)

	require.NoError(t, c.RemoveComponent(id))
	_, ok := c.Component(id)
	assert.False(t, ok)
	assert.Empty(t, c.Net(out).Bindings())
	assert.Len(t, c.Net(in).Bindings(), 1)

	step(t, c, 3)
	assert.Equal(t, "Z", c.Net(out).String())

	assert.ErrorIs(t, c.RemoveComponent(id), ls.ErrInvalidComponent)
}

func TestCircuit_remove_net(t *testing.T) {
	c := newCircuit(t, 1)
	p := newProbe()
	pid := c.AddComponent(p)
	n := c.NewNet(2)
	require.NoError(t, c.Connect(n, pid, 0))
	require.NoError(t, c.Connect(n, pid, 1))
	assert.Len(t, p.pins, 2)

	require.NoError(t, c.RemoveNet(n))
	assert.Empty(t, p.pins)
	assert.Nil(t, c.Net(n))
	assert.Zero(t, c.NetCount())

	assert.ErrorIs(t, c.RemoveNet(n), ls.ErrInvalidNet)
	assert.ErrorIs(t, c.Connect(n, pid, 0), ls.ErrInvalidNet)
	assert.ErrorIs(t, c.Disconnect(n, pid, 0), ls.ErrInvalidNet)

	// the slot is reused with a new generation.
	m := c.NewNet(1)
	assert.Equal(t, n.Slot, m.Slot)
	assert.Nil(t, c.Net(n))
}

func TestCircuit_disconnect(t *testing.T) {
	c := newCircuit(t, 1)
	in, out := c.NewNet(1), c.NewNet(1)
	wire(t, c, hwlib.Const(1), in)
	not := wire(t, c, hwlib.Not(), in, out)
	step(t, c, 2)
	assert.Equal(t, "0", c.Net(out).String())

	require.NoError(t, c.Disconnect(in, not, hwlib.NotIn))
	step(t, c, 2)
	assert.Equal(t, "Z", c.Net(out).String())
}

func TestCircuit_rebind(t *testing.T) {
	c := newCircuit(t, 1)
	a, b, out := c.NewNet(1), c.NewNet(1), c.NewNet(1)
	wire(t, c, hwlib.Const(1), b)
	not := wire(t, c, hwlib.Not(), a, out)
	comp, _ := c.Component(not)
	pins := comp.(interface{ Bound(int) (ls.ID, bool) })

	require.NoError(t, c.Connect(b, not, hwlib.NotIn))
	assert.Empty(t, c.Net(a).Bindings())
	assert.True(t, c.Net(b).IsBound(not, hwlib.NotIn))
	id, ok := pins.Bound(hwlib.NotIn)
	require.True(t, ok)
	assert.Equal(t, b, id)

	// connecting again to the same net keeps the binding.
	require.NoError(t, c.Connect(b, not, hwlib.NotIn))
	assert.True(t, c.Net(b).IsBound(not, hwlib.NotIn))

	require.NoError(t, c.Disconnect(a, not, hwlib.NotIn))
	require.NoError(t, c.RemoveNet(a))
	id, ok = pins.Bound(hwlib.NotIn)
	require.True(t, ok, "removing the old net must not unbind the pin")
	assert.Equal(t, b, id)

	step(t, c, 2)
	assert.Equal(t, "0", c.Net(out).String())
}

// canceler drives a value then cancels the step.
type canceler struct {
	hwlib.Pins
	cancel context.CancelFunc
}

func (c *canceler) Evaluate(nets ls.Nets) {
	if n := c.Net(nets, 0); n != nil {
		n.Drive(0, H)
	}
	c.cancel()
}

func TestCircuit_step_canceled(t *testing.T) {
	c := newCircuit(t, 1)
	n := c.NewNet(1)
	c.Net(n).Overwrite(0, L)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wire(t, c, &canceler{hwlib.MakePins(1), cancel}, n)
	p := newProbe()
	c.AddComponent(p)

	err := c.Step(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, c.Ticks())
	assert.Zero(t, p.evals)
	assert.Equal(t, "0", c.Net(n).String(), "active values must be untouched")
	assert.Equal(t, Z, c.Net(n).Spy(0), "pending values must be discarded")

	assert.ErrorIs(t, c.Run(ctx, 3), context.Canceled)
	assert.Zero(t, c.Ticks())
}

func TestCircuit_metrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := ls.NewMetrics(reg)
	require.NoError(t, err)
	_, err = ls.NewMetrics(reg)
	assert.Error(t, err, "duplicate registration")

	c := newCircuit(t, 2, ls.WithMetrics(m))
	n := c.NewNet(1)
	wire(t, c, hwlib.Const(0), n)
	wire(t, c, hwlib.Const(1), n)
	step(t, c, 3)
	assert.Equal(t, "X", c.Net(n).String())

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Ticks))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Conflicts))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StepDuration))

	id := c.AddComponent(newProbe())
	assert.Error(t, c.Connect(ls.ID{Slot: 99, Gen: 1}, id, 0))
	c.Close()
	assert.Error(t, c.Connect(n, id, 0))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WiringErrors.WithLabelValues("connect", "invalid_net")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WiringErrors.WithLabelValues("connect", "invalid_arena")))
}

func TestCircuit_logger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := newCircuit(t, 1, ls.WithLogger(zap.New(core)))
	a, b := c.NewNet(1), c.NewNet(1)
	wire(t, c, hwlib.Const(0), a)
	wire(t, c, hwlib.Const(1), a)
	step(t, c, 1)
	require.NoError(t, c.Merge(a, b))

	assert.Equal(t, 1, logs.FilterMessage("conflicting drivers").Len())
	assert.Equal(t, 1, logs.FilterMessage("nets merged").Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	wire(t, c, newProbe())
	assert.Error(t, c.Step(ctx))
	entries := logs.FilterMessage("step aborted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

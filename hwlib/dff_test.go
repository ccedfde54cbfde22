package hwlib_test

import (
	"math/rand"
	"testing"

	"github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/hwtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randBool() bool {
	return rand.Int63()&(1<<62) != 0
}

func TestClock(t *testing.T) {
	var got []logicsim.Signal
	bench := hwtest.NewBench(t, hwtest.Single(hl.Clock(2)), 1)
	for i := 0; i < 8; i++ {
		bench.Step(t, 1)
		got = append(got, bench.Net(0).Get(0))
	}
	assert.Equal(t, "00110011", logicsim.FormatSignals(got))
}

func TestDFF(t *testing.T) {
	const (
		in = iota
		clk
		out
	)
	bench := hwtest.NewBench(t, hwtest.Single(hl.DFF()), 4, 1, 4)

	assert.Equal(t, "ZZZZ", logicsim.FormatSignals(bench.Read(out)))
	bench.Drive(t, clk, logicsim.Low)
	bench.Step(t, 2)
	assert.Equal(t, "0000", logicsim.FormatSignals(bench.Read(out)), "initial state")

	var prev uint64
	for i := uint64(15); i < 16; i-- {
		bench.DriveUint64(t, in, i)
		bench.Drive(t, clk, logicsim.Low)
		bench.Step(t, 2)
		v, ok := bench.Net(out).ReadUint64()
		require.True(t, ok)
		require.Equal(t, prev, v, "output changed without a clock edge")

		// raising edge
		bench.Drive(t, clk, logicsim.High)
		bench.Step(t, 2)
		v, ok = bench.Net(out).ReadUint64()
		require.True(t, ok)
		require.Equal(t, i, v)

		// no edge: clk stays high, input changes
		bench.DriveUint64(t, in, ^i&0xf)
		bench.Step(t, 2)
		v, _ = bench.Net(out).ReadUint64()
		require.Equal(t, i, v)
		prev = i
	}
}

// Test_bit_register builds a one bit register: a DFF fed by a mux selecting
// either its own output or a new input.
func Test_bit_register(t *testing.T) {
	const (
		in = iota
		load
		clk
		out
	)
	bench := hwtest.NewBench(t, func(c *logicsim.Circuit, ports []logicsim.ID) error {
		muxOut := c.NewNet(1)
		if err := hwtest.Single(hl.Mux())(c, []logicsim.ID{ports[out], ports[in], ports[load], muxOut}); err != nil {
			return err
		}
		return hwtest.Single(hl.DFF())(c, []logicsim.ID{muxOut, ports[clk], ports[out]})
	}, 1, 1, 1, 1)

	bench.Drive(t, clk, logicsim.Low)
	bench.Drive(t, load, logicsim.Low)
	bench.Step(t, 3)

	p := false
	for i := 0; i < 200; i++ {
		vin, vload := randBool(), randBool()
		bench.Drive(t, in, logicsim.FromBool(vin))
		bench.Drive(t, load, logicsim.FromBool(vload))
		bench.Drive(t, clk, logicsim.Low)
		bench.Step(t, 3)
		bench.Drive(t, clk, logicsim.High)
		bench.Step(t, 3)
		if vload {
			p = vin
		}
		require.Equal(t, logicsim.FromBool(p), bench.Net(out).Get(0), "iteration %d", i)
	}
}

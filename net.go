// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sort"
	"sync"

	"github.com/db47h/logicsim/internal/arena"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// A Binding is a component pin attached to a net.
//
type Binding struct {
	Component ID
	Pin       int
}

// Net is a wire or a multi-bit bus.
//
// A net holds two signal buffers: active, read by components during a
// simulation step, and future, written by components during that same step.
// Commit makes the future values active. Since readers and writers never touch
// the same buffer within a step, the order in which components are evaluated
// does not matter.
//
// Bindings are kept symmetric with the components' own pin bindings: every
// operation that changes the set of bindings on the net also notifies the
// affected components through the registry.
//
// The signal accessors are not synchronized, with the exception of Drive.
// Callers must not commit, reset or resize a net while it is being read or
// written by another goroutine.
//
type Net struct {
	active []Signal
	future []Signal
	mu     sync.Mutex // guards future in Drive

	id       ID
	reg      Ref
	bindings map[Binding]struct{}
}

// NewNet returns a net of the given bit width with all bits Floating, no
// bindings and no identity. reg is the registry holding the components that
// will be connected to the net.
//
func NewNet(width int, reg Ref) *Net {
	if width < 0 {
		panic("negative net width")
	}
	return &Net{
		active:   make([]Signal, width),
		future:   make([]Signal, width),
		reg:      reg,
		bindings: make(map[Binding]struct{}),
	}
}

// SetID sets the identity of the net within the structure that holds it.
// It must be called once, before any call to Connect or Absorb.
//
func (n *Net) SetID(id ID) { n.id = id }

// ID returns the identity of the net. ok is false if SetID has not been called.
//
func (n *Net) ID() (id ID, ok bool) { return n.id, !n.id.IsZero() }

// Width returns the bit width of the net.
//
func (n *Net) Width() int { return len(n.active) }

// Get returns the active value of the given bit, or Floating if bit is out of
// range.
//
func (n *Net) Get(bit int) Signal {
	if bit < 0 || bit >= len(n.active) {
		return Floating
	}
	return n.active[bit]
}

// Set sets the future value of the given bit. Out of range bits are ignored.
//
func (n *Net) Set(bit int, v Signal) {
	if bit < 0 || bit >= len(n.future) {
		return
	}
	n.future[bit] = v
}

// Drive merges v into the future value of the given bit. Several components
// can drive the same net during a step; conflicting values result in Error.
// Out of range bits are ignored. Drive is safe for concurrent use.
//
func (n *Net) Drive(bit int, v Signal) {
	if bit < 0 || bit >= len(n.future) {
		return
	}
	n.mu.Lock()
	n.future[bit] = Merge(n.future[bit], v)
	n.mu.Unlock()
}

// Spy returns the pending future value of the given bit, or Floating if bit is
// out of range.
//
func (n *Net) Spy(bit int) Signal {
	if bit < 0 || bit >= len(n.future) {
		return Floating
	}
	return n.future[bit]
}

// Overwrite sets the active value of the given bit directly, bypassing the
// future buffer. Out of range bits are ignored.
//
func (n *Net) Overwrite(bit int, v Signal) {
	if bit < 0 || bit >= len(n.active) {
		return
	}
	n.active[bit] = v
}

// Active returns a copy of the active values.
//
func (n *Net) Active() []Signal { return append([]Signal(nil), n.active...) }

// Future returns a copy of the future values.
//
func (n *Net) Future() []Signal { return append([]Signal(nil), n.future...) }

// HasError returns true if any active bit is Error.
//
func (n *Net) HasError() bool {
	for _, s := range n.active {
		if s == Error {
			return true
		}
	}
	return false
}

// Commit makes the future values active and resets the future buffer to
// Floating.
//
func (n *Net) Commit() {
	n.active, n.future = n.future, n.active
	n.discard()
}

// discard resets the future buffer.
func (n *Net) discard() {
	for i := range n.future {
		n.future[i] = Floating
	}
}

// Reset sets every bit of both buffers to Floating. Bindings are untouched.
//
func (n *Net) Reset() {
	for i := range n.active {
		n.active[i] = Floating
	}
	n.discard()
}

// Resize changes the bit width of the net. Growing appends Floating bits,
// shrinking truncates bits at the end. Truncated values are lost.
//
func (n *Net) Resize(width int) {
	if width < 0 {
		panic("negative net width")
	}
	n.active = resize(n.active, width)
	n.future = resize(n.future, width)
}

func resize(s []Signal, width int) []Signal {
	if width <= len(s) {
		return s[:width:width]
	}
	return append(s, make([]Signal, width-len(s))...)
}

// ReadUint64 returns the active value of the net as an unsigned integer. Bit 0
// is the most significant bit and the last bit the least significant. ok is
// false if any bit is Floating or Error.
//
// Only the last 64 bits contribute to the value of nets wider than 64 bits.
//
func (n *Net) ReadUint64() (v uint64, ok bool) {
	for _, s := range n.active {
		switch s {
		case High:
			v = v<<1 | 1
		case Low:
			v <<= 1
		default:
			return 0, false
		}
	}
	return v, true
}

// WriteUint64 writes v into the future buffer, bit 0 being the most
// significant bit. Only Low and High are written.
//
func (n *Net) WriteUint64(v uint64) {
	for i := len(n.future) - 1; i >= 0; i-- {
		n.future[i] = FromBool(v&1 != 0)
		v >>= 1
	}
}

func (n *Net) String() string {
	return FormatSignals(n.active)
}

// Bindings returns the component pins bound to the net, sorted by component
// identity then pin.
//
func (n *Net) Bindings() []Binding {
	bs := make([]Binding, 0, len(n.bindings))
	for b := range n.bindings {
		bs = append(bs, b)
	}
	sort.Slice(bs, func(i, j int) bool {
		x, y := bs[i], bs[j]
		if x.Component.Slot != y.Component.Slot {
			return x.Component.Slot < y.Component.Slot
		}
		if x.Component.Gen != y.Component.Gen {
			return x.Component.Gen < y.Component.Gen
		}
		return x.Pin < y.Pin
	})
	return bs
}

// IsBound returns true if the given component pin is bound to the net.
//
func (n *Net) IsBound(component ID, pin int) bool {
	_, ok := n.bindings[Binding{component, pin}]
	return ok
}

// Connect binds pin of the given component to the net.
//
// It fails with ErrInvalidNet if the net has no identity, ErrInvalidArena if
// the registry is gone or busy and ErrInvalidComponent if the component does
// not exist. On failure, neither the net nor the component are modified.
//
func (n *Net) Connect(component ID, pin int) error {
	if n.id.IsZero() {
		return errors.Wrapf(ErrInvalidNet, "connect %v pin %d", component, pin)
	}
	err := n.reg.tryWrite(func(a *arena.Arena[Component]) error {
		c, ok := a.Get(component)
		if !ok {
			return errors.Wrapf(ErrInvalidComponent, "component %v", component)
		}
		c.Bind(pin, n.id)
		n.bindings[Binding{component, pin}] = struct{}{}
		return nil
	})
	if err != nil {
		Logger().Debug("connect failed", zap.Stringer("net", n.id), zap.Stringer("component", component), zap.Int("pin", pin), zap.Error(err))
		return errors.Wrapf(err, "net %v: connect", n.id)
	}
	return nil
}

// Disconnect unbinds pin of the given component from the net.
//
// The binding is removed from the net before the component is looked up. If
// the component identity is stale, Disconnect returns ErrInvalidComponent but
// the binding stays removed from the net. The component pin is only unbound if
// it was bound to this net, so a pin since bound elsewhere is left alone.
//
func (n *Net) Disconnect(component ID, pin int) error {
	err := n.reg.tryWrite(func(a *arena.Arena[Component]) error {
		b := Binding{component, pin}
		_, bound := n.bindings[b]
		delete(n.bindings, b)
		c, ok := a.Get(component)
		if !ok {
			return errors.Wrapf(ErrInvalidComponent, "component %v", component)
		}
		if bound {
			c.Unbind(pin)
		}
		return nil
	})
	if err != nil {
		Logger().Debug("disconnect failed", zap.Stringer("net", n.id), zap.Stringer("component", component), zap.Int("pin", pin), zap.Error(err))
		return errors.Wrapf(err, "net %v: disconnect", n.id)
	}
	return nil
}

// Clear resets the net signals and unbinds every component pin bound to it.
// The net should be cleared before it is discarded.
//
// Signals are reset even if the registry is unavailable, in which case the
// bindings are left untouched and ErrInvalidArena is returned. Stale
// components are silently dropped.
//
func (n *Net) Clear() error {
	n.Reset()
	err := n.reg.tryWrite(func(a *arena.Arena[Component]) error {
		for b := range n.bindings {
			if c, ok := a.Get(b.Component); ok {
				c.Unbind(b.Pin)
			}
		}
		clear(n.bindings)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "net %v: clear", n.id)
	}
	return nil
}

// Absorb merges other into n, as if both wires were joined into a single node.
//
// Signals of both buffers are merged bit by bit over the bits common to both
// nets; other is left holding the merged values as well. Then every binding of
// other is moved to n and the bound components are rebound to n. other is left
// without bindings and should be discarded.
//
// Signals are merged before the identity and registry checks, so on failure n
// already holds the merged values while bindings are unchanged. Bindings of
// other that refer to stale components are dropped.
//
func (n *Net) Absorb(other *Net) error {
	if other == n {
		return nil
	}
	mergeInto(n.active, other.active)
	mergeInto(n.future, other.future)
	if n.id.IsZero() {
		return errors.Wrap(ErrInvalidNet, "absorb")
	}
	err := n.reg.tryWrite(func(a *arena.Arena[Component]) error {
		for b := range other.bindings {
			delete(other.bindings, b)
			c, ok := a.Get(b.Component)
			if !ok {
				Logger().Debug("absorb: dropping stale binding", zap.Stringer("net", n.id), zap.Stringer("component", b.Component), zap.Int("pin", b.Pin))
				continue
			}
			c.Unbind(b.Pin)
			c.Bind(b.Pin, n.id)
			n.bindings[b] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "net %v: absorb", n.id)
	}
	return nil
}

func mergeInto(dst, src []Signal) {
	for i := range dst {
		if i >= len(src) {
			return
		}
		dst[i] = Merge(dst[i], src[i])
		src[i] = dst[i]
	}
}

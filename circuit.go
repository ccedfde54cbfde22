// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"context"
	"runtime"
	"time"

	"github.com/db47h/logicsim/internal/arena"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// An Option configures a Circuit.
//
type Option func(c *Circuit)

// WithLogger sets the logger used by the circuit. The default is the package
// logger.
//
func WithLogger(l *zap.Logger) Option {
	return func(c *Circuit) { c.log = l }
}

// WithMetrics makes the circuit update the given collectors.
//
func WithMetrics(m *Metrics) Option {
	return func(c *Circuit) { c.metrics = m }
}

// Circuit is a runnable circuit simulation. It owns the component registry and
// the nets connecting components.
//
// Each call to Step evaluates every component once, in no particular order and
// possibly concurrently, then commits every net.
//
// The wiring methods (AddComponent, NewNet, Connect, Merge, etc.) must not be
// called concurrently with each other or with Step.
//
type Circuit struct {
	reg     *Registry
	nets    *arena.Arena[*Net]
	workers int
	tick    uint64
	comps   []Component // evaluation buffer

	log     *zap.Logger
	metrics *Metrics
}

// NewCircuit returns a new empty circuit.
//
// workers is the number of goroutines used to evaluate components each step of
// the simulation. If less or equal to 0, the value of GOMAXPROCS will be used.
// With a single worker, components are evaluated sequentially in the calling
// goroutine.
//
// Callers should call Close once the circuit is no longer needed.
//
func NewCircuit(workers int, opts ...Option) *Circuit {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	c := &Circuit{
		reg:     NewRegistry(),
		nets:    arena.New[*Net](0),
		workers: workers,
		log:     Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Registry returns the circuit's component registry.
//
func (c *Circuit) Registry() *Registry { return c.reg }

// Workers returns the number of evaluation goroutines.
//
func (c *Circuit) Workers() int { return c.workers }

// Ticks returns the number of committed simulation steps.
//
func (c *Circuit) Ticks() uint64 { return c.tick }

// Close tears down the component registry. Nets still referencing it will fail
// wiring operations with ErrInvalidArena.
//
func (c *Circuit) Close() {
	c.reg.Close()
}

// AddComponent adds a component to the circuit and returns its identity. After
// Close, it returns the zero ID.
//
func (c *Circuit) AddComponent(comp Component) ID {
	return c.reg.Insert(comp)
}

// Component returns the component with the given identity.
//
func (c *Circuit) Component(id ID) (Component, bool) {
	return c.reg.Get(id)
}

// RemoveComponent disconnects every pin of the given component from the
// circuit's nets, then removes it.
//
func (c *Circuit) RemoveComponent(id ID) error {
	if _, ok := c.reg.Get(id); !ok {
		return errors.Wrapf(ErrInvalidComponent, "remove component %v", id)
	}
	var err error
	c.nets.Each(func(_ ID, n *Net) bool {
		for _, b := range n.Bindings() {
			if b.Component != id {
				continue
			}
			if err = n.Disconnect(b.Component, b.Pin); err != nil {
				return false
			}
		}
		return true
	})
	if err != nil {
		c.metrics.wiringError("remove_component", err)
		return errors.Wrapf(err, "remove component %v", id)
	}
	c.reg.Remove(id)
	return nil
}

// NewNet creates a net of the given bit width and returns its identity.
//
func (c *Circuit) NewNet(width int) ID {
	n := NewNet(width, c.reg.Ref())
	id := c.nets.Insert(n)
	n.SetID(id)
	return id
}

// Net returns the net with the given identity, or nil if no such net exists.
// Net implements Nets.
//
func (c *Circuit) Net(id ID) *Net {
	n, _ := c.nets.Get(id)
	return n
}

// NetCount returns the number of nets in the circuit.
//
func (c *Circuit) NetCount() int { return c.nets.Len() }

func (c *Circuit) lookup(id ID) (*Net, error) {
	n, ok := c.nets.Get(id)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidNet, "unknown net %v", id)
	}
	return n, nil
}

// RemoveNet clears the given net then removes it from the circuit. If the net
// cannot be cleared, it is kept.
//
func (c *Circuit) RemoveNet(id ID) error {
	n, err := c.lookup(id)
	if err == nil {
		err = n.Clear()
	}
	if err != nil {
		c.metrics.wiringError("remove_net", err)
		return err
	}
	c.nets.Remove(id)
	return nil
}

// Connect binds pin of the given component to the given net. If the pin is
// already bound to another net of the circuit, it is disconnected from it
// first.
//
func (c *Circuit) Connect(net, comp ID, pin int) error {
	n, err := c.lookup(net)
	if err == nil {
		err = c.release(net, comp, pin)
	}
	if err == nil {
		err = n.Connect(comp, pin)
	}
	c.metrics.wiringError("connect", err)
	return err
}

// release disconnects pin of comp from any net other than keep.
func (c *Circuit) release(keep, comp ID, pin int) error {
	var err error
	c.nets.Each(func(id ID, n *Net) bool {
		if id == keep || !n.IsBound(comp, pin) {
			return true
		}
		err = n.Disconnect(comp, pin)
		return false
	})
	return err
}

// Disconnect unbinds pin of the given component from the given net.
//
func (c *Circuit) Disconnect(net, comp ID, pin int) error {
	n, err := c.lookup(net)
	if err == nil {
		err = n.Disconnect(comp, pin)
	}
	c.metrics.wiringError("disconnect", err)
	return err
}

// Merge joins the nets dst and src into dst, then removes src from the
// circuit. If the merge fails, src is kept.
//
func (c *Circuit) Merge(dst, src ID) error {
	if dst == src {
		return nil
	}
	d, err := c.lookup(dst)
	if err != nil {
		return err
	}
	s, err := c.lookup(src)
	if err != nil {
		return err
	}
	if err = d.Absorb(s); err != nil {
		c.metrics.wiringError("merge", err)
		return err
	}
	c.nets.Remove(src)
	c.log.Debug("nets merged", zap.Stringer("dst", dst), zap.Stringer("src", src))
	return nil
}

// Step advances the simulation by one step: every component is evaluated then
// every net is committed.
//
// If ctx is done before all components have been evaluated, pending values are
// discarded: net values and the tick counter are left as they were before the
// call. Components that already ran keep whatever internal state they updated.
//
func (c *Circuit) Step(ctx context.Context) error {
	start := time.Now()
	c.comps = c.reg.snapshot(c.comps[:0])
	err := c.evaluate(ctx, c.comps)
	clear(c.comps)
	if err != nil {
		c.nets.Each(func(_ ID, n *Net) bool {
			n.discard()
			return true
		})
		c.log.Warn("step aborted", zap.Uint64("tick", c.tick), zap.Error(err))
		return errors.Wrapf(err, "step %d", c.tick)
	}

	conflicts := 0
	c.nets.Each(func(_ ID, n *Net) bool {
		n.Commit()
		if n.HasError() {
			conflicts++
		}
		return true
	})
	c.tick++

	if conflicts > 0 {
		c.log.Debug("conflicting drivers", zap.Uint64("tick", c.tick), zap.Int("nets", conflicts))
	}
	if m := c.metrics; m != nil {
		m.Ticks.Inc()
		m.Conflicts.Add(float64(conflicts))
		m.StepDuration.Observe(time.Since(start).Seconds())
	}
	return nil
}

func (c *Circuit) evaluate(ctx context.Context, comps []Component) error {
	if c.workers <= 1 || len(comps) < 2 {
		for _, comp := range comps {
			if err := ctx.Err(); err != nil {
				return err
			}
			comp.Evaluate(c)
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	size := len(comps) / c.workers
	if size*c.workers < len(comps) {
		size++
	}
	for len(comps) > 0 {
		size = min(size, len(comps))
		part := comps[:size]
		comps = comps[size:]
		g.Go(func() error {
			for _, comp := range part {
				if err := ctx.Err(); err != nil {
					return err
				}
				comp.Evaluate(c)
			}
			return nil
		})
	}
	return g.Wait()
}

// Run runs the simulation for n steps or until ctx is done.
//
func (c *Circuit) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := c.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

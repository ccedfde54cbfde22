// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command logicsim runs a demo circuit: a clocked binary counter built from
// hwlib parts.
//
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/internal/config"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	config string
	cfg    config.Config
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "logicsim",
		Short:        "Digital logic circuit simulator",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	o := options{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the counter demo circuit",
		Long: `Runs a counter made of a clock, a D flip-flop register and an adder.
The register value is printed each time it changes, along with the tick at
which it was committed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(cmd); err != nil {
				return err
			}
			level, _ := o.cfg.Level()
			zc := zap.NewDevelopmentConfig()
			zc.Level = zap.NewAtomicLevelAt(level)
			logger, err := zc.Build()
			if err != nil {
				return errors.Wrap(err, "logger")
			}
			defer logger.Sync() //nolint:errcheck
			logicsim.SetLogger(logger)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			return run(ctx, cmd.OutOrStdout(), logger, o.cfg)
		},
	}

	def := o.cfg
	cmd.Flags().StringVarP(&o.config, "config", "c", "", "path to a logicsim.toml file")
	cmd.Flags().IntVar(&o.cfg.Workers, "workers", def.Workers, "number of evaluation goroutines, 0 for GOMAXPROCS")
	cmd.Flags().IntVarP(&o.cfg.Ticks, "ticks", "n", def.Ticks, "number of simulation steps")
	cmd.Flags().IntVar(&o.cfg.Width, "width", def.Width, "counter width in bits")
	cmd.Flags().IntVar(&o.cfg.Clock.HalfPeriod, "half-period", def.Clock.HalfPeriod, "clock half period in steps")
	cmd.Flags().StringVar(&o.cfg.LogLevel, "log-level", def.LogLevel, "log level")
	cmd.Flags().BoolVar(&o.cfg.Metrics, "metrics", def.Metrics, "print metrics when done")

	return cmd
}

// load reads the config file, if any, then applies the flags explicitly set
// on the command line.
func (o *options) load(cmd *cobra.Command) error {
	if o.config == "" {
		return o.cfg.Validate()
	}
	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}
	fs := cmd.Flags()
	set := func(name string, dst *int, v int) {
		if !fs.Changed(name) {
			*dst = v
		}
	}
	set("workers", &o.cfg.Workers, cfg.Workers)
	set("ticks", &o.cfg.Ticks, cfg.Ticks)
	set("width", &o.cfg.Width, cfg.Width)
	set("half-period", &o.cfg.Clock.HalfPeriod, cfg.Clock.HalfPeriod)
	if !fs.Changed("log-level") {
		o.cfg.LogLevel = cfg.LogLevel
	}
	if !fs.Changed("metrics") {
		o.cfg.Metrics = cfg.Metrics
	}
	return o.cfg.Validate()
}

// counter wires the demo circuit:
//
//	clock -> DFF.clk
//	DFF.out (q) -> adder.a, probe
//	const 1 -> adder.b
//	adder.out -> DFF.in
//
func counter(c *logicsim.Circuit, cfg config.Config, probe logicsim.Component) error {
	clk := c.NewNet(1)
	q, one, sum := c.NewNet(cfg.Width), c.NewNet(cfg.Width), c.NewNet(cfg.Width)
	parts := []struct {
		comp logicsim.Component
		nets []logicsim.ID
	}{
		{hwlib.Clock(cfg.Clock.HalfPeriod), []logicsim.ID{clk}},
		{hwlib.Const(1), []logicsim.ID{one}},
		{hwlib.Adder(), []logicsim.ID{q, one, sum}},
		{hwlib.DFF(), []logicsim.ID{sum, clk, q}},
		{probe, []logicsim.ID{q}},
	}
	for _, p := range parts {
		id := c.AddComponent(p.comp)
		for pin, n := range p.nets {
			if err := c.Connect(n, id, pin); err != nil {
				return errors.Wrapf(err, "wire %v", p.comp)
			}
		}
	}
	return nil
}

func run(ctx context.Context, out io.Writer, logger *zap.Logger, cfg config.Config) error {
	reg := prometheus.NewRegistry()
	m, err := logicsim.NewMetrics(reg)
	if err != nil {
		return err
	}
	c := logicsim.NewCircuit(cfg.Workers, logicsim.WithLogger(logger), logicsim.WithMetrics(m))
	defer c.Close()

	var (
		last uint64
		seen bool
	)
	probe := hwlib.Output(func(v uint64, ok bool) {
		if !ok || (seen && v == last) {
			return
		}
		last, seen = v, true
		fmt.Fprintf(out, "%d\t%0*b\t%d\n", c.Ticks(), cfg.Width, v, v)
	})
	if err = counter(c, cfg, probe); err != nil {
		return err
	}

	logger.Info("running", zap.Int("ticks", cfg.Ticks), zap.Int("workers", c.Workers()), zap.Int("width", cfg.Width))
	if err = c.Run(ctx, cfg.Ticks); err != nil {
		return err
	}
	logger.Info("done", zap.Uint64("ticks", c.Ticks()))

	if !cfg.Metrics {
		return nil
	}
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err = expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}

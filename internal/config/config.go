// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config handles logicsim.toml simulation settings.
//
package config

import (
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Config is the configuration of a simulation run.
//
type Config struct {
	// Number of evaluation goroutines. 0 means GOMAXPROCS.
	Workers int `toml:"workers"`
	// Number of steps to run.
	Ticks int `toml:"ticks"`
	// Bit width of the counter bus, between 1 and 64.
	Width int `toml:"width"`
	// zap level name: debug, info, warn or error.
	LogLevel string `toml:"log_level"`
	// Dump the circuit metrics once the run completes.
	Metrics bool `toml:"metrics"`

	Clock Clock `toml:"clock"`
}

// Clock configures the clock generator.
//
type Clock struct {
	// Number of steps between clock edges.
	HalfPeriod int `toml:"half_period"`
}

// Default returns the default configuration.
//
func Default() Config {
	return Config{
		Ticks:    64,
		Width:    4,
		LogLevel: "info",
		Clock:    Clock{HalfPeriod: 2},
	}
}

// Load reads the configuration file at path. Settings missing from the file
// keep their default value.
//
func Load(path string) (Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return c, errors.Wrapf(err, "parse error in %s", path)
	}
	if err = check(md, c); err != nil {
		return c, errors.Wrap(err, path)
	}
	return c, nil
}

// Decode reads a configuration from r.
//
func Decode(r io.Reader) (Config, error) {
	c := Default()
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return c, errors.Wrap(err, "parse error")
	}
	return c, check(md, c)
}

func check(md toml.MetaData, c Config) error {
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		sort.Strings(names)
		return errors.Errorf("unknown settings: %s", strings.Join(names, ", "))
	}
	return c.Validate()
}

// Validate checks that all settings are within range.
//
func (c *Config) Validate() error {
	switch {
	case c.Workers < 0:
		return errors.Errorf("workers: negative value %d", c.Workers)
	case c.Ticks < 0:
		return errors.Errorf("ticks: negative value %d", c.Ticks)
	case c.Width < 1 || c.Width > 64:
		return errors.Errorf("width: %d out of range [1, 64]", c.Width)
	case c.Clock.HalfPeriod < 1:
		return errors.Errorf("clock.half_period: %d must be at least 1", c.Clock.HalfPeriod)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level.
//
func (c *Config) Level() (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return l, errors.Wrap(err, "log_level")
	}
	return l, nil
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/db47h/logicsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Validate())
	l, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, l)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logicsim.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers = 2
ticks = 10
log_level = "debug"

[clock]
half_period = 3
`), 0o644))

	c, err := config.Load(path)
	require.NoError(t, err)
	want := config.Default()
	want.Workers = 2
	want.Ticks = 10
	want.LogLevel = "debug"
	want.Clock.HalfPeriod = 3
	assert.Equal(t, want, c)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDecode_errors(t *testing.T) {
	for _, td := range []struct {
		name, in, err string
	}{
		{"syntax", `ticks = `, "parse error"},
		{"unknown", "tick = 3\n[clock]\nperiod = 1", "unknown settings: clock.period, tick"},
		{"workers", `workers = -1`, "workers"},
		{"ticks", `ticks = -1`, "ticks"},
		{"width_low", `width = 0`, "width"},
		{"width_high", `width = 65`, "width"},
		{"clock", "[clock]\nhalf_period = 0", "clock.half_period"},
		{"level", `log_level = "loud"`, "log_level"},
	} {
		t.Run(td.name, func(t *testing.T) {
			_, err := config.Decode(strings.NewReader(td.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), td.err)
		})
	}
}

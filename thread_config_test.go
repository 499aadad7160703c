package jobpool

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadConfigMaxState(t *testing.T) {
	base := ThreadConfig{SpinCycles: 10, YieldCycles: 10, NapCycles: 10, NapInterval: 1, SleepInterval: 5}

	tests := []struct {
		name   string
		mutate func(*ThreadConfig)
		want   PowerState
	}{
		{"all enabled", func(*ThreadConfig) {}, Sleeping},
		{"spin disabled", func(c *ThreadConfig) { c.SpinCycles = Disabled }, Spinning},
		{"yield disabled", func(c *ThreadConfig) { c.YieldCycles = Disabled }, Yielding},
		{"nap interval disabled", func(c *ThreadConfig) { c.NapInterval = Disabled }, Yielding},
		{"nap disabled", func(c *ThreadConfig) { c.NapCycles = Disabled }, Napping},
		{"sleep interval disabled", func(c *ThreadConfig) { c.SleepInterval = Disabled }, Napping},
		{"spin wins over deeper", func(c *ThreadConfig) {
			c.SpinCycles = Disabled
			c.NapCycles = Disabled
		}, Spinning},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Equal(t, tc.want, cfg.MaxState())
		})
	}
}

func TestThreadConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultThreadConfig().Validate())
	assert.NoError(t, ThreadConfig{SpinCycles: Disabled}.Validate())
	assert.ErrorIs(t, ThreadConfig{YieldCycles: -2}.Validate(), ErrInvalidThreadConfig)
	assert.ErrorIs(t, ThreadConfig{SleepInterval: -7}.Validate(), ErrInvalidThreadConfig)
}

func TestThreadConfigDurations(t *testing.T) {
	cfg := ThreadConfig{NapInterval: 3, SleepInterval: 40}
	assert.Equal(t, 3*time.Millisecond, cfg.napDuration())
	assert.Equal(t, 40*time.Millisecond, cfg.sleepDuration())
}

func TestParseThreadConfigTOML(t *testing.T) {
	data := []byte(`
spin_cycles = 64
yield_cycles = 32
nap_cycles = -1
nap_interval_ms = 2
sleep_interval_ms = 20
`)
	cfg, err := ParseThreadConfig(data, "toml")
	require.NoError(t, err)
	assert.Equal(t, ThreadConfig{SpinCycles: 64, YieldCycles: 32, NapCycles: Disabled, NapInterval: 2, SleepInterval: 20}, cfg)
	assert.Equal(t, Napping, cfg.MaxState())
}

func TestParseThreadConfigYAMLKeepsDefaults(t *testing.T) {
	cfg, err := ParseThreadConfig([]byte("spin_cycles: 7\n"), "yml")
	require.NoError(t, err)

	want := DefaultThreadConfig()
	want.SpinCycles = 7
	assert.Equal(t, want, cfg)
}

func TestParseThreadConfigErrors(t *testing.T) {
	_, err := ParseThreadConfig([]byte("{}"), "json")
	assert.ErrorIs(t, err, ErrUnknownConfigFormat)

	_, err = ParseThreadConfig([]byte("spin_cycles = -3\n"), "toml")
	assert.ErrorIs(t, err, ErrInvalidThreadConfig)

	_, err = ParseThreadConfig([]byte("spin_cycles = [\n"), "toml")
	assert.Error(t, err)
}

func TestLoadThreadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "threads.yaml")
	require.NoError(t, os.WriteFile(path, []byte("yield_cycles: -1\nsleep_interval_ms: 15\n"), 0o600))

	cfg, err := LoadThreadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Disabled, cfg.YieldCycles)
	assert.Equal(t, 15, cfg.SleepInterval)
	assert.Equal(t, Yielding, cfg.MaxState())

	_, err = LoadThreadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

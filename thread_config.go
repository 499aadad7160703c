package jobpool

import (
	"fmt"
	"time"
)

// Disabled is the ThreadConfig sentinel that turns off a backoff tier
// together with every deeper tier.
const Disabled = -1

const (
	defaultSpinCycles    = 2000
	defaultYieldCycles   = 500
	defaultNapCycles     = 100
	defaultNapInterval   = 1
	defaultSleepInterval = 10
)

// ThreadConfig holds the backoff thresholds of a worker.
//
// A cycle count is the number of consecutive empty polls a worker spends
// in a state before moving to the next one. Setting a cycle count to
// Disabled keeps the worker in that state forever. Setting an interval
// to Disabled switches off the state that uses it, so the worker holds
// at the state before it.
//
// Intervals are in milliseconds.
type ThreadConfig struct {
	SpinCycles    int `toml:"spin_cycles" yaml:"spin_cycles"`
	YieldCycles   int `toml:"yield_cycles" yaml:"yield_cycles"`
	NapCycles     int `toml:"nap_cycles" yaml:"nap_cycles"`
	NapInterval   int `toml:"nap_interval_ms" yaml:"nap_interval_ms"`
	SleepInterval int `toml:"sleep_interval_ms" yaml:"sleep_interval_ms"`
}

// DefaultThreadConfig returns the thresholds used when Options.Thread
// is left zero.
func DefaultThreadConfig() ThreadConfig {
	return ThreadConfig{
		SpinCycles:    defaultSpinCycles,
		YieldCycles:   defaultYieldCycles,
		NapCycles:     defaultNapCycles,
		NapInterval:   defaultNapInterval,
		SleepInterval: defaultSleepInterval,
	}
}

// Validate checks that every field is either non-negative or Disabled.
func (c ThreadConfig) Validate() error {
	fields := []struct {
		name string
		v    int
	}{
		{"spin_cycles", c.SpinCycles},
		{"yield_cycles", c.YieldCycles},
		{"nap_cycles", c.NapCycles},
		{"nap_interval_ms", c.NapInterval},
		{"sleep_interval_ms", c.SleepInterval},
	}
	for _, f := range fields {
		if f.v < Disabled {
			return fmt.Errorf("%w: %s = %d", ErrInvalidThreadConfig, f.name, f.v)
		}
	}
	return nil
}

// MaxState returns the deepest state a worker configured with c can reach.
func (c ThreadConfig) MaxState() PowerState {
	switch {
	case c.SpinCycles == Disabled:
		return Spinning
	case c.YieldCycles == Disabled, c.NapInterval == Disabled:
		return Yielding
	case c.NapCycles == Disabled, c.SleepInterval == Disabled:
		return Napping
	default:
		return Sleeping
	}
}

// cyclesFor returns the number of empty polls spent in s before escalating.
func (c ThreadConfig) cyclesFor(s PowerState) int {
	switch s {
	case Spinning:
		return c.SpinCycles
	case Yielding:
		return c.YieldCycles
	case Napping:
		return c.NapCycles
	default:
		return Disabled
	}
}

func (c ThreadConfig) napDuration() time.Duration {
	return time.Duration(c.NapInterval) * time.Millisecond
}

func (c ThreadConfig) sleepDuration() time.Duration {
	return time.Duration(c.SleepInterval) * time.Millisecond
}

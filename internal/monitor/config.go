package monitor

import "time"

// Config controls the monitor's control-loop cadence and write behavior. It
// mirrors the teacher's AppState/Config split: interval and dry-run
// (Monitor) come from the top-level application config, while retry
// behavior and per-GPU power targets are supplied by the caller that builds
// a Monitor.
type Config struct {
	Interval time.Duration

	// DryRun records whether the loop runs in dry-run mode. The monitor
	// itself does not read it: it makes no fan writes, and power-limit
	// writes are suppressed by each PowerService's own dry-run flag.
	// Telemetry is read, alerts evaluated, health scored, and metrics
	// recorded either way.
	DryRun bool

	// Performance disables power-limit management entirely: the monitor
	// leaves whatever limit is currently set.
	Performance bool

	Retry         bool
	RetryInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:      5 * time.Second,
		Retry:         true,
		RetryInterval: 10 * time.Second,
	}
}

package domain

// EccMode reports whether ECC is enabled on the device.
type EccMode int

const (
	EccModeDisabled EccMode = iota
	EccModeEnabled
)

// EccErrors carries correctable/uncorrectable ECC counters, both current
// (since last driver reload) and lifetime.
type EccErrors struct {
	CorrectableCurrent    uint64
	CorrectableLifetime   uint64
	UncorrectableCurrent  uint64
	UncorrectableLifetime uint64
}

func (e EccErrors) HasUncorrectable() bool {
	return e.UncorrectableCurrent > 0 || e.UncorrectableLifetime > 0
}

// CorrectableRatePerHour returns the current correctable error count
// normalized to an hourly rate given the device's uptime. Zero uptime
// yields a rate of zero rather than dividing by zero.
func (e EccErrors) CorrectableRatePerHour(uptimeSeconds uint64) float64 {
	if uptimeSeconds == 0 {
		return 0
	}

	hours := float64(uptimeSeconds) / 3600.0

	return float64(e.CorrectableCurrent) / hours
}

// correctableErrorRateThreshold is the industry guideline above which a
// correctable error rate warrants investigation.
const correctableErrorRateThreshold = 10.0

// CorrectableExceedsThreshold reports whether the correctable error rate
// exceeds the industry guideline of 10/hour. Zero uptime never exceeds it.
func (e EccErrors) CorrectableExceedsThreshold(uptimeSeconds uint64) bool {
	if uptimeSeconds == 0 {
		return false
	}

	return e.CorrectableRatePerHour(uptimeSeconds) > correctableErrorRateThreshold
}

// MemoryInfo reports VRAM usage in bytes.
type MemoryInfo struct {
	TotalBytes uint64
	UsedBytes  uint64
	FreeBytes  uint64
}

// UsageRatio returns UsedBytes/TotalBytes, or 0 when TotalBytes is 0.
func (m MemoryInfo) UsageRatio() float64 {
	if m.TotalBytes == 0 {
		return 0
	}

	return float64(m.UsedBytes) / float64(m.TotalBytes)
}

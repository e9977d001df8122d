package domain

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}

	if v > 100 {
		return 100
	}

	return v
}

// Utilization reports GPU and memory controller load as percentages.
// NewUtilization is the non-validating ingress factory: readings are clamped
// to [0,100] rather than rejected, since the vendor library is the only
// source of these values and a clamp is cheaper than a round-trip error on
// every tick.
type Utilization struct {
	GpuPercent    int
	MemoryPercent int
}

func NewUtilization(gpuPercent, memoryPercent int) Utilization {
	return Utilization{
		GpuPercent:    clampPercent(gpuPercent),
		MemoryPercent: clampPercent(memoryPercent),
	}
}

// EncoderUtilization and DecoderUtilization report the video engines' load,
// clamped the same way as Utilization.
type EncoderUtilization struct {
	Percent int
}

func NewEncoderUtilization(percent int) EncoderUtilization {
	return EncoderUtilization{Percent: clampPercent(percent)}
}

type DecoderUtilization struct {
	Percent int
}

func NewDecoderUtilization(percent int) DecoderUtilization {
	return DecoderUtilization{Percent: clampPercent(percent)}
}

// ClockType distinguishes which clock domain a ClockSpeed reading belongs to.
type ClockType int

const (
	ClockTypeGraphics ClockType = iota
	ClockTypeMemory
	ClockTypeSM
	ClockTypeVideo
)

// ClockSpeed is a clock reading in MHz for a given ClockType.
type ClockSpeed struct {
	Type ClockType
	MHz  int
}

// PerformanceState mirrors the vendor library's P-state (P0 highest
// performance through P15 idle).
type PerformanceState int

// ThrottleReasons is a bitmask of vendor-reported throttle reasons.
type ThrottleReasons struct {
	GpuIdle              bool
	ApplicationsClocks   bool
	SwPowerCap           bool
	HwSlowdown           bool
	SyncBoost            bool
	SwThermalSlowdown    bool
	HwThermalSlowdown    bool
	HwPowerBrakeSlowdown bool
	DisplayClockSetting  bool
}

// IsThrottling reports whether the GPU is currently held back for power or
// thermal reasons. Idle, sync-boost, and display-clock reasons are excluded:
// they reflect policy, not a constraint the health/alert layers should treat
// as degraded operation.
func (r ThrottleReasons) IsThrottling() bool {
	return r.SwPowerCap || r.HwSlowdown || r.SwThermalSlowdown ||
		r.HwThermalSlowdown || r.HwPowerBrakeSlowdown
}

// IsThermalThrottling reports whether any thermal-specific reason is set.
func (r ThrottleReasons) IsThermalThrottling() bool {
	return r.HwThermalSlowdown || r.SwThermalSlowdown
}

// IsPowerThrottling reports whether any power-specific reason is set.
func (r ThrottleReasons) IsPowerThrottling() bool {
	return r.SwPowerCap || r.HwPowerBrakeSlowdown
}

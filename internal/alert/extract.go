package alert

import (
	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu"
)

// extractMetricValue maps a metric kind to one device accessor. It is a
// closed switch over MetricType, not runtime polymorphism, matching the
// reference engine's dispatch style. A false second return means the metric
// is unavailable on this device for this tick; callers must skip the rule
// silently rather than treat it as an error.
func extractMetricValue(device gpu.Device, fanIndex int, metric MetricType) (float64, bool) {
	switch metric {
	case MetricTemperature:
		t, err := device.Temperature()
		if err != nil {
			return 0, false
		}

		return float64(t.Celsius()), true

	case MetricMemoryTemperature:
		t, ok, err := device.MemoryTemperature()
		if err != nil || !ok {
			return 0, false
		}

		return float64(t.Celsius()), true

	case MetricPowerUsage:
		usage, err := device.PowerUsage()
		if err != nil {
			return 0, false
		}

		return float64(usage.Watts()), true

	case MetricPowerPercent:
		usage, err := device.PowerUsage()
		if err != nil {
			return 0, false
		}

		limit, err := device.PowerLimit()
		if err != nil || limit.Watts() <= 0 {
			return 0, false
		}

		return float64(usage.Watts()) / float64(limit.Watts()) * 100, true

	case MetricGpuUtilization:
		u, err := device.Utilization()
		if err != nil {
			return 0, false
		}

		return float64(u.GpuPercent), true

	case MetricMemoryUtilization:
		u, err := device.Utilization()
		if err != nil {
			return 0, false
		}

		return float64(u.MemoryPercent), true

	case MetricFanSpeed:
		speed, err := device.FanSpeed(fanIndex)
		if err != nil {
			return 0, false
		}

		return float64(speed.Percentage()), true

	case MetricClockSpeed:
		clock, err := device.ClockSpeed(domain.ClockTypeGraphics)
		if err != nil {
			return 0, false
		}

		return float64(clock.MHz), true

	case MetricEccCorrectableErrors:
		ecc, ok, err := device.EccErrors()
		if err != nil || !ok {
			return 0, false
		}

		return float64(ecc.CorrectableCurrent), true

	case MetricEccUncorrectableErrors:
		ecc, ok, err := device.EccErrors()
		if err != nil || !ok {
			return 0, false
		}

		return float64(ecc.UncorrectableCurrent), true

	case MetricPcieThroughput:
		tp, err := device.PcieThroughput()
		if err != nil {
			return 0, false
		}

		return float64(tp.TxBytesPerSec+tp.RxBytesPerSec) / 1024 / 1024, true // MB/s

	case MetricPcieReplayCounter:
		c, err := device.PcieReplayCounter()
		if err != nil {
			return 0, false
		}

		return float64(c.Count()), true

	default:
		return 0, false
	}
}

package monitor

import (
	"github.com/mqasimca/nvctl/internal/gpu"
	"github.com/mqasimca/nvctl/internal/health"
)

// buildHealthParams reads every signal the health calculator can use from
// device, tolerating individual read failures the same way extractMetricValue
// does for alerts: a failed or unsupported read degrades that category's
// "Has*" flag to false rather than aborting the whole tick.
func buildHealthParams(device gpu.Device, uptimeSeconds uint64) health.Params {
	params := health.Params{UptimeSeconds: uptimeSeconds}

	if temp, err := device.Temperature(); err == nil {
		params.Temperature = temp
	}

	if thresholds, err := device.ThermalThresholds(); err == nil {
		params.Thresholds = thresholds
	}

	if usage, err := device.PowerUsage(); err == nil {
		params.PowerUsage = usage
	}

	if limit, err := device.PowerLimit(); err == nil {
		params.PowerLimit = limit
	}

	if reasons, err := device.ThrottleReasons(); err == nil {
		params.IsThermalThrottling = reasons.IsThermalThrottling()
		params.IsPowerThrottling = reasons.IsPowerThrottling()
	}

	if ecc, ok, err := device.EccErrors(); err == nil && ok {
		params.EccErrors = ecc
		params.HasEcc = true
	}

	if mem, err := device.MemoryInfo(); err == nil && mem.TotalBytes > 0 {
		params.VramUsageRatio = mem.UsageRatio()
		params.HasVramUsage = true
	}

	if util, err := device.Utilization(); err == nil {
		params.Utilization = util
		params.HasUtilization = true
	}

	status, statusErr := device.PcieLinkStatus()
	throughput, throughputErr := device.PcieThroughput()
	replay, replayErr := device.PcieReplayCounter()

	if statusErr == nil && throughputErr == nil && replayErr == nil {
		params.PcieStatus = status
		params.PcieThroughput = throughput
		params.PcieReplay = replay
		params.HasPcie = true
	}

	return params
}

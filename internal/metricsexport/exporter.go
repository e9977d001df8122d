// Package metricsexport publishes live GPU telemetry as Prometheus gauges,
// labeled by GPU index, for scraping alongside the sqlite-backed history in
// package metrics.
package metricsexport

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Exporter owns a set of gauge vectors, one per tracked signal, each
// labeled by gpu_index. It is safe for concurrent use: every Set call is a
// single prometheus.GaugeVec operation, which is internally synchronized.
type Exporter struct {
	temperature  *prometheus.GaugeVec
	fanSpeed     *prometheus.GaugeVec
	powerUsage   *prometheus.GaugeVec
	powerLimit   *prometheus.GaugeVec
	gpuUtil      *prometheus.GaugeVec
	memUtil      *prometheus.GaugeVec
	healthScore  *prometheus.GaugeVec
	activeAlerts *prometheus.GaugeVec
}

// NewExporter builds an Exporter and registers its collectors with reg. Pass
// prometheus.DefaultRegisterer for the process-wide default registry.
func NewExporter(reg prometheus.Registerer) *Exporter {
	labels := []string{"gpu_index", "gpu_name"}

	e := &Exporter{
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nvctl", Name: "gpu_temperature_celsius", Help: "Current GPU die temperature.",
		}, labels),
		fanSpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nvctl", Name: "gpu_fan_speed_percent", Help: "Current fan speed as a percentage.",
		}, append(labels, "fan_index")),
		powerUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nvctl", Name: "gpu_power_usage_watts", Help: "Current power draw in watts.",
		}, labels),
		powerLimit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nvctl", Name: "gpu_power_limit_watts", Help: "Currently configured power limit in watts.",
		}, labels),
		gpuUtil: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nvctl", Name: "gpu_utilization_percent", Help: "GPU compute utilization percentage.",
		}, labels),
		memUtil: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nvctl", Name: "gpu_memory_utilization_percent", Help: "Memory controller utilization percentage.",
		}, labels),
		healthScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nvctl", Name: "gpu_health_score", Help: "Overall health score, 0-100.",
		}, labels),
		activeAlerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nvctl", Name: "gpu_active_alerts", Help: "Number of active alerts (pending, firing, acknowledged or silenced).",
		}, labels),
	}

	reg.MustRegister(e.temperature, e.fanSpeed, e.powerUsage, e.powerLimit,
		e.gpuUtil, e.memUtil, e.healthScore, e.activeAlerts)

	return e
}

func gpuLabels(index int, name string) prometheus.Labels {
	return prometheus.Labels{"gpu_index": strconv.Itoa(index), "gpu_name": name}
}

func (e *Exporter) SetTemperature(index int, name string, celsius int32) {
	e.temperature.With(gpuLabels(index, name)).Set(float64(celsius))
}

func (e *Exporter) SetFanSpeed(index int, name string, fanIndex, percent int) {
	labels := gpuLabels(index, name)
	labels["fan_index"] = strconv.Itoa(fanIndex)
	e.fanSpeed.With(labels).Set(float64(percent))
}

func (e *Exporter) SetPowerUsage(index int, name string, watts int) {
	e.powerUsage.With(gpuLabels(index, name)).Set(float64(watts))
}

func (e *Exporter) SetPowerLimit(index int, name string, watts int) {
	e.powerLimit.With(gpuLabels(index, name)).Set(float64(watts))
}

func (e *Exporter) SetUtilization(index int, name string, gpuPercent, memPercent int) {
	labels := gpuLabels(index, name)
	e.gpuUtil.With(labels).Set(float64(gpuPercent))
	e.memUtil.With(labels).Set(float64(memPercent))
}

func (e *Exporter) SetHealthScore(index int, name string, score uint8) {
	e.healthScore.With(gpuLabels(index, name)).Set(float64(score))
}

func (e *Exporter) SetActiveAlerts(index int, name string, count int) {
	e.activeAlerts.With(gpuLabels(index, name)).Set(float64(count))
}

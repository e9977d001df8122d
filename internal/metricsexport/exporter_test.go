package metricsexport

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, vec *prometheus.GaugeVec, labels prometheus.Labels) float64 {
	t.Helper()

	m := &dto.Metric{}
	require.NoError(t, vec.With(labels).Write(m))

	return m.GetGauge().GetValue()
}

func TestExporterSetTemperatureAndFanSpeed(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter(reg)

	e.SetTemperature(0, "Test GPU", 72)
	e.SetFanSpeed(0, "Test GPU", 1, 55)

	require.Equal(t, float64(72), gaugeValue(t, e.temperature, prometheus.Labels{
		"gpu_index": "0", "gpu_name": "Test GPU",
	}))
	require.Equal(t, float64(55), gaugeValue(t, e.fanSpeed, prometheus.Labels{
		"gpu_index": "0", "gpu_name": "Test GPU", "fan_index": "1",
	}))
}

func TestExporterSetHealthAndAlerts(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter(reg)

	e.SetHealthScore(2, "Another GPU", 87)
	e.SetActiveAlerts(2, "Another GPU", 3)

	labels := prometheus.Labels{"gpu_index": "2", "gpu_name": "Another GPU"}
	require.Equal(t, float64(87), gaugeValue(t, e.healthScore, labels))
	require.Equal(t, float64(3), gaugeValue(t, e.activeAlerts, labels))
}

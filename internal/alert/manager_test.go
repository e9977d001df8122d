package alert

import (
	"testing"
	"time"

	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerEvaluateSustainedAlertFiresAfterDuration(t *testing.T) {
	rule := Rule{
		ID:       "hot-gpu",
		Name:     "GPU too hot",
		Metric:   MetricTemperature,
		Cond:     Condition{Kind: GreaterThan, A: 80},
		Severity: SeverityCritical,
		Filter:   GpuFilter{Kind: FilterAll},
		Enabled:  true,
	}.WithDuration(30 * time.Second)

	m := NewManager(DefaultManagerConfig(), []Rule{rule})
	device := mock.NewDevice(0, "Test GPU", "GPU-test")
	device.SetTemperature(85)

	start := time.Now()

	firing := m.Evaluate(device, 0, 0, start)
	assert.Empty(t, firing, "alert must not fire immediately when the rule has a sustain duration")
	assert.Len(t, m.ActiveAlerts(), 1, "alert should be tracked as pending")
	assert.Equal(t, StatePending, m.ActiveAlerts()[0].State)

	firing = m.Evaluate(device, 0, 0, start.Add(10*time.Second))
	assert.Empty(t, firing, "alert must stay pending before the sustain duration elapses")

	firing = m.Evaluate(device, 0, 0, start.Add(31*time.Second))
	require.Len(t, firing, 1, "alert must fire once the sustain duration has elapsed")
	assert.Equal(t, StateFiring, firing[0].State)
	assert.Equal(t, 85.0, firing[0].CurrentValue)
}

func TestManagerEvaluateAlertWithoutDurationFiresImmediately(t *testing.T) {
	rule := Rule{
		ID:       "ecc-uncorrectable",
		Name:     "Uncorrectable ECC error",
		Metric:   MetricEccUncorrectableErrors,
		Cond:     Condition{Kind: GreaterThan, A: 0},
		Severity: SeverityEmergency,
		Filter:   GpuFilter{Kind: FilterAll},
		Enabled:  true,
	}

	m := NewManager(DefaultManagerConfig(), []Rule{rule})
	device := mock.NewDevice(0, "Test GPU", "GPU-test")
	device.SetEccErrors(domain.EccErrors{UncorrectableCurrent: 1})

	firing := m.Evaluate(device, 0, 0, time.Now())
	require.Len(t, firing, 1, "an alert with no sustain duration must fire on the first tick it holds")
	assert.Equal(t, SeverityEmergency, firing[0].Severity)
}

func TestManagerEvaluateResolvesWhenConditionClears(t *testing.T) {
	rule := Rule{
		ID:       "hot-gpu",
		Name:     "GPU too hot",
		Metric:   MetricTemperature,
		Cond:     Condition{Kind: GreaterThan, A: 80},
		Severity: SeverityCritical,
		Filter:   GpuFilter{Kind: FilterAll},
		Enabled:  true,
	}

	m := NewManager(DefaultManagerConfig(), []Rule{rule})
	device := mock.NewDevice(0, "Test GPU", "GPU-test")
	device.SetTemperature(85)

	firing := m.Evaluate(device, 0, 0, time.Now())
	require.Len(t, firing, 1)
	assert.Empty(t, m.History(), "a firing alert is not yet in history")

	device.SetTemperature(60)
	firing = m.Evaluate(device, 0, 0, time.Now())
	assert.Empty(t, firing)
	assert.Empty(t, m.ActiveAlerts(), "resolved alert must leave the active set")
	require.Len(t, m.History(), 1, "resolved alert must be recorded in history")
	assert.Equal(t, StateResolved, m.History()[0].State)
}

func TestManagerEvaluateGpuFilterExcludesOtherIndices(t *testing.T) {
	rule := Rule{
		ID:       "hot-gpu-1",
		Name:     "GPU 1 too hot",
		Metric:   MetricTemperature,
		Cond:     Condition{Kind: GreaterThan, A: 80},
		Severity: SeverityCritical,
		Filter:   GpuFilter{Kind: FilterIndex, Index: 1},
		Enabled:  true,
	}

	m := NewManager(DefaultManagerConfig(), []Rule{rule})
	device := mock.NewDevice(0, "Test GPU", "GPU-test")
	device.SetTemperature(95)

	firing := m.Evaluate(device, 0, 0, time.Now())
	assert.Empty(t, firing, "rule scoped to GPU index 1 must not fire for GPU index 0")
	assert.Empty(t, m.ActiveAlerts())
}

func TestManagerEvaluateSkipsDisabledRule(t *testing.T) {
	rule := Rule{
		ID:       "hot-gpu",
		Metric:   MetricTemperature,
		Cond:     Condition{Kind: GreaterThan, A: 80},
		Severity: SeverityCritical,
		Filter:   GpuFilter{Kind: FilterAll},
	}.Disabled()

	m := NewManager(DefaultManagerConfig(), []Rule{rule})
	device := mock.NewDevice(0, "Test GPU", "GPU-test")
	device.SetTemperature(95)

	firing := m.Evaluate(device, 0, 0, time.Now())
	assert.Empty(t, firing)
}

func TestManagerAcknowledgeAndSilence(t *testing.T) {
	rule := Rule{
		ID:       "hot-gpu",
		Metric:   MetricTemperature,
		Cond:     Condition{Kind: GreaterThan, A: 80},
		Severity: SeverityCritical,
		Filter:   GpuFilter{Kind: FilterAll},
		Enabled:  true,
	}

	m := NewManager(DefaultManagerConfig(), []Rule{rule})
	device := mock.NewDevice(0, "Test GPU", "GPU-test")
	device.SetTemperature(95)

	m.Evaluate(device, 0, 0, time.Now())

	ok := m.AcknowledgeAlert("hot-gpu", 0)
	require.True(t, ok)
	assert.Equal(t, StateAcknowledged, m.ActiveAlerts()[0].State)

	ok = m.SilenceAlert("hot-gpu", 0)
	require.True(t, ok)
	assert.Equal(t, StateSilenced, m.ActiveAlerts()[0].State)

	counts := m.CountBySeverity()
	assert.Zero(t, counts[SeverityCritical], "silenced alerts must not count toward the active severity histogram")
}

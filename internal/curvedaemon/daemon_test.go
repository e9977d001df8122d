package curvedaemon

import (
	"testing"
	"time"

	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu/mock"
	"github.com/mqasimca/nvctl/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCurve(t *testing.T) domain.FanCurve {
	t.Helper()

	s30, _ := domain.NewFanSpeed(30)
	s50, _ := domain.NewFanSpeed(50)
	s80, _ := domain.NewFanSpeed(80)
	s100, _ := domain.NewFanSpeed(100)

	curve, err := domain.NewFanCurve([]domain.FanCurvePoint{
		{TemperatureC: 40, Speed: s30},
		{TemperatureC: 60, Speed: s50},
		{TemperatureC: 75, Speed: s80},
		{TemperatureC: 85, Speed: s100},
	}, s30)
	require.NoError(t, err)

	return curve
}

func TestWriteElision(t *testing.T) {
	device := mock.NewDevice(0, "mock", "GPU-aaa")
	device.SetTemperature(70)
	mgr := mock.NewManager(device)

	state := NewState()
	key := Key{GpuIndex: 0, FanIndex: 0}
	state.SetCurve(key, testCurve(t), true)
	state.SetLastSpeed(key, 50) // target for 70C is 50, matching last applied

	log := logger.New(zerolog.Nop())
	d := New(mgr, state, log)

	before, err := device.FanSpeed(0)
	require.NoError(t, err)

	d.applyEntry(key, testCurve(t))

	after, err := device.FanSpeed(0)
	require.NoError(t, err)
	assert.Equal(t, before, after, "write-elision must skip the speed write when target == last applied")
}

func TestAutoToManualBeforeSpeedWrite(t *testing.T) {
	device := mock.NewDevice(0, "mock", "GPU-aaa")
	device.SetTemperature(80) // target speed 80, requires a change
	mgr := mock.NewManager(device)

	state := NewState()
	key := Key{GpuIndex: 0, FanIndex: 0}
	state.SetCurve(key, testCurve(t), true)

	log := logger.New(zerolog.Nop())
	d := New(mgr, state, log)
	d.applyEntry(key, testCurve(t))

	policy, err := device.FanPolicy(0)
	require.NoError(t, err)
	assert.Equal(t, domain.FanPolicyManual, policy)

	speed, err := device.FanSpeed(0)
	require.NoError(t, err)
	assert.Equal(t, 80, speed.Percentage())
}

func TestDaemonStartStopIsClean(t *testing.T) {
	device := mock.NewDevice(0, "mock", "GPU-aaa")
	mgr := mock.NewManager(device)
	state := NewState()
	log := logger.New(zerolog.Nop())

	d := New(mgr, state, log)
	d.Start()
	d.Start() // second Start is a no-op while already running
	time.Sleep(10 * time.Millisecond)
	d.Stop()
	d.Stop() // second Stop is a no-op
}

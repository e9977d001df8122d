package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/mqasimca/nvctl/internal/alert"
	"github.com/mqasimca/nvctl/internal/alert/notify"
	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu/mock"
	"github.com/mqasimca/nvctl/internal/health"
	"github.com/mqasimca/nvctl/internal/logger"
	"github.com/mqasimca/nvctl/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(manager *mock.Manager, power map[int]*PowerService) *Monitor {
	alertSvc := alert.NewService(alert.NewManager(alert.DefaultManagerConfig(), nil),
		notify.NewManager(), logger.Default())

	collector, _ := metrics.NewService(metrics.Config{Enabled: false}, logger.Default())

	return New(
		Config{Interval: time.Second, Retry: true, RetryInterval: time.Second},
		manager, alertSvc, health.DefaultCalculator(), power, collector, nil, logger.Default(),
	)
}

func TestTickRunsEveryDeviceConcurrently(t *testing.T) {
	d0 := mock.NewDevice(0, "GPU 0", "GPU-0")
	d1 := mock.NewDevice(1, "GPU 1", "GPU-1")
	manager := mock.NewManager(d0, d1)

	m := newTestMonitor(manager, nil)

	err := m.tick(context.Background())
	require.NoError(t, err)
}

func TestTickAppliesConfiguredPowerLimit(t *testing.T) {
	device := mock.NewDevice(0, "GPU 0", "GPU-0")
	manager := mock.NewManager(device)

	target, err := domain.PowerLimitFromWatts(200)
	require.NoError(t, err)

	power := map[int]*PowerService{
		0: NewPowerService(&target, false, logger.Default()),
	}

	m := newTestMonitor(manager, power)
	require.NoError(t, m.tick(context.Background()))

	limit, err := device.PowerLimit()
	require.NoError(t, err)
	assert.Equal(t, 200, limit.Watts())
}

func TestTickPerformanceModeSkipsPowerLimit(t *testing.T) {
	device := mock.NewDevice(0, "GPU 0", "GPU-0")
	manager := mock.NewManager(device)

	original, err := device.PowerLimit()
	require.NoError(t, err)

	target, err := domain.PowerLimitFromWatts(200)
	require.NoError(t, err)

	power := map[int]*PowerService{
		0: NewPowerService(&target, false, logger.Default()),
	}

	m := newTestMonitor(manager, power)
	m.cfg.Performance = true

	require.NoError(t, m.tick(context.Background()))

	limit, err := device.PowerLimit()
	require.NoError(t, err)
	assert.Equal(t, original.Watts(), limit.Watts(), "performance mode must leave the power limit untouched")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	device := mock.NewDevice(0, "GPU 0", "GPU-0")
	manager := mock.NewManager(device)

	m := newTestMonitor(manager, nil)
	m.cfg.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := m.Run(ctx)
	assert.NoError(t, err)
}

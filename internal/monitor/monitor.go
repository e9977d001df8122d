// Package monitor runs the control loop that ties device telemetry to the
// alert engine, the health calculator, power-limit enforcement, and metrics
// export. It shares its ticker cadence with nothing else in the process —
// the fan-curve daemon runs its own fixed 1000ms tick independently.
package monitor

import (
	"context"
	"time"

	"github.com/mqasimca/nvctl/internal/alert"
	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu"
	"github.com/mqasimca/nvctl/internal/health"
	"github.com/mqasimca/nvctl/internal/logger"
	"github.com/mqasimca/nvctl/internal/metrics"
	"github.com/mqasimca/nvctl/internal/metricsexport"
	"golang.org/x/sync/errgroup"
)

// Monitor orchestrates one control tick across every GPU the manager
// reports, fanning the per-GPU work out across goroutines bounded by GPU
// count and joined before the next tick starts.
type Monitor struct {
	cfg      Config
	manager  gpu.Manager
	alerts   *alert.Service
	health   health.Calculator
	power    map[int]*PowerService
	metrics  metrics.MetricsCollector
	exporter *metricsexport.Exporter
	log      logger.Logger

	startedAt time.Time
}

func New(
	cfg Config,
	manager gpu.Manager,
	alerts *alert.Service,
	calc health.Calculator,
	power map[int]*PowerService,
	collector metrics.MetricsCollector,
	exporter *metricsexport.Exporter,
	log logger.Logger,
) *Monitor {
	return &Monitor{
		cfg:       cfg,
		manager:   manager,
		alerts:    alerts,
		health:    calc,
		power:     power,
		metrics:   collector,
		exporter:  exporter,
		log:       log,
		startedAt: time.Now(),
	}
}

// Run blocks, ticking at cfg.Interval until ctx is canceled. A failed tick is
// logged and, when cfg.Retry is set, retried after cfg.RetryInterval instead
// of aborting the loop — matching the reference monitor's retry behavior.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.tick(ctx); err != nil {
				m.log.Error().Err(err).Msg("monitor: control tick failed")

				if !m.cfg.Retry {
					return err
				}

				time.Sleep(m.cfg.RetryInterval)
			}
		}
	}
}

// tick fans per-GPU work out across an errgroup, one goroutine per device,
// and joins them all before returning. tickDevice takes no context, so a
// slow or stuck device call holds up the join until that call returns.
func (m *Monitor) tick(ctx context.Context) error {
	devices, err := m.manager.AllDevices()
	if err != nil {
		return err
	}

	uptime := uint64(time.Since(m.startedAt).Seconds())

	group, _ := errgroup.WithContext(ctx)

	for _, device := range devices {
		device := device

		group.Go(func() error {
			m.tickDevice(device, uptime)
			return nil
		})
	}

	return group.Wait()
}

// tickDevice evaluates alerts, scores health, applies the configured power
// limit, exports Prometheus gauges, and records a history snapshot for one
// GPU. Per-category read failures degrade gracefully (see buildHealthParams)
// rather than aborting the whole device's tick.
func (m *Monitor) tickDevice(device gpu.Device, uptimeSeconds uint64) {
	index := device.Index()
	now := time.Now()

	name, err := device.Name()
	if err != nil {
		name = "unknown"
	}

	m.alerts.Evaluate(device, index, 0, now)

	params := buildHealthParams(device, uptimeSeconds)
	breakdown := m.health.Calculate(params)

	var appliedLimit *domain.PowerLimit

	if !m.cfg.Performance {
		if svc, ok := m.power[index]; ok {
			limit, err := svc.ApplyLimit(device)
			if err != nil {
				m.log.Warn().Err(err).Int("gpu", index).Msg("monitor: power limit application failed")
			} else {
				appliedLimit = limit
			}
		}
	}

	m.exportMetrics(device, index, name, breakdown, appliedLimit)
	m.recordHistory(index, breakdown)
}

func (m *Monitor) exportMetrics(
	device gpu.Device, index int, name string, breakdown health.Breakdown, appliedLimit *domain.PowerLimit,
) {
	if m.exporter == nil {
		return
	}

	if temp, err := device.Temperature(); err == nil {
		m.exporter.SetTemperature(index, name, temp.Celsius())
	}

	if count, err := device.FanCount(); err == nil {
		for fanIndex := 0; fanIndex < count; fanIndex++ {
			if speed, err := device.FanSpeed(fanIndex); err == nil {
				m.exporter.SetFanSpeed(index, name, fanIndex, speed.Percentage())
			}
		}
	}

	if usage, err := device.PowerUsage(); err == nil {
		m.exporter.SetPowerUsage(index, name, usage.Watts())
	}

	if appliedLimit != nil {
		m.exporter.SetPowerLimit(index, name, appliedLimit.Watts())
	} else if limit, err := device.PowerLimit(); err == nil {
		m.exporter.SetPowerLimit(index, name, limit.Watts())
	}

	if util, err := device.Utilization(); err == nil {
		m.exporter.SetUtilization(index, name, util.GpuPercent, util.MemoryPercent)
	}

	m.exporter.SetHealthScore(index, name, breakdown.Overall.Value())
	m.exporter.SetActiveAlerts(index, name, len(m.alerts.ActiveAlertsFor(index)))
}

func (m *Monitor) recordHistory(index int, breakdown health.Breakdown) {
	if m.metrics == nil || m.metrics.IsReadOnly() {
		return
	}

	snapshot := &metrics.MetricsSnapshot{
		Timestamp:    time.Now(),
		GpuIndex:     index,
		HealthScore:  int(breakdown.Overall.Value()),
		ActiveAlerts: len(m.alerts.ActiveAlertsFor(index)),
	}

	if err := m.metrics.Record(context.Background(), snapshot); err != nil {
		m.log.Warn().Err(err).Int("gpu", index).Msg("monitor: failed to record metrics snapshot")
	}
}

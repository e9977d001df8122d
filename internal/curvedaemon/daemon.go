package curvedaemon

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu"
	"github.com/mqasimca/nvctl/internal/logger"
)

// tickInterval is fixed by contract so fan behavior is predictable across
// platforms; it is not configurable.
const tickInterval = 1000 * time.Millisecond

// Daemon runs a single dedicated worker that keeps every enabled (gpu, fan)
// pair at its curve's prescribed speed. It does not restore Auto policy on
// stop — the surrounding controller owns that, so a crash in the worker
// can never silently change policy.
type Daemon struct {
	manager gpu.Manager
	state   *State
	log     logger.Logger

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	wg      sync.WaitGroup
}

func New(manager gpu.Manager, state *State, log logger.Logger) *Daemon {
	return &Daemon{manager: manager, state: state, log: log}
}

// Start spawns the worker goroutine. Calling Start on an already-running
// daemon is a no-op.
func (d *Daemon) Start() {
	if !d.running.CompareAndSwap(false, true) {
		return
	}

	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})

	d.wg.Add(1)

	go d.run()
}

// Stop clears the run flag and blocks until the worker observes it and
// returns. It does not issue any fan-policy writes; callers that need fans
// restored to Auto must do so themselves for each affected (gpu, fan).
func (d *Daemon) Stop() {
	if !d.running.CompareAndSwap(true, false) {
		return
	}

	close(d.stopCh)
	<-d.doneCh
	d.wg.Wait()
}

func (d *Daemon) run() {
	defer d.wg.Done()
	defer close(d.doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			if !d.running.Load() {
				return
			}

			d.tick()
		}
	}
}

// tick snapshots the enabled set under the table's read lock, releases it,
// then performs I/O per entry in (gpu, fan) order. Per-entry failures are
// logged and do not abort the tick — a single bad fan must not stop the
// controller from servicing the others.
func (d *Daemon) tick() {
	for _, ec := range d.state.EnabledCurves() {
		d.applyEntry(ec.Key, ec.Curve)
	}
}

func (d *Daemon) applyEntry(key Key, curve domain.FanCurve) {
	device, err := d.manager.DeviceByIndex(key.GpuIndex)
	if err != nil {
		d.log.Warn().Err(err).Int("gpu", key.GpuIndex).Msg("curve daemon: device lookup failed")
		return
	}

	temp, err := device.Temperature()
	if err != nil {
		d.log.Warn().Err(err).Int("gpu", key.GpuIndex).Msg("curve daemon: temperature read failed")
		return
	}

	target := curve.SpeedForTemperature(temp.Celsius())

	if last, ok := d.state.LastSpeed(key); ok && last == target.Percentage() {
		return // write elision: target unchanged since the last applied value
	}

	policy, err := device.FanPolicy(key.FanIndex)
	if err != nil {
		d.log.Warn().Err(err).Int("gpu", key.GpuIndex).Int("fan", key.FanIndex).
			Msg("curve daemon: fan policy read failed")
		return
	}

	if policy != domain.FanPolicyManual {
		if err := device.SetFanPolicy(key.FanIndex, domain.FanPolicyManual); err != nil {
			d.log.Warn().Err(err).Int("gpu", key.GpuIndex).Int("fan", key.FanIndex).
				Msg("curve daemon: failed to switch fan to manual control")
			return
		}
	}

	if err := device.SetFanSpeed(key.FanIndex, target); err != nil {
		d.log.Warn().Err(err).Int("gpu", key.GpuIndex).Int("fan", key.FanIndex).
			Msg("curve daemon: failed to set fan speed")
		return
	}

	d.state.SetLastSpeed(key, target.Percentage())
	d.log.Debug().Int("gpu", key.GpuIndex).Int("fan", key.FanIndex).
		Int32("temperature", temp.Celsius()).Int("speed", target.Percentage()).
		Msg("curve daemon: fan speed applied")
}

// RestoreAuto issues SetFanPolicy(Auto) for every (gpu, fan) in keys; it
// does not consult the table's enabled flags itself. Callers use this on
// shutdown or when disabling curve control entirely; the worker itself
// never calls it.
func RestoreAuto(manager gpu.Manager, keys []Key, log logger.Logger) {
	for _, k := range keys {
		device, err := manager.DeviceByIndex(k.GpuIndex)
		if err != nil {
			log.Warn().Err(err).Int("gpu", k.GpuIndex).Msg("curve daemon: device lookup failed during auto restore")
			continue
		}

		if err := device.SetFanPolicy(k.FanIndex, domain.FanPolicyAuto); err != nil {
			log.Warn().Err(err).Int("gpu", k.GpuIndex).Int("fan", k.FanIndex).
				Msg("curve daemon: failed to restore auto fan control")
		}
	}
}

// Package mock provides deterministic Device and Manager test doubles,
// grounded on the reference implementation's in-memory mock backend used to
// exercise the curve daemon, alert engine, and health calculator without
// real hardware.
package mock

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu"
)

// Device is a mutable, lock-protected mock of gpu.Device. Every field has a
// sensible default so a zero-value-ish Device (via NewDevice) behaves like a
// healthy, idle GPU unless the test overrides specific fields.
type Device struct {
	mu sync.RWMutex

	index   int
	name    string
	uuid    string
	fans    []domain.FanSpeed
	policy  []domain.FanPolicy
	temp    domain.Temperature
	thresholds domain.ThermalThresholds
	acoustic   domain.AcousticLimits
	power      domain.PowerLimit
	powerUsage domain.PowerLimit
	constraints domain.PowerConstraints
	utilization domain.Utilization
	memInfo     domain.MemoryInfo
	ecc         domain.EccErrors
	hasEcc      bool
	pcieStatus  domain.PcieLinkStatus
	pcieThroughput domain.PcieThroughput
	pcieReplay     domain.PcieReplayCounter
	throttle       domain.ThrottleReasons

	// NotSupported lets a test simulate an operation the device doesn't
	// support instead of wiring an error by hand.
	NotSupported map[string]bool
}

// NewDevice returns a Device with two fans, a 40°C reading, and a
// 100-400W/300W-default power envelope — a reasonable "nominal" baseline.
func NewDevice(index int, name, uuid string) *Device {
	minL, _ := domain.PowerLimitFromWatts(100)
	maxL, _ := domain.PowerLimitFromWatts(400)
	defL, _ := domain.PowerLimitFromWatts(300)
	constraints, _ := domain.NewPowerConstraints(minL, maxL, defL)

	speed, _ := domain.NewFanSpeed(30)

	return &Device{
		index:       index,
		name:        name,
		uuid:        uuid,
		fans:        []domain.FanSpeed{speed, speed},
		policy:      []domain.FanPolicy{domain.FanPolicyAuto, domain.FanPolicyAuto},
		temp:        40,
		power:       defL,
		powerUsage:  defL,
		constraints: constraints,
		memInfo:     domain.MemoryInfo{TotalBytes: 24 << 30, UsedBytes: 4 << 30, FreeBytes: 20 << 30},
		NotSupported: map[string]bool{},
	}
}

func (d *Device) Index() int { return d.index }

func (d *Device) Name() (string, error) { return d.name, nil }

func (d *Device) UUID() (string, error) { return d.uuid, nil }

func (d *Device) Info() (domain.GpuInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return domain.GpuInfo{Index: d.index, Name: d.name, UUID: d.uuid, FanCount: len(d.fans)}, nil
}

// SetTemperature overrides the reading returned by Temperature.
func (d *Device) SetTemperature(t domain.Temperature) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.temp = t
}

func (d *Device) Temperature() (domain.Temperature, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.temp, nil
}

func (d *Device) MemoryTemperature() (domain.Temperature, bool, error) {
	return 0, false, nil
}

func (d *Device) SetThermalThresholds(t domain.ThermalThresholds) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.thresholds = t
}

func (d *Device) ThermalThresholds() (domain.ThermalThresholds, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.thresholds, nil
}

func (d *Device) SetAcousticLimits(a domain.AcousticLimits) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acoustic = a
}

func (d *Device) AcousticLimits() (domain.AcousticLimits, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.acoustic, nil
}

func (d *Device) SetAcousticLimit(t domain.Temperature) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acoustic.Current = &t

	return nil
}

func (d *Device) FanCount() (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.fans), nil
}

func (d *Device) FanSpeed(fanIndex int) (domain.FanSpeed, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if fanIndex < 0 || fanIndex >= len(d.fans) {
		return domain.FanSpeed{}, fmt.Errorf("fan index %d out of range", fanIndex)
	}

	return d.fans[fanIndex], nil
}

func (d *Device) SetFanSpeed(fanIndex int, speed domain.FanSpeed) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if fanIndex < 0 || fanIndex >= len(d.fans) {
		return fmt.Errorf("fan index %d out of range", fanIndex)
	}

	d.fans[fanIndex] = speed
	d.policy[fanIndex] = domain.FanPolicyManual

	return nil
}

func (d *Device) FanPolicy(fanIndex int) (domain.FanPolicy, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if fanIndex < 0 || fanIndex >= len(d.policy) {
		return domain.FanPolicyAuto, fmt.Errorf("fan index %d out of range", fanIndex)
	}

	return d.policy[fanIndex], nil
}

func (d *Device) SetFanPolicy(fanIndex int, policy domain.FanPolicy) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if fanIndex < 0 || fanIndex >= len(d.policy) {
		return fmt.Errorf("fan index %d out of range", fanIndex)
	}

	d.policy[fanIndex] = policy

	return nil
}

// CoolerTarget mirrors the reference mock's deterministic mapping: the
// first fan cools the GPU die, the second the memory, anything beyond that
// the power supply.
func (d *Device) CoolerTarget(fanIndex int) (domain.CoolerTarget, error) {
	switch fanIndex {
	case 0:
		return domain.CoolerTargetGPU, nil
	case 1:
		return domain.CoolerTargetMemory, nil
	default:
		return domain.CoolerTargetPowerSupply, nil
	}
}

func (d *Device) PowerLimit() (domain.PowerLimit, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.power, nil
}

func (d *Device) PowerConstraints() (domain.PowerConstraints, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.constraints, nil
}

func (d *Device) SetPowerLimit(l domain.PowerLimit) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.constraints.Contains(l) {
		return fmt.Errorf("power limit %s outside constraints", l)
	}

	d.power = l

	return nil
}

func (d *Device) SetPowerUsage(l domain.PowerLimit) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.powerUsage = l
}

func (d *Device) PowerUsage() (domain.PowerLimit, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.powerUsage, nil
}

func (d *Device) SetUtilization(u domain.Utilization) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.utilization = u
}

func (d *Device) Utilization() (domain.Utilization, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.utilization, nil
}

func (d *Device) ClockSpeed(t domain.ClockType) (domain.ClockSpeed, error) {
	return domain.ClockSpeed{Type: t, MHz: 0}, nil
}

func (d *Device) SetEccErrors(e domain.EccErrors) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ecc = e
	d.hasEcc = true
}

func (d *Device) EccErrors() (domain.EccErrors, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.ecc, d.hasEcc, nil
}

func (d *Device) SetMemoryInfo(m domain.MemoryInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memInfo = m
}

func (d *Device) MemoryInfo() (domain.MemoryInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.memInfo, nil
}

func (d *Device) SetPcieLinkStatus(s domain.PcieLinkStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pcieStatus = s
}

func (d *Device) PcieLinkStatus() (domain.PcieLinkStatus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.pcieStatus, nil
}

func (d *Device) SetPcieThroughput(t domain.PcieThroughput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pcieThroughput = t
}

func (d *Device) PcieThroughput() (domain.PcieThroughput, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.pcieThroughput, nil
}

func (d *Device) SetPcieReplayCounter(c domain.PcieReplayCounter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pcieReplay = c
}

func (d *Device) PcieReplayCounter() (domain.PcieReplayCounter, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.pcieReplay, nil
}

func (d *Device) SetThrottleReasons(r domain.ThrottleReasons) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.throttle = r
}

func (d *Device) ThrottleReasons() (domain.ThrottleReasons, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.throttle, nil
}

// Manager is a mock gpu.Manager backed by an in-memory device list.
type Manager struct {
	mu      sync.RWMutex
	devices []*Device
}

func NewManager(devices ...*Device) *Manager {
	return &Manager{devices: devices}
}

func (m *Manager) DeviceCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.devices), nil
}

func (m *Manager) DeviceByIndex(index int) (gpu.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.devices {
		if d.index == index {
			return d, nil
		}
	}

	return nil, fmt.Errorf("device index %d not found", index)
}

func (m *Manager) DeviceByUUID(uuid string) (gpu.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.devices {
		if d.uuid == uuid {
			return d, nil
		}
	}

	return nil, fmt.Errorf("device uuid %q not found", uuid)
}

func (m *Manager) DeviceByName(substring string) (gpu.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(substring)

	for _, d := range m.devices {
		if strings.Contains(strings.ToLower(d.name), needle) {
			return d, nil
		}
	}

	return nil, fmt.Errorf("device matching %q not found", substring)
}

func (m *Manager) AllDevices() ([]gpu.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]gpu.Device, len(m.devices))
	for i, d := range m.devices {
		out[i] = d
	}

	return out, nil
}

func (m *Manager) DriverVersion() (string, error)  { return "mock-driver", nil }
func (m *Manager) LibraryVersion() (string, error) { return "mock-nvml", nil }
func (m *Manager) Shutdown() error                 { return nil }

package gpu

import "github.com/mqasimca/nvctl/internal/domain"

// Device exposes every per-GPU operation the control services and alert
// engine need. Each read returns a domain value or a typed error; each write
// is fallible. Implementations must be safe to call concurrently from
// different goroutines as long as each call obtains or already holds its own
// handle — see package-level docs on the real and mock backends.
type Device interface {
	Info() (domain.GpuInfo, error)
	Name() (string, error)
	UUID() (string, error)
	Index() int

	Temperature() (domain.Temperature, error)
	ThermalThresholds() (domain.ThermalThresholds, error)
	AcousticLimits() (domain.AcousticLimits, error)
	SetAcousticLimit(t domain.Temperature) error

	FanCount() (int, error)
	FanSpeed(fanIndex int) (domain.FanSpeed, error)
	SetFanSpeed(fanIndex int, speed domain.FanSpeed) error
	FanPolicy(fanIndex int) (domain.FanPolicy, error)
	SetFanPolicy(fanIndex int, policy domain.FanPolicy) error
	CoolerTarget(fanIndex int) (domain.CoolerTarget, error)

	PowerLimit() (domain.PowerLimit, error)
	PowerConstraints() (domain.PowerConstraints, error)
	SetPowerLimit(l domain.PowerLimit) error
	PowerUsage() (domain.PowerLimit, error)

	// Extended telemetry consumed by the alert engine and health calculator.
	MemoryTemperature() (domain.Temperature, bool, error)
	Utilization() (domain.Utilization, error)
	ClockSpeed(t domain.ClockType) (domain.ClockSpeed, error)
	EccErrors() (domain.EccErrors, bool, error)
	MemoryInfo() (domain.MemoryInfo, error)
	PcieLinkStatus() (domain.PcieLinkStatus, error)
	PcieThroughput() (domain.PcieThroughput, error)
	PcieReplayCounter() (domain.PcieReplayCounter, error)
	ThrottleReasons() (domain.ThrottleReasons, error)
}

// Manager owns device discovery and the vendor library's process-wide
// handle. It is shareable across goroutines: discovery and version queries
// never mutate.
type Manager interface {
	DeviceCount() (int, error)
	DeviceByIndex(index int) (Device, error)
	DeviceByUUID(uuid string) (Device, error)
	// DeviceByName performs a case-insensitive substring match against each
	// device's name; ties resolve to the lowest index.
	DeviceByName(substring string) (Device, error)
	AllDevices() ([]Device, error)
	DriverVersion() (string, error)
	LibraryVersion() (string, error)
	Shutdown() error
}

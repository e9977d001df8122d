package gpu

import (
	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlDevice is the real Device backend. Writes go through the handle
// obtained at construction rather than a cached, mutex-guarded copy of
// device state: the vendor library itself serializes access to a given
// handle, so the only shared-mutable state in the system is the curve
// daemon's table (see package curvedaemon), not the device.
type nvmlDevice struct {
	handle nvml.Device
	index  int
}

func newNVMLDevice(handle nvml.Device, index int) *nvmlDevice {
	return &nvmlDevice{handle: handle, index: index}
}

func (d *nvmlDevice) Index() int {
	return d.index
}

func (d *nvmlDevice) Name() (string, error) {
	name, ret := nvml.DeviceGetName(d.handle)
	if !IsNVMLSuccess(ret) {
		return "", errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return name, nil
}

func (d *nvmlDevice) UUID() (string, error) {
	uuid, ret := nvml.DeviceGetUUID(d.handle)
	if !IsNVMLSuccess(ret) {
		return "", errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return uuid, nil
}

func (d *nvmlDevice) Info() (domain.GpuInfo, error) {
	name, err := d.Name()
	if err != nil {
		return domain.GpuInfo{}, err
	}

	uuid, err := d.UUID()
	if err != nil {
		return domain.GpuInfo{}, err
	}

	fanCount, err := d.FanCount()
	if err != nil {
		fanCount = 0
	}

	info := domain.GpuInfo{Index: d.index, Name: name, UUID: uuid, FanCount: fanCount}

	if pci, ret := nvml.DeviceGetPciInfo(d.handle); IsNVMLSuccess(ret) {
		info.PciBusID = pciBusIDString(pci)
		info.HasPciInfo = true
	}

	if driverVer, ret := nvml.SystemGetDriverVersion(); IsNVMLSuccess(ret) {
		info.DriverVer = driverVer
		info.HasDriver = true
	}

	if vbios, ret := nvml.DeviceGetVbiosVersion(d.handle); IsNVMLSuccess(ret) {
		info.VbiosVer = vbios
		info.HasVbios = true
	}

	return info, nil
}

func (d *nvmlDevice) Temperature() (domain.Temperature, error) {
	celsius, ret := nvml.DeviceGetTemperature(d.handle, nvml.TEMPERATURE_GPU)
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrTemperatureReadFailed, newNVMLError(ret))
	}

	return domain.Temperature(celsius), nil
}

func (d *nvmlDevice) MemoryTemperature() (domain.Temperature, bool, error) {
	celsius, ret := nvml.DeviceGetTemperature(d.handle, nvml.TEMPERATURE_COUNT)
	if ret == nvml.ERROR_NOT_SUPPORTED {
		return 0, false, nil
	}

	if !IsNVMLSuccess(ret) {
		return 0, false, errors.New().Wrap(ErrTemperatureReadFailed, newNVMLError(ret))
	}

	return domain.Temperature(celsius), true, nil
}

func (d *nvmlDevice) ThermalThresholds() (domain.ThermalThresholds, error) {
	var thresholds domain.ThermalThresholds

	if t, ret := nvml.DeviceGetTemperatureThreshold(d.handle, nvml.TEMPERATURE_THRESHOLD_SHUTDOWN); IsNVMLSuccess(ret) {
		v := domain.Temperature(t)
		thresholds.Shutdown = &v
	}

	if t, ret := nvml.DeviceGetTemperatureThreshold(d.handle, nvml.TEMPERATURE_THRESHOLD_SLOWDOWN); IsNVMLSuccess(ret) {
		v := domain.Temperature(t)
		thresholds.Slowdown = &v
	}

	if t, ret := nvml.DeviceGetTemperatureThreshold(d.handle, nvml.TEMPERATURE_THRESHOLD_GPU_MAX); IsNVMLSuccess(ret) {
		v := domain.Temperature(t)
		thresholds.GpuMax = &v
	}

	return thresholds, nil
}

func (d *nvmlDevice) FanCount() (int, error) {
	count, ret := nvml.DeviceGetNumFans(d.handle)
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrFanCountFailed, newNVMLError(ret))
	}

	return count, nil
}

func (d *nvmlDevice) FanSpeed(fanIndex int) (domain.FanSpeed, error) {
	percent, ret := nvml.DeviceGetFanSpeed_v2(d.handle, fanIndex)
	if !IsNVMLSuccess(ret) {
		return domain.FanSpeed{}, errors.New().Wrap(ErrGetFanSpeedFailed, newNVMLError(ret))
	}

	speed, err := domain.NewFanSpeed(int(percent))
	if err != nil {
		return domain.FanSpeed{}, errors.New().Wrap(ErrGetFanSpeedFailed, err)
	}

	return speed, nil
}

func (d *nvmlDevice) SetFanSpeed(fanIndex int, speed domain.FanSpeed) error {
	ret := nvml.DeviceSetFanSpeed_v2(d.handle, fanIndex, speed.Percentage())
	if !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrSetFanSpeed, newNVMLError(ret))
	}

	return nil
}

func (d *nvmlDevice) FanPolicy(fanIndex int) (domain.FanPolicy, error) {
	policy, ret := nvml.DeviceGetFanControlPolicy_v2(d.handle, fanIndex)
	if !IsNVMLSuccess(ret) {
		return domain.FanPolicyAuto, errors.New().Wrap(ErrFanControlFailed, newNVMLError(ret))
	}

	if policy == nvml.FAN_POLICY_MANUAL {
		return domain.FanPolicyManual, nil
	}

	return domain.FanPolicyAuto, nil
}

func (d *nvmlDevice) SetFanPolicy(fanIndex int, policy domain.FanPolicy) error {
	if policy == domain.FanPolicyAuto {
		ret := nvml.DeviceSetDefaultFanSpeed_v2(d.handle, fanIndex)
		if !IsNVMLSuccess(ret) {
			return errors.New().Wrap(ErrEnableAutoFan, newNVMLError(ret))
		}

		return nil
	}

	ret := nvml.DeviceSetFanControlPolicy(d.handle, fanIndex, nvml.FAN_POLICY_MANUAL)
	if !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrDisableAutoFan, newNVMLError(ret))
	}

	return nil
}

// CoolerTarget reports which component a fan cools. The vendor library does
// not expose a per-fan cooler-target query on the consumer/prosumer card
// family this tool targets, so the real backend reports GPU for every fan;
// the mock backend implements the richer mapping used in tests.
func (d *nvmlDevice) CoolerTarget(_ int) (domain.CoolerTarget, error) {
	return domain.CoolerTargetGPU, nil
}

func (d *nvmlDevice) PowerLimit() (domain.PowerLimit, error) {
	milliwatts, ret := nvml.DeviceGetPowerManagementLimit(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.PowerLimit{}, errors.New().Wrap(ErrPowerLimitFailed, newNVMLError(ret))
	}

	limit, err := domain.NewPowerLimitMilliwatts(int(milliwatts))
	if err != nil {
		return domain.PowerLimit{}, errors.New().Wrap(ErrPowerLimitFailed, err)
	}

	return limit, nil
}

func (d *nvmlDevice) PowerConstraints() (domain.PowerConstraints, error) {
	minMw, maxMw, ret := nvml.DeviceGetPowerManagementLimitConstraints(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.PowerConstraints{}, errors.New().Wrap(ErrPowerLimitsFailed, newNVMLError(ret))
	}

	defaultMw, ret := nvml.DeviceGetPowerManagementDefaultLimit(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.PowerConstraints{}, errors.New().Wrap(ErrPowerLimitsFailed, newNVMLError(ret))
	}

	minL, _ := domain.NewPowerLimitMilliwatts(int(minMw))
	maxL, _ := domain.NewPowerLimitMilliwatts(int(maxMw))
	defL, _ := domain.NewPowerLimitMilliwatts(int(defaultMw))

	constraints, err := domain.NewPowerConstraints(minL, maxL, defL)
	if err != nil {
		return domain.PowerConstraints{}, errors.New().Wrap(ErrPowerLimitsFailed, err)
	}

	return constraints, nil
}

func (d *nvmlDevice) SetPowerLimit(l domain.PowerLimit) error {
	ret := nvml.DeviceSetPowerManagementLimit(d.handle, uint32(l.Milliwatts()))
	if !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrSetPowerLimit, newNVMLError(ret))
	}

	return nil
}

func (d *nvmlDevice) PowerUsage() (domain.PowerLimit, error) {
	milliwatts, ret := nvml.DeviceGetPowerUsage(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.PowerLimit{}, errors.New().Wrap(ErrPowerManagementFailed, newNVMLError(ret))
	}

	usage, err := domain.NewPowerLimitMilliwatts(int(milliwatts))
	if err != nil {
		return domain.PowerLimit{}, errors.New().Wrap(ErrPowerManagementFailed, err)
	}

	return usage, nil
}

func (d *nvmlDevice) Utilization() (domain.Utilization, error) {
	rates, ret := nvml.DeviceGetUtilizationRates(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.Utilization{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return domain.NewUtilization(int(rates.Gpu), int(rates.Memory)), nil
}

func (d *nvmlDevice) ClockSpeed(t domain.ClockType) (domain.ClockSpeed, error) {
	clockType := nvmlClockType(t)

	mhz, ret := nvml.DeviceGetClockInfo(d.handle, clockType)
	if !IsNVMLSuccess(ret) {
		return domain.ClockSpeed{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return domain.ClockSpeed{Type: t, MHz: int(mhz)}, nil
}

func (d *nvmlDevice) MemoryInfo() (domain.MemoryInfo, error) {
	info, ret := nvml.DeviceGetMemoryInfo(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.MemoryInfo{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return domain.MemoryInfo{TotalBytes: info.Total, UsedBytes: info.Used, FreeBytes: info.Free}, nil
}

func (d *nvmlDevice) EccErrors() (domain.EccErrors, bool, error) {
	correctableCurrent, ret := nvml.DeviceGetTotalEccErrors(d.handle, nvml.MEMORY_ERROR_TYPE_CORRECTED, nvml.VOLATILE_ECC)
	if ret == nvml.ERROR_NOT_SUPPORTED {
		return domain.EccErrors{}, false, nil
	}

	if !IsNVMLSuccess(ret) {
		return domain.EccErrors{}, false, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	uncorrectableCurrent, ret := nvml.DeviceGetTotalEccErrors(d.handle, nvml.MEMORY_ERROR_TYPE_UNCORRECTED, nvml.VOLATILE_ECC)
	if !IsNVMLSuccess(ret) {
		return domain.EccErrors{}, false, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	correctableLifetime, ret := nvml.DeviceGetTotalEccErrors(d.handle, nvml.MEMORY_ERROR_TYPE_CORRECTED, nvml.AGGREGATE_ECC)
	if !IsNVMLSuccess(ret) {
		return domain.EccErrors{}, false, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	uncorrectableLifetime, ret := nvml.DeviceGetTotalEccErrors(d.handle, nvml.MEMORY_ERROR_TYPE_UNCORRECTED, nvml.AGGREGATE_ECC)
	if !IsNVMLSuccess(ret) {
		return domain.EccErrors{}, false, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return domain.EccErrors{
		CorrectableCurrent:    correctableCurrent,
		CorrectableLifetime:   correctableLifetime,
		UncorrectableCurrent:  uncorrectableCurrent,
		UncorrectableLifetime: uncorrectableLifetime,
	}, true, nil
}

func (d *nvmlDevice) PcieLinkStatus() (domain.PcieLinkStatus, error) {
	currentGen, ret := nvml.DeviceGetCurrPcieLinkGeneration(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.PcieLinkStatus{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	maxGen, ret := nvml.DeviceGetMaxPcieLinkGeneration(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.PcieLinkStatus{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	currentWidthLanes, ret := nvml.DeviceGetCurrPcieLinkWidth(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.PcieLinkStatus{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	maxWidthLanes, ret := nvml.DeviceGetMaxPcieLinkWidth(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.PcieLinkStatus{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	currentWidth, err := domain.NewPcieLinkWidth(int(currentWidthLanes))
	if err != nil {
		return domain.PcieLinkStatus{}, errors.New().Wrap(ErrDeviceInfoFailed, err)
	}

	maxWidth, err := domain.NewPcieLinkWidth(int(maxWidthLanes))
	if err != nil {
		return domain.PcieLinkStatus{}, errors.New().Wrap(ErrDeviceInfoFailed, err)
	}

	return domain.PcieLinkStatus{
		CurrentGen:   domain.PcieGeneration(currentGen),
		MaxGen:       domain.PcieGeneration(maxGen),
		CurrentWidth: currentWidth,
		MaxWidth:     maxWidth,
	}, nil
}

func (d *nvmlDevice) PcieThroughput() (domain.PcieThroughput, error) {
	tx, ret := nvml.DeviceGetPcieThroughput(d.handle, nvml.PCIE_UTIL_TX_BYTES)
	if !IsNVMLSuccess(ret) {
		return domain.PcieThroughput{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	rx, ret := nvml.DeviceGetPcieThroughput(d.handle, nvml.PCIE_UTIL_RX_BYTES)
	if !IsNVMLSuccess(ret) {
		return domain.PcieThroughput{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	// NVML reports throughput in KB/s; convert to bytes/s.
	return domain.PcieThroughput{TxBytesPerSec: uint64(tx) * 1024, RxBytesPerSec: uint64(rx) * 1024}, nil
}

func (d *nvmlDevice) PcieReplayCounter() (domain.PcieReplayCounter, error) {
	count, ret := nvml.DeviceGetPcieReplayCounter(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.PcieReplayCounter{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return domain.NewPcieReplayCounter(uint64(count)), nil
}

func (d *nvmlDevice) ThrottleReasons() (domain.ThrottleReasons, error) {
	mask, ret := nvml.DeviceGetCurrentClocksThrottleReasons(d.handle)
	if !IsNVMLSuccess(ret) {
		return domain.ThrottleReasons{}, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return domain.ThrottleReasons{
		GpuIdle:              mask&nvml.ClocksThrottleReasonGpuIdle != 0,
		ApplicationsClocks:   mask&nvml.ClocksThrottleReasonApplicationsClocksSetting != 0,
		SwPowerCap:           mask&nvml.ClocksThrottleReasonSwPowerCap != 0,
		HwSlowdown:           mask&nvml.ClocksThrottleReasonHwSlowdown != 0,
		SyncBoost:            mask&nvml.ClocksThrottleReasonSyncBoost != 0,
		SwThermalSlowdown:    mask&nvml.ClocksThrottleReasonSwThermalSlowdown != 0,
		HwThermalSlowdown:    mask&nvml.ClocksThrottleReasonHwThermalSlowdown != 0,
		HwPowerBrakeSlowdown: mask&nvml.ClocksThrottleReasonHwPowerBrakeSlowdown != 0,
		DisplayClockSetting:  mask&nvml.ClocksThrottleReasonDisplayClockSetting != 0,
	}, nil
}

func nvmlClockType(t domain.ClockType) nvml.ClockType {
	switch t {
	case domain.ClockTypeMemory:
		return nvml.CLOCK_MEM
	case domain.ClockTypeSM:
		return nvml.CLOCK_SM
	case domain.ClockTypeVideo:
		return nvml.CLOCK_VIDEO
	default:
		return nvml.CLOCK_GRAPHICS
	}
}

func pciBusIDString(info nvml.PciInfo) string {
	b := make([]byte, 0, len(info.BusId))

	for _, c := range info.BusId {
		if c == 0 {
			break
		}

		b = append(b, byte(c))
	}

	return string(b)
}

package gpu

import (
	"strings"

	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlManager is the real Manager backend. It owns the process-wide NVML
// handle: one Init per manager, one guaranteed Shutdown on every exit path.
type nvmlManager struct {
	nvml nvmlController
}

// NewManager initializes NVML and returns a Manager backed by it.
func NewManager() (Manager, error) {
	w := &nvmlWrapper{}
	if err := w.Initialize(); err != nil {
		return nil, err
	}

	return &nvmlManager{nvml: w}, nil
}

func (m *nvmlManager) DeviceCount() (int, error) {
	return m.nvml.GetDeviceCount()
}

func (m *nvmlManager) DeviceByIndex(index int) (Device, error) {
	handle, err := m.nvml.GetDevice(index)
	if err != nil {
		return nil, err
	}

	return newNVMLDevice(handle, index), nil
}

func (m *nvmlManager) DeviceByUUID(uuid string) (Device, error) {
	handle, err := m.nvml.GetDeviceByUUID(uuid)
	if err != nil {
		return nil, err
	}

	index, ret := nvml.DeviceGetIndex(handle)
	if !IsNVMLSuccess(ret) {
		return nil, errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return newNVMLDevice(handle, index), nil
}

// DeviceByName performs a case-insensitive substring match; ties resolve to
// the lowest index since AllDevices enumerates in ascending index order and
// the first match wins.
func (m *nvmlManager) DeviceByName(substring string) (Device, error) {
	devices, err := m.AllDevices()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(substring)

	for _, d := range devices {
		name, err := d.Name()
		if err != nil {
			continue
		}

		if strings.Contains(strings.ToLower(name), needle) {
			return d, nil
		}
	}

	return nil, errors.New().WithData(ErrDeviceNotFoundByName, substring)
}

func (m *nvmlManager) AllDevices() ([]Device, error) {
	count, err := m.DeviceCount()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, count)

	for i := 0; i < count; i++ {
		d, err := m.DeviceByIndex(i)
		if err != nil {
			return nil, err
		}

		devices = append(devices, d)
	}

	return devices, nil
}

func (m *nvmlManager) DriverVersion() (string, error) {
	version, ret := nvml.SystemGetDriverVersion()
	if !IsNVMLSuccess(ret) {
		return "", errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return version, nil
}

func (m *nvmlManager) LibraryVersion() (string, error) {
	version, ret := nvml.SystemGetNVMLVersion()
	if !IsNVMLSuccess(ret) {
		return "", errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return version, nil
}

func (m *nvmlManager) Shutdown() error {
	return m.nvml.Shutdown()
}

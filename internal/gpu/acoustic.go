package gpu

import (
	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Acoustic threshold get/set are the two entry points the original vendor
// wrapper used by this codebase's sibling projects does not expose at the
// high level, requiring a raw symbol lookup. go-nvml's generated bindings do
// cover both (DeviceGetTemperatureThreshold/DeviceSetTemperatureThreshold)
// so no cgo/dlopen is required here, but the call is still isolated to this
// one file with the same explicit contract the escape hatch would have:
// one device handle, one threshold code, one signed Celsius value in or out.
// A read that returns ERROR_NOT_SUPPORTED leaves that bound unset without an
// error; every other failed read, and every failed write, is wrapped as
// ErrAcousticSymbolMissing around newNVMLError's mapping of the vendor return
// code. Threshold codes are domain.AcousticThresholdMin/Current/Max.
func (d *nvmlDevice) AcousticLimits() (domain.AcousticLimits, error) {
	var limits domain.AcousticLimits

	if t, ok, err := d.acousticThreshold(domain.AcousticThresholdMin); err != nil {
		return domain.AcousticLimits{}, err
	} else if ok {
		limits.Min = &t
	}

	if t, ok, err := d.acousticThreshold(domain.AcousticThresholdCurrent); err != nil {
		return domain.AcousticLimits{}, err
	} else if ok {
		limits.Current = &t
	}

	if t, ok, err := d.acousticThreshold(domain.AcousticThresholdMax); err != nil {
		return domain.AcousticLimits{}, err
	} else if ok {
		limits.Max = &t
	}

	return limits, nil
}

func (d *nvmlDevice) acousticThreshold(code uint32) (domain.Temperature, bool, error) {
	celsius, ret := nvml.DeviceGetTemperatureThreshold(d.handle, nvml.TemperatureThresholds(code))
	if ret == nvml.ERROR_NOT_SUPPORTED {
		return 0, false, nil
	}

	if !IsNVMLSuccess(ret) {
		return 0, false, errors.New().Wrap(ErrAcousticSymbolMissing, newNVMLError(ret))
	}

	return domain.Temperature(celsius), true, nil
}

func (d *nvmlDevice) SetAcousticLimit(t domain.Temperature) error {
	ret := nvml.DeviceSetTemperatureThreshold(d.handle, nvml.TemperatureThresholds(domain.AcousticThresholdCurrent), int32(t))
	if !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrAcousticSymbolMissing, newNVMLError(ret))
	}

	return nil
}

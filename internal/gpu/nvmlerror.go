package gpu

import (
	"fmt"

	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Error codes produced by mapping vendor library return codes, per the
// mapping table: not-supported, no-permission, not-found (by index or by
// UUID), GPU-lost, invalid-argument, and a catch-all unknown.
const (
	ErrNotSupported           = errors.ErrorCode("gpu_not_supported")
	ErrInsufficientPerms      = errors.ErrorCode("gpu_insufficient_permissions")
	ErrDeviceNotFoundByUUID   = errors.ErrorCode("gpu_device_not_found_by_uuid")
	ErrDeviceNotFoundByName   = errors.ErrorCode("gpu_device_not_found_by_name")
	ErrGpuLost                = errors.ErrorCode("gpu_lost")
	ErrInvalidArgumentNVML    = errors.ErrorCode("gpu_invalid_argument")
	ErrUnknownNVML            = errors.ErrorCode("gpu_unknown_nvml_error")
	ErrAcousticSymbolMissing  = errors.ErrorCode("gpu_acoustic_symbol_missing")
)

// IsNVMLSuccess reports whether ret is the NVML success code. This is
// distinct from errors.IsNVMLSuccess, which inspects a wrapped Go error by
// message; this one inspects the raw nvml.Return the bindings hand back.
func IsNVMLSuccess(ret nvml.Return) bool {
	return ret == nvml.SUCCESS
}

// newNVMLError maps an NVML return code to a typed, actionable error
// following the mapping table: ERROR_NOT_SUPPORTED -> NotSupported,
// ERROR_NO_PERMISSION -> InsufficientPermissions (with a hint), NOT_FOUND ->
// DeviceNotFound, GPU_IS_LOST -> GpuLost, INVALID_ARGUMENT -> InvalidArgument,
// anything else -> Unknown(detail).
func newNVMLError(ret nvml.Return) error {
	errFactory := errors.New()
	detail := nvml.ErrorString(ret)

	switch ret {
	case nvml.ERROR_NOT_SUPPORTED:
		return errFactory.WithData(ErrNotSupported, detail)
	case nvml.ERROR_NO_PERMISSION:
		return errFactory.WithData(ErrInsufficientPerms,
			fmt.Sprintf("%s (retry with elevated privileges or add the user to the video/render group)", detail))
	case nvml.ERROR_NOT_FOUND:
		return errFactory.WithData(ErrDeviceNotFound, detail)
	case nvml.ERROR_GPU_IS_LOST:
		return errFactory.WithData(ErrGpuLost, fmt.Sprintf("%s (check the driver and physical connection)", detail))
	case nvml.ERROR_INVALID_ARGUMENT:
		return errFactory.WithData(ErrInvalidArgumentNVML, detail)
	default:
		return errFactory.WithData(ErrUnknownNVML, detail)
	}
}

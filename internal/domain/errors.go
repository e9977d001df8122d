package domain

import "github.com/mqasimca/nvctl/internal/errors"

// Validation error codes for domain value types. Grouped the way internal/gpu/errors.go
// groups device errors: one constant per construction failure.
const (
	ErrInvalidFanSpeed     = errors.ErrorCode("domain_invalid_fan_speed")
	ErrEmptyFanCurve       = errors.ErrorCode("domain_empty_fan_curve")
	ErrUnsortedFanCurve    = errors.ErrorCode("domain_unsorted_fan_curve")
	ErrInvalidPowerLimit   = errors.ErrorCode("domain_invalid_power_limit")
	ErrInvalidConstraints  = errors.ErrorCode("domain_invalid_power_constraints")
	ErrInvalidLinkWidth    = errors.ErrorCode("domain_invalid_link_width")
	ErrInvalidAcousticTemp = errors.ErrorCode("domain_invalid_acoustic_temperature")
)

package alert

import "github.com/mqasimca/nvctl/internal/errors"

const (
	ErrUnknownMetric   = errors.ErrorCode("alert_unknown_metric")
	ErrUnknownSeverity = errors.ErrorCode("alert_unknown_severity")
	ErrUnknownFilter   = errors.ErrorCode("alert_unknown_gpu_filter")
	ErrInvalidRule     = errors.ErrorCode("alert_invalid_rule")
)

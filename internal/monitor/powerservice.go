package monitor

import (
	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu"
	"github.com/mqasimca/nvctl/internal/logger"
)

// PowerService applies one configured target power limit to a device per
// tick, validating it against the device's reported constraints first.
// targetLimit is nil when no explicit limit was configured — ApplyLimit is
// then a no-op, matching the reference implementation's Option<PowerLimit>.
type PowerService struct {
	targetLimit *domain.PowerLimit
	dryRun      bool
	log         logger.Logger
}

func NewPowerService(targetLimit *domain.PowerLimit, dryRun bool, log logger.Logger) *PowerService {
	return &PowerService{targetLimit: targetLimit, dryRun: dryRun, log: log}
}

// ApplyLimit validates and, unless dry-run, writes the configured power
// limit to device. It returns the limit that was (or would have been)
// applied, or nil if none is configured.
func (s *PowerService) ApplyLimit(device gpu.Device) (*domain.PowerLimit, error) {
	if s.targetLimit == nil {
		return nil, nil
	}

	constraints, err := device.PowerConstraints()
	if err != nil {
		return nil, err
	}

	if err := constraints.Validate(*s.targetLimit); err != nil {
		return nil, err
	}

	if s.dryRun {
		s.log.Debug().Str("limit", s.targetLimit.String()).Msg("monitor: dry run, power limit not applied")
		return s.targetLimit, nil
	}

	if err := device.SetPowerLimit(*s.targetLimit); err != nil {
		return nil, err
	}

	s.log.Debug().Str("limit", s.targetLimit.String()).Msg("monitor: power limit applied")

	return s.targetLimit, nil
}

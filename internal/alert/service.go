package alert

import (
	"time"

	"github.com/mqasimca/nvctl/internal/alert/notify"
	"github.com/mqasimca/nvctl/internal/gpu"
	"github.com/mqasimca/nvctl/internal/logger"
)

// Service wires a Manager to a notification fan-out. It is the unit the
// monitor loop calls once per tick per GPU; all dispatch-failure handling
// lives here so the Manager stays a pure rule evaluator.
type Service struct {
	manager  *Manager
	notifier *notify.Manager
	log      logger.Logger
}

func NewService(manager *Manager, notifier *notify.Manager, log logger.Logger) *Service {
	return &Service{manager: manager, notifier: notifier, log: log}
}

// Evaluate runs the manager against device and dispatches any newly firing
// alerts. A channel failure is logged and does not abort dispatch to the
// remaining channels or to the remaining alerts.
func (s *Service) Evaluate(device gpu.Device, gpuIndex, fanIndex int, now time.Time) {
	firing := s.manager.Evaluate(device, gpuIndex, fanIndex, now)

	for _, a := range firing {
		for _, chErr := range s.notifier.NotifyAll(a) {
			s.log.Warn().Err(chErr.Err).Str("channel", chErr.Channel).Str("alert_id", a.ID).
				Msg("alert: notification channel failed")
		}
	}
}

// ActiveAlertsFor returns the currently active alerts scoped to one GPU
// index, for callers (metrics export, history recording) that need a
// per-device count rather than the process-wide active set.
func (s *Service) ActiveAlertsFor(gpuIndex int) []Alert {
	all := s.manager.ActiveAlerts()
	out := make([]Alert, 0, len(all))

	for _, a := range all {
		if a.GpuIndex == gpuIndex {
			out = append(out, a)
		}
	}

	return out
}

package alert

import (
	"strconv"
	"sync"
	"time"

	"github.com/mqasimca/nvctl/internal/gpu"
	"github.com/google/uuid"
)

// ManagerConfig controls whether the manager evaluates rules at all, how
// often (informational — the caller owns the ticking), and how much
// resolved-alert history to retain.
type ManagerConfig struct {
	Enabled       bool
	CheckInterval time.Duration
	MaxHistory    int
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{Enabled: true, CheckInterval: 5 * time.Second, MaxHistory: 1000}
}

// Manager holds a rule set, the currently active alerts keyed by
// "ruleID-gpuIndex", and a bounded FIFO history of resolved alerts.
type Manager struct {
	mu      sync.Mutex
	rules   []Rule
	active  map[string]*Alert
	history []Alert
	cfg     ManagerConfig
}

func NewManager(cfg ManagerConfig, rules []Rule) *Manager {
	return &Manager{
		rules:  rules,
		active: make(map[string]*Alert),
		cfg:    cfg,
	}
}

func (m *Manager) SetRules(rules []Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = rules
}

func activeKey(ruleID string, gpuIndex int) string {
	return ruleID + "-" + strconv.Itoa(gpuIndex)
}

// Evaluate runs every rule against device for gpuIndex at time now, returning
// the alerts that transitioned to Firing on this call (callers dispatch
// these to notification channels). It is a no-op when the manager is
// disabled. fanIndex is used only by the fan_speed metric, matching the
// reference engine's hardcoded single-fan extraction.
func (m *Manager) Evaluate(device gpu.Device, gpuIndex, fanIndex int, now time.Time) []Alert {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	rules := make([]Rule, len(m.rules))
	copy(rules, m.rules)
	m.mu.Unlock()

	var firing []Alert

	for _, rule := range rules {
		if !rule.Enabled || !rule.Filter.Matches(gpuIndex) {
			continue
		}

		value, ok := extractMetricValue(device, fanIndex, rule.Metric)
		if !ok {
			continue
		}

		key := activeKey(rule.ID, gpuIndex)
		holds := rule.Evaluate(value)

		m.mu.Lock()
		existing, isActive := m.active[key]

		switch {
		case holds && isActive:
			existing.UpdateValue(value)
			if existing.ShouldFire(rule, now) {
				existing.Fire(now)
				firing = append(firing, *existing)
			}

		case holds && !isActive:
			a := &Alert{
				ID:             rule.ID + "-" + uuid.NewString(),
				RuleID:         rule.ID,
				GpuIndex:       gpuIndex,
				StartedAt:      now,
				Severity:       rule.Severity,
				Metric:         rule.Metric,
				CurrentValue:   value,
				ThresholdValue: rule.Cond.ThresholdValue(),
				Message:        newPendingMessage(rule, value),
				State:          StatePending,
			}

			if a.ShouldFire(rule, now) {
				a.Fire(now)
				firing = append(firing, *a)
			}

			m.active[key] = a

		case !holds && isActive:
			wasFiring := existing.State == StateFiring || existing.State == StateAcknowledged
			delete(m.active, key)

			if wasFiring {
				existing.Resolve(now)
				m.addToHistory(*existing)
			}
		}

		m.mu.Unlock()
	}

	return firing
}

// addToHistory must be called with m.mu held.
func (m *Manager) addToHistory(a Alert) {
	m.history = append(m.history, a)

	if len(m.history) > m.cfg.MaxHistory {
		m.history = m.history[len(m.history)-m.cfg.MaxHistory:]
	}
}

func (m *Manager) History() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Alert, len(m.history))
	copy(out, m.history)

	return out
}

func (m *Manager) ActiveAlerts() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Alert, 0, len(m.active))
	for _, a := range m.active {
		out = append(out, *a)
	}

	return out
}

func (m *Manager) AcknowledgeAlert(ruleID string, gpuIndex int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.active[activeKey(ruleID, gpuIndex)]
	if !ok {
		return false
	}

	a.Acknowledge()

	return true
}

func (m *Manager) SilenceAlert(ruleID string, gpuIndex int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.active[activeKey(ruleID, gpuIndex)]
	if !ok {
		return false
	}

	a.Silence()

	return true
}

func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = make(map[string]*Alert)
}

// CountBySeverity counts only alerts in Firing or Acknowledged state —
// Pending, Resolved, and Silenced alerts don't count toward the active
// severity histogram.
func (m *Manager) CountBySeverity() map[Severity]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[Severity]int)

	for _, a := range m.active {
		if a.State == StateFiring || a.State == StateAcknowledged {
			counts[a.Severity]++
		}
	}

	return counts
}

package config

import (
	"os"
	"time"

	"github.com/mqasimca/nvctl/internal/alert"
	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/spf13/viper"
)

// alertRuleDoc mirrors a [[rules]] table in the alert rules TOML document.
type alertRuleDoc struct {
	ID         string `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	Metric     string `mapstructure:"metric"`
	Condition  string `mapstructure:"condition"`
	Threshold  float64 `mapstructure:"threshold"`
	RangeLow   float64 `mapstructure:"range_low"`
	RangeHigh  float64 `mapstructure:"range_high"`
	Severity   string `mapstructure:"severity"`
	DurationS  int     `mapstructure:"duration_seconds"`
	GpuIndices []int   `mapstructure:"gpu_indices"`
	Enabled    bool    `mapstructure:"enabled"`
}

type alertRulesDoc struct {
	Rules []alertRuleDoc `mapstructure:"rules"`
}

// LoadAlertRules reads the TOML document at path and decodes it into
// alert.Rule values. A missing file (or an empty path, which names no file)
// is not an error: it yields an empty rule set, matching loadConfigFile's
// "use defaults" fallback for the main config.
func LoadAlertRules(path string) ([]alert.Rule, error) {
	errFactory := errors.New()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	var doc alertRulesDoc
	if err := v.Unmarshal(&doc); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	rules := make([]alert.Rule, 0, len(doc.Rules))
	for _, d := range doc.Rules {
		rule, err := toAlertRule(d)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

func toAlertRule(d alertRuleDoc) (alert.Rule, error) {
	errFactory := errors.New()

	metric, ok := parseMetricType(d.Metric)
	if !ok {
		return alert.Rule{}, errFactory.WithData(errors.ErrInvalidConfig, "unknown metric: "+d.Metric)
	}

	cond, err := parseCondition(d)
	if err != nil {
		return alert.Rule{}, err
	}

	severity, ok := parseSeverity(d.Severity)
	if !ok {
		return alert.Rule{}, errFactory.WithData(errors.ErrInvalidConfig, "unknown severity: "+d.Severity)
	}

	rule := alert.Rule{
		ID:       d.ID,
		Name:     d.Name,
		Metric:   metric,
		Cond:     cond,
		Severity: severity,
		Filter:   parseGpuFilter(d.GpuIndices),
		Enabled:  d.Enabled,
	}

	if d.DurationS > 0 {
		rule = rule.WithDuration(time.Duration(d.DurationS) * time.Second)
	}

	return rule, nil
}

func parseCondition(d alertRuleDoc) (alert.Condition, error) {
	switch d.Condition {
	case "greater_than", "":
		return alert.Condition{Kind: alert.GreaterThan, A: d.Threshold}, nil
	case "less_than":
		return alert.Condition{Kind: alert.LessThan, A: d.Threshold}, nil
	case "equals":
		return alert.Condition{Kind: alert.Equals, A: d.Threshold}, nil
	case "in_range":
		return alert.Condition{Kind: alert.InRange, A: d.RangeLow, B: d.RangeHigh}, nil
	case "outside_range":
		return alert.Condition{Kind: alert.OutsideRange, A: d.RangeLow, B: d.RangeHigh}, nil
	default:
		return alert.Condition{}, errors.New().WithData(errors.ErrInvalidConfig, "unknown condition: "+d.Condition)
	}
}

func parseMetricType(s string) (alert.MetricType, bool) {
	switch s {
	case "temperature":
		return alert.MetricTemperature, true
	case "memory_temperature":
		return alert.MetricMemoryTemperature, true
	case "power_usage":
		return alert.MetricPowerUsage, true
	case "power_percent":
		return alert.MetricPowerPercent, true
	case "gpu_utilization":
		return alert.MetricGpuUtilization, true
	case "memory_utilization":
		return alert.MetricMemoryUtilization, true
	case "fan_speed":
		return alert.MetricFanSpeed, true
	case "clock_speed":
		return alert.MetricClockSpeed, true
	case "ecc_correctable_errors":
		return alert.MetricEccCorrectableErrors, true
	case "ecc_uncorrectable_errors":
		return alert.MetricEccUncorrectableErrors, true
	case "pcie_throughput":
		return alert.MetricPcieThroughput, true
	case "pcie_replay_counter":
		return alert.MetricPcieReplayCounter, true
	default:
		return 0, false
	}
}

func parseSeverity(s string) (alert.Severity, bool) {
	switch s {
	case "info":
		return alert.SeverityInfo, true
	case "warning":
		return alert.SeverityWarning, true
	case "critical":
		return alert.SeverityCritical, true
	case "emergency":
		return alert.SeverityEmergency, true
	default:
		return 0, false
	}
}

func parseGpuFilter(indices []int) alert.GpuFilter {
	switch len(indices) {
	case 0:
		return alert.GpuFilter{Kind: alert.FilterAll}
	case 1:
		return alert.GpuFilter{Kind: alert.FilterIndex, Index: indices[0]}
	default:
		return alert.GpuFilter{Kind: alert.FilterIndices, Indices: indices}
	}
}

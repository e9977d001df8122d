package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mqasimca/nvctl/internal/alert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestLoadAlertRulesMissingFileYieldsEmptySet(t *testing.T) {
	rules, err := LoadAlertRules(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadAlertRulesParsesSustainedThresholdRule(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "alerts.toml", `
[[rules]]
id = "hot-gpu"
name = "GPU too hot"
metric = "temperature"
condition = "greater_than"
threshold = 85
severity = "critical"
duration_seconds = 30
enabled = true
`)

	rules, err := LoadAlertRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	rule := rules[0]
	assert.Equal(t, "hot-gpu", rule.ID)
	assert.Equal(t, alert.MetricTemperature, rule.Metric)
	assert.Equal(t, alert.GreaterThan, rule.Cond.Kind)
	assert.Equal(t, 85.0, rule.Cond.A)
	assert.Equal(t, alert.SeverityCritical, rule.Severity)
	assert.Equal(t, alert.FilterAll, rule.Filter.Kind)
	assert.True(t, rule.Enabled)
}

func TestLoadAlertRulesParsesGpuIndexFilters(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "alerts.toml", `
[[rules]]
id = "single-gpu"
name = "Single GPU rule"
metric = "power_usage"
condition = "in_range"
range_low = 100
range_high = 200
severity = "warning"
gpu_indices = [1]
enabled = true

[[rules]]
id = "multi-gpu"
name = "Multi GPU rule"
metric = "fan_speed"
condition = "less_than"
threshold = 10
severity = "info"
gpu_indices = [0, 2]
enabled = true
`)

	rules, err := LoadAlertRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, alert.FilterIndex, rules[0].Filter.Kind)
	assert.Equal(t, 1, rules[0].Filter.Index)
	assert.Equal(t, alert.InRange, rules[0].Cond.Kind)
	assert.Equal(t, 100.0, rules[0].Cond.A)
	assert.Equal(t, 200.0, rules[0].Cond.B)

	assert.Equal(t, alert.FilterIndices, rules[1].Filter.Kind)
	assert.Equal(t, []int{0, 2}, rules[1].Filter.Indices)
}

func TestLoadAlertRulesRejectsUnknownMetric(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "alerts.toml", `
[[rules]]
id = "bad"
name = "Bad rule"
metric = "not_a_real_metric"
condition = "greater_than"
threshold = 1
severity = "info"
enabled = true
`)

	_, err := LoadAlertRules(path)
	assert.Error(t, err)
}

package health

import (
	"testing"

	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWatts(t *testing.T, w int) domain.PowerLimit {
	t.Helper()

	l, err := domain.PowerLimitFromWatts(w)
	require.NoError(t, err)

	return l
}

func TestScoreStatusBands(t *testing.T) {
	assert.Equal(t, StatusExcellent, NewScore(95).Status())
	assert.Equal(t, StatusGood, NewScore(80).Status())
	assert.Equal(t, StatusFair, NewScore(60).Status())
	assert.Equal(t, StatusPoor, NewScore(30).Status())
	assert.Equal(t, StatusCritical, NewScore(10).Status())
}

func TestCalculateHealthyGpu(t *testing.T) {
	calc := DefaultCalculator()

	params := Params{
		Temperature:    65,
		PowerUsage:     mustWatts(t, 150),
		PowerLimit:     mustWatts(t, 250),
		HasVramUsage:   true,
		VramUsageRatio: 0.5,
		UptimeSeconds:  3600,
	}

	breakdown := calc.Calculate(params)
	assert.GreaterOrEqual(t, breakdown.Overall.Value(), uint8(90))
	assert.Equal(t, StatusExcellent, breakdown.Overall.Status())
}

func TestCalculateThrottlingGpuDegradesScore(t *testing.T) {
	calc := DefaultCalculator()

	params := Params{
		Temperature:         88,
		PowerUsage:          mustWatts(t, 240),
		PowerLimit:          mustWatts(t, 250),
		IsThermalThrottling: true,
		HasVramUsage:        true,
		VramUsageRatio:      0.7,
		UptimeSeconds:       3600,
	}

	breakdown := calc.Calculate(params)
	assert.Less(t, breakdown.Overall.Value(), uint8(70))
	assert.NotEmpty(t, breakdown.Issues)
}

func TestCalculateUncorrectableEccIsCriticalMemoryFailure(t *testing.T) {
	calc := DefaultCalculator()

	params := Params{
		Temperature:    65,
		PowerUsage:     mustWatts(t, 150),
		PowerLimit:     mustWatts(t, 250),
		HasEcc:         true,
		EccErrors:      domain.EccErrors{UncorrectableCurrent: 1, UncorrectableLifetime: 1},
		HasVramUsage:   true,
		VramUsageRatio: 0.5,
		UptimeSeconds:  3600,
	}

	breakdown := calc.Calculate(params)
	assert.Zero(t, breakdown.Memory.Value(), "uncorrectable ECC errors must zero the memory score")

	hasCritical := false

	for _, issue := range breakdown.Issues {
		if issue.Severity == IssueCritical {
			hasCritical = true
		}
	}

	assert.True(t, hasCritical, "uncorrectable ECC errors must raise a critical issue")
}

func TestNewCalculatorRejectsWeightsNotSummingToOne(t *testing.T) {
	_, err := NewCalculator(0.5, 0.5, 0.5, 0, 0)
	assert.Error(t, err)

	_, err = NewCalculator(0.30, 0.20, 0.25, 0.15, 0.10)
	assert.NoError(t, err)
}

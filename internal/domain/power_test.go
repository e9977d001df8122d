package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerConstraintsContains(t *testing.T) {
	minL, _ := PowerLimitFromWatts(100)
	maxL, _ := PowerLimitFromWatts(400)
	defL, _ := PowerLimitFromWatts(300)

	constraints, err := NewPowerConstraints(minL, maxL, defL)
	require.NoError(t, err)

	over, _ := PowerLimitFromWatts(500)
	assert.False(t, constraints.Contains(over))

	err = constraints.Validate(over)
	require.Error(t, err)

	within, _ := PowerLimitFromWatts(250)
	assert.True(t, constraints.Contains(within))
	assert.NoError(t, constraints.Validate(within))
}

func TestPowerConstraintsRejectInvertedRange(t *testing.T) {
	minL, _ := PowerLimitFromWatts(400)
	maxL, _ := PowerLimitFromWatts(100)
	defL, _ := PowerLimitFromWatts(300)

	_, err := NewPowerConstraints(minL, maxL, defL)
	assert.Error(t, err)
}

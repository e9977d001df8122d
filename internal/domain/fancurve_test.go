package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSpeed(t *testing.T, pct int) FanSpeed {
	t.Helper()

	s, err := NewFanSpeed(pct)
	require.NoError(t, err)

	return s
}

func TestFanSpeedBounds(t *testing.T) {
	_, err := NewFanSpeed(101)
	assert.Error(t, err)

	s, err := NewFanSpeed(100)
	require.NoError(t, err)
	assert.Equal(t, 100, s.Percentage())
	assert.InDelta(t, 1.0, s.AsFraction(), 0.0001)
}

func TestEmptyFanCurveFails(t *testing.T) {
	_, err := NewFanCurve(nil, mustSpeed(t, 30))
	assert.Error(t, err)
}

func TestFanCurveSpeedForTemperature(t *testing.T) {
	curve, err := NewFanCurve([]FanCurvePoint{
		{TemperatureC: 40, Speed: mustSpeed(t, 30)},
		{TemperatureC: 60, Speed: mustSpeed(t, 50)},
		{TemperatureC: 75, Speed: mustSpeed(t, 80)},
		{TemperatureC: 85, Speed: mustSpeed(t, 100)},
	}, mustSpeed(t, 30))
	require.NoError(t, err)

	assert.Equal(t, 80, curve.SpeedForTemperature(75).Percentage())
	assert.Equal(t, 30, curve.SpeedForTemperature(30).Percentage())
	assert.Equal(t, 100, curve.SpeedForTemperature(95).Percentage())
}

func TestFanCurveRejectsUnsortedPoints(t *testing.T) {
	_, err := NewFanCurve([]FanCurvePoint{
		{TemperatureC: 60, Speed: mustSpeed(t, 50)},
		{TemperatureC: 40, Speed: mustSpeed(t, 30)},
	}, mustSpeed(t, 30))
	assert.Error(t, err)
}

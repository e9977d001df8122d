package domain

import (
	"fmt"
	"sort"

	"github.com/mqasimca/nvctl/internal/errors"
)

// FanCurvePoint is a single (temperature, speed) step on a fan curve.
type FanCurvePoint struct {
	TemperatureC int32
	Speed        FanSpeed
}

// FanCurve is a non-empty, temperature-ascending sequence of points plus a
// default speed used below the first point.
type FanCurve struct {
	points  []FanCurvePoint
	Default FanSpeed
}

// NewFanCurve validates points and returns a FanCurve. Points must be
// non-empty and sorted ascending by temperature; the slice is copied so the
// caller's backing array can be reused or mutated afterward.
func NewFanCurve(points []FanCurvePoint, defaultSpeed FanSpeed) (FanCurve, error) {
	if len(points) == 0 {
		return FanCurve{}, errors.New().New(ErrEmptyFanCurve)
	}

	for i := 1; i < len(points); i++ {
		if points[i].TemperatureC < points[i-1].TemperatureC {
			return FanCurve{}, errors.New().WithData(ErrUnsortedFanCurve,
				fmt.Sprintf("point %d (%d°C) precedes point %d (%d°C)",
					i, points[i].TemperatureC, i-1, points[i-1].TemperatureC))
		}
	}

	copied := make([]FanCurvePoint, len(points))
	copy(copied, points)

	return FanCurve{points: copied, Default: defaultSpeed}, nil
}

// Points returns the curve's points in ascending temperature order.
func (c FanCurve) Points() []FanCurvePoint {
	return c.points
}

// SpeedForTemperature returns the highest point's speed whose temperature is
// ≤ t, or the curve's default speed if t is below the first point. This is a
// step function, not an interpolation.
func (c FanCurve) SpeedForTemperature(t int32) FanSpeed {
	idx := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].TemperatureC > t
	})

	if idx == 0 {
		return c.Default
	}

	return c.points[idx-1].Speed
}

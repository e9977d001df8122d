package domain

import (
	"fmt"

	"github.com/mqasimca/nvctl/internal/errors"
)

// FanSpeed is a validated fan speed percentage in [0,100].
type FanSpeed struct {
	percent int
}

// NewFanSpeed validates percent and returns a FanSpeed, or a domain error if
// percent is outside [0,100]. There is no clamping constructor: callers that
// ingest untrusted readings must clamp explicitly before calling this.
func NewFanSpeed(percent int) (FanSpeed, error) {
	if percent < 0 || percent > 100 {
		return FanSpeed{}, errors.New().WithData(ErrInvalidFanSpeed, fmt.Sprintf("value=%d valid=[0,100]", percent))
	}

	return FanSpeed{percent: percent}, nil
}

// Percentage returns the speed as an integer percentage.
func (s FanSpeed) Percentage() int {
	return s.percent
}

// AsFraction returns the speed as a value in [0.0,1.0].
func (s FanSpeed) AsFraction() float64 {
	return float64(s.percent) / 100.0
}

func (s FanSpeed) String() string {
	return fmt.Sprintf("%d%%", s.percent)
}

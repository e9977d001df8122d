package domain

import (
	"fmt"

	"github.com/mqasimca/nvctl/internal/errors"
)

// PowerLimit is a power limit expressed internally as milliwatts.
type PowerLimit struct {
	milliwatts int
}

// NewPowerLimitMilliwatts constructs a PowerLimit from a raw milliwatt reading.
// Negative values are rejected; this constructor does not check constraints —
// use PowerConstraints.Validate for that.
func NewPowerLimitMilliwatts(mw int) (PowerLimit, error) {
	if mw < 0 {
		return PowerLimit{}, errors.New().WithData(ErrInvalidPowerLimit, fmt.Sprintf("value=%dmW must be >= 0", mw))
	}

	return PowerLimit{milliwatts: mw}, nil
}

// PowerLimitFromWatts constructs a PowerLimit from a whole-watt value.
func PowerLimitFromWatts(watts int) (PowerLimit, error) {
	return NewPowerLimitMilliwatts(watts * 1000)
}

func (p PowerLimit) Milliwatts() int {
	return p.milliwatts
}

func (p PowerLimit) Watts() int {
	return p.milliwatts / 1000
}

func (p PowerLimit) String() string {
	return fmt.Sprintf("%dW", p.Watts())
}

// PowerConstraints describes the valid range and factory default for a
// device's power limit. Construction enforces min <= default <= max.
type PowerConstraints struct {
	Min     PowerLimit
	Max     PowerLimit
	Default PowerLimit
}

func NewPowerConstraints(minLimit, maxLimit, defaultLimit PowerLimit) (PowerConstraints, error) {
	if minLimit.milliwatts > defaultLimit.milliwatts || defaultLimit.milliwatts > maxLimit.milliwatts {
		return PowerConstraints{}, errors.New().WithData(ErrInvalidConstraints,
			fmt.Sprintf("min=%d default=%d max=%d must satisfy min<=default<=max",
				minLimit.milliwatts, defaultLimit.milliwatts, maxLimit.milliwatts))
	}

	return PowerConstraints{Min: minLimit, Max: maxLimit, Default: defaultLimit}, nil
}

// Contains reports whether l falls within [c.Min, c.Max].
func (c PowerConstraints) Contains(l PowerLimit) bool {
	return l.milliwatts >= c.Min.milliwatts && l.milliwatts <= c.Max.milliwatts
}

// Validate returns nil if l satisfies the constraints, or a typed error
// carrying the offending value and the valid range.
func (c PowerConstraints) Validate(l PowerLimit) error {
	if c.Contains(l) {
		return nil
	}

	return errors.New().WithData(ErrInvalidPowerLimit, fmt.Sprintf(
		"value=%dW min=%dW max=%dW", l.Watts(), c.Min.Watts(), c.Max.Watts()))
}

// Package money provides decimal currency helpers shared across the engine.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/microlend/loan-engine/pkg/constants"
)

var (
	hundred = decimal.NewFromInt(constants.PercentageMultiplier)

	// paidTolerance is one cent, the slack used for fully-paid checks.
	paidTolerance = decimal.NewFromFloat(constants.PaidTolerance)
)

// Round2 rounds a value to two decimals, half-up, i.e. to represent real
// currency. Applied only where a value leaves the engine for display or
// storage; internal arithmetic retains full precision.
func Round2(val decimal.Decimal) decimal.Decimal {
	return val.Round(2)
}

// Percent applies a percentage rate to a value: val * ratePercent / 100.
func Percent(val, ratePercent decimal.Decimal) decimal.Decimal {
	return val.Mul(ratePercent).Div(hundred)
}

// IsZero checks if a value is effectively zero (within one cent).
func IsZero(val decimal.Decimal) bool {
	return val.Abs().LessThanOrEqual(paidTolerance)
}

// WithinTolerance checks if two values agree within the given tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// ClampFloor returns val, floored at floor.
func ClampFloor(val, floor decimal.Decimal) decimal.Decimal {
	if val.LessThan(floor) {
		return floor
	}
	return val
}

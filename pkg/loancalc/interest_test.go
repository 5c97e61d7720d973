package loancalc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeInterestFlat(t *testing.T) {
	tests := []struct {
		name        string
		principal   string
		ratePercent string
		termMonths  int
		expected    string
	}{
		{
			name:        "ten percent one month",
			principal:   "10000",
			ratePercent: "10",
			termMonths:  1,
			expected:    "1000",
		},
		{
			name:        "five percent two months",
			principal:   "10000",
			ratePercent: "5",
			termMonths:  2,
			expected:    "1000",
		},
		{
			name:        "zero rate",
			principal:   "10000",
			ratePercent: "0",
			termMonths:  6,
			expected:    "0",
		},
		{
			name:        "non-positive term clamps to one",
			principal:   "10000",
			ratePercent: "10",
			termMonths:  0,
			expected:    "1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeInterest(
				decimal.RequireFromString(tt.principal),
				decimal.RequireFromString(tt.ratePercent),
				tt.termMonths,
				InterestFlat,
				tt.termMonths, // irrelevant for flat
				FrequencyMonthly,
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, got)
		})
	}
}

func TestComputeInterestReducing(t *testing.T) {
	// Single monthly installment degenerates to the flat result: payment =
	// 10000*0.10/(1-1.10^-1) = 11000, interest = 11000-10000 = 1000.
	got := ComputeInterest(
		decimal.NewFromInt(10000),
		decimal.NewFromInt(10),
		1,
		InterestReducing,
		1,
		FrequencyMonthly,
	)
	assert.True(t, got.Sub(decimal.NewFromInt(1000)).Abs().LessThan(decimal.NewFromFloat(0.01)),
		"expected ~1000, got %s", got)
}

func TestComputeInterestReducingZeroPayments(t *testing.T) {
	got := ComputeInterest(
		decimal.NewFromInt(10000),
		decimal.NewFromInt(10),
		1,
		InterestReducing,
		0,
		FrequencyMonthly,
	)
	assert.True(t, got.IsZero(), "expected 0 interest for 0 payments, got %s", got)
}

func TestComputeInterestReducingZeroRateDegradesToFlat(t *testing.T) {
	got := ComputeInterest(
		decimal.NewFromInt(10000),
		decimal.Zero,
		3,
		InterestReducing,
		12,
		FrequencyWeekly,
	)
	assert.True(t, got.IsZero(), "zero rate should produce zero interest, got %s", got)
}

func TestComputeInterestReducingBelowFlat(t *testing.T) {
	// Amortizing interest over many installments is strictly below the flat
	// figure for the same nominal rate.
	principal := decimal.NewFromInt(10000)
	rate := decimal.NewFromInt(10)

	flat := ComputeInterest(principal, rate, 3, InterestFlat, 12, FrequencyWeekly)
	reducing := ComputeInterest(principal, rate, 3, InterestReducing, 12, FrequencyWeekly)

	assert.True(t, reducing.LessThan(flat),
		"reducing interest %s should be below flat %s", reducing, flat)
	assert.True(t, reducing.GreaterThan(decimal.Zero))
}

func TestComputeInterestCompound(t *testing.T) {
	// 10000 * (1.10^2 - 1) = 2100. Compounds once per month of term, not per
	// installment period.
	got := ComputeInterest(
		decimal.NewFromInt(10000),
		decimal.NewFromInt(10),
		2,
		InterestCompound,
		8,
		FrequencyWeekly,
	)
	assert.True(t, got.Sub(decimal.NewFromInt(2100)).Abs().LessThan(decimal.NewFromFloat(0.01)),
		"expected ~2100, got %s", got)
}

func TestComputeInterestCompoundIgnoresInstallmentCount(t *testing.T) {
	principal := decimal.NewFromInt(5000)
	rate := decimal.NewFromFloat(2.5)

	weekly := ComputeInterest(principal, rate, 4, InterestCompound, 16, FrequencyWeekly)
	daily := ComputeInterest(principal, rate, 4, InterestCompound, 120, FrequencyDaily)

	assert.True(t, weekly.Equal(daily),
		"compound interest must not vary with installment count: %s vs %s", weekly, daily)
}

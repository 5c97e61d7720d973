package loancalc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardTerms() LoanTerms {
	// 10000 over 2 months, 5%/month flat -> interest 1000, processing 3% ->
	// 300, platform 100/month -> 200; total repayable 11500.
	return LoanTerms{
		Principal:            decimal.NewFromInt(10000),
		TermMonths:           2,
		PaymentFrequency:     FrequencyWeekly,
		InterestRatePercent:  decimal.NewFromInt(5),
		InterestType:         InterestFlat,
		ProcessingFeePercent: decimal.NewFromInt(3),
		PlatformFeePerMonth:  decimal.NewFromInt(100),

		DeductProcessingFeeUpfront: true,
		DeductPlatformFeeUpfront:   true,
		DeductInterestUpfront:      false,
	}
}

func TestCalculateBreakdown(t *testing.T) {
	calc := Calculate(standardTerms())

	assert.True(t, calc.InterestAmount.Equal(decimal.NewFromInt(1000)), "interest: %s", calc.InterestAmount)
	assert.True(t, calc.ProcessingFeeAmount.Equal(decimal.NewFromInt(300)), "processing: %s", calc.ProcessingFeeAmount)
	assert.True(t, calc.PlatformFeeAmount.Equal(decimal.NewFromInt(200)), "platform: %s", calc.PlatformFeeAmount)
	assert.True(t, calc.TotalRepayable.Equal(decimal.NewFromInt(11500)), "totalRepayable: %s", calc.TotalRepayable)

	// Interest stays in the installments; only the two fees come off the top.
	assert.True(t, calc.TotalUpfrontDeductions.Equal(decimal.NewFromInt(500)), "deductions: %s", calc.TotalUpfrontDeductions)
	assert.True(t, calc.NetProceeds.Equal(decimal.NewFromInt(9500)), "netProceeds: %s", calc.NetProceeds)

	// 2 months weekly -> 8 installments of 11500/8.
	require.Equal(t, 8, calc.NumberOfInstallments)
	assert.True(t, calc.InstallmentAmount.Equal(decimal.NewFromFloat(1437.5)), "installment: %s", calc.InstallmentAmount)

	// ((11500-9500)/9500) * (12/2) * 100, rounded to 2 decimals.
	assert.True(t, calc.EffectiveAnnualRatePercent.Equal(decimal.NewFromFloat(126.32)),
		"effective rate: %s", calc.EffectiveAnnualRatePercent)

	assert.Equal(t, 1, calc.GracePeriodDays)

	// Weekly installment times 4 payments per month.
	assert.True(t, calc.MonthlyEquivalentInstallment.Equal(decimal.NewFromInt(5750)),
		"monthly equivalent: %s", calc.MonthlyEquivalentInstallment)
}

func TestCalculateRepayableIdentity(t *testing.T) {
	// Total repayable is additive in every component regardless of upfront
	// flags; flipping deductions only moves net proceeds.
	for _, interestType := range []InterestType{InterestFlat, InterestReducing, InterestCompound} {
		for _, frequency := range []PaymentFrequency{FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly} {
			terms := standardTerms()
			terms.InterestType = interestType
			terms.PaymentFrequency = frequency
			terms.DeductInterestUpfront = true

			calc := Calculate(terms)

			sum := calc.Principal.
				Add(calc.InterestAmount).
				Add(calc.ProcessingFeeAmount).
				Add(calc.PlatformFeeAmount)
			assert.True(t, calc.TotalRepayable.Equal(sum),
				"%s/%s: totalRepayable %s != components %s", interestType, frequency, calc.TotalRepayable, sum)

			expectedNet := calc.Principal.Sub(calc.TotalUpfrontDeductions)
			if expectedNet.IsNegative() {
				expectedNet = decimal.Zero
			}
			assert.True(t, calc.NetProceeds.Equal(expectedNet),
				"%s/%s: netProceeds %s", interestType, frequency, calc.NetProceeds)

			// installment * count within count cents of total repayable.
			recomposed := calc.InstallmentAmount.Mul(decimal.NewFromInt(int64(calc.NumberOfInstallments)))
			slack := decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(calc.NumberOfInstallments)))
			assert.True(t, recomposed.Sub(calc.TotalRepayable).Abs().LessThanOrEqual(slack),
				"%s/%s: %s * %d = %s vs %s", interestType, frequency,
				calc.InstallmentAmount, calc.NumberOfInstallments, recomposed, calc.TotalRepayable)
		}
	}
}

func TestCalculateClampsTerm(t *testing.T) {
	terms := standardTerms()
	terms.TermMonths = 0

	calc := Calculate(terms)
	assert.Equal(t, 1, calc.TermMonths, "non-positive terms clamp to one month")
	assert.Equal(t, 4, calc.NumberOfInstallments)
}

func TestCalculateZeroNetProceeds(t *testing.T) {
	// Fees deducted upfront exceed the principal: net proceeds floor at zero
	// and the effective rate guard resolves to zero instead of dividing.
	terms := standardTerms()
	terms.ProcessingFeePercent = decimal.NewFromInt(100)

	calc := Calculate(terms)
	assert.True(t, calc.NetProceeds.IsZero(), "netProceeds: %s", calc.NetProceeds)
	assert.True(t, calc.EffectiveAnnualRatePercent.IsZero(),
		"effective rate must be zero when nothing is disbursed, got %s", calc.EffectiveAnnualRatePercent)
}

func TestCalculateUnrecognizedFrequencyFallsBackToWeekly(t *testing.T) {
	terms := standardTerms()
	terms.PaymentFrequency = "fortnightly-ish"

	calc := Calculate(terms)
	assert.Equal(t, 8, calc.NumberOfInstallments, "unknown frequency uses the weekly multiplier")
	assert.Equal(t, 0, calc.GracePeriodDays)
}

func TestCalculatePenaltyPerDay(t *testing.T) {
	rate := decimal.NewFromInt(2)
	terms := standardTerms()
	terms.LatePenaltyPercent = &rate

	calc := Calculate(terms)
	require.NotNil(t, calc.PenaltyPerDay)
	// 1437.50 * 2% = 28.75, preview only.
	assert.True(t, calc.PenaltyPerDay.Equal(decimal.NewFromFloat(28.75)), "penaltyPerDay: %s", calc.PenaltyPerDay)

	terms.LatePenaltyPercent = nil
	assert.Nil(t, Calculate(terms).PenaltyPerDay)
}

func TestCalculateDeterminism(t *testing.T) {
	terms := standardTerms()
	terms.InterestType = InterestReducing

	first := Calculate(terms)
	second := Calculate(terms)

	assert.True(t, first.InterestAmount.Equal(second.InterestAmount))
	assert.True(t, first.InstallmentAmount.Equal(second.InstallmentAmount))
	assert.True(t, first.EffectiveAnnualRatePercent.Equal(second.EffectiveAnnualRatePercent))
}

func TestInstallmentCount(t *testing.T) {
	tests := []struct {
		name       string
		termMonths int
		frequency  PaymentFrequency
		expected   int
	}{
		{"daily", 2, FrequencyDaily, 60},
		{"weekly", 2, FrequencyWeekly, 8},
		{"biweekly rounds up", 2, FrequencyBiweekly, 5},
		{"biweekly exact", 7, FrequencyBiweekly, 15},
		{"monthly", 2, FrequencyMonthly, 2},
		{"unknown falls back to weekly", 2, "quarterly", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InstallmentCount(tt.termMonths, tt.frequency))
		})
	}
}

func TestNormalizeTermMonths(t *testing.T) {
	tests := []struct {
		input    float64
		expected int
	}{
		{1.4, 1},
		{1.5, 2},
		{0.2, 1},
		{0, 1},
		{-3, 1},
		{6, 6},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeTermMonths(tt.input), "input %v", tt.input)
	}
}

func TestFrequencyTables(t *testing.T) {
	assert.Equal(t, 30, PaymentsPerMonth(FrequencyDaily))
	assert.Equal(t, 4, PaymentsPerMonth(FrequencyWeekly))
	assert.Equal(t, 2, PaymentsPerMonth(FrequencyBiweekly))
	assert.Equal(t, 1, PaymentsPerMonth(FrequencyMonthly))
	assert.Equal(t, 4, PaymentsPerMonth("unknown"))

	assert.Equal(t, 0, GracePeriodDays(FrequencyDaily))
	assert.Equal(t, 1, GracePeriodDays(FrequencyWeekly))
	assert.Equal(t, 2, GracePeriodDays(FrequencyBiweekly))
	assert.Equal(t, 3, GracePeriodDays(FrequencyMonthly))
	assert.Equal(t, 0, GracePeriodDays("unknown"))

	assert.Equal(t, 1, DaysBetweenPayments(FrequencyDaily))
	assert.Equal(t, 7, DaysBetweenPayments(FrequencyWeekly))
	assert.Equal(t, 14, DaysBetweenPayments(FrequencyBiweekly))
	assert.Equal(t, 30, DaysBetweenPayments(FrequencyMonthly))
	assert.Equal(t, 30, DaysBetweenPayments("unknown"))
}

package loancalc

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/microlend/loan-engine/pkg/constants"
	"github.com/microlend/loan-engine/pkg/dates"
	"github.com/microlend/loan-engine/pkg/money"
)

// PenaltyResult is the outcome of a late-payment penalty computation for a
// single installment.
type PenaltyResult struct {
	InstallmentAmount decimal.Decimal
	DaysLate          int // may be <= 0 for on-time or early payment
	GracePeriodDays   int
	EffectiveLateDays int
	PenaltyRate       decimal.Decimal
	PenaltyAmount     decimal.Decimal
	TotalDue          decimal.Decimal
}

// ComputePenalty computes the late fee for an installment paid (or observed)
// on paymentDate. Accrual is linear and uncapped: installment * rate/100 per
// effective late day, where effective late days exclude the frequency's grace
// period. Days late round partial days up.
func ComputePenalty(
	installmentAmount decimal.Decimal,
	dueDate, paymentDate time.Time,
	frequency PaymentFrequency,
	penaltyRatePercent decimal.Decimal,
) PenaltyResult {
	gracePeriodDays := GracePeriodDays(frequency)
	daysLate := dates.DaysBetweenCeil(dueDate, paymentDate)

	effectiveLateDays := daysLate - gracePeriodDays
	if effectiveLateDays < 0 {
		effectiveLateDays = 0
	}

	penaltyAmount := money.Percent(installmentAmount, penaltyRatePercent).
		Mul(decimal.NewFromInt(int64(effectiveLateDays)))

	return PenaltyResult{
		InstallmentAmount: installmentAmount,
		DaysLate:          daysLate,
		GracePeriodDays:   gracePeriodDays,
		EffectiveLateDays: effectiveLateDays,
		PenaltyRate:       penaltyRatePercent,
		PenaltyAmount:     penaltyAmount,
		TotalDue:          installmentAmount.Add(penaltyAmount),
	}
}

// ComputeCappedPenalty accrues a linear daily penalty on an installment's
// outstanding amount, capped at capPercent of that outstanding amount. A
// non-positive capPercent selects the default cap. This is the variant used
// for live overdue annotation and collector penalty totals; penalty must
// never exceed the cap.
func ComputeCappedPenalty(
	outstandingAmount decimal.Decimal,
	daysOverGrace int,
	dailyPenaltyRatePercent decimal.Decimal,
	capPercent decimal.Decimal,
) decimal.Decimal {
	if outstandingAmount.LessThanOrEqual(decimal.Zero) || daysOverGrace <= 0 {
		return decimal.Zero
	}
	if capPercent.LessThanOrEqual(decimal.Zero) {
		capPercent = decimal.NewFromInt(constants.DefaultPenaltyCapPercent)
	}

	rawPenalty := money.Percent(outstandingAmount, dailyPenaltyRatePercent).
		Mul(decimal.NewFromInt(int64(daysOverGrace)))
	cap := money.Percent(outstandingAmount, capPercent)

	return money.Round2(decimal.Min(rawPenalty, cap))
}

// ComputeTieredPenalty accrues a progressive daily penalty on an
// installment's outstanding amount: 1%/day for days 1-10 over grace, 2%/day
// for days 11-20, 3%/day from day 21, capped identically to
// ComputeCappedPenalty. Present as a selectable alternative; the flat capped
// variant is the default path.
func ComputeTieredPenalty(
	outstandingAmount decimal.Decimal,
	daysOverGrace int,
	capPercent decimal.Decimal,
) decimal.Decimal {
	if outstandingAmount.LessThanOrEqual(decimal.Zero) || daysOverGrace <= 0 {
		return decimal.Zero
	}
	if capPercent.LessThanOrEqual(decimal.Zero) {
		capPercent = decimal.NewFromInt(constants.DefaultPenaltyCapPercent)
	}

	tierOneDays := daysOverGrace
	if tierOneDays > constants.TierOneMaxDays {
		tierOneDays = constants.TierOneMaxDays
	}
	penalty := money.Percent(outstandingAmount, decimal.NewFromInt(constants.TierOneRatePercent)).
		Mul(decimal.NewFromInt(int64(tierOneDays)))

	if daysOverGrace > constants.TierOneMaxDays {
		tierTwoDays := daysOverGrace - constants.TierOneMaxDays
		if tierTwoDays > constants.TierTwoMaxDays-constants.TierOneMaxDays {
			tierTwoDays = constants.TierTwoMaxDays - constants.TierOneMaxDays
		}
		penalty = penalty.Add(
			money.Percent(outstandingAmount, decimal.NewFromInt(constants.TierTwoRatePercent)).
				Mul(decimal.NewFromInt(int64(tierTwoDays))))
	}

	if daysOverGrace > constants.TierTwoMaxDays {
		tierThreeDays := daysOverGrace - constants.TierTwoMaxDays
		penalty = penalty.Add(
			money.Percent(outstandingAmount, decimal.NewFromInt(constants.TierThreeRatePercent)).
				Mul(decimal.NewFromInt(int64(tierThreeDays))))
	}

	cap := money.Percent(outstandingAmount, capPercent)
	return money.Round2(decimal.Min(penalty, cap))
}

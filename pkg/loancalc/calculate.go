package loancalc

import (
	"github.com/shopspring/decimal"

	"github.com/microlend/loan-engine/pkg/constants"
	"github.com/microlend/loan-engine/pkg/money"
)

// LoanCalculation is the definitive breakdown of a loan's numbers, the single
// source of truth for every downstream consumer. Values carry full precision;
// rounding to two decimals happens only where a value leaves the engine.
type LoanCalculation struct {
	// Echoed inputs
	Principal          decimal.Decimal
	TermMonths         int
	PaymentFrequency   PaymentFrequency
	LatePenaltyPercent *decimal.Decimal

	// Computed values
	InterestAmount             decimal.Decimal
	ProcessingFeeAmount        decimal.Decimal
	PlatformFeeAmount          decimal.Decimal // fee-per-month * termMonths
	NetProceeds                decimal.Decimal
	TotalRepayable             decimal.Decimal
	NumberOfInstallments       int
	InstallmentAmount          decimal.Decimal
	EffectiveAnnualRatePercent decimal.Decimal

	GracePeriodDays int

	TotalUpfrontDeductions       decimal.Decimal
	MonthlyEquivalentInstallment decimal.Decimal

	// PenaltyPerDay is an informational preview (installment * rate/100).
	// The authoritative per-installment penalty is always computed against
	// that installment's outstanding amount; see ComputeCappedPenalty.
	PenaltyPerDay *decimal.Decimal
}

// Calculate turns loan terms into a LoanCalculation. It never fails: invalid
// numeric inputs (zero or negative principal, zero term) are the caller's
// responsibility to reject before invocation. Non-positive terms are clamped
// to one month, and all division-by-zero paths resolve to zero.
//
// Invariant: TotalRepayable = Principal + InterestAmount + ProcessingFeeAmount
// + PlatformFeeAmount, regardless of which components were deducted upfront.
func Calculate(terms LoanTerms) LoanCalculation {
	termMonths := terms.TermMonths
	if termMonths < 1 {
		termMonths = 1
	}
	termDec := decimal.NewFromInt(int64(termMonths))

	numberOfInstallments := InstallmentCount(termMonths, terms.PaymentFrequency)

	interestAmount := ComputeInterest(
		terms.Principal,
		terms.InterestRatePercent,
		termMonths,
		terms.InterestType,
		numberOfInstallments,
		terms.PaymentFrequency,
	)

	processingFeeAmount := money.Percent(terms.Principal, terms.ProcessingFeePercent)
	platformFeeAmount := terms.PlatformFeePerMonth.Mul(termDec)

	totalRepayable := terms.Principal.
		Add(interestAmount).
		Add(processingFeeAmount).
		Add(platformFeeAmount)

	totalUpfrontDeductions := decimal.Zero
	if terms.DeductProcessingFeeUpfront {
		totalUpfrontDeductions = totalUpfrontDeductions.Add(processingFeeAmount)
	}
	if terms.DeductPlatformFeeUpfront {
		totalUpfrontDeductions = totalUpfrontDeductions.Add(platformFeeAmount)
	}
	if terms.DeductInterestUpfront {
		totalUpfrontDeductions = totalUpfrontDeductions.Add(interestAmount)
	}

	netProceeds := money.ClampFloor(terms.Principal.Sub(totalUpfrontDeductions), decimal.Zero)

	installmentAmount := decimal.Zero
	if numberOfInstallments > 0 {
		installmentAmount = totalRepayable.Div(decimal.NewFromInt(int64(numberOfInstallments)))
	}

	calc := LoanCalculation{
		Principal:          terms.Principal,
		TermMonths:         termMonths,
		PaymentFrequency:   terms.PaymentFrequency,
		LatePenaltyPercent: terms.LatePenaltyPercent,

		InterestAmount:             interestAmount,
		ProcessingFeeAmount:        processingFeeAmount,
		PlatformFeeAmount:          platformFeeAmount,
		NetProceeds:                netProceeds,
		TotalRepayable:             totalRepayable,
		NumberOfInstallments:       numberOfInstallments,
		InstallmentAmount:          installmentAmount,
		EffectiveAnnualRatePercent: effectiveAnnualRate(netProceeds, totalRepayable, termMonths),

		GracePeriodDays: GracePeriodDays(terms.PaymentFrequency),

		TotalUpfrontDeductions:       totalUpfrontDeductions,
		MonthlyEquivalentInstallment: monthlyEquivalent(installmentAmount, terms.PaymentFrequency),
	}

	if terms.LatePenaltyPercent != nil {
		perDay := money.Percent(installmentAmount, *terms.LatePenaltyPercent)
		calc.PenaltyPerDay = &perDay
	}

	return calc
}

// effectiveAnnualRate is an APR-style approximation, not a true IRR:
// ((totalRepayable - netProceeds) / netProceeds) * (12 / termMonths) * 100,
// rounded to two decimals. Zero net proceeds resolves to zero.
func effectiveAnnualRate(netProceeds, totalRepayable decimal.Decimal, termMonths int) decimal.Decimal {
	if netProceeds.IsZero() {
		return decimal.Zero
	}
	totalCost := totalRepayable.Sub(netProceeds)
	rate := totalCost.Div(netProceeds).
		Mul(decimal.NewFromInt(constants.MonthsPerYear)).
		Div(decimal.NewFromInt(int64(termMonths))).
		Mul(hundred)
	return money.Round2(rate)
}

// monthlyEquivalent expresses an installment as a per-month figure for
// comparison across frequencies.
func monthlyEquivalent(installmentAmount decimal.Decimal, frequency PaymentFrequency) decimal.Decimal {
	if frequency == FrequencyMonthly {
		return installmentAmount
	}
	return installmentAmount.Mul(decimal.NewFromInt(int64(PaymentsPerMonth(frequency))))
}

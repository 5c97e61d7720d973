package loancalc

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/microlend/loan-engine/pkg/money"
)

// ComputeInterest computes the total interest owed for a loan under one of
// the three interest conventions. The rate is a nominal per-month percentage.
// numberOfPayments and frequency only matter for the reducing convention.
//
// A non-positive termMonths is clamped to 1; rejecting such input is the
// caller's job, not the engine's.
func ComputeInterest(
	principal decimal.Decimal,
	ratePercent decimal.Decimal,
	termMonths int,
	interestType InterestType,
	numberOfPayments int,
	frequency PaymentFrequency,
) decimal.Decimal {
	term := termMonths
	if term < 1 {
		term = 1
	}

	switch interestType {
	case InterestReducing:
		return reducingInterest(principal, ratePercent, term, numberOfPayments, frequency)
	case InterestCompound:
		return compoundInterest(principal, ratePercent, term)
	default:
		return flatInterest(principal, ratePercent, term)
	}
}

// flatInterest is computed once on the full principal for the whole term:
// principal * rate/100 * termMonths.
func flatInterest(principal, ratePercent decimal.Decimal, termMonths int) decimal.Decimal {
	return money.Percent(principal, ratePercent).Mul(decimal.NewFromInt(int64(termMonths)))
}

// reducingInterest derives total interest from the level-payment annuity
// formula: payment = P * r / (1 - (1+r)^-n), interest = payment*n - P.
//
// The power term runs in float64 and the result converts back to decimal,
// the same split used for amortization math elsewhere in the codebase.
func reducingInterest(
	principal, ratePercent decimal.Decimal,
	termMonths, numberOfPayments int,
	frequency PaymentFrequency,
) decimal.Decimal {
	if numberOfPayments == 0 {
		return decimal.Zero
	}

	paymentsPerMonth := PaymentsPerMonth(frequency)
	periodicRate := ratePercent.InexactFloat64() / 100 / float64(paymentsPerMonth)

	if periodicRate == 0 {
		return flatInterest(principal, ratePercent, termMonths)
	}

	n := float64(numberOfPayments)
	p := principal.InexactFloat64()
	payment := p * periodicRate / (1 - math.Pow(1+periodicRate, -n))
	return decimal.NewFromFloat(payment*n - p)
}

// compoundInterest compounds once per month of term, not once per installment
// period: principal * (1+rate/100)^max(1,termMonths) - principal. Historical
// loan figures depend on this exact formula; do not switch it to periodic
// compounding.
func compoundInterest(principal, ratePercent decimal.Decimal, termMonths int) decimal.Decimal {
	term := termMonths
	if term < 1 {
		term = 1
	}
	monthlyRate := ratePercent.InexactFloat64() / 100
	factor := math.Pow(1+monthlyRate, float64(term))
	return principal.Mul(decimal.NewFromFloat(factor - 1))
}

package loancalc

import (
	"github.com/shopspring/decimal"
)

// SettlementResult is an early-payoff quote.
type SettlementResult struct {
	RemainingPrincipal decimal.Decimal
	InterestRebate     decimal.Decimal
	TotalDue           decimal.Decimal
	SavedInterest      decimal.Decimal
}

// ComputeEarlySettlement computes the discounted payoff for closing a loan
// after paymentsMade installments: the blended remaining balance minus a
// pro-rated rebate of the unearned interest.
//
// RemainingPrincipal is installment * paymentsRemaining, i.e. the blended
// installment including interest and fees, not a pure-principal ledger
// figure. Preserved as-is for parity with historical quotes.
func ComputeEarlySettlement(calc LoanCalculation, paymentsMade int) SettlementResult {
	paymentsRemaining := calc.NumberOfInstallments - paymentsMade
	remainingDec := decimal.NewFromInt(int64(paymentsRemaining))

	remainingPrincipal := calc.InstallmentAmount.Mul(remainingDec)

	interestRebate := decimal.Zero
	if calc.NumberOfInstallments > 0 {
		interestRebate = calc.InterestAmount.
			Div(decimal.NewFromInt(int64(calc.NumberOfInstallments))).
			Mul(remainingDec)
	}

	return SettlementResult{
		RemainingPrincipal: remainingPrincipal,
		InterestRebate:     interestRebate,
		TotalDue:           remainingPrincipal.Sub(interestRebate),
		SavedInterest:      interestRebate,
	}
}

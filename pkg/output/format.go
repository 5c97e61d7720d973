// Package output provides utilities for formatting and displaying loan
// quotes and repayment schedules.
package output

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/microlend/loan-engine/pkg/dates"
	"github.com/microlend/loan-engine/pkg/loancalc"
	"github.com/microlend/loan-engine/pkg/money"
)

// PrettyFormat outputs a human-readable quote breakdown and schedule table.
func PrettyFormat(calc loancalc.LoanCalculation, schedule []loancalc.ScheduleInstallment) {
	p := message.NewPrinter(language.English)

	fmt.Printf("--- Loan quote ---\n")
	_, _ = p.Printf("Principal:          $%.2f\n", calc.Principal.InexactFloat64())
	_, _ = p.Printf("Interest:           $%.2f\n", calc.InterestAmount.InexactFloat64())
	_, _ = p.Printf("Processing fee:     $%.2f\n", calc.ProcessingFeeAmount.InexactFloat64())
	_, _ = p.Printf("Platform fee:       $%.2f\n", calc.PlatformFeeAmount.InexactFloat64())
	_, _ = p.Printf("Total repayable:    $%.2f\n", calc.TotalRepayable.InexactFloat64())
	_, _ = p.Printf("Upfront deductions: $%.2f\n", calc.TotalUpfrontDeductions.InexactFloat64())
	_, _ = p.Printf("Net proceeds:       $%.2f\n", calc.NetProceeds.InexactFloat64())
	_, _ = p.Printf("Installments:       %d x $%.2f (%s)\n",
		calc.NumberOfInstallments, calc.InstallmentAmount.InexactFloat64(), calc.PaymentFrequency)
	_, _ = p.Printf("Effective annual:   %.2f%%\n", calc.EffectiveAnnualRatePercent.InexactFloat64())

	if len(schedule) == 0 {
		return
	}

	fmt.Printf("\n  # | Due date   | Amount     | Principal  | Interest   | Balance\n")
	fmt.Printf("___ | ________   | ______     | _________  | ________   | _______\n")
	for _, installment := range schedule {
		_, _ = p.Printf("%3d | %s | $%.2f | $%.2f | $%.2f | $%.2f\n",
			installment.PaymentNumber,
			installment.DueDate.Format(dates.DateLayout),
			installment.InstallmentAmount.InexactFloat64(),
			installment.PrincipalPortion.InexactFloat64(),
			installment.InterestPortion.InexactFloat64(),
			installment.RemainingBalance.InexactFloat64(),
		)
	}
}

// CsvFormat outputs the schedule in comma-separated value format.
func CsvFormat(schedule []loancalc.ScheduleInstallment) {
	fmt.Printf(`"payment","dueDate","installment","principal","interest","remainingBalance","cumulativePaid"`)
	fmt.Printf("\n")
	for _, installment := range schedule {
		fmt.Printf(`"%d","%s","%s","%s","%s","%s","%s"`,
			installment.PaymentNumber,
			installment.DueDate.Format(dates.DateLayout),
			money.Round2(installment.InstallmentAmount).StringFixed(2),
			money.Round2(installment.PrincipalPortion).StringFixed(2),
			money.Round2(installment.InterestPortion).StringFixed(2),
			money.Round2(installment.RemainingBalance).StringFixed(2),
			money.Round2(installment.CumulativePaid).StringFixed(2),
		)
		fmt.Printf("\n")
	}
}

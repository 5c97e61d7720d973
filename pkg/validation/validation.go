// Package validation provides caller-side validation of loan terms.
//
// The engine itself never rejects input: it clamps non-positive terms to one
// month and falls back to weekly-equivalent behavior for unknown frequencies.
// Delivery surfaces call this package before invoking the engine so that
// misuse surfaces as an explicit error instead of a silently clamped quote.
package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/microlend/loan-engine/pkg/constants"
	"github.com/microlend/loan-engine/pkg/loancalc"
)

// ValidateTerms checks the numeric and enumerated fields of loan terms.
// It returns every problem found, not just the first.
func ValidateTerms(terms loancalc.LoanTerms) []error {
	var errs []error

	if terms.Principal.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, fmt.Errorf("principal must be greater than zero, got %s", terms.Principal))
	}

	if terms.TermMonths < 1 {
		errs = append(errs, fmt.Errorf("term must be at least 1 month, got %d", terms.TermMonths))
	}

	if !terms.PaymentFrequency.Valid() {
		errs = append(errs, fmt.Errorf("unrecognized payment frequency %q", terms.PaymentFrequency))
	}

	if !terms.InterestType.Valid() {
		errs = append(errs, fmt.Errorf("unrecognized interest type %q", terms.InterestType))
	}

	if terms.InterestRatePercent.IsNegative() {
		errs = append(errs, fmt.Errorf("interest rate must not be negative, got %s", terms.InterestRatePercent))
	}

	if terms.ProcessingFeePercent.IsNegative() {
		errs = append(errs, fmt.Errorf("processing fee percent must not be negative, got %s", terms.ProcessingFeePercent))
	}

	if terms.PlatformFeePerMonth.IsNegative() {
		errs = append(errs, fmt.Errorf("platform fee must not be negative, got %s", terms.PlatformFeePerMonth))
	}

	if terms.LatePenaltyPercent != nil && terms.LatePenaltyPercent.IsNegative() {
		errs = append(errs, fmt.Errorf("late penalty percent must not be negative, got %s", terms.LatePenaltyPercent))
	}

	return errs
}

// ValidatePaymentsMade checks an early-settlement payment count against a
// calculation.
func ValidatePaymentsMade(paymentsMade, numberOfInstallments int) error {
	if paymentsMade < 0 {
		return fmt.Errorf("payments made must not be negative, got %d", paymentsMade)
	}
	if paymentsMade > numberOfInstallments {
		return fmt.Errorf("payments made (%d) exceeds number of installments (%d)",
			paymentsMade, numberOfInstallments)
	}
	return nil
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

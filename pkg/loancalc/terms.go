// Package loancalc implements the loan calculation and amortization engine.
//
// Every function in this package is pure and stateless: no clock reads, no
// I/O, no shared mutable state. Repeated calls with identical inputs return
// identical results, which is what lets quote, approval, disbursement and
// collection call sites agree on the same loan's numbers.
package loancalc

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/microlend/loan-engine/pkg/constants"
)

// PaymentFrequency enumerates how often installments fall due.
type PaymentFrequency string

const (
	FrequencyDaily    PaymentFrequency = "daily"
	FrequencyWeekly   PaymentFrequency = "weekly"
	FrequencyBiweekly PaymentFrequency = "biweekly"
	FrequencyMonthly  PaymentFrequency = "monthly"
)

// Valid reports whether the frequency is one of the recognized values.
// The engine itself falls back to weekly-equivalent behavior for anything
// else; strict membership checks belong to the validation layer.
func (f PaymentFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// InterestType enumerates the supported interest conventions.
type InterestType string

const (
	InterestFlat     InterestType = "flat"
	InterestReducing InterestType = "reducing"
	InterestCompound InterestType = "compound"
)

// Valid reports whether the interest type is one of the recognized values.
func (t InterestType) Valid() bool {
	switch t {
	case InterestFlat, InterestReducing, InterestCompound:
		return true
	}
	return false
}

// LoanTerms holds the commercial terms of a loan. It is the sole input to
// Calculate. The three deduction flags have no defaults here; callers must
// supply them explicitly so independent call sites cannot diverge silently.
type LoanTerms struct {
	Principal           decimal.Decimal
	TermMonths          int
	PaymentFrequency    PaymentFrequency
	InterestRatePercent decimal.Decimal // nominal rate per month
	InterestType        InterestType

	ProcessingFeePercent decimal.Decimal // percent of principal
	PlatformFeePerMonth  decimal.Decimal
	LatePenaltyPercent   *decimal.Decimal // optional, percent of installment per day

	DeductProcessingFeeUpfront bool
	DeductPlatformFeeUpfront   bool
	DeductInterestUpfront      bool
}

// NormalizeTermMonths rounds a possibly fractional term to the nearest whole
// month and clamps it to at least one.
func NormalizeTermMonths(termMonths float64) int {
	rounded := int(math.Round(termMonths))
	if rounded < 1 {
		return 1
	}
	return rounded
}

// PaymentsPerMonth returns how many installments fall in one month for the
// given frequency. Unrecognized frequencies fall back to weekly.
func PaymentsPerMonth(frequency PaymentFrequency) int {
	switch frequency {
	case FrequencyDaily:
		return constants.DaysPerMonth
	case FrequencyWeekly:
		return 4
	case FrequencyBiweekly:
		return 2
	case FrequencyMonthly:
		return 1
	default:
		return 4
	}
}

// GracePeriodDays returns the penalty-free days after a due date for the
// given frequency.
func GracePeriodDays(frequency PaymentFrequency) int {
	switch frequency {
	case FrequencyDaily:
		return 0
	case FrequencyWeekly:
		return 1
	case FrequencyBiweekly:
		return 2
	case FrequencyMonthly:
		return 3
	default:
		return 0
	}
}

// DaysBetweenPayments returns the due-date step in days for the given
// frequency.
func DaysBetweenPayments(frequency PaymentFrequency) int {
	switch frequency {
	case FrequencyDaily:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return constants.DaysPerMonth
	default:
		return constants.DaysPerMonth
	}
}

// InstallmentCount returns the number of installments for a term at the
// given frequency. Unrecognized frequencies fall back to weekly.
func InstallmentCount(termMonths int, frequency PaymentFrequency) int {
	term := termMonths
	if term < 0 {
		term = 0
	}
	termDays := term * constants.DaysPerMonth

	switch frequency {
	case FrequencyDaily:
		return termDays
	case FrequencyWeekly:
		return term * 4
	case FrequencyBiweekly:
		// ceil(termDays / 14)
		return (termDays + 13) / 14
	case FrequencyMonthly:
		return term
	default:
		return term * 4
	}
}

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

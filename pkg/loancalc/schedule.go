package loancalc

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/microlend/loan-engine/pkg/constants"
	"github.com/microlend/loan-engine/pkg/dates"
	"github.com/microlend/loan-engine/pkg/money"
)

// ScheduleInstallment is one entry of a repayment schedule. The principal
// split is a deliberate equal split (principal / numberOfInstallments), not a
// front-loaded amortization split; every call site depends on this exact
// behavior for numeric parity.
type ScheduleInstallment struct {
	PaymentNumber     int // 1-indexed, contiguous
	DueDate           time.Time
	InstallmentAmount decimal.Decimal
	PrincipalPortion  decimal.Decimal
	InterestPortion   decimal.Decimal
	RemainingBalance  decimal.Decimal // principal remaining, floored at zero
	CumulativePaid    decimal.Decimal
}

// InstallmentStatus describes how an installment stands against recorded
// payments as of a given day.
type InstallmentStatus string

const (
	StatusPending       InstallmentStatus = "pending"
	StatusPartiallyPaid InstallmentStatus = "partially_paid"
	StatusPaid          InstallmentStatus = "paid"
	StatusOverdue       InstallmentStatus = "overdue"
)

// PaymentRecord is a single real payment made against a loan.
type PaymentRecord struct {
	Amount decimal.Decimal
	Date   time.Time
}

// PenaltyPolicy selects how overdue installments accrue penalty.
type PenaltyPolicy string

const (
	// PenaltyPolicyCapped is linear daily accrual with a cap, the default.
	PenaltyPolicyCapped PenaltyPolicy = "capped"

	// PenaltyPolicyTiered is progressive daily accrual with the same cap.
	PenaltyPolicyTiered PenaltyPolicy = "tiered"
)

// ScheduleContext carries the loan's real payment state and tenant/product
// penalty settings into AnnotateSchedule. Nothing here is defaulted from
// ambient state: grace days and penalty rate come from the caller's product
// configuration, and Today is injected rather than read from the system
// clock so repeated calls stay deterministic.
type ScheduleContext struct {
	Payments           []PaymentRecord
	GracePeriodDays    int
	LatePenaltyPercent decimal.Decimal
	PenaltyCapPercent  decimal.Decimal // non-positive selects the default cap
	PenaltyPolicy      PenaltyPolicy   // empty selects PenaltyPolicyCapped
	Today              time.Time

	// Logger, when set, traces penalty decisions. Defaults to a no-op.
	Logger *zap.Logger
}

// AnnotatedInstallment is a schedule entry annotated with payment allocation,
// derived status and accrued penalty.
type AnnotatedInstallment struct {
	ScheduleInstallment

	AmountPaid        decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            InstallmentStatus

	DaysLate    int
	DaysOverdue int

	GracePeriodDays      int
	GracePeriodRemaining int
	GracePeriodConsumed  bool

	PenaltyAmount decimal.Decimal
	TotalDue      decimal.Decimal // installment + penalty
}

// ScheduleSummary aggregates an annotated schedule for collector workflows.
type ScheduleSummary struct {
	TotalPaid           decimal.Decimal
	TotalOutstanding    decimal.Decimal
	TotalPenalty        decimal.Decimal
	OverdueInstallments int

	// NextDueNumber is the first installment not yet fully paid, zero when
	// the loan is fully paid off.
	NextDueNumber int
	NextDueDate   time.Time
}

// GenerateSchedule expands a calculation into its dated installment sequence
// starting from startDate. The result is a fresh list on every call; the
// engine keeps no cursor and never mutates a returned schedule.
func GenerateSchedule(calc LoanCalculation, startDate time.Time) []ScheduleInstallment {
	daysBetween := DaysBetweenPayments(calc.PaymentFrequency)

	schedule := make([]ScheduleInstallment, 0, calc.NumberOfInstallments)

	principalPortion := decimal.Zero
	if calc.NumberOfInstallments > 0 {
		principalPortion = calc.Principal.Div(decimal.NewFromInt(int64(calc.NumberOfInstallments)))
	}
	interestPortion := money.ClampFloor(calc.InstallmentAmount.Sub(principalPortion), decimal.Zero)

	remainingBalance := calc.Principal
	cumulativePaid := decimal.Zero

	for i := 1; i <= calc.NumberOfInstallments; i++ {
		remainingBalance = money.ClampFloor(remainingBalance.Sub(principalPortion), decimal.Zero)
		cumulativePaid = cumulativePaid.Add(calc.InstallmentAmount)

		schedule = append(schedule, ScheduleInstallment{
			PaymentNumber:     i,
			DueDate:           dates.AddDays(startDate, i*daysBetween),
			InstallmentAmount: calc.InstallmentAmount,
			PrincipalPortion:  principalPortion,
			InterestPortion:   interestPortion,
			RemainingBalance:  remainingBalance,
			CumulativePaid:    cumulativePaid,
		})
	}

	return schedule
}

// AnnotateSchedule builds the same schedule as GenerateSchedule and overlays
// the loan's real payment state: per-installment paid amounts allocated from
// total payments strictly in installment order, a derived status, and accrued
// penalty on overdue amounts. Both representations share one construction
// path, so every common field agrees between them.
func AnnotateSchedule(calc LoanCalculation, startDate time.Time, ctx ScheduleContext) []AnnotatedInstallment {
	logger := ctx.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	totalPaid := decimal.Zero
	for _, payment := range ctx.Payments {
		totalPaid = totalPaid.Add(payment.Amount)
	}

	base := GenerateSchedule(calc, startDate)
	annotated := make([]AnnotatedInstallment, 0, len(base))

	for _, installment := range base {
		entry := annotateInstallment(installment, totalPaid, ctx, logger)
		annotated = append(annotated, entry)
	}

	return annotated
}

func annotateInstallment(
	installment ScheduleInstallment,
	totalPaid decimal.Decimal,
	ctx ScheduleContext,
	logger *zap.Logger,
) AnnotatedInstallment {
	// Allocate payments to installments strictly in order, capped at each
	// installment's amount.
	previousTotal := installment.InstallmentAmount.
		Mul(decimal.NewFromInt(int64(installment.PaymentNumber - 1)))
	amountPaid := decimal.Zero
	if totalPaid.GreaterThan(previousTotal) {
		amountPaid = decimal.Min(totalPaid.Sub(previousTotal), installment.InstallmentAmount)
	}
	outstanding := installment.InstallmentAmount.Sub(amountPaid)

	isOverdue := ctx.Today.After(installment.DueDate)
	daysOverdue := 0
	if isOverdue {
		daysOverdue = dates.DaysBetweenFloor(installment.DueDate, ctx.Today)
		if daysOverdue < 0 {
			daysOverdue = 0
		}
	}

	fullyPaid := amountPaid.GreaterThanOrEqual(
		installment.InstallmentAmount.Sub(decimal.NewFromFloat(constants.PaidTolerance)))

	status := StatusPending
	switch {
	case fullyPaid:
		status = StatusPaid
	case isOverdue && amountPaid.GreaterThan(decimal.Zero):
		status = StatusPartiallyPaid
	case isOverdue:
		status = StatusOverdue
	case amountPaid.GreaterThan(decimal.Zero):
		status = StatusPartiallyPaid
	}

	entry := AnnotatedInstallment{
		ScheduleInstallment: installment,

		AmountPaid:        amountPaid,
		OutstandingAmount: outstanding,
		Status:            status,

		DaysLate:    daysOverdue,
		DaysOverdue: daysOverdue,

		GracePeriodDays:      ctx.GracePeriodDays,
		GracePeriodRemaining: ctx.GracePeriodDays,

		PenaltyAmount: decimal.Zero,
	}

	if (status == StatusOverdue || status == StatusPartiallyPaid) && daysOverdue > 0 {
		if daysOverdue <= ctx.GracePeriodDays {
			// Still within grace, no penalty accrues yet.
			entry.GracePeriodRemaining = ctx.GracePeriodDays - daysOverdue
		} else {
			entry.GracePeriodRemaining = 0
			entry.GracePeriodConsumed = true
			daysOverGrace := daysOverdue - ctx.GracePeriodDays

			if ctx.PenaltyPolicy == PenaltyPolicyTiered {
				entry.PenaltyAmount = ComputeTieredPenalty(outstanding, daysOverGrace, ctx.PenaltyCapPercent)
			} else {
				entry.PenaltyAmount = ComputeCappedPenalty(
					outstanding, daysOverGrace, ctx.LatePenaltyPercent, ctx.PenaltyCapPercent)
			}

			logger.Debug("accrued late penalty",
				zap.Int("installment", installment.PaymentNumber),
				zap.String("outstanding", outstanding.StringFixed(2)),
				zap.Int("daysOverGrace", daysOverGrace),
				zap.String("penalty", entry.PenaltyAmount.StringFixed(2)),
			)
		}
	}

	entry.TotalDue = installment.InstallmentAmount.Add(entry.PenaltyAmount)
	return entry
}

// SummarizeSchedule totals an annotated schedule: amounts paid and
// outstanding, accrued penalty, overdue count, and the next unpaid
// installment. Used to brief collectors on a borrower's position.
func SummarizeSchedule(schedule []AnnotatedInstallment) ScheduleSummary {
	var summary ScheduleSummary

	summary.TotalPaid = decimal.Zero
	summary.TotalOutstanding = decimal.Zero
	summary.TotalPenalty = decimal.Zero

	for _, entry := range schedule {
		summary.TotalPaid = summary.TotalPaid.Add(entry.AmountPaid)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(entry.OutstandingAmount)
		summary.TotalPenalty = summary.TotalPenalty.Add(entry.PenaltyAmount)

		if entry.Status == StatusOverdue || (entry.Status == StatusPartiallyPaid && entry.DaysOverdue > 0) {
			summary.OverdueInstallments++
		}

		if summary.NextDueNumber == 0 && entry.Status != StatusPaid {
			summary.NextDueNumber = entry.PaymentNumber
			summary.NextDueDate = entry.DueDate
		}
	}

	return summary
}

// Package server exposes the loan engine over a stateless HTTP API. Every
// request carries complete terms; nothing is persisted between calls and
// every response is recomputed from scratch, so independent callers always
// see the same numbers for the same loan.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/microlend/loan-engine/internal/config"
	"github.com/microlend/loan-engine/pkg/constants"
	"github.com/microlend/loan-engine/pkg/dates"
	"github.com/microlend/loan-engine/pkg/loancalc"
	"github.com/microlend/loan-engine/pkg/money"
	"github.com/microlend/loan-engine/pkg/validation"
)

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	now         func() time.Time
}

// NewHandler constructs the HTTP handler serving the quote API.
func NewHandler(logger *zap.Logger, maxBodySize int64, version string) http.Handler {
	return newHandlerWithClock(logger, maxBodySize, version, time.Now)
}

// newHandlerWithClock allows tests to pin "today". The engine itself never
// reads a clock; this is the boundary where wall time enters.
func newHandlerWithClock(logger *zap.Logger, maxBodySize int64, version string, now func() time.Time) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxBodySize: maxBodySize, version: trimmedVersion, now: now}

	r := mux.NewRouter()
	r.Use(h.requestLogging)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/quote", h.handleQuote).Methods(http.MethodPost)
	api.HandleFunc("/schedule", h.handleSchedule).Methods(http.MethodPost)
	api.HandleFunc("/penalty", h.handlePenalty).Methods(http.MethodPost)
	api.HandleFunc("/settlement", h.handleSettlement).Methods(http.MethodPost)
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	return r
}

func (h *handler) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Info("request handled",
			zap.String("requestId", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// loanTermsRequest mirrors config.LoanConfig for JSON requests. Deduction
// flags must be present explicitly; the engine has no hidden defaults.
type loanTermsRequest struct {
	Principal            float64  `json:"principal"`
	TermMonths           float64  `json:"termMonths"`
	PaymentFrequency     string   `json:"paymentFrequency"`
	InterestRatePercent  float64  `json:"interestRatePercent"`
	InterestType         string   `json:"interestType"`
	ProcessingFeePercent float64  `json:"processingFeePercent"`
	PlatformFeePerMonth  float64  `json:"platformFeePerMonth"`
	LatePenaltyPercent   *float64 `json:"latePenaltyPercent,omitempty"`

	DeductProcessingFeeUpfront bool `json:"deductProcessingFeeUpfront"`
	DeductPlatformFeeUpfront   bool `json:"deductPlatformFeeUpfront"`
	DeductInterestUpfront      bool `json:"deductInterestUpfront"`
}

func (req loanTermsRequest) terms() loancalc.LoanTerms {
	return config.LoanConfig{
		Principal:            req.Principal,
		TermMonths:           req.TermMonths,
		PaymentFrequency:     req.PaymentFrequency,
		InterestRatePercent:  req.InterestRatePercent,
		InterestType:         req.InterestType,
		ProcessingFeePercent: req.ProcessingFeePercent,
		PlatformFeePerMonth:  req.PlatformFeePerMonth,
		LatePenaltyPercent:   req.LatePenaltyPercent,

		DeductProcessingFeeUpfront: req.DeductProcessingFeeUpfront,
		DeductPlatformFeeUpfront:   req.DeductPlatformFeeUpfront,
		DeductInterestUpfront:      req.DeductInterestUpfront,
	}.Terms()
}

// quoteResponse carries the calculation with every monetary field rounded to
// two decimals. This is the boundary where engine values meet display; the
// engine keeps full precision internally.
type quoteResponse struct {
	QuoteID          string `json:"quoteId"`
	Principal        string `json:"principal"`
	TermMonths       int    `json:"termMonths"`
	PaymentFrequency string `json:"paymentFrequency"`

	InterestAmount             string `json:"interestAmount"`
	ProcessingFeeAmount        string `json:"processingFeeAmount"`
	PlatformFeeAmount          string `json:"platformFeeAmount"`
	NetProceeds                string `json:"netProceeds"`
	TotalRepayable             string `json:"totalRepayable"`
	NumberOfInstallments       int    `json:"numberOfInstallments"`
	InstallmentAmount          string `json:"installmentAmount"`
	EffectiveAnnualRatePercent string `json:"effectiveAnnualRatePercent"`

	GracePeriodDays int `json:"gracePeriodDays"`

	TotalUpfrontDeductions       string `json:"totalUpfrontDeductions"`
	MonthlyEquivalentInstallment string `json:"monthlyEquivalentInstallment"`
	PenaltyPerDay                string `json:"penaltyPerDay,omitempty"`
}

func newQuoteResponse(calc loancalc.LoanCalculation) quoteResponse {
	resp := quoteResponse{
		QuoteID:          uuid.NewString(),
		Principal:        fixed(calc.Principal),
		TermMonths:       calc.TermMonths,
		PaymentFrequency: string(calc.PaymentFrequency),

		InterestAmount:             fixed(calc.InterestAmount),
		ProcessingFeeAmount:        fixed(calc.ProcessingFeeAmount),
		PlatformFeeAmount:          fixed(calc.PlatformFeeAmount),
		NetProceeds:                fixed(calc.NetProceeds),
		TotalRepayable:             fixed(calc.TotalRepayable),
		NumberOfInstallments:       calc.NumberOfInstallments,
		InstallmentAmount:          fixed(calc.InstallmentAmount),
		EffectiveAnnualRatePercent: calc.EffectiveAnnualRatePercent.StringFixed(2),

		GracePeriodDays: calc.GracePeriodDays,

		TotalUpfrontDeductions:       fixed(calc.TotalUpfrontDeductions),
		MonthlyEquivalentInstallment: fixed(calc.MonthlyEquivalentInstallment),
	}
	if calc.PenaltyPerDay != nil {
		resp.PenaltyPerDay = fixed(*calc.PenaltyPerDay)
	}
	return resp
}

func (h *handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req loanTermsRequest
	if !h.decode(w, r, &req) {
		return
	}

	terms := req.terms()
	if errs := validation.ValidateTerms(terms); len(errs) > 0 {
		h.respondValidationErrors(w, errs)
		return
	}

	h.respondJSON(w, http.StatusOK, newQuoteResponse(loancalc.Calculate(terms)))
}

type scheduleRequest struct {
	loanTermsRequest

	StartDate string `json:"startDate"`
	AsOf      string `json:"asOf,omitempty"`

	Payments           []paymentRequest `json:"payments,omitempty"`
	GracePeriodDays    *int             `json:"gracePeriodDays,omitempty"`
	LatePenaltyPercent float64          `json:"latePenaltyPercent,omitempty"`
	PenaltyCapPercent  float64          `json:"penaltyCapPercent,omitempty"`
	PenaltyPolicy      string           `json:"penaltyPolicy,omitempty"`
}

type paymentRequest struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

type installmentResponse struct {
	PaymentNumber     int    `json:"paymentNumber"`
	DueDate           string `json:"dueDate"`
	InstallmentAmount string `json:"installmentAmount"`
	PrincipalPortion  string `json:"principalPortion"`
	InterestPortion   string `json:"interestPortion"`
	RemainingBalance  string `json:"remainingBalance"`
	CumulativePaid    string `json:"cumulativePaid"`

	// Annotation fields, present only when payment history was supplied.
	AmountPaid           string `json:"amountPaid,omitempty"`
	OutstandingAmount    string `json:"outstandingAmount,omitempty"`
	Status               string `json:"status,omitempty"`
	DaysLate             int    `json:"daysLate,omitempty"`
	DaysOverdue          int    `json:"daysOverdue,omitempty"`
	GracePeriodDays      int    `json:"gracePeriodDays,omitempty"`
	GracePeriodRemaining int    `json:"gracePeriodRemaining,omitempty"`
	GracePeriodConsumed  bool   `json:"gracePeriodConsumed,omitempty"`
	PenaltyAmount        string `json:"penaltyAmount,omitempty"`
	TotalDue             string `json:"totalDue,omitempty"`
}

type scheduleSummaryResponse struct {
	TotalPaid           string `json:"totalPaid"`
	TotalOutstanding    string `json:"totalOutstanding"`
	TotalPenalty        string `json:"totalPenalty"`
	OverdueInstallments int    `json:"overdueInstallments"`
	NextDueNumber       int    `json:"nextDueNumber,omitempty"`
	NextDueDate         string `json:"nextDueDate,omitempty"`
}

type scheduleResponse struct {
	Quote        quoteResponse            `json:"quote"`
	Installments []installmentResponse    `json:"installments"`
	Summary      *scheduleSummaryResponse `json:"summary,omitempty"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !h.decode(w, r, &req) {
		return
	}

	terms := req.terms()
	if errs := validation.ValidateTerms(terms); len(errs) > 0 {
		h.respondValidationErrors(w, errs)
		return
	}

	startDate, err := time.Parse(dates.DateLayout, req.StartDate)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid startDate %q", req.StartDate))
		return
	}

	calc := loancalc.Calculate(terms)
	resp := scheduleResponse{Quote: newQuoteResponse(calc)}

	if len(req.Payments) == 0 {
		for _, installment := range loancalc.GenerateSchedule(calc, startDate) {
			resp.Installments = append(resp.Installments, previewInstallment(installment))
		}
		h.respondJSON(w, http.StatusOK, resp)
		return
	}

	ctx, err := h.scheduleContext(req, terms)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	annotated := loancalc.AnnotateSchedule(calc, startDate, ctx)
	for _, entry := range annotated {
		resp.Installments = append(resp.Installments, annotatedInstallment(entry))
	}

	summary := loancalc.SummarizeSchedule(annotated)
	summaryResp := scheduleSummaryResponse{
		TotalPaid:           fixed(summary.TotalPaid),
		TotalOutstanding:    fixed(summary.TotalOutstanding),
		TotalPenalty:        fixed(summary.TotalPenalty),
		OverdueInstallments: summary.OverdueInstallments,
		NextDueNumber:       summary.NextDueNumber,
	}
	if summary.NextDueNumber > 0 {
		summaryResp.NextDueDate = summary.NextDueDate.Format(dates.DateLayout)
	}
	resp.Summary = &summaryResp

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *handler) scheduleContext(req scheduleRequest, terms loancalc.LoanTerms) (loancalc.ScheduleContext, error) {
	ctx := loancalc.ScheduleContext{
		GracePeriodDays:    loancalc.GracePeriodDays(terms.PaymentFrequency),
		LatePenaltyPercent: decimal.NewFromFloat(req.LatePenaltyPercent),
		PenaltyCapPercent:  decimal.NewFromFloat(req.PenaltyCapPercent),
		PenaltyPolicy:      loancalc.PenaltyPolicy(req.PenaltyPolicy),
		Today:              h.now(),
		Logger:             h.logger,
	}

	if req.GracePeriodDays != nil {
		ctx.GracePeriodDays = *req.GracePeriodDays
	}

	if req.AsOf != "" {
		asOf, err := time.Parse(dates.DateLayout, req.AsOf)
		if err != nil {
			return ctx, fmt.Errorf("invalid asOf date %q", req.AsOf)
		}
		ctx.Today = asOf
	}

	for _, payment := range req.Payments {
		date, err := time.Parse(dates.DateLayout, payment.Date)
		if err != nil {
			return ctx, fmt.Errorf("invalid payment date %q", payment.Date)
		}
		ctx.Payments = append(ctx.Payments, loancalc.PaymentRecord{
			Amount: decimal.NewFromFloat(payment.Amount),
			Date:   date,
		})
	}

	return ctx, nil
}

func previewInstallment(installment loancalc.ScheduleInstallment) installmentResponse {
	return installmentResponse{
		PaymentNumber:     installment.PaymentNumber,
		DueDate:           installment.DueDate.Format(dates.DateLayout),
		InstallmentAmount: fixed(installment.InstallmentAmount),
		PrincipalPortion:  fixed(installment.PrincipalPortion),
		InterestPortion:   fixed(installment.InterestPortion),
		RemainingBalance:  fixed(installment.RemainingBalance),
		CumulativePaid:    fixed(installment.CumulativePaid),
	}
}

func annotatedInstallment(entry loancalc.AnnotatedInstallment) installmentResponse {
	resp := previewInstallment(entry.ScheduleInstallment)

	resp.AmountPaid = fixed(entry.AmountPaid)
	resp.OutstandingAmount = fixed(entry.OutstandingAmount)
	resp.Status = string(entry.Status)
	resp.DaysLate = entry.DaysLate
	resp.DaysOverdue = entry.DaysOverdue
	resp.GracePeriodDays = entry.GracePeriodDays
	resp.GracePeriodRemaining = entry.GracePeriodRemaining
	resp.GracePeriodConsumed = entry.GracePeriodConsumed
	resp.PenaltyAmount = fixed(entry.PenaltyAmount)
	resp.TotalDue = fixed(entry.TotalDue)

	return resp
}

type penaltyRequest struct {
	Policy string `json:"policy"` // linear, capped, tiered

	// linear
	InstallmentAmount  float64 `json:"installmentAmount,omitempty"`
	DueDate            string  `json:"dueDate,omitempty"`
	PaymentDate        string  `json:"paymentDate,omitempty"`
	PaymentFrequency   string  `json:"paymentFrequency,omitempty"`
	PenaltyRatePercent float64 `json:"penaltyRatePercent,omitempty"`

	// capped and tiered
	OutstandingAmount float64 `json:"outstandingAmount,omitempty"`
	DaysOverGrace     int     `json:"daysOverGrace,omitempty"`
	CapPercent        float64 `json:"capPercent,omitempty"`
}

type penaltyResponse struct {
	InstallmentAmount string `json:"installmentAmount,omitempty"`
	DaysLate          int    `json:"daysLate,omitempty"`
	GracePeriodDays   int    `json:"gracePeriodDays,omitempty"`
	EffectiveLateDays int    `json:"effectiveLateDays,omitempty"`
	PenaltyRate       string `json:"penaltyRate,omitempty"`
	PenaltyAmount     string `json:"penaltyAmount"`
	TotalDue          string `json:"totalDue,omitempty"`
}

func (h *handler) handlePenalty(w http.ResponseWriter, r *http.Request) {
	var req penaltyRequest
	if !h.decode(w, r, &req) {
		return
	}

	switch req.Policy {
	case "", "linear":
		dueDate, err := time.Parse(dates.DateLayout, req.DueDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid dueDate %q", req.DueDate))
			return
		}
		paymentDate, err := time.Parse(dates.DateLayout, req.PaymentDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid paymentDate %q", req.PaymentDate))
			return
		}

		result := loancalc.ComputePenalty(
			decimal.NewFromFloat(req.InstallmentAmount),
			dueDate,
			paymentDate,
			loancalc.PaymentFrequency(req.PaymentFrequency),
			decimal.NewFromFloat(req.PenaltyRatePercent),
		)
		h.respondJSON(w, http.StatusOK, penaltyResponse{
			InstallmentAmount: fixed(result.InstallmentAmount),
			DaysLate:          result.DaysLate,
			GracePeriodDays:   result.GracePeriodDays,
			EffectiveLateDays: result.EffectiveLateDays,
			PenaltyRate:       result.PenaltyRate.String(),
			PenaltyAmount:     fixed(result.PenaltyAmount),
			TotalDue:          fixed(result.TotalDue),
		})

	case "capped":
		penalty := loancalc.ComputeCappedPenalty(
			decimal.NewFromFloat(req.OutstandingAmount),
			req.DaysOverGrace,
			decimal.NewFromFloat(req.PenaltyRatePercent),
			decimal.NewFromFloat(req.CapPercent),
		)
		h.respondJSON(w, http.StatusOK, penaltyResponse{PenaltyAmount: fixed(penalty)})

	case "tiered":
		penalty := loancalc.ComputeTieredPenalty(
			decimal.NewFromFloat(req.OutstandingAmount),
			req.DaysOverGrace,
			decimal.NewFromFloat(req.CapPercent),
		)
		h.respondJSON(w, http.StatusOK, penaltyResponse{PenaltyAmount: fixed(penalty)})

	default:
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("unrecognized penalty policy %q", req.Policy))
	}
}

type settlementRequest struct {
	loanTermsRequest

	PaymentsMade int `json:"paymentsMade"`
}

type settlementResponse struct {
	QuoteID            string `json:"quoteId"`
	RemainingPrincipal string `json:"remainingPrincipal"`
	InterestRebate     string `json:"interestRebate"`
	TotalDue           string `json:"totalDue"`
	SavedInterest      string `json:"savedInterest"`
}

func (h *handler) handleSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if !h.decode(w, r, &req) {
		return
	}

	terms := req.terms()
	if errs := validation.ValidateTerms(terms); len(errs) > 0 {
		h.respondValidationErrors(w, errs)
		return
	}

	calc := loancalc.Calculate(terms)
	if err := validation.ValidatePaymentsMade(req.PaymentsMade, calc.NumberOfInstallments); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := loancalc.ComputeEarlySettlement(calc, req.PaymentsMade)
	h.respondJSON(w, http.StatusOK, settlementResponse{
		QuoteID:            uuid.NewString(),
		RemainingPrincipal: fixed(result.RemainingPrincipal),
		InterestRebate:     fixed(result.InterestRebate),
		TotalDue:           fixed(result.TotalDue),
		SavedInterest:      fixed(result.SavedInterest),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize))
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse request: %v", err))
		return false
	}
	return true
}

func (h *handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *handler) respondValidationErrors(w http.ResponseWriter, errs []error) {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	h.respondJSON(w, http.StatusBadRequest, map[string][]string{"errors": messages})
}

// fixed renders a monetary value rounded to two decimals for display.
func fixed(val decimal.Decimal) string {
	return money.Round2(val).StringFixed(2)
}

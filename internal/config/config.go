// Package config defines the data structures related to configuration and
// includes functions for loading and converting the config.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/microlend/loan-engine/pkg/dates"
	"github.com/microlend/loan-engine/pkg/loancalc"
)

// Configuration holds all configuration for loan-engine.
type Configuration struct {
	Loan     LoanConfig     `yaml:"loan"`
	Schedule ScheduleConfig `yaml:"schedule,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// LoanConfig holds the commercial terms of the loan being quoted. Term may be
// fractional; it is rounded to whole months the same way at every surface.
type LoanConfig struct {
	Principal            float64  `yaml:"principal"`
	TermMonths           float64  `yaml:"termMonths"`
	PaymentFrequency     string   `yaml:"paymentFrequency"`
	InterestRatePercent  float64  `yaml:"interestRatePercent"` // per month
	InterestType         string   `yaml:"interestType"`
	ProcessingFeePercent float64  `yaml:"processingFeePercent"`
	PlatformFeePerMonth  float64  `yaml:"platformFeePerMonth"`
	LatePenaltyPercent   *float64 `yaml:"latePenaltyPercent,omitempty"`

	DeductProcessingFeeUpfront bool `yaml:"deductProcessingFeeUpfront"`
	DeductPlatformFeeUpfront   bool `yaml:"deductPlatformFeeUpfront"`
	DeductInterestUpfront      bool `yaml:"deductInterestUpfront"`
}

// ScheduleConfig optionally requests a schedule preview, with real payment
// history for the annotated form.
type ScheduleConfig struct {
	StartDate          string          `yaml:"startDate"`
	AsOf               string          `yaml:"asOf,omitempty"`
	GracePeriodDays    *int            `yaml:"gracePeriodDays,omitempty"`
	LatePenaltyPercent float64         `yaml:"latePenaltyPercent,omitempty"`
	PenaltyCapPercent  float64         `yaml:"penaltyCapPercent,omitempty"`
	PenaltyPolicy      string          `yaml:"penaltyPolicy,omitempty"` // capped, tiered
	Payments           []PaymentConfig `yaml:"payments,omitempty"`
}

// PaymentConfig is one recorded payment against the loan.
type PaymentConfig struct {
	Amount float64 `yaml:"amount"`
	Date   string  `yaml:"date"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// Terms converts the loan section into engine terms. Fractional terms round
// to the nearest whole month, clamped to at least one.
func (l LoanConfig) Terms() loancalc.LoanTerms {
	terms := loancalc.LoanTerms{
		Principal:            decimal.NewFromFloat(l.Principal),
		TermMonths:           loancalc.NormalizeTermMonths(l.TermMonths),
		PaymentFrequency:     loancalc.PaymentFrequency(l.PaymentFrequency),
		InterestRatePercent:  decimal.NewFromFloat(l.InterestRatePercent),
		InterestType:         loancalc.InterestType(l.InterestType),
		ProcessingFeePercent: decimal.NewFromFloat(l.ProcessingFeePercent),
		PlatformFeePerMonth:  decimal.NewFromFloat(l.PlatformFeePerMonth),

		DeductProcessingFeeUpfront: l.DeductProcessingFeeUpfront,
		DeductPlatformFeeUpfront:   l.DeductPlatformFeeUpfront,
		DeductInterestUpfront:      l.DeductInterestUpfront,
	}

	if l.LatePenaltyPercent != nil {
		rate := decimal.NewFromFloat(*l.LatePenaltyPercent)
		terms.LatePenaltyPercent = &rate
	}

	return terms
}

// StartDate parses the schedule start date, defaulting to today when the
// schedule section is absent.
func (c *Configuration) StartDate(today time.Time) (time.Time, error) {
	if c.Schedule.StartDate == "" {
		return today, nil
	}
	start, err := time.Parse(dates.DateLayout, c.Schedule.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule start date %q: %w", c.Schedule.StartDate, err)
	}
	return start, nil
}

// ScheduleContext converts the schedule section into an annotation context.
// The grace period falls back to the frequency's table value when not set
// explicitly. today is injected by the caller so the engine stays off the
// system clock.
func (c *Configuration) ScheduleContext(terms loancalc.LoanTerms, today time.Time) (loancalc.ScheduleContext, error) {
	ctx := loancalc.ScheduleContext{
		GracePeriodDays:    loancalc.GracePeriodDays(terms.PaymentFrequency),
		LatePenaltyPercent: decimal.NewFromFloat(c.Schedule.LatePenaltyPercent),
		PenaltyCapPercent:  decimal.NewFromFloat(c.Schedule.PenaltyCapPercent),
		PenaltyPolicy:      loancalc.PenaltyPolicy(c.Schedule.PenaltyPolicy),
		Today:              today,
	}

	if c.Schedule.GracePeriodDays != nil {
		ctx.GracePeriodDays = *c.Schedule.GracePeriodDays
	}

	if c.Schedule.AsOf != "" {
		asOf, err := time.Parse(dates.DateLayout, c.Schedule.AsOf)
		if err != nil {
			return ctx, fmt.Errorf("invalid asOf date %q: %w", c.Schedule.AsOf, err)
		}
		ctx.Today = asOf
	}

	for _, payment := range c.Schedule.Payments {
		date, err := time.Parse(dates.DateLayout, payment.Date)
		if err != nil {
			return ctx, fmt.Errorf("invalid payment date %q: %w", payment.Date, err)
		}
		ctx.Payments = append(ctx.Payments, loancalc.PaymentRecord{
			Amount: decimal.NewFromFloat(payment.Amount),
			Date:   date,
		})
	}

	return ctx, nil
}

// HasPaymentHistory reports whether the config requests the annotated
// schedule form.
func (c *Configuration) HasPaymentHistory() bool {
	return len(c.Schedule.Payments) > 0
}

// Package constants provides shared constants for the loan-engine application.
package constants

// DateLayout is the format expected in config files and is also the output
// date format for due dates.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerMonth is the commercial month length used for installment
	// counting and monthly due-date stepping
	DaysPerMonth = 30

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// PaidTolerance is the rounding slack under which an installment counts
	// as fully paid (1 cent)
	PaidTolerance = 0.01
)

// Penalty constants
const (
	// DefaultPenaltyCapPercent caps accrued late penalty at this percentage
	// of the outstanding amount on an installment
	DefaultPenaltyCapPercent = 20

	// Tiered penalty rates, percent of outstanding per day
	TierOneRatePercent   = 1
	TierTwoRatePercent   = 2
	TierThreeRatePercent = 3

	// Tier boundaries in days over grace
	TierOneMaxDays = 10
	TierTwoMaxDays = 20
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the quote API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/microlend/loan-engine/internal/config"
	"github.com/microlend/loan-engine/internal/server"
	"github.com/microlend/loan-engine/pkg/constants"
	"github.com/microlend/loan-engine/pkg/loancalc"
	"github.com/microlend/loan-engine/pkg/output"
	"github.com/microlend/loan-engine/pkg/validation"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	serve := flag.Bool("serve", false, "run the HTTP quote API instead of a one-shot quote")
	listen := flag.String("listen", "", "listen address override for -serve")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	if *serve {
		runServer(*serverConfigLocation, *listen, *logLevel)
		return
	}

	// Load the config file to get loan terms and logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate the loan terms before touching the engine; the engine clamps
	// instead of rejecting, so misuse has to be caught here.
	terms := conf.Loan.Terms()
	if errs := validation.ValidateTerms(terms); len(errs) > 0 {
		for _, validationErr := range errs {
			logger.Error("invalid loan terms: "+validationErr.Error(),
				zap.String("op", "main"),
			)
		}
		logger.Fatal("refusing to quote invalid loan terms",
			zap.String("op", "main"),
		)
	}

	today := time.Now()
	startDate, err := conf.StartDate(today)
	if err != nil {
		logger.Fatal("failed to parse schedule start date",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	calc := loancalc.Calculate(terms)
	schedule := loancalc.GenerateSchedule(calc, startDate)

	if conf.HasPaymentHistory() {
		ctx, err := conf.ScheduleContext(terms, today)
		if err != nil {
			logger.Fatal("failed to build schedule context",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		ctx.Logger = logger

		annotated := loancalc.AnnotateSchedule(calc, startDate, ctx)
		summary := loancalc.SummarizeSchedule(annotated)
		logger.Info("payment position",
			zap.String("op", "main"),
			zap.String("totalPaid", summary.TotalPaid.StringFixed(2)),
			zap.String("totalOutstanding", summary.TotalOutstanding.StringFixed(2)),
			zap.String("totalPenalty", summary.TotalPenalty.StringFixed(2)),
			zap.Int("overdueInstallments", summary.OverdueInstallments),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(calc, schedule)
	case constants.OutputFormatCSV:
		output.CsvFormat(schedule)
	}
}

func runServer(configPath, listenOverride, logLevelOverride string) {
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("{\"op\": \"serve\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration\", \"error\": \"%v\"}\n", err)
		return
	}

	if listenOverride != "" {
		cfg.Address = listenOverride
	}

	logger, err := initializeLogger(cfg.Logging, logLevelOverride)
	if err != nil {
		fmt.Printf("{\"op\": \"serve\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	handler := server.NewHandler(logger, cfg.BodySizeBytes(), version)

	logger.Info("starting quote API",
		zap.String("op", "serve"),
		zap.String("address", cfg.Address),
	)
	if err := http.ListenAndServe(cfg.Address, handler); err != nil {
		logger.Fatal("server stopped",
			zap.String("op", "serve"),
			zap.Error(err),
		)
	}
}

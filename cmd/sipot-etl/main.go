package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sipotcli/internal/config"
	"sipotcli/internal/dataprocessing"
	"sipotcli/internal/exporter"
	"sipotcli/internal/files"
	"sipotcli/internal/infrastructure"
	"sipotcli/internal/validation"
	"sipotcli/pkg/contracts"
	"sipotcli/pkg/contracts/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// flagValues holds the command line overrides
type flagValues struct {
	configFile  string
	inputDir    string
	outputFile  string
	contract    string
	workers     int
	logLevel    string
	metricsFile string
	trace       string
}

func newRootCmd() *cobra.Command {
	var flags flagValues

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Unify SIPOT/PNT procurement reports into one CSV",
		Long: `Reads every spreadsheet and CSV report below --input_dir whose file name
contains the contract type, keeps the documents that declare the matching
format, and writes one deduplicated table to --output_file. For
licitaciones, the bidder detail tables are written next to it with the
-APENDICE suffix.`,
		Version:      contracts.GetFullVersionString(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			logger, err := infrastructure.InitializeLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer infrastructure.CloseLogFile()

			if err := run(cmd.Context(), cfg, logger, cmd.OutOrStdout()); err != nil {
				infrastructure.WithError(logger, err).Error("ETL run failed")
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config", "", "path to a YAML config file (default "+config.DefaultConfigFile+" when present)")
	f.StringVar(&flags.inputDir, "input_dir", "", "root directory holding the Excel/CSV reports")
	f.StringVar(&flags.outputFile, "output_file", "", "path of the CSV file to write")
	f.StringVar(&flags.contract, "type", "", "contract type to process, one of: "+domain.ContractTypeNames())
	f.IntVar(&flags.workers, "workers", config.DefaultWorkers, "number of documents processed in parallel")
	f.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	f.StringVar(&flags.trace, "trace", "", "trace exporter: none or stdout")

	return cmd
}

// loadConfig merges file, environment and flags, flags winning
func loadConfig(cmd *cobra.Command, flags flagValues) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("input_dir") {
		cfg.ETL.InputDir = flags.inputDir
	}
	if changed("output_file") {
		cfg.ETL.OutputFile = flags.outputFile
	}
	if changed("type") {
		cfg.ETL.ContractType = flags.contract
	}
	if changed("workers") {
		cfg.ETL.Workers = flags.workers
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if changed("metrics-file") {
		cfg.Telemetry.MetricsFile = flags.metricsFile
	}
	if changed("trace") {
		cfg.Telemetry.TraceExporter = flags.trace
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run executes one ETL run. Only environment failures are returned; document
// level problems are logged and counted.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, traceOut io.Writer) error {
	start := time.Now()
	ctx = infrastructure.WithTraceID(ctx, infrastructure.NewRunID())

	contractType, err := domain.ParseContractType(cfg.ETL.ContractType)
	if err != nil {
		return err
	}
	spec, err := domain.SpecFor(contractType)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Starting SIPOT ETL",
		slog.String("input_dir", cfg.ETL.InputDir),
		slog.String("output_file", cfg.ETL.OutputFile),
		slog.String("contract_type", string(contractType)),
		slog.Int("workers", cfg.ETL.Workers))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(cfg.ETL.InputDir, "**/*.{xls*,csv}"); err != nil {
		return err
	}
	outputDir := filepath.Dir(cfg.ETL.OutputFile)
	if err := validator.ValidateOutputDirectory(outputDir); err != nil {
		return err
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, traceOut, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.NewETLMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	docs, err := files.NewDiscovery(cfg.ETL.InputDir, logger).FindDocuments(spec.Keyword())
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Files found",
		slog.Int("count", len(docs)),
		slog.Int64("bytes", files.TotalSize(docs)))

	pipeline := dataprocessing.NewPipeline(spec, dataprocessing.Options{
		Workers:  cfg.ETL.Workers,
		Logger:   infrastructure.WithComponent(logger, "pipeline"),
		Reporter: dataprocessing.NewLogReporter(logger),
		Tracer:   providers.Tracer,
		Metrics:  metrics,
	})
	result, err := pipeline.Run(ctx, files.Paths(docs))
	if err != nil {
		return err
	}

	writer := exporter.NewCSVWriter(logger)
	if !result.Empty() {
		if err := writer.WriteTable(cfg.ETL.OutputFile, result.Primary); err != nil {
			return err
		}
		logger.InfoContext(ctx, "Primary table saved",
			slog.String("path", cfg.ETL.OutputFile),
			slog.Int("rows", result.Primary.Len()))
	}
	if result.Appendix.Len() > 0 {
		appendixPath := files.AppendixPath(cfg.ETL.OutputFile, cfg.ETL.AppendixSuffix)
		if err := writer.WriteTable(appendixPath, result.Appendix); err != nil {
			return err
		}
		logger.InfoContext(ctx, "Appendix table saved",
			slog.String("path", appendixPath),
			slog.Int("rows", result.Appendix.Len()))
	}

	if cfg.Telemetry.MetricsFile != "" {
		if err := providers.WriteMetrics(cfg.Telemetry.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file",
				slog.String("path", cfg.Telemetry.MetricsFile),
				slog.String("error", err.Error()))
		}
	}

	logger.InfoContext(ctx, "SIPOT ETL finished",
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "sipotcli/internal/errors"
	"sipotcli/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	ETL       ETLConfig       `yaml:"etl" envconfig:"ETL"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ETLConfig contains the run parameters of the pipeline
type ETLConfig struct {
	InputDir       string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	OutputFile     string `yaml:"output_file" envconfig:"OUTPUT_FILE" validate:"required"`
	ContractType   string `yaml:"contract_type" envconfig:"CONTRACT_TYPE" validate:"required,contract_type"`
	Workers        int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	AppendixSuffix string `yaml:"appendix_suffix" envconfig:"APPENDIX_SUFFIX" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	// TraceExporter is "none" or "stdout"
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	// MetricsFile, when set, receives the run metrics in Prometheus text format
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// SIPOT_* environment variables, in increasing order of precedence.
// An empty path falls back to DefaultConfigFile when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", path)
		}
	}

	// Fields without a matching variable keep their current value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()
	return cfg, nil
}

// loadFromFile overlays YAML configuration onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize fills blanks left by partial files and canonicalizes enums
func (c *Config) normalize() {
	c.ETL.ContractType = strings.ToLower(strings.TrimSpace(c.ETL.ContractType))
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Telemetry.TraceExporter = strings.ToLower(c.Telemetry.TraceExporter)

	if c.ETL.Workers == 0 {
		c.ETL.Workers = DefaultWorkers
	}
	if c.ETL.AppendixSuffix == "" {
		c.ETL.AppendixSuffix = DefaultAppendixSuffix
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	// Always JSON
	c.Logging.Format = DefaultLogFormat
	if c.Logging.Output == "" {
		c.Logging.Output = DefaultLogOutput
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	if c.Telemetry.TraceExporter == "" {
		c.Telemetry.TraceExporter = DefaultTraceExporter
	}
}

// Validate checks the configuration once every source, flags included, has been applied
func (c *Config) Validate() error {
	c.normalize()

	validate := validator.New()
	if err := validate.RegisterValidation("contract_type", isContractType); err != nil {
		return apperrors.NewConfigError("failed to register validators", err)
	}
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// isContractType accepts the contract types the pipeline knows how to process
func isContractType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, ct := range domain.ContractTypes() {
		if value == string(ct) {
			return true
		}
	}
	return false
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		ETL: ETLConfig{
			Workers:        DefaultWorkers,
			AppendixSuffix: DefaultAppendixSuffix,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: DefaultTraceExporter,
		},
	}
}

package config

import "sipotcli/pkg/contracts"

// Application constants
const (
	AppName    = "sipot-etl"
	AppVersion = contracts.Version

	// EnvPrefix is the prefix of every environment variable read by Load
	EnvPrefix = "SIPOT"

	// DefaultConfigFile is looked up in the working directory when no path is given
	DefaultConfigFile = "sipot-etl.yaml"

	// DefaultAppendixSuffix is appended to the primary output stem to name the appendix file
	DefaultAppendixSuffix = "-APENDICE"

	DefaultWorkers = 1
	MaxWorkers     = 64

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "console"
	DefaultLogFile   = "logs/sipot-etl.log"

	// Telemetry
	DefaultTraceExporter = "none"
)

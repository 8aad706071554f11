// Package config provides configuration management for the SIPOT ETL.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command-line flags (applied by the caller after Load)
//	2. Environment variables
//	3. YAML configuration file
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SIPOT_<SECTION>_<FIELD>:
//
//	SIPOT_ETL_INPUT_DIR=/data/pnt
//	SIPOT_ETL_CONTRACT_TYPE=licitaciones
//	SIPOT_ETL_WORKERS=4
//	SIPOT_LOGGING_LEVEL=debug
//	SIPOT_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/sipot.prom
//
// # Validation
//
// Load only parses. Call Validate once flags have been applied; it checks
// required run parameters, the contract type and the enumerated settings.
package config

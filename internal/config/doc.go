// Package config provides centralized configuration management for the converter.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority), optionally seeded from a .env file
//	2. A YAML configuration file (BOVESPA_CONFIG or ./config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern BOVESPA_<SECTION>_<FIELD>:
//
//	BOVESPA_PATHS_INPUT_DIR=/data/raw
//	BOVESPA_PIPELINE_OUTPUT_RESOLUTION=minute
//	BOVESPA_PIPELINE_START_DATE=20170101
//	BOVESPA_PIPELINE_RATIO_OVERRIDES=9512:0.1
//	BOVESPA_EVENTS_SOURCE=http
//
// # Validation
//
// Struct tags are checked with go-playground/validator, followed by cross-field
// rules such as end date not before start date. Every failure is returned as an
// AppError of type CONFIGURATION_INVALID, which callers treat as fatal.
//
// # Paths
//
// NewPaths derives the LEAN directory layout from a loaded Config:
//
//	paths := config.NewPaths(cfg)
//	mapFile := paths.GetMapFilePath("PETR4")
package config

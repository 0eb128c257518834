package config

import "time"

const (
	AppName    = "bovespacli"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. BOVESPA_PATHS_INPUT_DIR
	EnvPrefix = "BOVESPA"

	// DateLayout is the YYYYMMDD layout used by config dates and output files
	DateLayout = "20060102"

	DefaultInputDir  = "data/raw"
	DefaultOutputDir = "data/lean"
	DefaultLogsDir   = "logs"
	DefaultWorkers   = 4

	DefaultHTTPTimeout = 30 * time.Second
	DefaultStepTimeout = 2 * time.Hour
	DataCacheDuration  = 5 * time.Minute

	// Market is the LEAN market folder name
	Market = "bra"

	ErrorLogFileName = "error.txt"
	HolidayFileName  = "holidays.txt"
	ManifestFileName = "run_manifest.json"

	RenameCandidatesFileName = "tickerchange_candidates.txt"
)

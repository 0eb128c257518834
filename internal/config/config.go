package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "bovespacli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Events   EventsConfig   `yaml:"events" envconfig:"EVENTS"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains input and output locations. Relative paths resolve against BaseDir.
type PathsConfig struct {
	BaseDir        string `yaml:"base_dir" envconfig:"BASE_DIR"`
	InputDir       string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	OutputDir      string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	Instruments    string `yaml:"instruments" envconfig:"INSTRUMENTS" validate:"required"`
	Holidays       string `yaml:"holidays" envconfig:"HOLIDAYS"`
	Renames        string `yaml:"renames" envconfig:"RENAMES"`
	Issuers        string `yaml:"issuers" envconfig:"ISSUERS"`
	EventsDir      string `yaml:"events_dir" envconfig:"EVENTS_DIR"`
	EventsWorkbook string `yaml:"events_workbook" envconfig:"EVENTS_WORKBOOK"`
	LogsDir        string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PipelineConfig controls what a run converts and how
type PipelineConfig struct {
	SecurityType     string                   `yaml:"security_type" envconfig:"SECURITY_TYPE" validate:"oneof=equity option future"`
	InputDataType    string                   `yaml:"input_data_type" envconfig:"INPUT_DATA_TYPE" validate:"oneof=daily trade ask bid"`
	OutputResolution string                   `yaml:"output_resolution" envconfig:"OUTPUT_RESOLUTION" validate:"oneof=daily hour minute second"`
	StartDate        string                   `yaml:"start_date" envconfig:"START_DATE" validate:"omitempty,len=8,numeric"`
	EndDate          string                   `yaml:"end_date" envconfig:"END_DATE" validate:"omitempty,len=8,numeric"`
	Workers          int                      `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=256"`
	Locale           string                   `yaml:"locale" envconfig:"LOCALE" validate:"oneof=pt-BR en-US"`
	ActiveSentinel   string                   `yaml:"active_sentinel" envconfig:"ACTIVE_SENTINEL" validate:"len=8,numeric"`
	ActiveWindow     time.Duration            `yaml:"active_window" envconfig:"ACTIVE_WINDOW" validate:"gt=0"`
	InstrumentList   []string                 `yaml:"instrument_list" envconfig:"INSTRUMENT_LIST"`
	BarFormat        string                   `yaml:"bar_format" envconfig:"BAR_FORMAT" validate:"oneof=csv parquet"`
	ExportFormat     string                   `yaml:"export_format" envconfig:"EXPORT_FORMAT" validate:"oneof=csv xlsx"`
	RatioOverrides   map[string]string        `yaml:"ratio_overrides" envconfig:"RATIO_OVERRIDES"`
	StepTimeout      time.Duration            `yaml:"step_timeout" envconfig:"STEP_TIMEOUT" validate:"gt=0"`
	StepTimeouts     map[string]time.Duration `yaml:"step_timeouts" envconfig:"STEP_TIMEOUTS" validate:"dive,gt=0"`
	ContinueOnError  bool                     `yaml:"continue_on_error" envconfig:"CONTINUE_ON_ERROR"`
	DetectRenames    bool                     `yaml:"detect_renames" envconfig:"DETECT_RENAMES"`
}

// EventsConfig selects the corporate-event source
type EventsConfig struct {
	Source        string        `yaml:"source" envconfig:"SOURCE" validate:"oneof=dir workbook http none"`
	BaseURL       string        `yaml:"base_url" envconfig:"BASE_URL" validate:"omitempty,url"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	RatePerSecond float64       `yaml:"rate_per_second" envconfig:"RATE_PER_SECOND" validate:"gt=0"`
	Burst         int           `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// ServerConfig contains the query API server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	CacheTTL        time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"min=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"min=0"`
}

// MetricsConfig toggles OpenTelemetry exporters
type MetricsConfig struct {
	Enabled       bool    `yaml:"enabled" envconfig:"ENABLED"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
}

// Load loads configuration with precedence env > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	// Missing .env is not an error
	_ = godotenv.Load()

	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	// Fields without a matching variable keep the file or default value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths makes every configured path absolute
func (c *Config) resolvePaths() error {
	base := c.Paths.BaseDir
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("failed to resolve base dir: %w", err)
	}
	c.Paths.BaseDir = abs

	for _, p := range []*string{
		&c.Paths.InputDir, &c.Paths.OutputDir, &c.Paths.Instruments, &c.Paths.Holidays,
		&c.Paths.Renames, &c.Paths.Issuers, &c.Paths.EventsDir, &c.Paths.EventsWorkbook,
		&c.Paths.LogsDir, &c.Logging.FilePath,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(abs, *p)
		}
	}
	return nil
}

var validate = validator.New()

// Validate checks struct tags and cross-field rules. Every failure is CONFIGURATION_INVALID.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	start, end, err := c.Pipeline.DateRange()
	if err != nil {
		return apperrors.NewConfigError("invalid date range", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return apperrors.NewConfigError(
			fmt.Sprintf("end date %s is before start date %s", c.Pipeline.EndDate, c.Pipeline.StartDate), nil)
	}

	if _, err := time.Parse(DateLayout, c.Pipeline.ActiveSentinel); err != nil {
		return apperrors.NewConfigError("invalid active sentinel", err)
	}

	if c.Pipeline.InputDataType == "daily" && c.Pipeline.OutputResolution != "daily" {
		return apperrors.NewConfigError("daily input can only produce daily output", nil)
	}

	if c.Events.Source == "http" && c.Events.BaseURL == "" {
		return apperrors.NewConfigError("events base url is required for the http source", nil)
	}

	for code, ratio := range c.Pipeline.RatioOverrides {
		if strings.TrimSpace(code) == "" || strings.TrimSpace(ratio) == "" {
			return apperrors.NewConfigError("ratio overrides need issuer:ratio pairs", nil)
		}
	}

	return nil
}

// DateRange parses StartDate and EndDate. Empty values yield zero times.
func (p PipelineConfig) DateRange() (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if p.StartDate != "" {
		if start, err = time.Parse(DateLayout, p.StartDate); err != nil {
			return start, end, fmt.Errorf("start date: %w", err)
		}
	}
	if p.EndDate != "" {
		if end, err = time.Parse(DateLayout, p.EndDate); err != nil {
			return start, end, fmt.Errorf("end date: %w", err)
		}
	}
	return start, end, nil
}

// Sentinel returns the parsed ActiveSentinel date
func (p PipelineConfig) Sentinel() time.Time {
	t, err := time.Parse(DateLayout, p.ActiveSentinel)
	if err != nil {
		return time.Date(2049, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: filepath.Join(DefaultLogsDir, "converter.log"),
		},
		Paths: PathsConfig{
			InputDir:    DefaultInputDir,
			OutputDir:   DefaultOutputDir,
			Instruments: "instruments.txt",
			Holidays:    "holidays.txt",
			Renames:     "tickerchange.txt",
			Issuers:     "codes.csv",
			EventsDir:   "events",
			LogsDir:     DefaultLogsDir,
		},
		Pipeline: PipelineConfig{
			SecurityType:     "equity",
			InputDataType:    "daily",
			OutputResolution: "daily",
			Workers:          DefaultWorkers,
			Locale:           "pt-BR",
			ActiveSentinel:   "20491231",
			ActiveWindow:     365 * 24 * time.Hour,
			BarFormat:        "csv",
			ExportFormat:     "csv",
			RatioOverrides:   map[string]string{"9512": "0.1"},
			StepTimeout:      DefaultStepTimeout,
			ContinueOnError:  true,
		},
		Events: EventsConfig{
			Source:        "dir",
			Timeout:       DefaultHTTPTimeout,
			RatePerSecond: 2,
			Burst:         1,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CacheTTL:        DataCacheDuration,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
	}
}

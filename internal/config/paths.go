package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains every directory and file a run reads or writes.
// Layout follows LEAN: <root>/<security>/bra/{daily,tick,map_files,factor_files,<resolution>}.
type Paths struct {
	InputDir       string
	OutputDir      string
	DailyDir       string
	TickDir        string
	MapFilesDir    string
	FactorFilesDir string
	BarsRootDir    string
	ExportDir      string
	LogsDir        string
	CotahistDir    string
	NegDir         string

	InstrumentsFile string
	HolidaysFile    string
	RenamesFile     string
	IssuersFile     string
	EventsDir       string
	EventsWorkbook  string
	ErrorLogFile    string
	CalendarFile    string
	ManifestFile    string

	RenameCandidatesFile string
}

// NewPaths derives the run layout from a resolved configuration
func NewPaths(cfg *Config) *Paths {
	sec := cfg.Pipeline.SecurityType
	in := filepath.Join(cfg.Paths.InputDir, sec, Market)
	out := filepath.Join(cfg.Paths.OutputDir, sec, Market)

	return &Paths{
		InputDir:       cfg.Paths.InputDir,
		OutputDir:      cfg.Paths.OutputDir,
		DailyDir:       filepath.Join(in, "daily"),
		TickDir:        filepath.Join(in, "tick"),
		MapFilesDir:    filepath.Join(out, "map_files"),
		FactorFilesDir: filepath.Join(out, "factor_files"),
		BarsRootDir:    out,
		ExportDir:      filepath.Join(cfg.Paths.OutputDir, "custom"),
		LogsDir:        cfg.Paths.LogsDir,
		CotahistDir:    filepath.Join(cfg.Paths.InputDir, "cotahist"),
		NegDir:         filepath.Join(cfg.Paths.InputDir, "neg"),

		InstrumentsFile: cfg.Paths.Instruments,
		HolidaysFile:    cfg.Paths.Holidays,
		RenamesFile:     cfg.Paths.Renames,
		IssuersFile:     cfg.Paths.Issuers,
		EventsDir:       cfg.Paths.EventsDir,
		EventsWorkbook:  cfg.Paths.EventsWorkbook,
		ErrorLogFile:    filepath.Join(cfg.Paths.OutputDir, ErrorLogFileName),
		CalendarFile:    filepath.Join(cfg.Paths.OutputDir, HolidayFileName),
		ManifestFile:    filepath.Join(cfg.Paths.OutputDir, ManifestFileName),

		RenameCandidatesFile: filepath.Join(cfg.Paths.OutputDir, RenameCandidatesFileName),
	}
}

// EnsureDirectories creates all output directories
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.OutputDir, p.MapFilesDir, p.FactorFilesDir, p.ExportDir}
	if p.LogsDir != "" {
		dirs = append(dirs, p.LogsDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetDailyPath returns the raw daily history file of a symbol
func (p *Paths) GetDailyPath(symbol string) string {
	return filepath.Join(p.DailyDir, strings.ToLower(symbol)+".csv")
}

// GetTickDir returns the directory holding one tick file per trading day for a symbol
func (p *Paths) GetTickDir(symbol string) string {
	return filepath.Join(p.TickDir, strings.ToLower(symbol))
}

// GetTickPath returns the raw tick file of a symbol on a date
func (p *Paths) GetTickPath(symbol string, date time.Time, dataType string) string {
	return filepath.Join(p.GetTickDir(symbol), date.Format(DateLayout)+"_"+dataType+".csv")
}

// GetMapFilePath returns the map file of a symbol
func (p *Paths) GetMapFilePath(symbol string) string {
	return filepath.Join(p.MapFilesDir, strings.ToLower(symbol)+".csv")
}

// GetFactorFilePath returns the factor file of a symbol
func (p *Paths) GetFactorFilePath(symbol string) string {
	return filepath.Join(p.FactorFilesDir, strings.ToLower(symbol)+".csv")
}

// GetBarsDir returns the bar output directory for a resolution and symbol
func (p *Paths) GetBarsDir(resolution, symbol string) string {
	return filepath.Join(p.BarsRootDir, resolution, strings.ToLower(symbol))
}

// GetExportPath returns the adjusted export file for a symbol
func (p *Paths) GetExportPath(symbol, resolution, ext string) string {
	return filepath.Join(p.ExportDir, strings.ToUpper(symbol)+"_"+resolution+"."+ext)
}

// LogPathResolution logs the resolved layout at debug level
func (p *Paths) LogPathResolution() {
	slog.Debug("Resolved paths",
		slog.String("input_dir", p.InputDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("daily_dir", p.DailyDir),
		slog.String("tick_dir", p.TickDir),
		slog.String("map_files_dir", p.MapFilesDir),
		slog.String("factor_files_dir", p.FactorFilesDir),
		slog.String("export_dir", p.ExportDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

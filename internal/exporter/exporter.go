package exporter

import (
	"fmt"
	"log/slog"

	"bovespacli/internal/bars"
	"bovespacli/internal/config"
	apperrors "bovespacli/internal/errors"
	"bovespacli/pkg/contracts/domain"
)

// Output formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var (
	dailyHeaders = []string{"Symbol", "Date", "Open", "High", "Low", "Close", "Volume"}
	barHeaders   = []string{"Symbol", "Date", "Time", "Open", "High", "Low", "Close", "Volume", "Notional"}
)

// Exporter writes factor-adjusted series for one symbol at a time
type Exporter struct {
	paths  *config.Paths
	csv    *CSVWriter
	excel  *ExcelWriter
	locale Locale
	format string
	logger *slog.Logger
}

// New creates an exporter. format is FormatCSV or FormatXLSX.
func New(paths *config.Paths, locale Locale, format string, logger *slog.Logger) (*Exporter, error) {
	if format != FormatCSV && format != FormatXLSX {
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown export format %q", format), nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		paths:  paths,
		csv:    NewCSVWriter(paths),
		excel:  NewExcelWriter(),
		locale: locale,
		format: format,
		logger: logger,
	}, nil
}

// ExportDaily writes the adjusted daily history of symbol and returns the file path
func (e *Exporter) ExportDaily(symbol string, recs []domain.DailyRecord, points []domain.FactorPoint) (string, error) {
	adj := NewAdjuster(points)
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = adj.DailyRow(e.locale, symbol, r)
	}
	return e.write(symbol, string(domain.ResolutionDaily), dailyHeaders, rows)
}

// ExportBars writes the adjusted intraday bars of symbol, days in the given order.
// CSV output is streamed day by day since intraday series can be large.
func (e *Exporter) ExportBars(symbol string, res domain.Resolution, days []bars.Day, points []domain.FactorPoint) (string, error) {
	adj := NewAdjuster(points)
	if e.format == FormatCSV {
		return e.streamBars(symbol, string(res), adj, days)
	}
	var rows [][]string
	for _, d := range days {
		rows = append(rows, adj.BarRows(e.locale, d)...)
	}
	return e.write(symbol, string(res), barHeaders, rows)
}

func (e *Exporter) streamBars(symbol, resolution string, adj *Adjuster, days []bars.Day) (string, error) {
	path := e.paths.GetExportPath(symbol, resolution, e.format)
	sw, err := e.csv.CreateStreamWriter(path, nil)
	if err != nil {
		return "", apperrors.NewStorageError("failed to export series", err).WithContext("file", path)
	}
	for _, d := range days {
		for _, row := range adj.BarRows(e.locale, d) {
			if err := sw.WriteRecord(row); err != nil {
				sw.Abort()
				return "", apperrors.NewStorageError("failed to export series", err).WithContext("file", path)
			}
		}
	}
	if err := sw.Close(); err != nil {
		return "", apperrors.NewStorageError("failed to export series", err).WithContext("file", path)
	}

	e.logger.Debug("series exported",
		slog.String("symbol", symbol),
		slog.String("resolution", resolution),
		slog.String("file_path", path),
		slog.Int("rows", sw.Count()))
	return path, nil
}

func (e *Exporter) write(symbol, resolution string, headers []string, rows [][]string) (string, error) {
	path := e.paths.GetExportPath(symbol, resolution, e.format)

	var err error
	if e.format == FormatXLSX {
		err = e.excel.Write(path, symbol, headers, rows)
	} else {
		err = e.csv.WriteRecords(path, rows)
	}
	if err != nil {
		return "", apperrors.NewStorageError("failed to export series", err).WithContext("file", path)
	}

	e.logger.Debug("series exported",
		slog.String("symbol", symbol),
		slog.String("resolution", resolution),
		slog.String("file_path", path),
		slog.Int("rows", len(rows)))
	return path, nil
}

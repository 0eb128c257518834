package bars

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
	"bovespacli/pkg/contracts/domain"
)

// Day is the bars of one symbol on one trading day
type Day struct {
	Symbol string
	Date   time.Time
	Bars   []domain.Bar
}

// Sink persists a day of bars
type Sink interface {
	Extension() string
	Save(path string, day Day) error
	Load(path string) (Day, error)
}

// NewSink returns the sink for a configured format ("csv" or "parquet")
func NewSink(format string) (Sink, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return CSVSink{}, nil
	case "parquet":
		return ParquetSink{}, nil
	}
	return nil, apperrors.NewConfigError(fmt.Sprintf("unknown bar format %q", format), nil)
}

// FileName is "<YYYYMMDD>_<symbol>.<ext>"
func FileName(s Sink, symbol string, date time.Time) string {
	return date.Format(domain.DateLayout) + "_" + strings.ToLower(symbol) + "." + s.Extension()
}

// CSVSink writes "millis,open,high,low,close,volume,notional" lines
type CSVSink struct{}

func (CSVSink) Extension() string { return "csv" }

func (CSVSink) Save(path string, day Day) error {
	lines := make([]string, len(day.Bars))
	for i, b := range day.Bars {
		lines[i] = fmt.Sprintf("%d,%d,%d,%d,%d,%d,%s", b.BucketKey, b.Open, b.High, b.Low, b.Close, b.Volume, b.Notional.String())
	}
	if err := files.WriteLinesAtomic(path, lines); err != nil {
		return apperrors.NewStorageError("failed to write bar file", err).WithContext("file", path)
	}
	return nil
}

func (CSVSink) Load(path string) (Day, error) {
	day, err := dayFromName(path)
	if err != nil {
		return Day{}, err
	}
	lines, err := files.ReadLines(path)
	if err != nil {
		return Day{}, apperrors.NewMissingInputError(path, err)
	}
	for i, line := range lines {
		b, err := parseCSVBar(line)
		if err != nil {
			return Day{}, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "invalid bar row", err)
		}
		day.Bars = append(day.Bars, b)
	}
	return day, nil
}

func parseCSVBar(line string) (domain.Bar, error) {
	cols := strings.Split(line, ",")
	if len(cols) != 7 {
		return domain.Bar{}, fmt.Errorf("expected 7 columns, got %d", len(cols))
	}
	var n [6]int64
	for i := range n {
		v, err := strconv.ParseInt(cols[i], 10, 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("invalid number %q", cols[i])
		}
		n[i] = v
	}
	notional, err := decimal.NewFromString(cols[6])
	if err != nil {
		return domain.Bar{}, fmt.Errorf("invalid notional %q", cols[6])
	}
	return domain.Bar{BucketKey: n[0], Open: n[1], High: n[2], Low: n[3], Close: n[4], Volume: n[5], Notional: notional}, nil
}

// parquetBar is the on-disk row of ParquetSink
type parquetBar struct {
	Symbol    string `parquet:"symbol,dict"`
	Date      string `parquet:"date"`
	BucketKey int64  `parquet:"t"`
	Open      int64  `parquet:"o"`
	High      int64  `parquet:"h"`
	Low       int64  `parquet:"l"`
	Close     int64  `parquet:"c"`
	Volume    int64  `parquet:"v"`
	Notional  string `parquet:"n"`
}

// ParquetSink writes one parquet file per day
type ParquetSink struct{}

func (ParquetSink) Extension() string { return "parquet" }

func (ParquetSink) Save(path string, day Day) error {
	rows := make([]parquetBar, len(day.Bars))
	for i, b := range day.Bars {
		rows[i] = parquetBar{
			Symbol:    day.Symbol,
			Date:      day.Date.Format(domain.DateLayout),
			BucketKey: b.BucketKey,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
			Notional:  b.Notional.String(),
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create bar directory", err)
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return apperrors.NewStorageError("failed to write parquet bars", err).WithContext("file", path)
	}
	return nil
}

func (ParquetSink) Load(path string) (Day, error) {
	day, err := dayFromName(path)
	if err != nil {
		return Day{}, err
	}
	rows, err := parquet.ReadFile[parquetBar](path)
	if err != nil {
		if os.IsNotExist(err) {
			return Day{}, apperrors.NewMissingInputError(path, err)
		}
		return Day{}, apperrors.NewMalformedRecordError(path, "invalid parquet bars", err)
	}
	for _, r := range rows {
		notional, err := decimal.NewFromString(r.Notional)
		if err != nil {
			return Day{}, apperrors.NewMalformedRecordError(path, "invalid notional", err)
		}
		day.Bars = append(day.Bars, domain.Bar{
			BucketKey: r.BucketKey, Open: r.Open, High: r.High, Low: r.Low,
			Close: r.Close, Volume: r.Volume, Notional: notional,
		})
	}
	return day, nil
}

// dayFromName recovers symbol and date from "<YYYYMMDD>_<symbol>.<ext>"
func dayFromName(path string) (Day, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	date, sym, ok := strings.Cut(base, "_")
	if !ok {
		return Day{}, apperrors.NewMalformedRecordError(path, "bar file name must be <date>_<symbol>", nil)
	}
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return Day{}, apperrors.NewMalformedRecordError(path, "bar file name has no date", err)
	}
	return Day{Symbol: strings.ToUpper(sym), Date: d}, nil
}

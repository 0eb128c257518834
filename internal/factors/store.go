package factors

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
	"bovespacli/pkg/contracts/domain"
)

// FormatLine renders "YYYYMMDD,price,split" with nine fractional digits
func FormatLine(p domain.FactorPoint) string {
	return p.Date.Format(domain.DateLayout) + "," +
		p.PriceFactor.StringFixedBank(Precision) + "," +
		p.SplitFactor.StringFixedBank(Precision)
}

// ParseLine parses one factor file row
func ParseLine(line string) (domain.FactorPoint, error) {
	cols := strings.Split(strings.TrimSpace(line), ",")
	if len(cols) != 3 {
		return domain.FactorPoint{}, fmt.Errorf("expected 3 columns in %q", line)
	}
	d, err := time.Parse(domain.DateLayout, cols[0])
	if err != nil {
		return domain.FactorPoint{}, fmt.Errorf("invalid date in %q", line)
	}
	price, err := decimal.NewFromString(cols[1])
	if err != nil {
		return domain.FactorPoint{}, fmt.Errorf("invalid price factor in %q", line)
	}
	split, err := decimal.NewFromString(cols[2])
	if err != nil {
		return domain.FactorPoint{}, fmt.Errorf("invalid split factor in %q", line)
	}
	return domain.FactorPoint{Date: d, PriceFactor: price, SplitFactor: split}, nil
}

// Write replaces path with the series
func Write(path string, points []domain.FactorPoint) error {
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = FormatLine(p)
	}
	if err := files.WriteLinesAtomic(path, lines); err != nil {
		return apperrors.NewStorageError("failed to write factor file", err).WithContext("file", path)
	}
	return nil
}

// Read loads a factor file sorted by date
func Read(path string) ([]domain.FactorPoint, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, apperrors.NewMissingInputError(path, err)
	}
	out := make([]domain.FactorPoint, 0, len(lines))
	for i, line := range lines {
		p, err := ParseLine(line)
		if err != nil {
			return nil, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "invalid factor row", err)
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ReadOrIdentity loads a factor file, treating a missing file as a series
// holding only the sentinel point
func ReadOrIdentity(path string) ([]domain.FactorPoint, error) {
	points, err := Read(path)
	if apperrors.IsType(err, apperrors.ErrTypeMissingInput) {
		return []domain.FactorPoint{domain.SentinelPoint()}, nil
	}
	return points, err
}

// Lookup returns the first point dated on or after date. Dates past the
// series end get the identity factor.
func Lookup(points []domain.FactorPoint, date time.Time) domain.FactorPoint {
	i := sort.Search(len(points), func(i int) bool { return !points[i].Date.Before(date) })
	if i == len(points) {
		return domain.FactorPoint{Date: date, PriceFactor: one, SplitFactor: one}
	}
	return points[i]
}

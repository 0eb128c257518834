package records

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
	"bovespacli/pkg/contracts/domain"
)

// ReadDaily reads "YYYYMMDD,open,high,low,close,volume" lines.
// The result is sorted by date; bad lines are returned as rejects.
func ReadDaily(path string) ([]domain.DailyRecord, []error, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, nil, apperrors.NewMissingInputError(path, err)
	}

	var (
		out     []domain.DailyRecord
		rejects []error
	)
	for i, line := range lines {
		rec, err := parseDaily(line)
		if err != nil {
			rejects = append(rejects, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "invalid daily record", err))
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, rejects, nil
}

func parseDaily(line string) (domain.DailyRecord, error) {
	cols := strings.Split(line, ",")
	if len(cols) < 6 {
		return domain.DailyRecord{}, fmt.Errorf("expected 6 columns, got %d", len(cols))
	}
	date, err := parseDate(strings.TrimSpace(cols[0]))
	if err != nil {
		return domain.DailyRecord{}, fmt.Errorf("invalid date %q", cols[0])
	}
	var n [5]int64
	for i := range n {
		n[i], err = strconv.ParseInt(strings.TrimSpace(cols[i+1]), 10, 64)
		if err != nil {
			return domain.DailyRecord{}, fmt.Errorf("invalid number %q", cols[i+1])
		}
	}
	return domain.DailyRecord{Date: date, Open: n[0], High: n[1], Low: n[2], Close: n[3], Volume: n[4]}, nil
}

// FormatDaily renders one daily store line
func FormatDaily(r domain.DailyRecord) string {
	return fmt.Sprintf("%s,%d,%d,%d,%d,%d", r.Date.Format(domain.DateLayout), r.Open, r.High, r.Low, r.Close, r.Volume)
}

// WriteDaily replaces path with recs sorted by date. Later records win on duplicate dates.
func WriteDaily(path string, recs []domain.DailyRecord) error {
	byDate := make(map[string]domain.DailyRecord, len(recs))
	for _, r := range recs {
		byDate[r.Date.Format(domain.DateLayout)] = r
	}
	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = FormatDaily(byDate[k])
	}
	if err := files.WriteLinesAtomic(path, lines); err != nil {
		return apperrors.NewStorageError("failed to write daily file", err).WithContext("file", path)
	}
	return nil
}

// ReadTicks reads "millis,price,quantity" lines in file order
func ReadTicks(path string) ([]domain.TickRecord, []error, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, nil, apperrors.NewMissingInputError(path, err)
	}

	var (
		out     []domain.TickRecord
		rejects []error
	)
	for i, line := range lines {
		cols := strings.Split(line, ",")
		if len(cols) < 3 {
			rejects = append(rejects, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1),
				"invalid tick record", fmt.Errorf("expected 3 columns, got %d", len(cols))))
			continue
		}
		var n [3]int64
		var perr error
		for j := range n {
			if n[j], perr = strconv.ParseInt(strings.TrimSpace(cols[j]), 10, 64); perr != nil {
				break
			}
		}
		if perr != nil {
			rejects = append(rejects, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "invalid tick record", perr))
			continue
		}
		out = append(out, domain.TickRecord{TimeOfDayMillis: n[0], Price: n[1], Quantity: n[2]})
	}
	return out, rejects, nil
}

// WriteTicks replaces path with ticks in the given order
func WriteTicks(path string, ticks []domain.TickRecord) error {
	lines := make([]string, len(ticks))
	for i, t := range ticks {
		lines[i] = fmt.Sprintf("%d,%d,%d", t.TimeOfDayMillis, t.Price, t.Quantity)
	}
	if err := files.WriteLinesAtomic(path, lines); err != nil {
		return apperrors.NewStorageError("failed to write tick file", err).WithContext("file", path)
	}
	return nil
}

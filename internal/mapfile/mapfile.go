package mapfile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
	"bovespacli/pkg/contracts/domain"
)

// DefaultActiveWindow is how recent the last trade must be for a symbol to count as active
const DefaultActiveWindow = 365 * 24 * time.Hour

// Clock supplies "now" for the active-symbol check
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// History is the first and last trade date of one symbol's daily store
type History struct {
	First time.Time
	Last  time.Time
}

// HistoryOf returns the date span of date-sorted daily records
func HistoryOf(recs []domain.DailyRecord) (History, bool) {
	if len(recs) == 0 {
		return History{}, false
	}
	return History{First: recs[0].Date, Last: recs[len(recs)-1].Date}, true
}

// Options controls map construction
type Options struct {
	Clock        Clock
	Sentinel     time.Time
	ActiveWindow time.Duration
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Sentinel.IsZero() {
		o.Sentinel = domain.FarFuture
	}
	if o.ActiveWindow <= 0 {
		o.ActiveWindow = DefaultActiveWindow
	}
	return o
}

// Result is the output of Build
type Result struct {
	Files   map[string][]domain.MapSegment
	Removed []string
	Issues  []error
}

// Build computes one map per symbol with history. Symbols named as predecessors
// of another symbol are dropped from the result once every map is built.
func Build(histories map[string]History, renames Renames, opts Options) Result {
	opts = opts.withDefaults()
	now := opts.Clock.Now()

	symbols := make([]string, 0, len(histories))
	for s := range histories {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	res := Result{Files: make(map[string][]domain.MapSegment, len(symbols))}
	consumed := make(map[string]struct{})

	for _, sym := range symbols {
		h := histories[sym]
		var rows []domain.MapSegment

		for _, pred := range renames[sym] {
			ph, ok := histories[pred]
			if !ok {
				res.Issues = append(res.Issues, apperrors.NewMissingInputError(pred, nil).
					WithContext("symbol", sym))
				continue
			}
			rows = append(rows, domain.MapSegment{Date: ph.Last, Symbol: pred})
			consumed[pred] = struct{}{}
		}

		end := h.Last
		if now.Sub(h.Last) <= opts.ActiveWindow {
			end = opts.Sentinel
		}
		rows = append(rows,
			domain.MapSegment{Date: h.First, Symbol: sym},
			domain.MapSegment{Date: end, Symbol: sym},
		)
		res.Files[sym] = normalize(rows)
	}

	for pred := range consumed {
		delete(res.Files, pred)
		res.Removed = append(res.Removed, pred)
	}
	sort.Strings(res.Removed)
	return res
}

// normalize orders rows by date. Rows sharing a date collapse to the one
// emitted last, so the current symbol wins over a predecessor and the sentinel
// row survives for single-day histories.
func normalize(rows []domain.MapSegment) []domain.MapSegment {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	out := rows[:0]
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].Date.Equal(r.Date) {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}

// FormatLine renders one map file row
func FormatLine(s domain.MapSegment) string {
	return s.Date.Format(domain.DateLayout) + "," + strings.ToLower(s.Symbol)
}

// ParseLine parses one "YYYYMMDD,symbol" row
func ParseLine(line string) (domain.MapSegment, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 2 {
		return domain.MapSegment{}, fmt.Errorf("expected 2 columns in %q", line)
	}
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.MapSegment{}, fmt.Errorf("invalid date in %q", line)
	}
	sym := strings.ToUpper(strings.TrimSpace(parts[1]))
	if sym == "" {
		return domain.MapSegment{}, fmt.Errorf("empty symbol in %q", line)
	}
	return domain.MapSegment{Date: d, Symbol: sym}, nil
}

// Read loads a map file
func Read(path string) ([]domain.MapSegment, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, apperrors.NewMissingInputError(path, err)
	}
	out := make([]domain.MapSegment, 0, len(lines))
	for i, line := range lines {
		seg, err := ParseLine(line)
		if err != nil {
			return nil, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "invalid map row", err)
		}
		out = append(out, seg)
	}
	return out, nil
}

// Write replaces path with the given rows
func Write(path string, rows []domain.MapSegment) error {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = FormatLine(r)
	}
	if err := files.WriteLinesAtomic(path, lines); err != nil {
		return apperrors.NewStorageError("failed to write map file", err).WithContext("file", path)
	}
	return nil
}

// Resolve returns the symbol in force on date: the last row dated on or before
// it, or the first row for dates before the recorded history.
func Resolve(rows []domain.MapSegment, date time.Time) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}
	i := sort.Search(len(rows), func(i int) bool { return rows[i].Date.After(date) })
	if i == 0 {
		return rows[0].Symbol, true
	}
	return rows[i-1].Symbol, true
}

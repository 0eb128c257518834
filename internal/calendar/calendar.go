package calendar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
)

const dateLayout = "20060102"

// Calendar is the ordered set of trading days derived from a holiday list
type Calendar struct {
	days     []time.Time
	holidays map[time.Time]struct{}
}

// New derives trading days between the first and last holiday, excluding
// holidays and weekends
func New(holidays []time.Time) (*Calendar, error) {
	if len(holidays) == 0 {
		return nil, fmt.Errorf("holiday list is empty")
	}
	sorted := normalize(holidays)
	return NewBounded(sorted, sorted[0], sorted[len(sorted)-1]), nil
}

// NewBounded derives trading days in [from, to]
func NewBounded(holidays []time.Time, from, to time.Time) *Calendar {
	c := &Calendar{holidays: make(map[time.Time]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[truncate(h)] = struct{}{}
	}

	from, to = truncate(from), truncate(to)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}
		if _, ok := c.holidays[d]; ok {
			continue
		}
		c.days = append(c.days, d)
	}
	return c
}

// Load reads a holiday file and builds the calendar. A missing file is a
// configuration error because downstream steps cannot run without it.
func Load(path string) (*Calendar, []time.Time, error) {
	holidays, err := LoadHolidays(path)
	if err != nil {
		return nil, nil, err
	}
	cal, err := New(holidays)
	if err != nil {
		return nil, nil, apperrors.NewConfigError("holiday file has no dates", err).WithContext("file", path)
	}
	return cal, holidays, nil
}

// LoadHolidays parses "yyyy, MM, dd" or "YYYYMMDD" lines. The first line may be a header.
func LoadHolidays(path string) ([]time.Time, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, apperrors.NewConfigError("holiday file is required", err).WithContext("file", path)
	}

	var holidays []time.Time
	for i, line := range lines {
		d, err := ParseHoliday(line)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "invalid holiday line", err)
		}
		holidays = append(holidays, d)
	}
	return normalize(holidays), nil
}

// ParseHoliday parses one holiday line
func ParseHoliday(line string) (time.Time, error) {
	line = strings.TrimSpace(line)
	if parts := strings.Split(line, ","); len(parts) == 3 {
		var n [3]int
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid holiday %q", line)
			}
			n[i] = v
		}
		d := time.Date(n[0], time.Month(n[1]), n[2], 0, 0, 0, 0, time.UTC)
		if d.Year() != n[0] || int(d.Month()) != n[1] || d.Day() != n[2] {
			return time.Time{}, fmt.Errorf("invalid holiday %q", line)
		}
		return d, nil
	}
	return time.Parse(dateLayout, line)
}

// WriteHolidayFile writes holidays as sorted unique YYYYMMDD lines
func WriteHolidayFile(path string, holidays []time.Time) error {
	sorted := normalize(holidays)
	lines := make([]string, len(sorted))
	for i, d := range sorted {
		lines[i] = d.Format(dateLayout)
	}
	if err := files.WriteLinesAtomic(path, lines); err != nil {
		return apperrors.NewStorageError("failed to write holiday file", err)
	}
	return nil
}

// Days returns a copy of the trading days in ascending order
func (c *Calendar) Days() []time.Time {
	out := make([]time.Time, len(c.days))
	copy(out, c.days)
	return out
}

// Len returns the number of trading days
func (c *Calendar) Len() int {
	return len(c.days)
}

// First returns the first trading day
func (c *Calendar) First() time.Time {
	if len(c.days) == 0 {
		return time.Time{}
	}
	return c.days[0]
}

// Last returns the last trading day
func (c *Calendar) Last() time.Time {
	if len(c.days) == 0 {
		return time.Time{}
	}
	return c.days[len(c.days)-1]
}

// IsHoliday reports whether d is a listed holiday
func (c *Calendar) IsHoliday(d time.Time) bool {
	_, ok := c.holidays[truncate(d)]
	return ok
}

// IsTradingDay reports whether d is in the calendar
func (c *Calendar) IsTradingDay(d time.Time) bool {
	_, ok := c.Index(d)
	return ok
}

// Index returns the position of d among trading days
func (c *Calendar) Index(d time.Time) (int, bool) {
	d = truncate(d)
	i := sort.Search(len(c.days), func(i int) bool { return !c.days[i].Before(d) })
	if i < len(c.days) && c.days[i].Equal(d) {
		return i, true
	}
	return i, false
}

// Next returns the first trading day strictly after d
func (c *Calendar) Next(d time.Time) (time.Time, bool) {
	d = truncate(d)
	i := sort.Search(len(c.days), func(i int) bool { return c.days[i].After(d) })
	if i == len(c.days) {
		return time.Time{}, false
	}
	return c.days[i], true
}

// Previous returns the last trading day strictly before d
func (c *Calendar) Previous(d time.Time) (time.Time, bool) {
	d = truncate(d)
	i := sort.Search(len(c.days), func(i int) bool { return !c.days[i].Before(d) })
	if i == 0 {
		return time.Time{}, false
	}
	return c.days[i-1], true
}

// Between returns the trading days in [from, to]
func (c *Calendar) Between(from, to time.Time) []time.Time {
	from, to = truncate(from), truncate(to)
	lo := sort.Search(len(c.days), func(i int) bool { return !c.days[i].Before(from) })
	hi := sort.Search(len(c.days), func(i int) bool { return c.days[i].After(to) })
	if lo >= hi {
		return nil
	}
	out := make([]time.Time, hi-lo)
	copy(out, c.days[lo:hi])
	return out
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func truncate(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func normalize(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = truncate(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

package calendar

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/shared/testutil"
)

func janCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := New([]time.Time{
		testutil.Date(2024, time.January, 12),
		testutil.Date(2024, time.January, 1),
	})
	require.NoError(t, err)
	return cal
}

func TestNew(t *testing.T) {
	cal := janCalendar(t)

	expected := []time.Time{
		testutil.Date(2024, 1, 2), testutil.Date(2024, 1, 3), testutil.Date(2024, 1, 4), testutil.Date(2024, 1, 5),
		testutil.Date(2024, 1, 8), testutil.Date(2024, 1, 9), testutil.Date(2024, 1, 10), testutil.Date(2024, 1, 11),
	}
	assert.Equal(t, expected, cal.Days())
	assert.Equal(t, 8, cal.Len())
	assert.Equal(t, expected[0], cal.First())
	assert.Equal(t, expected[7], cal.Last())

	_, err := New(nil)
	assert.Error(t, err)
}

func TestCalendarQueries(t *testing.T) {
	cal := janCalendar(t)

	tests := []struct {
		name    string
		date    time.Time
		trading bool
		next    time.Time
		prev    time.Time
	}{
		{"holiday", testutil.Date(2024, 1, 1), false, testutil.Date(2024, 1, 2), time.Time{}},
		{"friday", testutil.Date(2024, 1, 5), true, testutil.Date(2024, 1, 8), testutil.Date(2024, 1, 4)},
		{"saturday", testutil.Date(2024, 1, 6), false, testutil.Date(2024, 1, 8), testutil.Date(2024, 1, 5)},
		{"last day", testutil.Date(2024, 1, 11), true, time.Time{}, testutil.Date(2024, 1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.trading, cal.IsTradingDay(tt.date))

			next, ok := cal.Next(tt.date)
			assert.Equal(t, !tt.next.IsZero(), ok)
			assert.Equal(t, tt.next, next)

			prev, ok := cal.Previous(tt.date)
			assert.Equal(t, !tt.prev.IsZero(), ok)
			assert.Equal(t, tt.prev, prev)
		})
	}

	// time of day is ignored
	assert.True(t, cal.IsTradingDay(time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC)))
	assert.True(t, cal.IsHoliday(testutil.Date(2024, 1, 12)))

	idx, ok := cal.Index(testutil.Date(2024, 1, 8))
	assert.True(t, ok)
	assert.Equal(t, 4, idx)
}

func TestBetween(t *testing.T) {
	cal := janCalendar(t)

	days := cal.Between(testutil.Date(2024, 1, 4), testutil.Date(2024, 1, 8))
	assert.Equal(t, []time.Time{testutil.Date(2024, 1, 4), testutil.Date(2024, 1, 5), testutil.Date(2024, 1, 8)}, days)

	assert.Empty(t, cal.Between(testutil.Date(2024, 1, 6), testutil.Date(2024, 1, 7)))
	assert.Empty(t, cal.Between(testutil.Date(2024, 1, 9), testutil.Date(2024, 1, 3)))
}

func TestNewBounded(t *testing.T) {
	cal := NewBounded(nil, testutil.Date(2024, 1, 5), testutil.Date(2024, 1, 8))
	assert.Equal(t, []time.Time{testutil.Date(2024, 1, 5), testutil.Date(2024, 1, 8)}, cal.Days())
}

func TestLoadHolidays(t *testing.T) {
	dir := t.TempDir()

	t.Run("header and comma format", func(t *testing.T) {
		path := testutil.WriteLines(t, dir, "holidays.txt",
			"year, month, day",
			"2024, 01, 12",
			"2024, 1, 1",
		)
		holidays, err := LoadHolidays(path)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 12)}, holidays)
	})

	t.Run("compact format", func(t *testing.T) {
		path := testutil.WriteLines(t, dir, "compact.txt", "20240101", "20240112", "20240101")
		cal, holidays, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, holidays, 2)
		assert.Equal(t, 8, cal.Len())
	})

	t.Run("bad line after header", func(t *testing.T) {
		path := testutil.WriteLines(t, dir, "bad.txt", "20240101", "2024, 13, 40")
		_, err := LoadHolidays(path)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMalformed))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadHolidays(filepath.Join(dir, "absent.txt"))
		assert.True(t, apperrors.IsFatal(err))
	})
}

func TestWriteHolidayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.txt")
	holidays := []time.Time{testutil.Date(2024, 1, 12), testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 12)}

	require.NoError(t, WriteHolidayFile(path, holidays))
	assert.Equal(t, []string{"20240101", "20240112"}, testutil.ReadLines(t, path))

	loaded, err := LoadHolidays(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestMonthCode(t *testing.T) {
	assert.Equal(t, "F", MonthCode(time.January))
	assert.Equal(t, "Z", MonthCode(time.December))
	assert.Equal(t, "", MonthCode(13))

	m, ok := ContractMonth("q")
	assert.True(t, ok)
	assert.Equal(t, time.August, m)

	_, ok = ContractMonth("a")
	assert.False(t, ok)
}

func TestFutureExpiration(t *testing.T) {
	_, err := janCalendar(t).FutureExpiration(2024, time.March)
	assert.ErrorIs(t, err, ErrFuturesNotImplemented)
}

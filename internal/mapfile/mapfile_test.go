package mapfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/shared/testutil"
	"bovespacli/pkg/contracts/domain"
)

var now = FixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

func TestBuild(t *testing.T) {
	histories := map[string]History{
		"ELET3": {First: testutil.Date(2008, 1, 2), Last: testutil.Date(2024, 5, 31)},
		"ELET4": {First: testutil.Date(2005, 1, 3), Last: testutil.Date(2010, 7, 1)},
		"OLDX3": {First: testutil.Date(2000, 1, 3), Last: testutil.Date(2015, 3, 2)},
	}
	renames := Renames{"ELET3": {"ELET4", "GONE3"}}

	res := Build(histories, renames, Options{Clock: now})

	assert.Equal(t, []domain.MapSegment{
		{Date: testutil.Date(2008, 1, 2), Symbol: "ELET3"},
		{Date: testutil.Date(2010, 7, 1), Symbol: "ELET4"},
		{Date: domain.FarFuture, Symbol: "ELET3"},
	}, res.Files["ELET3"])

	assert.Equal(t, []domain.MapSegment{
		{Date: testutil.Date(2000, 1, 3), Symbol: "OLDX3"},
		{Date: testutil.Date(2015, 3, 2), Symbol: "OLDX3"},
	}, res.Files["OLDX3"], "delisted symbols end at their last trade")

	assert.NotContains(t, res.Files, "ELET4")
	assert.Equal(t, []string{"ELET4"}, res.Removed)

	require.Len(t, res.Issues, 1)
	assert.True(t, apperrors.IsType(res.Issues[0], apperrors.ErrTypeMissingInput))
}

func TestBuildInvariants(t *testing.T) {
	histories := map[string]History{
		"AAAA3": {First: testutil.Date(2020, 1, 2), Last: testutil.Date(2020, 1, 2)},
		"BBBB4": {First: testutil.Date(2019, 1, 2), Last: testutil.Date(2024, 5, 1)},
		"CCCC3": {First: testutil.Date(2010, 1, 4), Last: testutil.Date(2019, 1, 2)},
	}
	res := Build(histories, Renames{"BBBB4": {"CCCC3"}}, Options{Clock: now, Sentinel: testutil.Date(2050, 1, 1)})

	for sym, rows := range res.Files {
		require.NotEmpty(t, rows, sym)
		for i := 1; i < len(rows); i++ {
			assert.True(t, rows[i].Date.After(rows[i-1].Date), "%s rows must be strictly increasing", sym)
		}
		assert.Equal(t, sym, rows[len(rows)-1].Symbol, "last row names the file")
	}

	assert.Len(t, res.Files["AAAA3"], 1, "single-day history collapses to one row")
	last := res.Files["BBBB4"][len(res.Files["BBBB4"])-1]
	assert.Equal(t, testutil.Date(2050, 1, 1), last.Date, "configured sentinel is used")
	assert.Equal(t, "BBBB4", res.Files["BBBB4"][0].Symbol, "current symbol wins a shared date")
}

func TestActiveWindow(t *testing.T) {
	h := map[string]History{"PETR4": {First: testutil.Date(2000, 1, 3), Last: testutil.Date(2023, 6, 5)}}

	res := Build(h, nil, Options{Clock: now})
	assert.Equal(t, domain.FarFuture, res.Files["PETR4"][1].Date)

	res = Build(h, nil, Options{Clock: now, ActiveWindow: 30 * 24 * time.Hour})
	assert.Equal(t, testutil.Date(2023, 6, 5), res.Files["PETR4"][1].Date)
}

func TestWriteAllIsByteStable(t *testing.T) {
	dir := t.TempDir()
	stale := testutil.WriteLines(t, dir, "elet4.csv", "20100701,elet4")

	histories := map[string]History{
		"ELET3": {First: testutil.Date(2008, 1, 2), Last: testutil.Date(2024, 5, 31)},
		"ELET4": {First: testutil.Date(2005, 1, 3), Last: testutil.Date(2010, 7, 1)},
	}
	renames := Renames{"ELET3": {"ELET4"}}

	require.NoError(t, WriteAll(dir, Build(histories, renames, Options{Clock: now}).Files))
	first, err := os.ReadFile(filepath.Join(dir, "elet3.csv"))
	require.NoError(t, err)
	assert.Equal(t, "20080102,elet3\n20100701,elet4\n20491231,elet3\n", string(first))
	assert.NoFileExists(t, stale)

	require.NoError(t, WriteAll(dir, Build(histories, renames, Options{Clock: now}).Files))
	second, err := os.ReadFile(filepath.Join(dir, "elet3.csv"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReadAndResolve(t *testing.T) {
	path := testutil.WriteLines(t, t.TempDir(), "elet3.csv", "20080102,elet3", "20100701,elet4", "20491231,elet3")

	rows, err := Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	tests := []struct {
		date time.Time
		want string
	}{
		{testutil.Date(2001, 1, 1), "ELET3"},
		{testutil.Date(2008, 1, 2), "ELET3"},
		{testutil.Date(2009, 5, 5), "ELET3"},
		{testutil.Date(2010, 7, 1), "ELET4"},
		{testutil.Date(2012, 1, 1), "ELET4"},
		{testutil.Date(2049, 12, 31), "ELET3"},
	}
	for _, tt := range tests {
		got, ok := Resolve(rows, tt.date)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got, tt.date.Format(domain.DateLayout))
	}

	_, ok := Resolve(nil, testutil.Date(2012, 1, 1))
	assert.False(t, ok)
}

func TestReadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLines(t, dir, "bad.csv", "20080102,elet3", "2008-01-02")
	_, err := Read(path)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMalformed))

	_, err = Read(filepath.Join(dir, "none.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingInput))
}

func TestLoadRenames(t *testing.T) {
	path := testutil.WriteLines(t, t.TempDir(), "tickerchange.txt",
		"ELET3,ELET4, elet5",
		"BRFS3,//PRGA3",
		"# header",
		"KLBN11,KLBN3,#KLBN4",
	)
	renames, err := LoadRenames(path)
	require.NoError(t, err)
	assert.Equal(t, Renames{
		"ELET3":  {"ELET4", "ELET5"},
		"KLBN11": {"KLBN3"},
	}, renames)
}

func TestHistoryOf(t *testing.T) {
	_, ok := HistoryOf(nil)
	assert.False(t, ok)

	h, ok := HistoryOf([]domain.DailyRecord{{Date: testutil.Date(2020, 1, 2)}, {Date: testutil.Date(2021, 3, 4)}})
	assert.True(t, ok)
	assert.Equal(t, History{First: testutil.Date(2020, 1, 2), Last: testutil.Date(2021, 3, 4)}, h)
}

package bars

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/shared/testutil"
	"bovespacli/pkg/contracts/domain"
)

func sampleDay(t *testing.T) Day {
	t.Helper()
	bars, err := Aggregate([]domain.TickRecord{
		tick(34_201_000, 5, 10),
		tick(34_245_000, 6, 5),
		tick(34_320_000, 7, 3),
	}, domain.ResolutionMinute)
	require.NoError(t, err)
	return Day{Symbol: "PETR4", Date: testutil.Date(2024, 1, 5), Bars: bars}
}

func TestSinksRoundTrip(t *testing.T) {
	for _, format := range []string{"csv", "parquet"} {
		t.Run(format, func(t *testing.T) {
			sink, err := NewSink(format)
			require.NoError(t, err)

			day := sampleDay(t)
			path := filepath.Join(t.TempDir(), "minute", "petr4", FileName(sink, day.Symbol, day.Date))
			assert.Equal(t, "20240105_petr4."+format, filepath.Base(path))

			require.NoError(t, sink.Save(path, day))
			loaded, err := sink.Load(path)
			require.NoError(t, err)

			assert.Equal(t, day.Symbol, loaded.Symbol)
			assert.Equal(t, day.Date, loaded.Date)
			require.Len(t, loaded.Bars, len(day.Bars))
			for i := range day.Bars {
				assert.Equal(t, day.Bars[i].BucketKey, loaded.Bars[i].BucketKey)
				assert.Equal(t, day.Bars[i].Close, loaded.Bars[i].Close)
				assert.True(t, day.Bars[i].Notional.Equal(loaded.Bars[i].Notional))
			}
		})
	}
}

func TestCSVSinkFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "20240105_petr4.csv")
	require.NoError(t, CSVSink{}.Save(path, sampleDay(t)))
	assert.Equal(t, []string{
		"34200000,50000,60000,50000,60000,15,80",
		"34320000,70000,70000,70000,70000,3,21",
	}, testutil.ReadLines(t, path))
}

func TestSinkErrors(t *testing.T) {
	_, err := NewSink("xml")
	assert.True(t, apperrors.IsFatal(err))

	dir := t.TempDir()
	_, err = CSVSink{}.Load(filepath.Join(dir, "20240105_petr4.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingInput))

	bad := testutil.WriteLines(t, dir, "nodate.csv", "1,2,3")
	_, err = CSVSink{}.Load(bad)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMalformed))
}

package factors

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/shared/testutil"
	"bovespacli/pkg/contracts/domain"
)

func TestBuilderBuild(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "error.txt")
	errLog := apperrors.NewErrorLog(logPath)
	logger, handler := testutil.NewTestLogger(t)

	b, err := NewBuilder(map[string]string{"9512": "0.1"}, errLog, logger)
	require.NoError(t, err)

	rows := domain.EventRows{
		Dividends: [][]string{
			{"01/02/2024", "0,50", "PN", "", "16/02/2024", "10,00"},
			{"01/02/2024", "9,00", "ON", "", "16/02/2024", "10,00"},
			{"01/03/2024", "0,50", "PN", "", "04/03/2024", "0"},
		},
		Structural: [][]string{
			{"Grupamento", "01/04/2024", "05/04/2024", "", "10/1"},
			{"Cisão", "01/05/2024", "06/05/2024", "", "1/2"},
			{"Desdobramento", "01/06/2024", "07/06/2024", "", "zero"},
		},
	}

	points := b.Build("9512", "PETR4", rows)
	require.Len(t, points, 3)
	assertPoint(t, points[0], testutil.Date(2024, 2, 16), "0.95", "0.1")
	assertPoint(t, points[1], testutil.Date(2024, 4, 5), "1", "0.1")
	assertPoint(t, points[2], domain.FarFuture, "1", "1")

	assert.Equal(t, 2, errLog.Count())
	lines := testutil.ReadLines(t, logPath)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Dividends,9512,")
	assert.Contains(t, lines[1], "CorpEvents,9512,")

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "event row dropped")
}

func TestNewBuilderRejectsBadOverride(t *testing.T) {
	_, err := NewBuilder(map[string]string{"1": "-1"}, nil, nil)
	assert.True(t, apperrors.IsFatal(err))
}

package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures records and derived attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		child := logger.With(slog.String("component", "factors"))

		logger.Info("test message", slog.String("key", "value"))
		child.Error("error message", slog.Int("code", 500))

		require.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("component", "factors"))
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("assert helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		logger.Warn("skipped row", slog.String("issuer", "9512"))

		AssertLogContains(t, handler, slog.LevelWarn, "skipped")
		AssertLogAttr(t, handler, "issuer", "9512")
		AssertNoErrors(t, handler)
	})
}

func TestFixtures(t *testing.T) {
	dir := t.TempDir()
	path := WriteLines(t, dir, filepath.Join("a", "b.txt"), "one", "", "two")

	assert.Equal(t, []string{"one", "two"}, ReadLines(t, path))
	assert.Equal(t, time.Date(2020, 3, 4, 0, 0, 0, 0, time.UTC), MustDate(t, "20200304"))
	assert.Equal(t, MustDate(t, "20200304"), Date(2020, time.March, 4))
}

package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestDiscovery_FindSymbols(t *testing.T) {
	base := t.TempDir()
	daily := filepath.Join(base, "daily")
	touch(t, daily, "vale3.csv")
	touch(t, daily, "petr4.csv")
	touch(t, daily, "readme.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(daily, "sub.csv"), 0755))

	d := NewDiscovery(base)
	symbols, err := d.FindSymbols("daily")
	require.NoError(t, err)
	assert.Equal(t, []string{"PETR4", "VALE3"}, symbols)

	_, err = d.FindSymbols("missing")
	assert.Error(t, err)
}

func TestDiscovery_FindSymbolDirs(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "tick", "vale3"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "tick", "petr4"), 0755))
	touch(t, filepath.Join(base, "tick"), "notes.csv")

	symbols, err := NewDiscovery(base).FindSymbolDirs("tick")
	require.NoError(t, err)
	assert.Equal(t, []string{"PETR4", "VALE3"}, symbols)
}

func TestDiscovery_FindDayFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "20170103_trade.csv")
	touch(t, dir, "20170102_trade.csv")
	touch(t, dir, "20170102_bid.csv")
	touch(t, dir, "notes_trade.csv")
	touch(t, dir, "20170104.csv")

	d := NewDiscovery("")

	trades, err := d.FindDayFiles(dir, "trade")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC), trades[0].Date)
	assert.Equal(t, "20170103_trade.csv", trades[1].Name)

	all, err := d.FindDayFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

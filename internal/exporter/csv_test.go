package exporter

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bovespacli/internal/config"
	"bovespacli/internal/shared/testutil"
)

func setupWriter(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	return NewCSVWriter(&config.Paths{ExportDir: filepath.Join(dir, "custom")}), dir
}

func TestWriteCSV(t *testing.T) {
	w, dir := setupWriter(t)

	tests := []struct {
		name    string
		opts    WriteOptions
		want    string
		prepare string
	}{
		{
			name: "records only",
			opts: WriteOptions{Records: [][]string{{"PETR4", "05/01/2024", "38,45"}}},
			want: "PETR4;05/01/2024;38,45\n",
		},
		{
			name: "headers",
			opts: WriteOptions{Headers: []string{"Symbol", "Close"}, Records: [][]string{{"VALE3", "1,00"}}},
			want: "Symbol;Close\nVALE3;1,00\n",
		},
		{
			name:    "replace",
			prepare: "old;content\n",
			opts:    WriteOptions{Records: [][]string{{"new"}}},
			want:    "new\n",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := filepath.Join("case", string(rune('a'+i))+".csv")
			full := filepath.Join(dir, "custom", name)
			if tt.prepare != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
				require.NoError(t, os.WriteFile(full, []byte(tt.prepare), 0644))
			}

			require.NoError(t, w.WriteCSV(name, tt.opts))
			got, err := os.ReadFile(full)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestWriteCSVAbsolutePath(t *testing.T) {
	w, dir := setupWriter(t)
	path := filepath.Join(dir, "elsewhere", "x.csv")

	require.NoError(t, w.WriteRecords(path, [][]string{{"a", "b"}}))
	assert.FileExists(t, path)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestStreamWriter(t *testing.T) {
	w, dir := setupWriter(t)

	sw, err := w.CreateStreamWriter("stream.csv", []string{"Symbol", "Close"})
	require.NoError(t, err)
	for _, r := range [][]string{{"PETR4", "1,00"}, {"VALE3", "2,00"}} {
		require.NoError(t, sw.WriteRecord(r))
	}
	assert.Equal(t, 2, sw.Count())
	require.NoError(t, sw.Close())

	got, err := os.ReadFile(filepath.Join(dir, "custom", "stream.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Symbol;Close\nPETR4;1,00\nVALE3;2,00\n", string(got))
}

func TestStreamWriterAbortKeepsTarget(t *testing.T) {
	w, dir := setupWriter(t)
	target := filepath.Join(dir, "custom", "kept.csv")
	require.NoError(t, w.WriteRecords("kept.csv", [][]string{{"old"}}))

	sw, err := w.CreateStreamWriter("kept.csv", nil)
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"new"}))
	assert.Equal(t, []string{"old"}, testutil.ReadLines(t, target), "target untouched until Close")
	sw.Abort()

	assert.Equal(t, []string{"old"}, testutil.ReadLines(t, target))
	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed")
}

func TestWriteCSVConcurrent(t *testing.T) {
	w, dir := setupWriter(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, w.WriteCSV("own_"+string(rune('a'+i))+".csv", WriteOptions{Records: [][]string{{"x"}}}))
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(filepath.Join(dir, "custom"))
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

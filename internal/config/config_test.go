package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bovespacli/internal/errors"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.resolvePaths())
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "0.1", cfg.Pipeline.RatioOverrides["9512"])
	assert.Equal(t, time.Date(2049, 12, 31, 0, 0, 0, 0, time.UTC), cfg.Pipeline.Sentinel())
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := writeConfigFile(t, dir, `
paths:
  base_dir: `+dir+`
  input_dir: raw
  output_dir: out
pipeline:
  input_data_type: trade
  output_resolution: minute
  start_date: "20170102"
  end_date: "20171229"
  workers: 8
  locale: en-US
  detect_renames: true
  step_timeouts:
    bars: 30m
`)

	t.Setenv("BOVESPA_PIPELINE_WORKERS", "2")
	t.Setenv("BOVESPA_PIPELINE_INSTRUMENT_LIST", "PETR4,VALE3")

	cfg, err := LoadFrom(file)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "raw"), cfg.Paths.InputDir)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Paths.OutputDir)
	assert.Equal(t, "minute", cfg.Pipeline.OutputResolution)
	assert.Equal(t, "en-US", cfg.Pipeline.Locale)
	assert.Equal(t, 2, cfg.Pipeline.Workers, "env wins over file")
	assert.Equal(t, []string{"PETR4", "VALE3"}, cfg.Pipeline.InstrumentList)
	assert.Equal(t, "csv", cfg.Pipeline.BarFormat, "defaults survive")
	assert.True(t, cfg.Pipeline.DetectRenames)
	assert.Equal(t, map[string]time.Duration{"bars": 30 * time.Minute}, cfg.Pipeline.StepTimeouts)

	start, end, err := cfg.Pipeline.DateRange()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2017, 12, 29, 0, 0, 0, 0, time.UTC), end)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "end before start",
			yaml: "pipeline:\n  start_date: \"20200101\"\n  end_date: \"20190101\"\n",
		},
		{
			name: "unknown input data type",
			yaml: "pipeline:\n  input_data_type: quotes\n",
		},
		{
			name: "unknown resolution",
			yaml: "pipeline:\n  input_data_type: trade\n  output_resolution: tick\n",
		},
		{
			name: "daily input with intraday output",
			yaml: "pipeline:\n  input_data_type: daily\n  output_resolution: minute\n",
		},
		{
			name: "bad locale",
			yaml: "pipeline:\n  locale: fr-FR\n",
		},
		{
			name: "http source without url",
			yaml: "events:\n  source: http\n",
		},
		{
			name: "zero workers",
			yaml: "pipeline:\n  workers: 0\n",
		},
		{
			name: "broken yaml",
			yaml: "pipeline: [\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			file := writeConfigFile(t, dir, "paths:\n  base_dir: "+dir+"\n"+tt.yaml)

			_, err := LoadFrom(file)
			require.Error(t, err)
			assert.True(t, apperrors.IsFatal(err), "config errors are fatal: %v", err)
		})
	}
}

func TestNewPaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.BaseDir = t.TempDir()
	require.NoError(t, cfg.resolvePaths())

	paths := NewPaths(cfg)
	base := cfg.Paths.BaseDir

	assert.Equal(t, filepath.Join(base, DefaultInputDir, "equity", "bra", "daily", "petr4.csv"), paths.GetDailyPath("PETR4"))
	assert.Equal(t, filepath.Join(base, DefaultOutputDir, "equity", "bra", "map_files", "petr4.csv"), paths.GetMapFilePath("PETR4"))
	assert.Equal(t, filepath.Join(base, DefaultOutputDir, "equity", "bra", "factor_files", "vale3.csv"), paths.GetFactorFilePath("VALE3"))
	assert.Equal(t, filepath.Join(base, DefaultOutputDir, "equity", "bra", "minute", "vale3"), paths.GetBarsDir("minute", "VALE3"))
	assert.Equal(t, filepath.Join(base, DefaultOutputDir, "custom", "VALE3_daily.csv"), paths.GetExportPath("vale3", "daily", "csv"))
	assert.Equal(t,
		filepath.Join(base, DefaultInputDir, "equity", "bra", "tick", "petr4", "20170102_trade.csv"),
		paths.GetTickPath("PETR4", time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC), "trade"))

	assert.Equal(t, filepath.Join(base, DefaultOutputDir, RenameCandidatesFileName), paths.RenameCandidatesFile)

	require.NoError(t, paths.EnsureDirectories())
	assert.True(t, FileExists(paths.MapFilesDir))
	assert.True(t, FileExists(paths.ExportDir))
}

package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigLayersFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "autopilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  dsn: file:autopilot.db
schedule:
  ab_tests_analyze: 30m
optimization:
  kill_threshold: 0.8
  costs:
    video_per_asset: 0.5
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SCALE_THRESHOLD", "3")
	t.Setenv("KILL_THRESHOLD", "")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Schedule.ABTestsAnalyze)
	assert.Equal(t, 24*time.Hour, cfg.Schedule.OptimizationCycle, "unset keys keep defaults")
	assert.Equal(t, 0.8, cfg.Optimization.KillThreshold)
	assert.Equal(t, 3.0, cfg.Optimization.ScaleThreshold)
	assert.Equal(t, 0.5, cfg.Optimization.Costs.VideoPerAsset)
	assert.Equal(t, 0.03, cfg.Optimization.Costs.VoicePerAsset)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoadConfigRequiresDSN(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

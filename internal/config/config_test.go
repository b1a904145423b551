package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "dataforge.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.False(t, cfg.QA.GeocodeEnabled)

	assert.InDelta(t, 0.80, cfg.Engine.MergeThreshold, 0.001)
	assert.InDelta(t, 0.70, cfg.Engine.Business.Domain, 0.001)
	assert.InDelta(t, 0.50, cfg.Engine.RFP.Title, 0.001)
	assert.Equal(t, []string{"state_registry", "nppes", "opencorporates", "sam.gov", "grants.gov"}, cfg.Engine.SourcePriority)
	assert.Equal(t, 4, cfg.Engine.NamePrefixLen)
	require.NoError(t, cfg.Engine.Validate())

	assert.Equal(t, 20, cfg.Quality.Business.Domain)
	assert.Equal(t, 25, cfg.Quality.RFP.Title)
	assert.Equal(t, 5, cfg.Quality.Bonus.ValidEmail)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/dataforge
log:
  level: debug
  format: console
server:
  port: 9090
engine:
  merge_threshold: 0.9
  source_priority:
    - sam.gov
    - nppes
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 0.9, cfg.Engine.MergeThreshold, 0.001)
	assert.Equal(t, []string{"sam.gov", "nppes"}, cfg.Engine.SourcePriority)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.70, cfg.Engine.Business.Domain, 0.001)
	assert.Equal(t, "exports", cfg.Export.Dir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
log:
  level: info
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("DATAFORGE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level", Format: "json"}))
}

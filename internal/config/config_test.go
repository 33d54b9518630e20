package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so a developer's .env cannot leak into the test
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "fm_scout.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:8080", cfg.ServerAddr)
	assert.Equal(t, 20000, cfg.MaxPlayers)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Empty(t, cfg.RolesPath)
	assert.Empty(t, cfg.PresetsPath)
	assert.Equal(t, ".", cfg.ExportDir)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t)
	t.Setenv("FMSCOUT_ENV", "production")
	t.Setenv("FMSCOUT_MAX_PLAYERS", "500")
	t.Setenv("FMSCOUT_FETCH_TIMEOUT", "5s")
	t.Setenv("FMSCOUT_DB_PATH", "/var/lib/fm/scout.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 500, cfg.MaxPlayers)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "/var/lib/fm/scout.db", cfg.DBPath)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nEXPORT_DIR=out\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "out", cfg.ExportDir)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "scout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("LOG_FORMAT: json\nMAX_PLAYERS: 100\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 100, cfg.MaxPlayers)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t)
	t.Setenv("FMSCOUT_MAX_PLAYERS", "0")

	_, err := Load("")
	assert.EqualError(t, err, "MAX_PLAYERS must be positive, got 0")

	cfg := &Config{MaxPlayers: 10}
	assert.Error(t, cfg.Validate())
}

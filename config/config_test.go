package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Cases)
	assert.Equal(t, 10, cfg.Storage.HistoryLimit)
	assert.Equal(t, 8*time.Second, cfg.Oracle.Timeout)
	assert.False(t, cfg.Oracle.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 8081, cfg.Worker.HealthPort)
	assert.Equal(t, time.Hour, cfg.Worker.RetentionInterval)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
storage:
  cases: postgres
  reports: redis
oracle:
  enabled: true
  timeout: 3s
`), 0o600))

	t.Setenv("AEGIS_SERVER_PORT", "9191")
	t.Setenv("GEMINI_API_KEY", "secret-key")
	t.Setenv("GEMINI_MODEL", "gemini-test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Storage.Cases)
	assert.True(t, cfg.UsesPostgres())
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, 3*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, "secret-key", cfg.Oracle.APIKey)

	gemini := cfg.Oracle.ToGeminiConfig()
	assert.Equal(t, "gemini-test", gemini.Model)
}

func TestLoadConfigRejectsOracleWithoutKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oracle:\n  enabled: true\n"), 0o600))
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidateDrivers(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Cases: "mongo", Reports: DriverMemory, Broker: DriverMemory}}
	assert.Error(t, cfg.Validate())

	cfg.Storage.Cases = DriverMemory
	cfg.Storage.Broker = "kafka"
	assert.Error(t, cfg.Validate())
}

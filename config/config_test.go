package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
search:
  default_k: 10
  max_k: 50
  shard_timeout_ms: 250
storage:
  kind: memory
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Search.DefaultK)
	assert.Equal(t, 50, cfg.Search.MaxK)
	assert.Equal(t, 250, cfg.Search.ShardTimeoutMS)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset fields pick up defaults.
	assert.Equal(t, 2, cfg.Search.OverFetchFactor)
	assert.Equal(t, 128, cfg.Optics.CacheSize)
	assert.Equal(t, "optics", cfg.Optics.Prefix)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_MINIO_SECRET", "s3cret")

	path := writeConfig(t, `
storage:
  kind: minio
  endpoint: ${TEST_MINIO_ENDPOINT:-localhost:9000}
  bucket: search
  secret_key: ${TEST_MINIO_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "s3cret", cfg.Storage.SecretKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateDefaultKExceedsMaxK(t *testing.T) {
	path := writeConfig(t, `
search:
  default_k: 200
  max_k: 100
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_k")
}

func TestValidateStorageKind(t *testing.T) {
	cfg := Default()
	cfg.Storage.Kind = "redis"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Kind = "local"
	assert.Error(t, cfg.Validate(), "local storage requires a dir")

	cfg.Storage.Dir = t.TempDir()
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Kind = "minio"
	assert.Error(t, cfg.Validate(), "minio storage requires endpoint and bucket")
}

func TestApplyDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 20, cfg.Search.DefaultK)
	assert.Equal(t, 100, cfg.Search.MaxK)
	assert.Equal(t, 500, cfg.Search.ShardTimeoutMS)
	assert.Equal(t, 2, cfg.Search.OverFetchFactor)
	assert.Equal(t, "memory", cfg.Storage.Kind)
	assert.Equal(t, "bangs/bangs.json.zst", cfg.Bangs.Blob)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestApplyDefaultsNoOverride(t *testing.T) {
	cfg := Config{
		Search: SearchConfig{DefaultK: 5, MaxK: 10, ShardTimeoutMS: 100, OverFetchFactor: 4},
		Optics: OpticsConfig{CacheSize: 16, Prefix: "custom"},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, 5, cfg.Search.DefaultK)
	assert.Equal(t, 4, cfg.Search.OverFetchFactor)
	assert.Equal(t, 16, cfg.Optics.CacheSize)
	assert.Equal(t, "custom", cfg.Optics.Prefix)
}

func TestRateBurstDefault(t *testing.T) {
	cfg := Config{Search: SearchConfig{RateQPS: 10}}
	cfg.ApplyDefaults()
	assert.Equal(t, 11, cfg.Search.RateBurst)

	unlimited := Config{}
	unlimited.ApplyDefaults()
	assert.Zero(t, unlimited.Search.RateBurst)
}

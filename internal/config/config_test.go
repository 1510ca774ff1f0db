package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"storage", "postgres", "file"}, cfg.Dataset.Sources)
	assert.Equal(t, "geojson-data", cfg.Storage.Bucket)
	assert.Equal(t, "vic-postcodes.json", cfg.Storage.Object)
	assert.Equal(t, time.Hour, cfg.Cache.DatasetTTL)
	assert.Equal(t, 10, cfg.Cache.RecentSearchLimit)
	assert.Equal(t, time.Second, cfg.Nominatim.MinInterval)
	assert.Equal(t, "postcode-reload-workers", cfg.Worker.ConsumerGroup)
	assert.False(t, cfg.StorageConfigured())
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("DATASET_SOURCES", " File , storage ")
	t.Setenv("STORAGE_URL", "https://example.supabase.co/")
	t.Setenv("STORAGE_KEY", "anon")
	t.Setenv("WORKER_REFRESH_INTERVAL", "60")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddr())
	assert.Equal(t, []string{"file", "storage"}, cfg.Dataset.Sources)
	assert.Equal(t, "https://example.supabase.co", cfg.Storage.URL)
	assert.True(t, cfg.StorageConfigured())
	assert.Equal(t, time.Minute, cfg.Worker.RefreshInterval)
}

func TestLoadFile_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("REDIS_HOST=cache\nREDIS_PORT=6380\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "cache:6380", cfg.GetRedisAddr())
	assert.Equal(t, "debug", cfg.Log.Level)
}

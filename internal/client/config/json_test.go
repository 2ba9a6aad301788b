package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"database_dsn":   "json.db",
		"render_timeout": "10s",
		"screen_density": 1.5,
		"s3": map[string]any{
			"endpoint": "http://localhost:9000",
			"bucket":   "cards",
			"region":   "eu-west-1",
		},
	})

	t.Run("overrides only named fields", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "json.db", cfg.DatabaseDSN)
		assert.Equal(t, 10*time.Second, cfg.RenderTimeout)
		assert.Equal(t, 1.5, cfg.ScreenDensity)
		assert.Equal(t, "images", cfg.ImageDir)
		assert.Equal(t, "cards", cfg.S3.Bucket)
		assert.Equal(t, "eu-west-1", cfg.S3.Region)
	})

	t.Run("no flag, no changes", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-d", "x.db"}))
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		require.Error(t, parseJson(defaults(), []string{"-c", bad}))
	})

	t.Run("missing file", func(t *testing.T) {
		require.Error(t, parseJson(defaults(), []string{"-c", filepath.Join(dir, "nope.json")}))
	})
}

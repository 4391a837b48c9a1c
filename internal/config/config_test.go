package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "LOG_LEVEL", "WEATHER_API_URL", "WEATHER_DB_PATH", "WEATHER_HTTP_TIMEOUT"} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("WEATHER_API_URL", "http://localhost:9999/weather")
	t.Setenv("WEATHER_DB_PATH", "/tmp/w.db")
	t.Setenv("WEATHER_HTTP_TIMEOUT", "1500ms")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://localhost:9999/weather", cfg.APIURL)
	assert.Equal(t, "/tmp/w.db", cfg.DBPath)
	assert.Equal(t, 1500*time.Millisecond, cfg.HTTPTimeout)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"APP_ENV", "staging", "invalid APP_ENV"},
		{"LOG_LEVEL", "verbose", "invalid LOG_LEVEL"},
		{"WEATHER_HTTP_TIMEOUT", "soon", "invalid WEATHER_HTTP_TIMEOUT"},
		{"WEATHER_HTTP_TIMEOUT", "0s", "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromEnv()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadFromEnv_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are present, even when empty.
	require.NoError(t, os.Unsetenv("WEATHER_DB_PATH"))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WEATHER_DB_PATH=from-dotenv.db\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.DBPath)
}

func TestParseTimeout(t *testing.T) {
	d, err := ParseTimeout(" 3s ")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	_, err = ParseTimeout("-1s")
	assert.Error(t, err)
}

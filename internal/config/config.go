package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL      = "https://weather.talkpython.fm/api/weather"
	DefaultDBPath      = "weather_data.db"
	DefaultHTTPTimeout = 10 * time.Second
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// APIURL is the base endpoint queried with city, country and units.
	APIURL string
	// DBPath is the SQLite file holding the weather table. Relative paths
	// resolve against the working directory.
	DBPath      string
	HTTPTimeout time.Duration
}

// LoadFromEnv reads an optional .env file from the working directory and then
// the process environment.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := ParseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	apiURL := strings.TrimSpace(os.Getenv("WEATHER_API_URL"))
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	dbPath := strings.TrimSpace(os.Getenv("WEATHER_DB_PATH"))
	if dbPath == "" {
		dbPath = DefaultDBPath
	}

	timeout := DefaultHTTPTimeout
	if s := strings.TrimSpace(os.Getenv("WEATHER_HTTP_TIMEOUT")); s != "" {
		timeout, err = ParseTimeout(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WEATHER_HTTP_TIMEOUT: %w", err)
		}
	}

	return Config{
		AppEnv:      appEnv,
		LogLevel:    level,
		APIURL:      apiURL,
		DBPath:      dbPath,
		HTTPTimeout: timeout,
	}, nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

// ParseTimeout parses a Go duration string. The HTTP timeout must be finite.
func ParseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/abelzeko/weather-recorder/internal/api"
	"github.com/abelzeko/weather-recorder/internal/config"
	"github.com/abelzeko/weather-recorder/internal/integration"
	"github.com/abelzeko/weather-recorder/internal/logging"
	"github.com/abelzeko/weather-recorder/internal/repository"
	"github.com/abelzeko/weather-recorder/internal/usecases"
)

const appName = "weather-recorder"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// newCommand wires the CLI. Prompts and the payload go to stdout, logs to stderr.
func newCommand(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      appName,
		Usage:     "Fetch current weather for a city and append it to a local database",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database file (env WEATHER_DB_PATH)",
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Weather API base URL (env WEATHER_API_URL)",
			},
			&cli.StringFlag{
				Name:  "timeout",
				Usage: "HTTP request timeout, e.g. 10s (env WEATHER_HTTP_TIMEOUT)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			console, err := setup(cmd, stdin, stdout, stderr)
			if err != nil {
				return err
			}
			return console.Record(ctx)
		},
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "Show weather rows stored for a city",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "city",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "City name as it was entered when recording",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Value:   0,
						Usage:   "Show only the newest N rows (0 = all)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					console, err := setup(cmd, stdin, stdout, stderr)
					if err != nil {
						return err
					}
					return console.ShowHistory(ctx, cmd.String("city"), int(cmd.Int("limit")))
				},
			},
		},
	}
}

// setup loads configuration, installs the process logger and builds the
// console with its dependencies.
func setup(cmd *cli.Command, stdin io.Reader, stdout, stderr io.Writer) (*api.Console, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.New(cfg, stderr, appName)
	slog.SetDefault(logger)
	logger.Debug("starting",
		"app", appName,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
		"db", cfg.DBPath,
	)

	repo := repository.NewSQLiteWeatherRepository(cfg.DBPath, logger)
	client := integration.NewWeatherClient(cfg.APIURL, cfg.HTTPTimeout, logger)
	useCase := usecases.NewWeatherUseCase(repo, client, stdout, logger)

	return api.NewConsole(stdin, stdout, useCase), nil
}

// loadConfig reads the environment and lets flags on the root command
// override it.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, err
	}

	if v := cmd.String("db"); v != "" {
		cfg.DBPath = v
	}
	if v := cmd.String("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v := cmd.String("timeout"); v != "" {
		timeout, err := config.ParseTimeout(v)
		if err != nil {
			return config.Config{}, fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.HTTPTimeout = timeout
	}
	return cfg, nil
}

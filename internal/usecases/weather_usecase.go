// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abelzeko/weather-recorder/internal/entities"
	"github.com/abelzeko/weather-recorder/internal/repository"
)

// WeatherFetcher retrieves the raw weather payload for a location
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, city, country string) (*entities.Payload, error)
}

// WeatherUseCase runs the fetch-and-record flow
type WeatherUseCase struct {
	repo    repository.WeatherRepository
	fetcher WeatherFetcher
	out     io.Writer
	logger  *slog.Logger
}

// NewWeatherUseCase creates a new weather use case. The raw payload of every
// successful fetch is echoed to out (stdout when nil).
func NewWeatherUseCase(repo repository.WeatherRepository, fetcher WeatherFetcher, out io.Writer, logger *slog.Logger) *WeatherUseCase {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherUseCase{
		repo:    repo,
		fetcher: fetcher,
		out:     out,
		logger:  logger,
	}
}

// Run ensures the store exists, fetches weather for city/country and records
// it. A failed fetch or insert is logged and Run still returns nil. Store
// initialization errors and malformed payloads are returned.
func (uc *WeatherUseCase) Run(ctx context.Context, city, country string) error {
	if err := uc.repo.InitStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	payload, err := uc.fetcher.FetchWeather(ctx, city, country)
	if err != nil {
		uc.logger.Error("Failed to retrieve weather data.", "city", city, "country", country)
		return nil
	}

	fmt.Fprintln(uc.out, payload.String())

	return uc.RecordWeather(ctx, payload, city)
}

// RecordWeather extracts a reading from payload and stores it for city.
// Extraction failures are returned for the caller to report; database
// failures are only logged.
func (uc *WeatherUseCase) RecordWeather(ctx context.Context, payload *entities.Payload, city string) error {
	reading, err := ExtractReading(payload)
	if err != nil {
		return fmt.Errorf("failed to parse weather for %s: %w", city, err)
	}

	id, err := uc.repo.SaveReading(ctx, city, reading)
	if err != nil {
		uc.logger.Error("Error storing data in the database", "city", city, "error", err)
		return nil
	}

	uc.logger.Info(fmt.Sprintf("Weather data for %s stored successfully.", city), "id", id)
	return nil
}

// History returns stored rows for city, oldest first
func (uc *WeatherUseCase) History(ctx context.Context, city string, limit int) ([]entities.WeatherRow, error) {
	uc.logger.Debug("Retrieving weather history", "city", city, "limit", limit)
	if err := uc.repo.InitStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return uc.repo.GetWeatherRowsByCity(ctx, city, limit)
}

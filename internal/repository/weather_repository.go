// Package repository provides data access implementations
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/abelzeko/weather-recorder/internal/entities"
)

// ErrRowNotFound is returned when a lookup matches no stored row
var ErrRowNotFound = errors.New("weather row not found")

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS weather (
		id INTEGER PRIMARY KEY,
		city TEXT,
		temperature REAL,
		humidity INTEGER,
		wind_speed REAL,
		description TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`

const insertReadingSQL = `
	INSERT INTO weather (city, temperature, humidity, wind_speed, description)
	VALUES (?, ?, ?, ?, ?)`

const selectColumns = `SELECT id, city, temperature, humidity, wind_speed, description, timestamp FROM weather`

// WeatherRepository defines the interface for weather data persistence operations
type WeatherRepository interface {
	InitStore(ctx context.Context) error
	SaveReading(ctx context.Context, city string, reading entities.WeatherReading) (int64, error)
	GetWeatherRow(ctx context.Context, city string, id int64) (entities.WeatherRow, error)
	GetWeatherRowsByCity(ctx context.Context, city string, limit int) ([]entities.WeatherRow, error)
}

// SQLiteWeatherRepository implements WeatherRepository on a SQLite file.
// Every operation opens its own connection and closes it before returning.
type SQLiteWeatherRepository struct {
	DBPath string
	logger *slog.Logger
}

// NewSQLiteWeatherRepository creates a repository backed by the file at dbPath
func NewSQLiteWeatherRepository(dbPath string, logger *slog.Logger) *SQLiteWeatherRepository {
	if dbPath == "" {
		dbPath = "weather_data.db"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteWeatherRepository{
		DBPath: dbPath,
		logger: logger,
	}
}

func (r *SQLiteWeatherRepository) open(ctx context.Context) (*sql.DB, error) {
	if dir := filepath.Dir(r.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	r.logger.Debug("Opening database", "path", r.DBPath)
	db := sql.OpenDB(newLoggingConnector(r.DBPath, r.logger))
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", r.DBPath, err)
	}
	return db, nil
}

func (r *SQLiteWeatherRepository) closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		r.logger.Error("Error closing database", "path", r.DBPath, "error", err)
	}
}

// InitStore creates the weather table if it doesn't exist. Existing rows are
// left untouched.
func (r *SQLiteWeatherRepository) InitStore(ctx context.Context) error {
	db, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer r.closeDB(db)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create weather table: %w", err)
	}
	return nil
}

// SaveReading appends one row for city and returns its id. The timestamp
// column is filled by its default.
func (r *SQLiteWeatherRepository) SaveReading(ctx context.Context, city string, reading entities.WeatherReading) (int64, error) {
	db, err := r.open(ctx)
	if err != nil {
		return 0, err
	}
	defer r.closeDB(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, insertReadingSQL,
		city,
		reading.Temperature,
		reading.Humidity,
		reading.WindSpeed,
		reading.Description,
	)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert weather for %s: %w", city, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// GetWeatherRow returns the row with the given city and id
func (r *SQLiteWeatherRepository) GetWeatherRow(ctx context.Context, city string, id int64) (entities.WeatherRow, error) {
	db, err := r.open(ctx)
	if err != nil {
		return entities.WeatherRow{}, err
	}
	defer r.closeDB(db)

	row := db.QueryRowContext(ctx, selectColumns+` WHERE city = ? AND id = ?`, city, id)
	wr, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.WeatherRow{}, fmt.Errorf("%w: city=%s id=%d", ErrRowNotFound, city, id)
	}
	if err != nil {
		return entities.WeatherRow{}, fmt.Errorf("failed to query weather row %d: %w", id, err)
	}
	return wr, nil
}

// GetWeatherRowsByCity returns rows for city in insertion order. With limit > 0
// only the newest limit rows are returned.
func (r *SQLiteWeatherRepository) GetWeatherRowsByCity(ctx context.Context, city string, limit int) ([]entities.WeatherRow, error) {
	db, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.closeDB(db)

	query := selectColumns + ` WHERE city = ? ORDER BY id`
	args := []any{city}
	if limit > 0 {
		query = selectColumns + ` WHERE city = ? ORDER BY id DESC LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query weather for %s: %w", city, err)
	}
	defer rows.Close()

	var result []entities.WeatherRow
	for rows.Next() {
		wr, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, wr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	if limit > 0 {
		slices.Reverse(result)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (entities.WeatherRow, error) {
	var wr entities.WeatherRow
	err := s.Scan(
		&wr.ID,
		&wr.City,
		&wr.Temperature,
		&wr.Humidity,
		&wr.WindSpeed,
		&wr.Description,
		&wr.Timestamp,
	)
	return wr, err
}

package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelzeko/weather-recorder/internal/entities"
)

func newTestRepository(t *testing.T) *SQLiteWeatherRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test-weather.db")
	repo := NewSQLiteWeatherRepository(dbPath, nil)
	require.NoError(t, repo.InitStore(context.Background()))
	return repo
}

func sampleReading() entities.WeatherReading {
	return entities.WeatherReading{
		Temperature: 21.5,
		Humidity:    60,
		WindSpeed:   3.2,
		Description: "clear sky",
	}
}

func TestInitStore_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "data", "weather.db")
	repo := NewSQLiteWeatherRepository(dbPath, nil)

	require.NoError(t, repo.InitStore(context.Background()))
	assert.FileExists(t, dbPath)
}

func TestInitStore_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	id, err := repo.SaveReading(ctx, "Seattle", sampleReading())
	require.NoError(t, err)

	require.NoError(t, repo.InitStore(ctx))
	require.NoError(t, repo.InitStore(ctx))

	rows, err := repo.GetWeatherRowsByCity(ctx, "Seattle", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.Equal(t, "clear sky", rows[0].Description)
}

func TestSaveReading_AccumulatesRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	const n = 5
	var ids []int64
	for i := 0; i < n; i++ {
		id, err := repo.SaveReading(ctx, "Seattle", sampleReading())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	rows, err := repo.GetWeatherRowsByCity(ctx, "Seattle", 0)
	require.NoError(t, err)
	require.Len(t, rows, n)
	for i, row := range rows {
		assert.Equal(t, ids[i], row.ID, "rows come back in insertion order")
		if i > 0 {
			assert.Greater(t, row.ID, rows[i-1].ID)
		}
	}
}

func TestSaveReading_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	reading := entities.WeatherReading{
		Temperature: -3.75,
		Humidity:    97,
		WindSpeed:   12.25,
		Description: "light snow, Ünïcode ok",
	}
	before := time.Now().Add(-time.Minute)

	id, err := repo.SaveReading(ctx, "Zürich", reading)
	require.NoError(t, err)

	row, err := repo.GetWeatherRow(ctx, "Zürich", id)
	require.NoError(t, err)

	assert.Equal(t, id, row.ID)
	assert.Equal(t, "Zürich", row.City)
	assert.Equal(t, reading.Temperature, row.Temperature)
	assert.Equal(t, reading.Humidity, row.Humidity)
	assert.Equal(t, reading.WindSpeed, row.WindSpeed)
	assert.Equal(t, reading.Description, row.Description)
	assert.False(t, row.Timestamp.IsZero(), "timestamp defaults to insertion time")
	assert.True(t, row.Timestamp.After(before), "timestamp %s is not recent", row.Timestamp)
}

func TestGetWeatherRow_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	id, err := repo.SaveReading(ctx, "Seattle", sampleReading())
	require.NoError(t, err)

	_, err = repo.GetWeatherRow(ctx, "Portland", id)
	assert.ErrorIs(t, err, ErrRowNotFound)

	_, err = repo.GetWeatherRow(ctx, "Seattle", id+100)
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestGetWeatherRowsByCity_Limit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for i := 0; i < 4; i++ {
		r := sampleReading()
		r.Temperature = float64(i)
		_, err := repo.SaveReading(ctx, "Seattle", r)
		require.NoError(t, err)
	}
	_, err := repo.SaveReading(ctx, "Belgrade", sampleReading())
	require.NoError(t, err)

	rows, err := repo.GetWeatherRowsByCity(ctx, "Seattle", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2.0, rows[0].Temperature)
	assert.Equal(t, 3.0, rows[1].Temperature)

	rows, err = repo.GetWeatherRowsByCity(ctx, "Nowhere", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSaveReading_WithoutTableFails(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	repo := NewSQLiteWeatherRepository(dbPath, nil)

	_, err := repo.SaveReading(context.Background(), "Seattle", sampleReading())
	assert.Error(t, err)
}

func TestInitStore_KeepsExistingSchemaAndRows(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "existing.db")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(createTableSQL)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO weather (city, temperature, humidity, wind_speed, description, timestamp)
		VALUES ('Oslo', 1.5, 80, 4.0, 'fog', '2024-01-02 03:04:05')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo := NewSQLiteWeatherRepository(dbPath, nil)
	require.NoError(t, repo.InitStore(ctx))

	rows, err := repo.GetWeatherRowsByCity(ctx, "Oslo", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "fog", rows[0].Description)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), rows[0].Timestamp.UTC())
}

// Package entities contains the core domain objects for the weather-recorder application
package entities

import (
	"time"
)

// WeatherReading holds the values parsed out of a fetched payload
type WeatherReading struct {
	Temperature float64 // Temperature in the API's metric unit (°C)
	Humidity    int64   // Relative humidity in %
	WindSpeed   float64 // Wind speed as reported by the API
	Description string  // Short text, e.g. "clear sky"
}

// WeatherRow represents a single stored row of the weather table
type WeatherRow struct {
	ID          int64
	City        string
	Temperature float64
	Humidity    int64
	WindSpeed   float64
	Description string
	Timestamp   time.Time // Assigned by the database on insert
}

// Payload is the raw JSON object returned by the weather API
type Payload struct {
	Raw []byte
}

func (p *Payload) String() string {
	return string(p.Raw)
}

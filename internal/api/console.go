// Package api contains the terminal-facing side of the application
package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abelzeko/weather-recorder/internal/entities"
)

const (
	cityPrompt    = "Enter the city name: "
	countryPrompt = "Enter the country code (e.g., US for United States): "
)

// WeatherRecorder is the use case the console drives
type WeatherRecorder interface {
	Run(ctx context.Context, city, country string) error
	History(ctx context.Context, city string, limit int) ([]entities.WeatherRow, error)
}

// Console reads the location interactively and prints results
type Console struct {
	in      *bufio.Reader
	out     io.Writer
	useCase WeatherRecorder
}

// NewConsole creates a console reading prompts from in and writing to out
func NewConsole(in io.Reader, out io.Writer, useCase WeatherRecorder) *Console {
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		useCase: useCase,
	}
}

// Record prompts for city and country and runs one fetch-and-record cycle
func (c *Console) Record(ctx context.Context) error {
	city, err := c.ask(cityPrompt)
	if err != nil {
		return err
	}
	country, err := c.ask(countryPrompt)
	if err != nil {
		return err
	}
	return c.useCase.Run(ctx, city, country)
}

// ShowHistory prints the stored rows for city
func (c *Console) ShowHistory(ctx context.Context, city string, limit int) error {
	rows, err := c.useCase.History(ctx, city, limit)
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.out, FormatHistory(city, rows))
	return err
}

// ask prints prompt and returns the next line without its line ending. The
// value is otherwise taken as typed.
func (c *Console) ask(prompt string) (string, error) {
	if _, err := io.WriteString(c.out, prompt); err != nil {
		return "", err
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// FormatHistory formats stored rows for display
func FormatHistory(city string, rows []entities.WeatherRow) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No weather recorded for %s.\n", city)
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Weather recorded for %s:\n\n", city))
	for _, r := range rows {
		result.WriteString(fmt.Sprintf("#%d  %s  %.1f °C  %d%%  wind %.1f  %s\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05 MST"),
			r.Temperature,
			r.Humidity,
			r.WindSpeed,
			r.Description,
		))
	}
	return result.String()
}

// Package integration handles external service interactions
package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/abelzeko/weather-recorder/internal/entities"
)

// ErrNoData is wrapped by every error FetchWeather returns. Callers treat it
// as "no data for this run", never as a crash.
var ErrNoData = errors.New("no weather data")

const (
	defaultBaseURL = "https://weather.talkpython.fm/api/weather"
	defaultTimeout = 10 * time.Second
	units          = "metric"

	// Upper bound on the body we read from the API.
	maxBodySize = 1 << 20
)

// WeatherClient fetches current weather from the remote API
type WeatherClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWeatherClient creates a new weather API client. An empty baseURL selects
// the public endpoint and a non-positive timeout selects the default.
func NewWeatherClient(baseURL string, timeout time.Duration, logger *slog.Logger) *WeatherClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchWeather performs a single GET for the city/country pair and returns the
// JSON object it answered with. Failures are logged here and returned wrapping
// ErrNoData.
func (c *WeatherClient) FetchWeather(ctx context.Context, city, country string) (*entities.Payload, error) {
	payload, err := c.fetch(ctx, city, country)
	if err != nil {
		c.logger.Error("Error fetching data from the API", "city", city, "country", country, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	return payload, nil
}

func (c *WeatherClient) fetch(ctx context.Context, city, country string) (*entities.Payload, error) {
	reqURL, err := c.buildURL(city, country)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Sending HTTP request to weather API", "url", reqURL)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if reason := errorPageTitle(res.Header.Get("Content-Type"), body); reason != "" {
			return nil, fmt.Errorf("unexpected status code: %s (%s)", res.Status, reason)
		}
		return nil, fmt.Errorf("unexpected status code: %s", res.Status)
	}
	c.logger.Debug("Received HTTP response", "status", res.Status, "bytes", len(body))

	if !gjson.ValidBytes(body) {
		return nil, errors.New("response body is not valid JSON")
	}
	if !gjson.ParseBytes(body).IsObject() {
		return nil, errors.New("response body is not a JSON object")
	}

	return &entities.Payload{Raw: body}, nil
}

func (c *WeatherClient) buildURL(city, country string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("city", city)
	q.Set("country", country)
	q.Set("units", units)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// errorPageTitle returns the <title> of an HTML error body, or "" when the
// body is not HTML or has no title.
func errorPageTitle(contentType string, body []byte) string {
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}

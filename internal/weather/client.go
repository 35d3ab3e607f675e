package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cropweather-ai/cropweather/internal/config"
)

// ErrUpstream marks a non-retryable failure from the weather provider.
// The client performs no retries; callers decide whether to degrade.
var ErrUpstream = errors.New("weather upstream failure")

// Reading is a single observed weather state for a location.
type Reading struct {
	Temperature float64 // °C
	Humidity    float64 // %
	Rainfall    float64 // mm over the last hour
	Location    string
}

// Client fetches current conditions from OpenWeatherMap.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(cfg config.WeatherConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Name string `json:"name"`
}

// Current returns the latest reading for location. Missing rain data
// defaults to 0 rather than failing; any transport error or non-2xx
// status is ErrUpstream.
func (c *Client) Current(ctx context.Context, location string) (Reading, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid weather base URL: %w", err)
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return Reading{}, fmt.Errorf("creating weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Reading{}, fmt.Errorf("%w: HTTP %d: %s", ErrUpstream, resp.StatusCode, body)
	}

	var apiResp openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Reading{}, fmt.Errorf("%w: parsing response: %v", ErrUpstream, err)
	}

	return Reading{
		Temperature: apiResp.Main.Temp,
		Humidity:    apiResp.Main.Humidity,
		Rainfall:    apiResp.Rain.OneHour,
		Location:    location,
	}, nil
}

// Summary renders a reading as the one-line document stored in the
// knowledge base alongside ingested crop data.
func Summary(r Reading) string {
	return fmt.Sprintf("Weather update for %s: Temperature %g°C | Humidity %g%% | Rainfall %g mm",
		r.Location, r.Temperature, r.Humidity, r.Rainfall)
}

// Metadata renders a reading as the stringly metadata map the knowledge
// base stores with weather documents.
func Metadata(r Reading) map[string]string {
	return map[string]string{
		"location":    r.Location,
		"temperature": fmt.Sprintf("%g", r.Temperature),
		"humidity":    fmt.Sprintf("%g", r.Humidity),
		"rainfall":    fmt.Sprintf("%g", r.Rainfall),
	}
}

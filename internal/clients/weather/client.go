// Package weather provides current conditions from the OpenWeatherMap API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/risk"
)

// HTTPDoer is the subset of *http.Client used by the client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to OpenWeatherMap API
type Client struct {
	apiKey     string
	httpClient HTTPDoer
	baseURL    string
}

// NewClient creates a new OpenWeatherMap API client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithHTTPDoer creates a client with a custom transport
func NewClientWithHTTPDoer(apiKey, baseURL string, httpDoer HTTPDoer) *Client {
	c := NewClient(apiKey)
	c.httpClient = httpDoer
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// GetCurrentWeather retrieves current weather conditions for a point
func (c *Client) GetCurrentWeather(ctx context.Context, point geo.Point) (risk.WeatherSample, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", point.Latitude))
	params.Set("lon", fmt.Sprintf("%.6f", point.Longitude))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric") // Get temperature in Celsius

	requestURL := fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return risk.WeatherSample{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return risk.WeatherSample{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return risk.WeatherSample{}, fmt.Errorf("rate limit exceeded (60/minute)")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return risk.WeatherSample{}, fmt.Errorf("invalid API key")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return risk.WeatherSample{}, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var response OpenWeatherCurrentResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return risk.WeatherSample{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return processCurrentWeatherResponse(point, response), nil
}

// CurrentWeather looks up each point in turn and implements
// risk.WeatherProvider. Points that fail are skipped; their errors are joined
// and returned alongside the samples that succeeded.
func (c *Client) CurrentWeather(ctx context.Context, points []geo.Point) ([]risk.WeatherSample, error) {
	var (
		samples []risk.WeatherSample
		errs    []error
	)
	for _, p := range points {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		sample, err := c.GetCurrentWeather(ctx, p)
		if err != nil {
			errs = append(errs, fmt.Errorf("weather at %.5f,%.5f: %w", p.Latitude, p.Longitude, err))
			continue
		}
		samples = append(samples, sample)
	}
	return samples, errors.Join(errs...)
}

// processCurrentWeatherResponse keeps the requested point as the sample
// location; OpenWeatherMap snaps coordinates to its station grid.
func processCurrentWeatherResponse(point geo.Point, response OpenWeatherCurrentResponse) risk.WeatherSample {
	var conditions []string
	for _, w := range response.Weather {
		if w.Description != "" {
			conditions = append(conditions, w.Description)
		} else if w.Main != "" {
			conditions = append(conditions, w.Main)
		}
	}

	return risk.WeatherSample{
		Location:     point,
		Name:         response.Name,
		TemperatureC: float64(response.Main.Temp),
		Description:  strings.Join(conditions, ", "),
	}
}

// OpenWeatherCurrentResponse represents the current weather API response
type OpenWeatherCurrentResponse struct {
	Coord      OpenWeatherCoord     `json:"coord"`
	Weather    []OpenWeatherWeather `json:"weather"`
	Main       OpenWeatherMain      `json:"main"`
	Wind       OpenWeatherWind      `json:"wind"`
	Visibility int32                `json:"visibility"`
	Name       string               `json:"name"`
	Dt         int64                `json:"dt"`
}

// OpenWeatherCoord represents coordinates in response
type OpenWeatherCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OpenWeatherWeather represents weather condition
type OpenWeatherWeather struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// OpenWeatherMain represents main weather data
type OpenWeatherMain struct {
	Temp      float32 `json:"temp"`
	FeelsLike float32 `json:"feels_like"`
	Humidity  int32   `json:"humidity"`
}

// OpenWeatherWind represents wind data
type OpenWeatherWind struct {
	Speed float32 `json:"speed"`
	Deg   int32   `json:"deg"`
}

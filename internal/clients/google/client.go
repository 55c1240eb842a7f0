// Package google wraps the Google Maps Platform endpoints used by route
// analysis: Routes v2 directions, Elevation and reverse Geocoding.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultRoutesURL = "https://routes.googleapis.com"
	defaultMapsURL   = "https://maps.googleapis.com"
)

// HTTPDoer is the subset of *http.Client used by the client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to Google Routes, Elevation and Geocoding APIs
type Client struct {
	apiKey     string
	httpClient HTTPDoer
	routesURL  string
	mapsURL    string
}

// NewClient creates a new Google Maps Platform client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:    apiKey,
		routesURL: defaultRoutesURL,
		mapsURL:   defaultMapsURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithHTTPDoer creates a client with a custom transport. A non-empty
// baseURL replaces both the Routes and Maps hosts.
func NewClientWithHTTPDoer(apiKey, baseURL string, httpDoer HTTPDoer) *Client {
	c := NewClient(apiKey)
	c.httpClient = httpDoer
	if baseURL != "" {
		c.routesURL = baseURL
		c.mapsURL = baseURL
	}
	return c
}

// postJSON sends body to the Routes API and decodes the response into out
func (c *Client) postJSON(ctx context.Context, url string, headers map[string]string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req, out)
}

// getJSON performs a GET against the Maps web services
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("rate limit exceeded")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatus maps the Maps web service status field to an error
func checkStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "":
		return fmt.Errorf("missing status in response")
	default:
		if message != "" {
			return fmt.Errorf("API status %s: %s", status, message)
		}
		return fmt.Errorf("API status %s", status)
	}
}

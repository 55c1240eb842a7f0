// Package config loads analyzer configuration from YAML and the environment.
package config

import (
	"time"

	"github.com/dpup/routesafe/internal/lib/risk"
	"github.com/dpup/routesafe/internal/lib/segment"
	"github.com/dpup/routesafe/internal/lib/turns"
	"github.com/dpup/routesafe/internal/lib/vehicle"
)

// Config represents the complete analyzer configuration
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Risk      risk.Config     `yaml:"risk"`
	Providers ProvidersConfig `yaml:"providers"`
	Advisory  AdvisoryConfig  `yaml:"advisory"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AnalysisConfig controls sampling density and route handling
type AnalysisConfig struct {
	// Mode is one of fast, standard or detailed
	Mode string `yaml:"mode"`

	// MaxPoints overrides the mode's point budget. "all" or "0" disables
	// density reduction.
	MaxPoints string `yaml:"max_points"`

	TurnThreshold       float64 `yaml:"turn_threshold"`
	SegmentLengthMeters float64 `yaml:"segment_length_meters"`
	Workers             int     `yaml:"workers"`
	VehicleClass        string  `yaml:"vehicle_class"`
}

// ProvidersConfig holds external data source settings
type ProvidersConfig struct {
	GoogleAPIKey       string        `yaml:"google_api_key"`
	GoogleBaseURL      string        `yaml:"google_base_url"`
	OpenWeatherAPIKey  string        `yaml:"openweather_api_key"`
	OpenWeatherBaseURL string        `yaml:"openweather_base_url"`
	ElevationCacheTTL  time.Duration `yaml:"elevation_cache_ttl"`
	WeatherCacheTTL    time.Duration `yaml:"weather_cache_ttl"`
}

// AdvisoryConfig holds OpenAI advisory settings
type AdvisoryConfig struct {
	Enabled      bool          `yaml:"enabled"`
	OpenAIAPIKey string        `yaml:"openai_api_key"`
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"base_url"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// LoggingConfig selects the logger flavour
type LoggingConfig struct {
	// Format is "dev" for console output or "json"
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Mode:                string(Standard),
			TurnThreshold:       turns.DefaultThreshold,
			SegmentLengthMeters: segment.DefaultLengthMeters,
			Workers:             4,
			VehicleClass:        string(vehicle.Car),
		},
		Risk: risk.DefaultConfig(),
		Providers: ProvidersConfig{
			ElevationCacheTTL: 30 * 24 * time.Hour, // Terrain does not move
			WeatherCacheTTL:   10 * time.Minute,
		},
		Advisory: AdvisoryConfig{
			Enabled:  true,
			Model:    "gpt-4o-mini",
			CacheTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Format: "dev",
		},
	}
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/routesafe/internal/lib/vehicle"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routesafe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileKeepsMissingDefaults(t *testing.T) {
	path := writeConfig(t, `
analysis:
  mode: detailed
  vehicle_class: tanker
risk:
  weights:
    sharp_turn: 3.0
  thresholds:
    medium: 5
    high: 9
providers:
  weather_cache_ttl: 5m
advisory:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "detailed", cfg.Analysis.Mode)
	assert.Equal(t, "tanker", cfg.Analysis.VehicleClass)
	assert.Equal(t, 3.0, cfg.Risk.Weights.SharpTurn)
	assert.Equal(t, 1.5, cfg.Risk.Weights.Elevation, "Unset weights keep defaults")
	assert.Equal(t, 9.0, cfg.Risk.Thresholds.High)
	assert.Equal(t, 5*time.Minute, cfg.Providers.WeatherCacheTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Providers.ElevationCacheTTL)
	assert.False(t, cfg.Advisory.Enabled)
	assert.Equal(t, 5000.0, cfg.Analysis.SegmentLengthMeters)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "analysis:\n  mode: detailed\n")
	t.Setenv("ROUTESAFE__ANALYSIS__MODE", "fast")
	t.Setenv("ROUTESAFE__ANALYSIS__MAX_POINTS", "all")
	t.Setenv("ROUTESAFE__PROVIDERS__GOOGLE_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fast", cfg.Analysis.Mode)
	assert.Equal(t, "all", cfg.Analysis.MaxPoints)
	assert.Equal(t, "secret", cfg.Providers.GoogleAPIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSnapshot_Modes(t *testing.T) {
	tests := []struct {
		mode      string
		want      Mode
		maxPoints int
		elevation int
		weather   int
		interval  int
		timeout   time.Duration
	}{
		{"fast", Fast, 250, 10, 2, 10, 5 * time.Second},
		{"standard", Standard, 500, 20, 3, 5, 10 * time.Second},
		{"DETAILED", Detailed, 1000, 50, 5, 3, 15 * time.Second},
		{"turbo", Standard, 500, 20, 3, 5, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Analysis.Mode = tt.mode

			s := cfg.Snapshot(context.Background())
			assert.Equal(t, tt.want, s.Mode)
			assert.Equal(t, tt.maxPoints, s.MaxPoints)
			assert.Equal(t, tt.elevation, s.ElevationSamples)
			assert.Equal(t, tt.weather, s.WeatherSamples)
			assert.Equal(t, tt.interval, s.TurnInterval)
			assert.Equal(t, tt.timeout, s.Timeout)
			assert.Equal(t, tt.timeout, s.Risk.LookupTimeout)
			assert.Equal(t, 5000.0, s.SegmentLength)
		})
	}
}

func TestSnapshot_MaxPointsOverride(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Analysis.MaxPoints = "all"
	assert.Equal(t, 0, cfg.Snapshot(context.Background()).MaxPoints)

	cfg.Analysis.MaxPoints = "1200"
	assert.Equal(t, 1200, cfg.Snapshot(context.Background()).MaxPoints)

	cfg.Analysis.MaxPoints = "lots"
	assert.Equal(t, 500, cfg.Snapshot(context.Background()).MaxPoints)
}

func TestSnapshot_IsIndependentOfLaterChanges(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.Snapshot(context.Background())

	cfg.Analysis.Mode = "fast"
	cfg.Risk.Weights.Weather = 10

	assert.Equal(t, Standard, s.Mode)
	assert.Equal(t, 2.0, s.Risk.Weights.Weather)
}

func TestSnapshot_VehicleClass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.VehicleClass = "bus"
	assert.Equal(t, vehicle.Bus, cfg.Snapshot(context.Background()).VehicleClass)

	cfg.Analysis.VehicleClass = "zeppelin"
	assert.Equal(t, vehicle.Car, cfg.Snapshot(context.Background()).VehicleClass)
}

func TestEstimateProcessingTime(t *testing.T) {
	e := EstimateProcessingTime(10000, Standard)
	assert.Equal(t, 500, e.EffectivePoints)
	assert.Equal(t, 23, e.APICalls)
	assert.Equal(t, 36, e.Seconds) // 25 + 11.5
	assert.Equal(t, "Medium", e.Complexity)
	assert.Equal(t, "36 seconds", e.Text)

	e = EstimateProcessingTime(100, Fast)
	assert.Equal(t, 100, e.EffectivePoints)
	assert.Equal(t, 8, e.Seconds) // 2 + 6
	assert.Equal(t, "Low", e.Complexity)

	e = EstimateProcessingTime(5000, Detailed)
	assert.Equal(t, 127, e.Seconds) // 100 + 27.5
	assert.Equal(t, "High", e.Complexity)
	assert.Equal(t, "2 minutes", e.Text)
}

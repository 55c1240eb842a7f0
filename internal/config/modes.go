package config

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/routesafe/internal/lib/risk"
	"github.com/dpup/routesafe/internal/lib/vehicle"
)

// Mode selects a sampling density preset
type Mode string

const (
	Fast     Mode = "fast"
	Standard Mode = "standard"
	Detailed Mode = "detailed"
)

// ModeSettings is the sampling preset for a Mode
type ModeSettings struct {
	MaxPoints        int
	ElevationSamples int
	WeatherSamples   int
	TurnInterval     int
	Timeout          time.Duration

	// secondsPer100 is the base processing estimate
	secondsPer100 float64
}

var modes = map[Mode]ModeSettings{
	Fast: {
		MaxPoints:        250,
		ElevationSamples: 10,
		WeatherSamples:   2,
		TurnInterval:     10,
		Timeout:          5 * time.Second,
		secondsPer100:    2,
	},
	Standard: {
		MaxPoints:        500,
		ElevationSamples: 20,
		WeatherSamples:   3,
		TurnInterval:     5,
		Timeout:          10 * time.Second,
		secondsPer100:    5,
	},
	Detailed: {
		MaxPoints:        1000,
		ElevationSamples: 50,
		WeatherSamples:   5,
		TurnInterval:     3,
		Timeout:          15 * time.Second,
		secondsPer100:    10,
	},
}

// ParseMode resolves a mode name. ok is false for unknown names, which
// resolve to Standard.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modes[m]; !ok {
		return Standard, false
	}
	return m, true
}

// Preset returns the sampling preset for a mode, Standard when unknown
func Preset(m Mode) ModeSettings {
	if s, ok := modes[m]; ok {
		return s
	}
	return modes[Standard]
}

// Settings is the immutable, fully resolved configuration for one analysis
// run
type Settings struct {
	Mode Mode `json:"mode"`

	// MaxPoints of 0 means no density reduction
	MaxPoints        int           `json:"max_points"`
	ElevationSamples int           `json:"elevation_samples"`
	WeatherSamples   int           `json:"weather_samples"`
	TurnInterval     int           `json:"turn_interval"`
	TurnThreshold    float64       `json:"turn_threshold"`
	SegmentLength    float64       `json:"segment_length_meters"`
	Timeout          time.Duration `json:"timeout"`
	Workers          int           `json:"workers"`
	VehicleClass     vehicle.Class `json:"vehicle_class"`
	Risk             risk.Config   `json:"-"`
}

// Snapshot resolves the configuration into per-run Settings. Unknown modes
// and vehicle classes fall back to defaults with a warning.
func (c *Config) Snapshot(ctx context.Context) Settings {
	ctx = logging.EnsureLogger(ctx)
	mode, ok := ParseMode(c.Analysis.Mode)
	if !ok {
		logging.Warnw(ctx, "Unknown processing mode, using standard", "mode", c.Analysis.Mode)
	}
	preset := Preset(mode)

	maxPoints, err := parseMaxPoints(c.Analysis.MaxPoints, preset.MaxPoints)
	if err != nil {
		logging.Warnw(ctx, "Invalid max_points, using mode default", "max_points", c.Analysis.MaxPoints, "error", err)
	}

	class, ok := vehicle.ParseClass(c.Analysis.VehicleClass)
	if !ok && c.Analysis.VehicleClass != "" {
		logging.Warnw(ctx, "Unknown vehicle class, using car", "vehicle_class", c.Analysis.VehicleClass)
	}

	riskConfig := c.Risk
	riskConfig.LookupTimeout = preset.Timeout
	if c.Analysis.Workers > 0 {
		riskConfig.Workers = c.Analysis.Workers
	}

	return Settings{
		Mode:             mode,
		MaxPoints:        maxPoints,
		ElevationSamples: preset.ElevationSamples,
		WeatherSamples:   preset.WeatherSamples,
		TurnInterval:     preset.TurnInterval,
		TurnThreshold:    c.Analysis.TurnThreshold,
		SegmentLength:    c.Analysis.SegmentLengthMeters,
		Timeout:          preset.Timeout,
		Workers:          riskConfig.Workers,
		VehicleClass:     class,
		Risk:             riskConfig,
	}
}

func parseMaxPoints(s string, fallback int) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return fallback, nil
	case "all":
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback, fmt.Errorf("expected a non-negative integer or \"all\"")
	}
	return n, nil
}

// Estimate is a rough processing time forecast
type Estimate struct {
	Seconds         int    `json:"estimated_seconds"`
	Text            string `json:"estimated_text"`
	Complexity      string `json:"complexity"`
	EffectivePoints int    `json:"effective_points"`
	APICalls        int    `json:"api_calls"`
}

// EstimateProcessingTime forecasts how long a route of totalPoints will take
// in the given mode, half a second per external call on top of the per-point
// base rate
func EstimateProcessingTime(totalPoints int, mode Mode) Estimate {
	preset := Preset(mode)

	effective := totalPoints
	if preset.MaxPoints > 0 && effective > preset.MaxPoints {
		effective = preset.MaxPoints
	}

	apiCalls := preset.ElevationSamples + preset.WeatherSamples
	total := float64(effective)/100*preset.secondsPer100 + float64(apiCalls)*0.5

	complexity := "High"
	switch {
	case total < 30:
		complexity = "Low"
	case total < 120:
		complexity = "Medium"
	}

	return Estimate{
		Seconds:         int(total),
		Text:            formatDuration(total),
		Complexity:      complexity,
		EffectivePoints: effective,
		APICalls:        apiCalls,
	}
}

func formatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d seconds", int(seconds))
	case seconds < 3600:
		return plural(int(seconds/60), "minute")
	default:
		hours := int(seconds / 3600)
		minutes := int(math.Mod(seconds, 3600) / 60)
		return plural(hours, "hour") + " " + plural(minutes, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

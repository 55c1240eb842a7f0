// Package elevation holds elevation samples and the statistics derived from them.
package elevation

import (
	"context"
	"math"

	"github.com/dpup/routesafe/internal/lib/geo"
)

// SteepGradePercent is the absolute slope at which a grade counts as steep
const SteepGradePercent = 8.0

// Sample is an elevation reading at a location
type Sample struct {
	Location        geo.Point `json:"location"`
	ElevationMeters float64   `json:"elevation_meters"`
}

// Provider looks up elevations for a list of points. Implementations may
// return fewer samples than requested; callers must tolerate partial results.
type Provider interface {
	Elevations(ctx context.Context, points []geo.Point) ([]Sample, error)
}

// Stats summarizes an elevation profile
type Stats struct {
	MinMeters     float64 `json:"min_meters"`
	MaxMeters     float64 `json:"max_meters"`
	AscentMeters  float64 `json:"ascent_meters"`
	DescentMeters float64 `json:"descent_meters"`
	RangeMeters   float64 `json:"range_meters"`
}

// Grade is the slope between two consecutive samples
type Grade struct {
	Start        Sample  `json:"start"`
	End          Sample  `json:"end"`
	SlopePercent float64 `json:"slope_percent"`
	Uphill       bool    `json:"uphill"`
}

// Summarize computes profile statistics in sample order. No samples yields
// the zero Stats.
func Summarize(samples []Sample) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	stats := Stats{
		MinMeters: samples[0].ElevationMeters,
		MaxMeters: samples[0].ElevationMeters,
	}
	for i, s := range samples {
		stats.MinMeters = math.Min(stats.MinMeters, s.ElevationMeters)
		stats.MaxMeters = math.Max(stats.MaxMeters, s.ElevationMeters)
		if i == 0 {
			continue
		}
		diff := s.ElevationMeters - samples[i-1].ElevationMeters
		if diff > 0 {
			stats.AscentMeters += diff
		} else {
			stats.DescentMeters -= diff
		}
	}
	stats.RangeMeters = stats.MaxMeters - stats.MinMeters
	return stats
}

// Slope returns the grade between two samples as a percentage. Coincident
// samples have no horizontal run and return 0.
func Slope(a, b Sample) float64 {
	run := geo.Distance(a.Location, b.Location)
	if run == 0 {
		return 0
	}
	return (b.ElevationMeters - a.ElevationMeters) / run * 100
}

// SteepGrades finds consecutive sample pairs whose absolute slope reaches
// thresholdPercent
func SteepGrades(samples []Sample, thresholdPercent float64) []Grade {
	var grades []Grade
	for i := 0; i+1 < len(samples); i++ {
		slope := Slope(samples[i], samples[i+1])
		if math.Abs(slope) >= thresholdPercent {
			grades = append(grades, Grade{
				Start:        samples[i],
				End:          samples[i+1],
				SlopePercent: slope,
				Uphill:       slope > 0,
			})
		}
	}
	return grades
}

// Near returns the samples closer than radiusMeters to any of the points
func Near(samples []Sample, points []geo.Point, radiusMeters float64) []Sample {
	var near []Sample
	for _, s := range samples {
		if geo.WithinDistance(s.Location, points, radiusMeters) {
			near = append(near, s)
		}
	}
	return near
}

// Change is the spread between the highest and lowest sample
func Change(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	return Summarize(samples).RangeMeters
}

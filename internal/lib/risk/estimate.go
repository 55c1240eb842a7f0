package risk

import (
	"context"
	"errors"
	"math"

	"github.com/dpup/routesafe/internal/lib/elevation"
	"github.com/dpup/routesafe/internal/lib/segment"
)

// Estimate is the optional per-segment road quality (0-10) and terrain
type Estimate struct {
	Quality *float64
	Terrain Terrain
}

// SegmentEstimator provides road quality and terrain for a segment. Missing
// data is expected; a partial Estimate may accompany an error.
type SegmentEstimator interface {
	Estimate(ctx context.Context, seg segment.Segment) (Estimate, error)
}

// QualityEstimator scores road quality on a 0-10 scale. ok is false when no
// estimate is available.
type QualityEstimator interface {
	Quality(ctx context.Context, seg segment.Segment) (quality float64, ok bool, err error)
}

// TerrainClassifier labels a segment as urban, semi-urban or rural
type TerrainClassifier interface {
	Terrain(ctx context.Context, seg segment.Segment) (Terrain, error)
}

// Combine builds a SegmentEstimator from independent quality and terrain
// sources. Either may be nil.
func Combine(quality QualityEstimator, terrain TerrainClassifier) SegmentEstimator {
	return &combinedEstimator{quality: quality, terrain: terrain}
}

type combinedEstimator struct {
	quality QualityEstimator
	terrain TerrainClassifier
}

func (c *combinedEstimator) Estimate(ctx context.Context, seg segment.Segment) (Estimate, error) {
	estimate := Estimate{Terrain: Unknown}
	var errs []error

	if c.quality != nil {
		q, ok, err := c.quality.Quality(ctx, seg)
		if err != nil {
			errs = append(errs, err)
		} else if ok {
			estimate.Quality = &q
		}
	}

	if c.terrain != nil {
		terrain, err := c.terrain.Terrain(ctx, seg)
		if err != nil {
			errs = append(errs, err)
		} else if terrain != "" {
			estimate.Terrain = terrain
		}
	}

	return estimate, errors.Join(errs...)
}

// SlopeQuality derives road quality from steep grades in the elevation
// profile. Quality starts at 10 and drops by PenaltyPerGrade for each steep
// grade whose endpoints both lie near the segment.
type SlopeQuality struct {
	Samples         []elevation.Sample
	RadiusMeters    float64
	PenaltyPerGrade float64
}

// NewSlopeQuality creates the heuristic over one run's elevation samples
func NewSlopeQuality(samples []elevation.Sample, radiusMeters float64) *SlopeQuality {
	return &SlopeQuality{
		Samples:         samples,
		RadiusMeters:    radiusMeters,
		PenaltyPerGrade: 1.5,
	}
}

// Quality implements QualityEstimator
func (s *SlopeQuality) Quality(ctx context.Context, seg segment.Segment) (float64, bool, error) {
	near := elevation.Near(s.Samples, seg.Points, s.RadiusMeters)
	if len(near) < 2 {
		return 0, false, nil
	}

	grades := elevation.SteepGrades(near, elevation.SteepGradePercent)
	quality := 10 - float64(len(grades))*s.PenaltyPerGrade
	return math.Max(quality, 0), true, nil
}

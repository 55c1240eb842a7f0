// Package risk scores route segments by combining independent hazard signals.
package risk

import (
	"context"
	"sync"
	"time"

	"github.com/dpup/prefab/logging"
	"golang.org/x/sync/errgroup"

	"github.com/dpup/routesafe/internal/lib/elevation"
	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/segment"
	"github.com/dpup/routesafe/internal/lib/turns"
)

// Weights scale each factor's magnitude into score units
type Weights struct {
	SharpTurn   float64 `yaml:"sharp_turn"`
	Elevation   float64 `yaml:"elevation"`
	Weather     float64 `yaml:"weather"`
	RoadQuality float64 `yaml:"road_quality"`
}

// Config holds the scoring knobs. Zero values are replaced by defaults.
type Config struct {
	Weights    Weights    `yaml:"weights"`
	Thresholds Thresholds `yaml:"thresholds"`

	TurnRadiusMeters      float64 `yaml:"turn_radius_meters"`
	ElevationRadiusMeters float64 `yaml:"elevation_radius_meters"`
	WeatherRadiusMeters   float64 `yaml:"weather_radius_meters"`

	// Elevation change must exceed this before it counts
	ElevationTriggerMeters float64 `yaml:"elevation_trigger_meters"`

	// Road quality below this (0-10 scale) counts
	QualityTrigger float64 `yaml:"quality_trigger"`

	Workers       int           `yaml:"workers"`
	LookupTimeout time.Duration `yaml:"lookup_timeout"`
}

// DefaultConfig returns the stock weights and thresholds
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			SharpTurn:   2.0,
			Elevation:   1.5,
			Weather:     2.0,
			RoadQuality: 0.5,
		},
		Thresholds:             DefaultThresholds(),
		TurnRadiusMeters:       100,
		ElevationRadiusMeters:  100,
		WeatherRadiusMeters:    5000,
		ElevationTriggerMeters: 100,
		QualityTrigger:         7,
		Workers:                4,
		LookupTimeout:          10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Weights == (Weights{}) {
		c.Weights = d.Weights
	}
	if c.Thresholds == (Thresholds{}) {
		c.Thresholds = d.Thresholds
	}
	if c.TurnRadiusMeters <= 0 {
		c.TurnRadiusMeters = d.TurnRadiusMeters
	}
	if c.ElevationRadiusMeters <= 0 {
		c.ElevationRadiusMeters = d.ElevationRadiusMeters
	}
	if c.WeatherRadiusMeters <= 0 {
		c.WeatherRadiusMeters = d.WeatherRadiusMeters
	}
	if c.ElevationTriggerMeters <= 0 {
		c.ElevationTriggerMeters = d.ElevationTriggerMeters
	}
	if c.QualityTrigger <= 0 {
		c.QualityTrigger = d.QualityTrigger
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = d.LookupTimeout
	}
	return c
}

// Inputs are the route-wide signals shared by every segment
type Inputs struct {
	Turns      []turns.SharpTurn
	Elevations []elevation.Sample
	Weather    []WeatherSample
}

// Omission records a factor that could not be evaluated for a segment
type Omission struct {
	SegmentIndex int    `json:"segment_index"`
	Source       string `json:"source"`
	Reason       string `json:"reason"`
}

// Scorer assigns a RiskRecord to every segment
type Scorer struct {
	config    Config
	estimator SegmentEstimator
}

// NewScorer creates a scorer. estimator may be nil, in which case road
// quality is never scored and terrain stays unknown.
func NewScorer(config Config, estimator SegmentEstimator) *Scorer {
	return &Scorer{
		config:    config.withDefaults(),
		estimator: estimator,
	}
}

// Config returns the effective configuration
func (s *Scorer) Config() Config {
	return s.config
}

// Score evaluates segments concurrently and returns one record per segment in
// segment order. Lookup failures omit the affected factor and are reported
// as omissions; they never stop scoring.
func (s *Scorer) Score(ctx context.Context, segments []segment.Segment, inputs Inputs) ([]*RiskRecord, []Omission) {
	ctx = logging.EnsureLogger(ctx)
	records := make([]*RiskRecord, len(segments))

	var (
		mu        sync.Mutex
		omissions []Omission
	)

	var g errgroup.Group
	g.SetLimit(s.config.Workers)

	for i := range segments {
		g.Go(func() error {
			record, omission := s.ScoreSegment(ctx, segments[i], inputs)
			records[i] = record
			if omission != nil {
				omission.SegmentIndex = i
				logging.Warnw(ctx, "Segment factor omitted",
					"segment", i, "source", omission.Source, "reason", omission.Reason)
				mu.Lock()
				omissions = append(omissions, *omission)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return records, omissions
}

// ScoreSegment evaluates every factor for one segment
func (s *Scorer) ScoreSegment(ctx context.Context, seg segment.Segment, inputs Inputs) (*RiskRecord, *Omission) {
	record := NewRecord(seg, s.config.Thresholds)

	if f, ok := s.turnFactor(seg, inputs.Turns); ok {
		record.AddFactor(f)
	}
	if f, ok := s.elevationFactor(seg, inputs.Elevations); ok {
		record.AddFactor(f)
	}
	if f, ok := s.weatherFactor(seg, inputs.Weather); ok {
		record.AddFactor(f)
	}

	if s.estimator == nil {
		return record, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.config.LookupTimeout)
	defer cancel()

	estimate, err := s.estimator.Estimate(lookupCtx, seg)
	if estimate.Terrain != "" {
		record.Terrain = estimate.Terrain
	}
	if f, ok := s.qualityFactor(estimate); ok {
		record.AddFactor(f)
	}

	if err != nil {
		return record, &Omission{Source: "segment_estimator", Reason: err.Error()}
	}
	return record, nil
}

func (s *Scorer) turnFactor(seg segment.Segment, candidates []turns.SharpTurn) (RiskFactor, bool) {
	var inSegment []turns.SharpTurn
	for _, t := range candidates {
		if geo.WithinDistance(t.Location, seg.Points, s.config.TurnRadiusMeters) {
			inSegment = append(inSegment, t)
		}
	}
	if len(inSegment) == 0 {
		return RiskFactor{}, false
	}

	return RiskFactor{
		Kind:      SharpTurns,
		Weight:    s.config.Weights.SharpTurn,
		Magnitude: float64(len(inSegment)),
		Detail:    FactorDetail{Turns: inSegment},
	}, true
}

func (s *Scorer) elevationFactor(seg segment.Segment, samples []elevation.Sample) (RiskFactor, bool) {
	near := elevation.Near(samples, seg.Points, s.config.ElevationRadiusMeters)
	change := elevation.Change(near)
	if change <= s.config.ElevationTriggerMeters {
		return RiskFactor{}, false
	}

	return RiskFactor{
		Kind:      Elevation,
		Weight:    s.config.Weights.Elevation,
		Magnitude: change,
		Detail:    FactorDetail{Elevations: near},
	}, true
}

func (s *Scorer) weatherFactor(seg segment.Segment, samples []WeatherSample) (RiskFactor, bool) {
	for _, w := range samples {
		if !w.IsAdverse() {
			continue
		}
		if !geo.WithinDistance(w.Location, seg.Points, s.config.WeatherRadiusMeters) {
			continue
		}

		sample := w
		return RiskFactor{
			Kind:      Weather,
			Weight:    s.config.Weights.Weather,
			Magnitude: 1,
			Detail:    FactorDetail{Weather: &sample},
		}, true
	}
	return RiskFactor{}, false
}

func (s *Scorer) qualityFactor(estimate Estimate) (RiskFactor, bool) {
	if estimate.Quality == nil || *estimate.Quality >= s.config.QualityTrigger {
		return RiskFactor{}, false
	}

	quality := *estimate.Quality
	return RiskFactor{
		Kind:      RoadQuality,
		Weight:    s.config.Weights.RoadQuality,
		Magnitude: 10 - quality,
		Detail:    FactorDetail{QualityScore: &quality},
	}, true
}

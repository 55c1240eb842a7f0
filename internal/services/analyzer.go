package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/dpup/routesafe/internal/clients/google"
	"github.com/dpup/routesafe/internal/config"
	"github.com/dpup/routesafe/internal/ingest"
	"github.com/dpup/routesafe/internal/lib/advisory"
	"github.com/dpup/routesafe/internal/lib/elevation"
	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/risk"
	"github.com/dpup/routesafe/internal/lib/segment"
	"github.com/dpup/routesafe/internal/lib/simplify"
	"github.com/dpup/routesafe/internal/lib/turns"
	"github.com/dpup/routesafe/internal/lib/vehicle"
	"github.com/dpup/routesafe/internal/metrics"
)

// defaultSpeedKmh is used to estimate duration when none is supplied
const defaultSpeedKmh = 50.0

// qualityRadiusMeters is the neighbourhood the slope heuristic looks at
const qualityRadiusMeters = 100.0

// RouteSource resolves directions between two points
type RouteSource interface {
	ComputeRoutes(ctx context.Context, origin, destination geo.Point) (*google.RouteData, error)
}

// Dependencies are the external lookups the analyzer uses. Any may be nil, in
// which case the related factor or output is skipped.
type Dependencies struct {
	Elevation elevation.Provider
	Weather   risk.WeatherProvider
	Terrain   risk.TerrainClassifier
	Advisor   advisory.Advisor
	Routes    RouteSource
}

// Request is one analysis job
type Request struct {
	Name   string
	Points []geo.Point

	// Bounds filters the input. nil keeps every point.
	Bounds *geo.Bounds

	// Mode overrides the configured processing mode when set
	Mode string

	// VehicleClass overrides the configured vehicle when set
	VehicleClass string

	// BaseDurationSeconds of 0 means estimate from distance
	BaseDurationSeconds float64

	// DistanceMeters of 0 means measure the ordered route
	DistanceMeters float64
}

// RouteStats summarizes the analyzed route
type RouteStats struct {
	InputPoints             int           `json:"input_points"`
	InBoundsPoints          int           `json:"in_bounds_points"`
	AnalyzedPoints          int           `json:"analyzed_points"`
	ReductionMode           string        `json:"reduction_mode"`
	DistanceMeters          float64       `json:"distance_meters"`
	DistanceKm              float64       `json:"distance_km"`
	BaseDurationSeconds     float64       `json:"base_duration_seconds"`
	DurationEstimated       bool          `json:"duration_estimated"`
	AdjustedDurationSeconds float64       `json:"adjusted_duration_seconds"`
	VehicleClass            vehicle.Class `json:"vehicle_class"`
	SpeedMultiplier         float64       `json:"speed_multiplier"`
	CarbonKg                float64       `json:"carbon_kg"`
	SegmentCount            int           `json:"segment_count"`
}

// ElevationProfile holds the sampled profile and what was derived from it
type ElevationProfile struct {
	Samples     []elevation.Sample `json:"samples"`
	Stats       elevation.Stats    `json:"stats"`
	SteepGrades []elevation.Grade  `json:"steep_grades"`
}

// SegmentAdvisory is guidance attached to one segment
type SegmentAdvisory struct {
	SegmentIndex int `json:"segment_index"`
	advisory.Advisory
}

// Degradation records a lookup that failed without stopping the analysis
type Degradation struct {
	Stage        string `json:"stage"`
	Detail       string `json:"detail"`
	SegmentIndex *int   `json:"segment_index,omitempty"`
}

// Analysis is the full result of one run
type Analysis struct {
	Name           string               `json:"name,omitempty"`
	Settings       config.Settings      `json:"settings"`
	Route          geo.Route            `json:"-"`
	Polyline       string               `json:"polyline"`
	Stats          RouteStats           `json:"stats"`
	SharpTurns     []turns.SharpTurn    `json:"sharp_turns"`
	BlindSpots     []turns.SharpTurn    `json:"blind_spots"`
	Elevation      ElevationProfile     `json:"elevation"`
	Weather        []risk.WeatherSample `json:"weather"`
	Segments       []*risk.RiskRecord   `json:"segments"`
	OverallScore   float64              `json:"overall_score"`
	OverallLevel   risk.Level           `json:"overall_level"`
	Advisories     []SegmentAdvisory    `json:"advisories"`
	Degradations   []Degradation        `json:"degradations"`
	GeneratedAt    time.Time            `json:"generated_at"`
	ElapsedSeconds float64              `json:"elapsed_seconds"`
}

// RouteAnalyzer runs the simplify, detect, score and advise pipeline
type RouteAnalyzer struct {
	config *config.Config
	deps   Dependencies
	now    func() time.Time
}

// NewRouteAnalyzer creates an analyzer. The config is snapshotted at the start
// of every run, so later edits only affect later runs.
func NewRouteAnalyzer(cfg *config.Config, deps Dependencies) *RouteAnalyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &RouteAnalyzer{
		config: cfg,
		deps:   deps,
		now:    time.Now,
	}
}

// IsInputError reports whether err means the request itself was unusable
func IsInputError(err error) bool {
	return errors.Is(err, ingest.ErrNoValidCoordinates) ||
		errors.Is(err, ingest.ErrTooFewColumns) ||
		errors.Is(err, simplify.ErrNoPointsInBounds)
}

// AnalyzeDirections fetches a driving route and analyzes its geometry, using
// the directions duration and distance as the base values
func (a *RouteAnalyzer) AnalyzeDirections(ctx context.Context, origin, destination geo.Point, req Request) (*Analysis, error) {
	ctx = logging.EnsureLogger(ctx)
	if a.deps.Routes == nil {
		return nil, fmt.Errorf("directions are not configured")
	}

	start := time.Now()
	data, err := a.deps.Routes.ComputeRoutes(ctx, origin, destination)
	metrics.ObserveProvider("routes", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to compute route: %w", err)
	}
	if len(data.Points) == 0 {
		return nil, ingest.ErrNoValidCoordinates
	}

	req.Points = data.Points
	if req.BaseDurationSeconds == 0 {
		req.BaseDurationSeconds = float64(data.DurationSeconds)
	}
	if req.DistanceMeters == 0 {
		req.DistanceMeters = float64(data.DistanceMeters)
	}

	logging.Infow(ctx, "Directions resolved",
		"points", len(data.Points), "distance_m", data.DistanceMeters, "duration_s", data.DurationSeconds)

	return a.Analyze(ctx, req)
}

// Analyze runs the pipeline. Only input errors are returned; failed lookups
// are recorded as degradations and the analysis continues without them.
func (a *RouteAnalyzer) Analyze(ctx context.Context, req Request) (analysis *Analysis, err error) {
	ctx = logging.EnsureLogger(ctx)
	started := a.now()
	settings := a.snapshot(ctx, req)

	defer func() {
		metrics.ObserveAnalysis(string(settings.Mode), started, err)
	}()

	if len(req.Points) == 0 {
		return nil, ingest.ErrNoValidCoordinates
	}

	bounds := boundsFor(req)
	simplified, err := simplify.Simplify(req.Points, bounds, settings.MaxPoints)
	if err != nil {
		logging.Warnw(ctx, "Route rejected", "points", len(req.Points), "error", err)
		return nil, err
	}
	route := simplified.Route

	metrics.RoutePoints.WithLabelValues("input").Observe(float64(simplified.InputPoints))
	metrics.RoutePoints.WithLabelValues("analyzed").Observe(float64(len(route)))

	logging.Infow(ctx, "Route simplified",
		"mode", settings.Mode,
		"input", simplified.InputPoints,
		"in_bounds", simplified.InBounds,
		"analyzed", len(route),
		"reduction", simplified.ReductionMode)

	state := &run{analyzer: a, settings: settings}
	inputs := state.gather(ctx, route)

	segments := segment.Split(route, settings.SegmentLength)
	estimator := risk.Combine(risk.NewSlopeQuality(inputs.Elevations, qualityRadiusMeters), a.deps.Terrain)
	scorer := risk.NewScorer(settings.Risk, estimator)
	state.workers = scorer.Config().Workers

	records, omissions := scorer.Score(ctx, segments, inputs)
	for _, o := range omissions {
		idx := o.SegmentIndex
		state.degrade(ctx, Degradation{Stage: o.Source, Detail: o.Reason, SegmentIndex: &idx})
	}

	analysis = &Analysis{
		Name:         req.Name,
		Settings:     settings,
		Route:        route,
		Polyline:     geo.EncodePolyline(route),
		Stats:        routeStats(req, simplified, settings.VehicleClass, len(segments)),
		SharpTurns:   inputs.Turns,
		BlindSpots:   turns.BlindSpots(inputs.Turns),
		Weather:      inputs.Weather,
		Segments:     records,
		OverallScore: risk.OverallScore(records),
		Elevation: ElevationProfile{
			Samples:     inputs.Elevations,
			Stats:       elevation.Summarize(inputs.Elevations),
			SteepGrades: elevation.SteepGrades(inputs.Elevations, elevation.SteepGradePercent),
		},
		GeneratedAt: started,
	}
	analysis.OverallLevel = scorer.Config().Thresholds.Level(analysis.OverallScore)

	for _, r := range records {
		metrics.SegmentsByLevel.WithLabelValues(string(r.Level())).Inc()
	}

	analysis.Advisories = state.advise(ctx, records)
	analysis.Degradations = state.degradations
	analysis.ElapsedSeconds = a.now().Sub(started).Seconds()

	logging.Infow(ctx, "Route analyzed",
		"segments", len(records),
		"sharp_turns", len(inputs.Turns),
		"overall_score", analysis.OverallScore,
		"overall_level", analysis.OverallLevel,
		"advisories", len(analysis.Advisories),
		"degradations", len(analysis.Degradations))

	return analysis, nil
}

func (a *RouteAnalyzer) snapshot(ctx context.Context, req Request) config.Settings {
	cfg := *a.config
	if req.Mode != "" {
		cfg.Analysis.Mode = req.Mode
	}
	if req.VehicleClass != "" {
		cfg.Analysis.VehicleClass = req.VehicleClass
	}
	return cfg.Snapshot(ctx)
}

// run carries the per-analysis state shared by the pipeline stages
type run struct {
	analyzer *RouteAnalyzer
	settings config.Settings
	workers  int

	mu           sync.Mutex
	degradations []Degradation
}

func (r *run) degrade(ctx context.Context, d Degradation) {
	metrics.Degradations.WithLabelValues(d.Stage).Inc()
	logging.Warnw(ctx, "Analysis degraded", "stage", d.Stage, "detail", d.Detail)

	r.mu.Lock()
	r.degradations = append(r.degradations, d)
	r.mu.Unlock()
}

// gather runs turn detection and the provider lookups in parallel
func (r *run) gather(ctx context.Context, route geo.Route) risk.Inputs {
	var inputs risk.Inputs
	deps := r.analyzer.deps

	var g errgroup.Group

	g.Go(func() error {
		inputs.Turns = turns.NewDetector(r.settings.TurnInterval, r.settings.TurnThreshold).Detect(route)
		return nil
	})

	if deps.Elevation != nil {
		g.Go(func() error {
			points := geo.SampleEvenly(route, r.settings.ElevationSamples)
			samples, err := lookup(ctx, r.settings.Timeout, "elevation", func(ctx context.Context) ([]elevation.Sample, error) {
				return deps.Elevation.Elevations(ctx, points)
			})
			if err != nil {
				r.degrade(ctx, Degradation{Stage: "elevation", Detail: err.Error()})
			}
			inputs.Elevations = samples
			return nil
		})
	}

	if deps.Weather != nil {
		g.Go(func() error {
			points := geo.SampleEvenly(route, r.settings.WeatherSamples)
			samples, err := lookup(ctx, r.settings.Timeout, "weather", func(ctx context.Context) ([]risk.WeatherSample, error) {
				return deps.Weather.CurrentWeather(ctx, points)
			})
			if err != nil {
				r.degrade(ctx, Degradation{Stage: "weather", Detail: err.Error()})
			}
			inputs.Weather = samples
			return nil
		})
	}

	_ = g.Wait()
	return inputs
}

// lookup calls a provider under the mode timeout and records its latency.
// Partial results are kept alongside the error.
func lookup[T any](ctx context.Context, timeout time.Duration, provider string, fn func(context.Context) ([]T, error)) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := fn(ctx)
	metrics.ObserveProvider(provider, start, err)
	return result, err
}

// advise requests guidance for every MEDIUM and HIGH segment, in segment order
func (r *run) advise(ctx context.Context, records []*risk.RiskRecord) []SegmentAdvisory {
	advisor := r.analyzer.deps.Advisor
	if advisor == nil {
		return nil
	}

	results := make([]*SegmentAdvisory, len(records))

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, record := range records {
		if !advisory.Eligible(record) {
			continue
		}
		g.Go(func() error {
			adv, err := lookupOne(ctx, r.settings.Timeout, func(ctx context.Context) (advisory.Advisory, error) {
				return advisor.Advise(ctx, advisory.RequestFor(record))
			})
			if err != nil {
				idx := i
				r.degrade(ctx, Degradation{Stage: "advisory", Detail: err.Error(), SegmentIndex: &idx})
				return nil
			}
			results[i] = &SegmentAdvisory{SegmentIndex: i, Advisory: adv}
			return nil
		})
	}
	_ = g.Wait()

	var advisories []SegmentAdvisory
	for _, a := range results {
		if a != nil {
			advisories = append(advisories, *a)
		}
	}
	return advisories
}

func lookupOne[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func routeStats(req Request, simplified simplify.Result, class vehicle.Class, segments int) RouteStats {
	stats := RouteStats{
		InputPoints:     simplified.InputPoints,
		InBoundsPoints:  simplified.InBounds,
		AnalyzedPoints:  len(simplified.Route),
		ReductionMode:   simplified.ReductionMode,
		DistanceMeters:  req.DistanceMeters,
		VehicleClass:    class,
		SpeedMultiplier: vehicle.Multiplier(class),
		SegmentCount:    segments,
	}
	if stats.DistanceMeters <= 0 {
		stats.DistanceMeters = simplified.Route.Length()
	}
	stats.DistanceKm = stats.DistanceMeters / 1000

	stats.BaseDurationSeconds = req.BaseDurationSeconds
	if stats.BaseDurationSeconds <= 0 {
		stats.BaseDurationSeconds = stats.DistanceKm / defaultSpeedKmh * 3600
		stats.DurationEstimated = true
	}
	stats.AdjustedDurationSeconds = vehicle.AdjustedDuration(stats.BaseDurationSeconds, class)
	stats.CarbonKg = vehicle.CarbonFootprint(stats.DistanceMeters, class)
	return stats
}

// boundsFor returns the request bounds, or a box around every point anchored
// at the corner nearest the first point
func boundsFor(req Request) geo.Bounds {
	if req.Bounds != nil {
		return *req.Bounds
	}
	if len(req.Points) == 0 {
		return geo.Bounds{}
	}

	mp := make(orb.MultiPoint, len(req.Points))
	for i, p := range req.Points {
		mp[i] = p.Orb()
	}
	box := mp.Bound()

	corners := []geo.Point{
		geo.FromOrb(box.Min),
		geo.FromOrb(box.Max),
		geo.FromOrb(box.LeftTop()),
		geo.FromOrb(box.RightBottom()),
	}
	from := corners[0]
	for _, c := range corners[1:] {
		if geo.Distance(req.Points[0], c) < geo.Distance(req.Points[0], from) {
			from = c
		}
	}

	to := geo.Point{
		Latitude:  box.Min.Lat() + box.Max.Lat() - from.Latitude,
		Longitude: box.Min.Lon() + box.Max.Lon() - from.Longitude,
	}
	return geo.Bounds{From: from, To: to}
}

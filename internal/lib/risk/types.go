package risk

import (
	"encoding/json"
	"math"

	"github.com/dpup/routesafe/internal/lib/elevation"
	"github.com/dpup/routesafe/internal/lib/segment"
	"github.com/dpup/routesafe/internal/lib/turns"
)

// FactorKind identifies the signal a risk factor was derived from
type FactorKind string

const (
	SharpTurns  FactorKind = "sharp_turns"
	Elevation   FactorKind = "elevation"
	Weather     FactorKind = "weather"
	RoadQuality FactorKind = "road_quality"
)

// Level is the discrete risk classification of a segment
type Level string

const (
	Low    Level = "LOW"
	Medium Level = "MEDIUM"
	High   Level = "HIGH"
)

// Terrain is a descriptive annotation; it never feeds the score
type Terrain string

const (
	Urban     Terrain = "urban"
	SemiUrban Terrain = "semi-urban"
	Rural     Terrain = "rural"
	Unknown   Terrain = "unknown"
)

const (
	// elevationScaleMeters converts elevation change into score units
	elevationScaleMeters = 100.0

	// elevationCap bounds the scaled elevation magnitude
	elevationCap = 5.0
)

// Thresholds map a score onto a Level. Both comparisons are strict.
type Thresholds struct {
	Medium float64 `yaml:"medium" json:"medium"`
	High   float64 `yaml:"high" json:"high"`
}

// DefaultThresholds returns the stock 4 / 8 boundaries
func DefaultThresholds() Thresholds {
	return Thresholds{Medium: 4, High: 8}
}

// Level classifies a score
func (t Thresholds) Level(score float64) Level {
	switch {
	case score > t.High:
		return High
	case score > t.Medium:
		return Medium
	default:
		return Low
	}
}

// FactorDetail carries the evidence behind a factor. Only the fields relevant
// to the factor kind are set.
type FactorDetail struct {
	Turns        []turns.SharpTurn  `json:"turns,omitempty"`
	Elevations   []elevation.Sample `json:"elevations,omitempty"`
	Weather      *WeatherSample     `json:"weather,omitempty"`
	QualityScore *float64           `json:"quality_score,omitempty"`
}

// RiskFactor is one weighted signal attached to a segment
type RiskFactor struct {
	Kind      FactorKind   `json:"kind"`
	Weight    float64      `json:"weight"`
	Magnitude float64      `json:"magnitude"`
	Detail    FactorDetail `json:"detail"`
}

// Contribution is weight * f(magnitude). Elevation magnitude is in meters and
// is scaled per 100m and capped; the other kinds use the magnitude directly.
// Negative inputs contribute nothing.
func (f RiskFactor) Contribution() float64 {
	magnitude := math.Max(f.Magnitude, 0)
	if f.Kind == Elevation {
		magnitude = math.Min(magnitude/elevationScaleMeters, elevationCap)
	}
	return math.Max(f.Weight, 0) * magnitude
}

// RiskRecord is the scored result for one segment. Score and level are derived
// from the factors and only change through AddFactor.
type RiskRecord struct {
	Segment segment.Segment
	Terrain Terrain

	factors    []RiskFactor
	score      float64
	level      Level
	thresholds Thresholds
}

// NewRecord creates an unscored record for the segment
func NewRecord(seg segment.Segment, thresholds Thresholds) *RiskRecord {
	return &RiskRecord{
		Segment:    seg,
		Terrain:    Unknown,
		level:      thresholds.Level(0),
		thresholds: thresholds,
	}
}

// AddFactor attaches a factor and recomputes score and level
func (r *RiskRecord) AddFactor(f RiskFactor) {
	r.factors = append(r.factors, f)
	r.recompute()
}

func (r *RiskRecord) recompute() {
	score := 0.0
	for _, f := range r.factors {
		score += f.Contribution()
	}
	r.score = score
	r.level = r.thresholds.Level(score)
}

// Factors returns a copy of the attached factors in evaluation order
func (r *RiskRecord) Factors() []RiskFactor {
	return append([]RiskFactor(nil), r.factors...)
}

// Score returns the summed factor contributions
func (r *RiskRecord) Score() float64 {
	return r.score
}

// Level returns the classification of the current score
func (r *RiskRecord) Level() Level {
	return r.level
}

// HasFactor reports whether a factor of the given kind is attached
func (r *RiskRecord) HasFactor(kind FactorKind) bool {
	for _, f := range r.factors {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

type recordJSON struct {
	Segment segment.Segment `json:"segment"`
	Factors []RiskFactor    `json:"factors"`
	Score   float64         `json:"score"`
	Level   Level           `json:"level"`
	Terrain Terrain         `json:"terrain_type"`
}

// MarshalJSON exposes the derived fields alongside the segment
func (r *RiskRecord) MarshalJSON() ([]byte, error) {
	factors := r.factors
	if factors == nil {
		factors = []RiskFactor{}
	}
	return json.Marshal(recordJSON{
		Segment: r.Segment,
		Factors: factors,
		Score:   r.score,
		Level:   r.level,
		Terrain: r.Terrain,
	})
}

// OverallScore weights each segment score by segment length. When no segment
// has length the plain mean is used. Rounded to 2 decimals.
func OverallScore(records []*RiskRecord) float64 {
	if len(records) == 0 {
		return 0
	}

	totalLength := 0.0
	for _, r := range records {
		totalLength += r.Segment.LengthMeters
	}

	score := 0.0
	if totalLength > 0 {
		for _, r := range records {
			score += r.Score() * r.Segment.LengthMeters / totalLength
		}
	} else {
		for _, r := range records {
			score += r.Score()
		}
		score /= float64(len(records))
	}

	return math.Round(score*100) / 100
}

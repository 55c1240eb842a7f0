// Package turns finds sharp direction changes along an ordered route.
package turns

import (
	"sort"

	"github.com/dpup/routesafe/internal/lib/geo"
)

const (
	// DefaultThreshold is the minimum deviation, in degrees, for a sharp turn
	DefaultThreshold = 30.0

	// BlindSpotThreshold tags turns strictly sharper than this as blind spots
	BlindSpotThreshold = 70.0
)

// SharpTurn is a location where the route deviates by at least the threshold
type SharpTurn struct {
	Location     geo.Point `json:"location"`
	AngleDegrees float64   `json:"angle_degrees"`
	SourceIndex  int       `json:"source_index"`
}

// IsBlindSpot reports whether the turn is sharp enough to hide oncoming traffic
func (t SharpTurn) IsBlindSpot() bool {
	return t.AngleDegrees > BlindSpotThreshold
}

// Detector samples bearing changes over a window of Interval points on each
// side. Wider windows smooth out GPS jitter.
type Detector struct {
	Interval  int
	Threshold float64
}

// NewDetector creates a detector; non-positive values fall back to an
// interval of 1 and the default threshold
func NewDetector(interval int, threshold float64) Detector {
	if interval < 1 {
		interval = 1
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Detector{Interval: interval, Threshold: threshold}
}

// Detect scans route[k:len-k] stepping by k and emits a turn wherever the
// angle between route[i-k] -> route[i] -> route[i+k] meets the threshold.
// Results are in ascending route index.
func (d Detector) Detect(route geo.Route) []SharpTurn {
	k := d.Interval
	if k < 1 {
		k = 1
	}

	var turns []SharpTurn
	for i := k; i < len(route)-k; i += k {
		angle := geo.TurnAngle(route[i-k], route[i], route[i+k])
		if angle >= d.Threshold {
			turns = append(turns, SharpTurn{
				Location:     route[i],
				AngleDegrees: angle,
				SourceIndex:  i,
			})
		}
	}
	return turns
}

// BlindSpots returns the blind-spot turns, most severe first
func BlindSpots(turns []SharpTurn) []SharpTurn {
	var blind []SharpTurn
	for _, t := range turns {
		if t.IsBlindSpot() {
			blind = append(blind, t)
		}
	}

	sort.SliceStable(blind, func(i, j int) bool {
		return blind[i].AngleDegrees > blind[j].AngleDegrees
	})
	return blind
}

// Locations extracts the turn positions
func Locations(turns []SharpTurn) []geo.Point {
	points := make([]geo.Point, len(turns))
	for i, t := range turns {
		points[i] = t.Location
	}
	return points
}

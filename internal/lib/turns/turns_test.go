package turns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/routesafe/internal/lib/geo"
)

func TestDetect_ThreePointScenario(t *testing.T) {
	route := geo.Route{
		{Latitude: 17.0, Longitude: 78.0},
		{Latitude: 17.001, Longitude: 78.001},
		{Latitude: 17.1, Longitude: 78.5},
	}
	angle := geo.TurnAngle(route[0], route[1], route[2])

	// Only the middle point is a candidate with k=1
	low := NewDetector(1, angle)
	turns := low.Detect(route)
	require.Len(t, turns, 1, "Threshold is inclusive")
	assert.Equal(t, 1, turns[0].SourceIndex)
	assert.Equal(t, route[1], turns[0].Location)
	assert.InDelta(t, angle, turns[0].AngleDegrees, 1e-12)

	high := NewDetector(1, angle+0.001)
	assert.Empty(t, high.Detect(route))
}

func TestDetect_ShortRoutes(t *testing.T) {
	detector := NewDetector(3, DefaultThreshold)

	// A hairpin that would qualify if the route were long enough
	route := geo.Route{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.001},
		{Latitude: 0, Longitude: 0.002},
		{Latitude: 0.001, Longitude: 0.002},
		{Latitude: 0.001, Longitude: 0.001},
		{Latitude: 0.001, Longitude: 0},
	}
	assert.Empty(t, detector.Detect(route), "Fewer than 2k+1 points yields no turns")
	assert.Empty(t, detector.Detect(nil))
	assert.Empty(t, detector.Detect(geo.Route{{Latitude: 1, Longitude: 1}}))

	route = append(route, geo.Point{Latitude: 0.001, Longitude: -0.001})
	turns := detector.Detect(route)
	require.Len(t, turns, 1)
	assert.Equal(t, 3, turns[0].SourceIndex)
	// Bearing ~63.4 out, due west back
	assert.InDelta(t, 153.4, turns[0].AngleDegrees, 0.5)
}

func TestDetect_WindowSuppressesJitter(t *testing.T) {
	// Eastbound line with a small lateral wobble on every other point
	var route geo.Route
	for i := 0; i < 41; i++ {
		lat := 0.0
		if i%2 == 1 {
			lat = 0.00003
		}
		route = append(route, geo.Point{Latitude: lat, Longitude: float64(i) * 0.0001})
	}

	adjacent := NewDetector(1, DefaultThreshold)
	assert.NotEmpty(t, adjacent.Detect(route), "Adjacent sampling sees jitter as turns")

	windowed := NewDetector(4, DefaultThreshold)
	assert.Empty(t, windowed.Detect(route), "Even-stride window ignores the wobble")
}

func TestDetect_AscendingOrder(t *testing.T) {
	// Zig-zag produces a turn at every sample
	var route geo.Route
	for i := 0; i < 20; i++ {
		lat := 0.0
		if i%2 == 1 {
			lat = 0.001
		}
		route = append(route, geo.Point{Latitude: lat, Longitude: float64(i) * 0.001})
	}

	turns := NewDetector(1, DefaultThreshold).Detect(route)
	require.NotEmpty(t, turns)
	for i := 1; i < len(turns); i++ {
		assert.Greater(t, turns[i].SourceIndex, turns[i-1].SourceIndex)
	}
}

func TestNewDetector_Defaults(t *testing.T) {
	d := NewDetector(0, 0)
	assert.Equal(t, 1, d.Interval)
	assert.Equal(t, DefaultThreshold, d.Threshold)
}

func TestBlindSpots(t *testing.T) {
	turns := []SharpTurn{
		{AngleDegrees: 45, SourceIndex: 5},
		{AngleDegrees: 80, SourceIndex: 10},
		{AngleDegrees: 70, SourceIndex: 15},
		{AngleDegrees: 150, SourceIndex: 20},
	}

	blind := BlindSpots(turns)
	require.Len(t, blind, 2, "70 degrees exactly is not a blind spot")
	assert.Equal(t, 20, blind[0].SourceIndex, "Most severe first")
	assert.Equal(t, 10, blind[1].SourceIndex)

	assert.False(t, turns[2].IsBlindSpot())
	assert.True(t, turns[1].IsBlindSpot())
	assert.Empty(t, BlindSpots(nil))
}

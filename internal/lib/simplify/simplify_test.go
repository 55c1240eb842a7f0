package simplify

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/routesafe/internal/lib/geo"
)

func randomPoints(seed int64, n int, bounds geo.Bounds) []geo.Point {
	rng := rand.New(rand.NewSource(seed))
	box := bounds.Orb()
	points := make([]geo.Point, n)
	for i := range points {
		points[i] = geo.Point{
			Latitude:  box.Min.Lat() + rng.Float64()*(box.Max.Lat()-box.Min.Lat()),
			Longitude: box.Min.Lon() + rng.Float64()*(box.Max.Lon()-box.Min.Lon()),
		}
	}
	return points
}

func TestSimplify_ThreePointScenario(t *testing.T) {
	points := []geo.Point{
		{Latitude: 17.1, Longitude: 78.5},
		{Latitude: 17.0, Longitude: 78.0},
		{Latitude: 17.001, Longitude: 78.001},
	}
	bounds := geo.Bounds{
		From: geo.Point{Latitude: 17.0, Longitude: 78.0},
		To:   geo.Point{Latitude: 17.1, Longitude: 78.5},
	}

	result, err := Simplify(points, bounds, 500)
	require.NoError(t, err)
	require.Len(t, result.Route, 3)

	// Ordering starts nearest to the from anchor
	assert.Equal(t, geo.Point{Latitude: 17.0, Longitude: 78.0}, result.Route[0])
	assert.Equal(t, geo.Point{Latitude: 17.001, Longitude: 78.001}, result.Route[1])
	assert.Equal(t, geo.Point{Latitude: 17.1, Longitude: 78.5}, result.Route[2])
	assert.Equal(t, "none", result.ReductionMode)
	assert.Equal(t, 3, result.InBounds)
}

func TestSimplify_NoPointsInBounds(t *testing.T) {
	points := []geo.Point{{Latitude: 10, Longitude: 10}}
	bounds := geo.Bounds{
		From: geo.Point{Latitude: 17.0, Longitude: 78.0},
		To:   geo.Point{Latitude: 17.1, Longitude: 78.5},
	}

	_, err := Simplify(points, bounds, 500)
	assert.ErrorIs(t, err, ErrNoPointsInBounds)

	_, err = Simplify(nil, bounds, 500)
	assert.ErrorIs(t, err, ErrNoPointsInBounds)
}

func TestSimplify_BoundsInvariant(t *testing.T) {
	outer := geo.Bounds{
		From: geo.Point{Latitude: 38.0, Longitude: -120.6},
		To:   geo.Point{Latitude: 38.3, Longitude: -120.2},
	}
	inner := geo.Bounds{
		From: geo.Point{Latitude: 38.2, Longitude: -120.3},
		To:   geo.Point{Latitude: 38.1, Longitude: -120.5},
	}
	points := randomPoints(3, 2000, outer)

	result, err := Simplify(points, inner, 100)
	require.NoError(t, err)
	require.NotEmpty(t, result.Route)

	for _, p := range result.Route {
		assert.GreaterOrEqual(t, p.Latitude, 38.1)
		assert.LessOrEqual(t, p.Latitude, 38.2)
		assert.GreaterOrEqual(t, p.Longitude, -120.5)
		assert.LessOrEqual(t, p.Longitude, -120.3)
	}
}

func TestSimplify_Idempotent(t *testing.T) {
	bounds := geo.Bounds{
		From: geo.Point{Latitude: 17.0, Longitude: 78.0},
		To:   geo.Point{Latitude: 17.05, Longitude: 78.05},
	}
	points := randomPoints(11, 1500, bounds)

	first, err := Simplify(points, bounds, 400)
	require.NoError(t, err)
	second, err := Simplify(points, bounds, 400)
	require.NoError(t, err)

	assert.Equal(t, first.Route, second.Route)
}

func TestSimplify_DenseBoxScenario(t *testing.T) {
	// ~1km x 1km box
	bounds := geo.Bounds{
		From: geo.Point{Latitude: 17.0, Longitude: 78.0},
		To:   geo.Point{Latitude: 17.009, Longitude: 78.0094},
	}
	points := randomPoints(42, 10000, bounds)

	result, err := Simplify(points, bounds, 500)
	require.NoError(t, err)
	assert.Equal(t, "decimate", result.ReductionMode)
	assert.LessOrEqual(t, len(result.Route), 500)
	assert.Contains(t, result.Route, points[0], "First original point must survive")
	assert.Contains(t, result.Route, points[len(points)-1], "Last original point must survive")
}

func TestReduce_SizeBound(t *testing.T) {
	bounds := geo.Bounds{
		From: geo.Point{Latitude: 0, Longitude: 0},
		To:   geo.Point{Latitude: 0.5, Longitude: 0.5},
	}

	for _, tc := range []struct {
		count, target int
	}{
		{1001, 500},
		{999, 500},
		{501, 500},
		{10, 1},
		{3, 2},
		{50, 50},
		{20, 100},
	} {
		points := randomPoints(int64(tc.count), tc.count, bounds)
		reduced := Reduce(points, tc.target)

		limit := tc.target
		if limit < 2 {
			limit = 2
		}
		assert.LessOrEqual(t, len(reduced), limit, "count=%d target=%d", tc.count, tc.target)
		if tc.count <= tc.target {
			assert.Len(t, reduced, tc.count, "Inputs within target pass through")
		}
		assert.Equal(t, points[0], reduced[0])
		assert.Equal(t, points[len(points)-1], reduced[len(reduced)-1])
	}
}

func TestDecimate_KeepsEndpoints(t *testing.T) {
	points := make([]geo.Point, 1001)
	for i := range points {
		points[i] = geo.Point{Latitude: float64(i) / 1000, Longitude: 0}
	}

	decimated := Decimate(points, 500)
	assert.LessOrEqual(t, len(decimated), 500)
	assert.Equal(t, points[0], decimated[0])
	assert.Equal(t, points[1000], decimated[len(decimated)-1])
}

func TestDouglasPeucker(t *testing.T) {
	// Collinear points collapse to the endpoints
	line := []geo.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.001},
		{Latitude: 0, Longitude: 0.002},
		{Latitude: 0, Longitude: 0.003},
	}
	assert.Equal(t, []geo.Point{line[0], line[3]}, DouglasPeucker(line, DefaultTolerance))

	// A corner well above tolerance is preserved
	corner := []geo.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.01},
		{Latitude: 0.01, Longitude: 0.01},
	}
	assert.Equal(t, corner, DouglasPeucker(corner, DefaultTolerance))

	// Jitter below tolerance is removed while the corner stays
	jittery := []geo.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0.00002, Longitude: 0.005},
		{Latitude: 0, Longitude: 0.01},
		{Latitude: 0.005, Longitude: 0.01002},
		{Latitude: 0.01, Longitude: 0.01},
	}
	assert.Equal(t, []geo.Point{jittery[0], jittery[2], jittery[4]}, DouglasPeucker(jittery, DefaultTolerance))

	assert.Len(t, DouglasPeucker(line[:2], DefaultTolerance), 2)
}

func TestOrder_NearestNeighbour(t *testing.T) {
	points := []geo.Point{
		{Latitude: 0, Longitude: 0.003},
		{Latitude: 0, Longitude: 0.001},
		{Latitude: 0, Longitude: 0.004},
		{Latitude: 0, Longitude: 0.002},
	}

	route := Order(points, geo.Point{Latitude: 0, Longitude: 0})
	require.Len(t, route, 4)
	for i := 1; i < len(route); i++ {
		assert.Greater(t, route[i].Longitude, route[i-1].Longitude)
	}

	assert.Empty(t, Order(nil, geo.Point{}))
}

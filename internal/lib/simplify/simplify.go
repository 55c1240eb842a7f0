// Package simplify reduces an unordered point cloud to a bounded, ordered route.
package simplify

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/dpup/routesafe/internal/lib/geo"
)

// DefaultTolerance is the Douglas-Peucker tolerance in degree space (lng as x,
// lat as y). Roughly 11m at the equator.
const DefaultTolerance = 0.0001

// Result describes what the simplifier did to the input
type Result struct {
	Route         geo.Route `json:"route"`
	InputPoints   int       `json:"input_points"`
	InBounds      int       `json:"in_bounds"`
	Reduced       int       `json:"reduced"`
	ReductionMode string    `json:"reduction_mode"` // none, decimate, douglas_peucker
}

// Simplify runs the bounds filter, density reduction and nearest-neighbour
// ordering. maxPoints <= 0 disables density reduction. Returns
// ErrNoPointsInBounds when nothing survives the bounds filter.
func Simplify(points []geo.Point, bounds geo.Bounds, maxPoints int) (Result, error) {
	result := Result{InputPoints: len(points), ReductionMode: "none"}

	filtered := FilterByBounds(points, bounds)
	if len(filtered) == 0 {
		return result, ErrNoPointsInBounds
	}
	result.InBounds = len(filtered)

	reduced := filtered
	if maxPoints > 0 && len(filtered) > maxPoints {
		if len(filtered) > 2*maxPoints {
			result.ReductionMode = "decimate"
		} else {
			result.ReductionMode = "douglas_peucker"
		}
		reduced = Reduce(filtered, maxPoints)
	}
	result.Reduced = len(reduced)

	result.Route = Order(reduced, bounds.From)
	return result, nil
}

// FilterByBounds keeps points inside the bounding box, preserving input order
func FilterByBounds(points []geo.Point, bounds geo.Bounds) []geo.Point {
	box := bounds.Orb()

	var filtered []geo.Point
	for _, p := range points {
		if box.Contains(p.Orb()) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Reduce brings the point count down to at most max(target, 2). Inputs more
// than twice the target are decimated; otherwise Douglas-Peucker is tried
// first and decimation only applies if the simplified line is still too long.
func Reduce(points []geo.Point, target int) []geo.Point {
	if target < 2 {
		target = 2
	}
	if len(points) <= target {
		return points
	}

	if len(points) > 2*target {
		return Decimate(points, target)
	}

	simplified := DouglasPeucker(points, DefaultTolerance)
	if len(simplified) > target {
		return Decimate(simplified, target)
	}
	return simplified
}

// Decimate keeps every Nth point with a stride chosen so the result never
// exceeds target. The first and last input points are always retained.
func Decimate(points []geo.Point, target int) []geo.Point {
	if target < 2 {
		target = 2
	}
	if len(points) <= target {
		return points
	}

	last := len(points) - 1
	stride := int(math.Ceil(float64(last) / float64(target-1)))

	decimated := make([]geo.Point, 0, target)
	for i := 0; i <= last; i += stride {
		decimated = append(decimated, points[i])
	}
	if last%stride != 0 {
		decimated = append(decimated, points[last])
	}
	return decimated
}

// DouglasPeucker simplifies the polyline with a planar tolerance in degrees
func DouglasPeucker(points []geo.Point, tolerance float64) []geo.Point {
	if len(points) <= 2 {
		return points
	}

	line := make([]orb.Point, len(points))
	for i, p := range points {
		line[i] = p.Orb()
	}

	kept := douglasPeucker(line, tolerance)

	simplified := make([]geo.Point, len(kept))
	for i, p := range kept {
		simplified[i] = geo.FromOrb(p)
	}
	return simplified
}

func douglasPeucker(points []orb.Point, tolerance float64) []orb.Point {
	if len(points) <= 2 {
		return points
	}

	// Find the point with maximum distance from the chord
	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > tolerance {
		left := douglasPeucker(points[:index+1], tolerance)
		right := douglasPeucker(points[index:], tolerance)

		// Drop the duplicated join point
		result := make([]orb.Point, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return []orb.Point{points[0], points[end]}
}

// perpendicularDistance is the distance from point to the infinite line
// through lineStart and lineEnd. A degenerate line yields 0.
func perpendicularDistance(point, lineStart, lineEnd orb.Point) float64 {
	x0, y0 := point[0], point[1]
	x1, y1 := lineStart[0], lineStart[1]
	x2, y2 := lineEnd[0], lineEnd[1]

	den := math.Hypot(y2-y1, x2-x1)
	if den == 0 {
		return 0
	}

	num := math.Abs((y2-y1)*x0 - (x2-x1)*y0 + x2*y1 - y2*x1)
	return num / den
}

// Order arranges points greedily: start from the point nearest the anchor,
// then repeatedly take the nearest unvisited point. Ties go to the earliest
// input index, which keeps the ordering deterministic.
func Order(points []geo.Point, anchor geo.Point) geo.Route {
	if len(points) == 0 {
		return geo.Route{}
	}

	visited := make([]bool, len(points))
	route := make(geo.Route, 0, len(points))

	current := nearestUnvisited(points, visited, anchor)
	for current >= 0 {
		visited[current] = true
		route = append(route, points[current])
		current = nearestUnvisited(points, visited, points[current])
	}

	return route
}

func nearestUnvisited(points []geo.Point, visited []bool, from geo.Point) int {
	nearest := -1
	nearestDist := math.Inf(1)
	for i, p := range points {
		if visited[i] {
			continue
		}
		if d := geo.Distance(from, p); d < nearestDist {
			nearestDist = d
			nearest = i
		}
	}
	return nearest
}

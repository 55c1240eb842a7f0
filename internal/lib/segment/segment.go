// Package segment partitions a route into contiguous fixed-length pieces.
package segment

import "github.com/dpup/routesafe/internal/lib/geo"

// DefaultLengthMeters is the target segment length
const DefaultLengthMeters = 5000.0

// Segment is a contiguous slice of a route. Neighbouring segments share their
// boundary point.
type Segment struct {
	Points       []geo.Point `json:"points"`
	StartPoint   geo.Point   `json:"start_point"`
	EndPoint     geo.Point   `json:"end_point"`
	LengthMeters float64     `json:"length_meters"`
}

// Midpoint returns the middle point of the segment by index
func (s Segment) Midpoint() geo.Point {
	if len(s.Points) == 0 {
		return s.StartPoint
	}
	return s.Points[len(s.Points)/2]
}

// Split walks the route accumulating distance and closes a segment before the
// pair that would push it past targetMeters. The last partial segment is
// always kept. Routes with fewer than 2 points produce a single degenerate
// segment so scoring always has something to work on.
func Split(route geo.Route, targetMeters float64) []Segment {
	if targetMeters <= 0 {
		targetMeters = DefaultLengthMeters
	}

	if len(route) < 2 {
		seg := Segment{Points: append([]geo.Point(nil), route...)}
		if len(route) == 1 {
			seg.StartPoint = route[0]
			seg.EndPoint = route[0]
		}
		return []Segment{seg}
	}

	var segments []Segment
	current := []geo.Point{route[0]}
	currentLength := 0.0

	for i := 0; i+1 < len(route); i++ {
		d := geo.Distance(route[i], route[i+1])

		if currentLength+d > targetMeters && len(current) > 1 {
			segments = append(segments, newSegment(current, currentLength))
			current = []geo.Point{route[i]}
			currentLength = 0
		}

		current = append(current, route[i+1])
		currentLength += d
	}

	return append(segments, newSegment(current, currentLength))
}

func newSegment(points []geo.Point, length float64) Segment {
	return Segment{
		Points:       points,
		StartPoint:   points[0],
		EndPoint:     points[len(points)-1],
		LengthMeters: length,
	}
}

// Join reassembles the route from consecutive segments, dropping each shared
// boundary point once
func Join(segments []Segment) geo.Route {
	var route geo.Route
	for i, s := range segments {
		if i == 0 {
			route = append(route, s.Points...)
			continue
		}
		if len(s.Points) > 0 {
			route = append(route, s.Points[1:]...)
		}
	}
	return route
}

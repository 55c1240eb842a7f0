package geo

import "github.com/paulmach/orb"

// Point represents a geographic coordinate in WGS84 degrees
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Orb converts the point to an orb.Point (x = longitude, y = latitude)
func (p Point) Orb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// FromOrb converts an orb.Point back to a Point
func FromOrb(p orb.Point) Point {
	return Point{Latitude: p.Lat(), Longitude: p.Lon()}
}

// Route is an ordered sequence of points, start to end
type Route []Point

// LineString returns the route as an orb.LineString
func (r Route) LineString() orb.LineString {
	ls := make(orb.LineString, len(r))
	for i, p := range r {
		ls[i] = p.Orb()
	}
	return ls
}

// Length returns the sum of consecutive great-circle distances in meters.
// Routes with fewer than 2 points have zero length.
func (r Route) Length() float64 {
	total := 0.0
	for i := 0; i+1 < len(r); i++ {
		total += Distance(r[i], r[i+1])
	}
	return total
}

// Bounds is a rectangle defined by two anchor corners. From is also the
// anchor route ordering starts from.
type Bounds struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Orb returns the normalized bounding box regardless of anchor order
func (b Bounds) Orb() orb.Bound {
	return orb.MultiPoint{b.From.Orb(), b.To.Orb()}.Bound()
}

// Contains reports whether the point lies inside the box, edges included
func (b Bounds) Contains(p Point) bool {
	return b.Orb().Contains(p.Orb())
}

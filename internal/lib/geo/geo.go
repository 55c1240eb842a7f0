package geo

import (
	"errors"
	"math"

	"github.com/twpayne/go-polyline"
)

// Earth's radius in meters
const earthRadius = 6371000

// Distance calculates great-circle distance between two points using the
// Haversine formula. Identical points return 0.
func Distance(p1, p2 Point) float64 {
	if p1 == p2 {
		return 0
	}

	lat1 := toRadians(p1.Latitude)
	lon1 := toRadians(p1.Longitude)
	lat2 := toRadians(p2.Latitude)
	lon2 := toRadians(p2.Longitude)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Bearing calculates the initial bearing from p1 to p2 in degrees, normalized
// to [0, 360). Identical points have no direction and return 0.
func Bearing(p1, p2 Point) float64 {
	lat1 := toRadians(p1.Latitude)
	lat2 := toRadians(p2.Latitude)
	dlon := toRadians(p2.Longitude - p1.Longitude)

	y := math.Sin(dlon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)

	bearing := math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
	if bearing >= 360 {
		bearing = 0
	}
	return bearing
}

// TurnAngle calculates the deviation at p2 when travelling p1 -> p2 -> p3.
// 0 means straight ahead, 180 a full reversal.
func TurnAngle(p1, p2, p3 Point) float64 {
	angle := math.Abs(Bearing(p2, p3) - Bearing(p1, p2))
	if angle > 180 {
		angle = 360 - angle
	}
	return angle
}

// Nearest returns the distance from point to the closest of the candidates,
// or +Inf when there are none
func Nearest(point Point, candidates []Point) float64 {
	minDistance := math.Inf(1)
	for _, c := range candidates {
		if d := Distance(point, c); d < minDistance {
			minDistance = d
		}
	}
	return minDistance
}

// WithinDistance reports whether point is closer than radiusMeters to any of
// the candidates
func WithinDistance(point Point, candidates []Point, radiusMeters float64) bool {
	for _, c := range candidates {
		if Distance(point, c) < radiusMeters {
			return true
		}
	}
	return false
}

// SampleEvenly picks n points spread evenly over the sequence, always keeping
// the first and last. When n >= len(points) the input is returned as a copy.
func SampleEvenly(points []Point, n int) []Point {
	if n <= 0 || len(points) == 0 {
		return nil
	}
	if n >= len(points) {
		return append([]Point(nil), points...)
	}
	if n == 1 {
		return []Point{points[0]}
	}

	sampled := make([]Point, 0, n)
	last := len(points) - 1
	prev := -1
	for i := 0; i < n; i++ {
		idx := int(math.Round(float64(i) * float64(last) / float64(n-1)))
		if idx == prev {
			continue
		}
		sampled = append(sampled, points[idx])
		prev = idx
	}
	return sampled
}

// DecodePolyline decodes Google polyline string to point sequence
func DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.New("failed to decode polyline: " + err.Error())
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{
			Latitude:  coord[0],
			Longitude: coord[1],
		}

		if !IsValid(points[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}

// EncodePolyline encodes a point sequence as a Google polyline string
func EncodePolyline(points []Point) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}

// NewPoint creates a Point from latitude and longitude values with validation
func NewPoint(latitude, longitude float64) (Point, error) {
	point := Point{Latitude: latitude, Longitude: longitude}
	if !IsValid(point) {
		return Point{}, errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	}
	return point, nil
}

// IsValid validates latitude and longitude ranges
func IsValid(point Point) bool {
	return point.Latitude >= -90 && point.Latitude <= 90 &&
		point.Longitude >= -180 && point.Longitude <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

package google

import (
	"context"
	"fmt"

	"github.com/dpup/routesafe/internal/lib/geo"
)

// RouteData is the processed directions result
type RouteData struct {
	DurationSeconds int32
	DistanceMeters  int32
	Polyline        string
	Points          geo.Route
	SpeedReadings   []SpeedReading
}

// SpeedReading represents traffic speed data for route segments
type SpeedReading struct {
	StartIndex    int32
	EndIndex      int32
	SpeedCategory string // "NORMAL", "SLOW", "TRAFFIC_JAM"
}

// ComputeRoutes fetches a driving route between two points and decodes its
// polyline
func (c *Client) ComputeRoutes(ctx context.Context, origin, destination geo.Point) (*RouteData, error) {
	requestBody := map[string]any{
		"origin":            waypoint(origin),
		"destination":       waypoint(destination),
		"travelMode":        "DRIVE",
		"routingPreference": "TRAFFIC_AWARE",
		"extraComputations": []string{"TRAFFIC_ON_POLYLINE"},
	}

	// Field mask is required or the API rejects the request
	headers := map[string]string{
		"X-Goog-Api-Key":   c.apiKey,
		"X-Goog-FieldMask": "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline,routes.travelAdvisory.speedReadingIntervals",
	}

	var response GoogleRoutesResponse
	if err := c.postJSON(ctx, c.routesURL+"/directions/v2:computeRoutes", headers, requestBody, &response); err != nil {
		return nil, err
	}

	if len(response.Routes) == 0 {
		return nil, fmt.Errorf("no routes found in response")
	}

	return processRouteResponse(response.Routes[0])
}

func waypoint(p geo.Point) map[string]any {
	return map[string]any{
		"location": map[string]any{
			"latLng": map[string]any{
				"latitude":  p.Latitude,
				"longitude": p.Longitude,
			},
		},
	}
}

func processRouteResponse(route GoogleRoute) (*RouteData, error) {
	durationSeconds, err := parseDuration(route.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration: %w", err)
	}

	points, err := geo.DecodePolyline(route.Polyline.EncodedPolyline)
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}

	var speedReadings []SpeedReading
	if route.TravelAdvisory != nil {
		for _, interval := range route.TravelAdvisory.SpeedReadingIntervals {
			speedReadings = append(speedReadings, SpeedReading{
				StartIndex:    interval.StartPolylinePointIndex,
				EndIndex:      interval.EndPolylinePointIndex,
				SpeedCategory: interval.Speed,
			})
		}
	}

	return &RouteData{
		DurationSeconds: durationSeconds,
		DistanceMeters:  route.DistanceMeters,
		Polyline:        route.Polyline.EncodedPolyline,
		Points:          points,
		SpeedReadings:   speedReadings,
	}, nil
}

// parseDuration parses Google's duration format like "450s" to seconds
func parseDuration(durationStr string) (int32, error) {
	if durationStr == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	if len(durationStr) > 1 && durationStr[len(durationStr)-1] == 's' {
		durationStr = durationStr[:len(durationStr)-1]
	}

	var seconds int32
	_, err := fmt.Sscanf(durationStr, "%d", &seconds)
	return seconds, err
}

// GoogleRoutesResponse represents the API response structure
type GoogleRoutesResponse struct {
	Routes []GoogleRoute `json:"routes"`
}

// GoogleRoute represents a single route in the response
type GoogleRoute struct {
	Duration       string                `json:"duration"`
	DistanceMeters int32                 `json:"distanceMeters"`
	Polyline       GooglePolyline        `json:"polyline"`
	TravelAdvisory *GoogleTravelAdvisory `json:"travelAdvisory,omitempty"`
}

// GooglePolyline represents the route polyline
type GooglePolyline struct {
	EncodedPolyline string `json:"encodedPolyline"`
}

// GoogleTravelAdvisory represents traffic information
type GoogleTravelAdvisory struct {
	SpeedReadingIntervals []GoogleSpeedInterval `json:"speedReadingIntervals"`
}

// GoogleSpeedInterval represents speed data for a route segment
type GoogleSpeedInterval struct {
	StartPolylinePointIndex int32  `json:"startPolylinePointIndex"`
	EndPolylinePointIndex   int32  `json:"endPolylinePointIndex"`
	Speed                   string `json:"speed"`
}

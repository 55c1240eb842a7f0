package google

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dpup/routesafe/internal/lib/elevation"
	"github.com/dpup/routesafe/internal/lib/geo"
)

// maxElevationLocations is the per-request location limit of the Elevation API
const maxElevationLocations = 512

// Elevations looks up ground elevation for each point. Locations are sent as
// an encoded polyline to keep URLs short. Samples from batches that completed
// before a failure are returned with the error.
func (c *Client) Elevations(ctx context.Context, points []geo.Point) ([]elevation.Sample, error) {
	var samples []elevation.Sample

	for start := 0; start < len(points); start += maxElevationLocations {
		end := min(start+maxElevationLocations, len(points))

		params := url.Values{}
		params.Set("locations", "enc:"+geo.EncodePolyline(points[start:end]))
		params.Set("key", c.apiKey)

		var response ElevationResponse
		if err := c.getJSON(ctx, c.mapsURL+"/maps/api/elevation/json?"+params.Encode(), &response); err != nil {
			return samples, fmt.Errorf("elevation lookup failed: %w", err)
		}
		if err := checkStatus(response.Status, response.ErrorMessage); err != nil {
			return samples, fmt.Errorf("elevation lookup failed: %w", err)
		}

		for _, r := range response.Results {
			samples = append(samples, elevation.Sample{
				Location:        geo.Point{Latitude: r.Location.Lat, Longitude: r.Location.Lng},
				ElevationMeters: r.Elevation,
			})
		}
	}

	return samples, nil
}

// ElevationResponse is the Elevation API response
type ElevationResponse struct {
	Results      []ElevationResult `json:"results"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// ElevationResult is one elevation reading
type ElevationResult struct {
	Elevation  float64    `json:"elevation"`
	Location   LatLngJSON `json:"location"`
	Resolution float64    `json:"resolution"`
}

// LatLngJSON is the Maps web service coordinate shape
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

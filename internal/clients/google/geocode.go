package google

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/risk"
	"github.com/dpup/routesafe/internal/lib/segment"
)

var localityTypes = []string{"locality", "sublocality", "neighborhood"}

// ReverseGeocode returns the address component types of the best match for
// the point, or nil when nothing matched
func (c *Client) ReverseGeocode(ctx context.Context, point geo.Point) ([]string, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%.6f,%.6f", point.Latitude, point.Longitude))
	params.Set("key", c.apiKey)

	var response GeocodeResponse
	if err := c.getJSON(ctx, c.mapsURL+"/maps/api/geocode/json?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("reverse geocode failed: %w", err)
	}
	if err := checkStatus(response.Status, response.ErrorMessage); err != nil {
		return nil, fmt.Errorf("reverse geocode failed: %w", err)
	}
	if len(response.Results) == 0 {
		return nil, nil
	}

	var types []string
	for _, component := range response.Results[0].AddressComponents {
		types = append(types, component.Types...)
	}
	return types, nil
}

// Terrain classifies the segment from the address at its midpoint. It
// implements risk.TerrainClassifier.
func (c *Client) Terrain(ctx context.Context, seg segment.Segment) (risk.Terrain, error) {
	types, err := c.ReverseGeocode(ctx, seg.Midpoint())
	if err != nil {
		return risk.Unknown, err
	}
	return ClassifyTerrain(types), nil
}

// ClassifyTerrain maps address component types onto a terrain label. A
// locality with both political and postal_code components is urban, a bare
// locality semi-urban, anything else rural. No types means unknown.
func ClassifyTerrain(types []string) risk.Terrain {
	if len(types) == 0 {
		return risk.Unknown
	}

	hasLocality := slices.ContainsFunc(types, func(t string) bool {
		return slices.Contains(localityTypes, t)
	})
	if !hasLocality {
		return risk.Rural
	}
	if slices.Contains(types, "political") && slices.Contains(types, "postal_code") {
		return risk.Urban
	}
	return risk.SemiUrban
}

// GeocodeResponse is the Geocoding API response
type GeocodeResponse struct {
	Results      []GeocodeResult `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// GeocodeResult is one address match
type GeocodeResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []AddressComponent `json:"address_components"`
	Types             []string           `json:"types"`
}

// AddressComponent is one part of a matched address
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

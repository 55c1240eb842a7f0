package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/risk"
	"github.com/dpup/routesafe/internal/lib/segment"
)

// MockHTTPDoer is a mock implementation of HTTPDoer
type MockHTTPDoer struct {
	mock.Mock
}

func (m *MockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func loadTestFixture(t *testing.T, filename string) string {
	data, err := os.ReadFile("testdata/" + filename)
	require.NoError(t, err, "Failed to load test fixture %s", filename)
	return string(data)
}

func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

var (
	sacramento = geo.Point{Latitude: 38.5816, Longitude: -121.4944}
	portland   = geo.Point{Latitude: 45.5152, Longitude: -122.6784}
)

func TestComputeRoutes_Success(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(200, loadTestFixture(t, "compute_routes.json")), nil)

	client := NewClientWithHTTPDoer("test-api-key", "https://routes.googleapis.com", mockHTTP)

	routeData, err := client.ComputeRoutes(context.Background(), sacramento, portland)
	require.NoError(t, err)
	require.NotNil(t, routeData)

	assert.Equal(t, int32(21600), routeData.DurationSeconds)
	assert.Equal(t, int32(513000), routeData.DistanceMeters)
	require.Len(t, routeData.Points, 3, "Polyline should be decoded")
	assert.InDelta(t, 38.5, routeData.Points[0].Latitude, 1e-5)
	assert.InDelta(t, -120.2, routeData.Points[0].Longitude, 1e-5)
	assert.InDelta(t, 43.252, routeData.Points[2].Latitude, 1e-5)

	require.Len(t, routeData.SpeedReadings, 2)
	assert.Equal(t, "TRAFFIC_JAM", routeData.SpeedReadings[1].SpeedCategory)

	mockHTTP.AssertExpectations(t)
}

func TestComputeRoutes_RequestFormat(t *testing.T) {
	var capturedRequest *http.Request
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Run(func(args mock.Arguments) {
		capturedRequest = args.Get(0).(*http.Request)
	}).Return(createMockResponse(200, loadTestFixture(t, "compute_routes.json")), nil)

	client := NewClientWithHTTPDoer("test-api-key", "https://routes.googleapis.com", mockHTTP)

	_, err := client.ComputeRoutes(context.Background(), sacramento, portland)
	require.NoError(t, err)

	require.NotNil(t, capturedRequest)
	assert.Equal(t, "POST", capturedRequest.Method)
	assert.Equal(t, "/directions/v2:computeRoutes", capturedRequest.URL.Path)
	assert.Equal(t, "test-api-key", capturedRequest.Header.Get("X-Goog-Api-Key"))
	assert.Contains(t, capturedRequest.Header.Get("X-Goog-FieldMask"), "routes.polyline.encodedPolyline")

	var body map[string]any
	require.NoError(t, json.NewDecoder(capturedRequest.Body).Decode(&body))
	assert.Equal(t, "DRIVE", body["travelMode"])
}

func TestComputeRoutes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"no routes", 200, `{"routes": []}`, "no routes found in response"},
		{"rate limited", 429, `{"error": {"message": "Quota exceeded"}}`, "rate limit exceeded"},
		{"bad request", 400, `{"error": {"message": "Invalid coordinates"}}`, "API error 400"},
		{"bad polyline", 200, `{"routes": [{"duration": "10s", "polyline": {"encodedPolyline": ""}}]}`, "failed to decode polyline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockHTTP := &MockHTTPDoer{}
			mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
				createMockResponse(tt.status, tt.body), nil)

			client := NewClientWithHTTPDoer("test-api-key", "", mockHTTP)
			routeData, err := client.ComputeRoutes(context.Background(), sacramento, portland)

			require.Error(t, err)
			assert.Nil(t, routeData)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestElevations(t *testing.T) {
	var capturedRequest *http.Request
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Run(func(args mock.Arguments) {
		capturedRequest = args.Get(0).(*http.Request)
	}).Return(createMockResponse(200, loadTestFixture(t, "elevation.json")), nil)

	client := NewClientWithHTTPDoer("test-api-key", "https://maps.googleapis.com", mockHTTP)

	points := []geo.Point{
		{Latitude: 39.7391536, Longitude: -104.9847034},
		{Latitude: 36.455556, Longitude: -116.866667},
	}
	samples, err := client.Elevations(context.Background(), points)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.InDelta(t, 1608.6, samples[0].ElevationMeters, 1e-9)
	assert.InDelta(t, -50.8, samples[1].ElevationMeters, 1e-9)

	assert.Equal(t, "/maps/api/elevation/json", capturedRequest.URL.Path)
	locations := capturedRequest.URL.Query().Get("locations")
	require.True(t, strings.HasPrefix(locations, "enc:"))
	decoded, err := geo.DecodePolyline(strings.TrimPrefix(locations, "enc:"))
	require.NoError(t, err)
	assert.Len(t, decoded, 2)
}

func TestElevations_Batches(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(200, `{"results": [], "status": "OK"}`), nil).Once()
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(200, `{"results": [], "status": "OVER_QUERY_LIMIT", "error_message": "quota"}`), nil).Once()

	client := NewClientWithHTTPDoer("test-api-key", "", mockHTTP)

	points := make([]geo.Point, maxElevationLocations+1)
	_, err := client.Elevations(context.Background(), points)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OVER_QUERY_LIMIT")
	mockHTTP.AssertNumberOfCalls(t, "Do", 2)
}

func TestTerrain(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(200, loadTestFixture(t, "reverse_geocode_urban.json")), nil)

	client := NewClientWithHTTPDoer("test-api-key", "", mockHTTP)

	seg := segment.Segment{Points: []geo.Point{sacramento, {Latitude: 37.422, Longitude: -122.084}, portland}}
	terrain, err := client.Terrain(context.Background(), seg)
	require.NoError(t, err)
	assert.Equal(t, risk.Urban, terrain)
}

func TestTerrain_Failure(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(500, "boom"), nil)

	client := NewClientWithHTTPDoer("test-api-key", "", mockHTTP)
	terrain, err := client.Terrain(context.Background(), segment.Segment{Points: []geo.Point{sacramento}})
	assert.Error(t, err)
	assert.Equal(t, risk.Unknown, terrain)
}

func TestClassifyTerrain(t *testing.T) {
	tests := []struct {
		types []string
		want  risk.Terrain
	}{
		{[]string{"locality", "political", "postal_code"}, risk.Urban},
		{[]string{"neighborhood", "political"}, risk.SemiUrban},
		{[]string{"sublocality"}, risk.SemiUrban},
		{[]string{"route", "administrative_area_level_2", "political"}, risk.Rural},
		{nil, risk.Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyTerrain(tt.types), "%v", tt.types)
	}
}

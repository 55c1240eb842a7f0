package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dpup/routesafe/internal/lib/advisory"
	"github.com/dpup/routesafe/internal/lib/elevation"
	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/risk"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache()
	c.now = clock.Now
	return c, clock
}

func TestCache_SetGetExpire(t *testing.T) {
	c, clock := newTestCache()

	require.NoError(t, c.Set("k", map[string]int{"a": 1}, time.Minute, "test"))

	var got map[string]int
	found, err := c.Get("k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, got["a"])
	assert.False(t, c.IsStale("k"))

	clock.now = clock.now.Add(2 * time.Minute)
	found, err = c.Get("k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, c.IsStale("k"))

	stats := c.Stats()
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 1, stats.StaleEntries)

	assert.Equal(t, 1, c.CleanupStale())
	assert.Equal(t, 0, c.Stats().TotalEntries)
}

func TestCache_DeleteAndClear(t *testing.T) {
	c, _ := newTestCache()
	require.NoError(t, c.Set("a", 1, time.Minute, "test"))
	require.NoError(t, c.Set("b", 2, time.Minute, "test"))

	c.Delete("a")
	assert.True(t, c.IsStale("a"))
	assert.False(t, c.IsStale("b"))

	c.Clear()
	assert.Equal(t, 0, c.Stats().TotalEntries)
}

func TestCache_UnmarshalError(t *testing.T) {
	c, _ := newTestCache()
	require.NoError(t, c.Set("k", "text", time.Minute, "test"))

	var n int
	found, err := c.Get("k", &n)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestPointKey_Rounds(t *testing.T) {
	a := PointKey("elevation", geo.Point{Latitude: 38.1234561, Longitude: -120.1234561})
	b := PointKey("elevation", geo.Point{Latitude: 38.1234559, Longitude: -120.1234559})
	assert.Equal(t, a, b)
	assert.Equal(t, "elevation:38.12346,-120.12346", a)
}

type mockElevation struct {
	mock.Mock
}

func (m *mockElevation) Elevations(ctx context.Context, points []geo.Point) ([]elevation.Sample, error) {
	args := m.Called(ctx, points)
	samples, _ := args.Get(0).([]elevation.Sample)
	return samples, args.Error(1)
}

func TestElevationProvider_FetchesOnlyMisses(t *testing.T) {
	c, _ := newTestCache()
	a := geo.Point{Latitude: 38.1, Longitude: -120.1}
	b := geo.Point{Latitude: 38.2, Longitude: -120.2}

	next := &mockElevation{}
	next.On("Elevations", mock.Anything, []geo.Point{a}).
		Return([]elevation.Sample{{Location: a, ElevationMeters: 500}}, nil).Once()
	next.On("Elevations", mock.Anything, []geo.Point{b}).
		Return([]elevation.Sample{{Location: b, ElevationMeters: 900}}, nil).Once()

	p := NewElevationProvider(next, c, time.Hour)

	samples, err := p.Elevations(context.Background(), []geo.Point{a})
	require.NoError(t, err)
	require.Len(t, samples, 1)

	samples, err = p.Elevations(context.Background(), []geo.Point{a, b})
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 500.0, samples[0].ElevationMeters)
	assert.Equal(t, 900.0, samples[1].ElevationMeters)

	next.AssertExpectations(t)
}

func TestElevationProvider_ShortAnswerKeepsRouteOrder(t *testing.T) {
	c, _ := newTestCache()
	a := geo.Point{Latitude: 38.1, Longitude: -120.1}
	b := geo.Point{Latitude: 38.2, Longitude: -120.2}
	d := geo.Point{Latitude: 38.3, Longitude: -120.3}

	require.NoError(t, c.Set(PointKey("elevation", b), elevation.Sample{Location: b, ElevationMeters: 700}, time.Hour, "elevation"))

	// Only the later miss comes back
	next := &mockElevation{}
	next.On("Elevations", mock.Anything, []geo.Point{a, d}).
		Return([]elevation.Sample{{Location: d, ElevationMeters: 900}}, nil).Once()

	samples, err := NewElevationProvider(next, c, time.Hour).Elevations(context.Background(), []geo.Point{a, b, d})
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, b, samples[0].Location)
	assert.Equal(t, 700.0, samples[0].ElevationMeters)
	assert.Equal(t, d, samples[1].Location)
	assert.Equal(t, 900.0, samples[1].ElevationMeters)

	assert.False(t, c.IsStale(PointKey("elevation", d)))
	assert.True(t, c.IsStale(PointKey("elevation", a)))
	next.AssertExpectations(t)
}

func TestElevationProvider_PassesThroughErrors(t *testing.T) {
	c, _ := newTestCache()
	a := geo.Point{Latitude: 38.1, Longitude: -120.1}

	next := &mockElevation{}
	next.On("Elevations", mock.Anything, mock.Anything).Return(nil, errors.New("quota")).Once()

	samples, err := NewElevationProvider(next, c, time.Hour).Elevations(context.Background(), []geo.Point{a})
	assert.EqualError(t, err, "quota")
	assert.Empty(t, samples)
	assert.True(t, c.IsStale(PointKey("elevation", a)), "Failures are not cached")
}

type mockWeather struct {
	mock.Mock
}

func (m *mockWeather) CurrentWeather(ctx context.Context, points []geo.Point) ([]risk.WeatherSample, error) {
	args := m.Called(ctx, points)
	samples, _ := args.Get(0).([]risk.WeatherSample)
	return samples, args.Error(1)
}

func TestWeatherProvider_Caches(t *testing.T) {
	c, clock := newTestCache()
	a := geo.Point{Latitude: 38.1, Longitude: -120.1}

	next := &mockWeather{}
	next.On("CurrentWeather", mock.Anything, []geo.Point{a}).
		Return([]risk.WeatherSample{{Location: a, Description: "fog", TemperatureC: 8}}, nil).Twice()

	p := NewWeatherProvider(next, c, 10*time.Minute)

	for i := 0; i < 3; i++ {
		samples, err := p.CurrentWeather(context.Background(), []geo.Point{a})
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.Equal(t, "fog", samples[0].Description)
	}
	next.AssertNumberOfCalls(t, "CurrentWeather", 1)

	clock.now = clock.now.Add(11 * time.Minute)
	_, err := p.CurrentWeather(context.Background(), []geo.Point{a})
	require.NoError(t, err)
	next.AssertNumberOfCalls(t, "CurrentWeather", 2)
}

func TestAdvisoryCache(t *testing.T) {
	c, _ := newTestCache()
	ac := NewAdvisoryCache(c)

	_, found, err := ac.GetAdvisory("abc")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, ac.SetAdvisory("abc", advisory.Advisory{
		Level:       risk.High,
		Summary:     "Fog",
		Precautions: []string{"Slow down"},
	}, time.Hour))

	got, found, err := ac.GetAdvisory("abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Fog", got.Summary)
	assert.Equal(t, risk.High, got.Level)
}

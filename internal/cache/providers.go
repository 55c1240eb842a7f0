package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/routesafe/internal/lib/elevation"
	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/risk"
	"github.com/dpup/routesafe/internal/metrics"
)

// PointKey builds a cache key for a location rounded to 5 decimals (~1m)
func PointKey(prefix string, p geo.Point) string {
	return fmt.Sprintf("%s:%.5f,%.5f", prefix, p.Latitude, p.Longitude)
}

// ElevationProvider memoizes elevation lookups per point
type ElevationProvider struct {
	next  elevation.Provider
	cache *Cache
	ttl   time.Duration
}

// NewElevationProvider wraps next with a cache
func NewElevationProvider(next elevation.Provider, cache *Cache, ttl time.Duration) *ElevationProvider {
	return &ElevationProvider{next: next, cache: cache, ttl: ttl}
}

// Elevations serves cached points and fetches the rest in a single call.
// Results keep the order of the requested points.
func (p *ElevationProvider) Elevations(ctx context.Context, points []geo.Point) ([]elevation.Sample, error) {
	ctx = logging.EnsureLogger(ctx)

	found := make(map[int]elevation.Sample, len(points))
	var misses []geo.Point

	for i, pt := range points {
		var s elevation.Sample
		ok, err := p.cache.Get(PointKey("elevation", pt), &s)
		if err != nil {
			logging.Warnw(ctx, "Elevation cache read failed", "error", err)
		}
		if ok {
			found[i] = s
			continue
		}
		misses = append(misses, pt)
	}

	metrics.CacheHits.WithLabelValues("elevation").Add(float64(len(found)))
	metrics.CacheMisses.WithLabelValues("elevation").Add(float64(len(misses)))

	fetched := make(map[string]elevation.Sample, len(misses))
	var fetchErr error
	if len(misses) > 0 {
		var results []elevation.Sample
		results, fetchErr = p.next.Elevations(ctx, misses)

		// The provider answers in request order; a short answer can only be
		// keyed by the locations it reports
		aligned := len(results) == len(misses)
		for i, s := range results {
			key := PointKey("elevation", s.Location)
			if aligned {
				key = PointKey("elevation", misses[i])
			}
			fetched[key] = s
			if err := p.cache.Set(key, s, p.ttl, "elevation"); err != nil {
				logging.Warnw(ctx, "Elevation cache write failed", "error", err)
			}
		}
	}

	samples := make([]elevation.Sample, 0, len(points))
	for i, pt := range points {
		if s, ok := found[i]; ok {
			samples = append(samples, s)
			continue
		}
		if s, ok := fetched[PointKey("elevation", pt)]; ok {
			samples = append(samples, s)
		}
	}
	return samples, fetchErr
}

// WeatherProvider memoizes current-weather lookups per point
type WeatherProvider struct {
	next  risk.WeatherProvider
	cache *Cache
	ttl   time.Duration
}

// NewWeatherProvider wraps next with a cache
func NewWeatherProvider(next risk.WeatherProvider, cache *Cache, ttl time.Duration) *WeatherProvider {
	return &WeatherProvider{next: next, cache: cache, ttl: ttl}
}

// CurrentWeather serves cached points and fetches the rest
func (p *WeatherProvider) CurrentWeather(ctx context.Context, points []geo.Point) ([]risk.WeatherSample, error) {
	ctx = logging.EnsureLogger(ctx)

	var (
		samples []risk.WeatherSample
		misses  []geo.Point
	)

	for _, pt := range points {
		var s risk.WeatherSample
		ok, err := p.cache.Get(PointKey("weather", pt), &s)
		if err != nil {
			logging.Warnw(ctx, "Weather cache read failed", "error", err)
		}
		if ok {
			samples = append(samples, s)
			continue
		}
		misses = append(misses, pt)
	}

	metrics.CacheHits.WithLabelValues("weather").Add(float64(len(samples)))
	metrics.CacheMisses.WithLabelValues("weather").Add(float64(len(misses)))

	if len(misses) == 0 {
		return samples, nil
	}

	fetched, err := p.next.CurrentWeather(ctx, misses)
	for _, s := range fetched {
		if cacheErr := p.cache.Set(PointKey("weather", s.Location), s, p.ttl, "weather"); cacheErr != nil {
			logging.Warnw(ctx, "Weather cache write failed", "error", cacheErr)
		}
	}
	return append(samples, fetched...), err
}

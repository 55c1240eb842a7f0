package main

import (
	"context"
	"net/http"
	"time"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/routesafe/internal/cache"
	"github.com/dpup/routesafe/internal/clients/google"
	"github.com/dpup/routesafe/internal/clients/weather"
	"github.com/dpup/routesafe/internal/config"
	"github.com/dpup/routesafe/internal/lib/advisory"
	"github.com/dpup/routesafe/internal/services"
)

const cacheCleanupInterval = 10 * time.Minute

// newDependencies builds the cached provider clients. Providers without an
// API key are left nil and their factors are skipped.
func newDependencies(ctx context.Context, cfg *config.Config) services.Dependencies {
	store := cache.NewCache()
	store.StartPeriodicCleanup(ctx, cacheCleanupInterval)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	var deps services.Dependencies

	if key := cfg.Providers.GoogleAPIKey; key != "" {
		googleClient := google.NewClientWithHTTPDoer(key, cfg.Providers.GoogleBaseURL, httpClient)
		deps.Elevation = cache.NewElevationProvider(googleClient, store, cfg.Providers.ElevationCacheTTL)
		deps.Terrain = googleClient
		deps.Routes = googleClient
	} else {
		logging.Warnw(ctx, "Google API key not configured; elevation, terrain and directions disabled")
	}

	if key := cfg.Providers.OpenWeatherAPIKey; key != "" {
		weatherClient := weather.NewClientWithHTTPDoer(key, cfg.Providers.OpenWeatherBaseURL, httpClient)
		deps.Weather = cache.NewWeatherProvider(weatherClient, store, cfg.Providers.WeatherCacheTTL)
	} else {
		logging.Warnw(ctx, "OpenWeather API key not configured; weather disabled")
	}

	deps.Advisor = newAdvisor(ctx, cfg.Advisory, store)
	return deps
}

func newAdvisor(ctx context.Context, cfg config.AdvisoryConfig, store *cache.Cache) advisory.Advisor {
	if !cfg.Enabled {
		return nil
	}

	canned := advisory.NewCanned()
	if cfg.OpenAIAPIKey == "" {
		logging.Infow(ctx, "OpenAI API key not configured; using canned advisories")
		return canned
	}

	openaiAdvisor := advisory.NewOpenAIAdvisor(cfg.OpenAIAPIKey, cfg.Model, cfg.BaseURL)
	cached := advisory.NewCachedAdvisor(openaiAdvisor, cache.NewAdvisoryCache(store), cfg.CacheTTL)

	logging.Infow(ctx, "OpenAI advisories enabled", "model", cfg.Model)
	return advisory.WithFallback(cached, canned)
}

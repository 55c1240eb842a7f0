package cache

import (
	"fmt"
	"time"

	"github.com/dpup/routesafe/internal/lib/advisory"
	"github.com/dpup/routesafe/internal/metrics"
)

// AdvisoryCache makes the main Cache implement advisory.Cache
type AdvisoryCache struct {
	cache *Cache
}

// NewAdvisoryCache creates an adapter for advisory caching
func NewAdvisoryCache(cache *Cache) *AdvisoryCache {
	return &AdvisoryCache{cache: cache}
}

func advisoryKey(contentHash string) string {
	return fmt.Sprintf("advisory:%s", contentHash)
}

// SetAdvisory implements advisory.Cache
func (a *AdvisoryCache) SetAdvisory(contentHash string, adv advisory.Advisory, ttl time.Duration) error {
	return a.cache.Set(advisoryKey(contentHash), adv, ttl, "advisory")
}

// GetAdvisory implements advisory.Cache
func (a *AdvisoryCache) GetAdvisory(contentHash string) (advisory.Advisory, bool, error) {
	var adv advisory.Advisory
	found, err := a.cache.Get(advisoryKey(contentHash), &adv)
	if found {
		metrics.CacheHits.WithLabelValues("advisory").Inc()
	} else {
		metrics.CacheMisses.WithLabelValues("advisory").Inc()
	}
	return adv, found, err
}

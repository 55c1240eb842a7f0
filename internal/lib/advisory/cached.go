package advisory

import (
	"context"
	"time"

	"github.com/dpup/prefab/logging"
)

// DefaultCacheTTL bounds how long a generated advisory is reused
const DefaultCacheTTL = 24 * time.Hour

// Cache stores advisories by content hash
type Cache interface {
	SetAdvisory(contentHash string, advisory Advisory, ttl time.Duration) error
	GetAdvisory(contentHash string) (Advisory, bool, error)
}

// CachedAdvisor wraps an Advisor with content-based caching
type CachedAdvisor struct {
	advisor Advisor
	cache   Cache
	ttl     time.Duration
}

// NewCachedAdvisor creates an advisor that reuses advisories for identical
// hazards
func NewCachedAdvisor(advisor Advisor, cache Cache, ttl time.Duration) *CachedAdvisor {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedAdvisor{advisor: advisor, cache: cache, ttl: ttl}
}

// Advise checks the cache, then the wrapped advisor, then caches the result
func (c *CachedAdvisor) Advise(ctx context.Context, req Request) (Advisory, error) {
	ctx = logging.EnsureLogger(ctx)
	contentHash := ContentHash(req)

	if cached, found, err := c.cache.GetAdvisory(contentHash); err == nil && found {
		logging.Debugw(ctx, "Advisory cache hit", "hash", contentHash[:8])
		return cached, nil
	}

	advisory, err := c.advisor.Advise(ctx, req)
	if err != nil {
		return advisory, err
	}

	if err := c.cache.SetAdvisory(contentHash, advisory, c.ttl); err != nil {
		logging.Warnw(ctx, "Failed to cache advisory", "hash", contentHash[:8], "error", err)
	}
	return advisory, nil
}

// FallbackAdvisor uses a secondary advisor whenever the primary fails
type FallbackAdvisor struct {
	primary  Advisor
	fallback Advisor
}

// WithFallback combines a primary and fallback advisor. A nil primary always
// falls back.
func WithFallback(primary, fallback Advisor) *FallbackAdvisor {
	return &FallbackAdvisor{primary: primary, fallback: fallback}
}

// Advise implements Advisor
func (f *FallbackAdvisor) Advise(ctx context.Context, req Request) (Advisory, error) {
	ctx = logging.EnsureLogger(ctx)
	if f.primary != nil {
		advisory, err := f.primary.Advise(ctx, req)
		if err == nil {
			return advisory, nil
		}
		logging.Warnw(ctx, "Advisory generation failed, using fallback", "level", req.Level, "error", err)
	}
	return f.fallback.Advise(ctx, req)
}

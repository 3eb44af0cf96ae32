package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

// Cache key prefixes for reference data read through Redis.
const (
	milestoneCachePrefix = "milestones"
	openDaysCachePrefix  = "calendar:open-days"
)

func milestoneCacheKey(termID string, pace int, track string) string {
	return fmt.Sprintf("%s:%s:%d:%s", milestoneCachePrefix, termID, pace, track)
}

func openDaysCacheKey(termID string) string {
	return openDaysCachePrefix + ":" + termID
}

// CacheRepository stores JSON payloads by key.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService reads term reference data (milestone definitions, open days) through the
// cache. A nil or disabled CacheService always loads from the database.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool

	loads singleflight.Group
}

// NewCacheService constructs a cache service. A non-positive ttl defaults to ten minutes.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get fills dest from the cache and reports whether the key was present.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}

	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	switch {
	case err == nil:
		return true, nil
	case appErrors.Is(err, appErrors.ErrCacheMiss):
		return false, nil
	}
	s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	return false, err
}

// Set stores value under key. A non-positive ttl uses the service default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Remember fills dest from the cache, or runs load (which must fill dest) and caches the
// result. Concurrent misses on one key share a single load. Cache failures are logged and
// ignored; only load errors are returned.
func (s *CacheService) Remember(ctx context.Context, key string, dest interface{}, load func() error) error {
	if !s.Enabled() {
		return load()
	}
	if hit, _ := s.Get(ctx, key, dest); hit {
		return nil
	}

	raw, err, shared := s.loads.Do(key, func() (interface{}, error) {
		if err := load(); err != nil {
			return nil, err
		}
		_ = s.Set(ctx, key, dest, 0)
		return json.Marshal(dest)
	})
	if err != nil || !shared {
		return err
	}
	// Another caller ran load into its own dest; copy the result into ours.
	return json.Unmarshal(raw.([]byte), dest)
}

// Invalidate removes cached values matching the glob pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	s.logger.Info("cache invalidated", zap.String("pattern", pattern))
	return nil
}

// InvalidateReferenceData drops cached milestone definitions and open days, for use after the
// registrar edits a term's schedule.
func (s *CacheService) InvalidateReferenceData(ctx context.Context) error {
	for _, prefix := range []string{milestoneCachePrefix, openDaysCachePrefix} {
		if err := s.Invalidate(ctx, prefix+":*"); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate cache")
		}
	}
	return nil
}

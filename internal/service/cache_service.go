package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/university-admin-api/pkg/errors"
)

// Cache key namespaces for read views. The repository adds the global prefix.
const (
	cacheViewStudents    = "students"
	cacheViewCourses     = "courses"
	cacheViewEnrollments = "enrollments"
	cacheAllViews        = "*"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
	// generation advances on every view invalidation in this process.
	generation atomic.Uint64
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Generation returns the current view generation. Readers take it before
// loading from the store and hand it back to SetView.
func (s *CacheService) Generation() uint64 {
	if s == nil {
		return 0
	}
	return s.generation.Load()
}

// SetView caches a read view loaded under gen. The write is skipped when an
// invalidation happened since gen was taken, and undone when one lands while
// the write is in flight, so a slow read cannot resurrect a flushed view.
func (s *CacheService) SetView(ctx context.Context, key string, value interface{}, gen uint64) error {
	if !s.Enabled() {
		return nil
	}
	if s.generation.Load() != gen {
		s.logger.Debug("stale cache write skipped", zap.String("key", key))
		return nil
	}
	if err := s.Set(ctx, key, value, 0); err != nil {
		return err
	}
	if s.generation.Load() != gen {
		if err := s.repo.Delete(ctx, key); err != nil {
			s.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
			return err
		}
	}
	return nil
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateViews drops every cached read view. Student and course lists embed
// enrollment data, so any write makes all of them stale. Failures are logged
// and otherwise ignored; entries still expire with their TTL.
func (s *CacheService) InvalidateViews(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	s.generation.Add(1)
	_ = s.Invalidate(ctx, cacheAllViews)
}

func cacheKey(view string, parts ...string) string {
	return view + ":" + strings.Join(parts, ":")
}

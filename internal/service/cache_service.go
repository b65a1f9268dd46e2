package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

const directoryKeyPrefix = "directory:"

// CacheRepository is the key/value backend behind the directory cache. Redis and the
// in-process store both satisfy it.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService keeps staff and room name lists between requests. Backend failures on
// lookups and stores degrade to a miss; the sheet stays the source of truth.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs the directory cache. A disabled cache misses every lookup
// and drops every store.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Names returns the cached list stored under list ("staff", "rooms").
func (s *CacheService) Names(ctx context.Context, list string) ([]string, bool) {
	if !s.Enabled() {
		return nil, false
	}
	var names []string
	start := time.Now()
	err := s.repo.Get(ctx, directoryKeyPrefix+list, &names)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("directory cache lookup failed", zap.String("list", list), zap.Error(err))
		}
		return nil, false
	}
	return names, true
}

// StoreNames caches names for the configured TTL.
func (s *CacheService) StoreNames(ctx context.Context, list string, names []string) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, directoryKeyPrefix+list, names, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("directory cache store failed", zap.String("list", list), zap.Error(err))
	}
}

// Purge drops every cached directory list.
func (s *CacheService) Purge(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, directoryKeyPrefix+"*"); err != nil {
		return appErrors.Backend(err, "failed to purge directory cache")
	}
	s.logger.Info("directory cache purged")
	return nil
}

package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

const catalogCacheKey = "catalog:snapshot"

type catalogSource interface {
	LoadSnapshot(ctx context.Context) (*models.CatalogSnapshot, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogConfig tunes catalog caching.
type CatalogConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// CatalogService serves the entity catalog, reading through Redis when enabled. Concurrent misses
// share one database load.
type CatalogService struct {
	source  catalogSource
	cache   catalogCache
	metrics *MetricsService
	logger  *zap.Logger
	cfg     CatalogConfig
	group   singleflight.Group
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(source catalogSource, cache catalogCache, metrics *MetricsService, cfg CatalogConfig, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &CatalogService{source: source, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

func (s *CatalogService) cacheEnabled() bool {
	return s.cfg.CacheEnabled && s.cache != nil
}

// Catalog returns an indexed catalog built from the current snapshot.
func (s *CatalogService) Catalog(ctx context.Context) (*timetable.Catalog, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return timetable.NewCatalog(*snapshot), nil
}

// Snapshot returns the raw catalog contents.
func (s *CatalogService) Snapshot(ctx context.Context) (*models.CatalogSnapshot, error) {
	if s.cacheEnabled() {
		var cached models.CatalogSnapshot
		err := s.cache.Get(ctx, catalogCacheKey, &cached)
		switch {
		case err == nil:
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		case errors.Is(err, appErrors.ErrCacheMiss):
			s.metrics.RecordCacheLookup(false)
		default:
			s.metrics.RecordCacheLookup(false)
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	value, err, _ := s.group.Do(catalogCacheKey, func() (interface{}, error) {
		snapshot, err := s.source.LoadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		if s.cacheEnabled() {
			if err := s.cache.Set(ctx, catalogCacheKey, snapshot, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("catalog cache write failed", zap.Error(err))
			}
		}
		return snapshot, nil
	})
	if err != nil {
		s.logger.Error("load catalog", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}
	return value.(*models.CatalogSnapshot), nil
}

// Invalidate drops the cached snapshot so the next read goes to the database.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	if !s.cacheEnabled() {
		return nil
	}
	if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
		s.logger.Warn("catalog cache invalidate failed", zap.Error(err))
		return err
	}
	return nil
}

package geojson

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

// CachedSource serves a source through a DatasetCache. Cache failures are
// logged and bypassed; only the inner source decides success.
type CachedSource struct {
	inner  repository.GeoJSONSource
	cache  repository.DatasetCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSource(inner repository.GeoJSONSource, cache repository.DatasetCache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (s *CachedSource) Name() string {
	return s.inner.Name()
}

func (s *CachedSource) Fetch(ctx context.Context) (*domain.FeatureCollection, error) {
	fc, err := s.cache.GetDataset(ctx, s.inner.Name())
	if err != nil {
		s.logger.Warn("Dataset cache read failed", zap.String("source", s.inner.Name()), zap.Error(err))
	} else if fc != nil {
		s.logger.Debug("Dataset cache hit", zap.String("source", s.inner.Name()))
		return fc, nil
	}

	fc, err = s.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetDataset(ctx, s.inner.Name(), fc, s.ttl); err != nil {
		s.logger.Warn("Dataset cache write failed", zap.String("source", s.inner.Name()), zap.Error(err))
	}
	return fc, nil
}

// Invalidate drops the cached copy so the next Fetch hits the inner source.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.cache.InvalidateDataset(ctx, s.inner.Name())
}

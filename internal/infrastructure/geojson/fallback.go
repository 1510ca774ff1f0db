package geojson

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

// EmptySourceName labels a dataset produced when every source failed.
const EmptySourceName = "empty"

// FallbackSource tries sources in order and never fails: when none succeeds it
// returns an empty FeatureCollection, which renders as a map without shapes.
type FallbackSource struct {
	sources []repository.GeoJSONSource
	logger  *zap.Logger
}

var _ repository.SourceTracer = (*FallbackSource)(nil)

func NewFallbackSource(logger *zap.Logger, sources ...repository.GeoJSONSource) *FallbackSource {
	return &FallbackSource{sources: sources, logger: logger}
}

func (s *FallbackSource) Name() string {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name())
	}
	return strings.Join(names, ",")
}

func (s *FallbackSource) Fetch(ctx context.Context) (*domain.FeatureCollection, error) {
	fc, _, err := s.FetchTraced(ctx)
	return fc, err
}

// FetchTraced also reports the name of the source that served the data.
// Only context cancellation is returned as an error.
func (s *FallbackSource) FetchTraced(ctx context.Context) (*domain.FeatureCollection, string, error) {
	for _, src := range s.sources {
		fc, err := src.Fetch(ctx)
		if err == nil {
			s.logger.Info("Dataset source succeeded", zap.String("source", src.Name()))
			return fc, src.Name(), nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		s.logger.Warn("Dataset source failed, trying next",
			zap.String("source", src.Name()),
			zap.Error(err))
	}

	s.logger.Warn("All dataset sources failed, using empty collection",
		zap.Int("sources", len(s.sources)))
	return domain.EmptyFeatureCollection(), EmptySourceName, nil
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// Invalidate clears every cached member so the next fetch reaches the origin.
func (s *FallbackSource) Invalidate(ctx context.Context) error {
	var firstErr error
	for _, src := range s.sources {
		inv, ok := src.(invalidator)
		if !ok {
			continue
		}
		if err := inv.Invalidate(ctx); err != nil {
			s.logger.Warn("Dataset cache invalidation failed", zap.String("source", src.Name()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

package repository

import (
	"context"
	"time"

	"github.com/postcode-finder/internal/domain"
)

// CacheRepository - key/value cache. Get returns nil, nil on a miss.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DatasetCache stores a downloaded FeatureCollection between restarts.
// Get returns nil, nil on a miss.
type DatasetCache interface {
	GetDataset(ctx context.Context, source string) (*domain.FeatureCollection, error)
	SetDataset(ctx context.Context, source string, fc *domain.FeatureCollection, ttl time.Duration) error
	InvalidateDataset(ctx context.Context, source string) error
}

// SearchHistoryRepository keeps the most recent searches, newest first.
type SearchHistoryRepository interface {
	Push(ctx context.Context, entry domain.RecentSearch, limit int) error
	Recent(ctx context.Context, limit int) ([]domain.RecentSearch, error)
}

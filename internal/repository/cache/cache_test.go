package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

// memoryCache is an in-process CacheRepository for unit tests.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

var _ repository.CacheRepository = (*memoryCache)(nil)

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestDatasetCache_RoundTripCompressed(t *testing.T) {
	store := newMemoryCache()
	dc, err := NewDatasetCache(store, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	fc := &domain.FeatureCollection{
		Type: "FeatureCollection",
		Features: []domain.Feature{{
			Type:       "Feature",
			Properties: map[string]interface{}{"POA_CODE": "3550"},
			Geometry: &domain.Geometry{
				Type:        domain.GeometryPolygon,
				Coordinates: []byte(`[[[144.2,-36.8],[144.4,-36.8],[144.4,-36.6]]]`),
			},
		}},
	}

	miss, err := dc.GetDataset(ctx, "storage")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, dc.SetDataset(ctx, "storage", fc, time.Minute))
	stored := store.data["dataset:geojson:storage"]
	require.NotEmpty(t, stored)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, stored[:4], "zstd frame magic")
	assert.Equal(t, time.Minute, store.ttls["dataset:geojson:storage"])

	got, err := dc.GetDataset(ctx, "storage")
	require.NoError(t, err)
	require.Len(t, got.Features, 1)
	assert.Equal(t, "3550", got.Features[0].Properties["POA_CODE"])
	assert.JSONEq(t, `[[[144.2,-36.8],[144.4,-36.8],[144.4,-36.6]]]`, string(got.Features[0].Geometry.Coordinates))

	require.NoError(t, dc.InvalidateDataset(ctx, "storage"))
	got, err = dc.GetDataset(ctx, "storage")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDatasetCache_CorruptEntry(t *testing.T) {
	store := newMemoryCache()
	dc, err := NewDatasetCache(store, zap.NewNop())
	require.NoError(t, err)

	store.data["dataset:geojson:file"] = []byte("not zstd")

	_, err = dc.GetDataset(context.Background(), "file")
	assert.Error(t, err)
}

func getTestRedis(t *testing.T) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	client.Del(ctx, recentSearchesKey)
	t.Cleanup(func() {
		client.Del(context.Background(), recentSearchesKey)
		_ = client.Close()
	})

	return NewRedisFromClient(client, zap.NewNop())
}

func TestSearchHistory_CappedNewestFirst(t *testing.T) {
	r := getTestRedis(t)
	repo := NewSearchHistoryRepository(r)
	ctx := context.Background()

	for _, q := range []string{"3550", "Bendigo", "9999", "abc"} {
		err := repo.Push(ctx, domain.RecentSearch{
			ID:         uuid.New(),
			Query:      q,
			Kind:       domain.SearchKindRaw,
			SearchedAt: time.Now().UTC(),
		}, 3)
		require.NoError(t, err)
	}

	got, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "abc", got[0].Query)
	assert.Equal(t, "Bendigo", got[2].Query)

	got, err = repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestCacheRepository_Integration(t *testing.T) {
	r := getTestRedis(t)
	repo := NewCacheRepository(r)
	ctx := context.Background()
	key := "test:cache:postcode"
	defer repo.Delete(ctx, key)

	val, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, repo.Set(ctx, key, []byte("3550"), time.Minute))
	val, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("3550"), val)

	require.NoError(t, repo.Delete(ctx, key))
	val, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, val)
}

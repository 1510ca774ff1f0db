package geojson

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/config"
	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

const sampleCollection = `{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"POA_CODE":"3550"},
	 "geometry":{"type":"Polygon","coordinates":[[[144.2,-36.8],[144.4,-36.8],[144.4,-36.6]]]}}
]}`

type stubSource struct {
	name string
	fc   *domain.FeatureCollection
	err  error
	hits int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) (*domain.FeatureCollection, error) {
	s.hits++
	return s.fc, s.err
}

type mockDatasetCache struct {
	mock.Mock
}

func (m *mockDatasetCache) GetDataset(ctx context.Context, source string) (*domain.FeatureCollection, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeatureCollection), args.Error(1)
}

func (m *mockDatasetCache) SetDataset(ctx context.Context, source string, fc *domain.FeatureCollection, ttl time.Duration) error {
	args := m.Called(ctx, source, fc, ttl)
	return args.Error(0)
}

func (m *mockDatasetCache) InvalidateDataset(ctx context.Context, source string) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func TestDecode(t *testing.T) {
	fc, err := Decode(strings.NewReader(sampleCollection))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "3550", fc.Features[0].Properties["POA_CODE"])
	assert.Equal(t, domain.GeometryPolygon, fc.Features[0].Geometry.Type)

	_, err = Decode(strings.NewReader(`{"type":"FeatureCollection"}`))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Decode(strings.NewReader(`not json`))
	assert.Error(t, err)

	fc, err = Decode(strings.NewReader(`{"features":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "FeatureCollection", fc.Type)
}

func TestPostcodes(t *testing.T) {
	fc := &domain.FeatureCollection{Features: []domain.Feature{
		{Properties: map[string]interface{}{"pc": "3550"}},
		{Properties: map[string]interface{}{"pc": "3000"}},
		{Properties: map[string]interface{}{"pc": "3550"}},
	}}
	extract := func(p map[string]interface{}) string { return p["pc"].(string) }

	assert.Equal(t, []string{"3550", "3000"}, Postcodes(fc, extract))
	assert.Nil(t, Postcodes(nil, extract))
}

func TestObjectStoreSource_Fetch(t *testing.T) {
	logger := zap.NewNop()

	t.Run("downloads with api key headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/storage/v1/object/geojson-data/vic-postcodes.json", r.URL.Path)
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(sampleCollection))
		}))
		defer server.Close()

		src := NewObjectStoreSource(&config.StorageConfig{
			URL: server.URL + "/", Key: "anon-key", Bucket: "geojson-data", Object: "vic-postcodes.json",
		}, logger)

		fc, err := src.Fetch(context.Background())
		require.NoError(t, err)
		assert.Len(t, fc.Features, 1)
		assert.Equal(t, "storage", src.Name())
	})

	t.Run("not configured", func(t *testing.T) {
		src := NewObjectStoreSource(&config.StorageConfig{Bucket: "geojson-data"}, logger)

		_, err := src.Fetch(context.Background())
		assert.ErrorIs(t, err, repository.ErrSourceNotConfigured)
	})

	t.Run("missing object", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		src := NewObjectStoreSource(&config.StorageConfig{URL: server.URL, Key: "k", Bucket: "b", Object: "o"}, logger)

		_, err := src.Fetch(context.Background())
		assert.ErrorIs(t, err, repository.ErrDatasetNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}))
		defer server.Close()

		src := NewObjectStoreSource(&config.StorageConfig{URL: server.URL, Key: "k", Bucket: "b", Object: "o"}, logger)

		_, err := src.Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})
}

func TestFileSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vic.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCollection), 0o600))

	fc, err := NewFileSource(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)

	_, err = NewFileSource(filepath.Join(dir, "missing.json")).Fetch(context.Background())
	assert.ErrorIs(t, err, repository.ErrDatasetNotFound)

	_, err = NewFileSource("").Fetch(context.Background())
	assert.ErrorIs(t, err, repository.ErrSourceNotConfigured)
}

func TestFallbackSource(t *testing.T) {
	logger := zap.NewNop()
	good := &domain.FeatureCollection{Type: "FeatureCollection", Features: []domain.Feature{{Type: "Feature"}}}

	t.Run("first success wins", func(t *testing.T) {
		failing := &stubSource{name: "storage", err: errors.New("down")}
		second := &stubSource{name: "postgres", fc: good}
		third := &stubSource{name: "file", fc: good}

		fc, name, err := NewFallbackSource(logger, failing, second, third).FetchTraced(context.Background())
		require.NoError(t, err)
		assert.Same(t, good, fc)
		assert.Equal(t, "postgres", name)
		assert.Equal(t, 0, third.hits)
	})

	t.Run("all failing yields empty collection", func(t *testing.T) {
		src := NewFallbackSource(logger,
			&stubSource{name: "storage", err: repository.ErrSourceNotConfigured},
			&stubSource{name: "file", err: repository.ErrDatasetNotFound},
		)

		fc, name, err := src.FetchTraced(context.Background())
		require.NoError(t, err)
		assert.Equal(t, EmptySourceName, name)
		assert.Equal(t, "FeatureCollection", fc.Type)
		assert.NotNil(t, fc.Features)
		assert.Empty(t, fc.Features)
		assert.Equal(t, "storage,file", src.Name())
	})

	t.Run("cancelled context stops", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		second := &stubSource{name: "file", fc: good}

		_, err := NewFallbackSource(logger, &stubSource{name: "storage", err: context.Canceled}, second).Fetch(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, second.hits)
	})
}

func TestCachedSource(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	fc := &domain.FeatureCollection{Type: "FeatureCollection", Features: []domain.Feature{}}

	t.Run("hit skips inner", func(t *testing.T) {
		cache := new(mockDatasetCache)
		inner := &stubSource{name: "storage"}
		cache.On("GetDataset", ctx, "storage").Return(fc, nil)

		got, err := NewCachedSource(inner, cache, time.Hour, logger).Fetch(ctx)
		require.NoError(t, err)
		assert.Same(t, fc, got)
		assert.Equal(t, 0, inner.hits)
		cache.AssertExpectations(t)
	})

	t.Run("miss stores result", func(t *testing.T) {
		cache := new(mockDatasetCache)
		inner := &stubSource{name: "storage", fc: fc}
		cache.On("GetDataset", ctx, "storage").Return(nil, nil)
		cache.On("SetDataset", ctx, "storage", fc, time.Hour).Return(nil)

		got, err := NewCachedSource(inner, cache, time.Hour, logger).Fetch(ctx)
		require.NoError(t, err)
		assert.Same(t, fc, got)
		assert.Equal(t, 1, inner.hits)
		cache.AssertExpectations(t)
	})

	t.Run("cache errors are bypassed", func(t *testing.T) {
		cache := new(mockDatasetCache)
		inner := &stubSource{name: "storage", fc: fc}
		cache.On("GetDataset", ctx, "storage").Return(nil, errors.New("redis down"))
		cache.On("SetDataset", ctx, "storage", fc, time.Hour).Return(errors.New("redis down"))

		got, err := NewCachedSource(inner, cache, time.Hour, logger).Fetch(ctx)
		require.NoError(t, err)
		assert.Same(t, fc, got)
	})

	t.Run("inner error is returned and not cached", func(t *testing.T) {
		cache := new(mockDatasetCache)
		inner := &stubSource{name: "storage", err: repository.ErrSourceNotConfigured}
		cache.On("GetDataset", ctx, "storage").Return(nil, nil)

		_, err := NewCachedSource(inner, cache, time.Hour, logger).Fetch(ctx)
		assert.ErrorIs(t, err, repository.ErrSourceNotConfigured)
		cache.AssertNotCalled(t, "SetDataset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fallback invalidates cached members", func(t *testing.T) {
		cache := new(mockDatasetCache)
		cache.On("InvalidateDataset", ctx, "storage").Return(nil)
		cached := NewCachedSource(&stubSource{name: "storage"}, cache, time.Hour, logger)

		err := NewFallbackSource(logger, cached, &stubSource{name: "file"}).Invalidate(ctx)
		require.NoError(t, err)
		cache.AssertExpectations(t)
	})
}

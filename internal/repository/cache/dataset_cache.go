package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

const datasetKeyPrefix = "dataset:geojson:"

// datasetCache stores FeatureCollections as zstd-compressed JSON on top of CacheRepository.
type datasetCache struct {
	cache   repository.CacheRepository
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *zap.Logger
}

// NewDatasetCache - create dataset cache. The zstd encoder and decoder are
// used only through EncodeAll/DecodeAll and are safe to share.
func NewDatasetCache(cache repository.CacheRepository, logger *zap.Logger) (repository.DatasetCache, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &datasetCache{cache: cache, encoder: encoder, decoder: decoder, logger: logger}, nil
}

func datasetKey(source string) string {
	return datasetKeyPrefix + source
}

func (c *datasetCache) GetDataset(ctx context.Context, source string) (*domain.FeatureCollection, error) {
	compressed, err := c.cache.Get(ctx, datasetKey(source))
	if err != nil || compressed == nil {
		return nil, err
	}

	raw, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress dataset: %w", err)
	}

	var fc domain.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("unmarshal dataset: %w", err)
	}
	return &fc, nil
}

func (c *datasetCache) SetDataset(ctx context.Context, source string, fc *domain.FeatureCollection, ttl time.Duration) error {
	raw, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	compressed := c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4))

	c.logger.Debug("Caching dataset",
		zap.String("source", source),
		zap.String("raw", humanize.Bytes(uint64(len(raw)))),
		zap.String("compressed", humanize.Bytes(uint64(len(compressed)))))

	return c.cache.Set(ctx, datasetKey(source), compressed, ttl)
}

func (c *datasetCache) InvalidateDataset(ctx context.Context, source string) error {
	return c.cache.Delete(ctx, datasetKey(source))
}

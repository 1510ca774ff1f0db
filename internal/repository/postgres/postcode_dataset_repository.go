package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

type postcodeDatasetRepository struct {
	db *DB
}

// PostcodeDatasetStore is the database-backed dataset: a repository and a dataset source.
type PostcodeDatasetStore interface {
	repository.PostcodeDatasetRepository
	repository.GeoJSONSource
}

// NewPostcodeDatasetRepository - create repository over victoria_postcodes
func NewPostcodeDatasetRepository(db *DB) PostcodeDatasetStore {
	return &postcodeDatasetRepository{db: db}
}

func (r *postcodeDatasetRepository) Name() string {
	return "postgres"
}

func (r *postcodeDatasetRepository) Fetch(ctx context.Context) (*domain.FeatureCollection, error) {
	return r.Latest(ctx)
}

// Latest returns the newest stored collection.
func (r *postcodeDatasetRepository) Latest(ctx context.Context) (*domain.FeatureCollection, error) {
	query := `
		SELECT data
		FROM victoria_postcodes
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	start := time.Now()
	var data []byte
	if err := r.db.GetContext(ctx, &data, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrDatasetNotFound
		}
		r.db.logger.Error("Failed to load postcode dataset", zap.Error(err))
		return nil, fmt.Errorf("load postcode dataset: %w", err)
	}

	var fc domain.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode stored dataset: %w", err)
	}
	if fc.Features == nil {
		return nil, fmt.Errorf("stored dataset has no features array")
	}

	r.db.logger.Debug("Postcode dataset loaded from database",
		zap.Int("features", len(fc.Features)),
		zap.Duration("elapsed", time.Since(start)))
	return &fc, nil
}

// Save inserts fc as a new version.
func (r *postcodeDatasetRepository) Save(ctx context.Context, fc *domain.FeatureCollection, postcodes []string) (int64, error) {
	if fc == nil {
		return 0, fmt.Errorf("nil feature collection")
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return 0, fmt.Errorf("encode dataset: %w", err)
	}
	if postcodes == nil {
		postcodes = []string{}
	}

	query := `
		INSERT INTO victoria_postcodes (data, postcodes, feature_count)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, string(data), pq.Array(postcodes), len(fc.Features)).Scan(&id); err != nil {
		r.db.logger.Error("Failed to save postcode dataset", zap.Error(err))
		return 0, fmt.Errorf("save postcode dataset: %w", err)
	}

	r.db.logger.Info("Postcode dataset saved",
		zap.Int64("id", id),
		zap.Int("features", len(fc.Features)),
		zap.Int("postcodes", len(postcodes)))
	return id, nil
}

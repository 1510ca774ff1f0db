package repository

import (
	"context"
	"errors"

	"github.com/postcode-finder/internal/domain"
)

// ErrSourceNotConfigured is returned by sources that lack the settings to run.
var ErrSourceNotConfigured = errors.New("dataset source not configured")

// ErrDatasetNotFound is returned when a source is reachable but holds no dataset.
var ErrDatasetNotFound = errors.New("dataset not found")

// GeoJSONSource provides the raw postcode boundary collection.
type GeoJSONSource interface {
	Name() string
	Fetch(ctx context.Context) (*domain.FeatureCollection, error)
}

// PostcodeDatasetRepository persists boundary collections in the database.
type PostcodeDatasetRepository interface {
	// Latest returns the most recently stored collection or ErrDatasetNotFound.
	Latest(ctx context.Context) (*domain.FeatureCollection, error)
	// Save stores fc with the postcodes it covers and returns the new row id.
	Save(ctx context.Context, fc *domain.FeatureCollection, postcodes []string) (int64, error)
}

// SourceTracer is implemented by composite sources that report which member served the data.
type SourceTracer interface {
	FetchTraced(ctx context.Context) (*domain.FeatureCollection, string, error)
}

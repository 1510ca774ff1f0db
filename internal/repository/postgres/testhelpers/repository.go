package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewPostcodeDatasetRepositoryForTest creates a dataset repository with test database and logger
func NewPostcodeDatasetRepositoryForTest(db *sqlx.DB, logger *zap.Logger) postgres.PostcodeDatasetStore {
	return postgres.NewPostcodeDatasetRepository(NewDBForTest(db, logger))
}

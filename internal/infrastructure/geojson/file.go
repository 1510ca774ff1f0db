package geojson

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

// FileSource reads the dataset bundled with the deployment.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return "file"
}

func (s *FileSource) Fetch(ctx context.Context) (*domain.FeatureCollection, error) {
	if s.path == "" {
		return nil, repository.ErrSourceNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, repository.ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

package geojson

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/postcode-finder/internal/config"
	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

// ObjectStoreSource downloads the dataset from a Supabase-style storage REST API.
type ObjectStoreSource struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	bucket     string
	object     string
	logger     *zap.Logger
}

// NewObjectStoreSource - create object store source
func NewObjectStoreSource(cfg *config.StorageConfig, logger *zap.Logger) *ObjectStoreSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ObjectStoreSource{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.Key,
		bucket:     cfg.Bucket,
		object:     cfg.Object,
		logger:     logger,
	}
}

func (s *ObjectStoreSource) Name() string {
	return "storage"
}

// ObjectURL is the download endpoint for the configured object.
func (s *ObjectStoreSource) ObjectURL() string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), url.PathEscape(s.object))
}

func (s *ObjectStoreSource) Fetch(ctx context.Context) (*domain.FeatureCollection, error) {
	if s.baseURL == "" || s.apiKey == "" {
		return nil, repository.ErrSourceNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ObjectURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s/%s: %w", s.bucket, s.object, repository.ErrDatasetNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("storage error: status %d, body: %s", resp.StatusCode, string(body))
	}

	fc, err := Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Dataset downloaded",
		zap.String("bucket", s.bucket),
		zap.String("object", s.object),
		zap.Int("features", len(fc.Features)),
		zap.Duration("elapsed", time.Since(start)))
	return fc, nil
}

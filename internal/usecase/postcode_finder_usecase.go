package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
	"github.com/postcode-finder/internal/eligibility"
	"github.com/postcode-finder/internal/geometry"
	"github.com/postcode-finder/internal/pkg/errors"
	"github.com/postcode-finder/internal/pkg/metrics"
	"github.com/postcode-finder/internal/pkg/utils"
	"github.com/postcode-finder/internal/search"
	"github.com/postcode-finder/internal/usecase/dto"
)

const (
	// DefaultLocatePostcode is used when the geocoder knows no postcode for a position.
	DefaultLocatePostcode = "3000"
	// DefaultHistoryLimit - recent searches kept and returned by default
	DefaultHistoryLimit = 10

	reloadKey      = "reload"
	forceReloadKey = "reload:force"
)

// datasetState is swapped as a whole so readers never see a half-built dataset.
type datasetState struct {
	dataset *domain.Dataset
	locator *geometry.Locator
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// PostcodeFinderUseCase serves shapes, eligibility and search over the active dataset.
type PostcodeFinderUseCase struct {
	classifier *eligibility.Classifier
	normalizer *geometry.Normalizer
	resolver   *search.Resolver
	source     repository.GeoJSONSource
	history    repository.SearchHistoryRepository
	geocoder   repository.ReverseGeocoder
	stream     repository.StreamRepository
	metrics    *metrics.Metrics
	logger     *zap.Logger

	samples      []domain.SampleLocation
	historyLimit int
	now          func() time.Time

	state  atomic.Pointer[datasetState]
	reload singleflight.Group
}

// Option configures optional collaborators
type Option func(*PostcodeFinderUseCase)

// WithSearchHistory enables recent-search recording.
func WithSearchHistory(history repository.SearchHistoryRepository, limit int) Option {
	return func(uc *PostcodeFinderUseCase) {
		uc.history = history
		if limit > 0 {
			uc.historyLimit = limit
		}
	}
}

// WithReverseGeocoder enables address lookup for positions outside every shape.
func WithReverseGeocoder(geocoder repository.ReverseGeocoder) Option {
	return func(uc *PostcodeFinderUseCase) {
		uc.geocoder = geocoder
	}
}

// WithReloadStream enables asynchronous reload requests.
func WithReloadStream(stream repository.StreamRepository) Option {
	return func(uc *PostcodeFinderUseCase) {
		uc.stream = stream
	}
}

// WithSamples replaces the sample locations.
func WithSamples(samples []domain.SampleLocation) Option {
	return func(uc *PostcodeFinderUseCase) {
		uc.samples = samples
	}
}

// NewPostcodeFinderUseCase - create usecase; the dataset stays empty until Reload succeeds
func NewPostcodeFinderUseCase(
	classifier *eligibility.Classifier,
	source repository.GeoJSONSource,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...Option,
) *PostcodeFinderUseCase {
	uc := &PostcodeFinderUseCase{
		classifier:   classifier,
		normalizer:   geometry.NewNormalizer(classifier, logger),
		resolver:     search.NewResolver(classifier),
		source:       source,
		metrics:      m,
		logger:       logger,
		samples:      domain.VictoriaSampleLocations(),
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Reload fetches and normalizes the dataset, then swaps it in. Concurrent calls
// with the same force flag share one load; a forced call never joins a plain
// one, so the source caches are always invalidated. The shared load is not
// cancelled when the caller that started it goes away. On failure the
// previous dataset stays active.
func (uc *PostcodeFinderUseCase) Reload(ctx context.Context, force bool) (*domain.Dataset, error) {
	key := reloadKey
	if force {
		key = forceReloadKey
	}
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := uc.reload.Do(key, func() (interface{}, error) {
		return uc.load(loadCtx, force)
	})
	if shared {
		uc.logger.Debug("Joined in-flight dataset reload")
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.Dataset), nil
}

func (uc *PostcodeFinderUseCase) load(ctx context.Context, force bool) (*domain.Dataset, error) {
	if force {
		if inv, ok := uc.source.(invalidator); ok {
			if err := inv.Invalidate(ctx); err != nil {
				uc.logger.Warn("Dataset cache invalidation failed", zap.Error(err))
			}
		}
	}

	start := time.Now()
	fc, sourceName, err := uc.fetch(ctx)
	uc.metrics.ObserveDatasetLoad(sourceName, start, err)
	if err != nil {
		uc.logger.Error("Dataset load failed", zap.String("source", sourceName), zap.Error(err))
		return nil, errors.ErrDatasetSourceError.WithDetails(map[string]interface{}{"error": err.Error()})
	}

	shapes, report := uc.normalizer.NormalizeWithReport(fc)
	dataset := &domain.Dataset{
		Shapes:          shapes,
		Source:          sourceName,
		LoadedAt:        uc.now().UTC(),
		Features:        report.Features,
		OutOfState:      report.OutOfState,
		SkippedFeatures: report.Skipped,
		ShapeCount:      report.Shapes,
	}
	uc.state.Store(&datasetState{dataset: dataset, locator: geometry.NewLocator(shapes)})
	uc.metrics.SetDatasetStats(report.Shapes, report.Skipped, report.OutOfState)

	uc.logger.Info("Dataset loaded",
		zap.String("source", sourceName),
		zap.Int("features", report.Features),
		zap.Int("shapes", report.Shapes),
		zap.Int("skipped", report.Skipped),
		zap.Duration("elapsed", time.Since(start)))
	return dataset, nil
}

func (uc *PostcodeFinderUseCase) fetch(ctx context.Context) (*domain.FeatureCollection, string, error) {
	if tracer, ok := uc.source.(repository.SourceTracer); ok {
		return tracer.FetchTraced(ctx)
	}
	fc, err := uc.source.Fetch(ctx)
	return fc, uc.source.Name(), err
}

// RequestReload publishes a reload event for the workers.
func (uc *PostcodeFinderUseCase) RequestReload(ctx context.Context, requestedBy string) (uuid.UUID, error) {
	if uc.stream == nil {
		return uuid.Nil, errors.ErrInvalidRequest.WithMessage("Asynchronous reload is not available")
	}
	event := domain.DatasetReloadEvent{
		RequestID:   uuid.New(),
		RequestedBy: requestedBy,
		RequestedAt: uc.now().UTC(),
	}
	if err := uc.stream.PublishToStream(ctx, domain.StreamDatasetReload, event); err != nil {
		return uuid.Nil, fmt.Errorf("publish reload event: %w", err)
	}
	return event.RequestID, nil
}

// Dataset returns the active dataset, or false before the first successful load.
func (uc *PostcodeFinderUseCase) Dataset() (*domain.Dataset, bool) {
	st := uc.state.Load()
	if st == nil {
		return nil, false
	}
	return st.dataset, true
}

func (uc *PostcodeFinderUseCase) current() (*datasetState, error) {
	st := uc.state.Load()
	if st == nil {
		return nil, errors.ErrDatasetNotLoaded
	}
	return st, nil
}

// Shapes returns the active shapes, narrowed and recolored by filter.
func (uc *PostcodeFinderUseCase) Shapes(filter domain.VisaFilter) ([]domain.RenderShape, error) {
	if filter == "" {
		filter = domain.FilterAll
	}
	if !filter.Valid() {
		return nil, errors.ErrInvalidFilter.WithDetails(map[string]interface{}{"filter": string(filter)})
	}
	st, err := uc.current()
	if err != nil {
		return nil, err
	}
	return geometry.FilterShapes(uc.classifier, st.dataset.Shapes, filter), nil
}

// ShapeEligibility describes the postcode of a clicked shape.
func (uc *PostcodeFinderUseCase) ShapeEligibility(id string) (*dto.ShapeEligibilityResponse, error) {
	st, err := uc.current()
	if err != nil {
		return nil, err
	}
	shape, ok := st.dataset.ShapeByID(id)
	if !ok {
		return nil, errors.ErrShapeNotFound.WithDetails(map[string]interface{}{"id": id})
	}
	return &dto.ShapeEligibilityResponse{
		ShapeID:             shape.ID,
		ParentID:            shape.ParentID,
		EligibilityResponse: uc.eligibility(shape.Postcode),
	}, nil
}

// Eligibility classifies a postcode. Text without a leading number is rejected.
func (uc *PostcodeFinderUseCase) Eligibility(postcode string) (*dto.EligibilityResponse, error) {
	if _, ok := eligibility.ParsePostcode(postcode); !ok {
		return nil, errors.ErrInvalidPostcode.WithDetails(map[string]interface{}{"postcode": postcode})
	}
	resp := uc.eligibility(postcode)
	return &resp, nil
}

func (uc *PostcodeFinderUseCase) eligibility(postcode string) dto.EligibilityResponse {
	flags, category := uc.classifier.Categorize(postcode)
	uc.metrics.IncClassification(string(category))
	return dto.EligibilityResponse{
		Postcode:      postcode,
		Eligibility:   flags,
		Category:      category,
		Style:         eligibility.Style(category),
		Message:       uc.classifier.EligibilityMessage(postcode),
		EligibleVisas: uc.classifier.EligibleVisas(postcode),
	}
}

// Search resolves query against samples and the active shapes.
func (uc *PostcodeFinderUseCase) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	st, err := uc.current()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.ErrEmptyQuery
	}

	result := uc.resolver.Resolve(query, st.dataset.Shapes, uc.samples)
	uc.metrics.IncSearch(string(result.Kind))

	if result.Kind != domain.SearchKindNone {
		uc.recordSearch(ctx, query, result)
	}
	return &result, nil
}

func (uc *PostcodeFinderUseCase) recordSearch(ctx context.Context, query string, result domain.SearchResult) {
	if uc.history == nil {
		return
	}
	entry := domain.RecentSearch{
		ID:         uuid.New(),
		Query:      query,
		Kind:       result.Kind,
		Postcode:   result.Postcode,
		SearchedAt: uc.now().UTC(),
	}
	if err := uc.history.Push(ctx, entry, uc.historyLimit); err != nil {
		uc.logger.Warn("Failed to record search", zap.String("query", query), zap.Error(err))
	}
}

// RecentSearches returns up to limit entries, newest first. limit <= 0 means the configured size.
func (uc *PostcodeFinderUseCase) RecentSearches(ctx context.Context, limit int) ([]domain.RecentSearch, error) {
	if uc.history == nil {
		return []domain.RecentSearch{}, nil
	}
	if limit <= 0 || limit > uc.historyLimit {
		limit = uc.historyLimit
	}
	entries, err := uc.history.Recent(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to read recent searches", zap.Error(err))
		return nil, errors.ErrCacheError
	}
	return entries, nil
}

// Rules returns the contents of the three rule tables.
func (uc *PostcodeFinderUseCase) Rules() []dto.RuleSetResponse {
	tables := uc.classifier.Tables()
	sets := []struct {
		key domain.VisaFilter
		set domain.PostcodeRuleSet
	}{
		{domain.FilterWHV417Regional, tables.WHV417Regional},
		{domain.FilterWHV417Remote, tables.WHV417Remote},
		{domain.FilterVisa491, tables.Visa491},
	}

	out := make([]dto.RuleSetResponse, 0, len(sets))
	for _, s := range sets {
		out = append(out, dto.RuleSetResponse{
			Key:     s.key,
			Name:    s.set.Name(),
			Singles: s.set.SinglePostcodes(),
			Ranges:  s.set.Ranges(),
			Summary: s.set.Describe(),
		})
	}
	return out
}

// Samples returns the sample markers with the visas each qualifies for.
func (uc *PostcodeFinderUseCase) Samples() []dto.SampleResponse {
	out := make([]dto.SampleResponse, 0, len(uc.samples))
	for _, s := range uc.samples {
		visas := uc.classifier.EligibleVisas(s.Postcode)
		description := "Not eligible"
		if len(visas) > 0 {
			description = "Eligible visas: " + strings.Join(visas, ", ")
		}
		out = append(out, dto.SampleResponse{
			SampleLocation: s,
			EligibleVisas:  visas,
			Description:    description,
		})
	}
	return out
}

// Locate finds the postcode at a position: the containing shape first, then
// the reverse geocoder, then DefaultLocatePostcode.
func (uc *PostcodeFinderUseCase) Locate(ctx context.Context, lat, lon float64) (*dto.LocateResponse, error) {
	if !utils.ValidateCoordinates(lat, lon) {
		return nil, errors.ErrInvalidCoordinates
	}

	point := domain.Coordinate{Latitude: lat, Longitude: lon}
	resp := &dto.LocateResponse{Coordinates: point}
	address := domain.Address{}

	if st := uc.state.Load(); st != nil {
		if shape, ok := st.locator.Locate(lat, lon); ok {
			resp.Postcode = shape.Postcode
			resp.ShapeID = shape.ID
			resp.Source = dto.LocateSourceShape
		}
	}

	if resp.Postcode == "" {
		switch {
		case uc.geocoder == nil:
			resp.Postcode = DefaultLocatePostcode
			resp.Source = dto.LocateSourceDefault
		default:
			addr, err := uc.geocoder.Reverse(ctx, lat, lon)
			if err != nil {
				uc.metrics.IncGeocoder("error")
				uc.logger.Warn("Reverse geocoding failed",
					zap.Float64("lat", lat),
					zap.Float64("lon", lon),
					zap.Error(err))
				return nil, errors.ErrGeocoderError
			}
			uc.metrics.IncGeocoder("success")
			address = *addr
			resp.Postcode = addr.Postcode
			resp.Source = dto.LocateSourceGeocoder
			if resp.Postcode == "" {
				resp.Postcode = DefaultLocatePostcode
			}
		}
	}

	resp.Label = address.Label()
	resp.Eligibility = uc.eligibility(resp.Postcode)
	resp.Eligible = resp.Eligibility.Eligibility.Any()

	if nearest, dist, ok := utils.NearestSample(point, uc.samples); ok {
		resp.NearestSample = &dto.NearestSample{
			Name:       nearest.Name,
			Postcode:   nearest.Postcode,
			DistanceKm: dist,
		}
	}
	return resp, nil
}

// Ready reports whether a dataset has been loaded.
func (uc *PostcodeFinderUseCase) Ready() bool {
	return uc.state.Load() != nil
}

package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/config"
	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
	"github.com/postcode-finder/internal/pkg/metrics"
	"github.com/postcode-finder/internal/worker"
)

const (
	defaultBatchSize = 10
	errorPause       = time.Second
	retryBackoff     = 500 * time.Millisecond
)

// Reloader swaps in a freshly loaded dataset
type Reloader interface {
	Reload(ctx context.Context, force bool) (*domain.Dataset, error)
}

// ReloadWorker consumes reload requests from the stream and optionally
// refreshes the dataset on a fixed interval.
type ReloadWorker struct {
	*worker.BaseWorker
	streamRepo      repository.StreamRepository
	reloader        Reloader
	metrics         *metrics.Metrics
	batchSize       int64
	readTimeout     time.Duration
	maxRetries      int
	refreshInterval time.Duration
}

func NewReloadWorker(
	streamRepo repository.StreamRepository,
	reloader Reloader,
	m *metrics.Metrics,
	cfg config.WorkerConfig,
	logger *zap.Logger,
) *ReloadWorker {
	batchSize := int64(cfg.BatchSize)
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &ReloadWorker{
		BaseWorker:      worker.NewBaseWorker("dataset-reload", cfg.ConsumerGroup, logger),
		streamRepo:      streamRepo,
		reloader:        reloader,
		metrics:         m,
		batchSize:       batchSize,
		readTimeout:     cfg.StreamReadTimeout,
		maxRetries:      maxRetries,
		refreshInterval: cfg.RefreshInterval,
	}
}

func (w *ReloadWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting dataset reload worker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Duration("refresh_interval", w.refreshInterval))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamDatasetReload, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	var refresh <-chan time.Time
	if w.refreshInterval > 0 {
		ticker := time.NewTicker(w.refreshInterval)
		defer ticker.Stop()
		refresh = ticker.C
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			return ctx.Err()

		case <-refresh:
			if _, err := w.reloadWithRetry(ctx); err != nil {
				logger.Error("Scheduled dataset refresh failed", zap.Error(err))
			}

		default:
			if _, err := w.ProcessBatch(ctx); err != nil {
				logger.Error("Failed to process reload batch", zap.Error(err))
				w.pause(ctx, errorPause)
			}
		}
	}
}

// ProcessBatch reads pending reload requests and answers them with a single
// reload. Returns the number of stream messages consumed.
func (w *ReloadWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamDatasetReload,
		w.ConsumerGroup(),
		w.ConsumerName(),
		w.batchSize,
		w.readTimeout,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	events := make([]domain.DatasetReloadEvent, 0, len(messages))
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)

		var event domain.DatasetReloadEvent
		if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
			logger.Warn("Invalid reload event, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			w.metrics.IncReloadEvent("invalid")
			continue
		}
		events = append(events, event)
	}

	if len(events) > 0 {
		dataset, reloadErr := w.reloadWithRetry(ctx)
		result := "success"
		if reloadErr != nil {
			result = "error"
		}

		for _, event := range events {
			w.metrics.IncReloadEvent(result)
			done := buildReloadedEvent(event.RequestID, dataset, reloadErr)
			if err := w.streamRepo.PublishToStream(ctx, domain.StreamDatasetReloaded, done); err != nil {
				logger.Error("Failed to publish reloaded event",
					zap.String("request_id", event.RequestID.String()),
					zap.Error(err))
			}
		}
	}

	// failed reloads are acked too; the reloaded event carries the error
	if err := w.streamRepo.AckMessages(ctx, domain.StreamDatasetReload, w.ConsumerGroup(), ids...); err != nil {
		logger.Error("Failed to ack messages", zap.Error(err))
	}

	logger.Info("Reload batch processed",
		zap.Int("messages", len(messages)),
		zap.Int("events", len(events)))

	return len(messages), nil
}

func (w *ReloadWorker) reloadWithRetry(ctx context.Context) (*domain.Dataset, error) {
	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		dataset, err := w.reloader.Reload(ctx, true)
		if err == nil {
			return dataset, nil
		}
		lastErr = err
		w.Logger().Warn("Dataset reload attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", w.maxRetries),
			zap.Error(err))

		if attempt < w.maxRetries && !w.pause(ctx, retryBackoff*time.Duration(attempt)) {
			break
		}
	}
	return nil, lastErr
}

// pause sleeps for d; false when interrupted by stop or cancellation.
func (w *ReloadWorker) pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-w.StopChan():
		return false
	case <-ctx.Done():
		return false
	}
}

func buildReloadedEvent(requestID uuid.UUID, dataset *domain.Dataset, err error) domain.DatasetReloadedEvent {
	event := domain.DatasetReloadedEvent{
		RequestID: requestID,
		LoadedAt:  time.Now().UTC(),
	}
	if err != nil {
		event.Error = err.Error()
		return event
	}
	event.Source = dataset.Source
	event.ShapeCount = dataset.ShapeCount
	event.Skipped = dataset.SkippedFeatures
	event.LoadedAt = dataset.LoadedAt
	return event
}

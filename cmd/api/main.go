package main

// @title Postcode Finder API
// @version 1.0.0
// @description Victorian postcode boundaries classified for Working Holiday Visa 417 (regional and remote) and subclass 491 eligibility.
// @description Serves map shapes with category colors, postcode search, eligibility lookups and position based postcode detection.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/config"
	httpDelivery "github.com/postcode-finder/internal/delivery/http"
	"github.com/postcode-finder/internal/delivery/http/handler"
	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
	"github.com/postcode-finder/internal/eligibility"
	"github.com/postcode-finder/internal/infrastructure/geojson"
	"github.com/postcode-finder/internal/infrastructure/nominatim"
	"github.com/postcode-finder/internal/pkg/logger"
	"github.com/postcode-finder/internal/pkg/metrics"
	"github.com/postcode-finder/internal/repository/cache"
	"github.com/postcode-finder/internal/repository/postgres"
	redisRepo "github.com/postcode-finder/internal/repository/redis"
	"github.com/postcode-finder/internal/usecase"
	"github.com/postcode-finder/internal/worker"
	"github.com/postcode-finder/internal/worker/dataset"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Postcode Finder")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Strings("dataset_sources", cfg.Dataset.Sources),
	)

	// 3. Optional PostgreSQL
	var db *postgres.DB
	if cfg.Database.Enabled {
		db, err = postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
	}

	// 4. Optional Redis
	var redisClient *cache.Redis
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
	}

	// 5. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// 6. Repositories and dataset sources
	var datasetCache repository.DatasetCache
	if redisClient != nil {
		datasetCache, err = cache.NewDatasetCache(cache.NewCacheRepository(redisClient), log)
		if err != nil {
			log.Fatal("Failed to initialize dataset cache", zap.Error(err))
		}
	}
	source := buildSource(cfg, db, datasetCache, log)

	var opts []usecase.Option
	healthChecks := map[string]handler.HealthCheck{}
	var streamRepo repository.StreamRepository

	if redisClient != nil {
		streamRepo = redisRepo.NewStreamRepository(redisClient.Client(), log)
		opts = append(opts,
			usecase.WithSearchHistory(cache.NewSearchHistoryRepository(redisClient), cfg.Cache.RecentSearchLimit),
			usecase.WithReloadStream(streamRepo),
		)
		healthChecks["redis"] = redisClient.Health
	}
	if db != nil {
		healthChecks["postgres"] = db.Health
	}
	if cfg.Nominatim.Enabled {
		opts = append(opts, usecase.WithReverseGeocoder(nominatim.NewClient(log,
			nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
			nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
			nominatim.WithEmail(cfg.Nominatim.Email),
			nominatim.WithMinInterval(cfg.Nominatim.MinInterval),
		)))
	}

	log.Info("Repositories initialized", zap.String("dataset_source", source.Name()))

	// 7. Use case and initial load
	classifier := eligibility.NewClassifier(domain.VictoriaRuleTables())
	finderUC := usecase.NewPostcodeFinderUseCase(classifier, source, m, log, opts...)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Storage.Timeout+30*time.Second)
	if _, err := finderUC.Reload(loadCtx, false); err != nil {
		// the API still answers eligibility lookups; shapes return DATASET_NOT_LOADED
		log.Error("Initial dataset load failed", zap.Error(err))
	}
	cancelLoad()

	// 8. HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		registry,
		m,
		handler.NewPostcodeHandler(finderUC, log),
		handler.NewDatasetHandler(finderUC, healthChecks, log),
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Workers
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	workerManager := worker.NewWorkerManager(log)
	if cfg.Worker.Enabled {
		if streamRepo == nil {
			log.Warn("Worker enabled without Redis, reload stream is not consumed")
		} else {
			workerManager.Register(dataset.NewReloadWorker(streamRepo, finderUC, m, cfg.Worker, log))
			if err := workerManager.Start(workerCtx); err != nil {
				log.Error("Failed to start workers", zap.Error(err))
			}
		}
	}

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if workerManager.Len() > 0 {
		if err := workerManager.Stop(); err != nil {
			log.Error("Workers shutdown error", zap.Error(err))
		}
	}
	cancelWorkers()

	log.Info("Server stopped successfully")
}

// buildSource chains the configured sources in order. Remote sources are
// served through the dataset cache when Redis is available.
func buildSource(cfg *config.Config, db *postgres.DB, datasetCache repository.DatasetCache, log *zap.Logger) repository.GeoJSONSource {
	cached := func(src repository.GeoJSONSource) repository.GeoJSONSource {
		if datasetCache == nil {
			return src
		}
		return geojson.NewCachedSource(src, datasetCache, cfg.Cache.DatasetTTL, log)
	}

	sources := make([]repository.GeoJSONSource, 0, len(cfg.Dataset.Sources))
	for _, name := range cfg.Dataset.Sources {
		switch name {
		case "storage":
			if !cfg.StorageConfigured() {
				log.Info("Object storage not configured, skipping source")
				continue
			}
			sources = append(sources, cached(geojson.NewObjectStoreSource(&cfg.Storage, log)))
		case "postgres":
			if db == nil {
				log.Info("PostgreSQL disabled, skipping source")
				continue
			}
			sources = append(sources, cached(postgres.NewPostcodeDatasetRepository(db)))
		case "file":
			sources = append(sources, geojson.NewFileSource(cfg.Dataset.File))
		default:
			log.Warn("Unknown dataset source", zap.String("source", name))
		}
	}

	return geojson.NewFallbackSource(log, sources...)
}

package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/config"
	"github.com/postcode-finder/internal/delivery/http/handler"
	"github.com/postcode-finder/internal/delivery/http/middleware"
	"github.com/postcode-finder/internal/pkg/errors"
	"github.com/postcode-finder/internal/pkg/metrics"
	"github.com/postcode-finder/internal/pkg/utils"

	_ "github.com/postcode-finder/docs"
)

// Server - fiber HTTP server
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	postcodeHandler *handler.PostcodeHandler
	datasetHandler  *handler.DatasetHandler
}

// NewServer - create server with middlewares and routes in place
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	registry *prometheus.Registry,
	m *metrics.Metrics,
	postcodeHandler *handler.PostcodeHandler,
	datasetHandler *handler.DatasetHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Postcode Finder",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		registry:        registry,
		metrics:         m,
		postcodeHandler: postcodeHandler,
		datasetHandler:  datasetHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.Metrics(s.metrics))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.app.Group("/api/v1")

	api.Get("/health", s.datasetHandler.Health)

	// Map
	api.Get("/shapes", s.postcodeHandler.GetShapes)
	api.Get("/shapes/:id/eligibility", s.postcodeHandler.GetShapeEligibility)
	api.Get("/samples", s.postcodeHandler.GetSamples)

	// Eligibility
	api.Get("/eligibility/:postcode", s.postcodeHandler.GetEligibility)
	api.Get("/rules", s.postcodeHandler.GetRules)
	api.Post("/locate", s.postcodeHandler.Locate)

	// Search
	api.Get("/search", s.postcodeHandler.Search)
	api.Get("/searches/recent", s.postcodeHandler.GetRecentSearches)

	// Dataset
	api.Get("/dataset", s.datasetHandler.GetDataset)
	api.Post("/dataset/reload", s.datasetHandler.Reload)
}

// App exposes the fiber app for in-process requests
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler renders errors that escape handlers (404 routes, body limits) in the error envelope.
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			appErr := errors.New("HTTP_ERROR", e.Message, e.Code)
			if e.Code == fiber.StatusNotFound {
				appErr = errors.New("NOT_FOUND", "Route not found", e.Code)
			}
			return utils.SendError(c, appErr)
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}

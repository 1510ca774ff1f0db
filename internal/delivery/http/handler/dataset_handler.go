package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/pkg/errors"
	"github.com/postcode-finder/internal/pkg/utils"
	"github.com/postcode-finder/internal/usecase"
	"github.com/postcode-finder/internal/usecase/dto"
)

// HealthCheck pings one dependency
type HealthCheck func(ctx context.Context) error

// DatasetHandler - dataset status, reloads and service health
type DatasetHandler struct {
	finderUC *usecase.PostcodeFinderUseCase
	checks   map[string]HealthCheck
	logger   *zap.Logger
}

// NewDatasetHandler - create DatasetHandler; checks are keyed by service name
func NewDatasetHandler(finderUC *usecase.PostcodeFinderUseCase, checks map[string]HealthCheck, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{
		finderUC: finderUC,
		checks:   checks,
		logger:   logger,
	}
}

// GetDataset godoc
// @Summary Active dataset
// @Description Source, load time and feature counts of the dataset currently served.
// @Tags Dataset
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.DatasetResponse}
// @Router /api/v1/dataset [get]
func (h *DatasetHandler) GetDataset(c *fiber.Ctx) error {
	dataset, ok := h.finderUC.Dataset()
	return utils.SendSuccess(c, dto.DatasetResponse{Loaded: ok, Dataset: dataset}, nil)
}

// Reload godoc
// @Summary Reload the dataset
// @Description Reloads in the request, or with async=true queues a reload for the workers. force=true drops cached copies first.
// @Tags Dataset
// @Accept json
// @Produce json
// @Param request body dto.ReloadRequest false "Reload options"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReloadResponse}
// @Success 202 {object} utils.SuccessResponse{data=dto.ReloadResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/dataset/reload [post]
func (h *DatasetHandler) Reload(c *fiber.Ctx) error {
	var req dto.ReloadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest)
		}
	}

	if req.Async {
		id, err := h.finderUC.RequestReload(c.UserContext(), "api")
		if err != nil {
			return utils.SendError(c, err)
		}
		c.Status(fiber.StatusAccepted)
		return utils.SendSuccess(c, dto.ReloadResponse{RequestID: id, Queued: true}, nil)
	}

	dataset, err := h.finderUC.Reload(c.UserContext(), req.Force)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.ReloadResponse{Dataset: dataset}, &utils.Meta{Source: dataset.Source})
}

// Health godoc
// @Summary Service health
// @Description degraded when no dataset is loaded or a dependency does not answer.
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (h *DatasetHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:   "healthy",
		Services: make(map[string]string, len(h.checks)+1),
		Time:     time.Now().UTC(),
	}

	resp.Services["dataset"] = "loaded"
	if !h.finderUC.Ready() {
		resp.Services["dataset"] = "not_loaded"
		resp.Status = "degraded"
	}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("service", name), zap.Error(err))
			resp.Services[name] = "unavailable"
			resp.Status = "degraded"
			continue
		}
		resp.Services[name] = "ok"
	}

	if resp.Status != "healthy" {
		c.Status(fiber.StatusServiceUnavailable)
	}
	return c.JSON(resp)
}

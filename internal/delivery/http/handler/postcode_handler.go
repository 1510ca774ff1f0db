package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/pkg/errors"
	"github.com/postcode-finder/internal/pkg/utils"
	"github.com/postcode-finder/internal/pkg/validator"
	"github.com/postcode-finder/internal/usecase"
	"github.com/postcode-finder/internal/usecase/dto"
)

// PostcodeHandler - map shapes, eligibility and search
type PostcodeHandler struct {
	finderUC *usecase.PostcodeFinderUseCase
	logger   *zap.Logger
}

// NewPostcodeHandler - create PostcodeHandler
func NewPostcodeHandler(finderUC *usecase.PostcodeFinderUseCase, logger *zap.Logger) *PostcodeHandler {
	return &PostcodeHandler{
		finderUC: finderUC,
		logger:   logger,
	}
}

// GetShapes godoc
// @Summary Postcode shapes for the map
// @Description Returns every drawable ring of the active dataset. A visa filter keeps only matching postcodes and recolors them.
// @Tags Shapes
// @Produce json
// @Param filter query string false "Visa filter" Enums(all, whv417regional, whv417remote, visa491) default(all)
// @Success 200 {object} utils.SuccessResponse{data=[]domain.RenderShape}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/shapes [get]
func (h *PostcodeHandler) GetShapes(c *fiber.Ctx) error {
	var req dto.ShapesRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidFilter.WithDetails(validator.FieldErrors(err)))
	}

	filter := domain.VisaFilter(req.Filter)
	if filter == "" {
		filter = domain.FilterAll
	}

	shapes, err := h.finderUC.Shapes(filter)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, shapes, &utils.Meta{
		Total:  len(shapes),
		Filter: string(filter),
	})
}

// GetShapeEligibility godoc
// @Summary Eligibility of a clicked shape
// @Tags Shapes
// @Produce json
// @Param id path string true "Shape id, e.g. 3550 or 3690-1-0"
// @Success 200 {object} utils.SuccessResponse{data=dto.ShapeEligibilityResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/shapes/{id}/eligibility [get]
func (h *PostcodeHandler) GetShapeEligibility(c *fiber.Ctx) error {
	result, err := h.finderUC.ShapeEligibility(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// GetEligibility godoc
// @Summary Classify a postcode
// @Description Membership in the WHV 417 regional, WHV 417 remote and 491 tables, the display category and the eligibility listing.
// @Tags Eligibility
// @Produce json
// @Param postcode path string true "Postcode"
// @Success 200 {object} utils.SuccessResponse{data=dto.EligibilityResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/eligibility/{postcode} [get]
func (h *PostcodeHandler) GetEligibility(c *fiber.Ctx) error {
	result, err := h.finderUC.Eligibility(c.Params("postcode"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// Search godoc
// @Summary Search a postcode or sample locality
// @Description Tries sample locations, then shape ids, then any four digit postcode.
// @Tags Search
// @Produce json
// @Param q query string true "Postcode, shape id or locality name"
// @Success 200 {object} utils.SuccessResponse{data=domain.SearchResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/search [get]
func (h *PostcodeHandler) Search(c *fiber.Ctx) error {
	start := time.Now()

	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	result, err := h.finderUC.Search(c.UserContext(), req.Query)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// GetRecentSearches godoc
// @Summary Recent successful searches
// @Tags Search
// @Produce json
// @Param limit query int false "Maximum entries" default(10)
// @Success 200 {object} utils.SuccessResponse{data=[]domain.RecentSearch}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/searches/recent [get]
func (h *PostcodeHandler) GetRecentSearches(c *fiber.Ctx) error {
	var req dto.RecentSearchesRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(validator.FieldErrors(err)))
	}

	entries, err := h.finderUC.RecentSearches(c.UserContext(), req.Limit)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, entries, &utils.Meta{
		Total: len(entries),
		Limit: req.Limit,
	})
}

// GetRules godoc
// @Summary Eligibility rule tables
// @Tags Eligibility
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]dto.RuleSetResponse}
// @Router /api/v1/rules [get]
func (h *PostcodeHandler) GetRules(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.finderUC.Rules(), nil)
}

// GetSamples godoc
// @Summary Sample locality markers
// @Tags Search
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]dto.SampleResponse}
// @Router /api/v1/samples [get]
func (h *PostcodeHandler) GetSamples(c *fiber.Ctx) error {
	samples := h.finderUC.Samples()
	return utils.SendSuccess(c, samples, &utils.Meta{Total: len(samples)})
}

// Locate godoc
// @Summary Postcode and eligibility at a position
// @Description Uses the shape containing the point, then reverse geocoding, then the default postcode.
// @Tags Eligibility
// @Accept json
// @Produce json
// @Param request body dto.LocateRequest true "Position"
// @Success 200 {object} utils.SuccessResponse{data=dto.LocateResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/locate [post]
func (h *PostcodeHandler) Locate(c *fiber.Ctx) error {
	var req dto.LocateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates.WithDetails(validator.FieldErrors(err)))
	}

	result, err := h.finderUC.Locate(c.UserContext(), *req.Latitude, *req.Longitude)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

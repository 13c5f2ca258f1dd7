package service

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	ctypes "github.com/lk2023060901/world-explorer/internal/country/types"
	"github.com/lk2023060901/world-explorer/internal/explorer/biz"
	apperrors "github.com/lk2023060901/world-explorer/internal/pkg/errors"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/lk2023060901/world-explorer/internal/pkg/response"
	"github.com/lk2023060901/world-explorer/internal/pkg/validator"
	"go.uber.org/zap"
)

// ExplorerService handles HTTP requests for country search and navigation
type ExplorerService struct {
	useCase *biz.ExplorerUseCase
	logger  *logger.Logger
}

// NewExplorerService creates a new explorer service
func NewExplorerService(useCase *biz.ExplorerUseCase, log *logger.Logger) *ExplorerService {
	if log == nil {
		log = logger.L()
	}
	return &ExplorerService{useCase: useCase, logger: log.Named("explorer-api")}
}

// RegisterRoutes registers explorer routes
func (s *ExplorerService) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/search", s.Search)

	countries := r.Group("/countries")
	{
		countries.GET("/:code", s.GetCountry)
		countries.GET("/:code/news", s.GetNews)
		countries.GET("/:code/neighbors", s.GetNeighbors)
	}
}

// Search resolves a free text query
// @Summary Search countries
// @Tags explorer
// @Produce json
// @Param q query string true "Country name, code or capital"
// @Success 200 {object} biz.SearchView
// @Router /api/v1/search [get]
func (s *ExplorerService) Search(c *gin.Context) {
	session := validator.SessionKey(c.GetHeader(validator.SessionHeader), c.ClientIP())
	ctx := logger.WithSessionID(c.Request.Context(), session)

	view, err := s.useCase.Search(ctx, session, c.Query("q"))
	if err != nil {
		s.fail(ctx, c, err)
		return
	}
	response.SuccessWithMessage(c, view.Message, view)
}

// GetCountry returns the full view of one country
// @Summary Get country
// @Tags explorer
// @Produce json
// @Param code path string true "Alpha-2 or alpha-3 code"
// @Success 200 {object} biz.CountryView
// @Router /api/v1/countries/{code} [get]
func (s *ExplorerService) GetCountry(c *gin.Context) {
	view, err := s.useCase.Country(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.fail(c.Request.Context(), c, err)
		return
	}
	response.Success(c, view)
}

// GetNews returns news about one country
// @Summary Get country news
// @Tags explorer
// @Produce json
// @Param code path string true "Alpha-2 or alpha-3 code"
// @Success 200 {object} biz.NewsView
// @Router /api/v1/countries/{code}/news [get]
func (s *ExplorerService) GetNews(c *gin.Context) {
	view, err := s.useCase.News(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.fail(c.Request.Context(), c, err)
		return
	}
	response.SuccessWithMessage(c, view.Message, view)
}

// GetNeighbors lists the bordering countries of one country
// @Summary Get neighbors
// @Tags explorer
// @Produce json
// @Param code path string true "Alpha-2 or alpha-3 code"
// @Success 200 {array} biz.Neighbor
// @Router /api/v1/countries/{code}/neighbors [get]
func (s *ExplorerService) GetNeighbors(c *gin.Context) {
	neighbors, err := s.useCase.Neighbors(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.fail(c.Request.Context(), c, err)
		return
	}
	response.Success(c, neighbors)
}

func (s *ExplorerService) fail(ctx context.Context, c *gin.Context, err error) {
	appErr := toAppError(err)
	if apperrors.IsServerError(appErr.Code) {
		s.logger.WithContext(ctx).Error("explorer request failed", zap.Int("code", appErr.Code), zap.Error(err))
	}
	response.HandleError(c, appErr)
}

// toAppError maps domain errors to business codes
func toAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ctypes.ErrEmptyQuery):
		return apperrors.Wrap(err, apperrors.ErrEmptyQuery)
	case errors.Is(err, ctypes.ErrSearchBusy):
		return apperrors.Wrap(err, apperrors.ErrSearchBusy)
	case errors.Is(err, ctypes.ErrSearchFailed):
		return apperrors.Wrap(err, apperrors.ErrSearchFailed)
	case errors.Is(err, ctypes.ErrNotFound):
		return apperrors.Wrap(err, apperrors.ErrCountryNotFound)
	case ctypes.IsCollaboratorError(err):
		return apperrors.Wrap(err, apperrors.ErrCountryLookupFailed)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrServiceUnavail)
	default:
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
}

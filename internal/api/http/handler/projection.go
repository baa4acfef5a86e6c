package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
)

type ProjectionService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.IdentityProjection, error)
	List(ctx context.Context, kind string, limit, offset int) ([]model.IdentityProjection, error)
	Search(ctx context.Context, query string, size int) ([]model.IdentityProjection, error)
}

type ProjectionHandler struct {
	BaseHandler

	log *zap.Logger
	svc ProjectionService
}

func NewProjectionHandler(log *zap.Logger, svc ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		svc:         svc,
	}
}

// GetIdentity
// @Summary Fetch one read-model row.
// @Tags ReadModel
// @Produce json
// @Param id path string true "Identity UUID"
// @Success 200 {object} ResponseWithData{data=model.IdentityProjection} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid path param"
// @Failure 404 {object} ResponseWithMessage "Projection not found"
// @Failure 500 {object} ResponseWithMessage "Failed to get projection"
// @Router /identities/{id} [get]
func (h *ProjectionHandler) GetIdentity(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	projection, err := h.svc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrProjectionDoesNotExist) {
			c.JSON(http.StatusNotFound, ResponseWithMessage{
				Status:  StatusErr,
				Message: err.Error(),
			})

			return
		}

		c.JSON(http.StatusInternalServerError, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   projection,
	})
}

// ListIdentities
// @Summary List read-model rows of one kind.
// @Tags ReadModel
// @Produce json
// @Param kind query string true "prospect | student | instructor"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} ResponseWithData{data=[]model.IdentityProjection} "Success"
// @Failure 400 {object} ResponseWithMessage "Unknown kind"
// @Failure 500 {object} ResponseWithMessage "Failed to list projections"
// @Router /identities [get]
func (h *ProjectionHandler) ListIdentities(c *gin.Context) {
	ctx := c.Request.Context()

	kind := c.Query("kind")

	switch kind {
	case model.KindProspect, model.KindStudent, model.KindInstructor:
	default:
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: "unknown kind",
		})

		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	projections, err := h.svc.List(ctx, kind, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   projections,
	})
}

// SearchIdentities
// @Summary Full-text search over the read model.
// @Tags ReadModel
// @Produce json
// @Param q query string true "Query string"
// @Param size query int false "Max results"
// @Success 200 {object} ResponseWithData{data=[]model.IdentityProjection} "Success"
// @Failure 400 {object} ResponseWithMessage "Missing query"
// @Failure 500 {object} ResponseWithMessage "Search failed"
// @Router /identities/search [get]
func (h *ProjectionHandler) SearchIdentities(c *gin.Context) {
	ctx := c.Request.Context()

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: "missing query",
		})

		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	results, err := h.svc.Search(ctx, query, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   results,
	})
}

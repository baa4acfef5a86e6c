package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
)

type ProspectService interface {
	Create(ctx context.Context, req model.ProspectCreateRequest) (*model.Prospect, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Prospect, error)
	Update(ctx context.Context, id uuid.UUID, req model.ProspectUpdateRequest) (*model.Prospect, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProspectHandler struct {
	BaseHandler

	log *zap.Logger
	svc ProspectService
}

func NewProspectHandler(log *zap.Logger, svc ProspectService) *ProspectHandler {
	return &ProspectHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		svc:         svc,
	}
}

// CreateProspect
// @Summary Register a new prospect.
// @Description Writes the prospect and its Created event in one transaction.
// @Tags Prospects
// @Accept json
// @Produce json
// @Param payload body model.ProspectCreateRequest true "Prospect payload"
// @Success 201 {object} ResponseWithData{data=model.Prospect} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body"
// @Failure 409 {object} ResponseWithMessage "Email already taken"
// @Failure 500 {object} ResponseWithMessage "Failed to create prospect"
// @Router /prospects [post]
func (h *ProspectHandler) CreateProspect(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.ProspectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	prospect, err := h.svc.Create(ctx, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyTaken) {
			c.JSON(http.StatusConflict, ResponseWithMessage{
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

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   prospect,
	})
}

// GetProspect
// @Summary Fetch one prospect.
// @Tags Prospects
// @Produce json
// @Param prospect_id path string true "Prospect UUID"
// @Success 200 {object} ResponseWithData{data=model.Prospect} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid path param"
// @Failure 404 {object} ResponseWithMessage "Prospect not found"
// @Failure 500 {object} ResponseWithMessage "Failed to get prospect"
// @Router /prospects/{prospect_id} [get]
func (h *ProspectHandler) GetProspect(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := h.bindID(c)
	if !ok {
		return
	}

	prospect, err := h.svc.GetByID(ctx, id)
	if err != nil {
		h.respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   prospect,
	})
}

// UpdateProspect
// @Summary Partially update a prospect.
// @Description Applies the non-nil fields and appends an Updated event in the same transaction.
// @Tags Prospects
// @Accept json
// @Produce json
// @Param prospect_id path string true "Prospect UUID"
// @Param payload body model.ProspectUpdateRequest true "Fields to change"
// @Success 200 {object} ResponseWithData{data=model.Prospect} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid input"
// @Failure 404 {object} ResponseWithMessage "Prospect not found"
// @Failure 409 {object} ResponseWithMessage "Email already taken"
// @Failure 500 {object} ResponseWithMessage "Failed to update prospect"
// @Router /prospects/{prospect_id} [patch]
func (h *ProspectHandler) UpdateProspect(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req model.ProspectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	prospect, err := h.svc.Update(ctx, id, req)
	if err != nil {
		h.respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   prospect,
	})
}

// DeleteProspect
// @Summary Delete a prospect.
// @Tags Prospects
// @Produce json
// @Param prospect_id path string true "Prospect UUID"
// @Success 200 {object} ResponseWithMessage "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid path param"
// @Failure 404 {object} ResponseWithMessage "Prospect not found"
// @Failure 500 {object} ResponseWithMessage "Failed to delete prospect"
// @Router /prospects/{prospect_id} [delete]
func (h *ProspectHandler) DeleteProspect(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		h.respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "prospect deleted",
	})
}

func (h *ProspectHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var uri model.ProspectIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return uuid.Nil, false
	}

	id, err := uuid.Parse(uri.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return uuid.Nil, false
	}

	return id, true
}

func (h *ProspectHandler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrProspectDoesNotExist):
		c.JSON(http.StatusNotFound, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})
	case errors.Is(err, apperrors.ErrEmailAlreadyTaken):
		c.JSON(http.StatusConflict, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})
	}
}

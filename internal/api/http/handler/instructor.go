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

type InstructorService interface {
	Create(ctx context.Context, req model.InstructorCreateRequest) (*model.Instructor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Instructor, error)
	Update(ctx context.Context, id uuid.UUID, req model.InstructorUpdateRequest) (*model.Instructor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type InstructorHandler struct {
	BaseHandler

	log *zap.Logger
	svc InstructorService
}

func NewInstructorHandler(log *zap.Logger, svc InstructorService) *InstructorHandler {
	return &InstructorHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		svc:         svc,
	}
}

// CreateInstructor
// @Summary Register a new instructor.
// @Description Writes the instructor and its Created event in one transaction.
// @Tags Instructors
// @Accept json
// @Produce json
// @Param payload body model.InstructorCreateRequest true "Instructor payload"
// @Success 201 {object} ResponseWithData{data=model.Instructor} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body"
// @Failure 409 {object} ResponseWithMessage "Email already taken"
// @Failure 500 {object} ResponseWithMessage "Failed to register instructor"
// @Router /instructors [post]
func (h *InstructorHandler) CreateInstructor(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.InstructorCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	instructor, err := h.svc.Create(ctx, req)
	if err != nil {
		h.respondErr(c, err)

		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   instructor,
	})
}

// GetInstructor
// @Summary Fetch one instructor.
// @Tags Instructors
// @Produce json
// @Param instructor_id path string true "Instructor UUID"
// @Success 200 {object} ResponseWithData{data=model.Instructor} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid path param"
// @Failure 404 {object} ResponseWithMessage "Instructor not found"
// @Failure 500 {object} ResponseWithMessage "Failed to get instructor"
// @Router /instructors/{instructor_id} [get]
func (h *InstructorHandler) GetInstructor(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := h.bindID(c)
	if !ok {
		return
	}

	instructor, err := h.svc.GetByID(ctx, id)
	if err != nil {
		h.respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   instructor,
	})
}

// UpdateInstructor
// @Summary Partially update an instructor.
// @Tags Instructors
// @Accept json
// @Produce json
// @Param instructor_id path string true "Instructor UUID"
// @Param payload body model.InstructorUpdateRequest true "Fields to change"
// @Success 200 {object} ResponseWithData{data=model.Instructor} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid input"
// @Failure 404 {object} ResponseWithMessage "Instructor not found"
// @Failure 409 {object} ResponseWithMessage "Email already taken"
// @Failure 500 {object} ResponseWithMessage "Failed to update instructor"
// @Router /instructors/{instructor_id} [patch]
func (h *InstructorHandler) UpdateInstructor(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req model.InstructorUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	instructor, err := h.svc.Update(ctx, id, req)
	if err != nil {
		h.respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   instructor,
	})
}

// DeleteInstructor
// @Summary Delete an instructor.
// @Tags Instructors
// @Produce json
// @Param instructor_id path string true "Instructor UUID"
// @Success 200 {object} ResponseWithMessage "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid path param"
// @Failure 404 {object} ResponseWithMessage "Instructor not found"
// @Failure 500 {object} ResponseWithMessage "Failed to delete instructor"
// @Router /instructors/{instructor_id} [delete]
func (h *InstructorHandler) DeleteInstructor(c *gin.Context) {
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
		Message: "instructor deleted",
	})
}

func (h *InstructorHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var uri model.InstructorIDPathParam
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

func (h *InstructorHandler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInstructorDoesNotExist):
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

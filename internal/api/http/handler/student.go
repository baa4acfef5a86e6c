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

type StudentService interface {
	Create(ctx context.Context, req model.StudentCreateRequest) (*model.Student, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	Update(ctx context.Context, id uuid.UUID, req model.StudentUpdateRequest) (*model.Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type StudentHandler struct {
	BaseHandler

	log *zap.Logger
	svc StudentService
}

func NewStudentHandler(log *zap.Logger, svc StudentService) *StudentHandler {
	return &StudentHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		svc:         svc,
	}
}

// CreateStudent
// @Summary Enroll a new student.
// @Description Writes the student and its Created event in one transaction.
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body model.StudentCreateRequest true "Student payload"
// @Success 201 {object} ResponseWithData{data=model.Student} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body"
// @Failure 409 {object} ResponseWithMessage "Email already taken"
// @Failure 500 {object} ResponseWithMessage "Failed to enroll student"
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.StudentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	student, err := h.svc.Create(ctx, req)
	if err != nil {
		h.respondErr(c, err)

		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   student,
	})
}

// GetStudent
// @Summary Fetch one student.
// @Tags Students
// @Produce json
// @Param student_id path string true "Student UUID"
// @Success 200 {object} ResponseWithData{data=model.Student} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid path param"
// @Failure 404 {object} ResponseWithMessage "Student not found"
// @Failure 500 {object} ResponseWithMessage "Failed to get student"
// @Router /students/{student_id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := h.bindID(c)
	if !ok {
		return
	}

	student, err := h.svc.GetByID(ctx, id)
	if err != nil {
		h.respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   student,
	})
}

// UpdateStudent
// @Summary Partially update a student.
// @Tags Students
// @Accept json
// @Produce json
// @Param student_id path string true "Student UUID"
// @Param payload body model.StudentUpdateRequest true "Fields to change"
// @Success 200 {object} ResponseWithData{data=model.Student} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid input"
// @Failure 404 {object} ResponseWithMessage "Student not found"
// @Failure 409 {object} ResponseWithMessage "Email already taken"
// @Failure 500 {object} ResponseWithMessage "Failed to update student"
// @Router /students/{student_id} [patch]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req model.StudentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	student, err := h.svc.Update(ctx, id, req)
	if err != nil {
		h.respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   student,
	})
}

// DeleteStudent
// @Summary Delete a student.
// @Tags Students
// @Produce json
// @Param student_id path string true "Student UUID"
// @Success 200 {object} ResponseWithMessage "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid path param"
// @Failure 404 {object} ResponseWithMessage "Student not found"
// @Failure 500 {object} ResponseWithMessage "Failed to delete student"
// @Router /students/{student_id} [delete]
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
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
		Message: "student deleted",
	})
}

func (h *StudentHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var uri model.StudentIDPathParam
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

func (h *StudentHandler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrStudentDoesNotExist):
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

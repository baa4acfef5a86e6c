package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
)

const (
	StatusErr          = "error"
	StatusSuccess      = "success"
	StatusNotAvailable = "not available"
	StatusNotPermitted = "not permitted"
	StatusOK           = "ok"
)

type BaseHandler struct{}

func (h *BaseHandler) GetUserEmail(c *gin.Context) (string, error) {
	emailValue, exists := c.Get(model.UserEmailKey)
	if !exists {
		return "", apperrors.ErrContextValueDoesNotExist
	}

	email, ok := emailValue.(string)
	if !ok {
		return "", apperrors.ErrContextValueInvalidType
	}

	return email, nil
}

// ResponseWithData
// @Description Generic success/error response carrying arbitrary data.
type ResponseWithData struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
} // @Name _ResponseWithData

// ResponseWithMessage
// @Description Generic response carrying only a human-readable message.
type ResponseWithMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
} // @Name _ResponseWithMessage

func NoMethod(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "method not allowed on this endpoint",
	})
}

func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "page not found",
	})
}

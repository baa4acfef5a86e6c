package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthService interface {
	IsOK(ctx context.Context) (bool, error)
	Backlog(ctx context.Context) (int64, error)
}

// ClientCounter reports how many live stream clients are connected.
type ClientCounter interface {
	Count() int
}

type HealthHandler struct {
	BaseHandler

	log     *zap.Logger
	svc     HealthService
	clients ClientCounter
}

func NewHealthHandler(log *zap.Logger, svc HealthService, clients ClientCounter) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		svc:         svc,
		clients:     clients,
	}
}

// Ping
// @Summary Service liveness probe.
// @Description Returns "pong".
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseWithMessage "Success"
// @Router /health/ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "pong",
	})
}

// Health
// @Summary Service readiness probe.
// @Description Pings the database and reports the unpublished outbox backlog and connected stream clients.
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseWithData "Success"
// @Failure 500 {object} ResponseWithMessage "Database unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	if _, err := h.svc.IsOK(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	backlog, err := h.svc.Backlog(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data: gin.H{
			"status":         StatusOK,
			"outbox_backlog": backlog,
			"stream_clients": h.clients.Count(),
		},
	})
}

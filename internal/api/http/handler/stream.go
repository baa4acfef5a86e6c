package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/hub"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type StreamHandler struct {
	BaseHandler

	log *zap.Logger
	hub *hub.Hub
}

func NewStreamHandler(log *zap.Logger, h *hub.Hub) *StreamHandler {
	return &StreamHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		hub:         h,
	}
}

// Stream
// @Summary Live event stream over WebSocket.
// @Description Upgrades the connection and pushes committed events matching the client's subscription set.
// @Tags Stream
// @Param token query string false "Access token when stream auth is enabled"
// @Router /stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	identity := "anonymous"
	if email, err := h.GetUserEmail(c); err == nil {
		identity = email
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))

		return
	}

	client, err := h.hub.Register(conn, identity)
	if err != nil {
		code := websocket.CloseInternalServerErr
		if errors.Is(err, apperrors.ErrHubFull) {
			code = websocket.ClosePolicyViolation
		}

		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, err.Error()), deadline)
		_ = conn.Close()

		return
	}

	client.Run(c.Request.Context())
}

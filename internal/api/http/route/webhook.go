package route

import (
	"github.com/gin-gonic/gin"
)

type WebhookHandler interface {
	Receive(c *gin.Context)
	Preflight(c *gin.Context)
}

func RegisterWebhookRoutes(g *gin.RouterGroup, h WebhookHandler) {
	g.POST("", h.Receive)
	g.OPTIONS("", h.Preflight)
}

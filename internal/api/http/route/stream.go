package route

import (
	"github.com/gin-gonic/gin"
)

type StreamHandler interface {
	Stream(c *gin.Context)
}

func RegisterStreamRoutes(g *gin.RouterGroup, h StreamHandler) {
	g.GET("", h.Stream)
}

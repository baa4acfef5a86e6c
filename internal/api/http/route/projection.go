package route

import (
	"github.com/gin-gonic/gin"
)

type ProjectionHandler interface {
	GetIdentity(c *gin.Context)
	ListIdentities(c *gin.Context)
	SearchIdentities(c *gin.Context)
}

func RegisterProjectionRoutes(g *gin.RouterGroup, h ProjectionHandler) {
	g.GET("", h.ListIdentities)
	g.GET("/search", h.SearchIdentities)
	g.GET("/:id", h.GetIdentity)
}

package route

import (
	"github.com/gin-gonic/gin"
)

type ProspectHandler interface {
	CreateProspect(c *gin.Context)
	GetProspect(c *gin.Context)
	UpdateProspect(c *gin.Context)
	DeleteProspect(c *gin.Context)
}

func RegisterProspectRoutes(g *gin.RouterGroup, h ProspectHandler) {
	g.POST("", h.CreateProspect)
	g.GET("/:prospect_id", h.GetProspect)
	g.PATCH("/:prospect_id", h.UpdateProspect)
	g.DELETE("/:prospect_id", h.DeleteProspect)
}

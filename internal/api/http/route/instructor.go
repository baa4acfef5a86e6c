package route

import (
	"github.com/gin-gonic/gin"
)

type InstructorHandler interface {
	CreateInstructor(c *gin.Context)
	GetInstructor(c *gin.Context)
	UpdateInstructor(c *gin.Context)
	DeleteInstructor(c *gin.Context)
}

func RegisterInstructorRoutes(g *gin.RouterGroup, h InstructorHandler) {
	g.POST("", h.CreateInstructor)
	g.GET("/:instructor_id", h.GetInstructor)
	g.PATCH("/:instructor_id", h.UpdateInstructor)
	g.DELETE("/:instructor_id", h.DeleteInstructor)
}

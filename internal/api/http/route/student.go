package route

import (
	"github.com/gin-gonic/gin"
)

type StudentHandler interface {
	CreateStudent(c *gin.Context)
	GetStudent(c *gin.Context)
	UpdateStudent(c *gin.Context)
	DeleteStudent(c *gin.Context)
}

func RegisterStudentRoutes(g *gin.RouterGroup, h StudentHandler) {
	g.POST("", h.CreateStudent)
	g.GET("/:student_id", h.GetStudent)
	g.PATCH("/:student_id", h.UpdateStudent)
	g.DELETE("/:student_id", h.DeleteStudent)
}

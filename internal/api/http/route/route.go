package route

import (
	"crypto/ecdsa"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admissions-back/internal/api/http/handler"
	"admissions-back/internal/api/http/middleware"
	"admissions-back/internal/config"
)

func SetupRouter(
	log *zap.Logger,
	cfg *config.Config,
	publicKey *ecdsa.PublicKey,
	healthHdl HealthHandler,
	prospectHdl ProspectHandler,
	studentHdl StudentHandler,
	instructorHdl InstructorHandler,
	projectionHdl ProjectionHandler,
	webhookHdl WebhookHandler,
	streamHdl StreamHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	router := gin.Default()

	// middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.HTTPServer.CORS))

	requestTimeoutMiddleware := middleware.RequestTimeout(cfg.HTTPServer.Timeout.Request)
	webhookKeyMiddleware := middleware.WebhookKey(cfg.Webhook.Key)

	var jwtAuthMiddleware gin.HandlerFunc
	if publicKey != nil {
		jwtAuthMiddleware = middleware.JWTAuth(publicKey)
	}

	router.HandleMethodNotAllowed = true
	router.NoMethod(handler.NoMethod)
	router.NoRoute(handler.NoRoute)

	basePath := router.Group(cfg.HTTPServer.BasePath)

	docsPath := basePath.Group("/docs")
	RegisterDock(docsPath)

	healthPath := basePath.Group("/health", requestTimeoutMiddleware)
	RegisterHealth(healthPath, healthHdl)

	apiMiddleware := []gin.HandlerFunc{requestTimeoutMiddleware}
	if cfg.HTTPServer.JWT.RequireAPIAuth && jwtAuthMiddleware != nil {
		apiMiddleware = append(apiMiddleware, jwtAuthMiddleware)
	}

	prospectPath := basePath.Group("/prospects", apiMiddleware...)
	RegisterProspectRoutes(prospectPath, prospectHdl)

	studentPath := basePath.Group("/students", apiMiddleware...)
	RegisterStudentRoutes(studentPath, studentHdl)

	instructorPath := basePath.Group("/instructors", apiMiddleware...)
	RegisterInstructorRoutes(instructorPath, instructorHdl)

	identityPath := basePath.Group("/identities", apiMiddleware...)
	RegisterProjectionRoutes(identityPath, projectionHdl)

	webhookPath := basePath.Group("/events", requestTimeoutMiddleware, webhookKeyMiddleware)
	RegisterWebhookRoutes(webhookPath, webhookHdl)

	// no request timeout here: the stream stays open for the connection's
	// lifetime
	streamPath := basePath.Group("/stream")
	if cfg.HTTPServer.JWT.RequireStreamAuth && jwtAuthMiddleware != nil {
		streamPath.Use(jwtAuthMiddleware)
	}
	RegisterStreamRoutes(streamPath, streamHdl)

	return router
}

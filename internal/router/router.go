package router

import (
	"github.com/gin-gonic/gin"

	"ocrsvc/internal/config"
	"ocrsvc/internal/handler"
	"ocrsvc/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authCfg *config.AuthConfig,
	ocrH *handler.OCRHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	auth := middleware.BearerAuth(authCfg)

	// Serverless host compatibility
	r.POST("/runsync", auth, ocrH.RunSync)

	v1 := r.Group("/api/v1")
	v1.Use(auth)
	v1.POST("/ocr", ocrH.Process)
	v1.GET("/engine", healthH.EngineInfo)

	return r
}

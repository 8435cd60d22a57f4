package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/autoposter/internal/api/handler"
	"github.com/timmy/autoposter/internal/api/middleware"
	"github.com/timmy/autoposter/internal/config"
	"github.com/timmy/autoposter/internal/repository"
	"github.com/timmy/autoposter/internal/service"
)

// SetupRouter configures the Gin router with all routes.
// Parameters:
//   - runner: run controller behind the trigger endpoint.
//   - archive: archive repository behind the posts endpoints.
//   - serverCfg: mode and CORS settings.
// Returns:
//   - *gin.Engine: configured router.
//   - *handler.RunHandler: run handler, shared with the daily trigger.
func SetupRouter(
	runner *service.Runner,
	archive *repository.ArchiveRepository,
	serverCfg config.ServerConfig,
) (*gin.Engine, *handler.RunHandler) {
	// Set Gin mode
	switch serverCfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  serverCfg.CORS.AllowedOrigins,
		AllowAllOrigins: serverCfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	runHandler := handler.NewRunHandler(runner)
	postsHandler := handler.NewPostsHandler(archive)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Run control
		v1.POST("/runs", runHandler.Trigger)
		v1.GET("/runs/status", runHandler.Status)

		// Post archive
		v1.GET("/posts", postsHandler.List)
		v1.GET("/posts/stats", postsHandler.Stats)
	}

	return r, runHandler
}

package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/modelconfig/internal/api/handlers"
	"github.com/nebari-dev/modelconfig/internal/api/middleware"
	"github.com/nebari-dev/modelconfig/internal/auth"
	"github.com/nebari-dev/modelconfig/internal/config"
	"github.com/nebari-dev/modelconfig/internal/models"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter creates and configures the Gin router
func NewRouter[T any, PT models.Record[T]](cfg *config.Config, authenticator *auth.Authenticator, configurations *handlers.ConfigurationHandler[T, PT]) *gin.Engine {
	// Set Gin mode
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(slog.Default()))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	base := "/" + cfg.Configuration.RoutePrefix

	// Public routes
	public := router.Group(base)
	{
		public.GET("/health", handlers.HealthCheck)
		public.GET("/version", handlers.GetVersion)
		public.POST("/auth/login", handlers.Login(authenticator))
	}

	// Protected routes (require authentication)
	if cfg.Configuration.RegisterRoutes {
		protected := router.Group(base)
		protected.Use(authenticator.Middleware())
		RegisterConfigurationRoutes(protected, configurations)
	}

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slog.Info("API router initialized",
		"mode", cfg.Server.Mode,
		"prefix", base,
		"configuration_routes", cfg.Configuration.RegisterRoutes,
	)
	return router
}

// RegisterConfigurationRoutes mounts the configuration endpoints on rg. The
// group must already authenticate its requests.
func RegisterConfigurationRoutes[T any, PT models.Record[T]](rg *gin.RouterGroup, h *handlers.ConfigurationHandler[T, PT]) {
	rg.GET("/configurations", h.Index)
	rg.POST("/configurations", h.Store)
	rg.GET("/configurations/:key", h.Show)
	rg.PUT("/configurations/:key", h.Update)
	rg.DELETE("/configurations/:key", h.Destroy)
}

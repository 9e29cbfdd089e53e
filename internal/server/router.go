package server

import (
	"github.com/abduss/mediavault/internal/auth"
	"github.com/abduss/mediavault/internal/config"
	"github.com/abduss/mediavault/internal/journal"
	"github.com/abduss/mediavault/internal/logger"
	"github.com/abduss/mediavault/internal/media"
	"github.com/abduss/mediavault/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies groups the services required by the HTTP router. DB and
// Journal are optional.
type Dependencies struct {
	Config      config.Config
	DB          *pgxpool.Pool
	Media       *media.Service
	AuthService *auth.Service
	Journal     journal.Recorder
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	metrics.InitMetrics()

	router := gin.New()
	router.MaxMultipartMemory = deps.Config.Upload.MaxMultipartMemory
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())
	router.Use(corsMiddleware(deps.Config.CORS.AllowedOrigins))

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	authService := deps.AuthService
	if authService == nil {
		authService = auth.NewService(deps.Config.Auth)
	}
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(authService))

	media.RegisterRoutes(router, protected, deps.Media, media.RouteOptions{
		Journal:  deps.Journal,
		MaxFiles: deps.Config.Upload.MaxFiles,
	})

	return router
}

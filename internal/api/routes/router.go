package routes

import (
	"time"

	"github.com/RangerDjanger/BetterDay/internal/api/middleware"
	"github.com/RangerDjanger/BetterDay/pkg/config"
	"github.com/RangerDjanger/BetterDay/pkg/logger"
	"github.com/RangerDjanger/BetterDay/pkg/security/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the middleware every route shares.
func NewRouter(cfg *config.Config, log *logger.Logger) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.NewMetricsMiddleware().CollectMetrics())
	router.Use(cors.New(corsConfig(cfg.CORS)))

	return router
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods: c.AllowedMethods,
		AllowHeaders: append([]string{
			"Accept-Encoding",
			"Authorization",
			"Content-Type",
			middleware.RequestIDHeader,
			auth.ClientPrincipalHeader,
		}, c.AllowedHeaders...),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Encoding",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			middleware.RequestIDHeader,
		},
		AllowCredentials: c.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 || (len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cc
}

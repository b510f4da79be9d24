package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/circleed-client/api/swagger"
	"github.com/noah-isme/circleed-client/internal/middleware"
	"github.com/noah-isme/circleed-client/internal/service"
	"github.com/noah-isme/circleed-client/pkg/config"
	"github.com/noah-isme/circleed-client/pkg/logger"
	corsmiddleware "github.com/noah-isme/circleed-client/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/circleed-client/pkg/middleware/requestid"
)

// NewRouter builds the status API served by the watcher.
func NewRouter(cfg *config.Config, logr *zap.Logger, status *StatusHandler, metrics *service.MetricsService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", status.Health)
	r.GET("/ready", status.Ready)
	r.GET("/state/:view", status.View)
	r.GET("/metrics", status.Prometheus)
	r.GET("/metrics/snapshot", status.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}

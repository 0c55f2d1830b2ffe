package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/university-admin-api/api/swagger"
	"github.com/noah-isme/university-admin-api/internal/handler"
	"github.com/noah-isme/university-admin-api/internal/middleware"
	"github.com/noah-isme/university-admin-api/internal/service"
	"github.com/noah-isme/university-admin-api/pkg/config"
	"github.com/noah-isme/university-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/university-admin-api/pkg/middleware/cors"
	localemiddleware "github.com/noah-isme/university-admin-api/pkg/middleware/locale"
	reqidmiddleware "github.com/noah-isme/university-admin-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, handlers handler.Handlers, metrics *service.MetricsService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(localemiddleware.Middleware())
	r.Use(middleware.Metrics(metrics))

	handler.Register(r.Group(cfg.APIPrefix), handlers)
	if cfg.APIPrefix != "" {
		r.GET("/health", handlers.Metrics.Health)
	}

	if cfg.Metrics.Enabled {
		r.GET("/metrics", handlers.Metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/university-admin-api/internal/handler"
	"github.com/noah-isme/university-admin-api/internal/repository"
	"github.com/noah-isme/university-admin-api/internal/service"
	"github.com/noah-isme/university-admin-api/pkg/cache"
	"github.com/noah-isme/university-admin-api/pkg/config"
	"github.com/noah-isme/university-admin-api/pkg/database"
	"github.com/noah-isme/university-admin-api/pkg/logger"
)

// @title University Admin API
// @version 1.0.0
// @description Students, courses and enrollments administration
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, view cache disabled", zap.Error(err))
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, cache.KeyPrefix(cfg.Redis), logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)

	handlers := buildHandlers(db, cacheSvc, metrics, logr)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      newRouter(cfg, logr, handlers, metrics),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("prefix", cfg.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.HTTP.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildHandlers(db *sqlx.DB, cacheSvc *service.CacheService, metrics *service.MetricsService, logr *zap.Logger) handler.Handlers {
	students := repository.NewStudentRepository(db)
	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)

	validate := service.NewValidator()
	queries := service.NewQueryService(students, courses, enrollments, cacheSvc, logr)
	exports := service.NewExportService(queries, logr, nil, nil)

	return handler.Handlers{
		Students:    handler.NewStudentHandler(service.NewStudentService(students, cacheSvc, metrics, validate, logr), queries),
		Courses:     handler.NewCourseHandler(service.NewCourseService(courses, cacheSvc, metrics, validate, logr), queries),
		Enrollments: handler.NewEnrollmentHandler(service.NewEnrollmentService(enrollments, students, courses, cacheSvc, metrics, logr), queries, exports),
		Metrics:     handler.NewMetricsHandler(metrics),
	}
}

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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/class-routine-api/api/swagger"
	"github.com/noah-isme/class-routine-api/internal/handler"
	internalmiddleware "github.com/noah-isme/class-routine-api/internal/middleware"
	"github.com/noah-isme/class-routine-api/internal/models"
	"github.com/noah-isme/class-routine-api/internal/repository"
	"github.com/noah-isme/class-routine-api/internal/service"
	"github.com/noah-isme/class-routine-api/pkg/cache"
	"github.com/noah-isme/class-routine-api/pkg/config"
	"github.com/noah-isme/class-routine-api/pkg/database"
	"github.com/noah-isme/class-routine-api/pkg/export"
	"github.com/noah-isme/class-routine-api/pkg/jobs"
	"github.com/noah-isme/class-routine-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/class-routine-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/class-routine-api/pkg/middleware/requestid"
)

// @title Class Routine API
// @version 1.0.0
// @description Weekly class routine generation for academic years
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database, database.MigrateUp); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(ctx, cfg.Redis, logr)
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewCourseAssignmentRepository(db)
	preferenceRepo := repository.NewTeacherPreferenceRepository(db)
	entryRepo := repository.NewScheduleEntryRepository(db)
	sessionRepo := repository.NewRoutineSessionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.GridCacheTTL, logr, cacheRepo.Enabled())
	routineSvc := service.NewRoutineGeneratorService(service.RoutineGeneratorParams{
		Assignments: assignmentRepo,
		Teachers:    teacherRepo,
		Courses:     courseRepo,
		Preferences: preferenceRepo,
		Entries:     entryRepo,
		Sessions:    sessionRepo,
		Tx:          db,
		Locker:      cache.NewLocker(redisClient, "routine"),
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		PDF:         export.NewPDFExporter(),
		Validator:   validate,
		Logger:      logr,
		Config: service.RoutineGeneratorConfig{
			MaxAttempts:   cfg.Scheduler.MaxAttempts,
			DailyLimit:    cfg.Scheduler.DailyLimit,
			Transactional: cfg.Scheduler.Transactional,
			RunTimeout:    cfg.Scheduler.RunTimeout,
			LockTTL:       cfg.Scheduler.LockTTL,
			GridCacheTTL:  cfg.Scheduler.GridCacheTTL,
		},
	})
	preferenceSvc := service.NewTeacherPreferenceService(teacherRepo, preferenceRepo, validate, logr)

	routineQueue := jobs.NewQueue("routine", routineSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Scheduler.AsyncWorkers,
		BufferSize: 8,
		MaxRetries: -1,
		Logger:     logr,
	})
	routineQueue.Start(ctx)
	defer routineQueue.Stop()
	routineSvc.SetQueue(routineQueue)

	reaper := service.NewRoutineSessionReaper(sessionRepo, cfg.Scheduler.ReaperCron, cfg.Scheduler.LockTTL, logr)
	if err := reaper.Start(); err != nil {
		logr.Fatal("failed to start session reaper", zap.Error(err))
	}
	defer reaper.Stop()

	routineHandler := handler.NewRoutineHandler(routineSvc)
	preferenceHandler := handler.NewTeacherPreferenceHandler(preferenceSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(db, redisClient))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(cfg.JWT.Secret))

	admin := internalmiddleware.RequireRoles(models.RoleAdmin)
	generateLimit := internalmiddleware.RateLimit(cfg.Scheduler.GenerateRate, cfg.Scheduler.GenerateBurst)

	routines := api.Group("/routines")
	{
		routines.POST("/generate", admin, generateLimit, routineHandler.Generate)
		routines.POST("/generate/async", admin, generateLimit, routineHandler.GenerateAsync)
		routines.GET("/sessions/:id", admin, routineHandler.Session)
		routines.GET("/:year", routineHandler.Grid)
		routines.GET("/:year/export", routineHandler.Export)
		routines.GET("/:year/sessions", admin, routineHandler.Sessions)
	}

	preferences := api.Group("/teachers/:id/preferences")
	preferences.Use(internalmiddleware.RBAC(string(models.RoleAdmin), internalmiddleware.SelfAccess))
	{
		preferences.GET("", preferenceHandler.List)
		preferences.PUT("", preferenceHandler.Replace)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, logr *zap.Logger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	client, err := cache.NewRedis(ctx, cfg)
	if err != nil {
		logr.Warn("redis unavailable, running without cache and with process-local locks", zap.Error(err))
		return nil
	}
	return client
}

func readinessChecks(db *sqlx.DB, client *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

// @title SMA Timetable API
// @version 1.0.0
// @description Timetable drafts, constraint checking and teacher replacement.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if _, err := database.Migrate(db.DB, logr); err != nil {
			return err
		}
	}

	cacheRepo := repository.NewCacheRepository(nil, "timetable:", logr)
	if cfg.Catalog.CacheEnabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, "timetable:", logr)
	}
	defer cacheRepo.Close() //nolint:errcheck

	defaults, err := cfg.Timetable.DraftDefaults()
	if err != nil {
		return err
	}
	location, err := time.LoadLocation(cfg.Export.Timezone)
	if err != nil {
		return fmt.Errorf("EXPORT_TIMEZONE: %w", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	draftRepo := repository.NewDraftRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	catalogCfg := service.CatalogConfig{CacheEnabled: cfg.Catalog.CacheEnabled, CacheTTL: cfg.Catalog.CacheTTL}
	catalogSvc := service.NewCatalogService(catalogRepo, cacheRepo, metricsSvc, catalogCfg, logr)

	draftSvc := service.NewDraftService(draftRepo, lessonRepo, rosterRepo, catalogSvc, db, metricsSvc, validate, logr, service.DraftServiceConfig{
		Defaults:      defaults,
		SessionTTL:    cfg.Timetable.SessionTTL,
		MaxViolations: cfg.Timetable.MaxViolations,
		LockTimeout:   cfg.Timetable.LockTimeout,
	})

	var advisor timetable.Advisor
	if cfg.Advisor.Enabled {
		openAI, err := service.NewOpenAIAdvisor(service.AdvisorConfig{
			APIKey:       cfg.Advisor.APIKey,
			Model:        cfg.Advisor.Model,
			BaseURL:      cfg.Advisor.BaseURL,
			Timeout:      cfg.Advisor.Timeout,
			MaxProposals: cfg.Advisor.MaxProposals,
		}, logr)
		if err != nil {
			return err
		}
		advisor = openAI
	}
	replacementSvc := service.NewReplacementService(catalogSvc, lessonRepo, draftSvc, advisor, defaults, metricsSvc, validate, logr)
	exportSvc := service.NewExportService(draftSvc, lessonRepo, catalogSvc, service.ExportConfig{
		CalendarWeeks: cfg.Export.CalendarWeeks,
		Location:      location,
	}, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.Expiration,
	})

	checks := map[string]handler.Pinger{"postgres": db.PingContext, "redis": cacheRepo.Ping}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/health", "/ready", "/metrics"))

	registerRoutes(r, cfg, routeHandlers{
		drafts:       handler.NewDraftHandler(draftSvc),
		lessons:      handler.NewLessonHandler(draftSvc),
		replacements: handler.NewReplacementHandler(replacementSvc),
		exports:      handler.NewExportHandler(exportSvc),
		catalog:      handler.NewCatalogHandler(catalogSvc, draftSvc),
		metrics:      handler.NewMetricsHandler(metricsSvc, checks),
	}, tokenSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
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

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type routeHandlers struct {
	drafts       *handler.DraftHandler
	lessons      *handler.LessonHandler
	replacements *handler.ReplacementHandler
	exports      *handler.ExportHandler
	catalog      *handler.CatalogHandler
	metrics      *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h routeHandlers, tokens middleware.TokenValidator) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	planners := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	api := r.Group(cfg.APIPrefix, middleware.JWT(tokens))

	api.GET("/catalog", h.catalog.Get)
	api.POST("/catalog/refresh", admins, h.catalog.Refresh)
	api.GET("/metrics/summary", admins, h.metrics.Summary)

	api.GET("/timetable/live", h.lessons.Live)
	api.GET("/timetable/live/export", h.exports.Live)
	api.POST("/replacements", admins, h.replacements.Find)

	drafts := api.Group("/drafts", planners)
	drafts.GET("", h.drafts.List)
	drafts.POST("", h.drafts.Create)
	drafts.POST("/clone", h.drafts.Clone)
	drafts.GET("/:id", h.drafts.Get)
	drafts.DELETE("/:id", h.drafts.Delete)
	drafts.POST("/:id/activate", h.drafts.Activate)
	drafts.POST("/:id/validate", h.drafts.Validate)
	drafts.POST("/:id/commit", admins, h.drafts.Commit)
	drafts.GET("/:id/availability", h.drafts.Availability)
	drafts.GET("/:id/export", h.exports.Draft)

	drafts.GET("/:id/lessons", h.lessons.List)
	drafts.POST("/:id/lessons", h.lessons.Add)
	drafts.PUT("/:id/lessons", h.lessons.Replace)
	drafts.PATCH("/:id/lessons/:lessonId/move", h.lessons.Move)
	drafts.PATCH("/:id/lessons/:lessonId/room", h.lessons.ReassignRoom)
	drafts.DELETE("/:id/lessons/:lessonId", h.lessons.Remove)
}

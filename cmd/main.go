package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"companymcp/docs"
	"companymcp/internal/broker"
	"companymcp/internal/caching"
	"companymcp/internal/common"
	"companymcp/internal/config"
	"companymcp/internal/handlers"
	"companymcp/internal/inference"
	"companymcp/internal/jobs/background"
	"companymcp/internal/logger"
	"companymcp/internal/metrics"
	"companymcp/internal/middleware"
	"companymcp/internal/repositories"
	"companymcp/internal/services"
	"companymcp/internal/tools"
	"companymcp/pkg/database"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

const serviceName = "companymcp"

//	@title			Company MCP API
//	@version		1.0
//	@description	Company-scoped AI assistant broker.
//	@BasePath		/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		// logger is not configured yet
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.GetLogger()
	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("starting server", cfg.LogFields()...)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheSvc.Close()

	// object storage only backs the archive job and is not required to serve
	var minioSvc services.MinioService
	if svc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL); err != nil {
		log.Warn("object storage disabled", zap.Error(err))
	} else {
		minioSvc = svc
		if err := minioSvc.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
			log.Warn("archive bucket unavailable", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	aiConfigRepo := repositories.NewAIConfigRepo(pool)
	interactionRepo := repositories.NewInteractionRepo(pool)
	tenantDataRepo := repositories.NewTenantDataRepo(pool)

	// Services
	tenantSvc := services.NewTenantService(tenantRepo, userRepo)
	aiConfigSvc := services.NewAIConfigService(aiConfigRepo, cacheSvc, cfg.Cache.AIConfigTTL, services.ConfigBounds{
		MinContextLength: cfg.Limits.MinContextLength,
		MaxContextLength: cfg.Limits.MaxContextLength,
		MaxInstructions:  cfg.Limits.MaxInstructions,
		KnownTools:       tools.Names(),
	}, m)
	var archiveSvc services.ArchiveService
	if minioSvc != nil {
		archiveSvc = services.NewArchiveService(minioSvc, interactionRepo, cfg.Minio.Bucket, m)
	}

	resolver, err := inference.NewResolver(cfg.Inference.Candidates, cfg.Inference.HealthPath, cfg.Inference.ProbeTimeout)
	if err != nil {
		return err
	}
	client := inference.NewClient(cfg.Inference.RequestTimeout)

	validator := common.NewRequestValidator()
	toolRegistry := tools.NewRegistry(tenantDataRepo, validator.Engine())

	mcpBroker := broker.New(broker.Dependencies{
		Tenants:          tenantSvc,
		Configs:          aiConfigSvc,
		Resolver:         resolver,
		Client:           client,
		Interactions:     interactionRepo,
		Metrics:          m,
		MaxMessageLength: cfg.Limits.MaxMessageLength,
	})

	// Middleware
	auth, err := middleware.NewAuth(cfg.Auth, tenantSvc)
	if err != nil {
		return err
	}
	defer auth.Close()
	access := middleware.NewCompanyAccess(tenantSvc)

	// Handlers
	mcpHandlers := handlers.NewMCPHandlers(mcpBroker, aiConfigSvc, interactionRepo, toolRegistry,
		cfg.Limits, cfg.Server.Version, cfg.Inference.DefaultModel)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, minioSvc, cfg.Minio.Bucket,
		resolver, client, cfg.Inference.HealthOfflineStatus, cfg.Server.Version)

	scheduler, err := background.NewJobScheduler(cfg.Jobs, resolver, tenantSvc, archiveSvc, m)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Warn("scheduler shutdown failed", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator

	e.Use(logger.Middleware())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(m.Middleware())

	versionMiddleware := middleware.NewVersionMiddleware(cfg.Server.Version)
	e.Use(versionMiddleware.APIVersionResolver())

	// Health and operational endpoints (no auth required)
	e.GET("/health", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	docs.SwaggerInfo.Version = cfg.Server.Version
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := versionMiddleware.VersionRoute(e, "v1")
	v1.GET("/health/ollama", healthHandlers.InferenceHealth)

	mcp := v1.Group("/mcp", auth.JWT(), auth.LoadUser(), access.EnsureCompanyAccess())
	mcp.GET("/status", mcpHandlers.Status)
	mcp.GET("/settings", mcpHandlers.GetSettings)
	mcp.POST("/settings", mcpHandlers.UpdateSettings, access.RequireAdmin())
	mcp.GET("/interactions", mcpHandlers.ListInteractions)
	mcp.GET("/tools", mcpHandlers.ListTools)
	mcp.POST("/tools/:name", mcpHandlers.ExecuteTool)
	mcp.POST("/chat", mcpHandlers.Chat,
		middleware.RateLimit(cacheSvc, "mcp_chat", cfg.Limits.RateLimitPerMinute, time.Minute, m))

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Server.Port), zap.String("version", cfg.Server.Version))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"companymcp/internal/caching"
	"companymcp/internal/inference"
	"companymcp/internal/logger"
	"companymcp/internal/services"
	"companymcp/pkg/database"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"

	checkTimeout = 5 * time.Second
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db            database.Pinger
	cache         caching.CacheService
	storage       services.MinioService
	bucket        string
	resolver      inference.Resolver
	client        inference.Client
	offlineStatus int
	version       string
}

// NewHealthHandlers creates a new health handlers instance. cache and
// storage may be nil.
func NewHealthHandlers(
	db database.Pinger,
	cache caching.CacheService,
	storage services.MinioService,
	bucket string,
	resolver inference.Resolver,
	client inference.Client,
	offlineStatus int,
	version string,
) *HealthHandlers {
	if offlineStatus == 0 {
		offlineStatus = http.StatusServiceUnavailable
	}
	return &HealthHandlers{
		db:            db,
		cache:         cache,
		storage:       storage,
		bucket:        bucket,
		resolver:      resolver,
		client:        client,
		offlineStatus: offlineStatus,
		version:       version,
	}
}

// HealthStatus represents the readiness of each dependency
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// LivenessCheck godoc
//
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck godoc
//
// @Summary Readiness probe
// @Description Checks the database, cache and object storage concurrently. Database or cache failures make the service not ready.
// @Tags health
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus
// @Router /health/ready [get]
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()

	dbStatus, cacheStatus, storageStatus := statusDisabled, statusDisabled, statusDisabled

	// storage is reported but never fails readiness
	var g errgroup.Group
	g.Go(func() error {
		err := h.db.Ping(ctx)
		dbStatus = statusOf(err)
		return err
	})
	if h.cache != nil {
		g.Go(func() error {
			err := h.cache.Ping(ctx)
			cacheStatus = statusOf(err)
			return err
		})
	}
	if h.storage != nil {
		g.Go(func() error {
			err := h.storage.Ping(ctx, h.bucket)
			storageStatus = statusOf(err)
			if err != nil {
				logger.FromEcho(c).Warn("object storage unreachable", zap.Error(err))
			}
			return nil
		})
	}
	err := g.Wait()

	health := &HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services: map[string]string{
			"database": dbStatus,
			"cache":    cacheStatus,
			"storage":  storageStatus,
		},
		Version: h.version,
	}
	if err != nil {
		logger.FromEcho(c).Warn("readiness check failed", zap.Error(err))
		health.Status = "not_ready"
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	return c.JSON(http.StatusOK, health)
}

// InferenceHealthResponse reports inference server reachability
type InferenceHealthResponse struct {
	OllamaStatus    string    `json:"ollama_status"`
	URL             string    `json:"url"`
	ModelsAvailable []string  `json:"models_available"`
	Timestamp       time.Time `json:"timestamp"`
}

// InferenceHealth godoc
//
// @Summary Inference server health
// @Description Resolves the inference endpoint and lists its models. The offline status code is deployment policy.
// @Tags health
// @Produce json
// @Success 200 {object} InferenceHealthResponse
// @Failure 503 {object} InferenceHealthResponse
// @Router /v1/health/ollama [get]
func (h *HealthHandlers) InferenceHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()

	endpoint := h.resolver.Resolve(ctx)
	resp := InferenceHealthResponse{
		OllamaStatus:    "online",
		URL:             endpoint,
		ModelsAvailable: []string{},
		Timestamp:       time.Now().UTC(),
	}

	models, err := h.client.ListModels(ctx, endpoint)
	if err != nil {
		logger.FromEcho(c).Warn("inference server offline", zap.String("endpoint", endpoint), zap.Error(err))
		resp.OllamaStatus = "offline"
		return c.JSON(h.offlineStatus, resp)
	}
	resp.ModelsAvailable = models
	return c.JSON(http.StatusOK, resp)
}

func statusOf(err error) string {
	if err != nil {
		return statusUnhealthy
	}
	return statusHealthy
}

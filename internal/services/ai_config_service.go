package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"companymcp/internal/caching"
	"companymcp/internal/common"
	"companymcp/internal/logger"
	"companymcp/internal/metrics"
	"companymcp/internal/models"
	"companymcp/internal/repositories"

	"go.uber.org/zap"
)

const maxModelNameLength = 255

// ConfigBounds limits what an administrator may store
type ConfigBounds struct {
	MinContextLength int
	MaxContextLength int
	MaxInstructions  int
	// KnownTools, when non-empty, restricts allowed_tools to these names
	KnownTools []string
}

// AIConfigService is the tenant config store
type AIConfigService interface {
	// GetConfig never fails for a missing or unreadable row; the default
	// config is returned instead
	GetConfig(ctx context.Context, tenantID int64) (*models.TenantAIConfig, error)
	UpdateConfig(ctx context.Context, tenantID int64, update *models.AIConfigUpdate) (*models.TenantAIConfig, error)
}

type aiConfigService struct {
	repo     repositories.AIConfigRepository
	cache    caching.CacheService
	cacheTTL time.Duration
	bounds   ConfigBounds
	metrics  *metrics.Metrics
}

// NewAIConfigService builds the store. cache may be nil.
func NewAIConfigService(repo repositories.AIConfigRepository, cache caching.CacheService, cacheTTL time.Duration, bounds ConfigBounds, m *metrics.Metrics) AIConfigService {
	return &aiConfigService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		bounds:   bounds,
		metrics:  m,
	}
}

func (s *aiConfigService) GetConfig(ctx context.Context, tenantID int64) (*models.TenantAIConfig, error) {
	log := logger.FromContext(ctx)

	if s.cache != nil {
		cached, err := s.cache.GetAIConfig(ctx, tenantID)
		switch {
		case err != nil:
			s.metrics.ConfigCacheLookups.WithLabelValues("error").Inc()
			log.Warn("ai config cache read failed", zap.Int64("tenant_id", tenantID), zap.Error(err))
		case cached != nil:
			s.metrics.ConfigCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			s.metrics.ConfigCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	cfg, err := s.repo.GetByTenant(ctx, tenantID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		cfg = models.DefaultAIConfig(tenantID)
	case errors.Is(err, repositories.ErrCorruptConfig):
		log.Warn("stored ai config unreadable, using default", zap.Int64("tenant_id", tenantID), zap.Error(err))
		cfg = models.DefaultAIConfig(tenantID)
	case err != nil:
		return nil, common.NewPersistenceError("load ai config", err)
	}

	if s.cache != nil {
		if err := s.cache.SetAIConfig(ctx, cfg, s.cacheTTL); err != nil {
			log.Warn("ai config cache write failed", zap.Int64("tenant_id", tenantID), zap.Error(err))
		}
	}
	return cfg.Clone(), nil
}

func (s *aiConfigService) UpdateConfig(ctx context.Context, tenantID int64, update *models.AIConfigUpdate) (*models.TenantAIConfig, error) {
	if err := s.validate(update); err != nil {
		return nil, err
	}

	current, err := s.GetConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	next.TenantID = tenantID
	next.ModelName = update.ModelName
	next.MaxContextLength = update.MaxContextLength
	next.CustomInstructions = update.CustomInstructions
	if update.AllowedTools != nil {
		next.AllowedTools = common.NormalizeStrings(update.AllowedTools)
	}
	if len(next.SecurityRules) == 0 {
		next.SecurityRules = models.DefaultSecurityRules()
	}
	next.Active = true

	saved, err := s.repo.Upsert(ctx, next)
	if err != nil {
		return nil, common.NewPersistenceError("save ai config", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteAIConfig(ctx, tenantID); err != nil {
			logger.FromContext(ctx).Warn("ai config cache invalidation failed", zap.Int64("tenant_id", tenantID), zap.Error(err))
		}
	}

	logger.FromContext(ctx).Info("ai config updated",
		zap.Int64("tenant_id", tenantID),
		zap.String("model", saved.ModelName),
		zap.Int("max_context_length", saved.MaxContextLength),
	)
	return saved, nil
}

func (s *aiConfigService) validate(update *models.AIConfigUpdate) error {
	verr := &common.ValidationError{}

	switch {
	case update.ModelName == "":
		verr.Add("ai_model", "is required")
	case utf8.RuneCountInString(update.ModelName) > maxModelNameLength:
		verr.Add("ai_model", fmt.Sprintf("cannot exceed %d characters", maxModelNameLength))
	}

	if update.MaxContextLength < s.bounds.MinContextLength || update.MaxContextLength > s.bounds.MaxContextLength {
		verr.Add("max_context_length", fmt.Sprintf("must be between %d and %d", s.bounds.MinContextLength, s.bounds.MaxContextLength))
	}

	if utf8.RuneCountInString(update.CustomInstructions) > s.bounds.MaxInstructions {
		verr.Add("custom_instructions", fmt.Sprintf("cannot exceed %d characters", s.bounds.MaxInstructions))
	}

	if len(s.bounds.KnownTools) > 0 {
		known := make(map[string]bool, len(s.bounds.KnownTools))
		for _, name := range s.bounds.KnownTools {
			known[name] = true
		}
		for _, name := range common.NormalizeStrings(update.AllowedTools) {
			if !known[name] {
				verr.Add("allowed_tools", fmt.Sprintf("unknown tool %q", name))
				break
			}
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

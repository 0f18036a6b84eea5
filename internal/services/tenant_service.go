package services

import (
	"context"
	"errors"

	"companymcp/internal/common"
	"companymcp/internal/models"
	"companymcp/internal/repositories"
)

// TenantService resolves authenticated users into tenant scopes
type TenantService interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	Scope(ctx context.Context, user *models.User) (models.TenantScope, error)
	ListActive(ctx context.Context) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	userRepo   repositories.UserRepository
}

func NewTenantService(tenantRepo repositories.TenantRepository, userRepo repositories.UserRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo, userRepo: userRepo}
}

// GetUser returns repositories.ErrNotFound for unknown ids
func (s *tenantService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, common.NewPersistenceError("load user", err)
	}
	return user, nil
}

// Scope checks that the user has an active tenant. Failures are
// AccessDeniedError, except storage errors which are PersistenceError.
func (s *tenantService) Scope(ctx context.Context, user *models.User) (models.TenantScope, error) {
	if !user.HasTenant() {
		return models.NewTenantScope(user, nil)
	}

	tenant, err := s.tenantRepo.GetByID(ctx, *user.TenantID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return models.TenantScope{}, common.NewPersistenceError("load tenant", err)
	}
	return models.NewTenantScope(user, tenant)
}

func (s *tenantService) ListActive(ctx context.Context) ([]*models.Tenant, error) {
	tenants, err := s.tenantRepo.ListActive(ctx)
	if err != nil {
		return nil, common.NewPersistenceError("list tenants", err)
	}
	return tenants, nil
}

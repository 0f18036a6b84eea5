package services

import (
	"context"
	"io"

	"companymcp/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id int64) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ListActive(ctx context.Context) ([]*models.Tenant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetPermissions(ctx context.Context, userID, tenantID int64) ([]string, error) {
	args := m.Called(ctx, userID, tenantID)
	return args.Get(0).([]string), args.Error(1)
}

type MockAIConfigRepository struct {
	mock.Mock
}

func (m *MockAIConfigRepository) GetByTenant(ctx context.Context, tenantID int64) (*models.TenantAIConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantAIConfig), args.Error(1)
}

func (m *MockAIConfigRepository) Upsert(ctx context.Context, cfg *models.TenantAIConfig) (*models.TenantAIConfig, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantAIConfig), args.Error(1)
}

type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) Append(ctx context.Context, scope models.TenantScope, entry *models.InteractionEntry) (*models.InteractionRecord, error) {
	args := m.Called(ctx, scope, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InteractionRecord), args.Error(1)
}

func (m *MockInteractionRepository) ListForUser(ctx context.Context, scope models.TenantScope, filters *models.InteractionFilters) ([]*models.InteractionRecord, error) {
	args := m.Called(ctx, scope, filters)
	return args.Get(0).([]*models.InteractionRecord), args.Error(1)
}

func (m *MockInteractionRepository) ListForTenant(ctx context.Context, tenantID int64, filters *models.InteractionFilters) ([]*models.InteractionRecord, error) {
	args := m.Called(ctx, tenantID, filters)
	return args.Get(0).([]*models.InteractionRecord), args.Error(1)
}

type MockMinioService struct {
	mock.Mock
	uploaded []byte
}

func (m *MockMinioService) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, contentType string) error {
	data, _ := io.ReadAll(reader)
	m.uploaded = data
	args := m.Called(ctx, bucket, object, size, contentType)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *MockMinioService) Ping(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func int64Ptr(v int64) *int64 {
	return &v
}

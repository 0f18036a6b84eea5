package handlers

import (
	"context"
	"io"
	"time"

	"companymcp/internal/broker"
	"companymcp/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) ProcessMessage(ctx context.Context, user *models.User, message string, extra map[string]any) (*broker.Result, error) {
	args := m.Called(ctx, user, message, extra)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result), args.Error(1)
}

type MockAIConfigService struct {
	mock.Mock
}

func (m *MockAIConfigService) GetConfig(ctx context.Context, tenantID int64) (*models.TenantAIConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantAIConfig), args.Error(1)
}

func (m *MockAIConfigService) UpdateConfig(ctx context.Context, tenantID int64, update *models.AIConfigUpdate) (*models.TenantAIConfig, error) {
	args := m.Called(ctx, tenantID, update)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InteractionRecord), args.Error(1)
}

func (m *MockInteractionRepository) ListForTenant(ctx context.Context, tenantID int64, filters *models.InteractionFilters) ([]*models.InteractionRecord, error) {
	args := m.Called(ctx, tenantID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InteractionRecord), args.Error(1)
}

type MockTenantDataRepository struct {
	mock.Mock
}

func (m *MockTenantDataRepository) ListUsers(ctx context.Context, tenantID int64, search string, limit int) ([]*models.UserSummary, error) {
	args := m.Called(ctx, tenantID, search, limit)
	return args.Get(0).([]*models.UserSummary), args.Error(1)
}

func (m *MockTenantDataRepository) ListProducts(ctx context.Context, tenantID int64, category string, activeOnly bool, limit int) ([]*models.Product, error) {
	args := m.Called(ctx, tenantID, category, activeOnly, limit)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockTenantDataRepository) ListOrders(ctx context.Context, tenantID int64, status string, limit int) ([]*models.Order, error) {
	args := m.Called(ctx, tenantID, status, limit)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockTenantDataRepository) CreateCustomer(ctx context.Context, tenantID int64, customer *models.Customer) error {
	args := m.Called(ctx, tenantID, customer)
	return args.Error(0)
}

func (m *MockTenantDataRepository) Aggregate(ctx context.Context, tenantID int64, metric string, since time.Time) (float64, error) {
	args := m.Called(ctx, tenantID, metric, since)
	return args.Get(0).(float64), args.Error(1)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockMinioService) Ping(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error {
	return p.err
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"companymcp/internal/models"
	"companymcp/pkg/database"

	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Tenant, error)
	ListActive(ctx context.Context) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db database.DBTX
}

func NewTenantRepo(db database.DBTX) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) GetByID(ctx context.Context, id int64) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	var settings []byte
	query := `
		SELECT id, name, active, settings, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.Active, &settings, &tenant.CreatedAt, &tenant.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tenant.Settings, err = models.ParseJSONB(settings)
	if err != nil {
		return nil, fmt.Errorf("tenant %d settings: %w", id, err)
	}
	return tenant, nil
}

func (r *tenantRepo) ListActive(ctx context.Context) ([]*models.Tenant, error) {
	query := `
		SELECT id, name, active, created_at, updated_at
		FROM tenants
		WHERE active = true
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.Active, &tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"companymcp/internal/models"
	"companymcp/pkg/database"

	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	// GetByID loads a user together with the permissions held in their own tenant
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetPermissions(ctx context.Context, userID, tenantID int64) ([]string, error)
}

type userRepo struct {
	db database.DBTX
}

func NewUserRepo(db database.DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, tenant_id, name, email, is_admin, created_at
		FROM users
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.TenantID, &user.Name, &user.Email, &user.IsAdmin, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.Permissions = []string{}
	if user.TenantID != nil {
		perms, err := r.GetPermissions(ctx, user.ID, *user.TenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to load permissions: %w", err)
		}
		user.Permissions = perms
	}
	return user, nil
}

func (r *userRepo) GetPermissions(ctx context.Context, userID, tenantID int64) ([]string, error) {
	query := `
		SELECT permission
		FROM user_permissions
		WHERE user_id = $1 AND tenant_id = $2
		ORDER BY permission
	`
	rows, err := r.db.Query(ctx, query, userID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"companymcp/internal/models"
	"companymcp/pkg/database"

	"github.com/google/uuid"
)

var errInvalidScope = errors.New("interaction log requires a validated tenant scope")

// InteractionRepository is the append-only interaction log. Writes take the
// tenant and user from a TenantScope so a record can never be filed under a
// tenant other than the caller's.
type InteractionRepository interface {
	Append(ctx context.Context, scope models.TenantScope, entry *models.InteractionEntry) (*models.InteractionRecord, error)
	ListForUser(ctx context.Context, scope models.TenantScope, filters *models.InteractionFilters) ([]*models.InteractionRecord, error)
	ListForTenant(ctx context.Context, tenantID int64, filters *models.InteractionFilters) ([]*models.InteractionRecord, error)
}

type interactionRepo struct {
	db database.DBTX
}

func NewInteractionRepo(db database.DBTX) InteractionRepository {
	return &interactionRepo{db: db}
}

func (r *interactionRepo) Append(ctx context.Context, scope models.TenantScope, entry *models.InteractionEntry) (*models.InteractionRecord, error) {
	if !scope.Valid() {
		return nil, errInvalidScope
	}

	userID := scope.UserID()
	record := &models.InteractionRecord{
		ID:        uuid.New(),
		TenantID:  scope.TenantID(),
		UserID:    &userID,
		Message:   entry.Message,
		Response:  entry.Response,
		Context:   entry.Context,
		CreatedAt: time.Now().UTC(),
	}

	responseBytes, err := record.Response.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	contextBytes, err := record.Context.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal context: %w", err)
	}

	query := `
		INSERT INTO interaction_records (id, tenant_id, user_id, message, response, context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.TenantID,
		record.UserID,
		record.Message,
		responseBytes,
		contextBytes,
		record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *interactionRepo) ListForUser(ctx context.Context, scope models.TenantScope, filters *models.InteractionFilters) ([]*models.InteractionRecord, error) {
	if !scope.Valid() {
		return nil, errInvalidScope
	}
	userID := scope.UserID()
	return r.list(ctx, scope.TenantID(), &userID, filters, "DESC")
}

func (r *interactionRepo) ListForTenant(ctx context.Context, tenantID int64, filters *models.InteractionFilters) ([]*models.InteractionRecord, error) {
	return r.list(ctx, tenantID, nil, filters, "ASC")
}

func (r *interactionRepo) list(ctx context.Context, tenantID int64, userID *int64, filters *models.InteractionFilters, order string) ([]*models.InteractionRecord, error) {
	if filters == nil {
		filters = &models.InteractionFilters{}
	}

	query := `
		SELECT id, tenant_id, user_id, message, response, context, created_at
		FROM interaction_records
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	argIdx := 1

	if userID != nil {
		argIdx++
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *userID)
	}

	if filters.Since != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.Since)
	}

	if filters.Until != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at < $%d", argIdx)
		args = append(args, *filters.Until)
	}

	query += " ORDER BY created_at " + order

	if filters.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.InteractionRecord
	for rows.Next() {
		record := &models.InteractionRecord{}
		var responseBytes, contextBytes []byte
		if err := rows.Scan(
			&record.ID,
			&record.TenantID,
			&record.UserID,
			&record.Message,
			&responseBytes,
			&contextBytes,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		if record.Response, err = models.ParseJSONB(responseBytes); err != nil {
			return nil, fmt.Errorf("interaction %s response: %w", record.ID, err)
		}
		if record.Context, err = models.ParseJSONB(contextBytes); err != nil {
			return nil, fmt.Errorf("interaction %s context: %w", record.ID, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

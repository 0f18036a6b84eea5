package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"companymcp/internal/models"
	"companymcp/pkg/database"

	"github.com/jackc/pgx/v5"
)

type AIConfigRepository interface {
	// GetByTenant returns ErrNotFound when no row exists and ErrCorruptConfig
	// when a stored blob cannot be decoded
	GetByTenant(ctx context.Context, tenantID int64) (*models.TenantAIConfig, error)
	// Upsert creates the row or replaces the editable fields of an existing
	// one. active of an existing row is left untouched, and so is
	// security_rules unless cfg.IsDefault is set, which rewrites a row that
	// could not be read.
	Upsert(ctx context.Context, cfg *models.TenantAIConfig) (*models.TenantAIConfig, error)
}

type aiConfigRepo struct {
	db database.DBTX
}

func NewAIConfigRepo(db database.DBTX) AIConfigRepository {
	return &aiConfigRepo{db: db}
}

const aiConfigColumns = `tenant_id, model_name, max_context_length, allowed_tools, custom_instructions, security_rules, active, updated_at`

func (r *aiConfigRepo) GetByTenant(ctx context.Context, tenantID int64) (*models.TenantAIConfig, error) {
	query := `
		SELECT ` + aiConfigColumns + `
		FROM tenant_ai_configs
		WHERE tenant_id = $1
	`
	cfg, err := scanAIConfig(r.db.QueryRow(ctx, query, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return cfg, err
}

func (r *aiConfigRepo) Upsert(ctx context.Context, cfg *models.TenantAIConfig) (*models.TenantAIConfig, error) {
	toolsBytes, err := json.Marshal(cfg.AllowedTools)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal allowed_tools: %w", err)
	}
	rulesBytes, err := json.Marshal(cfg.SecurityRules)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal security_rules: %w", err)
	}

	query := `
		INSERT INTO tenant_ai_configs (tenant_id, model_name, max_context_length, allowed_tools, custom_instructions, security_rules, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (tenant_id) DO UPDATE SET
			model_name = EXCLUDED.model_name,
			max_context_length = EXCLUDED.max_context_length,
			allowed_tools = EXCLUDED.allowed_tools,
			custom_instructions = EXCLUDED.custom_instructions,
			security_rules = CASE WHEN $8 THEN EXCLUDED.security_rules ELSE tenant_ai_configs.security_rules END,
			updated_at = NOW()
		RETURNING ` + aiConfigColumns

	return scanAIConfig(r.db.QueryRow(ctx, query,
		cfg.TenantID,
		cfg.ModelName,
		cfg.MaxContextLength,
		toolsBytes,
		cfg.CustomInstructions,
		rulesBytes,
		cfg.Active,
		cfg.IsDefault,
	))
}

func scanAIConfig(row pgx.Row) (*models.TenantAIConfig, error) {
	cfg := &models.TenantAIConfig{}
	var toolsBytes, rulesBytes []byte

	err := row.Scan(
		&cfg.TenantID,
		&cfg.ModelName,
		&cfg.MaxContextLength,
		&toolsBytes,
		&cfg.CustomInstructions,
		&rulesBytes,
		&cfg.Active,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.AllowedTools = []string{}
	if len(toolsBytes) > 0 {
		if err := json.Unmarshal(toolsBytes, &cfg.AllowedTools); err != nil {
			return nil, fmt.Errorf("%w: allowed_tools: %v", ErrCorruptConfig, err)
		}
	}
	cfg.SecurityRules = models.SecurityRules{}
	if len(rulesBytes) > 0 {
		if err := json.Unmarshal(rulesBytes, &cfg.SecurityRules); err != nil {
			return nil, fmt.Errorf("%w: security_rules: %v", ErrCorruptConfig, err)
		}
	}
	return cfg, nil
}

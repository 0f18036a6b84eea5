package models

import (
	"time"

	"github.com/google/uuid"
)

const MaxMessageLength = 2000

// InteractionRecord is one persisted broker invocation. Records are never
// updated or deleted.
type InteractionRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  int64     `json:"company_id" db:"tenant_id"`
	UserID    *int64    `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	Response  JSONB     `json:"response" db:"response"`
	Context   JSONB     `json:"context" db:"context"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// InteractionEntry is what a caller supplies to the interaction log. The
// tenant and user come from a TenantScope, never from the caller.
type InteractionEntry struct {
	Message  string
	Response JSONB
	Context  JSONB
}

// InteractionFilters narrows a history query
type InteractionFilters struct {
	Since *time.Time
	Until *time.Time
	Limit int
}

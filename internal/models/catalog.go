package models

import (
	"time"
)

// Tenant-owned business rows exposed to the assistant through tools.

type Product struct {
	ID        int64     `json:"id" db:"id"`
	TenantID  int64     `json:"company_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Price     float64   `json:"price" db:"price"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Order struct {
	ID        int64     `json:"id" db:"id"`
	TenantID  int64     `json:"company_id" db:"tenant_id"`
	Status    string    `json:"status" db:"status"`
	Total     float64   `json:"total" db:"total"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Customer struct {
	ID        int64     `json:"id" db:"id"`
	TenantID  int64     `json:"company_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the non-sensitive view of a user returned to tools
type UserSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AnalyticsResult is a single aggregated metric for a period
type AnalyticsResult struct {
	Metric string    `json:"metric"`
	Period string    `json:"period"`
	Since  time.Time `json:"since"`
	Value  float64   `json:"value"`
}

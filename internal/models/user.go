package models

import (
	"time"
)

type User struct {
	ID          int64     `json:"id" db:"id"`
	TenantID    *int64    `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	IsAdmin     bool      `json:"is_admin" db:"is_admin"`
	Permissions []string  `json:"permissions" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// HasTenant reports whether the user is attached to a company
func (u *User) HasTenant() bool {
	return u != nil && u.TenantID != nil
}

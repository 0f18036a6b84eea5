package models

import (
	"companymcp/internal/common"
)

const (
	MsgNoCompany       = "User is not associated with a company"
	MsgCompanyInactive = "Company is inactive or does not exist"
)

// TenantScope pairs an authenticated user with the tenant they belong to.
// The fields are unexported so the only way to obtain a scope is through
// NewTenantScope, which checks membership and the active flag.
type TenantScope struct {
	user   *User
	tenant *Tenant
}

// NewTenantScope validates that user belongs to tenant and that tenant is active
func NewTenantScope(user *User, tenant *Tenant) (TenantScope, error) {
	if !user.HasTenant() {
		return TenantScope{}, common.NewAccessDenied(MsgNoCompany, "user has no tenant")
	}
	if tenant == nil || !tenant.Active {
		return TenantScope{}, common.NewAccessDenied(MsgCompanyInactive, "tenant missing or inactive")
	}
	if *user.TenantID != tenant.ID {
		return TenantScope{}, common.NewAccessDenied(MsgNoCompany, "user tenant does not match")
	}
	return TenantScope{user: user, tenant: tenant}, nil
}

// Valid reports whether the scope was built by NewTenantScope
func (s TenantScope) Valid() bool {
	return s.user != nil && s.tenant != nil
}

func (s TenantScope) TenantID() int64 {
	return s.tenant.ID
}

func (s TenantScope) UserID() int64 {
	return s.user.ID
}

func (s TenantScope) User() User {
	return *s.user
}

func (s TenantScope) Tenant() Tenant {
	return *s.tenant
}

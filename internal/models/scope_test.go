package models

import (
	"errors"
	"testing"

	"companymcp/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestNewTenantScope_Success(t *testing.T) {
	user := &User{ID: 7, TenantID: int64Ptr(1), Name: "Ana"}
	tenant := &Tenant{ID: 1, Name: "Acme", Active: true}

	scope, err := NewTenantScope(user, tenant)
	require.NoError(t, err)
	assert.True(t, scope.Valid())
	assert.Equal(t, int64(1), scope.TenantID())
	assert.Equal(t, int64(7), scope.UserID())
	assert.Equal(t, "Acme", scope.Tenant().Name)
}

func TestNewTenantScope_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		user    *User
		tenant  *Tenant
		message string
	}{
		{"no tenant", &User{ID: 7}, &Tenant{ID: 1, Active: true}, MsgNoCompany},
		{"nil user", nil, &Tenant{ID: 1, Active: true}, MsgNoCompany},
		{"inactive tenant", &User{ID: 7, TenantID: int64Ptr(1)}, &Tenant{ID: 1, Active: false}, MsgCompanyInactive},
		{"missing tenant", &User{ID: 7, TenantID: int64Ptr(1)}, nil, MsgCompanyInactive},
		{"foreign tenant", &User{ID: 7, TenantID: int64Ptr(2)}, &Tenant{ID: 1, Active: true}, MsgNoCompany},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, err := NewTenantScope(tt.user, tt.tenant)
			require.Error(t, err)
			assert.False(t, scope.Valid())
			assert.True(t, errors.Is(err, common.ErrAccessDenied))

			var denied *common.AccessDeniedError
			require.True(t, errors.As(err, &denied))
			assert.Equal(t, tt.message, denied.Message)
		})
	}
}

func TestDefaultAIConfig_FreshCopies(t *testing.T) {
	a := DefaultAIConfig(1)
	b := DefaultAIConfig(1)

	a.AllowedTools[0] = "mutated"
	a.SecurityRules[RuleLogAllInteractions] = false

	assert.Equal(t, DefaultModelName, b.ModelName)
	assert.Equal(t, 4000, b.MaxContextLength)
	assert.Len(t, b.AllowedTools, 4)
	assert.Equal(t, "get_users", b.AllowedTools[0])
	assert.True(t, b.SecurityRules[RuleLogAllInteractions])
	assert.True(t, b.IsDefault)
}

func TestTenantAIConfig_CloneIsDeep(t *testing.T) {
	orig := DefaultAIConfig(3)
	clone := orig.Clone()
	clone.AllowedTools = append(clone.AllowedTools[:0], "get_orders")
	clone.SecurityRules[RuleRespectIsolation] = false

	assert.True(t, orig.AllowsTool("get_users"))
	assert.False(t, orig.AllowsTool("get_orders"))
	assert.True(t, orig.SecurityRules[RuleRespectIsolation])
}

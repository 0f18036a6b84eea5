package broker

import (
	"time"

	"companymcp/internal/models"
	"companymcp/internal/tools"
)

// Context keys produced by the builder
const (
	KeyTenantID         = "tenant_id"
	KeyTenantName       = "tenant_name"
	KeyUserID           = "user_id"
	KeyUserName         = "user_name"
	KeyUserPermissions  = "user_permissions"
	KeyDataDescriptors  = "accessible_data_descriptors"
	KeyTenantConfig     = "tenant_config"
	KeyRequestTimestamp = "request_timestamp"
	KeyAvailableTools   = "available_tools"
)

const requestTimestampLayout = "2006-01-02 15:04:05"

// Context is the per-request mapping handed to the prompt compositor and
// stored alongside the interaction record
type Context map[string]any

// DataDescriptor names a tenant-restricted data set. It never carries query text.
type DataDescriptor struct {
	Name     string `json:"name"`
	Entity   string `json:"entity"`
	TenantID int64  `json:"company_id"`
}

var describedEntities = []string{"users", "products", "orders", "customers", "interaction_records"}

// DataDescriptors lists the data sets a tenant may reach
func DataDescriptors(tenantID int64) []DataDescriptor {
	out := make([]DataDescriptor, 0, len(describedEntities))
	for _, entity := range describedEntities {
		out = append(out, DataDescriptor{Name: "tenant_" + entity, Entity: entity, TenantID: tenantID})
	}
	return out
}

// ContextBuilder assembles the request context for a scoped user
type ContextBuilder struct {
	now func() time.Time
}

func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{now: time.Now}
}

// Build merges extra over the generated keys. tenant_id and user_id are
// always taken from scope.
func (b *ContextBuilder) Build(scope models.TenantScope, cfg *models.TenantAIConfig, extra map[string]any) Context {
	user := scope.User()
	tenant := scope.Tenant()

	permissions := user.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	ctx := Context{
		KeyTenantID:         tenant.ID,
		KeyTenantName:       tenant.Name,
		KeyUserID:           user.ID,
		KeyUserName:         user.Name,
		KeyUserPermissions:  permissions,
		KeyDataDescriptors:  DataDescriptors(tenant.ID),
		KeyTenantConfig:     cfg,
		KeyRequestTimestamp: b.now().UTC(),
		KeyAvailableTools:   tools.Available(cfg),
	}

	for k, v := range extra {
		ctx[k] = v
	}
	ctx[KeyTenantID] = scope.TenantID()
	ctx[KeyUserID] = scope.UserID()

	return ctx
}

// JSONB converts the context for storage
func (c Context) JSONB() models.JSONB {
	return models.JSONB(c)
}

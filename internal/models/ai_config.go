package models

import (
	"time"
)

// Security rule flags stored per tenant
const (
	RuleNeverShowSensitiveData = "never_show_sensitive_data"
	RuleRespectIsolation       = "respect_company_isolation"
	RuleLogAllInteractions     = "log_all_interactions"
)

const (
	DefaultModelName          = "llama3"
	DefaultMaxContextLength   = 4000
	DefaultCustomInstructions = "Você é um assistente IA especializado para esta empresa. Sempre responda em português e seja útil."
)

// SecurityRules maps rule names to their enabled state
type SecurityRules map[string]bool

// TenantAIConfig holds the per-company AI settings
type TenantAIConfig struct {
	TenantID           int64         `json:"company_id" db:"tenant_id"`
	ModelName          string        `json:"ai_model" db:"model_name"`
	MaxContextLength   int           `json:"max_context_length" db:"max_context_length"`
	AllowedTools       []string      `json:"allowed_tools" db:"allowed_tools"`
	CustomInstructions string        `json:"custom_instructions" db:"custom_instructions"`
	SecurityRules      SecurityRules `json:"security_rules" db:"security_rules"`
	Active             bool          `json:"active" db:"active"`
	IsDefault          bool          `json:"is_default" db:"-"`
	UpdatedAt          time.Time     `json:"updated_at,omitempty" db:"updated_at"`
}

// AIConfigUpdate is the set of fields an administrator may change
type AIConfigUpdate struct {
	ModelName          string
	MaxContextLength   int
	CustomInstructions string
	AllowedTools       []string
}

// DefaultToolNames is the allow-list applied when a tenant has no stored config
func DefaultToolNames() []string {
	return []string{"get_users", "get_analytics", "get_products", "create_customer"}
}

// DefaultSecurityRules enables every rule
func DefaultSecurityRules() SecurityRules {
	return SecurityRules{
		RuleNeverShowSensitiveData: true,
		RuleRespectIsolation:       true,
		RuleLogAllInteractions:     true,
	}
}

// DefaultAIConfig returns a fresh copy of the fallback configuration
func DefaultAIConfig(tenantID int64) *TenantAIConfig {
	return &TenantAIConfig{
		TenantID:           tenantID,
		ModelName:          DefaultModelName,
		MaxContextLength:   DefaultMaxContextLength,
		AllowedTools:       DefaultToolNames(),
		CustomInstructions: DefaultCustomInstructions,
		SecurityRules:      DefaultSecurityRules(),
		Active:             true,
		IsDefault:          true,
	}
}

// AllowsTool reports whether name is on the tenant's allow-list
func (c *TenantAIConfig) AllowsTool(name string) bool {
	for _, t := range c.AllowedTools {
		if t == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to another request
func (c *TenantAIConfig) Clone() *TenantAIConfig {
	out := *c
	out.AllowedTools = append([]string(nil), c.AllowedTools...)
	out.SecurityRules = make(SecurityRules, len(c.SecurityRules))
	for k, v := range c.SecurityRules {
		out.SecurityRules[k] = v
	}
	return &out
}

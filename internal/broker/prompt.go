package broker

import (
	"fmt"
	"strings"
	"time"

	"companymcp/internal/models"
)

// Compose renders the prompt sent to the model. It performs no I/O and the
// same message and context always produce the same string.
func Compose(message string, ctx Context) string {
	var b strings.Builder

	if instructions := instructionsOf(ctx); instructions != "" {
		b.WriteString(instructions)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Company: %v (ID: %v)\n", ctx[KeyTenantName], ctx[KeyTenantID])
	fmt.Fprintf(&b, "User: %v (ID: %v)\n", ctx[KeyUserName], ctx[KeyUserID])
	fmt.Fprintf(&b, "Timestamp: %s\n", timestampOf(ctx))
	if permissions := permissionsOf(ctx); len(permissions) > 0 {
		fmt.Fprintf(&b, "Permissions: %s\n", strings.Join(permissions, ", "))
	}

	b.WriteString("\nUser message: ")
	b.WriteString(message)
	return b.String()
}

func instructionsOf(ctx Context) string {
	switch cfg := ctx[KeyTenantConfig].(type) {
	case *models.TenantAIConfig:
		if cfg != nil {
			return strings.TrimSpace(cfg.CustomInstructions)
		}
	case map[string]any:
		if s, ok := cfg["custom_instructions"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func timestampOf(ctx Context) string {
	switch ts := ctx[KeyRequestTimestamp].(type) {
	case time.Time:
		return ts.UTC().Format(requestTimestampLayout)
	case string:
		return ts
	case nil:
		return ""
	default:
		return fmt.Sprint(ts)
	}
}

func permissionsOf(ctx Context) []string {
	switch p := ctx[KeyUserPermissions].(type) {
	case []string:
		return p
	case []any:
		out := make([]string, 0, len(p))
		for _, v := range p {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

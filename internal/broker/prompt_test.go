package broker

import (
	"strings"
	"testing"

	"companymcp/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCompose_Layout(t *testing.T) {
	cfg := models.DefaultAIConfig(1)
	cfg.CustomInstructions = "Seja breve."
	ctx := newBuilder().Build(newScope(t, 7, 1, "orders.view", "reports.view"), cfg, nil)

	prompt := Compose("Quantos pedidos hoje?", ctx)

	expected := "Seja breve.\n\n" +
		"Company: Acme Ltda (ID: 1)\n" +
		"User: Ana (ID: 7)\n" +
		"Timestamp: 2026-03-14 09:26:53\n" +
		"Permissions: orders.view, reports.view\n" +
		"\nUser message: Quantos pedidos hoje?"
	assert.Equal(t, expected, prompt)
}

func TestCompose_OmitsEmptyPermissions(t *testing.T) {
	ctx := newBuilder().Build(newScope(t, 7, 1), models.DefaultAIConfig(1), nil)

	prompt := Compose("Olá", ctx)

	assert.NotContains(t, prompt, "Permissions:")
	assert.True(t, strings.HasPrefix(prompt, models.DefaultCustomInstructions))
}

func TestCompose_Deterministic(t *testing.T) {
	ctx := newBuilder().Build(newScope(t, 7, 1, "a"), models.DefaultAIConfig(1), map[string]any{"x": 1})

	assert.Equal(t, Compose("Olá", ctx), Compose("Olá", ctx))
}

func TestCompose_MessageVerbatimTenantOnce(t *testing.T) {
	message := "  linha 1\nlinha 2 {{tenant}} %s  "
	ctx := newBuilder().Build(newScope(t, 7, 1), models.DefaultAIConfig(1), nil)

	prompt := Compose(message, ctx)

	assert.True(t, strings.HasSuffix(prompt, message))
	assert.Equal(t, 1, strings.Count(prompt, "Acme Ltda"))
	assert.Equal(t, 1, strings.Count(prompt, "(ID: 1)"))
}

func TestCompose_InstructionsFromCallerMap(t *testing.T) {
	ctx := Context{
		KeyTenantConfig:    map[string]any{"custom_instructions": "From map"},
		KeyTenantID:        int64(3),
		KeyTenantName:      "Beta",
		KeyUserID:          int64(4),
		KeyUserName:        "Bo",
		KeyUserPermissions: []any{"p1", "p2"},
	}

	prompt := Compose("hi", ctx)

	assert.True(t, strings.HasPrefix(prompt, "From map\n\n"))
	assert.Contains(t, prompt, "Permissions: p1, p2\n")
}

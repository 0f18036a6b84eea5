package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"companymcp/internal/broker"
	"companymcp/internal/common"
	"companymcp/internal/config"
	"companymcp/internal/logger"
	"companymcp/internal/middleware"
	"companymcp/internal/models"
	"companymcp/internal/repositories"
	"companymcp/internal/services"
	"companymcp/internal/tools"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MCPHandlers serves the company-scoped assistant endpoints
type MCPHandlers struct {
	broker       broker.Broker
	configs      services.AIConfigService
	interactions repositories.InteractionRepository
	registry     *tools.Registry
	limits       config.LimitsConfig
	version      string
	defaultModel string
}

// NewMCPHandlers creates a new MCP handlers instance
func NewMCPHandlers(
	b broker.Broker,
	configs services.AIConfigService,
	interactions repositories.InteractionRepository,
	registry *tools.Registry,
	limits config.LimitsConfig,
	version, defaultModel string,
) *MCPHandlers {
	return &MCPHandlers{
		broker:       b,
		configs:      configs,
		interactions: interactions,
		registry:     registry,
		limits:       limits,
		version:      version,
		defaultModel: defaultModel,
	}
}

// ChatRequest is the body of POST /mcp/chat
type ChatRequest struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context"`
}

// ChatReply is the broker output returned to the client
type ChatReply struct {
	Response      string `json:"response"`
	Model         string `json:"model"`
	TenantID      int64  `json:"company_id"`
	InteractionID string `json:"interaction_id,omitempty"`
}

// ChatResponse is the body of a successful chat call
type ChatResponse struct {
	Success   bool      `json:"success"`
	Response  ChatReply `json:"response"`
	TenantID  int64     `json:"company_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatFailure is the body of a failed chat call
type ChatFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Chat godoc
//
// @Summary Send a message to the company assistant
// @Description Runs the message through the tenant's model and records the interaction.
// @Tags mcp
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Message and optional context"
// @Success 200 {object} ChatResponse
// @Failure 401 {object} common.ErrorResponse
// @Failure 403 {object} common.ErrorResponse
// @Failure 422 {object} common.ErrorResponse
// @Failure 429 {object} common.ErrorResponse
// @Failure 500 {object} ChatFailure
// @Security BearerAuth
// @Router /v1/mcp/chat [post]
func (h *MCPHandlers) Chat(c echo.Context) error {
	log := logger.FromEcho(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBindError(c, err)
	}

	result, err := h.broker.ProcessMessage(c.Request().Context(), user, req.Message, req.Context)
	if err != nil {
		if errors.Is(err, common.ErrPersistence) {
			log.Error("chat aborted", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ChatFailure{Success: false, Error: common.MsgProcessingError})
		}
		return common.SendError(c, err)
	}

	if !result.Success {
		return c.JSON(http.StatusInternalServerError, ChatFailure{Success: false, Error: result.Error})
	}

	reply := ChatReply{Response: result.Response, Model: result.Model, TenantID: result.TenantID}
	if result.InteractionID != nil {
		reply.InteractionID = result.InteractionID.String()
	}
	return c.JSON(http.StatusOK, ChatResponse{
		Success:   true,
		Response:  reply,
		TenantID:  result.TenantID,
		Timestamp: time.Now().UTC(),
	})
}

// Status godoc
//
// @Summary Assistant status
// @Tags mcp
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/mcp/status [get]
func (h *MCPHandlers) Status(c echo.Context) error {
	model := h.defaultModel
	if scope, ok := middleware.CurrentScope(c); ok {
		cfg, err := h.configs.GetConfig(c.Request().Context(), scope.TenantID())
		if err != nil {
			logger.FromEcho(c).Warn("status could not read ai config", zap.Error(err))
		} else {
			model = cfg.ModelName
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "active",
		"model":     model,
		"version":   h.version,
		"timestamp": time.Now().UTC(),
	})
}

// GetSettings godoc
//
// @Summary Effective AI settings for the caller's company
// @Tags mcp
// @Produce json
// @Success 200 {object} models.TenantAIConfig
// @Security BearerAuth
// @Router /v1/mcp/settings [get]
func (h *MCPHandlers) GetSettings(c echo.Context) error {
	scope, ok := middleware.CurrentScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	cfg, err := h.configs.GetConfig(c.Request().Context(), scope.TenantID())
	if err != nil {
		logger.FromEcho(c).Error("failed to read ai config", zap.Error(err))
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// UpdateSettingsRequest is the body of POST /mcp/settings
type UpdateSettingsRequest struct {
	AIModel            string   `json:"ai_model" validate:"required,max=255"`
	MaxContextLength   int      `json:"max_context_length" validate:"required"`
	CustomInstructions string   `json:"custom_instructions"`
	AllowedTools       []string `json:"allowed_tools"`
}

// UpdateSettings godoc
//
// @Summary Update AI settings (admin)
// @Tags mcp
// @Accept json
// @Produce json
// @Param request body UpdateSettingsRequest true "New settings"
// @Success 200 {object} models.TenantAIConfig
// @Failure 403 {object} common.ErrorResponse
// @Failure 422 {object} common.ErrorResponse
// @Security BearerAuth
// @Router /v1/mcp/settings [post]
func (h *MCPHandlers) UpdateSettings(c echo.Context) error {
	scope, ok := middleware.CurrentScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBindError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return common.SendError(c, err)
	}

	cfg, err := h.configs.UpdateConfig(c.Request().Context(), scope.TenantID(), &models.AIConfigUpdate{
		ModelName:          req.AIModel,
		MaxContextLength:   req.MaxContextLength,
		CustomInstructions: req.CustomInstructions,
		AllowedTools:       req.AllowedTools,
	})
	if err != nil {
		if !errors.Is(err, common.ErrValidation) {
			logger.FromEcho(c).Error("failed to update ai config", zap.Int64("tenant_id", scope.TenantID()), zap.Error(err))
		}
		return common.SendError(c, err)
	}

	logger.FromEcho(c).Info("ai config updated",
		zap.Int64("tenant_id", scope.TenantID()),
		zap.Int64("user_id", scope.UserID()),
		zap.String("model", cfg.ModelName),
	)
	return c.JSON(http.StatusOK, cfg)
}

// ListInteractions godoc
//
// @Summary Caller's recent interactions
// @Tags mcp
// @Produce json
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/mcp/interactions [get]
func (h *MCPHandlers) ListInteractions(c echo.Context) error {
	scope, ok := middleware.CurrentScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return common.SendValidationError(c, map[string]string{"limit": "must be an integer"})
		}
		limit = parsed
	}
	limit = common.ValidatePaginationLimit(limit, h.limits.HistoryDefault, h.limits.HistoryMax)

	records, err := h.interactions.ListForUser(c.Request().Context(), scope, &models.InteractionFilters{Limit: limit})
	if err != nil {
		logger.FromEcho(c).Error("failed to list interactions", zap.Error(err))
		return common.SendServerError(c)
	}
	if records == nil {
		records = []*models.InteractionRecord{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"interactions": records,
		"count":        len(records),
		"limit":        limit,
	})
}

// ListTools godoc
//
// @Summary Tools enabled for the caller's company
// @Tags mcp
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/mcp/tools [get]
func (h *MCPHandlers) ListTools(c echo.Context) error {
	scope, ok := middleware.CurrentScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	cfg, err := h.configs.GetConfig(c.Request().Context(), scope.TenantID())
	if err != nil {
		logger.FromEcho(c).Error("failed to read ai config", zap.Error(err))
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tools":      h.registry.Describe(cfg),
		"company_id": scope.TenantID(),
	})
}

// ExecuteToolRequest is the body of POST /mcp/tools/:name
type ExecuteToolRequest struct {
	Parameters map[string]any `json:"parameters"`
}

// ExecuteTool godoc
//
// @Summary Run a tool against the caller's company data
// @Tags mcp
// @Accept json
// @Produce json
// @Param name path string true "Tool name"
// @Param request body ExecuteToolRequest false "Tool parameters"
// @Success 200 {object} tools.Result
// @Failure 403 {object} common.ErrorResponse
// @Failure 422 {object} common.ErrorResponse
// @Security BearerAuth
// @Router /v1/mcp/tools/{name} [post]
func (h *MCPHandlers) ExecuteTool(c echo.Context) error {
	scope, ok := middleware.CurrentScope(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ExecuteToolRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return common.SendBindError(c, err)
		}
	}

	ctx := c.Request().Context()
	cfg, err := h.configs.GetConfig(ctx, scope.TenantID())
	if err != nil {
		logger.FromEcho(c).Error("failed to read ai config", zap.Error(err))
		return common.SendError(c, err)
	}

	name := c.Param("name")
	result, err := h.registry.Execute(ctx, scope, cfg, name, req.Parameters)
	if err != nil {
		if errors.Is(err, common.ErrPersistence) {
			logger.FromEcho(c).Error("tool execution failed", zap.String("tool", name), zap.Error(err))
		}
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"companymcp/internal/broker"
	"companymcp/internal/common"
	"companymcp/internal/config"
	"companymcp/internal/middleware"
	"companymcp/internal/models"
	"companymcp/internal/tools"
	"companymcp/testhelpers"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MCPHandlersTestSuite struct {
	suite.Suite
	broker       *MockBroker
	configs      *MockAIConfigService
	interactions *MockInteractionRepository
	store        *MockTenantDataRepository
	user         *models.User
	scope        models.TenantScope
	echo         *echo.Echo
}

func (suite *MCPHandlersTestSuite) SetupTest() {
	suite.broker = &MockBroker{}
	suite.configs = &MockAIConfigService{}
	suite.interactions = &MockInteractionRepository{}
	suite.store = &MockTenantDataRepository{}

	suite.user = testhelpers.NewUser(7, testhelpers.Int64Ptr(1))
	scope, err := models.NewTenantScope(suite.user, testhelpers.NewTenant(1, "Acme", true))
	require.NoError(suite.T(), err)
	suite.scope = scope

	validator := common.NewRequestValidator()
	h := NewMCPHandlers(
		suite.broker,
		suite.configs,
		suite.interactions,
		tools.NewRegistry(suite.store, validator.Engine()),
		config.LimitsConfig{HistoryDefault: 20, HistoryMax: 100},
		"1.0.0",
		"llama3",
	)

	e := echo.New()
	e.Validator = validator
	g := e.Group("/v1/mcp", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetUser(c, suite.user)
			c.Set(string(common.TenantScopeKey), suite.scope)
			return next(c)
		}
	})
	g.POST("/chat", h.Chat)
	g.GET("/status", h.Status)
	g.GET("/settings", h.GetSettings)
	g.POST("/settings", h.UpdateSettings)
	g.GET("/interactions", h.ListInteractions)
	g.GET("/tools", h.ListTools)
	g.POST("/tools/:name", h.ExecuteTool)
	suite.echo = e
}

func (suite *MCPHandlersTestSuite) TearDownTest() {
	suite.broker.AssertExpectations(suite.T())
	suite.configs.AssertExpectations(suite.T())
	suite.interactions.AssertExpectations(suite.T())
	suite.store.AssertExpectations(suite.T())
}

func TestMCPHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(MCPHandlersTestSuite))
}

func (suite *MCPHandlersTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (suite *MCPHandlersTestSuite) TestChat_Success() {
	id := uuid.New()
	suite.broker.On("ProcessMessage", mock.Anything, suite.user, "Olá", map[string]any{"page": "home"}).
		Return(&broker.Result{Success: true, Response: "Oi!", Model: "llama3", TenantID: 1, InteractionID: &id}, nil)

	rec := suite.do(http.MethodPost, "/v1/mcp/chat", `{"message":"Olá","context":{"page":"home"}}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	body := decode(suite.T(), rec)
	assert.Equal(suite.T(), true, body["success"])
	assert.Equal(suite.T(), float64(1), body["company_id"])
	response := body["response"].(map[string]any)
	assert.Equal(suite.T(), "Oi!", response["response"])
	assert.Equal(suite.T(), id.String(), response["interaction_id"])
}

func (suite *MCPHandlersTestSuite) TestChat_InferenceFailureIsGeneric500() {
	suite.broker.On("ProcessMessage", mock.Anything, suite.user, "Olá", map[string]any(nil)).
		Return(&broker.Result{
			Success: false,
			Error:   common.MsgProcessingError,
			Cause:   &common.InferenceFailure{Endpoint: "http://ollama:11434", StatusCode: 500},
		}, nil)

	rec := suite.do(http.MethodPost, "/v1/mcp/chat", `{"message":"Olá"}`)
	assert.Equal(suite.T(), http.StatusInternalServerError, rec.Code)

	body := decode(suite.T(), rec)
	assert.Equal(suite.T(), false, body["success"])
	assert.Equal(suite.T(), common.MsgProcessingError, body["error"])
	assert.NotContains(suite.T(), rec.Body.String(), "ollama:11434")
}

func (suite *MCPHandlersTestSuite) TestChat_ValidationIs422() {
	message := strings.Repeat("a", 2001)
	suite.broker.On("ProcessMessage", mock.Anything, suite.user, message, map[string]any(nil)).
		Return(nil, common.NewValidationError("message", "must be at most 2000 characters"))

	rec := suite.do(http.MethodPost, "/v1/mcp/chat", `{"message":"`+message+`"}`)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), `"message"`)
}

func (suite *MCPHandlersTestSuite) TestChat_AccessDeniedIs403() {
	suite.broker.On("ProcessMessage", mock.Anything, suite.user, "Olá", map[string]any(nil)).
		Return(nil, common.NewAccessDenied(models.MsgCompanyInactive, "inactive"))

	rec := suite.do(http.MethodPost, "/v1/mcp/chat", `{"message":"Olá"}`)
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), models.MsgCompanyInactive)
}

func (suite *MCPHandlersTestSuite) TestChat_MalformedBodyIs400() {
	rec := suite.do(http.MethodPost, "/v1/mcp/chat", `{"message":`)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *MCPHandlersTestSuite) TestChat_WrongFieldTypesAre422() {
	cases := map[string]string{
		"message": `{"message":123}`,
		"context": `{"message":"Olá","context":"acme"}`,
	}
	for field, payload := range cases {
		rec := suite.do(http.MethodPost, "/v1/mcp/chat", payload)
		require.Equal(suite.T(), http.StatusUnprocessableEntity, rec.Code, payload)

		body := decode(suite.T(), rec)
		details := body["error"].(map[string]interface{})["details"].(map[string]interface{})
		assert.Contains(suite.T(), details, field)
	}
	suite.broker.AssertNotCalled(suite.T(), "ProcessMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MCPHandlersTestSuite) TestStatus() {
	cfg := models.DefaultAIConfig(1)
	cfg.ModelName = "mistral"
	suite.configs.On("GetConfig", mock.Anything, int64(1)).Return(cfg, nil)

	rec := suite.do(http.MethodGet, "/v1/mcp/status", "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	body := decode(suite.T(), rec)
	assert.Equal(suite.T(), "active", body["status"])
	assert.Equal(suite.T(), "mistral", body["model"])
	assert.Equal(suite.T(), "1.0.0", body["version"])
	assert.NotEmpty(suite.T(), body["timestamp"])
}

func (suite *MCPHandlersTestSuite) TestGetSettings_Default() {
	suite.configs.On("GetConfig", mock.Anything, int64(1)).Return(models.DefaultAIConfig(1), nil)

	rec := suite.do(http.MethodGet, "/v1/mcp/settings", "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	body := decode(suite.T(), rec)
	assert.Equal(suite.T(), models.DefaultModelName, body["ai_model"])
	assert.Equal(suite.T(), float64(4000), body["max_context_length"])
	assert.Len(suite.T(), body["allowed_tools"], 4)
}

func (suite *MCPHandlersTestSuite) TestUpdateSettings() {
	expected := &models.AIConfigUpdate{
		ModelName:          "mistral",
		MaxContextLength:   6000,
		CustomInstructions: "Be brief",
		AllowedTools:       []string{"get_users"},
	}
	updated := models.DefaultAIConfig(1)
	updated.ModelName = "mistral"
	updated.MaxContextLength = 6000
	suite.configs.On("UpdateConfig", mock.Anything, int64(1), expected).Return(updated, nil)

	rec := suite.do(http.MethodPost, "/v1/mcp/settings",
		`{"ai_model":"mistral","max_context_length":6000,"custom_instructions":"Be brief","allowed_tools":["get_users"]}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "mistral", decode(suite.T(), rec)["ai_model"])
}

func (suite *MCPHandlersTestSuite) TestUpdateSettings_MissingModelIs422() {
	rec := suite.do(http.MethodPost, "/v1/mcp/settings", `{"max_context_length":6000}`)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "ai_model")
}

func (suite *MCPHandlersTestSuite) TestUpdateSettings_OutOfBoundsIs422() {
	suite.configs.On("UpdateConfig", mock.Anything, int64(1), mock.Anything).
		Return(nil, common.NewValidationError("max_context_length", "must be between 1000 and 8000"))

	rec := suite.do(http.MethodPost, "/v1/mcp/settings", `{"ai_model":"llama3","max_context_length":9000}`)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "max_context_length")
}

func (suite *MCPHandlersTestSuite) TestListInteractions_ClampsLimit() {
	suite.interactions.On("ListForUser", mock.Anything, suite.scope, &models.InteractionFilters{Limit: 100}).
		Return([]*models.InteractionRecord{}, nil)

	rec := suite.do(http.MethodGet, "/v1/mcp/interactions?limit=500", "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	body := decode(suite.T(), rec)
	assert.Equal(suite.T(), float64(100), body["limit"])
	assert.Equal(suite.T(), []any{}, body["interactions"])
}

func (suite *MCPHandlersTestSuite) TestListInteractions_DefaultLimit() {
	suite.interactions.On("ListForUser", mock.Anything, suite.scope, &models.InteractionFilters{Limit: 20}).
		Return([]*models.InteractionRecord{{ID: uuid.New(), TenantID: 1, Message: "Olá"}}, nil)

	rec := suite.do(http.MethodGet, "/v1/mcp/interactions", "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), float64(1), decode(suite.T(), rec)["count"])
}

func (suite *MCPHandlersTestSuite) TestListInteractions_BadLimitIs422() {
	rec := suite.do(http.MethodGet, "/v1/mcp/interactions?limit=abc", "")
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rec.Code)
}

func (suite *MCPHandlersTestSuite) TestListTools() {
	suite.configs.On("GetConfig", mock.Anything, int64(1)).Return(models.DefaultAIConfig(1), nil)

	rec := suite.do(http.MethodGet, "/v1/mcp/tools", "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	body := decode(suite.T(), rec)
	assert.Len(suite.T(), body["tools"], 4)
}

func (suite *MCPHandlersTestSuite) TestExecuteTool() {
	suite.configs.On("GetConfig", mock.Anything, int64(1)).Return(models.DefaultAIConfig(1), nil)
	suite.store.On("ListUsers", mock.Anything, int64(1), "", 5).Return([]*models.UserSummary{{ID: 7, Name: "Ana"}}, nil)

	rec := suite.do(http.MethodPost, "/v1/mcp/tools/get_users", `{"parameters":{"limit":5}}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	body := decode(suite.T(), rec)
	assert.Equal(suite.T(), "get_users", body["tool"])
	assert.Equal(suite.T(), float64(1), body["company_id"])
}

func (suite *MCPHandlersTestSuite) TestExecuteTool_NotAllowedIs403() {
	suite.configs.On("GetConfig", mock.Anything, int64(1)).Return(models.DefaultAIConfig(1), nil)

	rec := suite.do(http.MethodPost, "/v1/mcp/tools/get_orders", "")
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), tools.MsgToolNotAllowed)
}

func (suite *MCPHandlersTestSuite) TestExecuteTool_StoreFailureIs500() {
	suite.configs.On("GetConfig", mock.Anything, int64(1)).Return(models.DefaultAIConfig(1), nil)
	suite.store.On("ListUsers", mock.Anything, int64(1), "", 10).Return([]*models.UserSummary(nil), errors.New("db down"))

	rec := suite.do(http.MethodPost, "/v1/mcp/tools/get_users", `{}`)
	assert.Equal(suite.T(), http.StatusInternalServerError, rec.Code)
	assert.NotContains(suite.T(), rec.Body.String(), "db down")
}

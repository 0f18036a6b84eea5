package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	TenantIDKey    contextKey = "tenant_id"
	UserKey        contextKey = "user"
	TenantScopeKey contextKey = "tenant_scope"
)

// Messages returned to clients. Causes are logged, never sent.
const (
	MsgUnauthorized    = "Unauthorized access"
	MsgInternalError   = "An internal error occurred"
	MsgProcessingError = "Failed to process message"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a 422 naming every rejected field
func SendValidationError(c echo.Context, fields map[string]string) error {
	return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", fields))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendBindError answers a body that could not be bound. A field holding the
// wrong JSON type is a validation failure; anything else is malformed.
func SendBindError(c echo.Context, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return SendValidationError(c, map[string]string{typeErr.Field: "has an invalid type"})
	}
	return SendClientError(c, "Invalid request body")
}

// SendServerError sends a server error response
func SendServerError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", MsgInternalError, nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", MsgUnauthorized, nil))
}

// SendForbiddenError sends the user-safe message of an access denial
func SendForbiddenError(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, CreateErrorResponse("ACCESS_DENIED", message, nil))
}

// SendError maps the error taxonomy onto HTTP responses. Anything that is
// not a validation or access error becomes a generic 500.
func SendError(c echo.Context, err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return SendValidationError(c, validationErr.Fields)
	}
	var deniedErr *AccessDeniedError
	if errors.As(err, &deniedErr) {
		return SendForbiddenError(c, deniedErr.Message)
	}
	return SendServerError(c)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetTenantIDFromContext extracts the tenant ID from the request context
func GetTenantIDFromContext(ctx context.Context) (int64, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(int64)
	return tenantID, ok
}

// ValidatePaginationLimit clamps a requested page size
func ValidatePaginationLimit(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// NormalizeStrings trims entries and drops blanks and duplicates, keeping order
func NormalizeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

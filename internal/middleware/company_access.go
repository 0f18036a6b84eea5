package middleware

import (
	"context"
	"errors"

	"companymcp/internal/common"
	"companymcp/internal/logger"
	"companymcp/internal/models"
	"companymcp/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const MsgAdminRequired = "Administrator privileges required"

// CompanyAccess rejects users without an active company
type CompanyAccess struct {
	tenants services.TenantService
}

func NewCompanyAccess(tenants services.TenantService) *CompanyAccess {
	return &CompanyAccess{tenants: tenants}
}

// EnsureCompanyAccess builds the caller's tenant scope or answers 403. It
// must run after LoadUser.
func (m *CompanyAccess) EnsureCompanyAccess() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			scope, err := m.tenants.Scope(c.Request().Context(), user)
			if err != nil {
				var denied *common.AccessDeniedError
				if errors.As(err, &denied) {
					logger.FromEcho(c).Info("company access denied",
						zap.Int64("user_id", user.ID),
						zap.String("reason", denied.Reason),
					)
					return common.SendForbiddenError(c, denied.Message)
				}
				logger.FromEcho(c).Error("failed to resolve tenant scope", zap.Int64("user_id", user.ID), zap.Error(err))
				return common.SendServerError(c)
			}

			c.Set(string(common.TenantScopeKey), scope)
			ctx := context.WithValue(c.Request().Context(), common.TenantIDKey, scope.TenantID())
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireAdmin answers 403 unless the user carries the admin flag
func (m *CompanyAccess) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if !user.IsAdmin {
				return common.SendForbiddenError(c, MsgAdminRequired)
			}
			return next(c)
		}
	}
}

// CurrentScope returns the scope set by EnsureCompanyAccess
func CurrentScope(c echo.Context) (models.TenantScope, bool) {
	scope, ok := c.Get(string(common.TenantScopeKey)).(models.TenantScope)
	return scope, ok && scope.Valid()
}

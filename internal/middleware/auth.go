package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"companymcp/internal/common"
	"companymcp/internal/config"
	"companymcp/internal/logger"
	"companymcp/internal/models"
	"companymcp/internal/repositories"
	"companymcp/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const tokenContextKey = "token"

// Auth validates bearer tokens and loads the user they name
type Auth struct {
	secret  []byte
	issuer  string
	jwks    *keyfunc.JWKS
	tenants services.TenantService
}

// NewAuth uses the JWKS endpoint when one is configured and the shared
// secret otherwise
func NewAuth(cfg config.AuthConfig, tenants services.TenantService) (*Auth, error) {
	a := &Auth{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, tenants: tenants}

	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.GetLogger().Warn("jwks refresh failed", zap.Error(err))
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load jwks: %w", err)
		}
		a.jwks = jwks
	}
	return a, nil
}

// Close stops the JWKS refresh goroutine
func (a *Auth) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// JWT rejects requests without a valid bearer token
func (a *Auth) JWT() echo.MiddlewareFunc {
	cfg := echojwt.Config{
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(jwt.RegisteredClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.FromEcho(c).Debug("bearer token rejected", zap.Error(err))
			return common.SendUnauthorizedError(c)
		},
	}
	if a.jwks != nil {
		cfg.KeyFunc = a.jwks.Keyfunc
	} else {
		cfg.SigningKey = a.secret
		cfg.SigningMethod = jwt.SigningMethodHS256.Alg()
	}
	return echojwt.WithConfig(cfg)
}

// LoadUser resolves the token subject into a user. It must run after JWT.
func (a *Auth) LoadUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(*jwt.RegisteredClaims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if a.issuer != "" && claims.Issuer != a.issuer {
				log.Debug("token issuer mismatch", zap.String("issuer", claims.Issuer))
				return common.SendUnauthorizedError(c)
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				return common.SendUnauthorizedError(c)
			}

			user, err := a.tenants.GetUser(c.Request().Context(), userID)
			if errors.Is(err, repositories.ErrNotFound) {
				return common.SendUnauthorizedError(c)
			}
			if err != nil {
				log.Error("failed to load user", zap.Int64("user_id", userID), zap.Error(err))
				return common.SendServerError(c)
			}

			SetUser(c, user)
			return next(c)
		}
	}
}

// SetUser stores the authenticated user on the request
func SetUser(c echo.Context, user *models.User) {
	c.Set(string(common.UserKey), user)
	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, user.ID)
	ctx = logger.WithContext(ctx, logger.FromEcho(c).With(zap.Int64("user_id", user.ID)))
	c.SetRequest(c.Request().WithContext(ctx))
}

// CurrentUser returns the user loaded by LoadUser
func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(string(common.UserKey)).(*models.User)
	return user, ok && user != nil
}

package middleware

import (
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

// APIVersion describes one published API version
type APIVersion struct {
	Version string `json:"version"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

var versionPrefix = regexp.MustCompile(`^/(v[0-9]+)(/|$)`)

// VersionMiddleware tags responses with the API version they were served by
type VersionMiddleware struct {
	supportedVersions map[string]APIVersion
	defaultVersion    string
	appVersion        string
}

// NewVersionMiddleware registers v1 as the current version
func NewVersionMiddleware(appVersion string) *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]APIVersion{
			"v1": {Version: "v1", Status: "active", Message: "Current stable API version"},
		},
		defaultVersion: "v1",
		appVersion:     appVersion,
	}
}

// VersionHeader adds the version headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version)
			if vm.appVersion != "" {
				h.Set("X-App-Version", vm.appVersion)
			}

			if ver, exists := vm.supportedVersions[version]; exists {
				h.Set("X-API-Message", ver.Message)
			}
			return next(c)
		}
	}
}

// VersionRoute creates a group under /<version> carrying its headers
func (vm *VersionMiddleware) VersionRoute(e *echo.Echo, version string) *echo.Group {
	group := e.Group("/" + version)
	group.Use(vm.VersionHeader(version))
	return group
}

// APIVersionResolver rejects unknown version prefixes with 404
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := vm.defaultVersion
			if m := versionPrefix.FindStringSubmatch(c.Request().URL.Path); m != nil {
				if _, supported := vm.supportedVersions[m[1]]; !supported {
					return c.JSON(http.StatusNotFound, map[string]string{
						"error":              "Unsupported API version",
						"supported_versions": strings.Join(vm.SupportedVersions(), ", "),
					})
				}
				version = m[1]
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

// SupportedVersions lists versions that still answer requests
func (vm *VersionMiddleware) SupportedVersions() []string {
	var versions []string
	for version, info := range vm.supportedVersions {
		if info.Status == "active" {
			versions = append(versions, version)
		}
	}
	sort.Strings(versions)
	return versions
}

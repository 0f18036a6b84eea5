package repositories

import (
	"companymcp/internal/models"
)

func stringPtr(s string) *string {
	return &s
}

func int64Ptr(v int64) *int64 {
	return &v
}

func testScope(userID, tenantID int64) models.TenantScope {
	scope, err := models.NewTenantScope(
		&models.User{ID: userID, TenantID: int64Ptr(tenantID), Name: "Test User"},
		&models.Tenant{ID: tenantID, Name: "Test Tenant", Active: true},
	)
	if err != nil {
		panic(err)
	}
	return scope
}

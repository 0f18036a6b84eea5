package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"companymcp/internal/models"
	"companymcp/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TestDB holds the database connection for integration tests
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL, skipping the test when it is unset
// or running in short mode
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := database.NewPool(context.Background(), connString, 4, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestTenant inserts an active tenant and returns its id
func SetupTestTenant(t *testing.T, db *TestDB, name string) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO tenants (name, active, settings, created_at, updated_at) VALUES ($1, TRUE, '{}', NOW(), NOW()) RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}
	return id
}

// SetupTestUser inserts a user belonging to tenantID
func SetupTestUser(t *testing.T, db *TestDB, tenantID int64, name string) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO users (tenant_id, name, email, is_admin, created_at) VALUES ($1, $2, $3, FALSE, NOW()) RETURNING id`,
		tenantID, name, name+"@example.test",
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}

// NewUser builds a user of tenantID. A nil tenantID gives a user without a company.
func NewUser(id int64, tenantID *int64, permissions ...string) *models.User {
	if permissions == nil {
		permissions = []string{}
	}
	return &models.User{
		ID:          id,
		TenantID:    tenantID,
		Name:        fmt.Sprintf("User %d", id),
		Email:       "user@example.test",
		Permissions: permissions,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewTenant builds a tenant fixture
func NewTenant(id int64, name string, active bool) *models.Tenant {
	return &models.Tenant{
		ID:        id,
		Name:      name,
		Active:    active,
		Settings:  models.JSONB{},
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// GenerateCall is one request received by a FakeInference server
type GenerateCall struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// FakeInference is an httptest server speaking the inference server's
// /api/tags and /api/generate endpoints
type FakeInference struct {
	*httptest.Server

	mu     sync.Mutex
	status int
	reply  string
	models []string
	calls  []GenerateCall
}

// NewFakeInference starts a server answering every generate call with reply
func NewFakeInference(t *testing.T, reply string) *FakeInference {
	t.Helper()

	f := &FakeInference{status: http.StatusOK, reply: reply, models: []string{"llama3:latest"}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", f.handleTags)
	mux.HandleFunc("/api/generate", f.handleGenerate)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// FailWith makes generate calls answer with status
func (f *FakeInference) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Calls returns the generate requests received so far
func (f *FakeInference) Calls() []GenerateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]GenerateCall(nil), f.calls...)
}

func (f *FakeInference) handleTags(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	names := append([]string(nil), f.models...)
	f.mu.Unlock()

	type model struct {
		Name string `json:"name"`
	}
	payload := struct {
		Models []model `json:"models"`
	}{}
	for _, n := range names {
		payload.Models = append(payload.Models, model{Name: n})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (f *FakeInference) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var call GenerateCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"model failure"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":    call.Model,
		"response": reply,
		"done":     true,
	})
}

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"companymcp/internal/caching"
	"companymcp/internal/inference"
	"companymcp/testhelpers"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (caching.CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return caching.NewCacheServiceFromClient(client), mr
}

func serve(t *testing.T, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestLivenessCheck(t *testing.T) {
	h := NewHealthHandlers(fakePinger{}, nil, nil, "", nil, nil, 0, "1.0.0")

	rec := serve(t, h.LivenessCheck)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alive"`)
}

func TestReadinessCheck_AllHealthy(t *testing.T) {
	cache, _ := newCache(t)
	storage := &MockMinioService{}
	storage.On("Ping", mock.Anything, "interactions").Return(nil)

	h := NewHealthHandlers(fakePinger{}, cache, storage, "interactions", nil, nil, 0, "1.0.0")

	rec := serve(t, h.ReadinessCheck)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]any{"database": "healthy", "cache": "healthy", "storage": "healthy"}, body["services"])
	storage.AssertExpectations(t)
}

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	cache, _ := newCache(t)
	h := NewHealthHandlers(fakePinger{err: errors.New("connection refused")}, cache, nil, "", nil, nil, 0, "1.0.0")

	rec := serve(t, h.ReadinessCheck)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "not_ready", body["status"])
	services := body["services"].(map[string]any)
	assert.Equal(t, "unhealthy", services["database"])
	assert.Equal(t, "disabled", services["storage"])
}

func TestReadinessCheck_CacheDown(t *testing.T) {
	cache, mr := newCache(t)
	mr.Close()
	h := NewHealthHandlers(fakePinger{}, cache, nil, "", nil, nil, 0, "1.0.0")

	rec := serve(t, h.ReadinessCheck)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decode(t, rec)["services"].(map[string]any)["cache"])
}

func TestReadinessCheck_StorageDownStaysReady(t *testing.T) {
	storage := &MockMinioService{}
	storage.On("Ping", mock.Anything, "interactions").Return(errors.New("bucket missing"))
	h := NewHealthHandlers(fakePinger{}, nil, storage, "interactions", nil, nil, 0, "1.0.0")

	rec := serve(t, h.ReadinessCheck)
	require.Equal(t, http.StatusOK, rec.Code)

	services := decode(t, rec)["services"].(map[string]any)
	assert.Equal(t, "unhealthy", services["storage"])
	assert.Equal(t, "disabled", services["cache"])
}

func TestInferenceHealth_Online(t *testing.T) {
	fake := testhelpers.NewFakeInference(t, "ok")
	resolver, err := inference.NewResolver([]string{fake.URL}, "/api/tags", time.Second)
	require.NoError(t, err)

	h := NewHealthHandlers(fakePinger{}, nil, nil, "", resolver, inference.NewClient(time.Second), 0, "1.0.0")

	rec := serve(t, h.InferenceHealth)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "online", body["ollama_status"])
	assert.Equal(t, fake.URL, body["url"])
	assert.Equal(t, []any{"llama3:latest"}, body["models_available"])
}

func TestInferenceHealth_OfflineUsesConfiguredStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	down := srv.URL
	srv.Close()

	resolver, err := inference.NewResolver([]string{down}, "/api/tags", 200*time.Millisecond)
	require.NoError(t, err)

	for _, tc := range []struct {
		configured int
		expected   int
	}{
		{0, http.StatusServiceUnavailable},
		{http.StatusOK, http.StatusOK},
	} {
		h := NewHealthHandlers(fakePinger{}, nil, nil, "", resolver, inference.NewClient(200*time.Millisecond), tc.configured, "1.0.0")

		rec := serve(t, h.InferenceHealth)
		assert.Equal(t, tc.expected, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, "offline", body["ollama_status"])
		assert.Equal(t, down, body["url"])
		assert.Equal(t, []any{}, body["models_available"])
	}
}

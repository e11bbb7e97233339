// AngelaMos | 2026
// handler_test.go

package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsfinder/admin-console/internal/health"
)

func healthy(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func serve(h *health.Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadinessLifecycle(t *testing.T) {
	h := health.NewHandler(health.Check{Name: "redis", Checker: health.CheckerFunc(healthy)})

	assert.Equal(t, http.StatusOK, serve(h, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/readyz").Code)

	h.SetReady(true)
	rec := serve(h, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp health.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Checks, 1)
	assert.Equal(t, "redis", resp.Checks[0].Name)

	h.SetShutdown(true)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/readyz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/livez").Code)
}

func TestReadinessDegraded(t *testing.T) {
	h := health.NewHandler(
		health.Check{Name: "redis", Checker: health.CheckerFunc(healthy)},
		health.Check{Name: "database", Checker: health.CheckerFunc(failing)},
		health.Check{Name: "ledger"},
	)
	h.SetReady(true)

	rec := serve(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp health.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)

	byName := map[string]health.HealthCheck{}
	for _, c := range resp.Checks {
		byName[c.Name] = c
	}
	assert.True(t, byName["redis"].Healthy)
	assert.False(t, byName["database"].Healthy)
	assert.Equal(t, "ping failed", byName["database"].Message)
	assert.False(t, byName["ledger"].Healthy)
}

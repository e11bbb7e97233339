// AngelaMos | 2026
// handler_test.go

package admin_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsfinder/admin-console/internal/admin"
	"github.com/mailsfinder/admin-console/internal/bootstrap"
	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/middleware"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

type tokenTable map[string]*session.Session

func (t tokenTable) Authenticate(_ context.Context, token string) (*session.Session, error) {
	if s, ok := t[token]; ok {
		return s, nil
	}
	return nil, core.ErrTokenInvalid
}

func newRouter(cfg admin.HandlerConfig) http.Handler {
	tokens := tokenTable{
		"root": session.New(session.Admin{ID: "r", Role: rbac.RoleSuperadmin}),
		"pm":   session.New(session.Admin{ID: "p", Role: rbac.RoleProductManager}),
	}

	r := chi.NewRouter()
	admin.NewHandler(cfg).RegisterRoutes(r, middleware.Authenticator(tokens), middleware.RequireSuperadmin)
	return r
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func demoResult() bootstrap.Result {
	return bootstrap.Result{
		Source:   bootstrap.SourceDemo,
		Fallback: true,
		Warning:  "Using demo data because backend is not reachable.",
		Counts:   ledger.Counts{Users: 3},
	}
}

func TestSystemStatsSuperadminOnly(t *testing.T) {
	h := newRouter(admin.HandlerConfig{})

	assert.Equal(t, http.StatusForbidden, get(h, "/admin/stats", "pm").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/admin/stats", "bogus").Code)
}

func TestSystemStatsWithoutDatabase(t *testing.T) {
	h := newRouter(admin.HandlerConfig{
		RedisStats:  func() *redis.PoolStats { return &redis.PoolStats{Hits: 7, TotalConns: 2} },
		RedisPing:   func(context.Context) error { return nil },
		LedgerStats: func() ledger.Counts { return ledger.Counts{Users: 3, Audits: 1} },
		Bootstrap:   demoResult,
	})

	rec := get(h, "/admin/stats", "root")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data admin.SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Data.Database)
	assert.True(t, resp.Data.Redis.Healthy)
	require.NotNil(t, resp.Data.Redis.Stats)
	assert.Equal(t, uint32(7), resp.Data.Redis.Stats.Hits)
	assert.Equal(t, 3, resp.Data.Ledger.Counts.Users)
	assert.True(t, resp.Data.Ledger.Bootstrap.Fallback)
	assert.NotEmpty(t, resp.Data.Runtime.GoVersion)
}

func TestSystemStatsWithDatabase(t *testing.T) {
	h := newRouter(admin.HandlerConfig{
		RedisPing: func(context.Context) error { return errors.New("down") },
		DBPing:    func(context.Context) error { return nil },
		DBStats:   func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 5, InUse: 1} },
	})

	rec := get(h, "/admin/stats", "root")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data admin.SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Database)
	assert.True(t, resp.Data.Database.Healthy)
	assert.Equal(t, 5, resp.Data.Database.Stats.MaxOpenConnections)
	assert.False(t, resp.Data.Redis.Healthy)

	assert.Equal(t, http.StatusOK, get(h, "/admin/stats/ledger", "root").Code)
	assert.Equal(t, http.StatusOK, get(h, "/admin/stats/runtime", "root").Code)
	assert.Equal(t, http.StatusOK, get(h, "/admin/stats/db", "root").Code)
}

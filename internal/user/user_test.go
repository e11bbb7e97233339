// AngelaMos | 2026
// user_test.go

package user_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/middleware"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
	"github.com/mailsfinder/admin-console/internal/user"
)

var epoch = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type tokenTable map[string]*session.Session

func (t tokenTable) Authenticate(_ context.Context, token string) (*session.Session, error) {
	if s, ok := t[token]; ok {
		return s, nil
	}
	return nil, core.ErrTokenInvalid
}

func sessionFor(role rbac.Role) *session.Session {
	return session.New(session.Admin{ID: "admin-" + string(role), Role: role})
}

func asRole(role rbac.Role) context.Context {
	return session.WithSession(context.Background(), sessionFor(role))
}

func newStore(t *testing.T) *ledger.Store {
	t.Helper()

	sealer, err := core.NewSecretSealer("user-test-secret-0123456789")
	require.NoError(t, err)

	store := ledger.NewStore(sealer, ledger.WithClock(clock.NewFake(epoch)))
	store.SetAll(ledger.PartialSnapshot{
		Users: []ledger.User{
			{
				ID:                 "u1",
				FullName:           "Ada Lovelace",
				Email:              "ada@example.com",
				Country:            "GB",
				Plan:               ledger.PlanPro,
				SubscriptionStatus: ledger.SubscriptionActive,
				EmailVerified:      true,
				CreditsFind:        100,
				CreditsVerify:      50,
				CreditsTotal:       150,
				CreatedAt:          epoch.AddDate(0, -2, 0),
			},
			{
				ID:                 "u2",
				FullName:           "Grace Hopper",
				Email:              "grace@example.com",
				Country:            "US",
				Plan:               ledger.PlanFree,
				SubscriptionStatus: ledger.SubscriptionNone,
				CreatedAt:          epoch.AddDate(0, 0, -5),
			},
			{
				ID:                 "u3",
				FullName:           "Alan Turing",
				Email:              "alan@example.org",
				Country:            "gb",
				Plan:               ledger.PlanAgency,
				SubscriptionStatus: ledger.SubscriptionPastDue,
				EmailVerified:      true,
				CreatedAt:          epoch.AddDate(0, 0, -1),
			},
		},
		Purchases: []ledger.Purchase{
			{ID: "p1", UserID: "u1", PlanName: ledger.PlanPro, Status: ledger.PurchasePaid, Date: epoch, Amount: 49},
		},
	})
	return store
}

func newService(t *testing.T) (*user.Service, *ledger.Store) {
	t.Helper()

	store := newStore(t)
	return user.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestListUsersFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := asRole(rbac.RoleSupport)
	verified := true

	tests := []struct {
		name   string
		params user.ListUsersParams
		want   []string
	}{
		{"all", user.ListUsersParams{}, []string{"u1", "u2", "u3"}},
		{"plan", user.ListUsersParams{Plan: ledger.PlanFree}, []string{"u2"}},
		{"verified", user.ListUsersParams{EmailVerified: &verified}, []string{"u1", "u3"}},
		{"country folds case", user.ListUsersParams{Country: "GB"}, []string{"u1", "u3"}},
		{"search email", user.ListUsersParams{Search: "EXAMPLE.ORG"}, []string{"u3"}},
		{"search name", user.ListUsersParams{Search: "hopper"}, []string{"u2"}},
		{"status", user.ListUsersParams{SubscriptionStatus: ledger.SubscriptionPastDue}, []string{"u3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := svc.ListUsers(ctx, tt.params)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)

			ids := make([]string, 0, len(users))
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestListUsersCreatedBoundsAreExclusive(t *testing.T) {
	svc, _ := newService(t)

	from := epoch.AddDate(0, 0, -5)
	users, total, err := svc.ListUsers(asRole(rbac.RoleSupport), user.ListUsersParams{CreatedFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "u3", users[0].ID)
}

func TestListUsersPagination(t *testing.T) {
	svc, _ := newService(t)

	users, total, err := svc.ListUsers(asRole(rbac.RoleSupport), user.ListUsersParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, users, 1)
	assert.Equal(t, "u3", users[0].ID)

	users, _, err = svc.ListUsers(asRole(rbac.RoleSupport), user.ListUsersParams{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestListUsersHugePageIsEmpty(t *testing.T) {
	svc, _ := newService(t)

	params := user.ListUsersParams{Page: 2e17, PageSize: 50}
	params.Normalize()
	assert.GreaterOrEqual(t, params.Offset(), 0)

	var users []ledger.User
	require.NotPanics(t, func() {
		var err error
		users, _, err = svc.ListUsers(asRole(rbac.RoleSupport), user.ListUsersParams{Page: 2e17, PageSize: 50})
		require.NoError(t, err)
	})
	assert.Empty(t, users)

	h, _ := newRouter(t)
	rec := call(h, http.MethodGet, "/users?page=200000000000000000", "pm", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdjustCredits(t *testing.T) {
	svc, store := newService(t)
	ctx := asRole(rbac.RoleSupport)

	u, row, err := svc.AdjustCredits(ctx, "u1", 25, "goodwill")
	require.NoError(t, err)
	assert.Equal(t, int64(125), u.CreditsFind)
	assert.Equal(t, int64(175), u.CreditsTotal)
	assert.Equal(t, ledger.ActionCreditsAdjust, row.Action)
	assert.Equal(t, "admin-support", row.AdminID)
	assert.Equal(t, "goodwill", row.Reason)

	u, _, err = svc.AdjustCredits(ctx, "u1", -10, "correction")
	require.NoError(t, err)
	assert.Equal(t, int64(60), u.CreditsVerify)
	assert.Equal(t, int64(185), u.CreditsTotal)

	_, _, err = svc.AdjustCredits(ctx, "nope", 5, "x")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Len(t, store.Audits(), 2)
}

func TestAdjustCreditsDenied(t *testing.T) {
	svc, store := newService(t)

	_, _, err := svc.AdjustCredits(asRole(rbac.RoleProductManager), "u1", 25, "nope")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, _, err = svc.AdjustCredits(context.Background(), "u1", 25, "nope")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	u, err := store.User("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(150), u.CreditsTotal)
	assert.Empty(t, store.Audits())
}

func TestBulkAdjustCredits(t *testing.T) {
	svc, store := newService(t)

	resp, err := svc.BulkAdjustCredits(asRole(rbac.RoleSuperadmin), []string{"u1", "ghost", "u2"}, 10, "promo")
	require.NoError(t, err)
	assert.Len(t, resp.Updated, 2)
	assert.Len(t, resp.Audits, 2)
	assert.Equal(t, []string{"ghost"}, resp.Missing)
	assert.Len(t, store.Audits(), 2)
}

func TestWritesRequireUsersWrite(t *testing.T) {
	svc, store := newService(t)
	support := asRole(rbac.RoleSupport)

	_, err := svc.UpdateNotes(support, "u1", "vip")
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(support, "u1"), core.ErrForbidden)

	root := asRole(rbac.RoleSuperadmin)
	u, err := svc.UpdateNotes(root, "u1", "vip")
	require.NoError(t, err)
	assert.Equal(t, "vip", u.AdminNotes)

	u, err = svc.UpdatePlan(root, "u2", user.UpdatePlanRequest{Plan: "pro", SubscriptionStatus: "active"})
	require.NoError(t, err)
	assert.Equal(t, ledger.PlanPro, u.Plan)

	require.NoError(t, svc.DeleteUser(root, "u3"))
	assert.ErrorIs(t, svc.DeleteUser(root, "u3"), core.ErrNotFound)
	assert.Len(t, store.Users(), 2)
}

func TestGetUser(t *testing.T) {
	svc, _ := newService(t)

	detail, err := svc.GetUser(asRole(rbac.RoleProductManager), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", detail.User.Email)
	assert.Len(t, detail.Purchases, 1)
	assert.Empty(t, detail.APIKeys)

	_, err = svc.GetUser(asRole(rbac.RoleProductManager), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func newRouter(t *testing.T) (http.Handler, *ledger.Store) {
	t.Helper()

	svc, store := newService(t)
	tokens := tokenTable{
		"root":    sessionFor(rbac.RoleSuperadmin),
		"pm":      sessionFor(rbac.RoleProductManager),
		"support": sessionFor(rbac.RoleSupport),
	}

	r := chi.NewRouter()
	user.NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(tokens))
	return r, store
}

func call(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerListUsers(t *testing.T) {
	h, _ := newRouter(t)

	rec := call(h, http.MethodGet, "/users?plan=pro&page_size=10", "pm", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []ledger.User `json:"data"`
		Meta core.ListMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "u1", resp.Data[0].ID)
	assert.Equal(t, 1, resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.PageSize)

	assert.Equal(t, http.StatusBadRequest, call(h, http.MethodGet, "/users?plan=gold", "pm", "").Code)
	assert.Equal(t, http.StatusBadRequest, call(h, http.MethodGet, "/users?email_verified=maybe", "pm", "").Code)
	assert.Equal(t, http.StatusBadRequest, call(h, http.MethodGet, "/users?created_from=soon", "pm", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, http.MethodGet, "/users", "", "").Code)
}

func TestHandlerAdjustCredits(t *testing.T) {
	h, store := newRouter(t)

	rec := call(h, http.MethodPost, "/users/u1/credits", "pm", `{"delta":5,"reason":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, store.Audits())

	rec = call(h, http.MethodPost, "/users/u1/credits", "support", `{"delta":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h, http.MethodPost, "/users/ghost/credits", "support", `{"delta":5,"reason":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(h, http.MethodPost, "/users/u1/credits", "support", `{"delta":5,"reason":"refund"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data user.CreditsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(155), resp.Data.User.CreditsTotal)
	assert.Equal(t, "refund", resp.Data.Audit.Reason)
	assert.Len(t, store.Audits(), 1)
}

func TestHandlerBulkAndWrites(t *testing.T) {
	h, store := newRouter(t)

	rec := call(h, http.MethodPost, "/users/credits/bulk", "support", `{"user_ids":[],"delta":1,"reason":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h, http.MethodPost, "/users/credits/bulk", "support", `{"user_ids":["u1","zz"],"delta":1,"reason":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"missing":["zz"]`)

	assert.Equal(t, http.StatusForbidden, call(h, http.MethodPut, "/users/u1/notes", "support", `{"notes":"n"}`).Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodPut, "/users/u1/notes", "root", `{"notes":"n"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		call(h, http.MethodPut, "/users/u1/plan", "root", `{"plan":"gold","subscription_status":"active"}`).Code)
	assert.Equal(t, http.StatusNoContent, call(h, http.MethodDelete, "/users/u2", "root", "").Code)
	assert.Equal(t, http.StatusNotFound, call(h, http.MethodGet, "/users/u2", "root", "").Code)
	assert.Len(t, store.Users(), 2)
}

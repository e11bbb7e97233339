// AngelaMos | 2026
// session.go

package session

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/rbac"
)

type contextKey string

const sessionKey contextKey = "admin_session"

type Admin struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  rbac.Role `json:"role"`
}

// Session is an authenticated admin plus the scopes derived from its role.
type Session struct {
	Admin     Admin
	Scopes    []rbac.Scope
	TokenID   string
	ExpiresAt time.Time
}

func New(admin Admin) *Session {
	return &Session{
		Admin:  admin,
		Scopes: rbac.ScopesForRole(admin.Role),
	}
}

func (s *Session) Can(scope rbac.Scope) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Scopes, scope)
}

// Authorize is the gate every mutating entry point calls before touching
// the ledger.
func (s *Session) Authorize(scope rbac.Scope) error {
	if s == nil {
		return fmt.Errorf("authorize %s: %w", scope, core.ErrUnauthorized)
	}
	if !s.Can(scope) {
		return fmt.Errorf(
			"authorize %s for role %s: %w",
			scope,
			s.Admin.Role,
			core.ErrForbidden,
		)
	}
	return nil
}

func (s *Session) HasRole(roles ...rbac.Role) bool {
	if s == nil {
		return false
	}
	return slices.Contains(roles, s.Admin.Role)
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok {
		return s
	}
	return nil
}

// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

// Authenticator verifies the bearer token and installs the admin session in
// the request context. Handlers read it back with session.FromContext.
func Authenticator(auth SessionAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			sess, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			recordAdmin(r.Context(), sess.Admin.ID)
			ctx := session.WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope rejects the request unless the session's role grants scope.
func RequireScope(scope rbac.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := session.FromContext(r.Context()).Authorize(scope); err != nil {
				WriteAuthzError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireRole(roles ...rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())

			if sess == nil {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if !sess.HasRole(roles...) {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireSuperadmin(next http.Handler) http.Handler {
	return RequireRole(rbac.RoleSuperadmin)(next)
}

// WriteAuthzError maps a session.Authorize failure onto 401 or 403.
func WriteAuthzError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrUnauthorized) {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}
	core.JSONError(w, core.ForbiddenError("insufficient permissions"))
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.InternalServerError(w, err)
	}
}

func GetAdminID(ctx context.Context) string {
	if sess := session.FromContext(ctx); sess != nil {
		return sess.Admin.ID
	}
	return ""
}

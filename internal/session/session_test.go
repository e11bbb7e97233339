// AngelaMos | 2026
// session_test.go

package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

func TestAuthorize(t *testing.T) {
	support := session.New(session.Admin{ID: "a1", Role: rbac.RoleSupport})

	assert.NoError(t, support.Authorize(rbac.ScopeCreditsAdjust))
	assert.ErrorIs(t, support.Authorize(rbac.ScopeContentPublish), core.ErrForbidden)
	assert.True(t, support.Can(rbac.ScopeUsersRead))
	assert.False(t, support.Can(rbac.ScopeAPIKeysManage))

	var anonymous *session.Session
	assert.ErrorIs(t, anonymous.Authorize(rbac.ScopeUsersRead), core.ErrUnauthorized)
	assert.False(t, anonymous.Can(rbac.ScopeUsersRead))
	assert.False(t, anonymous.HasRole(rbac.RoleSuperadmin))
}

func TestHasRole(t *testing.T) {
	pm := session.New(session.Admin{ID: "a2", Role: rbac.RoleProductManager})

	assert.True(t, pm.HasRole(rbac.RoleSuperadmin, rbac.RoleProductManager))
	assert.False(t, pm.HasRole(rbac.RoleSuperadmin))
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, session.FromContext(context.Background()))

	s := session.New(session.Admin{ID: "a3", Role: rbac.RoleSuperadmin})
	ctx := session.WithSession(context.Background(), s)
	assert.Same(t, s, session.FromContext(ctx))
}

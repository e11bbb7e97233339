// AngelaMos | 2026
// rbac.go

// Package rbac is the fixed role to scope table. It is the only
// authorization authority in the console.
package rbac

import (
	"errors"
	"fmt"
	"slices"
)

type Role string

const (
	RoleSuperadmin     Role = "superadmin"
	RoleProductManager Role = "product_manager"
	RoleSupport        Role = "support"
)

type Scope string

const (
	ScopeUsersRead      Scope = "users.read"
	ScopeUsersWrite     Scope = "users.write"
	ScopeCreditsAdjust  Scope = "credits.adjust"
	ScopeContentPublish Scope = "content.publish"
	ScopeAPIKeysManage  Scope = "apikeys.manage"
)

var ErrUnknownRole = errors.New("unknown role")

var (
	allRoles = []Role{RoleSuperadmin, RoleProductManager, RoleSupport}

	allScopes = []Scope{
		ScopeUsersRead,
		ScopeUsersWrite,
		ScopeCreditsAdjust,
		ScopeContentPublish,
		ScopeAPIKeysManage,
	}

	superadminScopes     = allScopes
	productManagerScopes = []Scope{ScopeUsersRead, ScopeContentPublish}
	supportScopes        = []Scope{ScopeUsersRead, ScopeCreditsAdjust}
)

func AllRoles() []Role {
	return slices.Clone(allRoles)
}

func AllScopes() []Scope {
	return slices.Clone(allScopes)
}

func ParseRole(s string) (Role, error) {
	role := Role(s)
	if _, ok := lookup(role); !ok {
		return "", fmt.Errorf("parse role %q: %w", s, ErrUnknownRole)
	}
	return role, nil
}

func (r Role) Valid() bool {
	_, ok := lookup(r)
	return ok
}

// ScopesForRole returns a copy of the scope set for role. An unknown role is
// a programming error and panics; use ParseRole at trust boundaries.
func ScopesForRole(role Role) []Scope {
	scopes, ok := lookup(role)
	if !ok {
		panic(fmt.Sprintf("rbac: unknown role %q", role))
	}
	return slices.Clone(scopes)
}

// HasScope reports whether role grants scope. Unknown roles grant nothing.
func HasScope(role Role, scope Scope) bool {
	scopes, ok := lookup(role)
	if !ok {
		return false
	}
	return slices.Contains(scopes, scope)
}

func lookup(role Role) ([]Scope, bool) {
	switch role {
	case RoleSuperadmin:
		return superadminScopes, true
	case RoleProductManager:
		return productManagerScopes, true
	case RoleSupport:
		return supportScopes, true
	}
	return nil, false
}

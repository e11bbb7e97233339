// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AdminResponse struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Role   rbac.Role    `json:"role"`
	Scopes []rbac.Scope `json:"scopes"`
}

type LoginResponse struct {
	Admin  AdminResponse `json:"admin"`
	Tokens TokenResponse `json:"tokens"`
}

func ToAdminResponse(s *session.Session) AdminResponse {
	return AdminResponse{
		ID:     s.Admin.ID,
		Name:   s.Admin.Name,
		Email:  s.Admin.Email,
		Role:   s.Admin.Role,
		Scopes: s.Scopes,
	}
}

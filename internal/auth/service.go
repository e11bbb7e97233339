// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/session"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTypeBearer = "Bearer"

type Service struct {
	directory *Directory
	jwt       *JWTManager
	blacklist Blacklist
	logger    *slog.Logger
}

func NewService(
	directory *Directory,
	jwt *JWTManager,
	blacklist Blacklist,
	logger *slog.Logger,
) *Service {
	return &Service{
		directory: directory,
		jwt:       jwt,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	acct, found := s.directory.lookupEmail(req.Email)

	// unknown emails still pay for one argon2 derivation
	valid, err := core.VerifyPasswordTimingSafe(req.Password, acct.passwordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !found || !valid {
		s.logger.InfoContext(ctx, "admin login rejected", "email", req.Email)
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.jwt.CreateAccessToken(acct.admin)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	sess := session.New(acct.admin)
	s.logger.InfoContext(ctx, "admin logged in",
		"admin_id", acct.admin.ID,
		"role", acct.admin.Role,
	)

	return &LoginResponse{
		Admin: ToAdminResponse(sess),
		Tokens: TokenResponse{
			AccessToken: token,
			TokenType:   tokenTypeBearer,
			ExpiresIn:   int(time.Until(claims.ExpiresAt).Seconds()),
			ExpiresAt:   claims.ExpiresAt,
		},
	}, nil
}

// Authenticate turns a bearer token into a request session. The admin is
// re-read from the directory so config edits take effect without waiting
// for tokens to expire.
func (s *Service) Authenticate(
	ctx context.Context,
	token string,
) (*session.Session, error) {
	claims, err := s.jwt.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("authenticate: %w", core.ErrTokenRevoked)
	}

	admin, ok := s.directory.ByID(claims.AdminID)
	if !ok {
		return nil, fmt.Errorf("authenticate: unknown admin: %w", core.ErrTokenRevoked)
	}

	sess := session.New(admin)
	sess.TokenID = claims.TokenID
	sess.ExpiresAt = claims.ExpiresAt

	return sess, nil
}

func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.blacklist.Revoke(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.logger.InfoContext(ctx, "admin logged out", "admin_id", sess.Admin.ID)
	return nil
}

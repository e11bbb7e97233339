// AngelaMos | 2026
// service.go

package apikey

import (
	"context"
	"log/slog"

	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

type Store interface {
	APIKeys() []ledger.APIKey
	CreateAPIKey(in ledger.CreateAPIKeyInput, adminID string) (ledger.CreatedAPIKey, error)
	RevokeAPIKey(keyID, adminID, reason string) (ledger.APIKey, ledger.AuditRow, error)
	UpdateAPIKeyRateLimit(keyID string, rate int) (ledger.APIKey, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) List(ctx context.Context, params ListParams) ([]ledger.APIKey, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeUsersRead); err != nil {
		return nil, err
	}

	keys := make([]ledger.APIKey, 0)
	for _, k := range s.store.APIKeys() {
		if params.UserID != "" && k.UserID != params.UserID {
			continue
		}
		if params.Status != "" && k.Status != params.Status {
			continue
		}
		keys = append(keys, k)
	}

	return keys, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (ledger.CreatedAPIKey, error) {
	sess := session.FromContext(ctx)
	if err := sess.Authorize(rbac.ScopeAPIKeysManage); err != nil {
		return ledger.CreatedAPIKey{}, err
	}

	created, err := s.store.CreateAPIKey(ledger.CreateAPIKeyInput{
		UserID:             req.UserID,
		RateLimitPerMinute: req.RateLimitPerMinute,
	}, sess.Admin.ID)
	if err != nil {
		return ledger.CreatedAPIKey{}, err
	}

	s.logger.InfoContext(ctx, "api key created",
		"admin_id", sess.Admin.ID,
		"key_id", created.Key.ID,
		"key_prefix", created.Key.KeyPrefix,
		"user_id", created.Key.UserID,
	)

	return created, nil
}

func (s *Service) Revoke(
	ctx context.Context,
	keyID, reason string,
) (ledger.APIKey, ledger.AuditRow, error) {
	sess := session.FromContext(ctx)
	if err := sess.Authorize(rbac.ScopeAPIKeysManage); err != nil {
		return ledger.APIKey{}, ledger.AuditRow{}, err
	}

	key, row, err := s.store.RevokeAPIKey(keyID, sess.Admin.ID, reason)
	if err != nil {
		return ledger.APIKey{}, ledger.AuditRow{}, err
	}

	s.logger.InfoContext(ctx, "api key revoked",
		"admin_id", sess.Admin.ID,
		"key_id", keyID,
	)

	return key, row, nil
}

func (s *Service) UpdateRateLimit(
	ctx context.Context,
	keyID string,
	rate int,
) (ledger.APIKey, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeAPIKeysManage); err != nil {
		return ledger.APIKey{}, err
	}

	return s.store.UpdateAPIKeyRateLimit(keyID, rate)
}

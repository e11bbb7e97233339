// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

type Store interface {
	Users() []ledger.User
	User(id string) (ledger.User, error)
	PurchasesForUser(userID string) []ledger.Purchase
	APIKeysForUser(userID string) []ledger.APIKey
	AddCredits(userID string, delta int64, adminID, reason string) (ledger.User, ledger.AuditRow, error)
	UpdateUserNotes(userID, notes string) (ledger.User, error)
	UpdateUserPlan(userID string, plan ledger.Plan, status ledger.SubscriptionStatus) (ledger.User, error)
	DeleteUser(userID string) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]ledger.User, int, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeUsersRead); err != nil {
		return nil, 0, err
	}

	params.Normalize()

	matched := make([]ledger.User, 0)
	for _, u := range s.store.Users() {
		if params.Matches(u) {
			matched = append(matched, u)
		}
	}

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)

	return matched[start:end], total, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*UserDetailResponse, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeUsersRead); err != nil {
		return nil, err
	}

	u, err := s.store.User(id)
	if err != nil {
		return nil, err
	}

	return &UserDetailResponse{
		User:      u,
		Purchases: s.store.PurchasesForUser(id),
		APIKeys:   s.store.APIKeysForUser(id),
	}, nil
}

func (s *Service) AdjustCredits(
	ctx context.Context,
	id string,
	delta int64,
	reason string,
) (ledger.User, ledger.AuditRow, error) {
	sess := session.FromContext(ctx)
	if err := sess.Authorize(rbac.ScopeCreditsAdjust); err != nil {
		return ledger.User{}, ledger.AuditRow{}, err
	}

	u, row, err := s.store.AddCredits(id, delta, sess.Admin.ID, reason)
	if err != nil {
		return ledger.User{}, ledger.AuditRow{}, err
	}

	s.logger.InfoContext(ctx, "credits adjusted",
		"admin_id", sess.Admin.ID,
		"user_id", id,
		"delta", delta,
		"credits_total", u.CreditsTotal,
	)

	return u, row, nil
}

// BulkAdjustCredits applies the same adjustment to every id independently.
// Unknown ids are reported back rather than failing the batch.
func (s *Service) BulkAdjustCredits(
	ctx context.Context,
	ids []string,
	delta int64,
	reason string,
) (*BulkCreditsResponse, error) {
	sess := session.FromContext(ctx)
	if err := sess.Authorize(rbac.ScopeCreditsAdjust); err != nil {
		return nil, err
	}

	resp := &BulkCreditsResponse{
		Updated: make([]ledger.User, 0, len(ids)),
		Audits:  make([]ledger.AuditRow, 0, len(ids)),
		Missing: []string{},
	}

	for _, id := range ids {
		u, row, err := s.store.AddCredits(id, delta, sess.Admin.ID, reason)
		if errors.Is(err, core.ErrNotFound) {
			resp.Missing = append(resp.Missing, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("bulk credits %s: %w", id, err)
		}
		resp.Updated = append(resp.Updated, u)
		resp.Audits = append(resp.Audits, row)
	}

	s.logger.InfoContext(ctx, "bulk credits adjusted",
		"admin_id", sess.Admin.ID,
		"delta", delta,
		"updated", len(resp.Updated),
		"missing", len(resp.Missing),
	)

	return resp, nil
}

func (s *Service) UpdateNotes(ctx context.Context, id, notes string) (ledger.User, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeUsersWrite); err != nil {
		return ledger.User{}, err
	}

	return s.store.UpdateUserNotes(id, notes)
}

func (s *Service) UpdatePlan(
	ctx context.Context,
	id string,
	req UpdatePlanRequest,
) (ledger.User, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeUsersWrite); err != nil {
		return ledger.User{}, err
	}

	return s.store.UpdateUserPlan(
		id,
		ledger.Plan(req.Plan),
		ledger.SubscriptionStatus(req.SubscriptionStatus),
	)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	sess := session.FromContext(ctx)
	if err := sess.Authorize(rbac.ScopeUsersWrite); err != nil {
		return err
	}

	if err := s.store.DeleteUser(id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user deleted",
		"admin_id", sess.Admin.ID,
		"user_id", id,
	)
	return nil
}

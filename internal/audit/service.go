// AngelaMos | 2026
// service.go

// Package audit exposes the ledger's append-only audit trail read side.
package audit

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type Store interface {
	Audits() []ledger.AuditRow
}

// Filter narrows the trail. From and To are inclusive so a row stamped at
// a bound is still shown.
type Filter struct {
	Action   ledger.AuditAction
	AdminID  string
	TargetID string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

func (f *Filter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	// keeps (Page-1)*PageSize from overflowing
	f.Page = min(f.Page, math.MaxInt/f.PageSize)
}

func (f *Filter) matches(row ledger.AuditRow) bool {
	if f.Action != "" && row.Action != f.Action {
		return false
	}
	if f.AdminID != "" && row.AdminID != f.AdminID {
		return false
	}
	if f.TargetID != "" && row.TargetID != f.TargetID {
		return false
	}
	if f.From != nil && row.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && row.Timestamp.After(*f.To) {
		return false
	}
	return true
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns matching rows newest first together with the unpaged total.
func (s *Service) List(ctx context.Context, f Filter) ([]ledger.AuditRow, int, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeUsersRead); err != nil {
		return nil, 0, err
	}

	f.normalize()

	rows := s.store.Audits()
	slices.Reverse(rows)

	matched := make([]ledger.AuditRow, 0)
	for _, row := range rows {
		if f.matches(row) {
			matched = append(matched, row)
		}
	}

	total := len(matched)
	start := min((f.Page-1)*f.PageSize, total)
	end := min(start+f.PageSize, total)

	return matched[start:end], total, nil
}

// AngelaMos | 2026
// dto.go

package user

import (
	"math"
	"strings"
	"time"

	"github.com/mailsfinder/admin-console/internal/ledger"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AdjustCreditsRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason" validate:"required,max=500"`
}

type BulkCreditsRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,max=500,dive,required"`
	Delta   int64    `json:"delta"`
	Reason  string   `json:"reason"   validate:"required,max=500"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

type UpdatePlanRequest struct {
	Plan               string `json:"plan"                validate:"required,oneof=free pro agency lifetime"`
	SubscriptionStatus string `json:"subscription_status" validate:"required,oneof=active cancelled past_due none"`
}

type CreditsResponse struct {
	User  ledger.User     `json:"user"`
	Audit ledger.AuditRow `json:"audit"`
}

type BulkCreditsResponse struct {
	Updated []ledger.User     `json:"updated"`
	Audits  []ledger.AuditRow `json:"audits"`
	Missing []string          `json:"missing"`
}

type UserDetailResponse struct {
	User      ledger.User       `json:"user"`
	Purchases []ledger.Purchase `json:"purchases"`
	APIKeys   []ledger.APIKey   `json:"api_keys"`
}

// ListUsersParams mirrors the console's user table filters. Zero values
// mean "no filter"; the created bounds are exclusive.
type ListUsersParams struct {
	Page               int
	PageSize           int
	Search             string
	Plan               ledger.Plan
	EmailVerified      *bool
	SubscriptionStatus ledger.SubscriptionStatus
	Country            string
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	p.Page = min(p.Page, math.MaxInt/p.PageSize)
	p.Search = strings.ToLower(strings.TrimSpace(p.Search))
	p.Country = strings.TrimSpace(p.Country)
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p *ListUsersParams) Matches(u ledger.User) bool {
	if p.Plan != "" && u.Plan != p.Plan {
		return false
	}
	if p.EmailVerified != nil && u.EmailVerified != *p.EmailVerified {
		return false
	}
	if p.SubscriptionStatus != "" && u.SubscriptionStatus != p.SubscriptionStatus {
		return false
	}
	if p.Country != "" && !strings.EqualFold(u.Country, p.Country) {
		return false
	}
	if p.CreatedFrom != nil && !u.CreatedAt.After(*p.CreatedFrom) {
		return false
	}
	if p.CreatedTo != nil && !u.CreatedAt.Before(*p.CreatedTo) {
		return false
	}
	if p.Search != "" &&
		!strings.Contains(strings.ToLower(u.FullName), p.Search) &&
		!strings.Contains(strings.ToLower(u.Email), p.Search) {
		return false
	}
	return true
}

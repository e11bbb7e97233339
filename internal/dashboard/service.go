// AngelaMos | 2026
// service.go

// Package dashboard assembles the console's landing view from one ledger
// snapshot so every figure on the page agrees with the others.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/metrics"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

type Store interface {
	Snapshot() ledger.Snapshot
}

// Query selects the reporting window: either a preset or an explicit
// From/To pair. An empty query means this month.
type Query struct {
	Preset metrics.Preset
	From   *time.Time
	To     *time.Time
}

type KPIs struct {
	TotalUsers          int         `json:"total_users"`
	ActiveSubscriptions int         `json:"active_subscriptions"`
	TotalRevenue        float64     `json:"total_revenue"`
	TotalCreditsUsed    int64       `json:"total_credits_used"`
	NewUsers            metrics.MoM `json:"new_users"`
	ChurnRate           float64     `json:"churn_rate"`
	ActiveUsers30d      int         `json:"active_users_30d"`
}

type Response struct {
	Range            metrics.DateRange    `json:"range"`
	PreviousRange    metrics.DateRange    `json:"previous_range"`
	KPIs             KPIs                 `json:"kpis"`
	Series           []metrics.DailyPoint `json:"series"`
	PlanDistribution []metrics.PlanCount  `json:"plan_distribution"`
	Activity         []metrics.Activity   `json:"activity"`
}

type Service struct {
	store Store
	clock clock.Clock
}

func NewService(store Store, c clock.Clock) *Service {
	return &Service{store: store, clock: c}
}

func (s *Service) Get(ctx context.Context, q Query) (*Response, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeUsersRead); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	r, err := resolveRange(q, now)
	if err != nil {
		return nil, err
	}
	prev := metrics.PreviousMonth(r)

	snap := s.store.Snapshot()

	return &Response{
		Range:         r,
		PreviousRange: prev,
		KPIs: KPIs{
			TotalUsers:          metrics.TotalUsers(snap.Users, &r),
			ActiveSubscriptions: metrics.ActiveSubscriptions(snap.Users, &r),
			TotalRevenue:        metrics.TotalRevenue(snap.Purchases, &r),
			TotalCreditsUsed:    metrics.TotalCreditsUsed(snap.Users, nil),
			NewUsers:            metrics.NewUsersMoM(snap.Users, r, prev),
			ChurnRate:           metrics.ChurnRate(snap.Users, r),
			ActiveUsers30d:      metrics.ActiveUsersLast30(snap.Users, now),
		},
		Series:           metrics.DailySeries(snap.Users, snap.Purchases, r),
		PlanDistribution: metrics.PlanDistribution(snap.Users),
		Activity: metrics.RecentActivity(
			snap.Users,
			snap.Purchases,
			snap.Audits,
			metrics.DefaultActivityLimit,
		),
	}, nil
}

func resolveRange(q Query, now time.Time) (metrics.DateRange, error) {
	if q.From == nil && q.To == nil {
		return metrics.RangeForPreset(q.Preset, now)
	}

	if q.From == nil || q.To == nil {
		return metrics.DateRange{}, fmt.Errorf(
			"from and to must be given together: %w",
			core.ErrInvalidInput,
		)
	}
	if !q.From.Before(*q.To) {
		return metrics.DateRange{}, fmt.Errorf(
			"from must be before to: %w",
			core.ErrInvalidInput,
		)
	}

	return metrics.DateRange{From: *q.From, To: *q.To}, nil
}

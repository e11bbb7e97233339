// AngelaMos | 2026
// metrics.go

// Package metrics derives dashboard statistics from ledger snapshots. Every
// function is pure and leaves its input untouched.
package metrics

import (
	"time"

	"github.com/mailsfinder/admin-console/internal/ledger"
)

const activeWindow = 30 * 24 * time.Hour

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// InRange excludes both boundaries: t must be strictly after From and
// strictly before To.
func InRange(t time.Time, r DateRange) bool {
	return t.After(r.From) && t.Before(r.To)
}

type MoM struct {
	Current  int     `json:"current"`
	Previous int     `json:"previous"`
	DeltaPct float64 `json:"delta_pct"`
}

func TotalUsers(users []ledger.User, r *DateRange) int {
	if r == nil {
		return len(users)
	}
	return countCreatedIn(users, *r)
}

func ActiveSubscriptions(users []ledger.User, r *DateRange) int {
	n := 0
	for _, u := range users {
		if r != nil && !InRange(u.CreatedAt, *r) {
			continue
		}
		if u.SubscriptionStatus == ledger.SubscriptionActive {
			n++
		}
	}
	return n
}

// TotalRevenue sums paid purchases only. Refunded and pending amounts are
// ignored rather than subtracted.
func TotalRevenue(purchases []ledger.Purchase, r *DateRange) float64 {
	var sum float64
	for _, p := range purchases {
		if r != nil && !InRange(p.Date, *r) {
			continue
		}
		if p.Status == ledger.PurchasePaid {
			sum += p.Amount
		}
	}
	return sum
}

func TotalCreditsUsed(users []ledger.User, r *DateRange) int64 {
	var sum int64
	for _, u := range users {
		if r != nil && !InRange(u.CreatedAt, *r) {
			continue
		}
		sum += u.CreditsFind + u.CreditsVerify
	}
	return sum
}

// NewUsersMoM reports DeltaPct as 100 whenever the previous period is
// empty, including when both periods are.
func NewUsersMoM(users []ledger.User, current, previous DateRange) MoM {
	m := MoM{
		Current:  countCreatedIn(users, current),
		Previous: countCreatedIn(users, previous),
	}
	if m.Previous == 0 {
		m.DeltaPct = 100
		return m
	}
	m.DeltaPct = float64(m.Current-m.Previous) / float64(m.Previous) * 100
	return m
}

func ChurnRate(users []ledger.User, r DateRange) float64 {
	total, cancelled := 0, 0
	for _, u := range users {
		if !InRange(u.CreatedAt, r) {
			continue
		}
		total++
		if u.SubscriptionStatus == ledger.SubscriptionCancelled {
			cancelled++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(cancelled) / float64(total) * 100
}

func ActiveUsersLast30(users []ledger.User, now time.Time) int {
	window := DateRange{From: now.Add(-activeWindow), To: now}
	n := 0
	for _, u := range users {
		if u.LastSeen != nil && InRange(*u.LastSeen, window) {
			n++
		}
	}
	return n
}

func countCreatedIn(users []ledger.User, r DateRange) int {
	n := 0
	for _, u := range users {
		if InRange(u.CreatedAt, r) {
			n++
		}
	}
	return n
}

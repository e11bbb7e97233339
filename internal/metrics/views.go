// AngelaMos | 2026
// views.go

package metrics

import (
	"fmt"
	"slices"
	"time"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
)

type Preset string

const (
	PresetToday     Preset = "today"
	PresetLast7     Preset = "7d"
	PresetLast30    Preset = "30d"
	PresetThisMonth Preset = "this_month"
)

const DefaultActivityLimit = 50

func Today(now time.Time) DateRange {
	start := startOfDay(now)
	return DateRange{From: start, To: endOf(start.AddDate(0, 0, 1))}
}

func Last7Days(now time.Time) DateRange {
	return trailingDays(now, 7)
}

func Last30Days(now time.Time) DateRange {
	return trailingDays(now, 30)
}

func ThisMonth(now time.Time) DateRange {
	start := startOfMonth(now)
	return DateRange{From: start, To: endOf(start.AddDate(0, 1, 0))}
}

// PreviousMonth is the full calendar month before the one containing r.From.
func PreviousMonth(r DateRange) DateRange {
	start := startOfMonth(r.From).AddDate(0, -1, 0)
	return DateRange{From: start, To: endOf(start.AddDate(0, 1, 0))}
}

func RangeForPreset(p Preset, now time.Time) (DateRange, error) {
	switch p {
	case PresetToday:
		return Today(now), nil
	case PresetLast7:
		return Last7Days(now), nil
	case PresetLast30:
		return Last30Days(now), nil
	case PresetThisMonth, "":
		return ThisMonth(now), nil
	}
	return DateRange{}, fmt.Errorf("unknown range preset %q: %w", p, core.ErrInvalidInput)
}

type DailyPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Signups int     `json:"signups"`
}

// DailySeries buckets paid revenue and signups per calendar day. Unlike the
// KPI filters, both range bounds are inclusive here.
func DailySeries(users []ledger.User, purchases []ledger.Purchase, r DateRange) []DailyPoint {
	loc := r.From.Location()
	byDay := map[string]*DailyPoint{}

	bucket := func(t time.Time) *DailyPoint {
		key := t.In(loc).Format(time.DateOnly)
		p, ok := byDay[key]
		if !ok {
			p = &DailyPoint{Date: key}
			byDay[key] = p
		}
		return p
	}

	for _, p := range purchases {
		if !within(p.Date, r) {
			continue
		}
		point := bucket(p.Date)
		if p.Status == ledger.PurchasePaid {
			point.Revenue += p.Amount
		}
	}

	for _, u := range users {
		if !within(u.CreatedAt, r) {
			continue
		}
		bucket(u.CreatedAt).Signups++
	}

	out := make([]DailyPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b DailyPoint) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	return out
}

type PlanCount struct {
	Plan  ledger.Plan `json:"name"`
	Count int         `json:"value"`
}

func PlanDistribution(users []ledger.User) []PlanCount {
	counts := make(map[ledger.Plan]int, len(ledger.Plans))
	for _, u := range users {
		counts[u.Plan]++
	}

	out := []PlanCount{}
	for _, plan := range ledger.Plans {
		if n := counts[plan]; n > 0 {
			out = append(out, PlanCount{Plan: plan, Count: n})
		}
	}
	return out
}

type ActivityType string

const (
	ActivitySignup   ActivityType = "signup"
	ActivityPurchase ActivityType = "purchase"
	ActivityCredits  ActivityType = "credits"
	ActivityAPIKey   ActivityType = "apikey"
)

type Activity struct {
	Type ActivityType `json:"type"`
	When time.Time    `json:"when"`
	Text string       `json:"text"`
}

// RecentActivity merges signups, purchases, credit adjustments and key
// creations into one feed, newest first. Each source contributes at most
// limit entries before the merge.
func RecentActivity(
	users []ledger.User,
	purchases []ledger.Purchase,
	audits []ledger.AuditRow,
	limit int,
) []Activity {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	var feed []Activity

	signups := slices.Clone(users)
	slices.SortStableFunc(signups, func(a, b ledger.User) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	for _, u := range head(signups, limit) {
		feed = append(feed, Activity{
			Type: ActivitySignup,
			When: u.CreatedAt,
			Text: fmt.Sprintf("%s signed up (%s)", u.FullName, u.Email),
		})
	}

	bought := slices.Clone(purchases)
	slices.SortStableFunc(bought, func(a, b ledger.Purchase) int {
		return b.Date.Compare(a.Date)
	})
	for _, p := range head(bought, limit) {
		feed = append(feed, Activity{
			Type: ActivityPurchase,
			When: p.Date,
			Text: fmt.Sprintf("Purchase %s - %s", p.PlanName, p.Status),
		})
	}

	for _, a := range tail(auditsWithAction(audits, ledger.ActionCreditsAdjust), limit) {
		feed = append(feed, Activity{
			Type: ActivityCredits,
			When: a.Timestamp,
			Text: "Credits adjusted for " + a.TargetID,
		})
	}
	for _, a := range tail(auditsWithAction(audits, ledger.ActionAPIKeyCreate), limit) {
		feed = append(feed, Activity{
			Type: ActivityAPIKey,
			When: a.Timestamp,
			Text: "API key created " + a.TargetID,
		})
	}

	slices.SortStableFunc(feed, func(a, b Activity) int {
		return b.When.Compare(a.When)
	})

	out := head(feed, limit)
	if out == nil {
		out = []Activity{}
	}
	return out
}

func auditsWithAction(audits []ledger.AuditRow, action ledger.AuditAction) []ledger.AuditRow {
	var out []ledger.AuditRow
	for _, a := range audits {
		if a.Action == action {
			out = append(out, a)
		}
	}
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

func within(t time.Time, r DateRange) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

func trailingDays(now time.Time, days int) DateRange {
	today := startOfDay(now)
	return DateRange{
		From: today.AddDate(0, 0, -days),
		To:   endOf(today.AddDate(0, 0, 1)),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// endOf returns the last millisecond before next.
func endOf(next time.Time) time.Time {
	return next.Add(-time.Millisecond)
}

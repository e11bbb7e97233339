// AngelaMos | 2026
// metrics_test.go

package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/metrics"
)

var (
	marchStart = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	marchEnd   = time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)
	march      = metrics.DateRange{From: marchStart, To: marchEnd}
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 10, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func sampleUsers() []ledger.User {
	return []ledger.User{
		{ID: "u1", Plan: ledger.PlanPro, SubscriptionStatus: ledger.SubscriptionActive, CreatedAt: day(2), CreditsFind: 10, CreditsVerify: 5},
		{ID: "u2", Plan: ledger.PlanPro, SubscriptionStatus: ledger.SubscriptionCancelled, CreatedAt: day(2), CreditsFind: 1},
		{ID: "u3", Plan: ledger.PlanFree, SubscriptionStatus: ledger.SubscriptionNone, CreatedAt: day(20)},
		{ID: "u4", Plan: ledger.PlanAgency, SubscriptionStatus: ledger.SubscriptionActive, CreatedAt: day(1).AddDate(0, -1, 0)},
		{ID: "edge", Plan: ledger.PlanFree, SubscriptionStatus: ledger.SubscriptionActive, CreatedAt: marchStart},
	}
}

func TestInRangeExcludesBoundaries(t *testing.T) {
	assert.False(t, metrics.InRange(marchStart, march))
	assert.False(t, metrics.InRange(marchEnd, march))
	assert.True(t, metrics.InRange(marchStart.Add(time.Nanosecond), march))
	assert.True(t, metrics.InRange(marchEnd.Add(-time.Nanosecond), march))
}

func TestTotalUsers(t *testing.T) {
	users := sampleUsers()

	assert.Equal(t, 5, metrics.TotalUsers(users, nil))
	assert.Equal(t, 3, metrics.TotalUsers(users, &march))

	users = append(users, ledger.User{ID: "end", CreatedAt: marchEnd})
	assert.Equal(t, 3, metrics.TotalUsers(users, &march))
}

func TestActiveSubscriptions(t *testing.T) {
	users := sampleUsers()

	assert.Equal(t, 3, metrics.ActiveSubscriptions(users, nil))
	assert.Equal(t, 1, metrics.ActiveSubscriptions(users, &march))
}

func TestTotalRevenueCountsPaidOnly(t *testing.T) {
	purchases := []ledger.Purchase{
		{ID: "p1", Status: ledger.PurchasePaid, Amount: 49, Date: day(3)},
		{ID: "p2", Status: ledger.PurchaseRefunded, Amount: 49, Date: day(4)},
		{ID: "p3", Status: ledger.PurchasePending, Amount: 99, Date: day(5)},
		{ID: "p4", Status: ledger.PurchasePaid, Amount: 199, Date: day(5).AddDate(0, 1, 0)},
	}

	assert.InDelta(t, 248.0, metrics.TotalRevenue(purchases, nil), 0.0001)
	assert.InDelta(t, 49.0, metrics.TotalRevenue(purchases, &march), 0.0001)
	assert.Zero(t, metrics.TotalRevenue(nil, &march))
}

func TestTotalCreditsUsed(t *testing.T) {
	users := sampleUsers()

	assert.Equal(t, int64(16), metrics.TotalCreditsUsed(users, nil))
	assert.Equal(t, int64(16), metrics.TotalCreditsUsed(users, &march))
}

func TestNewUsersMoM(t *testing.T) {
	users := sampleUsers()
	prev := metrics.PreviousMonth(march)

	mom := metrics.NewUsersMoM(users, march, prev)
	assert.Equal(t, 3, mom.Current)
	assert.Equal(t, 1, mom.Previous)
	assert.InDelta(t, 200.0, mom.DeltaPct, 0.0001)
}

func TestNewUsersMoMPreviousEmpty(t *testing.T) {
	var users []ledger.User
	for i := range 5 {
		users = append(users, ledger.User{ID: string(rune('a' + i)), CreatedAt: day(10)})
	}
	empty := metrics.DateRange{From: marchStart.AddDate(-1, 0, 0), To: marchEnd.AddDate(-1, 0, 0)}

	mom := metrics.NewUsersMoM(users, march, empty)
	assert.Equal(t, 5, mom.Current)
	assert.Equal(t, 0, mom.Previous)
	assert.Equal(t, 100.0, mom.DeltaPct)
}

func TestChurnRate(t *testing.T) {
	users := sampleUsers()

	assert.InDelta(t, 100.0/3.0, metrics.ChurnRate(users, march), 0.0001)

	empty := metrics.DateRange{From: marchStart.AddDate(1, 0, 0), To: marchEnd.AddDate(1, 0, 0)}
	assert.Equal(t, 0.0, metrics.ChurnRate(users, empty))
	assert.Equal(t, 0.0, metrics.ChurnRate(nil, march))
}

func TestActiveUsersLast30(t *testing.T) {
	now := day(31)
	users := []ledger.User{
		{ID: "recent", LastSeen: ptr(now.Add(-time.Hour))},
		{ID: "old", LastSeen: ptr(now.AddDate(0, 0, -45))},
		{ID: "never"},
		{ID: "future", LastSeen: ptr(now.Add(time.Hour))},
	}

	assert.Equal(t, 1, metrics.ActiveUsersLast30(users, now))
}

func TestPresets(t *testing.T) {
	now := time.Date(2026, time.March, 31, 15, 30, 0, 0, time.UTC)

	today := metrics.Today(now)
	assert.Equal(t, time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), today.From)
	assert.Equal(t, time.Date(2026, time.March, 31, 23, 59, 59, 999_000_000, time.UTC), today.To)

	week := metrics.Last7Days(now)
	assert.Equal(t, time.Date(2026, time.March, 24, 0, 0, 0, 0, time.UTC), week.From)
	assert.Equal(t, today.To, week.To)

	month := metrics.ThisMonth(now)
	assert.Equal(t, marchStart, month.From)
	assert.Equal(t, today.To, month.To)

	r, err := metrics.RangeForPreset(metrics.PresetLast30, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), r.From)

	_, err = metrics.RangeForPreset("fortnight", now)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestPreviousMonthClampsFromMonthEnd(t *testing.T) {
	r := metrics.DateRange{From: time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)}

	prev := metrics.PreviousMonth(r)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), prev.From)
	assert.Equal(t, time.Date(2026, time.February, 28, 23, 59, 59, 999_000_000, time.UTC), prev.To)

	jan := metrics.PreviousMonth(metrics.DateRange{From: time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), jan.From)
}

func TestDailySeriesIsInclusiveAndSorted(t *testing.T) {
	users := sampleUsers()
	purchases := []ledger.Purchase{
		{Status: ledger.PurchasePaid, Amount: 10, Date: day(20)},
		{Status: ledger.PurchaseRefunded, Amount: 99, Date: day(20)},
		{Status: ledger.PurchasePaid, Amount: 5, Date: day(2)},
	}

	series := metrics.DailySeries(users, purchases, march)
	require.Len(t, series, 3)

	assert.Equal(t, metrics.DailyPoint{Date: "2026-03-01", Signups: 1}, series[0])
	assert.Equal(t, metrics.DailyPoint{Date: "2026-03-02", Revenue: 5, Signups: 2}, series[1])
	assert.Equal(t, metrics.DailyPoint{Date: "2026-03-20", Revenue: 10, Signups: 1}, series[2])
}

func TestPlanDistributionDropsEmptyPlans(t *testing.T) {
	dist := metrics.PlanDistribution(sampleUsers())

	assert.Equal(t, []metrics.PlanCount{
		{Plan: ledger.PlanFree, Count: 2},
		{Plan: ledger.PlanPro, Count: 2},
		{Plan: ledger.PlanAgency, Count: 1},
	}, dist)

	assert.Empty(t, metrics.PlanDistribution(nil))
}

func TestRecentActivity(t *testing.T) {
	users := []ledger.User{{ID: "u1", FullName: "Ada", Email: "ada@example.com", CreatedAt: day(1)}}
	purchases := []ledger.Purchase{{PlanName: ledger.PlanPro, Status: ledger.PurchasePaid, Date: day(2)}}
	audits := []ledger.AuditRow{
		{Action: ledger.ActionCreditsAdjust, TargetID: "u1", Timestamp: day(3)},
		{Action: ledger.ActionAPIKeyRevoke, TargetID: "k1", Timestamp: day(4)},
		{Action: ledger.ActionAPIKeyCreate, TargetID: "k2", Timestamp: day(5)},
	}

	feed := metrics.RecentActivity(users, purchases, audits, 0)
	require.Len(t, feed, 4)

	assert.Equal(t, metrics.ActivityAPIKey, feed[0].Type)
	assert.Equal(t, "API key created k2", feed[0].Text)
	assert.Equal(t, metrics.ActivityCredits, feed[1].Type)
	assert.Equal(t, "Credits adjusted for u1", feed[1].Text)
	assert.Equal(t, "Purchase pro - paid", feed[2].Text)
	assert.Equal(t, "Ada signed up (ada@example.com)", feed[3].Text)

	limited := metrics.RecentActivity(users, purchases, audits, 2)
	assert.Len(t, limited, 2)
	assert.Equal(t, feed[:2], limited)

	assert.NotNil(t, metrics.RecentActivity(nil, nil, nil, 10))
}

func TestMetricsDoNotMutateInput(t *testing.T) {
	users := sampleUsers()
	before := sampleUsers()

	metrics.RecentActivity(users, nil, nil, 2)
	metrics.PlanDistribution(users)
	metrics.DailySeries(users, nil, march)

	assert.Equal(t, before, users)
}

func TestCollector(t *testing.T) {
	sealer, err := core.NewSecretSealer("collector-test-secret-xyz")
	require.NoError(t, err)

	fc := clock.NewFake(day(31))
	store := ledger.NewStore(sealer, ledger.WithClock(fc))
	store.SetAll(ledger.PartialSnapshot{
		Users: sampleUsers(),
		Purchases: []ledger.Purchase{
			{ID: "p1", Status: ledger.PurchasePaid, Amount: 49, Date: day(3)},
		},
	})

	created, err := store.CreateAPIKey(ledger.CreateAPIKeyInput{RateLimitPerMinute: 60}, "admin")
	require.NoError(t, err)
	_, err = store.CreateAPIKey(ledger.CreateAPIKeyInput{RateLimitPerMinute: 60}, "admin")
	require.NoError(t, err)
	_, _, err = store.RevokeAPIKey(created.Key.ID, "admin", "")
	require.NoError(t, err)

	c := metrics.NewCollector(store, fc)

	expected := `
# HELP admin_console_ledger_users Users currently held in the ledger.
# TYPE admin_console_ledger_users gauge
admin_console_ledger_users 5
# HELP admin_console_ledger_api_keys API keys by status.
# TYPE admin_console_ledger_api_keys gauge
admin_console_ledger_api_keys{status="active"} 1
admin_console_ledger_api_keys{status="revoked"} 1
# HELP admin_console_ledger_audit_rows Audit rows by action.
# TYPE admin_console_ledger_audit_rows gauge
admin_console_ledger_audit_rows{action="apikey.create"} 2
admin_console_ledger_audit_rows{action="apikey.revoke"} 1
admin_console_ledger_audit_rows{action="content.publish"} 0
admin_console_ledger_audit_rows{action="credits.adjust"} 0
`
	err = testutil.CollectAndCompare(
		c,
		strings.NewReader(expected),
		"admin_console_ledger_users",
		"admin_console_ledger_api_keys",
		"admin_console_ledger_audit_rows",
	)
	require.NoError(t, err)

	assert.Equal(t, 11, testutil.CollectAndCount(c))
}

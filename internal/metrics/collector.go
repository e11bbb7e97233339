// AngelaMos | 2026
// collector.go

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/ledger"
)

const namespace = "admin_console"

type SnapshotReader interface {
	Snapshot() ledger.Snapshot
}

// Collector computes ledger gauges at scrape time so values never go stale
// between mutations.
type Collector struct {
	store SnapshotReader
	clock clock.Clock

	users         *prometheus.Desc
	activeSubs    *prometheus.Desc
	paidRevenue   *prometheus.Desc
	activeUsers30 *prometheus.Desc
	creditsUsed   *prometheus.Desc
	apiKeys       *prometheus.Desc
	auditRows     *prometheus.Desc
}

func NewCollector(store SnapshotReader, c clock.Clock) *Collector {
	return &Collector{
		store: store,
		clock: c,
		users: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "users"),
			"Users currently held in the ledger.",
			nil, nil,
		),
		activeSubs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "active_subscriptions"),
			"Users with an active subscription.",
			nil, nil,
		),
		paidRevenue: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "paid_revenue"),
			"Sum of paid purchase amounts.",
			nil, nil,
		),
		activeUsers30: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "active_users_30d"),
			"Users seen within the trailing 30 days.",
			nil, nil,
		),
		creditsUsed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "credits_used"),
			"Sum of find and verify credits across users.",
			nil, nil,
		),
		apiKeys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "api_keys"),
			"API keys by status.",
			[]string{"status"}, nil,
		),
		auditRows: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "audit_rows"),
			"Audit rows by action.",
			[]string{"action"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.users
	ch <- c.activeSubs
	ch <- c.paidRevenue
	ch <- c.activeUsers30
	ch <- c.creditsUsed
	ch <- c.apiKeys
	ch <- c.auditRows
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.store.Snapshot()

	ch <- prometheus.MustNewConstMetric(
		c.users, prometheus.GaugeValue, float64(TotalUsers(snap.Users, nil)),
	)
	ch <- prometheus.MustNewConstMetric(
		c.activeSubs, prometheus.GaugeValue, float64(ActiveSubscriptions(snap.Users, nil)),
	)
	ch <- prometheus.MustNewConstMetric(
		c.paidRevenue, prometheus.GaugeValue, TotalRevenue(snap.Purchases, nil),
	)
	ch <- prometheus.MustNewConstMetric(
		c.activeUsers30, prometheus.GaugeValue,
		float64(ActiveUsersLast30(snap.Users, c.clock.Now())),
	)
	ch <- prometheus.MustNewConstMetric(
		c.creditsUsed, prometheus.GaugeValue, float64(TotalCreditsUsed(snap.Users, nil)),
	)

	keys := map[ledger.KeyStatus]int{ledger.KeyActive: 0, ledger.KeyRevoked: 0}
	for _, k := range snap.APIKeys {
		keys[k.Status]++
	}
	for status, n := range keys {
		ch <- prometheus.MustNewConstMetric(
			c.apiKeys, prometheus.GaugeValue, float64(n), string(status),
		)
	}

	actions := make(map[ledger.AuditAction]int, len(ledger.AuditActions))
	for _, a := range ledger.AuditActions {
		actions[a] = 0
	}
	for _, a := range snap.Audits {
		actions[a.Action]++
	}
	for action, n := range actions {
		ch <- prometheus.MustNewConstMetric(
			c.auditRows, prometheus.GaugeValue, float64(n), string(action),
		)
	}
}

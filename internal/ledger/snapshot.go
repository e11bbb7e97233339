// AngelaMos | 2026
// snapshot.go

package ledger

import (
	"slices"
)

type Snapshot struct {
	Users     []User        `json:"users"`
	Purchases []Purchase    `json:"purchases"`
	APIKeys   []APIKey      `json:"apiKeys"`
	Contents  []ContentItem `json:"contents"`
	Audits    []AuditRow    `json:"audits"`
}

// PartialSnapshot replaces only the collections that are non-nil. An empty
// non-nil slice clears its collection.
type PartialSnapshot struct {
	Users     []User
	Purchases []Purchase
	APIKeys   []APIKey
	Contents  []ContentItem
	Audits    []AuditRow
}

type Counts struct {
	Users     int `json:"users"`
	Purchases int `json:"purchases"`
	APIKeys   int `json:"api_keys"`
	Contents  int `json:"contents"`
	Audits    int `json:"audits"`
}

func cloneUsers(in []User) []User {
	out := make([]User, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}

func cloneAPIKeys(in []APIKey) []APIKey {
	out := make([]APIKey, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}

func cloneContents(in []ContentItem) []ContentItem {
	out := make([]ContentItem, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}

func clonePurchases(in []Purchase) []Purchase {
	out := slices.Clone(in)
	if out == nil {
		out = []Purchase{}
	}
	return out
}

func cloneAudits(in []AuditRow) []AuditRow {
	out := slices.Clone(in)
	if out == nil {
		out = []AuditRow{}
	}
	return out
}

// AngelaMos | 2026
// entity.go

package ledger

import (
	"slices"
	"time"
)

type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanAgency   Plan = "agency"
	PlanLifetime Plan = "lifetime"
)

var Plans = []Plan{PlanFree, PlanPro, PlanAgency, PlanLifetime}

func (p Plan) Valid() bool {
	return slices.Contains(Plans, p)
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionNone      SubscriptionStatus = "none"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionCancelled, SubscriptionPastDue, SubscriptionNone:
		return true
	}
	return false
}

type PurchaseStatus string

const (
	PurchasePaid     PurchaseStatus = "paid"
	PurchaseRefunded PurchaseStatus = "refunded"
	PurchasePending  PurchaseStatus = "pending"
)

type KeyStatus string

const (
	KeyActive  KeyStatus = "active"
	KeyRevoked KeyStatus = "revoked"
)

type AuditAction string

const (
	ActionCreditsAdjust  AuditAction = "credits.adjust"
	ActionAPIKeyCreate   AuditAction = "apikey.create"
	ActionAPIKeyRevoke   AuditAction = "apikey.revoke"
	ActionContentPublish AuditAction = "content.publish"
)

var AuditActions = []AuditAction{
	ActionCreditsAdjust,
	ActionAPIKeyCreate,
	ActionAPIKeyRevoke,
	ActionContentPublish,
}

func (a AuditAction) Valid() bool {
	return slices.Contains(AuditActions, a)
}

type User struct {
	ID                 string             `json:"id"`
	FullName           string             `json:"full_name"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone,omitempty"`
	Country            string             `json:"country,omitempty"`
	OnboardingFlag     *bool              `json:"onboarding_flag,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	LastSeen           *time.Time         `json:"lastSeen,omitempty"`
	Plan               Plan               `json:"plan"`
	CreditsTotal       int64              `json:"credits_total"`
	CreditsFind        int64              `json:"credits_find"`
	CreditsVerify      int64              `json:"credits_verify"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	EmailVerified      bool               `json:"email_verified"`
	AdminNotes         string             `json:"admin_notes,omitempty"`
}

func (u User) clone() User {
	if u.OnboardingFlag != nil {
		flag := *u.OnboardingFlag
		u.OnboardingFlag = &flag
	}
	if u.LastSeen != nil {
		seen := *u.LastSeen
		u.LastSeen = &seen
	}
	return u
}

// Purchase is written by the billing integration and never mutated here.
type Purchase struct {
	ID       string         `json:"id"`
	UserID   string         `json:"userId"`
	PlanName Plan           `json:"planName"`
	Status   PurchaseStatus `json:"status"`
	Date     time.Time      `json:"date"`
	Amount   float64        `json:"amount"`
}

type APIKey struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId,omitempty"`
	KeyPrefix          string     `json:"keyPrefix"`
	EncryptedKey       string     `json:"encryptedKey"`
	RateLimitPerMinute int        `json:"rateLimitPerMinute"`
	LastUsedAt         *time.Time `json:"lastUsedAt,omitempty"`
	UsageCount         int64      `json:"usageCount"`
	Status             KeyStatus  `json:"status"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func (k APIKey) clone() APIKey {
	if k.LastUsedAt != nil {
		used := *k.LastUsedAt
		k.LastUsedAt = &used
	}
	return k
}

func (k APIKey) IsRevoked() bool {
	return k.Status == KeyRevoked
}

type ContentItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary,omitempty"`
	Body        string    `json:"body"`
	Attachments []string  `json:"attachments"`
	Published   bool      `json:"published"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c ContentItem) clone() ContentItem {
	c.Attachments = slices.Clone(c.Attachments)
	if c.Attachments == nil {
		c.Attachments = []string{}
	}
	return c
}

type AuditRow struct {
	ID        string      `json:"id"`
	AdminID   string      `json:"adminId"`
	Action    AuditAction `json:"action"`
	TargetID  string      `json:"targetId"`
	Timestamp time.Time   `json:"timestamp"`
	Reason    string      `json:"reason,omitempty"`
}

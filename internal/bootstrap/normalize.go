// AngelaMos | 2026
// normalize.go

package bootstrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mailsfinder/admin-console/internal/ledger"
)

const (
	defaultKeyRateLimit = 60
	hiddenKeyMarker     = "hidden"
	rawKeyPrefixLength  = 8
)

// Payload is the bootstrap document as the product backend sends it. Every
// collection is optional and anything that is not a JSON array is treated
// as empty.
type Payload struct {
	Users        json.RawMessage `json:"users"`
	Purchases    json.RawMessage `json:"purchases"`
	APIKeys      json.RawMessage `json:"apiKeys"`
	APIKeysLower json.RawMessage `json:"apikeys"`
	Audits       json.RawMessage `json:"audits"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

// flexTime accepts RFC 3339 strings, bare dates and unix milliseconds.
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] != '"' {
		ms, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("parse epoch millis %s: %w", b, err)
		}
		f.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse time %q: unsupported layout", s)
}

type rawSubscription struct {
	Status *string `json:"status"`
}

type rawUser struct {
	MongoID             *flexString      `json:"_id"`
	ID                  *flexString      `json:"id"`
	FullName            *string          `json:"full_name"`
	Name                *string          `json:"name"`
	Email               string           `json:"email"`
	Phone               *string          `json:"phone"`
	Country             *string          `json:"country"`
	OnboardingFlag      *bool            `json:"onboarding_flag"`
	OnboardingCompleted *bool            `json:"onboarding_completed"`
	CreatedAt           *flexTime        `json:"createdAt"`
	LastSeen            *flexTime        `json:"lastSeen"`
	UpdatedAt           *flexTime        `json:"updatedAt"`
	Plan                *string          `json:"plan"`
	Subscription        *rawSubscription `json:"subscription"`
	SubscriptionStatus  *string          `json:"subscription_status"`
	Credits             *int64           `json:"credits"`
	CreditsFind         *int64           `json:"credits_find"`
	CreditsVerify       *int64           `json:"credits_verify"`
	EmailVerified       *bool            `json:"email_verified"`
	AdminNotes          *string          `json:"admin_notes"`
}

type rawPurchase struct {
	MongoID       *flexString `json:"_id"`
	ID            *flexString `json:"id"`
	UserID        *flexString `json:"userId"`
	PlanName      *string     `json:"planName"`
	PlanNameSnake *string     `json:"plan_name"`
	PaymentStatus *string     `json:"paymentStatus"`
	Status        *string     `json:"status"`
	AmountPaid    *float64    `json:"amountPaid"`
	Amount        *float64    `json:"amount"`
	PaymentDate   *flexTime   `json:"paymentDate"`
	Date          *flexTime   `json:"date"`
	CreatedAt     *flexTime   `json:"createdAt"`
}

type rawAPIKey struct {
	MongoID            *flexString `json:"_id"`
	ID                 *flexString `json:"id"`
	UserID             *flexString `json:"userId"`
	KeyPrefix          *string     `json:"keyPrefix"`
	APIKey             *string     `json:"apiKey"`
	RateLimitPerMinute *int        `json:"rateLimitPerMinute"`
	LastUsedAt         *flexTime   `json:"lastUsedAt"`
	UpdatedAt          *flexTime   `json:"updatedAt"`
	UsageCount         *int64      `json:"usageCount"`
	IsActive           *bool       `json:"isActive"`
	CreatedAt          *flexTime   `json:"createdAt"`
}

type rawAudit struct {
	ID        *flexString `json:"id"`
	AdminID   string      `json:"adminId"`
	Action    string      `json:"action"`
	TargetID  *flexString `json:"targetId"`
	Timestamp *flexTime   `json:"timestamp"`
	Reason    string      `json:"reason"`
}

// Normalize maps a bootstrap payload onto ledger entities. Users, purchases,
// keys and audits are always set, empty when absent; contents are left
// untouched.
func Normalize(p Payload, now time.Time) (ledger.PartialSnapshot, error) {
	rawUsers, err := decodeArray[rawUser](p.Users)
	if err != nil {
		return ledger.PartialSnapshot{}, fmt.Errorf("decode users: %w", err)
	}
	rawPurchases, err := decodeArray[rawPurchase](p.Purchases)
	if err != nil {
		return ledger.PartialSnapshot{}, fmt.Errorf("decode purchases: %w", err)
	}

	keysRaw := p.APIKeys
	if !isArray(keysRaw) {
		keysRaw = p.APIKeysLower
	}
	rawKeys, err := decodeArray[rawAPIKey](keysRaw)
	if err != nil {
		return ledger.PartialSnapshot{}, fmt.Errorf("decode api keys: %w", err)
	}
	rawAudits, err := decodeArray[rawAudit](p.Audits)
	if err != nil {
		return ledger.PartialSnapshot{}, fmt.Errorf("decode audits: %w", err)
	}

	snap := ledger.PartialSnapshot{
		Users:     make([]ledger.User, 0, len(rawUsers)),
		Purchases: make([]ledger.Purchase, 0, len(rawPurchases)),
		APIKeys:   make([]ledger.APIKey, 0, len(rawKeys)),
		Audits:    make([]ledger.AuditRow, 0, len(rawAudits)),
	}
	for _, u := range rawUsers {
		snap.Users = append(snap.Users, normalizeUser(u, now))
	}
	for _, p := range rawPurchases {
		snap.Purchases = append(snap.Purchases, normalizePurchase(p))
	}
	for _, k := range rawKeys {
		snap.APIKeys = append(snap.APIKeys, normalizeAPIKey(k, now))
	}
	for _, a := range rawAudits {
		snap.Audits = append(snap.Audits, normalizeAudit(a))
	}

	return snap, nil
}

func normalizeUser(u rawUser, now time.Time) ledger.User {
	out := ledger.User{
		ID:                 firstID(u.MongoID, u.ID),
		FullName:           firstString(u.FullName, u.Name),
		Email:              u.Email,
		Phone:              deref(u.Phone),
		Country:            deref(u.Country),
		CreatedAt:          timeOr(u.CreatedAt, now),
		LastSeen:           firstTime(u.LastSeen, u.UpdatedAt),
		Plan:               NormalizePlan(deref(u.Plan)),
		SubscriptionStatus: normalizeSubscription(u),
		EmailVerified:      u.EmailVerified != nil && *u.EmailVerified,
		AdminNotes:         deref(u.AdminNotes),
	}

	switch {
	case u.OnboardingFlag != nil:
		flag := *u.OnboardingFlag
		out.OnboardingFlag = &flag
	case u.OnboardingCompleted != nil:
		flag := !*u.OnboardingCompleted
		out.OnboardingFlag = &flag
	}

	// A bare credits figure with no pool breakdown is credited to find so
	// the total still equals the sum of the pools.
	if u.Credits != nil && u.CreditsFind == nil && u.CreditsVerify == nil {
		out.CreditsFind = *u.Credits
	} else {
		out.CreditsFind = derefInt(u.CreditsFind)
		out.CreditsVerify = derefInt(u.CreditsVerify)
	}
	out.CreditsTotal = out.CreditsFind + out.CreditsVerify

	return out
}

func normalizeSubscription(u rawUser) ledger.SubscriptionStatus {
	raw := ""
	switch {
	case u.Subscription != nil && u.Subscription.Status != nil:
		raw = *u.Subscription.Status
	case u.SubscriptionStatus != nil:
		raw = *u.SubscriptionStatus
	}

	status := ledger.SubscriptionStatus(raw)
	if status.Valid() {
		return status
	}
	return ledger.SubscriptionNone
}

// NormalizePlan lowercases a plan name and maps anything unknown to free.
func NormalizePlan(raw string) ledger.Plan {
	plan := ledger.Plan(strings.ToLower(strings.TrimSpace(raw)))
	if plan.Valid() {
		return plan
	}
	return ledger.PlanFree
}

func normalizePurchase(p rawPurchase) ledger.Purchase {
	status := ledger.PurchasePaid
	raw := p.PaymentStatus
	if raw == nil {
		raw = p.Status
	}
	if raw != nil {
		switch ledger.PurchaseStatus(*raw) {
		case ledger.PurchaseRefunded:
			status = ledger.PurchaseRefunded
		case ledger.PurchasePending:
			status = ledger.PurchasePending
		}
	}

	amount := 0.0
	switch {
	case p.AmountPaid != nil:
		amount = *p.AmountPaid
	case p.Amount != nil:
		amount = *p.Amount
	}

	var date time.Time
	if t := firstTime(p.PaymentDate, p.Date, p.CreatedAt); t != nil {
		date = *t
	}

	return ledger.Purchase{
		ID:       firstID(p.MongoID, p.ID),
		UserID:   firstID(p.UserID),
		PlanName: NormalizePlan(firstString(p.PlanName, p.PlanNameSnake)),
		Status:   status,
		Date:     date,
		Amount:   amount,
	}
}

func normalizeAPIKey(k rawAPIKey, now time.Time) ledger.APIKey {
	prefix := deref(k.KeyPrefix)
	if k.KeyPrefix == nil && k.APIKey != nil {
		prefix = *k.APIKey
		if len(prefix) > rawKeyPrefixLength {
			prefix = prefix[:rawKeyPrefixLength]
		}
	}

	rate := defaultKeyRateLimit
	if k.RateLimitPerMinute != nil {
		rate = *k.RateLimitPerMinute
	}

	status := ledger.KeyActive
	if k.IsActive != nil && !*k.IsActive {
		status = ledger.KeyRevoked
	}

	return ledger.APIKey{
		ID:                 firstID(k.MongoID, k.ID),
		UserID:             firstID(k.UserID),
		KeyPrefix:          prefix,
		EncryptedKey:       hiddenKeyMarker,
		RateLimitPerMinute: rate,
		LastUsedAt:         firstTime(k.LastUsedAt, k.UpdatedAt),
		UsageCount:         derefInt(k.UsageCount),
		Status:             status,
		CreatedAt:          timeOr(k.CreatedAt, now),
	}
}

func normalizeAudit(a rawAudit) ledger.AuditRow {
	row := ledger.AuditRow{
		ID:       firstID(a.ID),
		AdminID:  a.AdminID,
		Action:   ledger.AuditAction(a.Action),
		TargetID: firstID(a.TargetID),
		Reason:   a.Reason,
	}
	if a.Timestamp != nil {
		row.Timestamp = a.Timestamp.Time
	}
	return row
}

func decodeArray[T any](raw json.RawMessage) ([]T, error) {
	if !isArray(raw) {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func firstID(ids ...*flexString) string {
	for _, id := range ids {
		if id != nil && *id != "" {
			return string(*id)
		}
	}
	return ""
}

func firstString(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}

func firstTime(values ...*flexTime) *time.Time {
	for _, v := range values {
		if v != nil && !v.IsZero() {
			t := v.Time
			return &t
		}
	}
	return nil
}

func timeOr(v *flexTime, fallback time.Time) time.Time {
	if v != nil && !v.IsZero() {
		return v.Time
	}
	return fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

// AngelaMos | 2026
// postgres.go

package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
)

const (
	selectUsers = `
		SELECT id, full_name, email, phone, country, onboarding_completed,
			created_at, last_seen, updated_at, plan, subscription_status,
			credits_find, credits_verify, email_verified, admin_notes
		FROM users
		ORDER BY created_at DESC`

	selectPurchases = `
		SELECT id, user_id, plan_name, payment_status, amount_paid, payment_date
		FROM purchases
		ORDER BY payment_date DESC`

	selectAPIKeys = `
		SELECT id, user_id, key_prefix, rate_limit_per_minute, last_used_at,
			usage_count, is_active, created_at
		FROM api_keys
		ORDER BY created_at DESC`

	selectAudits = `
		SELECT id, admin_id, action, target_id, created_at, reason
		FROM admin_audit_logs
		ORDER BY created_at ASC`
)

type userRow struct {
	ID                  string         `db:"id"`
	FullName            sql.NullString `db:"full_name"`
	Email               string         `db:"email"`
	Phone               sql.NullString `db:"phone"`
	Country             sql.NullString `db:"country"`
	OnboardingCompleted sql.NullBool   `db:"onboarding_completed"`
	CreatedAt           sql.NullTime   `db:"created_at"`
	LastSeen            sql.NullTime   `db:"last_seen"`
	UpdatedAt           sql.NullTime   `db:"updated_at"`
	Plan                sql.NullString `db:"plan"`
	SubscriptionStatus  sql.NullString `db:"subscription_status"`
	CreditsFind         sql.NullInt64  `db:"credits_find"`
	CreditsVerify       sql.NullInt64  `db:"credits_verify"`
	EmailVerified       sql.NullBool   `db:"email_verified"`
	AdminNotes          sql.NullString `db:"admin_notes"`
}

type purchaseRow struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	PlanName      sql.NullString  `db:"plan_name"`
	PaymentStatus sql.NullString  `db:"payment_status"`
	AmountPaid    sql.NullFloat64 `db:"amount_paid"`
	PaymentDate   sql.NullTime    `db:"payment_date"`
}

type apiKeyRow struct {
	ID                 string         `db:"id"`
	UserID             sql.NullString `db:"user_id"`
	KeyPrefix          sql.NullString `db:"key_prefix"`
	RateLimitPerMinute sql.NullInt64  `db:"rate_limit_per_minute"`
	LastUsedAt         sql.NullTime   `db:"last_used_at"`
	UsageCount         sql.NullInt64  `db:"usage_count"`
	IsActive           sql.NullBool   `db:"is_active"`
	CreatedAt          sql.NullTime   `db:"created_at"`
}

type auditRow struct {
	ID        string         `db:"id"`
	AdminID   string         `db:"admin_id"`
	Action    string         `db:"action"`
	TargetID  string         `db:"target_id"`
	CreatedAt sql.NullTime   `db:"created_at"`
	Reason    sql.NullString `db:"reason"`
}

// PostgresSource reads the bootstrap collections straight from a replica
// of the product database inside one read-only transaction.
type PostgresSource struct {
	db    *sqlx.DB
	clock clock.Clock
}

func NewPostgresSource(db *sqlx.DB, c clock.Clock) *PostgresSource {
	return &PostgresSource{db: db, clock: c}
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

func (s *PostgresSource) Fetch(ctx context.Context) (ledger.PartialSnapshot, error) {
	var (
		users     []userRow
		purchases []purchaseRow
		keys      []apiKeyRow
		audits    []auditRow
	)

	err := core.InReadOnlyTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return readAll(ctx, tx, &users, &purchases, &keys, &audits)
	})
	if err != nil {
		return ledger.PartialSnapshot{}, err
	}

	now := s.clock.Now()
	snap := ledger.PartialSnapshot{
		Users:     make([]ledger.User, 0, len(users)),
		Purchases: make([]ledger.Purchase, 0, len(purchases)),
		APIKeys:   make([]ledger.APIKey, 0, len(keys)),
		Audits:    make([]ledger.AuditRow, 0, len(audits)),
	}
	for _, r := range users {
		snap.Users = append(snap.Users, normalizeUser(r.raw(), now))
	}
	for _, r := range purchases {
		snap.Purchases = append(snap.Purchases, normalizePurchase(r.raw()))
	}
	for _, r := range keys {
		snap.APIKeys = append(snap.APIKeys, normalizeAPIKey(r.raw(), now))
	}
	for _, r := range audits {
		snap.Audits = append(snap.Audits, normalizeAudit(r.raw()))
	}

	return snap, nil
}

func readAll(
	ctx context.Context,
	db core.DBTX,
	users *[]userRow,
	purchases *[]purchaseRow,
	keys *[]apiKeyRow,
	audits *[]auditRow,
) error {
	if err := db.SelectContext(ctx, users, selectUsers); err != nil {
		return fmt.Errorf("select users: %w", err)
	}
	if err := db.SelectContext(ctx, purchases, selectPurchases); err != nil {
		return fmt.Errorf("select purchases: %w", err)
	}
	if err := db.SelectContext(ctx, keys, selectAPIKeys); err != nil {
		return fmt.Errorf("select api keys: %w", err)
	}
	if err := db.SelectContext(ctx, audits, selectAudits); err != nil {
		return fmt.Errorf("select audits: %w", err)
	}
	return nil
}

func (r userRow) raw() rawUser {
	id := flexString(r.ID)
	return rawUser{
		ID:                  &id,
		FullName:            nullString(r.FullName),
		Email:               r.Email,
		Phone:               nullString(r.Phone),
		Country:             nullString(r.Country),
		OnboardingCompleted: nullBool(r.OnboardingCompleted),
		CreatedAt:           nullTime(r.CreatedAt),
		LastSeen:            nullTime(r.LastSeen),
		UpdatedAt:           nullTime(r.UpdatedAt),
		Plan:                nullString(r.Plan),
		SubscriptionStatus:  nullString(r.SubscriptionStatus),
		CreditsFind:         nullInt(r.CreditsFind),
		CreditsVerify:       nullInt(r.CreditsVerify),
		EmailVerified:       nullBool(r.EmailVerified),
		AdminNotes:          nullString(r.AdminNotes),
	}
}

func (r purchaseRow) raw() rawPurchase {
	id, userID := flexString(r.ID), flexString(r.UserID)
	p := rawPurchase{
		ID:            &id,
		UserID:        &userID,
		PlanName:      nullString(r.PlanName),
		PaymentStatus: nullString(r.PaymentStatus),
		PaymentDate:   nullTime(r.PaymentDate),
	}
	if r.AmountPaid.Valid {
		amount := r.AmountPaid.Float64
		p.AmountPaid = &amount
	}
	return p
}

func (r apiKeyRow) raw() rawAPIKey {
	id := flexString(r.ID)
	k := rawAPIKey{
		ID:         &id,
		KeyPrefix:  nullString(r.KeyPrefix),
		LastUsedAt: nullTime(r.LastUsedAt),
		UsageCount: nullInt(r.UsageCount),
		IsActive:   nullBool(r.IsActive),
		CreatedAt:  nullTime(r.CreatedAt),
	}
	if r.UserID.Valid {
		userID := flexString(r.UserID.String)
		k.UserID = &userID
	}
	if r.RateLimitPerMinute.Valid {
		rate := int(r.RateLimitPerMinute.Int64)
		k.RateLimitPerMinute = &rate
	}
	return k
}

func (r auditRow) raw() rawAudit {
	id, target := flexString(r.ID), flexString(r.TargetID)
	return rawAudit{
		ID:        &id,
		AdminID:   r.AdminID,
		Action:    r.Action,
		TargetID:  &target,
		Timestamp: nullTime(r.CreatedAt),
		Reason:    r.Reason.String,
	}
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullTime(v sql.NullTime) *flexTime {
	if !v.Valid {
		return nil
	}
	return &flexTime{Time: v.Time.UTC()}
}

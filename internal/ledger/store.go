// AngelaMos | 2026
// store.go

// Package ledger holds the console's authoritative in-memory snapshot of
// users, purchases, API keys, content and audit rows. Mutators are the only
// write surface; each one runs under the store lock, and every sensitive
// mutation appends exactly one audit row in the same critical section.
package ledger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/core"
)

var (
	ErrUserNotFound     = fmt.Errorf("user: %w", core.ErrNotFound)
	ErrAPIKeyNotFound   = fmt.Errorf("api key: %w", core.ErrNotFound)
	ErrContentNotFound  = fmt.Errorf("content: %w", core.ErrNotFound)
	ErrInvalidRateLimit = fmt.Errorf("rate limit must be positive: %w", core.ErrInvalidInput)
	ErrInvalidSlug      = fmt.Errorf("slug is empty after normalisation: %w", core.ErrInvalidInput)
	ErrInvalidPlan      = fmt.Errorf("invalid plan or subscription status: %w", core.ErrInvalidInput)
	ErrDuplicateSlug    = fmt.Errorf("slug: %w", core.ErrDuplicateKey)
)

type Store struct {
	mu sync.RWMutex

	users     []User
	purchases []Purchase
	apiKeys   []APIKey
	contents  []ContentItem
	audits    []AuditRow

	clock  clock.Clock
	sealer KeySealer
	newID  func() string
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

func NewStore(sealer KeySealer, opts ...Option) *Store {
	s := &Store{
		users:     []User{},
		purchases: []Purchase{},
		apiKeys:   []APIKey{},
		contents:  []ContentItem{},
		audits:    []AuditRow{},
		clock:     clock.New(),
		sealer:    sealer,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateAPIKeyInput struct {
	UserID             string
	RateLimitPerMinute int
}

// CreatedAPIKey carries the plaintext key. It is the only place the
// plaintext ever appears; the store keeps the sealed form alone.
type CreatedAPIKey struct {
	FullKey string
	Key     APIKey
	Audit   AuditRow
}

type ContentInput struct {
	ID          string
	Title       string
	Slug        string
	Summary     string
	Body        string
	Attachments []string
	Published   bool
}

// AddCredits applies a signed adjustment. A non-negative delta is credited
// to the find pool; a negative delta adds its absolute value to the verify
// pool. The total is always recomputed from the two pools.
func (s *Store) AddCredits(
	userID string,
	delta int64,
	adminID, reason string,
) (User, AuditRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndex(userID)
	if idx < 0 {
		return User{}, AuditRow{}, fmt.Errorf("add credits %s: %w", userID, ErrUserNotFound)
	}

	u := &s.users[idx]
	if delta >= 0 {
		u.CreditsFind += delta
	} else {
		u.CreditsVerify += -delta
	}
	u.CreditsTotal = u.CreditsFind + u.CreditsVerify

	row := s.appendAudit(adminID, ActionCreditsAdjust, userID, reason)
	return u.clone(), row, nil
}

func (s *Store) CreateAPIKey(
	in CreateAPIKeyInput,
	adminID string,
) (CreatedAPIKey, error) {
	if in.RateLimitPerMinute <= 0 {
		return CreatedAPIKey{}, fmt.Errorf("create api key: %w", ErrInvalidRateLimit)
	}

	fullKey := NewKeySecret()
	sealed, err := s.sealer.Seal(fullKey)
	if err != nil {
		return CreatedAPIKey{}, fmt.Errorf("create api key: seal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.UserID != "" && s.userIndex(in.UserID) < 0 {
		return CreatedAPIKey{}, fmt.Errorf("create api key for %s: %w", in.UserID, ErrUserNotFound)
	}

	key := APIKey{
		ID:                 s.newID(),
		UserID:             in.UserID,
		KeyPrefix:          KeyPrefix(fullKey),
		EncryptedKey:       sealed,
		RateLimitPerMinute: in.RateLimitPerMinute,
		UsageCount:         0,
		Status:             KeyActive,
		CreatedAt:          s.clock.Now(),
	}

	s.apiKeys = append([]APIKey{key}, s.apiKeys...)
	row := s.appendAudit(adminID, ActionAPIKeyCreate, key.ID, "")

	return CreatedAPIKey{FullKey: fullKey, Key: key.clone(), Audit: row}, nil
}

// RevokeAPIKey is idempotent on state but audits every call.
func (s *Store) RevokeAPIKey(keyID, adminID, reason string) (APIKey, AuditRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.apiKeyIndex(keyID)
	if idx < 0 {
		return APIKey{}, AuditRow{}, fmt.Errorf("revoke api key %s: %w", keyID, ErrAPIKeyNotFound)
	}

	s.apiKeys[idx].Status = KeyRevoked
	row := s.appendAudit(adminID, ActionAPIKeyRevoke, keyID, reason)

	return s.apiKeys[idx].clone(), row, nil
}

func (s *Store) UpdateAPIKeyRateLimit(keyID string, rate int) (APIKey, error) {
	if rate <= 0 {
		return APIKey{}, fmt.Errorf("update rate limit: %w", ErrInvalidRateLimit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.apiKeyIndex(keyID)
	if idx < 0 {
		return APIKey{}, fmt.Errorf("update rate limit %s: %w", keyID, ErrAPIKeyNotFound)
	}

	s.apiKeys[idx].RateLimitPerMinute = rate
	return s.apiKeys[idx].clone(), nil
}

func (s *Store) PublishContent(contentID, adminID, reason string) (ContentItem, AuditRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.contentIndex(contentID)
	if idx < 0 {
		return ContentItem{}, AuditRow{}, fmt.Errorf("publish content %s: %w", contentID, ErrContentNotFound)
	}

	c := &s.contents[idx]
	c.Published = true
	c.UpdatedAt = s.clock.Now()

	row := s.appendAudit(adminID, ActionContentPublish, contentID, reason)
	return c.clone(), row, nil
}

// UpsertContent replaces the whole item when in.ID is set and creates an
// unpublished draft otherwise. Fields are never merged.
func (s *Store) UpsertContent(in ContentInput) (ContentItem, error) {
	return s.writeContent(in, false)
}

// EditContent replaces the editable fields of an existing item and keeps its
// published state; in.Published is ignored. Only PublishContent moves it.
func (s *Store) EditContent(in ContentInput) (ContentItem, error) {
	if in.ID == "" {
		return ContentItem{}, fmt.Errorf("edit content: %w", ErrContentNotFound)
	}
	return s.writeContent(in, true)
}

func (s *Store) writeContent(in ContentInput, keepPublished bool) (ContentItem, error) {
	normalized := slug.Make(in.Slug)
	if normalized == "" {
		normalized = slug.Make(in.Title)
	}
	if normalized == "" {
		return ContentItem{}, fmt.Errorf("upsert content: %w", ErrInvalidSlug)
	}

	attachments := make([]string, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		if a = strings.TrimSpace(a); a != "" {
			attachments = append(attachments, a)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	if in.ID != "" {
		if idx = s.contentIndex(in.ID); idx < 0 {
			return ContentItem{}, fmt.Errorf("upsert content %s: %w", in.ID, ErrContentNotFound)
		}
	}

	if other := s.contentIndexBySlug(normalized); other >= 0 && other != idx {
		return ContentItem{}, fmt.Errorf("upsert content %q: %w", normalized, ErrDuplicateSlug)
	}

	now := s.clock.Now()

	if idx >= 0 {
		published := in.Published
		if keepPublished {
			published = s.contents[idx].Published
		}
		s.contents[idx] = ContentItem{
			ID:          in.ID,
			Title:       in.Title,
			Slug:        normalized,
			Summary:     in.Summary,
			Body:        in.Body,
			Attachments: attachments,
			Published:   published,
			UpdatedAt:   now,
		}
		return s.contents[idx].clone(), nil
	}

	created := ContentItem{
		ID:          s.newID(),
		Title:       in.Title,
		Slug:        normalized,
		Summary:     in.Summary,
		Body:        in.Body,
		Attachments: attachments,
		Published:   false,
		UpdatedAt:   now,
	}
	s.contents = append([]ContentItem{created}, s.contents...)

	return created.clone(), nil
}

func (s *Store) UpdateUserNotes(userID, notes string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndex(userID)
	if idx < 0 {
		return User{}, fmt.Errorf("update notes %s: %w", userID, ErrUserNotFound)
	}

	s.users[idx].AdminNotes = notes
	return s.users[idx].clone(), nil
}

func (s *Store) UpdateUserPlan(
	userID string,
	plan Plan,
	status SubscriptionStatus,
) (User, error) {
	if !plan.Valid() || !status.Valid() {
		return User{}, fmt.Errorf("update plan %s: %w", userID, ErrInvalidPlan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndex(userID)
	if idx < 0 {
		return User{}, fmt.Errorf("update plan %s: %w", userID, ErrUserNotFound)
	}

	s.users[idx].Plan = plan
	s.users[idx].SubscriptionStatus = status
	return s.users[idx].clone(), nil
}

// DeleteUser removes the user only. Purchases and keys that reference it
// are left in place.
func (s *Store) DeleteUser(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndex(userID)
	if idx < 0 {
		return fmt.Errorf("delete user %s: %w", userID, ErrUserNotFound)
	}

	s.users = append(s.users[:idx], s.users[idx+1:]...)
	return nil
}

// SetAll hydrates the store from an external snapshot. Cross references
// are not validated.
func (s *Store) SetAll(p PartialSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Users != nil {
		s.users = cloneUsers(p.Users)
	}
	if p.Purchases != nil {
		s.purchases = clonePurchases(p.Purchases)
	}
	if p.APIKeys != nil {
		s.apiKeys = cloneAPIKeys(p.APIKeys)
	}
	if p.Contents != nil {
		s.contents = cloneContents(p.Contents)
	}
	if p.Audits != nil {
		s.audits = cloneAudits(p.Audits)
	}
}

func (s *Store) appendAudit(adminID string, action AuditAction, targetID, reason string) AuditRow {
	row := AuditRow{
		ID:        s.newID(),
		AdminID:   adminID,
		Action:    action,
		TargetID:  targetID,
		Timestamp: s.clock.Now(),
		Reason:    reason,
	}
	s.audits = append(s.audits, row)
	return row
}

func (s *Store) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) apiKeyIndex(id string) int {
	for i := range s.apiKeys {
		if s.apiKeys[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) contentIndex(id string) int {
	for i := range s.contents {
		if s.contents[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) contentIndexBySlug(sl string) int {
	for i := range s.contents {
		if s.contents[i].Slug == sl {
			return i
		}
	}
	return -1
}

// AngelaMos | 2026
// reader.go

package ledger

import (
	"fmt"
)

// Snapshot returns a deep copy of every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Users:     cloneUsers(s.users),
		Purchases: clonePurchases(s.purchases),
		APIKeys:   cloneAPIKeys(s.apiKeys),
		Contents:  cloneContents(s.contents),
		Audits:    cloneAudits(s.audits),
	}
}

func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUsers(s.users)
}

func (s *Store) User(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.userIndex(id)
	if idx < 0 {
		return User{}, fmt.Errorf("get user %s: %w", id, ErrUserNotFound)
	}
	return s.users[idx].clone(), nil
}

func (s *Store) Purchases() []Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePurchases(s.purchases)
}

func (s *Store) PurchasesForUser(userID string) []Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Purchase{}
	for _, p := range s.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) APIKeys() []APIKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAPIKeys(s.apiKeys)
}

func (s *Store) APIKey(id string) (APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.apiKeyIndex(id)
	if idx < 0 {
		return APIKey{}, fmt.Errorf("get api key %s: %w", id, ErrAPIKeyNotFound)
	}
	return s.apiKeys[idx].clone(), nil
}

func (s *Store) APIKeysForUser(userID string) []APIKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []APIKey{}
	for _, k := range s.apiKeys {
		if k.UserID == userID {
			out = append(out, k.clone())
		}
	}
	return out
}

func (s *Store) Contents() []ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneContents(s.contents)
}

func (s *Store) Content(id string) (ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.contentIndex(id)
	if idx < 0 {
		return ContentItem{}, fmt.Errorf("get content %s: %w", id, ErrContentNotFound)
	}
	return s.contents[idx].clone(), nil
}

// Audits returns rows in append order, oldest first.
func (s *Store) Audits() []AuditRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAudits(s.audits)
}

func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Counts{
		Users:     len(s.users),
		Purchases: len(s.purchases),
		APIKeys:   len(s.apiKeys),
		Contents:  len(s.contents),
		Audits:    len(s.audits),
	}
}

// AngelaMos | 2026
// store_test.go

package ledger_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
)

var epoch = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store  *ledger.Store
	clock  *clock.FakeClock
	sealer *core.SecretSealer
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	sealer, err := core.NewSecretSealer("ledger-test-secret-0123456789")
	require.NoError(t, err)

	fc := clock.NewFake(epoch)
	seq := 0
	var mu sync.Mutex
	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}

	store := ledger.NewStore(sealer, ledger.WithClock(fc), ledger.WithIDGenerator(ids))
	store.SetAll(ledger.PartialSnapshot{
		Users: []ledger.User{
			{
				ID:                 "u1",
				FullName:           "Ada Admin",
				Email:              "ada@example.com",
				Plan:               ledger.PlanPro,
				SubscriptionStatus: ledger.SubscriptionActive,
				CreditsFind:        1000,
				CreditsVerify:      500,
				CreditsTotal:       1500,
				CreatedAt:          epoch.AddDate(0, -1, 0),
			},
			{
				ID:                 "u2",
				FullName:           "Bo Basic",
				Email:              "bo@example.com",
				Plan:               ledger.PlanFree,
				SubscriptionStatus: ledger.SubscriptionNone,
				CreatedAt:          epoch.AddDate(0, 0, -3),
			},
		},
		Contents: []ledger.ContentItem{
			{
				ID:        "c1",
				Title:     "Launch notes",
				Slug:      "launch-notes",
				Body:      "# Hello",
				UpdatedAt: epoch.AddDate(0, 0, -1),
			},
		},
	})

	return fixture{store: store, clock: fc, sealer: sealer}
}

func TestAddCreditsEndToEndCorrection(t *testing.T) {
	f := newFixture(t)

	user, row, err := f.store.AddCredits("u1", -200, "admin-1", "correction")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), user.CreditsFind)
	assert.Equal(t, int64(700), user.CreditsVerify)
	assert.Equal(t, int64(1700), user.CreditsTotal)

	audits := f.store.Audits()
	require.Len(t, audits, 1)
	assert.Equal(t, row, audits[0])
	assert.Equal(t, ledger.ActionCreditsAdjust, row.Action)
	assert.Equal(t, "u1", row.TargetID)
	assert.Equal(t, "admin-1", row.AdminID)
	assert.Equal(t, "correction", row.Reason)
	assert.Equal(t, epoch, row.Timestamp)
}

func TestAddCreditsAsymmetricPools(t *testing.T) {
	f := newFixture(t)

	user, _, err := f.store.AddCredits("u2", 100, "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.CreditsFind)
	assert.Equal(t, int64(0), user.CreditsVerify)

	user, _, err = f.store.AddCredits("u2", -50, "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.CreditsFind)
	assert.Equal(t, int64(50), user.CreditsVerify)

	user, _, err = f.store.AddCredits("u2", 0, "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.CreditsFind)
	assert.Equal(t, int64(50), user.CreditsVerify)
}

func TestAddCreditsTotalInvariant(t *testing.T) {
	f := newFixture(t)

	deltas := []int64{10, -3, 250, -999, 0, 7, -1, 42}
	for _, d := range deltas {
		_, _, err := f.store.AddCredits("u1", d, "admin-1", "bulk")
		require.NoError(t, err)

		for _, u := range f.store.Users() {
			assert.Equal(t, u.CreditsFind+u.CreditsVerify, u.CreditsTotal, "user %s", u.ID)
		}
	}
	assert.Len(t, f.store.Audits(), len(deltas))
}

func TestAddCreditsEmptyReasonStillAudited(t *testing.T) {
	f := newFixture(t)

	_, row, err := f.store.AddCredits("u1", 5, "admin-1", "")
	require.NoError(t, err)
	assert.Empty(t, row.Reason)
	assert.Len(t, f.store.Audits(), 1)
}

func TestMissingEntityReturnsNotFoundWithoutAudit(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.store.AddCredits("ghost", 10, "admin-1", "x")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, _, err = f.store.RevokeAPIKey("ghost", "admin-1", "")
	assert.ErrorIs(t, err, ledger.ErrAPIKeyNotFound)

	_, _, err = f.store.PublishContent("ghost", "admin-1", "")
	assert.ErrorIs(t, err, ledger.ErrContentNotFound)

	_, err = f.store.UpdateAPIKeyRateLimit("ghost", 10)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.store.UpdateUserNotes("ghost", "n")
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = f.store.DeleteUser("ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Empty(t, f.store.Audits())
}

func TestCreateAPIKey(t *testing.T) {
	f := newFixture(t)

	created, err := f.store.CreateAPIKey(
		ledger.CreateAPIKeyInput{UserID: "u1", RateLimitPerMinute: 120},
		"admin-1",
	)
	require.NoError(t, err)

	assert.Len(t, created.FullKey, 64)
	assert.NotContains(t, created.Key.EncryptedKey, created.FullKey)
	assert.Equal(t, created.FullKey[:8]+"...", created.Key.KeyPrefix)
	assert.Equal(t, ledger.KeyActive, created.Key.Status)
	assert.Equal(t, int64(0), created.Key.UsageCount)
	assert.Equal(t, 120, created.Key.RateLimitPerMinute)
	assert.Equal(t, epoch, created.Key.CreatedAt)

	plain, err := f.sealer.Open(created.Key.EncryptedKey)
	require.NoError(t, err)
	assert.Equal(t, created.FullKey, plain)

	audits := f.store.Audits()
	require.Len(t, audits, 1)
	assert.Equal(t, ledger.ActionAPIKeyCreate, audits[0].Action)
	assert.Equal(t, created.Key.ID, audits[0].TargetID)
	assert.Empty(t, audits[0].Reason)

	for _, k := range f.store.APIKeys() {
		assert.NotEqual(t, created.FullKey, k.EncryptedKey)
		assert.False(t, strings.Contains(k.KeyPrefix, created.FullKey))
	}
}

func TestCreateAPIKeyNewestFirst(t *testing.T) {
	f := newFixture(t)

	first, err := f.store.CreateAPIKey(ledger.CreateAPIKeyInput{RateLimitPerMinute: 60}, "a")
	require.NoError(t, err)
	second, err := f.store.CreateAPIKey(ledger.CreateAPIKeyInput{RateLimitPerMinute: 60}, "a")
	require.NoError(t, err)

	keys := f.store.APIKeys()
	require.Len(t, keys, 2)
	assert.Equal(t, second.Key.ID, keys[0].ID)
	assert.Equal(t, first.Key.ID, keys[1].ID)
	assert.NotEqual(t, first.FullKey, second.FullKey)
}

func TestCreateAPIKeyValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateAPIKey(ledger.CreateAPIKeyInput{RateLimitPerMinute: 0}, "a")
	assert.ErrorIs(t, err, ledger.ErrInvalidRateLimit)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.store.CreateAPIKey(ledger.CreateAPIKeyInput{UserID: "ghost", RateLimitPerMinute: 5}, "a")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)

	assert.Empty(t, f.store.APIKeys())
	assert.Empty(t, f.store.Audits())
}

func TestRevokeAPIKeyIsIdempotentButAuditsEveryCall(t *testing.T) {
	f := newFixture(t)

	created, err := f.store.CreateAPIKey(ledger.CreateAPIKeyInput{RateLimitPerMinute: 60}, "a")
	require.NoError(t, err)

	key, row, err := f.store.RevokeAPIKey(created.Key.ID, "a", "leaked")
	require.NoError(t, err)
	assert.True(t, key.IsRevoked())
	assert.Equal(t, ledger.ActionAPIKeyRevoke, row.Action)
	assert.Equal(t, "leaked", row.Reason)

	key, _, err = f.store.RevokeAPIKey(created.Key.ID, "a", "")
	require.NoError(t, err)
	assert.Equal(t, ledger.KeyRevoked, key.Status)

	assert.Len(t, f.store.Audits(), 3)
}

func TestUpdateAPIKeyRateLimitIsNotAudited(t *testing.T) {
	f := newFixture(t)

	created, err := f.store.CreateAPIKey(ledger.CreateAPIKeyInput{RateLimitPerMinute: 60}, "a")
	require.NoError(t, err)

	key, err := f.store.UpdateAPIKeyRateLimit(created.Key.ID, 300)
	require.NoError(t, err)
	assert.Equal(t, 300, key.RateLimitPerMinute)

	_, err = f.store.UpdateAPIKeyRateLimit(created.Key.ID, -1)
	assert.ErrorIs(t, err, ledger.ErrInvalidRateLimit)

	assert.Len(t, f.store.Audits(), 1)
}

func TestPublishContent(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(time.Hour)

	item, row, err := f.store.PublishContent("c1", "admin-2", "release")
	require.NoError(t, err)
	assert.True(t, item.Published)
	assert.Equal(t, epoch.Add(time.Hour), item.UpdatedAt)
	assert.Equal(t, ledger.ActionContentPublish, row.Action)
	assert.Equal(t, "c1", row.TargetID)

	item, _, err = f.store.PublishContent("c1", "admin-2", "")
	require.NoError(t, err)
	assert.True(t, item.Published)
	assert.Len(t, f.store.Audits(), 2)
}

func TestUpsertContentCreatesDraft(t *testing.T) {
	f := newFixture(t)

	item, err := f.store.UpsertContent(ledger.ContentInput{
		Title:     "Pricing Update 2026",
		Body:      "new tiers",
		Published: true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "pricing-update-2026", item.Slug)
	assert.False(t, item.Published)
	assert.NotNil(t, item.Attachments)
	assert.Empty(t, item.Attachments)
	assert.Equal(t, epoch, item.UpdatedAt)

	contents := f.store.Contents()
	require.Len(t, contents, 2)
	assert.Equal(t, item.ID, contents[0].ID)
	assert.Empty(t, f.store.Audits())
}

func TestUpsertContentReplacesWholeItem(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.store.PublishContent("c1", "a", "")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	item, err := f.store.UpsertContent(ledger.ContentInput{
		ID:          "c1",
		Title:       "Launch notes v2",
		Slug:        "Launch Notes",
		Body:        "rewritten",
		Attachments: []string{"https://cdn.example.com/a.png", " "},
		Published:   false,
	})
	require.NoError(t, err)

	assert.Equal(t, "launch-notes", item.Slug)
	assert.Equal(t, "rewritten", item.Body)
	assert.Empty(t, item.Summary)
	assert.Equal(t, []string{"https://cdn.example.com/a.png"}, item.Attachments)
	assert.False(t, item.Published)
	assert.Equal(t, epoch.Add(time.Minute), item.UpdatedAt)
	assert.Len(t, f.store.Audits(), 1)
}

func TestUpsertContentSlugRules(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.UpsertContent(ledger.ContentInput{Title: "Launch Notes"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateSlug)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = f.store.UpsertContent(ledger.ContentInput{Title: "  ", Slug: ""})
	assert.ErrorIs(t, err, ledger.ErrInvalidSlug)

	_, err = f.store.UpsertContent(ledger.ContentInput{ID: "ghost", Title: "Other"})
	assert.ErrorIs(t, err, ledger.ErrContentNotFound)
}

func TestEditContentKeepsPublishedState(t *testing.T) {
	f := newFixture(t)

	item, err := f.store.EditContent(ledger.ContentInput{ID: "c1", Title: "Launch notes", Published: true})
	require.NoError(t, err)
	assert.False(t, item.Published)

	_, _, err = f.store.PublishContent("c1", "a", "")
	require.NoError(t, err)

	item, err = f.store.EditContent(ledger.ContentInput{ID: "c1", Title: "Launch notes", Body: "v2"})
	require.NoError(t, err)
	assert.True(t, item.Published)
	assert.Equal(t, "v2", item.Body)
	assert.Len(t, f.store.Audits(), 1)

	_, err = f.store.EditContent(ledger.ContentInput{Title: "No id"})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Len(t, f.store.Contents(), 1)
}

func TestUpsertContentUnknownIDWinsOverSlugClash(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.UpsertContent(ledger.ContentInput{ID: "ghost", Slug: "launch-notes", Title: "x"})
	assert.ErrorIs(t, err, ledger.ErrContentNotFound)
	assert.NotErrorIs(t, err, core.ErrDuplicateKey)

	item, err := f.store.UpsertContent(ledger.ContentInput{ID: "c1", Title: "Launch Notes"})
	require.NoError(t, err)
	assert.Equal(t, "launch-notes", item.Slug)
}

func TestUserEdits(t *testing.T) {
	f := newFixture(t)

	user, err := f.store.UpdateUserNotes("u2", "called about billing")
	require.NoError(t, err)
	assert.Equal(t, "called about billing", user.AdminNotes)

	user, err = f.store.UpdateUserPlan("u2", ledger.PlanAgency, ledger.SubscriptionActive)
	require.NoError(t, err)
	assert.Equal(t, ledger.PlanAgency, user.Plan)
	assert.Equal(t, ledger.SubscriptionActive, user.SubscriptionStatus)

	_, err = f.store.UpdateUserPlan("u2", ledger.Plan("gold"), ledger.SubscriptionActive)
	assert.ErrorIs(t, err, ledger.ErrInvalidPlan)

	require.NoError(t, f.store.DeleteUser("u2"))
	_, err = f.store.User("u2")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)

	assert.Empty(t, f.store.Audits())
}

func TestSetAllReplacesOnlyProvidedCollections(t *testing.T) {
	f := newFixture(t)

	f.store.SetAll(ledger.PartialSnapshot{
		Purchases: []ledger.Purchase{
			{ID: "p1", UserID: "missing-user", PlanName: ledger.PlanPro, Status: ledger.PurchasePaid, Amount: 49},
		},
		Contents: []ledger.ContentItem{},
	})

	counts := f.store.Counts()
	assert.Equal(t, 2, counts.Users)
	assert.Equal(t, 1, counts.Purchases)
	assert.Equal(t, 0, counts.Contents)
	assert.Len(t, f.store.PurchasesForUser("missing-user"), 1)
	assert.Empty(t, f.store.PurchasesForUser("u1"))
}

func TestReadersReturnCopies(t *testing.T) {
	f := newFixture(t)

	seen := epoch
	users := f.store.Users()
	users[0].CreditsFind = 1
	users[0].LastSeen = &seen

	snap := f.store.Snapshot()
	snap.Contents[0].Attachments = append(snap.Contents[0].Attachments, "x")

	user, err := f.store.User("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), user.CreditsFind)
	assert.Nil(t, user.LastSeen)

	item, err := f.store.Content("c1")
	require.NoError(t, err)
	assert.Empty(t, item.Attachments)
}

func TestConcurrentMutationsKeepInvariants(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			delta := int64(i)
			if i%2 == 1 {
				delta = -delta
			}
			_, _, err := f.store.AddCredits("u1", delta, "a", "")
			if err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	user, err := f.store.User("u1")
	require.NoError(t, err)
	assert.Equal(t, user.CreditsFind+user.CreditsVerify, user.CreditsTotal)
	assert.Equal(t, int64(1000+600), user.CreditsFind)
	assert.Equal(t, int64(500+625), user.CreditsVerify)
	assert.Len(t, f.store.Audits(), 50)
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "abcdefgh...", ledger.KeyPrefix("abcdefghijkl"))
	assert.Equal(t, "abc...", ledger.KeyPrefix("abc"))

	secret := ledger.NewKeySecret()
	assert.Len(t, secret, 64)
	assert.NotContains(t, secret, "-")
}

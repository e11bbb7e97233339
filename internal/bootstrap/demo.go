// AngelaMos | 2026
// demo.go

package bootstrap

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailsfinder/admin-console/internal/ledger"
)

const (
	demoMaxCredits     = 200_000
	demoSignupDays     = 120
	demoLastSeenDays   = 40
	demoPurchaseDays   = 20
	demoKeyLastUsed    = 10
	demoKeyCreatedDays = 60
	demoMaxUsage       = 1000
	demoRefundOdds     = 0.1
)

var demoAccounts = []struct {
	name  string
	email string
}{
	{"Riley Demo", "riley@demo.example.com"},
	{"Jordan Sample", "jordan@demo.example.com"},
	{"Casey Trial", "casey@demo.example.com"},
	{"Morgan Preview", "morgan@demo.example.com"},
}

var demoPlans = []ledger.Plan{
	ledger.PlanFree,
	ledger.PlanPro,
	ledger.PlanAgency,
	ledger.PlanLifetime,
}

var demoPrices = map[ledger.Plan]float64{
	ledger.PlanPro:      49,
	ledger.PlanAgency:   99,
	ledger.PlanLifetime: 199,
}

// DemoSnapshot builds the fallback dataset. The same seed and now always
// produce the same users, purchases and key metadata; only the sealed key
// ciphertext differs because the sealer draws fresh nonces.
func DemoSnapshot(
	now time.Time,
	seed uint64,
	sealer ledger.KeySealer,
) (ledger.PartialSnapshot, error) {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	rng := rand.New(src)

	newID := func() string {
		return uuid.Must(uuid.NewRandomFromReader(src)).String()
	}
	daysAgo := func(limit int) time.Time {
		return now.AddDate(0, 0, -rng.IntN(limit))
	}

	users := make([]ledger.User, 0, len(demoAccounts))
	for i, acct := range demoAccounts {
		plan := demoPlans[i%len(demoPlans)]
		status := ledger.SubscriptionActive
		if plan == ledger.PlanFree {
			status = ledger.SubscriptionNone
		}

		find := rng.Int64N(demoMaxCredits)
		verify := rng.Int64N(demoMaxCredits)
		onboarding := true
		lastSeen := daysAgo(demoLastSeenDays)

		users = append(users, ledger.User{
			ID:                 newID(),
			FullName:           acct.name,
			Email:              acct.email,
			OnboardingFlag:     &onboarding,
			CreatedAt:          daysAgo(demoSignupDays),
			LastSeen:           &lastSeen,
			Plan:               plan,
			CreditsFind:        find,
			CreditsVerify:      verify,
			CreditsTotal:       find + verify,
			SubscriptionStatus: status,
			EmailVerified:      true,
		})
	}

	purchases := []ledger.Purchase{}
	for _, u := range users {
		if u.Plan == ledger.PlanFree {
			continue
		}
		status := ledger.PurchasePaid
		if rng.Float64() <= demoRefundOdds {
			status = ledger.PurchaseRefunded
		}
		purchases = append(purchases, ledger.Purchase{
			ID:       newID(),
			UserID:   u.ID,
			PlanName: u.Plan,
			Status:   status,
			Date:     u.CreatedAt.AddDate(0, 0, rng.IntN(demoPurchaseDays)),
			Amount:   demoPrices[u.Plan],
		})
	}

	keys := make([]ledger.APIKey, 0, len(users))
	for _, u := range users {
		secret := dashless(newID()) + dashless(newID())
		sealed, err := sealer.Seal(secret)
		if err != nil {
			return ledger.PartialSnapshot{}, fmt.Errorf("seal demo key: %w", err)
		}
		lastUsed := daysAgo(demoKeyLastUsed)

		keys = append(keys, ledger.APIKey{
			ID:                 newID(),
			UserID:             u.ID,
			KeyPrefix:          ledger.KeyPrefix(secret),
			EncryptedKey:       sealed,
			RateLimitPerMinute: defaultKeyRateLimit,
			LastUsedAt:         &lastUsed,
			UsageCount:         rng.Int64N(demoMaxUsage),
			Status:             ledger.KeyActive,
			CreatedAt:          daysAgo(demoKeyCreatedDays),
		})
	}

	return ledger.PartialSnapshot{
		Users:     users,
		Purchases: purchases,
		APIKeys:   keys,
	}, nil
}

func dashless(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

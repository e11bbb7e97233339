// AngelaMos | 2026
// loader.go

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
)

const (
	SourceDemo      = "demo"
	fallbackWarning = "Using demo data because backend is not reachable."
)

type Result struct {
	Source   string        `json:"source"`
	Fallback bool          `json:"fallback"`
	Warning  string        `json:"warning,omitempty"`
	Counts   ledger.Counts `json:"counts"`
}

type Loader struct {
	source Source
	store  *ledger.Store
	sealer ledger.KeySealer
	clock  clock.Clock
	seed   uint64
	logger *slog.Logger
}

// NewLoader wires a loader. A nil source means demo data only.
func NewLoader(
	source Source,
	store *ledger.Store,
	sealer ledger.KeySealer,
	c clock.Clock,
	seed uint64,
	logger *slog.Logger,
) *Loader {
	return &Loader{
		source: source,
		store:  store,
		sealer: sealer,
		clock:  c,
		seed:   seed,
		logger: logger,
	}
}

// Load makes exactly one attempt at the configured source. Any failure is
// absorbed: the demo snapshot is seeded and the warning is reported in the
// result instead of as an error. The only error returned is a failure to
// build the demo data itself.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	if l.source == nil {
		return l.seedDemo(ctx, "")
	}

	ctx, span := core.StartSpan(
		ctx,
		"bootstrap.load",
		attribute.String("bootstrap.source", l.source.Name()),
	)
	defer span.End()

	snap, err := l.source.Fetch(ctx)
	if err != nil {
		core.SetSpanError(ctx, err)
		l.logger.Warn("bootstrap fetch failed, seeding demo data",
			"source", l.source.Name(),
			"error", err,
		)
		return l.seedDemo(ctx, fallbackWarning)
	}

	l.store.SetAll(snap)
	counts := l.store.Counts()

	core.AddSpanEvent(ctx, "bootstrap.hydrated",
		attribute.Int("users", counts.Users),
		attribute.Int("purchases", counts.Purchases),
		attribute.Int("api_keys", counts.APIKeys),
	)
	l.logger.Info("ledger hydrated",
		"source", l.source.Name(),
		"users", counts.Users,
		"purchases", counts.Purchases,
		"api_keys", counts.APIKeys,
		"audits", counts.Audits,
	)

	return Result{Source: l.source.Name(), Counts: counts}, nil
}

func (l *Loader) seedDemo(ctx context.Context, warning string) (Result, error) {
	snap, err := DemoSnapshot(l.clock.Now(), l.seed, l.sealer)
	if err != nil {
		core.SetSpanError(ctx, err)
		return Result{}, fmt.Errorf("build demo snapshot: %w", err)
	}

	l.store.SetAll(snap)

	return Result{
		Source:   SourceDemo,
		Fallback: warning != "",
		Warning:  warning,
		Counts:   l.store.Counts(),
	}, nil
}

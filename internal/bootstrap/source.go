// AngelaMos | 2026
// source.go

// Package bootstrap hydrates the ledger at startup from the product backend
// and falls back to a deterministic demo snapshot when that fails.
package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mailsfinder/admin-console/internal/clock"
	"github.com/mailsfinder/admin-console/internal/ledger"
)

const (
	bootstrapPath   = "/api/admin/dashboard/bootstrap"
	maxPayloadBytes = 32 << 20
)

var ErrUnexpectedStatus = errors.New("unexpected bootstrap status")

type Source interface {
	Name() string
	Fetch(ctx context.Context) (ledger.PartialSnapshot, error)
}

type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
	clock   clock.Clock
}

func NewHTTPSource(
	baseURL, token string,
	timeout time.Duration,
	c clock.Clock,
) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		clock:   c,
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) Fetch(ctx context.Context) (ledger.PartialSnapshot, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		s.baseURL+bootstrapPath,
		nil,
	)
	if err != nil {
		return ledger.PartialSnapshot{}, fmt.Errorf("build bootstrap request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return ledger.PartialSnapshot{}, fmt.Errorf("fetch bootstrap: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read path

	if resp.StatusCode != http.StatusOK {
		return ledger.PartialSnapshot{}, fmt.Errorf(
			"fetch bootstrap: HTTP %d: %w",
			resp.StatusCode,
			ErrUnexpectedStatus,
		)
	}

	var payload Payload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadBytes)).Decode(&payload); err != nil {
		return ledger.PartialSnapshot{}, fmt.Errorf("decode bootstrap body: %w", err)
	}

	return Normalize(payload, s.clock.Now())
}

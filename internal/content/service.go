// AngelaMos | 2026
// service.go

package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

type Store interface {
	Contents() []ledger.ContentItem
	Content(id string) (ledger.ContentItem, error)
	UpsertContent(in ledger.ContentInput) (ledger.ContentItem, error)
	EditContent(in ledger.ContentInput) (ledger.ContentItem, error)
	PublishContent(contentID, adminID, reason string) (ledger.ContentItem, ledger.AuditRow, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List is open to every signed-in admin; published filters when non-nil.
func (s *Service) List(ctx context.Context, published *bool) ([]ledger.ContentItem, error) {
	if session.FromContext(ctx) == nil {
		return nil, fmt.Errorf("list content: %w", core.ErrUnauthorized)
	}

	items := s.store.Contents()
	if published == nil {
		return items, nil
	}

	filtered := make([]ledger.ContentItem, 0, len(items))
	for _, c := range items {
		if c.Published == *published {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *Service) Get(ctx context.Context, id string) (ledger.ContentItem, error) {
	if session.FromContext(ctx) == nil {
		return ledger.ContentItem{}, fmt.Errorf("get content: %w", core.ErrUnauthorized)
	}

	return s.store.Content(id)
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (ledger.ContentItem, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeContentPublish); err != nil {
		return ledger.ContentItem{}, err
	}

	return s.store.UpsertContent(req.toInput(""))
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpsertRequest,
) (ledger.ContentItem, error) {
	if err := session.FromContext(ctx).Authorize(rbac.ScopeContentPublish); err != nil {
		return ledger.ContentItem{}, err
	}

	return s.store.EditContent(req.toInput(id))
}

func (s *Service) Publish(
	ctx context.Context,
	id, reason string,
) (ledger.ContentItem, ledger.AuditRow, error) {
	sess := session.FromContext(ctx)
	if err := sess.Authorize(rbac.ScopeContentPublish); err != nil {
		return ledger.ContentItem{}, ledger.AuditRow{}, err
	}

	item, row, err := s.store.PublishContent(id, sess.Admin.ID, reason)
	if err != nil {
		return ledger.ContentItem{}, ledger.AuditRow{}, err
	}

	s.logger.InfoContext(ctx, "content published",
		"admin_id", sess.Admin.ID,
		"content_id", id,
		"slug", item.Slug,
	)

	return item, row, nil
}

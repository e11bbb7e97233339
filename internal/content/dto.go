// AngelaMos | 2026
// dto.go

package content

import (
	"github.com/mailsfinder/admin-console/internal/ledger"
)

// UpsertRequest is a full replacement of the editable fields. The published
// flag is not editable here; it only moves through Publish.
type UpsertRequest struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Slug        string   `json:"slug"        validate:"max=200"`
	Summary     string   `json:"summary"     validate:"max=1000"`
	Body        string   `json:"body"        validate:"max=200000"`
	Attachments []string `json:"attachments" validate:"max=50,dive,max=2048"`
}

type PublishRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type PublishedResponse struct {
	Content ledger.ContentItem `json:"content"`
	Audit   ledger.AuditRow    `json:"audit"`
}

func (r UpsertRequest) toInput(id string) ledger.ContentInput {
	return ledger.ContentInput{
		ID:          id,
		Title:       r.Title,
		Slug:        r.Slug,
		Summary:     r.Summary,
		Body:        r.Body,
		Attachments: r.Attachments,
	}
}

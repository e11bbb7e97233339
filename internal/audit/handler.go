// AngelaMos | 2026
// handler.go

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
	"github.com/mailsfinder/admin-console/internal/middleware"
	"github.com/mailsfinder/admin-console/internal/rbac"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/audits", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireScope(rbac.ScopeUsersRead))

		r.Get("/", h.List)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Action:   ledger.AuditAction(q.Get("action")),
		AdminID:  q.Get("admin_id"),
		TargetID: q.Get("target_id"),
		Page:     core.ParseIntQuery(r, "page", 1),
		PageSize: core.ParseIntQuery(r, "page_size", defaultPageSize),
	}

	if f.Action != "" && !f.Action.Valid() {
		core.BadRequest(w, "unknown audit action")
		return
	}

	var err error
	if f.From, err = core.ParseTimeQuery(r, "from"); err != nil {
		core.JSONError(w, err)
		return
	}
	if f.To, err = core.ParseTimeQuery(r, "to"); err != nil {
		core.JSONError(w, err)
		return
	}

	rows, total, err := h.service.List(r.Context(), f)
	if err != nil {
		core.HandleError(w, err, "audit")
		return
	}

	f.normalize()
	core.Paginated(w, rows, f.Page, f.PageSize, total)
}

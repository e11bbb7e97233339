// AngelaMos | 2026
// handler.go

package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/metrics"
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
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireScope(rbac.ScopeUsersRead))

		r.Get("/", h.Get)
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q := Query{Preset: metrics.Preset(r.URL.Query().Get("preset"))}

	var err error
	if q.From, err = core.ParseTimeQuery(r, "from"); err != nil {
		core.JSONError(w, err)
		return
	}
	if q.To, err = core.ParseTimeQuery(r, "to"); err != nil {
		core.JSONError(w, err)
		return
	}

	resp, err := h.service.Get(r.Context(), q)
	if err != nil {
		core.HandleError(w, err, "dashboard")
		return
	}

	core.OK(w, resp)
}

// AngelaMos | 2026
// handler.go

package content

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/middleware"
	"github.com/mailsfinder/admin-console/internal/rbac"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/content", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Get("/{contentID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireScope(rbac.ScopeContentPublish))
			r.Post("/", h.Create)
			r.Put("/{contentID}", h.Update)
			r.Post("/{contentID}/publish", h.Publish)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var published *bool
	if v := r.URL.Query().Get("published"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			core.BadRequest(w, "published must be a boolean")
			return
		}
		published = &parsed
	}

	items, err := h.service.List(r.Context(), published)
	if err != nil {
		core.HandleError(w, err, "content")
		return
	}

	core.List(w, items, len(items))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "contentID"))
	if err != nil {
		core.HandleError(w, err, "content")
		return
	}

	core.OK(w, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	item, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.HandleError(w, err, "content")
		return
	}

	core.Created(w, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	item, err := h.service.Update(r.Context(), chi.URLParam(r, "contentID"), req)
	if err != nil {
		core.HandleError(w, err, "content")
		return
	}

	core.OK(w, item)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if r.ContentLength != 0 && !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	item, row, err := h.service.Publish(r.Context(), chi.URLParam(r, "contentID"), req.Reason)
	if err != nil {
		core.HandleError(w, err, "content")
		return
	}

	core.OK(w, PublishedResponse{Content: item, Audit: row})
}

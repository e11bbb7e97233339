// AngelaMos | 2026
// handler.go

package apikey

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/ledger"
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
	r.Route("/apikeys", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.RequireScope(rbac.ScopeUsersRead)).Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireScope(rbac.ScopeAPIKeysManage))
			r.Post("/", h.Create)
			r.Post("/{keyID}/revoke", h.Revoke)
			r.Put("/{keyID}/rate-limit", h.UpdateRateLimit)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		UserID: r.URL.Query().Get("user_id"),
		Status: ledger.KeyStatus(r.URL.Query().Get("status")),
	}
	if params.Status != "" &&
		params.Status != ledger.KeyActive &&
		params.Status != ledger.KeyRevoked {
		core.BadRequest(w, "status must be one of [active revoked]")
		return
	}

	keys, err := h.service.List(r.Context(), params)
	if err != nil {
		core.HandleError(w, err, "api key")
		return
	}

	core.List(w, ToKeyResponseList(keys), len(keys))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.Created(w, CreatedResponse{
		Key:     ToKeyResponse(created.Key),
		FullKey: created.FullKey,
		Audit:   created.Audit,
	})
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req RevokeRequest
	if r.ContentLength != 0 && !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	key, row, err := h.service.Revoke(r.Context(), chi.URLParam(r, "keyID"), req.Reason)
	if err != nil {
		core.HandleError(w, err, "api key")
		return
	}

	core.OK(w, RevokedResponse{Key: ToKeyResponse(key), Audit: row})
}

func (h *Handler) UpdateRateLimit(w http.ResponseWriter, r *http.Request) {
	var req RateLimitRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	key, err := h.service.UpdateRateLimit(
		r.Context(),
		chi.URLParam(r, "keyID"),
		req.RateLimitPerMinute,
	)
	if err != nil {
		core.HandleError(w, err, "api key")
		return
	}

	core.OK(w, ToKeyResponse(key))
}

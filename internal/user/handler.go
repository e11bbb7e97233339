// AngelaMos | 2026
// handler.go

package user

import (
	"net/http"
	"strconv"

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
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.RequireScope(rbac.ScopeUsersRead)).Get("/", h.ListUsers)
		r.With(middleware.RequireScope(rbac.ScopeCreditsAdjust)).
			Post("/credits/bulk", h.BulkAdjustCredits)

		r.Route("/{userID}", func(r chi.Router) {
			r.With(middleware.RequireScope(rbac.ScopeUsersRead)).Get("/", h.GetUser)
			r.With(middleware.RequireScope(rbac.ScopeCreditsAdjust)).
				Post("/credits", h.AdjustCredits)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireScope(rbac.ScopeUsersWrite))
				r.Put("/notes", h.UpdateNotes)
				r.Put("/plan", h.UpdatePlan)
				r.Delete("/", h.DeleteUser)
			})
		})
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	params.Normalize()
	core.Paginated(w, users, params.Page, params.PageSize, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.OK(w, detail)
}

func (h *Handler) AdjustCredits(w http.ResponseWriter, r *http.Request) {
	var req AdjustCreditsRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, row, err := h.service.AdjustCredits(
		r.Context(),
		chi.URLParam(r, "userID"),
		req.Delta,
		req.Reason,
	)
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.OK(w, CreditsResponse{User: u, Audit: row})
}

func (h *Handler) BulkAdjustCredits(w http.ResponseWriter, r *http.Request) {
	var req BulkCreditsRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.BulkAdjustCredits(r.Context(), req.UserIDs, req.Delta, req.Reason)
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req UpdateNotesRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.UpdateNotes(r.Context(), chi.URLParam(r, "userID"), req.Notes)
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.OK(w, u)
}

func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlanRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.UpdatePlan(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.OK(w, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	return core.DecodeJSON(w, r, h.validator, dst)
}

func parseListParams(r *http.Request) (ListUsersParams, error) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:               core.ParseIntQuery(r, "page", 1),
		PageSize:           core.ParseIntQuery(r, "page_size", defaultPageSize),
		Search:             q.Get("search"),
		Plan:               ledger.Plan(q.Get("plan")),
		SubscriptionStatus: ledger.SubscriptionStatus(q.Get("subscription_status")),
		Country:            q.Get("country"),
	}

	if params.Plan != "" && !params.Plan.Valid() {
		return params, core.BadRequestError("plan must be one of [free pro agency lifetime]")
	}
	if params.SubscriptionStatus != "" && !params.SubscriptionStatus.Valid() {
		return params, core.BadRequestError(
			"subscription_status must be one of [active cancelled past_due none]",
		)
	}

	if v := q.Get("email_verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			return params, core.BadRequestError("email_verified must be a boolean")
		}
		params.EmailVerified = &verified
	}

	var err error
	if params.CreatedFrom, err = core.ParseTimeQuery(r, "created_from"); err != nil {
		return params, err
	}
	if params.CreatedTo, err = core.ParseTimeQuery(r, "created_to"); err != nil {
		return params, err
	}

	return params, nil
}

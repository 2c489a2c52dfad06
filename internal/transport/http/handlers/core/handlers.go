package corehandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/domain/audit"
	"kpitrack/internal/domain/auth"
	"kpitrack/internal/domain/core"
	"kpitrack/internal/requestctx"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
	"kpitrack/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *core.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/divisions", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDivisionsRead, h.Perms)).Get("/", h.handleListDivisions)
		r.With(middleware.RequirePermission(auth.PermDivisionsRead, h.Perms)).Get("/{divisionID}", h.handleGetDivision)
		r.With(middleware.RequirePermission(auth.PermDivisionsWrite, h.Perms)).Post("/", h.handleCreateDivision)
		r.With(middleware.RequirePermission(auth.PermDivisionsWrite, h.Perms)).Put("/{divisionID}", h.handleUpdateDivision)
		r.With(middleware.RequirePermission(auth.PermDivisionsWrite, h.Perms)).Delete("/{divisionID}", h.handleDeactivateDivision)
	})
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/", h.handleListUsers)
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/{userID}", h.handleGetUser)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Post("/", h.handleCreateUser)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Put("/{userID}", h.handleUpdateUser)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Delete("/{userID}", h.handleDeactivateUser)
	})
}

func (h *Handler) handleListDivisions(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	divisions, err := h.Service.ListDivisions(r.Context(), activeOnly)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "division_list_failed", "failed to list divisions", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, divisions, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDivision(w http.ResponseWriter, r *http.Request) {
	division, err := h.Service.GetDivision(r.Context(), chi.URLParam(r, "divisionID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "division_not_found", "division not found", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, division, requestctx.GetRequestID(r.Context()))
}

type divisionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (h *Handler) handleCreateDivision(w http.ResponseWriter, r *http.Request) {
	var payload divisionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateDivision(r.Context(), payload.Name, payload.Description)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "division_create_failed", "failed to create division", requestctx.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "division.create", "division", id, payload)
	api.Created(w, map[string]string{"id": id}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateDivision(w http.ResponseWriter, r *http.Request) {
	divisionID := chi.URLParam(r, "divisionID")
	var payload divisionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	if err := h.Service.UpdateDivision(r.Context(), divisionID, payload.Name, payload.Description, active); err != nil {
		api.Fail(w, http.StatusInternalServerError, "division_update_failed", "failed to update division", requestctx.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "division.update", "division", divisionID, payload)
	api.Success(w, map[string]string{"status": "updated"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivateDivision(w http.ResponseWriter, r *http.Request) {
	divisionID := chi.URLParam(r, "divisionID")
	if err := h.Service.DeactivateDivision(r.Context(), divisionID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "division_deactivate_failed", "failed to deactivate division", requestctx.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "division.deactivate", "division", divisionID, nil)
	api.Success(w, map[string]string{"status": "deactivated"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 20, 100)
	filter := core.UserFilter{
		DivisionID: r.URL.Query().Get("divisionId"),
		Role:       r.URL.Query().Get("role"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	users, total, err := h.Service.ListUsers(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": users, "total": total}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, user, requestctx.GetRequestID(r.Context()))
}

type userRequest struct {
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	DivisionID string `json:"divisionId"`
	Active     *bool  `json:"active"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("password", payload.Password, "password is required")
	v.Required("role", payload.Role, "role is required")
	if payload.Role != "" && !auth.ValidRole(payload.Role) {
		v.Add("role", "must be one of admin, manager, employee")
	}
	if payload.Role == auth.RoleEmployee || payload.Role == auth.RoleManager {
		v.Required("divisionId", payload.DivisionID, "division is required for this role")
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateUser(r.Context(), payload.Email, payload.FullName, payload.Password, payload.Role, payload.DivisionID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", requestctx.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "user.create", "user", id, map[string]string{"email": payload.Email, "role": payload.Role})
	api.Created(w, map[string]string{"id": id}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("role", payload.Role, "role is required")
	if payload.Role != "" && !auth.ValidRole(payload.Role) {
		v.Add("role", "must be one of admin, manager, employee")
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	if err := h.Service.UpdateUser(r.Context(), userID, payload.FullName, payload.Role, payload.DivisionID, active); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", requestctx.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "user.update", "user", userID, map[string]string{"role": payload.Role})
	api.Success(w, map[string]string{"status": "updated"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.Service.DeactivateUser(r.Context(), userID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_deactivate_failed", "failed to deactivate user", requestctx.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "user.deactivate", "user", userID, nil)
	api.Success(w, map[string]string{"status": "deactivated"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) recordAudit(r *http.Request, action, entityType, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	actorID := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actorID = user.UserID
	}
	if err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID, requestctx.GetRequestID(r.Context()), r.RemoteAddr, details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

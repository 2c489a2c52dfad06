package kpihandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/domain/audit"
	"kpitrack/internal/domain/auth"
	"kpitrack/internal/domain/kpi"
	"kpitrack/internal/requestctx"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
	"kpitrack/internal/transport/http/shared"
)

type Handler struct {
	Service *kpi.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *kpi.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kpis", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermKPIRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermKPIRead, h.Perms)).Get("/mine", h.handleMine)
		r.With(middleware.RequirePermission(auth.PermKPIRead, h.Perms)).Get("/{kpiID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermKPIWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermKPIWrite, h.Perms)).Put("/{kpiID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermKPIWrite, h.Perms)).Delete("/{kpiID}", h.handleDeactivate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := kpi.Filter{
		DivisionID: r.URL.Query().Get("divisionId"),
		Period:     r.URL.Query().Get("period"),
		Search:     r.URL.Query().Get("search"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	kpis, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_list_failed", "failed to list kpis", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, kpis, requestctx.GetRequestID(r.Context()))
}

// handleMine lists the active KPIs available to the caller's division.
func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	kpis, err := h.Service.MyKPIs(r.Context(), user.DivisionID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_list_failed", "failed to list kpis", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, kpis, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.Get(r.Context(), chi.URLParam(r, "kpiID"))
	if errors.Is(err, kpi.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "kpi_not_found", "kpi not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_get_failed", "failed to load kpi", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, item, requestctx.GetRequestID(r.Context()))
}

type kpiRequest struct {
	DivisionID  string              `json:"divisionId"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Period      string              `json:"period"`
	Weight      int                 `json:"weight"`
	Active      *bool               `json:"active"`
	Questions   []kpi.QuestionInput `json:"questions"`
}

func (h *Handler) validate(payload kpiRequest) *shared.Validator {
	v := shared.NewValidator()
	v.Required("divisionId", payload.DivisionID, "division is required")
	v.Required("name", payload.Name, "name is required")
	v.Required("period", payload.Period, "period is required")
	if payload.Name != "" && (len(payload.Name) < 5 || len(payload.Name) > 200) {
		v.Add("name", "must be between 5 and 200 characters")
	}
	if payload.Period != "" && !kpi.ValidPeriod(payload.Period) {
		v.Add("period", "must be one of monthly, quarterly, yearly")
	}
	if payload.Weight < 1 || payload.Weight > 100 {
		v.Add("weight", "must be between 1 and 100")
	}
	if len(payload.Questions) == 0 {
		v.Add("questions", "at least one question is required")
	}
	for _, question := range payload.Questions {
		if question.Prompt == "" {
			v.Add("questions", "every question needs a prompt")
		}
		if !kpi.ValidAnswerType(string(question.AnswerType)) {
			v.Add("questions", "answer type must be one of scale_1_5, scale_0_100, free_text")
		}
		if question.AnswerType != kpi.AnswerFreeText && (question.Weight < 1 || question.Weight > 100) {
			v.Add("questions", "scored questions need a weight between 1 and 100")
		}
	}
	return v
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload kpiRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if h.validate(payload).Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Create(r.Context(), payload.DivisionID, payload.Name, payload.Description, kpi.Period(payload.Period), payload.Weight, payload.Questions)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_create_failed", "failed to create kpi", requestctx.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "kpi.create", id, map[string]string{"name": payload.Name})
	api.Created(w, map[string]string{"id": id}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	kpiID := chi.URLParam(r, "kpiID")
	var payload kpiRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if h.validate(payload).Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	err := h.Service.Update(r.Context(), kpiID, payload.DivisionID, payload.Name, payload.Description, kpi.Period(payload.Period), payload.Weight, active, payload.Questions)
	if errors.Is(err, kpi.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "kpi_not_found", "kpi not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_update_failed", "failed to update kpi", requestctx.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "kpi.update", kpiID, map[string]string{"name": payload.Name})
	api.Success(w, map[string]string{"status": "updated"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	kpiID := chi.URLParam(r, "kpiID")
	err := h.Service.Deactivate(r.Context(), kpiID)
	if errors.Is(err, kpi.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "kpi_not_found", "kpi not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_deactivate_failed", "failed to deactivate kpi", requestctx.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "kpi.deactivate", kpiID, nil)
	api.Success(w, map[string]string{"status": "deactivated"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) recordAudit(r *http.Request, action, kpiID string, details any) {
	if h.Audit == nil {
		return
	}
	actorID := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actorID = user.UserID
	}
	if err := h.Audit.Record(r.Context(), actorID, action, "kpi", kpiID, requestctx.GetRequestID(r.Context()), r.RemoteAddr, details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

package assessmenthandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/domain/assessment"
	"kpitrack/internal/domain/audit"
	"kpitrack/internal/domain/auth"
	"kpitrack/internal/domain/notifications"
	"kpitrack/internal/platform/metrics"
	"kpitrack/internal/requestctx"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
	"kpitrack/internal/transport/http/shared"
)

type Handler struct {
	Service *assessment.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(service *assessment.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assessments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAssessmentsSubmit, h.Perms)).Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermAssessmentsSubmit, h.Perms)).Post("/draft", h.handleSaveDraft)
		r.With(middleware.RequirePermission(auth.PermAssessmentsSubmit, h.Perms)).Get("/mine", h.handleMyHistory)
		r.With(middleware.RequirePermission(auth.PermAssessmentsReview, h.Perms)).Get("/pending", h.handleListPending)
		r.With(middleware.RequirePermission(auth.PermAssessmentsSubmit, h.Perms)).Get("/{assessmentID}", h.handleGetDetail)
		r.With(middleware.RequirePermission(auth.PermAssessmentsReview, h.Perms)).Post("/{assessmentID}/review", h.handleReview)
		r.With(middleware.RequirePermission(auth.PermAssessmentsRecompute, h.Perms)).Post("/recompute", h.handleRecompute)
	})
}

type submitRequest struct {
	KPIID        string                   `json:"kpiId"`
	FillDate     string                   `json:"fillDate"`
	Answers      []assessment.AnswerInput `json:"answers"`
	EmployeeNote string                   `json:"employeeNote"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("kpiId", payload.KPIID, "kpi id is required")
	var fillDate time.Time
	if payload.FillDate != "" {
		fillDate, _ = v.Date("fillDate", payload.FillDate)
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.Submit(r.Context(), user.UserID, assessment.SubmitInput{
		KPIID:        payload.KPIID,
		FillDate:     fillDate,
		Answers:      payload.Answers,
		EmployeeNote: payload.EmployeeNote,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordSubmission()
	}
	h.recordAudit(r, user.UserID, "assessment.submit", result.AssessmentID, map[string]any{"kpiId": payload.KPIID, "totalScore": result.TotalScore})
	h.notifySubmitted(r, result.AssessmentID)

	api.Created(w, result, requestctx.GetRequestID(r.Context()))
}

type draftRequest struct {
	KPIID        string                   `json:"kpiId"`
	Answers      []assessment.AnswerInput `json:"answers"`
	EmployeeNote string                   `json:"employeeNote"`
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	var payload draftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("kpiId", payload.KPIID, "kpi id is required")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.SaveDraft(r.Context(), user.UserID, assessment.DraftInput{
		KPIID:        payload.KPIID,
		Answers:      payload.Answers,
		EmployeeNote: payload.EmployeeNote,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	api.Success(w, result, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 20, 100)
	items, total, err := h.Service.MyHistory(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_failed", "failed to list assessments", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 20, 100)
	items, total, err := h.Service.ListPending(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pending_failed", "failed to list pending assessments", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDetail(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	detail, err := h.Service.GetDetail(r.Context(), chi.URLParam(r, "assessmentID"), user.UserID, user.Role)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	api.Success(w, detail, requestctx.GetRequestID(r.Context()))
}

type reviewRequest struct {
	ManagerNote string `json:"managerNote"`
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	assessmentID := chi.URLParam(r, "assessmentID")
	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Review(r.Context(), assessmentID, payload.ManagerNote); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordReview()
	}
	h.recordAudit(r, user.UserID, "assessment.review", assessmentID, nil)
	h.notifyReviewed(r, assessmentID)

	api.Success(w, map[string]string{"status": assessment.StatusReviewed}, requestctx.GetRequestID(r.Context()))
}

type recomputeRequest struct {
	EmployeeID string `json:"employeeId"`
	KPIID      string `json:"kpiId"`
	Period     string `json:"period"`
}

func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	var payload recomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("kpiId", payload.KPIID, "kpi id is required")
	v.Required("period", payload.Period, "period is required")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	result, recomputed, err := h.Service.Recompute(r.Context(), payload.EmployeeID, payload.KPIID, payload.Period)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.recordAudit(r, user.UserID, "assessment.recompute", payload.KPIID, payload)
	if !recomputed {
		api.Success(w, map[string]any{"recomputed": false}, requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"recomputed": true, "result": result}, requestctx.GetRequestID(r.Context()))
}

// writeDomainError maps the assessment error taxonomy onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestctx.GetRequestID(r.Context())

	var missing *assessment.MissingMandatoryError
	var invalid *assessment.ValidationError
	switch {
	case errors.Is(err, assessment.ErrKPINotFound):
		api.Fail(w, http.StatusNotFound, "kpi_not_found", "kpi not found", requestID)
	case errors.Is(err, assessment.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, assessment.ErrAssessmentNotFound):
		api.Fail(w, http.StatusNotFound, "assessment_not_found", "assessment not found", requestID)
	case errors.Is(err, assessment.ErrCrossDivision):
		api.Fail(w, http.StatusForbidden, "cross_division", "kpi belongs to a different division", requestID)
	case errors.Is(err, assessment.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "assessment status does not allow this operation", requestID)
	case errors.As(err, &missing):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "missing_mandatory", "mandatory questions unanswered", map[string]any{"prompts": missing.Prompts}, requestID)
	case errors.As(err, &invalid):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "invalid answers", map[string]any{"issues": invalid.Issues}, requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "assessment_failed", "assessment operation failed", requestID)
	}
}

func (h *Handler) notifySubmitted(r *http.Request, assessmentID string) {
	if h.Notify == nil {
		return
	}
	detail, err := h.Service.GetDetail(r.Context(), assessmentID, "", auth.RoleManager)
	if err != nil {
		slog.Warn("submit notification lookup failed", "assessmentId", assessmentID, "err", err)
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Notify.AssessmentSubmitted(r.Context(), user.DivisionID, detail.EmployeeName, detail.KPIName); err != nil {
		slog.Warn("submit notification failed", "assessmentId", assessmentID, "err", err)
	}
}

func (h *Handler) notifyReviewed(r *http.Request, assessmentID string) {
	if h.Notify == nil {
		return
	}
	detail, err := h.Service.GetDetail(r.Context(), assessmentID, "", auth.RoleManager)
	if err != nil {
		slog.Warn("review notification lookup failed", "assessmentId", assessmentID, "err", err)
		return
	}
	if err := h.Notify.AssessmentReviewed(r.Context(), detail.EmployeeID, detail.KPIName, detail.Grade); err != nil {
		slog.Warn("review notification failed", "assessmentId", assessmentID, "err", err)
	}
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID, action, "assessment", entityID, requestctx.GetRequestID(r.Context()), r.RemoteAddr, details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

package reportshandler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/domain/auth"
	"kpitrack/internal/domain/reports"
	"kpitrack/internal/requestctx"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReportsRead, h.Perms))
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/divisions", h.handleDivisionPerformance)
		r.Get("/top-performers", h.handleTopPerformers)
		r.Get("/trend", h.handleTrend)
		r.Get("/employees/{employeeID}", h.handleEmployeeReport)
		r.Post("/employees/{employeeID}/pdf", h.handleEmployeeReportPDF)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.DashboardSummary(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build dashboard summary", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleDivisionPerformance(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.DivisionPerformance(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build division performance", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleTopPerformers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.Service.TopPerformers(r.Context(), limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build top performers", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	points, err := h.Service.MonthlyTrend(r.Context(), months)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build monthly trend", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, points, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.EmployeeReport(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, reports.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build employee report", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, report, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeReportPDF(w http.ResponseWriter, r *http.Request) {
	path, err := h.Service.GenerateEmployeeReportPDF(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, reports.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate report pdf", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"path": path}, requestctx.GetRequestID(r.Context()))
}

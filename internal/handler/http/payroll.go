package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Employee components
	AddComponent(w http.ResponseWriter, r *http.Request)
	ListComponents(w http.ResponseWriter, r *http.Request)
	DeleteComponent(w http.ResponseWriter, r *http.Request)

	// Slips
	Generate(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Publish(w http.ResponseWriter, r *http.Request)
	DownloadPDF(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== COMPONENTS ==========

func (h *payrollHandlerImpl) AddComponent(w http.ResponseWriter, r *http.Request) {
	var req payroll.AddComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.payrollService.AddComponent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Payroll component added", result)
}

func (h *payrollHandlerImpl) ListComponents(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListComponents(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *payrollHandlerImpl) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	err := h.payrollService.DeleteComponent(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll component removed", nil)
}

// ========== SLIPS ==========

func (h *payrollHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateSlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Payroll slip generated", result)
}

func (h *payrollHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func slipFilter(r *http.Request) (payroll.SlipFilter, error) {
	filter := payroll.SlipFilter{
		EmployeeID: queryPtr(r, "employee_id"),
		Status:     queryPtr(r, "status"),
	}
	for key, dst := range map[string]**int{"year": &filter.Year, "month": &filter.Month} {
		v := r.URL.Query().Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("%s must be a number", key)
		}
		*dst = &n
	}
	filter.Page, filter.Limit = pagination(r)
	return filter, nil
}

func (h *payrollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, err := slipFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	h.writeList(w, r, filter, h.payrollService.List)
}

func (h *payrollHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	filter, err := slipFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	h.writeList(w, r, filter, h.payrollService.ListMine)
}

func (h *payrollHandlerImpl) writeList(w http.ResponseWriter, r *http.Request, filter payroll.SlipFilter,
	list func(ctx context.Context, filter payroll.SlipFilter) (payroll.ListSlipResponse, error)) {
	result, err := list(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Slips, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

func (h *payrollHandlerImpl) Publish(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll slip published", result)
}

func (h *payrollHandlerImpl) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := h.payrollService.RenderPDF(r.Context(), chi.URLParam(r, "id"), &buf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write payslip pdf", "error", err)
	}
}

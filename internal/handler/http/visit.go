package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/visit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type VisitHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type visitHandlerImpl struct {
	visitService visit.VisitService
}

func NewVisitHandler(visitService visit.VisitService) VisitHandler {
	return &visitHandlerImpl{visitService: visitService}
}

func visitFilter(r *http.Request) visit.VisitFilter {
	filter := visit.VisitFilter{
		EmployeeID: queryPtr(r, "employee_id"),
		Status:     queryPtr(r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

// Create implements VisitHandler.
func (h *visitHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req visit.CreateVisitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBody)).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.visitService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Visit report submitted successfully", result)
}

// Get implements VisitHandler.
func (h *visitHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.visitService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListMine implements VisitHandler.
func (h *visitHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.visitService.ListMine(r.Context(), visitFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Reports, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// List implements VisitHandler.
func (h *visitHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.visitService.List(r.Context(), visitFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Reports, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Approve implements VisitHandler.
func (h *visitHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.visitService.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Visit report approved", result)
}

// Reject implements VisitHandler.
func (h *visitHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req approval.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.visitService.Reject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Visit report rejected", result)
}

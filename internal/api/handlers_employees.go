package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thinkbeforeclick/platform/internal/account"
	"github.com/thinkbeforeclick/platform/internal/domain"
	"github.com/thinkbeforeclick/platform/internal/pkg/httputil"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
)

type duplicateEmployeeResponse struct {
	Error            string           `json:"error"`
	ExistingEmployee *domain.Employee `json:"existingEmployee"`
}

// AddEmployee handles POST /api/employees.
func (h *Handlers) AddEmployee(w http.ResponseWriter, r *http.Request) {
	var req account.AddEmployeeInput
	if !httputil.Decode(w, r, &req) {
		return
	}
	req.CompanyID = strings.TrimSpace(req.CompanyID)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.CompanyID == "" || req.Name == "" || req.Email == "" {
		httputil.MissingFields(w, "companyId", "name", "email")
		return
	}

	res, err := h.accounts.AddEmployee(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrDuplicateEmployee):
			httputil.Conflict(w, duplicateEmployeeResponse{
				Error:            "Employee with this email already exists",
				ExistingEmployee: res.Employee,
			})
		case errors.Is(err, account.ErrIdentityFailed):
			logger.Error("employee provisioning failed", "company", req.CompanyID, "error", err)
			httputil.BadGateway(w, "identity provider failure", "CognitoFailed")
		default:
			logger.Error("adding employee failed", "company", req.CompanyID, "error", err)
			httputil.InternalError(w, err)
		}
		return
	}

	httputil.OK(w, res)
}

type listEmployeesResponse struct {
	CompanyID      string            `json:"companyId"`
	TotalEmployees int               `json:"totalEmployees"`
	Employees      []domain.Employee `json:"employees"`
}

// ListEmployees handles GET /api/employees/{companyId}.
func (h *Handlers) ListEmployees(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyId")
	if companyID == "" {
		httputil.BadRequest(w, "Missing company ID")
		return
	}

	employees, err := h.accounts.ListEmployees(r.Context(), companyID)
	if err != nil {
		logger.Error("listing employees failed", "company", companyID, "error", err)
		httputil.InternalError(w, err)
		return
	}
	if employees == nil {
		employees = []domain.Employee{}
	}

	httputil.OK(w, listEmployeesResponse{
		CompanyID:      companyID,
		TotalEmployees: len(employees),
		Employees:      employees,
	})
}

// Package api exposes the platform over HTTP: account and employee
// management, simulation dispatch, engagement tracking and reporting.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/thinkbeforeclick/platform/internal/account"
	"github.com/thinkbeforeclick/platform/internal/domain"
	"github.com/thinkbeforeclick/platform/internal/identity"
	"github.com/thinkbeforeclick/platform/internal/pkg/httputil"
	"github.com/thinkbeforeclick/platform/internal/reports"
	"github.com/thinkbeforeclick/platform/internal/simulation"
)

// AccountService is the account surface the handlers consume.
type AccountService interface {
	Register(ctx context.Context, in account.RegisterInput) (*account.RegisterResult, error)
	Login(ctx context.Context, username, password, userType string) (*identity.Profile, error)
	AddEmployee(ctx context.Context, in account.AddEmployeeInput) (*account.AddEmployeeResult, error)
	ListEmployees(ctx context.Context, companyID string) ([]domain.Employee, error)
	VerifyCode(ctx context.Context, code string) (string, error)
}

// SimulationService is the dispatch/tracking surface the handlers consume.
type SimulationService interface {
	Dispatch(ctx context.Context, in simulation.DispatchInput) (*simulation.DispatchResult, error)
	TrackOpen(ctx context.Context, trackingID string) (*simulation.OpenResult, error)
	TrackClick(ctx context.Context, in simulation.ClickInput) (*simulation.ClickResult, error)
}

// ReportService generates company analytics.
type ReportService interface {
	CompanyReport(ctx context.Context, companyID string) (*domain.CompanyReport, error)
}

// Handlers holds the service graph behind the HTTP layer.
type Handlers struct {
	accounts   AccountService
	simulation SimulationService
	reports    ReportService
	artifacts  reports.Store
	startedAt  time.Time
}

// NewHandlers wires the handler set.
func NewHandlers(accounts AccountService, sim SimulationService, rep ReportService, artifacts reports.Store) *Handlers {
	return &Handlers{
		accounts:   accounts,
		simulation: sim,
		reports:    rep,
		artifacts:  artifacts,
		startedAt:  time.Now(),
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "healthy",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

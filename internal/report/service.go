package report

import (
	"context"
	"time"

	"github.com/thinkbeforeclick/platform/internal/domain"
)

// Repository is the read surface report generation needs. *store.Store
// satisfies it.
type Repository interface {
	CompanyTracking(ctx context.Context, companyID string) ([]domain.EmailTracking, error)
	CompanyClicks(ctx context.Context, companyID string) ([]domain.ScamClick, error)
	CompanyEmployees(ctx context.Context, companyID string) ([]domain.Employee, error)
}

// Service generates company analytics reports.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a report service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CompanyReport fetches a company's raw records and aggregates them. A
// company with no activity yields a zeroed report, not an error.
func (s *Service) CompanyReport(ctx context.Context, companyID string) (*domain.CompanyReport, error) {
	tracking, err := s.repo.CompanyTracking(ctx, companyID)
	if err != nil {
		return nil, err
	}
	clicks, err := s.repo.CompanyClicks(ctx, companyID)
	if err != nil {
		return nil, err
	}
	employees, err := s.repo.CompanyEmployees(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return BuildCompanyReport(companyID, tracking, clicks, employees, s.now()), nil
}

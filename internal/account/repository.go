package account

import (
	"context"

	"github.com/thinkbeforeclick/platform/internal/domain"
)

// Repository is the persistence surface the account service needs.
// *store.Store satisfies it.
type Repository interface {
	PutUser(ctx context.Context, u *domain.User) error

	// UpsertUser relinks the mutable attributes when the subject already
	// has a record.
	UpsertUser(ctx context.Context, u *domain.User) error

	PutCompany(ctx context.Context, c *domain.Company) error

	PutEmployee(ctx context.Context, e *domain.Employee) error

	// FindEmployeeByEmail returns (nil, nil) when no employee in the
	// company has the email.
	FindEmployeeByEmail(ctx context.Context, companyID, email string) (*domain.Employee, error)

	CompanyEmployees(ctx context.Context, companyID string) ([]domain.Employee, error)

	// GetCompanyCode returns (nil, nil) for an unknown code.
	GetCompanyCode(ctx context.Context, code string) (*domain.CompanyCode, error)
}

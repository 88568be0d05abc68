// Package account orchestrates registration, login and employee
// provisioning across the identity provider and the document store.
package account

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thinkbeforeclick/platform/internal/domain"
	"github.com/thinkbeforeclick/platform/internal/identity"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
)

// Service implements the account flows. Multi-step sequences here are
// non-transactional: a pool user created before a store write fails stays
// created (fail-forward).
type Service struct {
	repo Repository
	idp  identity.Provider
	now  func() time.Time
}

// NewService creates an account service.
func NewService(repo Repository, idp identity.Provider) *Service {
	return &Service{repo: repo, idp: idp, now: time.Now}
}

// RegisterInput is a self-service registration. Username carries the
// email; Attributes carries the pool's custom attributes keyed by their
// pool names.
type RegisterInput struct {
	Username   string            `json:"username"`
	Password   string            `json:"password"`
	Attributes map[string]string `json:"attributes"`
}

// RegisterResult reports a completed registration.
type RegisterResult struct {
	Message string `json:"message"`
	UserSub string `json:"userSub"`
}

// Register signs the user up with the identity provider and mirrors the
// account into the store. Enterprise registrations also create the
// company record, keyed by the chosen admin username.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := in.Username
	userType := in.Attributes["custom:user_type"]
	if userType == "" {
		userType = identity.TypeIndividual
	}

	username := identity.NewUsername()
	sub, err := s.idp.SignUp(ctx, identity.SignUpInput{
		Username:         username,
		Password:         in.Password,
		Email:            email,
		UserType:         userType,
		OrganizationType: in.Attributes["custom:organization_type"],
		AdminUsername:    in.Attributes["custom:admin_username"],
		Role:             in.Attributes["custom:role"],
	})
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UserID:          sub,
		AccountType:     domain.AccountType(userType),
		Email:           email,
		CognitoUsername: username,
	}

	if userType == identity.TypeEnterprise {
		companyID := in.Attributes["custom:admin_username"]
		if companyID == "" {
			return nil, fmt.Errorf("enterprise registration missing admin username")
		}
		company := &domain.Company{
			CompanyID: companyID,
			Domain:    in.Attributes["custom:organization_type"],
		}
		if err := s.repo.PutCompany(ctx, company); err != nil {
			return nil, err
		}
		user.CompanyID = companyID
	}

	if err := s.repo.PutUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("account registered", "type", userType, "sub", sub)
	return &RegisterResult{
		Message: "Registration successful! Please check your email for verification.",
		UserSub: sub,
	}, nil
}

// Login authenticates against the identity provider and returns the
// profile. Identity sentinel errors pass through for the handler to map.
func (s *Service) Login(ctx context.Context, username, password, userType string) (*identity.Profile, error) {
	return s.idp.Authenticate(ctx, username, password, userType)
}

// AddEmployeeInput identifies a new training target.
type AddEmployeeInput struct {
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// AddEmployeeResult reports the created employee and its mirrored user
// record.
type AddEmployeeResult struct {
	Message  string           `json:"message"`
	Employee *domain.Employee `json:"employee"`
	User     *domain.User     `json:"user"`
}

// AddEmployee provisions a pool account for the employee's email, mirrors
// it into the users table, then creates the employee record. The duplicate
// check is read-then-write; the pool user survives a duplicate rejection.
func (s *Service) AddEmployee(ctx context.Context, in AddEmployeeInput) (*AddEmployeeResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	ensured, err := s.idp.EnsureUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityFailed, err)
	}

	employeeID := NewEmployeeID()
	now := s.now().UTC().Format(time.RFC3339)

	user := &domain.User{
		UserID:          ensured.Sub,
		AccountType:     domain.AccountEmployee,
		CompanyID:       in.CompanyID,
		Email:           email,
		EmployeeID:      employeeID,
		CognitoUsername: ensured.Username,
		CreatedAt:       now,
	}
	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return nil, err
	}

	dup, err := s.repo.FindEmployeeByEmail(ctx, in.CompanyID, email)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return &AddEmployeeResult{Employee: dup}, ErrDuplicateEmployee
	}

	employee := &domain.Employee{
		EmployeeID: employeeID,
		CompanyID:  in.CompanyID,
		Name:       strings.TrimSpace(in.Name),
		Email:      email,
		AddedAt:    now,
	}
	if err := s.repo.PutEmployee(ctx, employee); err != nil {
		return nil, err
	}

	return &AddEmployeeResult{
		Message:  "Employee added",
		Employee: employee,
		User:     user,
	}, nil
}

// ListEmployees returns a company's employees, newest first.
func (s *Service) ListEmployees(ctx context.Context, companyID string) ([]domain.Employee, error) {
	employees, err := s.repo.CompanyEmployees(ctx, companyID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(employees, func(i, j int) bool {
		return employees[i].AddedAt > employees[j].AddedAt
	})
	return employees, nil
}

// VerifyCode checks a pre-issued enterprise verification code and returns
// its normalized status: valid, invalid or not_found.
func (s *Service) VerifyCode(ctx context.Context, code string) (string, error) {
	record, err := s.repo.GetCompanyCode(ctx, code)
	if err != nil {
		return "", err
	}
	if record == nil {
		return domain.CodeNotFound, nil
	}
	status := strings.ToLower(record.Status)
	if status == "" {
		return domain.CodeInvalid, nil
	}
	return status, nil
}

// NewEmployeeID mints an employee id.
func NewEmployeeID() string {
	return "emp_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

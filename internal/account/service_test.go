package account

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkbeforeclick/platform/internal/domain"
	"github.com/thinkbeforeclick/platform/internal/identity"
)

type memRepo struct {
	users     map[string]*domain.User
	companies map[string]*domain.Company
	employees map[string]*domain.Employee
	codes     map[string]*domain.CompanyCode
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:     make(map[string]*domain.User),
		companies: make(map[string]*domain.Company),
		employees: make(map[string]*domain.Employee),
		codes:     make(map[string]*domain.CompanyCode),
	}
}

func (m *memRepo) PutUser(_ context.Context, u *domain.User) error {
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *memRepo) UpsertUser(ctx context.Context, u *domain.User) error {
	return m.PutUser(ctx, u)
}

func (m *memRepo) PutCompany(_ context.Context, c *domain.Company) error {
	cp := *c
	m.companies[c.CompanyID] = &cp
	return nil
}

func (m *memRepo) PutEmployee(_ context.Context, e *domain.Employee) error {
	cp := *e
	m.employees[e.EmployeeID] = &cp
	return nil
}

func (m *memRepo) FindEmployeeByEmail(_ context.Context, companyID, email string) (*domain.Employee, error) {
	for _, e := range m.employees {
		if e.CompanyID == companyID && e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) CompanyEmployees(_ context.Context, companyID string) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, e := range m.employees {
		if e.CompanyID == companyID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memRepo) GetCompanyCode(_ context.Context, code string) (*domain.CompanyCode, error) {
	c, ok := m.codes[code]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

type fakeIdentity struct {
	signUps  []identity.SignUpInput
	ensured  map[string]*identity.EnsureResult
	authErr  error
	profile  *identity.Profile
	ensProbe func(email string)
}

func (f *fakeIdentity) Authenticate(_ context.Context, username, password, userType string) (*identity.Profile, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	p := *f.profile
	p.OriginalUsername = username
	return &p, nil
}

func (f *fakeIdentity) SignUp(_ context.Context, in identity.SignUpInput) (string, error) {
	f.signUps = append(f.signUps, in)
	return "sub-" + in.Email, nil
}

func (f *fakeIdentity) EnsureUser(_ context.Context, email string) (*identity.EnsureResult, error) {
	if f.ensProbe != nil {
		f.ensProbe(email)
	}
	if res, ok := f.ensured[email]; ok {
		return res, nil
	}
	return &identity.EnsureResult{
		PoolUser: identity.PoolUser{
			Username: "user_fake0001",
			Sub:      "sub-" + email,
			Email:    email,
		},
	}, nil
}

func TestRegisterIndividual(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeIdentity{})

	res, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-alice@example.com", res.UserSub)

	user := repo.users[res.UserSub]
	require.NotNil(t, user)
	assert.Equal(t, domain.AccountIndividual, user.AccountType)
	assert.Empty(t, user.CompanyID)
	assert.Empty(t, repo.companies)
}

func TestRegisterEnterprise(t *testing.T) {
	repo := newMemRepo()
	idp := &fakeIdentity{}
	svc := NewService(repo, idp)

	res, err := svc.Register(context.Background(), RegisterInput{
		Username: "admin@acme.example",
		Password: "Secret123!",
		Attributes: map[string]string{
			"custom:user_type":         "enterprise",
			"custom:organization_type": "finance",
			"custom:admin_username":    "acme-admin",
		},
	})
	require.NoError(t, err)

	company := repo.companies["acme-admin"]
	require.NotNil(t, company)
	assert.Equal(t, "finance", company.Domain)

	user := repo.users[res.UserSub]
	require.NotNil(t, user)
	assert.Equal(t, domain.AccountEnterprise, user.AccountType)
	assert.Equal(t, "acme-admin", user.CompanyID)

	require.Len(t, idp.signUps, 1)
	assert.Equal(t, "enterprise", idp.signUps[0].UserType)
	assert.True(t, strings.HasPrefix(idp.signUps[0].Username, "user_"))
}

func TestRegisterEnterpriseMissingAdminUsername(t *testing.T) {
	svc := NewService(newMemRepo(), &fakeIdentity{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:   "admin@acme.example",
		Password:   "Secret123!",
		Attributes: map[string]string{"custom:user_type": "enterprise"},
	})
	assert.Error(t, err)
}

func TestAddEmployee(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeIdentity{})

	res, err := svc.AddEmployee(context.Background(), AddEmployeeInput{
		CompanyID: "acme-admin",
		Name:      "Jane Tan",
		Email:     " Jane@Example.com ",
	})
	require.NoError(t, err)

	emp := res.Employee
	assert.True(t, strings.HasPrefix(emp.EmployeeID, "emp_"))
	assert.Len(t, strings.TrimPrefix(emp.EmployeeID, "emp_"), 12)
	// email normalized before everything else
	assert.Equal(t, "jane@example.com", emp.Email)
	assert.Zero(t, emp.SentEmails)

	user := repo.users["sub-jane@example.com"]
	require.NotNil(t, user)
	assert.Equal(t, domain.AccountEmployee, user.AccountType)
	assert.Equal(t, emp.EmployeeID, user.EmployeeID)
}

func TestAddEmployeeDuplicate(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeIdentity{})

	_, err := svc.AddEmployee(context.Background(), AddEmployeeInput{
		CompanyID: "acme-admin",
		Name:      "Jane Tan",
		Email:     "jane@example.com",
	})
	require.NoError(t, err)

	res, err := svc.AddEmployee(context.Background(), AddEmployeeInput{
		CompanyID: "acme-admin",
		Name:      "Jane Again",
		Email:     "jane@example.com",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmployee)
	require.NotNil(t, res)
	assert.Equal(t, "Jane Tan", res.Employee.Name)

	// same email in another company is fine
	_, err = svc.AddEmployee(context.Background(), AddEmployeeInput{
		CompanyID: "other-co",
		Name:      "Jane Tan",
		Email:     "jane@example.com",
	})
	assert.NoError(t, err)
}

func TestListEmployeesNewestFirst(t *testing.T) {
	repo := newMemRepo()
	repo.employees["e1"] = &domain.Employee{EmployeeID: "e1", CompanyID: "c1", AddedAt: "2026-01-01T00:00:00Z"}
	repo.employees["e2"] = &domain.Employee{EmployeeID: "e2", CompanyID: "c1", AddedAt: "2026-03-01T00:00:00Z"}
	repo.employees["e3"] = &domain.Employee{EmployeeID: "e3", CompanyID: "c2", AddedAt: "2026-02-01T00:00:00Z"}

	svc := NewService(repo, &fakeIdentity{})
	got, err := svc.ListEmployees(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e2", got[0].EmployeeID)
	assert.Equal(t, "e1", got[1].EmployeeID)
}

func TestVerifyCode(t *testing.T) {
	repo := newMemRepo()
	repo.codes["GOOD"] = &domain.CompanyCode{Code: "GOOD", Status: "VALID"}
	repo.codes["USED"] = &domain.CompanyCode{Code: "USED", Status: "expired"}
	repo.codes["BLANK"] = &domain.CompanyCode{Code: "BLANK"}

	svc := NewService(repo, &fakeIdentity{})
	ctx := context.Background()

	status, err := svc.VerifyCode(ctx, "GOOD")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeValid, status)

	status, err = svc.VerifyCode(ctx, "USED")
	require.NoError(t, err)
	assert.Equal(t, "expired", status)

	status, err = svc.VerifyCode(ctx, "BLANK")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalid, status)

	status, err = svc.VerifyCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeNotFound, status)
}

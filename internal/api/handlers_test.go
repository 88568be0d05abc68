package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkbeforeclick/platform/internal/account"
	"github.com/thinkbeforeclick/platform/internal/domain"
	"github.com/thinkbeforeclick/platform/internal/identity"
	"github.com/thinkbeforeclick/platform/internal/reports"
	"github.com/thinkbeforeclick/platform/internal/simulation"
)

type fakeAccounts struct {
	loginErr   error
	employees  []domain.Employee
	addErr     error
	addResult  *account.AddEmployeeResult
	codeStatus string
}

func (f *fakeAccounts) Register(_ context.Context, in account.RegisterInput) (*account.RegisterResult, error) {
	return &account.RegisterResult{Message: "ok", UserSub: "sub-1"}, nil
}

func (f *fakeAccounts) Login(_ context.Context, username, _, _ string) (*identity.Profile, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &identity.Profile{Username: username, Email: username, UserType: "individual"}, nil
}

func (f *fakeAccounts) AddEmployee(_ context.Context, in account.AddEmployeeInput) (*account.AddEmployeeResult, error) {
	if f.addErr != nil {
		return f.addResult, f.addErr
	}
	emp := &domain.Employee{EmployeeID: "emp_000000000001", CompanyID: in.CompanyID, Name: in.Name, Email: in.Email}
	return &account.AddEmployeeResult{Message: "Employee added", Employee: emp}, nil
}

func (f *fakeAccounts) ListEmployees(_ context.Context, companyID string) ([]domain.Employee, error) {
	return f.employees, nil
}

func (f *fakeAccounts) VerifyCode(_ context.Context, code string) (string, error) {
	return f.codeStatus, nil
}

type fakeSimulation struct {
	openResult  *simulation.OpenResult
	openErr     error
	clickErr    error
	dispatchErr error
}

func (f *fakeSimulation) Dispatch(_ context.Context, in simulation.DispatchInput) (*simulation.DispatchResult, error) {
	if f.dispatchErr != nil {
		return nil, f.dispatchErr
	}
	return &simulation.DispatchResult{
		TrackingID:    "track_0123456789abcdef",
		EmployeeEmail: in.EmployeeEmail,
		TemplateID:    in.TemplateID,
		PhishingURL:   "https://cdn.example/templates/" + in.TemplateID + ".html?tid=track_0123456789abcdef",
		MessageID:     "msg-1",
	}, nil
}

func (f *fakeSimulation) TrackOpen(_ context.Context, trackingID string) (*simulation.OpenResult, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	res := f.openResult
	if res == nil {
		res = &simulation.OpenResult{TrackingID: trackingID, OpenedAt: "2026-03-15T10:30:00Z", FirstOpen: true}
	}
	return res, nil
}

func (f *fakeSimulation) TrackClick(_ context.Context, in simulation.ClickInput) (*simulation.ClickResult, error) {
	if f.clickErr != nil {
		return nil, f.clickErr
	}
	return &simulation.ClickResult{
		ClickID:    "click_" + in.TrackingID + "_" + in.ScamType + "_1770000000",
		TrackingID: in.TrackingID,
		ScamType:   in.ScamType,
		ClickedAt:  "2026-03-15T10:31:00Z",
	}, nil
}

type fakeReportSvc struct{}

func (fakeReportSvc) CompanyReport(_ context.Context, companyID string) (*domain.CompanyReport, error) {
	return &domain.CompanyReport{
		CompanyID: companyID,
		Summary:   domain.ReportSummary{TotalSimulations: 1, OpenedCount: 1, OpenRate: 100, ClickRate: 100, TotalScamClicks: 1},
	}, nil
}

type fakeArtifacts struct {
	objects  []domain.ReportObject
	uploaded string
}

func (f *fakeArtifacts) Upload(_ context.Context, companyID, content string) (*reports.UploadResult, error) {
	if content == "not-base64!" {
		return nil, reports.ErrBadContent
	}
	f.uploaded = content
	return &reports.UploadResult{
		Name:        "company_20260315-103000.pdf",
		Key:         "enterprise/report/" + companyID + "/company_20260315-103000.pdf",
		DownloadURL: "https://bucket.example/signed",
		ExpiresIn:   3600,
	}, nil
}

func (f *fakeArtifacts) List(_ context.Context, _ string) ([]domain.ReportObject, error) {
	return f.objects, nil
}

func (f *fakeArtifacts) PresignDownload(_ context.Context, _, name string) (string, error) {
	if err := reports.ValidateName(name); err != nil {
		return "", err
	}
	if name != "company_20260315-103000.pdf" {
		return "", reports.ErrNotFound
	}
	return "https://bucket.example/signed", nil
}

func newTestRouter(acc *fakeAccounts, sim *fakeSimulation, art *fakeArtifacts) http.Handler {
	if acc == nil {
		acc = &fakeAccounts{}
	}
	if sim == nil {
		sim = &fakeSimulation{}
	}
	if art == nil {
		art = &fakeArtifacts{}
	}
	return SetupRoutes(NewHandlers(acc, sim, fakeReportSvc{}, art))
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestLoginMissingFields(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodPost, "/api/login", `{"username":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad credentials", identity.ErrBadCredentials, http.StatusUnauthorized},
		{"user not found", identity.ErrUserNotFound, http.StatusUnauthorized},
		{"not confirmed", identity.ErrNotConfirmed, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeAccounts{loginErr: tt.err}, nil, nil)
			rec := doJSON(t, router, http.MethodPost, "/api/login",
				`{"username":"u","password":"p"}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodPost, "/api/login",
		`{"username":"alice@example.com","password":"pw","userType":"individual"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile identity.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestAddEmployeeDuplicateConflict(t *testing.T) {
	existing := &domain.Employee{EmployeeID: "emp_existing0001", Email: "jane@example.com"}
	acc := &fakeAccounts{
		addErr:    account.ErrDuplicateEmployee,
		addResult: &account.AddEmployeeResult{Employee: existing},
	}
	rec := doJSON(t, newTestRouter(acc, nil, nil), http.MethodPost, "/api/employees",
		`{"companyId":"c1","name":"Jane","email":"jane@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "emp_existing0001")
}

func TestAddEmployeeIdentityFailure(t *testing.T) {
	acc := &fakeAccounts{addErr: account.ErrIdentityFailed}
	rec := doJSON(t, newTestRouter(acc, nil, nil), http.MethodPost, "/api/employees",
		`{"companyId":"c1","name":"Jane","email":"jane@example.com"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListEmployees(t *testing.T) {
	acc := &fakeAccounts{employees: []domain.Employee{
		{EmployeeID: "e2", AddedAt: "2026-03-01T00:00:00Z"},
		{EmployeeID: "e1", AddedAt: "2026-01-01T00:00:00Z"},
	}}
	rec := doJSON(t, newTestRouter(acc, nil, nil), http.MethodGet, "/api/employees/c1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res listEmployeesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.TotalEmployees)
	assert.Equal(t, "e2", res.Employees[0].EmployeeID)
}

func TestSendPhishingInvalidTemplate(t *testing.T) {
	sim := &fakeSimulation{dispatchErr: simulation.ErrUnknownTemplate}
	rec := doJSON(t, newTestRouter(nil, sim, nil), http.MethodPost, "/api/send-phishing",
		`{"companyId":"c1","employeeId":"e1","employeeEmail":"jane@example.com","templateId":"template99"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "availableTemplates")
}

func TestSendPhishing(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodPost, "/api/send-phishing",
		`{"companyId":"c1","employeeId":"e1","employeeEmail":"jane@example.com","templateId":"template1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res sendPhishingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "track_0123456789abcdef", res.TrackingID)
	assert.NotEmpty(t, res.PhishingURL)
}

func TestTrackOpenJSON(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodGet,
		"/api/track-open/track_0123456789abcdef", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res trackOpenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.FirstOpen)
}

func TestTrackOpenPixel(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodGet,
		"/api/track-open/track_0123456789abcdef?pixel=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Equal(t, pixelGIF, rec.Body.Bytes())
}

func TestTrackOpenPixelSwallowsNotFound(t *testing.T) {
	sim := &fakeSimulation{openErr: simulation.ErrTrackingNotFound}
	rec := doJSON(t, newTestRouter(nil, sim, nil), http.MethodGet,
		"/api/track-open/track_missing?pixel=1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
}

func TestTrackOpenNotFound(t *testing.T) {
	sim := &fakeSimulation{openErr: simulation.ErrTrackingNotFound}
	rec := doJSON(t, newTestRouter(nil, sim, nil), http.MethodGet,
		"/api/track-open/track_missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrackClick(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodPost, "/api/track-click",
		`{"trackingId":"track_0123456789abcdef","scamType":"scam1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res trackClickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, strings.HasPrefix(res.ClickID, "click_track_0123456789abcdef_scam1_"))
}

func TestTrackClickMissingFields(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodPost, "/api/track-click",
		`{"trackingId":"track_x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "scamType")
}

func TestCompanyReport(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodGet, "/api/company-report/c1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res domain.CompanyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "c1", res.CompanyID)
	assert.Equal(t, float64(100), res.Summary.OpenRate)
}

func TestListReports(t *testing.T) {
	art := &fakeArtifacts{objects: []domain.ReportObject{
		{Name: "company_20260315-103000.pdf", Size: 1024, LastModified: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
	}}
	rec := doJSON(t, newTestRouter(nil, nil, art), http.MethodGet, "/api/companies/c1/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// The body is the bare array, not an envelope.
	var res []domain.ReportObject
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res, 1)
	assert.Equal(t, "company_20260315-103000.pdf", res[0].Name)
	assert.Equal(t, int64(1024), res[0].Size)
}

func TestListReportsEmpty(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodGet, "/api/companies/c1/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestDownloadReportRedirect(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodGet,
		"/api/companies/c1/report?name=company_20260315-103000.pdf", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://bucket.example/signed", rec.Header().Get("Location"))
}

func TestDownloadReportTraversalRejected(t *testing.T) {
	for _, name := range []string{"..%2Fsecret.pdf", "a%2Fb.pdf", "a%5Cb.pdf", "..name.pdf"} {
		rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodGet,
			"/api/companies/c1/report?name="+name, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "name %s", name)
	}
}

func TestDownloadReportNotFound(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodGet,
		"/api/companies/c1/report?name=missing.pdf", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadReport(t *testing.T) {
	art := &fakeArtifacts{}
	rec := doJSON(t, newTestRouter(nil, nil, art), http.MethodPost,
		"/api/companies/c1/report", `{"pdfBase64":"JVBERi0xLjQ="}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "company_20260315-103000.pdf")
	assert.Equal(t, "JVBERi0xLjQ=", art.uploaded)
}

func TestUploadReportDataURLPrefix(t *testing.T) {
	art := &fakeArtifacts{}
	rec := doJSON(t, newTestRouter(nil, nil, art), http.MethodPost,
		"/api/companies/c1/report", `{"pdfBase64":"data:application/pdf;base64,JVBERi0xLjQ="}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "JVBERi0xLjQ=", art.uploaded)
}

func TestUploadReportMissingBody(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodPost,
		"/api/companies/c1/report", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "pdfBase64")
}

func TestUploadReportBadBase64(t *testing.T) {
	rec := doJSON(t, newTestRouter(nil, nil, nil), http.MethodPost,
		"/api/companies/c1/report", `{"pdfBase64":"not-base64!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyCode(t *testing.T) {
	acc := &fakeAccounts{codeStatus: "valid"}
	rec := doJSON(t, newTestRouter(acc, nil, nil), http.MethodPost, "/api/verify-code",
		`{"code":"GOOD"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"valid"`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	newTestRouter(nil, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

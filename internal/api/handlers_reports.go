package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thinkbeforeclick/platform/internal/domain"
	"github.com/thinkbeforeclick/platform/internal/pkg/httputil"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
	"github.com/thinkbeforeclick/platform/internal/reports"
	"github.com/thinkbeforeclick/platform/internal/store"
)

// CompanyReport handles GET /api/company-report/{companyId}.
func (h *Handlers) CompanyReport(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyId")
	if companyID == "" {
		httputil.BadRequest(w, "Missing company ID")
		return
	}

	doc, err := h.reports.CompanyReport(r.Context(), companyID)
	if err != nil {
		logger.Error("report generation failed", "company", companyID, "error", err)
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, doc)
}

// ListReports handles GET /api/companies/{companyId}/reports. The body
// is the bare sorted array, which the dashboard consumes directly.
func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyId")
	if companyID == "" {
		httputil.BadRequest(w, "Missing company ID")
		return
	}

	objects, err := h.artifacts.List(r.Context(), companyID)
	if err != nil {
		logger.Error("listing reports failed", "company", companyID, "error", err)
		if code := store.ErrorCode(err); code != "" {
			httputil.JSON(w, http.StatusInternalServerError,
				httputil.ErrorResponse{Error: "storage error", Code: code})
			return
		}
		httputil.InternalError(w, err)
		return
	}
	if objects == nil {
		objects = []domain.ReportObject{}
	}

	httputil.OK(w, objects)
}

// DownloadReport handles GET /api/companies/{companyId}/report?name=…,
// answering with a redirect to a short-lived presigned URL.
func (h *Handlers) DownloadReport(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyId")
	name := r.URL.Query().Get("name")
	if companyID == "" || name == "" {
		httputil.MissingFields(w, "companyId", "name")
		return
	}

	url, err := h.artifacts.PresignDownload(r.Context(), companyID, name)
	if err != nil {
		switch {
		case errors.Is(err, reports.ErrBadName):
			httputil.BadRequest(w, "Invalid report name")
		case errors.Is(err, reports.ErrNotFound):
			httputil.NotFound(w, "Report not found")
		default:
			logger.Error("report download failed", "company", companyID, "name", name, "error", err)
			httputil.InternalError(w, err)
		}
		return
	}

	httputil.Redirect(w, url)
}

type uploadReportRequest struct {
	PDFBase64 string `json:"pdfBase64"`
}

// UploadReport handles POST /api/companies/{companyId}/report with a
// base64 PDF body. Browsers send the FileReader result verbatim, so a
// "data:application/pdf;base64," prefix is tolerated and stripped.
func (h *Handlers) UploadReport(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyId")
	if companyID == "" {
		httputil.BadRequest(w, "Missing company ID")
		return
	}

	var req uploadReportRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.PDFBase64 == "" {
		httputil.MissingFields(w, "pdfBase64")
		return
	}
	content := req.PDFBase64
	if idx := strings.Index(content, ","); idx >= 0 {
		content = content[idx+1:]
	}

	res, err := h.artifacts.Upload(r.Context(), companyID, content)
	if err != nil {
		if errors.Is(err, reports.ErrBadContent) {
			httputil.BadRequest(w, "Content is not valid base64")
			return
		}
		logger.Error("report upload failed", "company", companyID, "error", err)
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, res)
}

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thinkbeforeclick/platform/internal/pkg/httputil"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
	"github.com/thinkbeforeclick/platform/internal/simulation"
)

// pixelGIF is a 1x1 transparent GIF served to open-tracker calls that ask
// for an image instead of JSON.
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

func servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(pixelGIF)
}

type sendPhishingResponse struct {
	Message       string `json:"message"`
	TrackingID    string `json:"trackingId"`
	EmployeeEmail string `json:"employeeEmail"`
	TemplateID    string `json:"templateId"`
	PhishingURL   string `json:"phishingUrl"`
	SESMessageID  string `json:"sesMessageId"`
}

// SendPhishing handles POST /api/send-phishing.
func (h *Handlers) SendPhishing(w http.ResponseWriter, r *http.Request) {
	var req simulation.DispatchInput
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.CompanyID == "" || req.EmployeeID == "" || req.EmployeeEmail == "" || req.TemplateID == "" {
		httputil.MissingFields(w, "companyId", "employeeId", "employeeEmail", "templateId")
		return
	}

	res, err := h.simulation.Dispatch(r.Context(), req)
	if err != nil {
		if errors.Is(err, simulation.ErrUnknownTemplate) {
			httputil.JSON(w, http.StatusBadRequest, map[string]any{
				"error":              "Invalid template ID: " + req.TemplateID,
				"availableTemplates": simulation.TemplateIDs(),
			})
			return
		}
		logger.Error("simulation dispatch failed",
			"company", req.CompanyID, "employee", req.EmployeeID, "error", err)
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, sendPhishingResponse{
		Message:       "Phishing email sent successfully",
		TrackingID:    res.TrackingID,
		EmployeeEmail: res.EmployeeEmail,
		TemplateID:    res.TemplateID,
		PhishingURL:   res.PhishingURL,
		SESMessageID:  res.MessageID,
	})
}

type trackOpenResponse struct {
	Message    string `json:"message"`
	TrackingID string `json:"trackingId"`
	OpenedAt   string `json:"openedAt"`
	FirstOpen  bool   `json:"firstOpen"`
}

// TrackOpen handles GET /api/track-open/{trackingId}. With ?pixel=1 the
// response is the tracking GIF regardless of outcome, so a broken link in
// an email client never renders an error body.
func (h *Handlers) TrackOpen(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingId")
	asPixel := r.URL.Query().Get("pixel") == "1"

	if trackingID == "" {
		if asPixel {
			servePixel(w)
			return
		}
		httputil.BadRequest(w, "Missing tracking ID")
		return
	}

	res, err := h.simulation.TrackOpen(r.Context(), trackingID)
	if err != nil {
		if asPixel {
			servePixel(w)
			return
		}
		if errors.Is(err, simulation.ErrTrackingNotFound) {
			httputil.NotFound(w, "Tracking ID not found")
			return
		}
		logger.Error("open tracking failed", "tracking", trackingID, "error", err)
		httputil.InternalError(w, err)
		return
	}

	if asPixel {
		servePixel(w)
		return
	}

	message := "Email open tracked successfully"
	if !res.FirstOpen {
		message = "Email was already opened"
	}
	httputil.OK(w, trackOpenResponse{
		Message:    message,
		TrackingID: res.TrackingID,
		OpenedAt:   res.OpenedAt,
		FirstOpen:  res.FirstOpen,
	})
}

type trackClickResponse struct {
	Message    string `json:"message"`
	ClickID    string `json:"clickId"`
	TrackingID string `json:"trackingId"`
	ScamType   string `json:"scamType"`
	ClickedAt  string `json:"clickedAt"`
}

// TrackClick handles POST /api/track-click.
func (h *Handlers) TrackClick(w http.ResponseWriter, r *http.Request) {
	var req simulation.ClickInput
	if !httputil.Decode(w, r, &req) {
		return
	}
	req.TrackingID = strings.TrimSpace(req.TrackingID)
	req.ScamType = strings.TrimSpace(req.ScamType)
	if req.TrackingID == "" || req.ScamType == "" {
		httputil.MissingFields(w, "trackingId", "scamType")
		return
	}

	res, err := h.simulation.TrackClick(r.Context(), req)
	if err != nil {
		if errors.Is(err, simulation.ErrTrackingNotFound) {
			httputil.NotFound(w, "Tracking ID not found")
			return
		}
		logger.Error("click tracking failed", "tracking", req.TrackingID, "error", err)
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, trackClickResponse{
		Message:    "Scam click tracked successfully",
		ClickID:    res.ClickID,
		TrackingID: res.TrackingID,
		ScamType:   res.ScamType,
		ClickedAt:  res.ClickedAt,
	})
}

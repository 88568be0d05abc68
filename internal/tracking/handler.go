// Package tracking is the lightweight edge server embedded in lure
// emails and landing pages. It answers pixel requests and click beacons
// with minimal responses so email clients never see an error body.
package tracking

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thinkbeforeclick/platform/internal/pkg/httputil"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
	"github.com/thinkbeforeclick/platform/internal/simulation"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Handler serves the tracking endpoints off the delivery domain.
type Handler struct {
	svc *simulation.Service
}

// NewHandler creates a tracking edge handler over the simulation service.
func NewHandler(svc *simulation.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes returns the edge router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/track/open/{trackingId}", h.HandleOpen)
	r.Get("/track/click/{trackingId}/{scamType}", h.HandleClick)
	r.Get("/health", h.HandleHealth)
	return r
}

// HandleOpen records the open and always answers with the pixel. Broken
// or stale links degrade to an untracked pixel, never an error image.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingId")

	if trackingID != "" {
		res, err := h.svc.TrackOpen(r.Context(), trackingID)
		if err != nil {
			logger.Warn("open beacon not recorded",
				"tracking", trackingID, "ip", realIP(r), "error", err)
		} else if res.FirstOpen {
			logger.Info("open recorded", "tracking", trackingID, "ip", realIP(r))
		}
	}

	h.servePixel(w)
}

// HandleClick records the click and forwards the visitor to the landing
// page for the tracked template.
func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingId")
	scamType := chi.URLParam(r, "scamType")
	if trackingID == "" || scamType == "" {
		httputil.BadRequest(w, "bad link")
		return
	}

	res, err := h.svc.TrackClick(r.Context(), simulation.ClickInput{
		TrackingID: trackingID,
		ScamType:   scamType,
	})
	if err != nil {
		httputil.BadRequest(w, "bad link")
		return
	}
	logger.Info("click recorded",
		"click", res.ClickID, "ip", realIP(r), "ua", r.UserAgent())

	record, err := h.svc.Lookup(r.Context(), trackingID)
	if err != nil || record == nil {
		h.servePixel(w)
		return
	}
	http.Redirect(w, r, h.svc.PhishingURL(record.TemplateID, trackingID), http.StatusTemporaryRedirect)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(pixelGIF)
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

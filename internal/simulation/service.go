// Package simulation dispatches simulated phishing emails and records the
// engagement events (opens, scam-link clicks) they produce.
package simulation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appconfig "github.com/thinkbeforeclick/platform/internal/config"
	"github.com/thinkbeforeclick/platform/internal/domain"
	"github.com/thinkbeforeclick/platform/internal/mail"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
)

// Service coordinates dispatch and event tracking. All public methods are
// safe for concurrent use if the underlying repository is.
type Service struct {
	repo   Repository
	mailer mail.Sender
	cfg    appconfig.TrackingConfig
	now    func() time.Time
}

// NewService creates a simulation service.
func NewService(repo Repository, mailer mail.Sender, cfg appconfig.TrackingConfig) *Service {
	return &Service{repo: repo, mailer: mailer, cfg: cfg, now: time.Now}
}

// DispatchInput identifies one recipient and scenario.
type DispatchInput struct {
	CompanyID     string `json:"companyId"`
	EmployeeID    string `json:"employeeId"`
	EmployeeEmail string `json:"employeeEmail"`
	EmployeeName  string `json:"employeeName"`
	TemplateID    string `json:"templateId"`
}

// DispatchResult reports a successful send.
type DispatchResult struct {
	TrackingID    string `json:"trackingId"`
	EmployeeEmail string `json:"employeeEmail"`
	TemplateID    string `json:"templateId"`
	PhishingURL   string `json:"phishingUrl"`
	MessageID     string `json:"sesMessageId"`
}

// OpenResult reports an open event.
type OpenResult struct {
	TrackingID string `json:"trackingId"`
	OpenedAt   string `json:"openedAt"`
	FirstOpen  bool   `json:"firstOpen"`
}

// ClickInput identifies one scam-link click.
type ClickInput struct {
	TrackingID string `json:"trackingId"`
	ScamType   string `json:"scamType"`
}

// ClickResult reports a recorded click.
type ClickResult struct {
	ClickID    string `json:"clickId"`
	TrackingID string `json:"trackingId"`
	ScamType   string `json:"scamType"`
	ClickedAt  string `json:"clickedAt"`
}

// Dispatch records a tracking record, sends the lure email and bumps the
// recipient's sent counter. The tracking record is written before the send
// so an open or click can never reference a missing record.
func (s *Service) Dispatch(ctx context.Context, in DispatchInput) (*DispatchResult, error) {
	tmpl, err := LookupTemplate(in.TemplateID)
	if err != nil {
		return nil, err
	}

	trackingID := NewTrackingID()
	sentAt := s.now().UTC()

	record := &domain.EmailTracking{
		TrackingID:    trackingID,
		CompanyID:     in.CompanyID,
		EmployeeID:    in.EmployeeID,
		EmployeeName:  in.EmployeeName,
		EmployeeEmail: in.EmployeeEmail,
		TemplateID:    in.TemplateID,
		EmailSentAt:   sentAt.Format(time.RFC3339),
		IsOpened:      false,
		ScamClicks:    []domain.ScamClickEntry{},
	}
	if err := s.repo.PutTracking(ctx, record); err != nil {
		return nil, err
	}

	phishingURL := s.PhishingURL(in.TemplateID, trackingID)
	body, err := renderEmail(in.EmployeeName, phishingURL)
	if err != nil {
		return nil, err
	}

	messageID, err := s.mailer.Send(ctx, &mail.Message{
		To:          in.EmployeeEmail,
		FromName:    tmpl.FromName,
		Subject:     tmpl.Subject,
		HTMLContent: body,
		TrackingID:  trackingID,
		TemplateID:  in.TemplateID,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatching simulation %s: %w", trackingID, err)
	}

	// Counter drift is tolerated: the email is out, so the dispatch
	// succeeds even if the mirror counter write fails.
	if err := s.repo.IncrementSent(ctx, in.EmployeeID); err != nil {
		logger.Warn("sent counter update failed",
			"employee", in.EmployeeID, "tracking", trackingID, "error", err)
	}

	return &DispatchResult{
		TrackingID:    trackingID,
		EmployeeEmail: in.EmployeeEmail,
		TemplateID:    in.TemplateID,
		PhishingURL:   phishingURL,
		MessageID:     messageID,
	}, nil
}

// TrackOpen records an open event. Only the first open mutates state;
// later opens report the original open time with FirstOpen=false.
func (s *Service) TrackOpen(ctx context.Context, trackingID string) (*OpenResult, error) {
	record, err := s.repo.GetTracking(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrTrackingNotFound
	}

	openedAt := s.now().UTC()
	first, err := s.repo.MarkOpened(ctx, trackingID, openedAt)
	if err != nil {
		return nil, err
	}
	if !first {
		return &OpenResult{
			TrackingID: trackingID,
			OpenedAt:   record.OpenedAt,
			FirstOpen:  false,
		}, nil
	}

	if err := s.repo.IncrementOpened(ctx, record.EmployeeID); err != nil {
		logger.Warn("opened counter update failed",
			"employee", record.EmployeeID, "tracking", trackingID, "error", err)
	}

	return &OpenResult{
		TrackingID: trackingID,
		OpenedAt:   openedAt.Format(time.RFC3339),
		FirstOpen:  true,
	}, nil
}

// TrackClick records a scam-link click. Every click is recorded; repeat
// clicks of the same scam type accumulate.
func (s *Service) TrackClick(ctx context.Context, in ClickInput) (*ClickResult, error) {
	record, err := s.repo.GetTracking(ctx, in.TrackingID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrTrackingNotFound
	}

	clickedAt := s.now().UTC()
	clickID := fmt.Sprintf("click_%s_%s_%d", in.TrackingID, in.ScamType, clickedAt.Unix())

	employeeName := record.EmployeeName
	if employeeName == "" {
		employeeName = "Unknown"
	}

	click := &domain.ScamClick{
		ClickID:      clickID,
		TrackingID:   in.TrackingID,
		CompanyID:    record.CompanyID,
		EmployeeID:   record.EmployeeID,
		EmployeeName: employeeName,
		TemplateID:   record.TemplateID,
		ScamType:     in.ScamType,
		ClickedAt:    clickedAt.Format(time.RFC3339),
	}
	if err := s.repo.PutScamClick(ctx, click); err != nil {
		return nil, err
	}

	entry := domain.ScamClickEntry{
		ScamType:  in.ScamType,
		ClickedAt: click.ClickedAt,
	}
	if err := s.repo.AppendClick(ctx, in.TrackingID, entry); err != nil {
		logger.Warn("tracking click-list append failed",
			"tracking", in.TrackingID, "error", err)
	}
	if err := s.repo.IncrementClicked(ctx, record.EmployeeID); err != nil {
		logger.Warn("clicked counter update failed",
			"employee", record.EmployeeID, "tracking", in.TrackingID, "error", err)
	}

	return &ClickResult{
		ClickID:    clickID,
		TrackingID: in.TrackingID,
		ScamType:   in.ScamType,
		ClickedAt:  click.ClickedAt,
	}, nil
}

// Lookup fetches a tracking record; (nil, nil) for an unknown id.
func (s *Service) Lookup(ctx context.Context, trackingID string) (*domain.EmailTracking, error) {
	return s.repo.GetTracking(ctx, trackingID)
}

// PhishingURL builds the landing-page link embedded in lure emails.
func (s *Service) PhishingURL(templateID, trackingID string) string {
	return fmt.Sprintf("https://%s/templates/%s.html?tid=%s",
		s.cfg.DeliveryDomain, templateID, trackingID)
}

// NewTrackingID mints a tracking id.
func NewTrackingID() string {
	return "track_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/swipick/internal/errors"
	"github.com/abrezinsky/swipick/internal/kpi"
	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
)

// Profile is the KPI view of a user's prediction history
type Profile struct {
	UserID       string          `json:"user_id"`
	Mode         models.Mode     `json:"mode"`
	KPI          kpi.ProfileKPI  `json:"kpi"`
	Display      kpi.Display     `json:"display"`
	ShareMessage string          `json:"share_message"`
	ShareURL     string          `json:"share_url,omitempty"`
	Summary      *models.Summary `json:"summary"`
}

// ProfileService turns prediction summaries into profile KPIs
type ProfileService struct {
	log       logger.Logger
	summaries SummaryProvider
	settings  BaseURLProvider
	formatter *kpi.Formatter
}

// NewProfileService creates a new ProfileService. settings may be nil, in
// which case shares carry no link.
func NewProfileService(log logger.Logger, summaries SummaryProvider, settings BaseURLProvider, formatter *kpi.Formatter) *ProfileService {
	return &ProfileService{log: log, summaries: summaries, settings: settings, formatter: formatter}
}

// shareURL links to the user's public profile, or "" when base_url is unset
func (s *ProfileService) shareURL(ctx context.Context, userID string) string {
	if s.settings == nil {
		return ""
	}
	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil {
		s.log.Warn("Failed to read base_url", "error", err)
		return ""
	}
	if baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/profile/%s", strings.TrimSuffix(baseURL, "/"), url.PathEscape(userID))
}

// GetProfile fetches the user's summary for mode and computes the KPIs
func (s *ProfileService) GetProfile(ctx context.Context, userID string, mode models.Mode) (*Profile, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	summary, err := s.summaries.GetSummary(ctx, userID, mode)
	if err != nil {
		s.log.Error("Failed to load summary", "user_id", userID, "mode", mode, "error", err)
		return nil, errors.RemoteRead(err, "failed to load prediction summary")
	}
	if summary == nil {
		summary = models.EmptySummary(userID)
	}
	kpi.NormalizeSummary(summary)

	k := kpi.Compute(summary)
	display := s.formatter.Display(k)
	link := s.shareURL(ctx, userID)
	message := s.formatter.ShareMessage(display)
	if link != "" {
		message += "\n" + link
	}
	return &Profile{
		UserID:       userID,
		Mode:         mode,
		KPI:          k,
		Display:      display,
		ShareMessage: message,
		ShareURL:     link,
		Summary:      summary,
	}, nil
}

// ShareQR renders the user's share message, link included, as a QR code PNG
func (s *ProfileService) ShareQR(ctx context.Context, userID string, mode models.Mode) ([]byte, error) {
	profile, err := s.GetProfile(ctx, userID, mode)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(profile.ShareMessage, qrcode.Medium, 256)
}

package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// GA4Summary is the traffic rollup fetched from the external analytics
// summary endpoint.
type GA4Summary struct {
	Sessions       int64   `json:"sessions"`
	Users          int64   `json:"users"`
	PageViews      int64   `json:"page_views"`
	BounceRate     float64 `json:"bounce_rate"`
	AvgSessionSecs float64 `json:"avg_session_secs"`
}

// FetchGA4Summary calls the configured GA4 summary endpoint for one user.
// Returns (nil, nil) when no endpoint is configured so callers can render
// without the traffic card.
func (s *Service) FetchGA4Summary(ctx context.Context, userID string, days int) (*GA4Summary, error) {
	if s.cfg.GA4SummaryURL == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s?user_id=%s&days=%d", s.cfg.GA4SummaryURL, url.QueryEscape(userID), NormalizeWindow(days))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ga4 request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ga4 summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ga4 summary endpoint returned status %d", resp.StatusCode)
	}

	var summary GA4Summary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode ga4 summary: %w", err)
	}
	return &summary, nil
}

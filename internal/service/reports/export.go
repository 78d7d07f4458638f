package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// WriteCSV streams the gap and question tables as one CSV document, the
// format the dashboard's export button downloads.
func (s *Service) WriteCSV(ctx context.Context, userID string, days int, w io.Writer) error {
	gaps, err := s.Gaps(ctx, userID, days)
	if err != nil {
		return err
	}
	questions, err := s.Questions(ctx, userID, days)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "query", "position", "bucket", "ai_mentioned", "engines"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, g := range gaps {
		record := []string{
			"gap",
			g.Query,
			strconv.FormatFloat(g.Position, 'f', 1, 64),
			string(g.Bucket),
			strconv.FormatBool(g.AIMentioned),
			strconv.Itoa(g.EngineCount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	for _, q := range questions {
		record := []string{"question", q.Query, strconv.FormatFloat(q.Position, 'f', 1, 64), "", "", ""}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Share snapshots the current overview under a random token with a bounded
// lifetime and returns the public URL for it.
func (s *Service) Share(ctx context.Context, userID string, days int) (string, error) {
	ov, err := s.Overview(ctx, userID, days)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(ov)
	if err != nil {
		return "", fmt.Errorf("failed to encode shared report: %w", err)
	}

	token := uuid.NewString()
	if err := s.redis.Set(ctx, "reports:share:"+token, payload, s.shareTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store shared report: %w", err)
	}

	s.logger.Info("Report share link created",
		zap.String("user_id", userID),
		zap.Int("days", days))
	return s.cfg.ShareBaseURL + "/share/" + token, nil
}

// ResolveShare returns the snapshot behind a share token, or (nil, nil) if
// the token is unknown or expired.
func (s *Service) ResolveShare(ctx context.Context, token string) (json.RawMessage, error) {
	payload, err := s.redis.Get(ctx, "reports:share:"+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve share token: %w", err)
	}
	return payload, nil
}

type emailRequest struct {
	Recipient string      `json:"recipient"`
	Subject   string      `json:"subject"`
	Report    interface{} `json:"report"`
}

// Email delivers the overview to the configured send-email endpoint. The
// endpoint is an external collaborator; a failed send is reported to the
// caller but has no other side effects.
func (s *Service) Email(ctx context.Context, userID string, days int, recipient string) error {
	if s.cfg.EmailEndpoint == "" {
		return fmt.Errorf("email delivery is not configured")
	}

	ov, err := s.Overview(ctx, userID, days)
	if err != nil {
		return err
	}

	body, err := json.Marshal(emailRequest{
		Recipient: recipient,
		Subject:   fmt.Sprintf("Your %d-day performance report", ov.Days),
		Report:    ov,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.EmailEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email endpoint returned status %d", resp.StatusCode)
	}

	s.logger.Info("Report emailed",
		zap.String("user_id", userID),
		zap.String("recipient", recipient))
	return nil
}

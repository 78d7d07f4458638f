package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brandbeam/brandbeam/internal/service/publisher"
)

const defaultTimeout = 60 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// doJSON sends a JSON request and decodes a JSON response, mapping non-2xx
// statuses to classified publisher errors.
func doJSON(ctx context.Context, client *http.Client, method, rawURL string, headers map[string]string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return send(client, req, out)
}

// doForm sends a form-encoded request, for APIs that reject JSON bodies.
func doForm(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return send(client, req, out)
}

func send(client *http.Client, req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return publisher.NewError(publisher.CodeUnavailable, "request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return publisher.NewError(publisher.CodeUnavailable, "failed to read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return publisher.NewError(publisher.CodeRejected, "failed to parse response: %v", err)
		}
	}
	return nil
}

// statusError maps an HTTP status to a classified error, preferring the
// token codes so the fan-out can disconnect stale credentials.
func statusError(status int, body []byte) *publisher.Error {
	msg := fmt.Sprintf("API returned status %d: %s", status, truncateBody(body))
	switch {
	case status == http.StatusUnauthorized:
		if strings.Contains(strings.ToLower(string(body)), "expired") {
			return publisher.NewError(publisher.CodeTokenExpired, "%s", msg)
		}
		return publisher.NewError(publisher.CodeTokenInvalid, "%s", msg)
	case status == http.StatusForbidden:
		return publisher.NewError(publisher.CodeUnauthorized, "%s", msg)
	case status == http.StatusTooManyRequests:
		return publisher.NewError(publisher.CodeRateLimited, "%s", msg)
	case status >= 500:
		return publisher.NewError(publisher.CodeUnavailable, "%s", msg)
	default:
		return publisher.NewError(publisher.CodeRejected, "%s", msg)
	}
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max])
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

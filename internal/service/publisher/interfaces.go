package publisher

import (
	"context"
	"fmt"

	"github.com/brandbeam/brandbeam/internal/models"
)

// Platform names, in error-message precedence order.
const (
	PlatformGitHub    = "github"
	PlatformReddit    = "reddit"
	PlatformMedium    = "medium"
	PlatformQuora     = "quora"
	PlatformFacebook  = "facebook"
	PlatformLinkedIn  = "linkedin"
	PlatformInstagram = "instagram"
	PlatformShopify   = "shopify"
)

// AllPlatforms fixes the precedence order used when a single error message
// must be chosen from several failed attempts.
var AllPlatforms = []string{
	PlatformGitHub,
	PlatformReddit,
	PlatformMedium,
	PlatformQuora,
	PlatformFacebook,
	PlatformLinkedIn,
	PlatformInstagram,
	PlatformShopify,
}

// KnownPlatform reports whether name is a supported publishing target.
func KnownPlatform(name string) bool {
	for _, p := range AllPlatforms {
		if p == name {
			return true
		}
	}
	return false
}

// ErrorCode classifies a platform failure. Clients return structured codes
// so the fan-out never has to sniff message text for fresh errors.
type ErrorCode string

const (
	CodeTokenExpired ErrorCode = "token_expired"
	CodeTokenInvalid ErrorCode = "token_invalid"
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeRateLimited  ErrorCode = "rate_limited"
	CodeRejected     ErrorCode = "rejected"
	CodeUnavailable  ErrorCode = "unavailable"
	CodeUnknown      ErrorCode = "unknown"
)

// IsTokenError reports whether the code identifies a credential failure
// that should disconnect the integration.
func (c ErrorCode) IsTokenError() bool {
	switch c {
	case CodeTokenExpired, CodeTokenInvalid, CodeUnauthorized:
		return true
	}
	return false
}

// Error is a classified platform publish failure.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError converts any error into a classified *Error, falling back to the
// message classifier for errors without a structured code.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*Error); ok {
		return pe
	}
	return &Error{Code: ClassifyMessage(err.Error()), Message: err.Error()}
}

// Request is the bounded payload handed to a platform client.
type Request struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// Result is a successful platform publish.
type Result struct {
	URL    string `json:"url"`
	PostID string `json:"post_id"`
}

// Outcome is the tagged per-platform result accumulated by the fan-out:
// either a URL/post id pair or a classified error, never both.
type Outcome struct {
	Platform string
	URL      string
	PostID   string
	Err      *Error
}

func (o Outcome) Success() bool { return o.Err == nil }

// Publisher is one platform client. Validate rejects integrations missing
// required settings before any network call is made.
type Publisher interface {
	Name() string
	Validate(integration *models.PlatformIntegration) error
	Publish(ctx context.Context, integration *models.PlatformIntegration, req Request) (*Result, error)
}

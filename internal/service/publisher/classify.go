package publisher

import (
	"regexp"
	"strings"
)

// Legacy substring patterns for opaque errors that arrive without a
// structured code. Covers the OAuth numeric codes (190/200, subcode 458)
// some graph APIs embed in message text.
var (
	oauthCodePattern    = regexp.MustCompile(`\(#(190|200)\)|"code"\s*:\s*(190|200)\b|code\s+(190|200)\b`)
	oauthSubcodePattern = regexp.MustCompile(`"error_subcode"\s*:\s*458\b|subcode\s+458\b`)
)

// ClassifyMessage is the fallback classifier for error text whose origin
// did not attach an ErrorCode. Known token-failure shapes map to token
// codes; everything else is unknown and leaves the integration connected.
func ClassifyMessage(msg string) ErrorCode {
	if msg == "" {
		return CodeUnknown
	}
	lower := strings.ToLower(msg)

	if strings.Contains(lower, "expired") {
		return CodeTokenExpired
	}
	// The capitalized form is deliberate: it matches provider phrases like
	// "Invalid OAuth access token" without tripping on generic "invalid input".
	if strings.Contains(msg, "Invalid") || strings.Contains(msg, "401") {
		return CodeTokenInvalid
	}
	if oauthCodePattern.MatchString(msg) || oauthSubcodePattern.MatchString(msg) {
		return CodeTokenInvalid
	}
	return CodeUnknown
}

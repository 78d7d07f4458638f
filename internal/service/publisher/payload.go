package publisher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brandbeam/brandbeam/internal/models"
)

// Platforms that reject embedded HTML: schema markup is stripped from the body.
var schemaStripped = map[string]bool{
	PlatformReddit:    true,
	PlatformQuora:     true,
	PlatformFacebook:  true,
	PlatformLinkedIn:  true,
	PlatformInstagram: true,
}

// Platforms that tolerate HTML comments: schema is appended as one.
var schemaAppended = map[string]bool{
	PlatformGitHub: true,
	PlatformMedium: true,
}

var ldJSONPattern = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>.*?</script>`)

// BuildRequest produces the platform-specific clean payload for a content
// item. Shopify passes through untouched: its article body is HTML and may
// carry schema inline.
func BuildRequest(item *models.ContentItem, platform string) Request {
	meta := item.Metadata.Data()

	body := item.Body
	switch {
	case schemaStripped[platform]:
		body = StripSchema(body)
	case schemaAppended[platform]:
		body = StripSchema(body)
		if meta.SEOSchema != nil && meta.SEOSchema.JSON != "" {
			body = AppendSchemaComment(body, meta.SEOSchema.JSON)
		}
	}

	tags := meta.Tags
	if len(tags) == 0 {
		tags = []string(item.Keywords)
	}

	return Request{
		Title:    item.Topic,
		Body:     body,
		Tags:     tags,
		ImageURL: meta.ImageURL,
	}
}

// StripSchema removes embedded JSON-LD script blocks from a body.
func StripSchema(body string) string {
	return strings.TrimSpace(ldJSONPattern.ReplaceAllString(body, ""))
}

// AppendSchemaComment appends the schema JSON as an HTML comment so
// markdown-friendly platforms keep it without rendering it.
func AppendSchemaComment(body, schemaJSON string) string {
	return fmt.Sprintf("%s\n\n<!-- schema.org\n%s\n-->", strings.TrimSpace(body), schemaJSON)
}

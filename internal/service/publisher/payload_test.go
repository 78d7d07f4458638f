package publisher

import (
	"strings"
	"testing"

	"gorm.io/datatypes"

	"github.com/brandbeam/brandbeam/internal/models"
)

const bodyWithSchema = `Intro paragraph.

<script type="application/ld+json">
{"@type":"Article","headline":"Post"}
</script>

Closing paragraph.`

func itemWithSchema() *models.ContentItem {
	return &models.ContentItem{
		ID:       "c1",
		UserID:   "u1",
		Topic:    "Post",
		Body:     bodyWithSchema,
		Keywords: models.StringArray{"seo", "growth"},
		Metadata: datatypes.NewJSONType(models.ContentMetadata{
			SEOSchema: &models.SEOSchema{Type: "Article", JSON: `{"@type":"Article"}`},
		}),
	}
}

func TestStripSchemaRemovesLDJSON(t *testing.T) {
	out := StripSchema(bodyWithSchema)
	if strings.Contains(out, "ld+json") || strings.Contains(out, "@type") {
		t.Fatalf("schema block not removed: %q", out)
	}
	if !strings.Contains(out, "Intro paragraph.") || !strings.Contains(out, "Closing paragraph.") {
		t.Fatalf("body text lost: %q", out)
	}
}

func TestBuildRequestStripsForHTMLRejectingPlatforms(t *testing.T) {
	for _, platform := range []string{PlatformReddit, PlatformQuora, PlatformFacebook, PlatformLinkedIn, PlatformInstagram} {
		req := BuildRequest(itemWithSchema(), platform)
		if strings.Contains(req.Body, "ld+json") {
			t.Fatalf("%s: schema not stripped", platform)
		}
		if strings.Contains(req.Body, "schema.org") {
			t.Fatalf("%s: schema comment should not be appended", platform)
		}
	}
}

func TestBuildRequestAppendsSchemaComment(t *testing.T) {
	for _, platform := range []string{PlatformGitHub, PlatformMedium} {
		req := BuildRequest(itemWithSchema(), platform)
		if strings.Contains(req.Body, "ld+json") {
			t.Fatalf("%s: raw script block should be stripped", platform)
		}
		if !strings.Contains(req.Body, "<!-- schema.org") {
			t.Fatalf("%s: schema comment missing: %q", platform, req.Body)
		}
	}
}

func TestBuildRequestShopifyPassthrough(t *testing.T) {
	req := BuildRequest(itemWithSchema(), PlatformShopify)
	if !strings.Contains(req.Body, "ld+json") {
		t.Fatal("shopify body should keep inline schema")
	}
}

func TestBuildRequestTagsFallBackToKeywords(t *testing.T) {
	item := itemWithSchema()
	req := BuildRequest(item, PlatformGitHub)
	if len(req.Tags) != 2 || req.Tags[0] != "seo" {
		t.Fatalf("expected keyword fallback tags, got %v", req.Tags)
	}

	meta := item.Metadata.Data()
	meta.Tags = []string{"explicit"}
	item.Metadata = datatypes.NewJSONType(meta)
	req = BuildRequest(item, PlatformGitHub)
	if len(req.Tags) != 1 || req.Tags[0] != "explicit" {
		t.Fatalf("expected explicit tags to win, got %v", req.Tags)
	}
}

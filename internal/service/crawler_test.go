package service

import (
	"net/url"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Best Running Shoes 2025</title>
<meta name="keywords" content="running shoes, trail running, marathon gear">
<meta name="description" content="A guide to running shoes">
</head>
<body>
<h1>Best Running Shoes</h1>
<h2>Trail picks</h2>
<h4>Ignored heading level</h4>
<a href="/reviews">Reviews</a>
<a href="https://example.com/guides#section">Guides</a>
<a href="https://other.com/away">External</a>
<a href="mailto:hi@example.com">Mail</a>
</body>
</html>`

func parsePage(t *testing.T) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func TestExtractKeywords(t *testing.T) {
	keywords := extractKeywords(parsePage(t))

	want := map[string]bool{
		"best running shoes 2025":  true,
		"running shoes":            true,
		"trail running":            true,
		"marathon gear":            true,
		"a guide to running shoes": true,
		"best running shoes":       true,
		"trail picks":              true,
	}
	got := map[string]bool{}
	for _, kw := range keywords {
		got[kw] = true
	}
	for kw := range want {
		if !got[kw] {
			t.Errorf("missing keyword %q in %v", kw, keywords)
		}
	}
	if got["ignored heading level"] {
		t.Error("h4 content should not be extracted")
	}
}

func TestExtractLinksSameHostOnly(t *testing.T) {
	root, _ := url.Parse("https://example.com/")
	links := extractLinks(parsePage(t), root)

	if len(links) != 2 {
		t.Fatalf("expected 2 same-host links, got %v", links)
	}
	if links[0] != "https://example.com/reviews" {
		t.Errorf("relative link not resolved: %s", links[0])
	}
	if links[1] != "https://example.com/guides" {
		t.Errorf("fragment should be dropped: %s", links[1])
	}
}

func TestRankKeywordsOrdersByFrequency(t *testing.T) {
	counts := map[string]int{"rare": 1, "common": 5, "middle": 3}
	ranked := rankKeywords(counts, 2)
	if len(ranked) != 2 || ranked[0] != "common" || ranked[1] != "middle" {
		t.Fatalf("unexpected ranking: %v", ranked)
	}
}

func TestResolveLinkRejectsOtherSchemes(t *testing.T) {
	root, _ := url.Parse("https://example.com/")
	if link := resolveLink(root, "javascript:alert(1)"); link != "" {
		t.Fatalf("expected empty link, got %q", link)
	}
	if link := resolveLink(root, "ftp://example.com/file"); link != "" {
		t.Fatalf("expected empty link, got %q", link)
	}
}

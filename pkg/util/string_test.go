package util

import "testing"

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Leading & Trailing!  ", "leading-trailing"},
		{"Already-slugged", "already-slugged"},
		{"Ünïcode Chars", "n-code-chars"},
	}
	for _, c := range cases {
		if got := GenerateSlug(c.in); got != c.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  How   To  Rank?  ", "how to rank"},
		{"Best CRM", "best crm"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := NormalizeQuery(c.in); got != c.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseTags(t *testing.T) {
	tags := ParseTags(`["seo", 'growth', content]`)
	if len(tags) != 3 || tags[0] != "seo" || tags[1] != "growth" || tags[2] != "content" {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if got := ParseTags(""); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	got := Truncate("a longer sentence", 8)
	if len([]rune(got)) != 8 {
		t.Fatalf("expected 8 runes, got %d (%q)", len([]rune(got)), got)
	}
	if got[len(got)-len("…"):] != "…" {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

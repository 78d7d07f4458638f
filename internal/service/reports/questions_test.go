package reports

import "testing"

func TestIsQuestion(t *testing.T) {
	cases := []struct {
		query string
		want  bool
	}{
		{"how to rank on google", true},
		{"What is SEO", true},
		{"best crm software?", true},
		{"  Why does my site load slowly  ", true},
		{"can i use ai for content", true},
		{"best running shoes", false},
		{"crm pricing comparison", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsQuestion(c.query); got != c.want {
			t.Errorf("IsQuestion(%q) = %v, want %v", c.query, got, c.want)
		}
	}
}

func TestDedupeQuestionsKeepsBestPosition(t *testing.T) {
	entries := []QuestionEntry{
		{Query: "How to rank on Google", Position: 12, Source: "gsc"},
		{Query: "how to rank on google?", Position: 4, Source: "serp"},
		{Query: "what is seo", Position: 7, Source: "gsc"},
	}

	out := DedupeQuestions(entries)
	if len(out) != 2 {
		t.Fatalf("expected 2 deduped entries, got %d", len(out))
	}
	if out[0].Query != "how to rank on google" || out[0].Position != 4 {
		t.Fatalf("expected best position kept first, got %+v", out[0])
	}
	if out[0].Source != "serp" {
		t.Fatalf("winning entry should keep its source, got %+v", out[0])
	}
}

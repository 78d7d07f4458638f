package reports

import (
	"sort"
	"strings"

	"github.com/brandbeam/brandbeam/pkg/util"
)

// questionStarters is the interrogative lexicon used when a query lacks a
// trailing question mark.
var questionStarters = []string{
	"how", "what", "why", "when", "where", "who", "which",
	"can", "could", "should", "would", "will",
	"is", "are", "was", "were", "do", "does", "did",
}

// IsQuestion reports whether a search query reads as a question. The query
// is normalized before matching, so trailing punctuation and case don't
// matter to callers.
func IsQuestion(query string) bool {
	if strings.HasSuffix(strings.TrimSpace(query), "?") {
		return true
	}
	normalized := util.NormalizeQuery(query)
	if normalized == "" {
		return false
	}
	first := normalized
	if idx := strings.IndexByte(normalized, ' '); idx > 0 {
		first = normalized[:idx]
	}
	for _, starter := range questionStarters {
		if first == starter {
			return true
		}
	}
	return false
}

// QuestionEntry is one question-style query with the best position observed
// for it.
type QuestionEntry struct {
	Query    string  `json:"query"`
	Position float64 `json:"position"`
	Source   string  `json:"source"`
}

// DedupeQuestions merges entries case-insensitively, keeping the lowest
// (best) position seen per query, and returns them ordered best first.
func DedupeQuestions(entries []QuestionEntry) []QuestionEntry {
	best := make(map[string]QuestionEntry, len(entries))
	for _, e := range entries {
		key := util.NormalizeQuery(e.Query)
		if key == "" {
			continue
		}
		if cur, ok := best[key]; !ok || e.Position < cur.Position {
			best[key] = e
		}
	}

	out := make([]QuestionEntry, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Query < out[j].Query
	})
	return out
}

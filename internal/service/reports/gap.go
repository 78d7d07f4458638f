package reports

import "sort"

// GapBucket places a query in exactly one visibility bucket.
type GapBucket string

const (
	GapBoth       GapBucket = "Both"
	GapGoogleOnly GapBucket = "Google only"
	GapAIOnly     GapBucket = "AI only"
	GapNeither    GapBucket = "Neither"
)

// Severity gives the fixed bucket ordering used for default sort and
// filtering: Neither < Google only < AI only < Both.
func (b GapBucket) Severity() int {
	switch b {
	case GapGoogleOnly:
		return 1
	case GapAIOnly:
		return 2
	case GapBoth:
		return 3
	}
	return 0
}

// ClassifyGap buckets a query. Google presence means the best known position
// is between 1 and 100 inclusive; AI presence means at least one engine's
// response mentioned the brand.
func ClassifyGap(position float64, aiMentioned bool) GapBucket {
	inGoogle := position >= 1 && position <= 100
	switch {
	case inGoogle && aiMentioned:
		return GapBoth
	case inGoogle:
		return GapGoogleOnly
	case aiMentioned:
		return GapAIOnly
	}
	return GapNeither
}

// GapRow is one query's combined Google and AI visibility.
type GapRow struct {
	Query       string    `json:"query"`
	Position    float64   `json:"position"`
	AIMentioned bool      `json:"ai_mentioned"`
	EngineCount int       `json:"engine_count"`
	Bucket      GapBucket `json:"bucket"`
}

// SortGaps orders rows most severe first, breaking ties by best position
// then query text.
func SortGaps(rows []GapRow) {
	sort.Slice(rows, func(i, j int) bool {
		si, sj := rows[i].Bucket.Severity(), rows[j].Bucket.Severity()
		if si != sj {
			return si > sj
		}
		if rows[i].Position != rows[j].Position {
			return rows[i].Position < rows[j].Position
		}
		return rows[i].Query < rows[j].Query
	})
}

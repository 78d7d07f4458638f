package reports

import "testing"

func TestClassifyGapBuckets(t *testing.T) {
	cases := []struct {
		position  float64
		mentioned bool
		want      GapBucket
	}{
		{3, true, GapBoth},
		{3, false, GapGoogleOnly},
		{0, true, GapAIOnly},
		{0, false, GapNeither},
		{100, false, GapGoogleOnly},
		{101, false, GapNeither},
		{1, true, GapBoth},
		{0.5, true, GapAIOnly},
	}
	for _, c := range cases {
		if got := ClassifyGap(c.position, c.mentioned); got != c.want {
			t.Errorf("ClassifyGap(%v, %v) = %s, want %s", c.position, c.mentioned, got, c.want)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(GapNeither.Severity() < GapGoogleOnly.Severity() &&
		GapGoogleOnly.Severity() < GapAIOnly.Severity() &&
		GapAIOnly.Severity() < GapBoth.Severity()) {
		t.Fatal("severity ordering broken")
	}
}

func TestSortGapsMostSevereFirst(t *testing.T) {
	rows := []GapRow{
		{Query: "a", Bucket: GapNeither},
		{Query: "b", Position: 5, Bucket: GapBoth},
		{Query: "c", Bucket: GapAIOnly},
		{Query: "d", Position: 2, Bucket: GapBoth},
	}
	SortGaps(rows)

	if rows[0].Query != "d" || rows[1].Query != "b" {
		t.Fatalf("Both rows should lead, best position first: %+v", rows)
	}
	if rows[2].Bucket != GapAIOnly || rows[3].Bucket != GapNeither {
		t.Fatalf("unexpected tail ordering: %+v", rows)
	}
}

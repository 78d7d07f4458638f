package reports

import (
	"testing"
	"time"
)

func TestPercentChange(t *testing.T) {
	cases := []struct {
		current, previous, want float64
	}{
		{10, 0, 100},
		{0, 0, 0},
		{5, 10, -50},
		{15, 10, 50},
		{10, 10, 0},
	}
	for _, c := range cases {
		if got := PercentChange(c.current, c.previous); got != c.want {
			t.Errorf("PercentChange(%v, %v) = %v, want %v", c.current, c.previous, got, c.want)
		}
	}
}

type sample struct {
	at    time.Time
	value float64
}

func TestDailyTrendBucketsAndZeroFills(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	rows := []sample{
		{at: time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC), value: 4},
		{at: time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC), value: 6},
		{at: time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC), value: 10},
	}

	points := DailyTrend(rows, func(s sample) time.Time { return s.at }, 3, now,
		AverageOf(func(s sample) float64 { return s.value }))

	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Date != "2025-06-08" || points[0].Value != 10 {
		t.Fatalf("day 1 wrong: %+v", points[0])
	}
	// Day with no rows gets an explicit zero.
	if points[1].Date != "2025-06-09" || points[1].Value != 0 {
		t.Fatalf("day 2 should be zero-filled: %+v", points[1])
	}
	if points[2].Date != "2025-06-10" || points[2].Value != 5 {
		t.Fatalf("day 3 wrong: %+v", points[2])
	}
}

func TestDailyTrendCount(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 30, 0, 0, time.UTC)
	rows := []sample{
		{at: now},
		{at: now.Add(-time.Minute)},
	}
	points := DailyTrend(rows, func(s sample) time.Time { return s.at }, 1, now, Count[sample])
	if len(points) != 1 || points[0].Value != 2 {
		t.Fatalf("expected one point counting 2 rows, got %+v", points)
	}
}

func TestDailyTrendBoundariesAreUTCCalendarDays(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	rows := []sample{
		// 23:59:59 the previous day must not leak into today's bucket.
		{at: time.Date(2025, 6, 9, 23, 59, 59, 0, time.UTC), value: 1},
		{at: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), value: 1},
	}
	points := DailyTrend(rows, func(s sample) time.Time { return s.at }, 2, now, Count[sample])
	if points[0].Value != 1 || points[1].Value != 1 {
		t.Fatalf("rows crossed day boundary: %+v", points)
	}
}

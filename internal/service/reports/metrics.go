package reports

import "time"

// PercentChange returns the delta between two window totals as a percentage.
// A zero previous window yields 100 when anything happened this window and 0
// otherwise, so dashboards never divide by zero.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// TrendPoint is one day of a trend series.
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DailyTrend buckets rows into UTC calendar days over the trailing window
// ending at now and applies agg to each day's subset. Days with no rows get
// an explicit zero point so charts keep a continuous axis.
func DailyTrend[T any](rows []T, at func(T) time.Time, days int, now time.Time, agg func([]T) float64) []TrendPoint {
	points := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.UTC().AddDate(0, 0, -i)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, 1)

		var bucket []T
		for _, row := range rows {
			ts := at(row).UTC()
			if !ts.Before(start) && ts.Before(end) {
				bucket = append(bucket, row)
			}
		}

		value := 0.0
		if len(bucket) > 0 {
			value = agg(bucket)
		}
		points = append(points, TrendPoint{Date: start.Format("2006-01-02"), Value: value})
	}
	return points
}

// Count aggregates a bucket to its size.
func Count[T any](bucket []T) float64 {
	return float64(len(bucket))
}

// AverageOf aggregates a bucket to the mean of a per-row value.
func AverageOf[T any](value func(T) float64) func([]T) float64 {
	return func(bucket []T) float64 {
		if len(bucket) == 0 {
			return 0
		}
		var sum float64
		for _, row := range bucket {
			sum += value(row)
		}
		return sum / float64(len(bucket))
	}
}

// Package core implements the dashboard aggregation engine: calendar
// bucketing, time-series and category aggregation, and the composed
// dashboard summary. It is a pure computation over an in-memory record
// set and a caller-supplied reference instant; it performs no I/O, holds
// no state, and never logs.
package core

import (
	"fmt"
	"time"
)

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Granularity selects the calendar bucket size of a time series.
type Granularity string

// BucketCount returns the fixed lookback window length for g.
func (g Granularity) BucketCount() int {
	switch g {
	case Weekly, Monthly:
		return 12
	default:
		return 30
	}
}

// GenerateBuckets produces the ordered bucket keys of the lookback window
// ending at ref: oldest first, strictly ascending, no duplicates. Daily
// keys are "YYYY-MM-DD", weekly keys "YYYY-Wnn" (ISO year and zero-padded
// ISO week, window anchored to the Monday of ref's week), monthly keys
// "YYYY-MM" anchored to the first of ref's month.
func GenerateBuckets(ref time.Time, g Granularity) []string {
	n := g.BucketCount()
	keys := make([]string, 0, n)

	switch g {
	case Weekly:
		// Days since Monday, so the window moves in whole ISO weeks
		// rather than sliding with the reference instant.
		offset := (int(ref.Weekday()) + 6) % 7
		weekStart := ref.AddDate(0, 0, -offset)
		for i := n - 1; i >= 0; i-- {
			keys = append(keys, weekKey(weekStart.AddDate(0, 0, -7*i)))
		}
	case Monthly:
		year, month := ref.Year(), int(ref.Month())
		for i := n - 1; i >= 0; i-- {
			y, m := year, month-i
			if m <= 0 {
				m += 12
				y--
			}
			keys = append(keys, fmt.Sprintf("%04d-%02d", y, m))
		}
	default:
		for i := n - 1; i >= 0; i-- {
			keys = append(keys, ref.AddDate(0, 0, -i).Format("2006-01-02"))
		}
	}

	return keys
}

// BucketKeyFor formats the bucket key a record timestamp falls into,
// using the same formatting rules as GenerateBuckets.
func BucketKeyFor(t time.Time, g Granularity) string {
	switch g {
	case Weekly:
		return weekKey(t)
	case Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

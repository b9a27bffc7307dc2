package insights

import "time"

// DefaultMaxSpanDays is the widest window the insights API accepts for a
// single time-series query.
const DefaultMaxSpanDays = 90

// PlanRanges splits a lookback of pastDays into ordered query windows of at
// most maxSpanDays calendar days each, most-recent first. The windows are
// contiguous, non-overlapping, and together cover exactly
// [startOfDay(now − pastDays), endOfDay(now)].
//
// pastDays <= 0 means no lookback bound was configured: a single unbounded
// range is returned and requests omit since/until entirely.
//
// Boundaries are calendar days in now's location, not fixed 24h multiples,
// so windows stay day-aligned across daylight-saving transitions.
func PlanRanges(pastDays, maxSpanDays int, now time.Time) []DateRange {
	if pastDays <= 0 {
		return []DateRange{{}}
	}
	if maxSpanDays <= 0 {
		maxSpanDays = DefaultMaxSpanDays
	}

	oldest := startOfDay(now.AddDate(0, 0, -pastDays))
	until := endOfDay(now)

	var ranges []DateRange
	for {
		// Window width is measured as a day difference (until − since ≤
		// maxSpanDays), matching how the API validates the bounds. A
		// pastdays lookback of exactly maxSpanDays therefore still fits
		// in one window.
		since := startOfDay(until.AddDate(0, 0, -maxSpanDays))
		if since.Before(oldest) {
			since = oldest
		}
		ranges = append(ranges, DateRange{Since: since, Until: until, Bounded: true})
		if !since.After(oldest) {
			return ranges
		}
		until = endOfDay(since.AddDate(0, 0, -1))
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

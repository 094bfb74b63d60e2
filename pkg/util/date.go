package util

import (
	"math"
	"time"
)

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsTradingDay reports whether t falls on a weekday.
func IsTradingDay(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// PrevTradingDays returns the n most recent trading days at or before t,
// ascending. Weekends are skipped; exchange holidays are not modeled.
func PrevTradingDays(t time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	d := Day(t)
	for len(days) < n {
		if IsTradingDay(d) {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	// collected newest-first; reverse to ascending
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days
}

// Round2 rounds to two decimal places, matching upstream price formatting.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

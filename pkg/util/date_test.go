package util

import (
	"testing"
	"time"
)

func TestDay(t *testing.T) {
	in := time.Date(2025, 6, 3, 18, 45, 12, 999, time.FixedZone("X", 3600))
	got := Day(in)
	want := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Day = %v, want %v", got, want)
	}
}

func TestIsTradingDay(t *testing.T) {
	sat := time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)
	if IsTradingDay(sat) {
		t.Fatalf("saturday counted as trading day")
	}
	mon := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	if !IsTradingDay(mon) {
		t.Fatalf("monday not counted as trading day")
	}
}

func TestPrevTradingDays(t *testing.T) {
	// A Sunday; the window must end the previous Friday.
	sun := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)
	days := PrevTradingDays(sun, 5)
	if len(days) != 5 {
		t.Fatalf("len = %d", len(days))
	}
	last := days[len(days)-1]
	if last.Weekday() != time.Friday {
		t.Fatalf("last day = %v, want friday", last.Weekday())
	}
	for i, d := range days {
		if !IsTradingDay(d) {
			t.Fatalf("day %d is %v", i, d.Weekday())
		}
		if i > 0 && !days[i-1].Before(d) {
			t.Fatalf("days not ascending at %d", i)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(3.14159); got != 3.14 {
		t.Fatalf("got %v", got)
	}
	if got := Round2(2.675); got != 2.68 && got != 2.67 {
		t.Fatalf("got %v", got) // binary representation decides the half
	}
	if got := Round2(-1.005); got > -1.0 || got < -1.01 {
		t.Fatalf("got %v", got)
	}
}

package schedule

import (
	"testing"
	"time"
)

func TestGridCoversBusinessHours(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	hours := BusinessHours{OpenMinute: 8 * 60, CloseMinute: 18 * 60}

	slots := Grid(day, hours, 60)
	if len(slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(slots))
	}
	for i, s := range slots {
		if got := s.Interval.End.Sub(s.Interval.Start); got != 60*time.Minute {
			t.Fatalf("slot %d: duration %s, want 1h", i, got)
		}
		if s.Interval.Start.Before(AtMinute(day, hours.OpenMinute)) {
			t.Fatalf("slot %d starts before opening: %s", i, s.Interval.Start)
		}
		if s.Interval.End.After(AtMinute(day, hours.CloseMinute)) {
			t.Fatalf("slot %d ends after closing: %s", i, s.Interval.End)
		}
	}
	if slots[0].Label != "08:00 - 09:00" {
		t.Fatalf("unexpected first label %q", slots[0].Label)
	}
	if slots[9].Label != "17:00 - 18:00" {
		t.Fatalf("unexpected last label %q", slots[9].Label)
	}
}

func TestGridDropsPartialLastSlot(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	// 08:00-18:30 with 60-minute slots: the 18:00-19:00 slot would
	// exceed closing, so the grid still ends at 18:00.
	hours := BusinessHours{OpenMinute: 8 * 60, CloseMinute: 18*60 + 30}

	slots := Grid(day, hours, 60)
	if len(slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(slots))
	}
	last := slots[len(slots)-1]
	if want := AtMinute(day, 18*60); !last.Interval.End.Equal(want) {
		t.Fatalf("last slot ends at %s, want %s", last.Interval.End, want)
	}
}

func TestGridDeterministic(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	hours := DefaultBusinessHours()

	first := Grid(day, hours, 30)
	second := Grid(day, hours, 30)
	if len(first) != len(second) {
		t.Fatalf("grid lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Label != second[i].Label || !first[i].Interval.Start.Equal(second[i].Interval.Start) {
			t.Fatalf("slot %d differs between runs", i)
		}
	}
}

func TestGridDegenerateInputs(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)

	if got := Grid(day, DefaultBusinessHours(), 0); len(got) != 0 {
		t.Fatalf("zero duration: expected empty grid, got %d slots", len(got))
	}
	if got := Grid(day, DefaultBusinessHours(), -15); len(got) != 0 {
		t.Fatalf("negative duration: expected empty grid, got %d slots", len(got))
	}
	if got := Grid(day, BusinessHours{OpenMinute: 600, CloseMinute: 600}, 60); len(got) != 0 {
		t.Fatalf("open == close: expected empty grid, got %d slots", len(got))
	}
	if got := Grid(day, BusinessHours{OpenMinute: 700, CloseMinute: 600}, 60); len(got) != 0 {
		t.Fatalf("open > close: expected empty grid, got %d slots", len(got))
	}
}

func TestGridAnchorsToDate(t *testing.T) {
	day := time.Date(2026, 7, 14, 0, 0, 0, 0, time.Local)
	slots := Grid(day, DefaultBusinessHours(), 60)
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	start := slots[0].Interval.Start
	if start.Year() != 2026 || start.Month() != time.July || start.Day() != 14 {
		t.Fatalf("slot not anchored to date: %s", start)
	}
	if start.Hour() != 8 || start.Minute() != 0 {
		t.Fatalf("first slot must open at 08:00, got %s", start)
	}
}

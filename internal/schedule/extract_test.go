package schedule

import (
	"reflect"
	"strings"
	"testing"
)

func findEntry(entries []Entry, time string) (Entry, bool) {
	for _, e := range entries {
		if e.Time == time {
			return e, true
		}
	}
	return Entry{}, false
}

func TestExtractExplicitRange(t *testing.T) {
	t.Parallel()
	entries := Extract("Math 9:00 AM - 10:15 AM Mon")

	e, ok := findEntry(entries, "9:00 AM - 10:15 AM")
	if !ok {
		t.Fatalf("no range entry in %v", entries)
	}
	if !strings.Contains(e.Subject, "Math") {
		t.Fatalf("Subject = %q, want it to contain Math", e.Subject)
	}
	if e.Day != "Mon" {
		t.Fatalf("Day = %q, want Mon", e.Day)
	}
}

func TestExtractCompactDigitRange(t *testing.T) {
	t.Parallel()
	entries := Extract("930-1020 Physics Lab")
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1: %v", len(entries), entries)
	}
	e := entries[0]
	if e.Time != "9:30 AM - 10:20 AM" {
		t.Fatalf("Time = %q, want 9:30 AM - 10:20 AM", e.Time)
	}
	if !strings.Contains(e.Subject, "Physics") {
		t.Fatalf("Subject = %q, want it to contain Physics", e.Subject)
	}
	if e.Day != "Daily" {
		t.Fatalf("Day = %q, want Daily", e.Day)
	}
}

func TestExtractRejectsInvertedCompactRange(t *testing.T) {
	t.Parallel()
	// End before start is OCR noise, not a class.
	if entries := Extract("1538-1025 Chemistry"); len(entries) != 0 {
		t.Fatalf("got %v, want no entries", entries)
	}
}

func TestExtractBareTimeNeedsDayContext(t *testing.T) {
	t.Parallel()

	if entries := Extract("14:00 English"); len(entries) != 0 {
		t.Fatalf("bare time without day context produced %v", entries)
	}

	entries := Extract("Monday\n14:00 English")
	e, ok := findEntry(entries, "2:00 PM")
	if !ok {
		t.Fatalf("no 2:00 PM entry in %v", entries)
	}
	if e.Day != "Monday" {
		t.Fatalf("Day = %q, want Monday", e.Day)
	}
}

func TestExtractDurationBounds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		want int
	}{
		{name: "too short", line: "History 9:00 - 9:10", want: 0},
		{name: "too long", line: "History 9:00 - 16:00", want: 0},
		{name: "plausible", line: "History 9:00 - 10:00", want: 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entries := Extract(tt.line)
			if len(entries) != tt.want {
				t.Fatalf("Extract(%q) = %v, want %d entries", tt.line, entries, tt.want)
			}
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	t.Parallel()
	text := "Monday\nMath 9:00 AM\nPhysics 11:00 AM - 12:00 PM Tue\n930-1020 Chemistry Lab\n"
	a := Extract(text)
	b := Extract(text)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("extraction not deterministic:\n%v\n%v", a, b)
	}
}

func TestExtractDedupesTriples(t *testing.T) {
	t.Parallel()
	// Same class listed twice must appear once.
	entries := Extract("Math 9:00 AM Mon\nMath 9:00 AM Mon")
	seen := map[Entry]int{}
	for _, e := range entries {
		seen[e]++
		if seen[e] > 1 {
			t.Fatalf("duplicate triple %v in %v", e, entries)
		}
	}
}

func TestExtractSortedByStartMinute(t *testing.T) {
	t.Parallel()
	entries := Extract("Biology 2:00 PM Mon\nMath 9:00 AM Mon\nHistory 11:30 AM Mon")
	if len(entries) < 3 {
		t.Fatalf("got %d entries, want >= 3: %v", len(entries), entries)
	}
	prev := -1
	for _, e := range entries {
		m := StartMinutes(e.Time)
		if m < prev {
			t.Fatalf("entries not sorted by start minute: %v", entries)
		}
		prev = m
	}
}

func TestExtractBlankInput(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"", "   ", "\n \n\t\n"} {
		if entries := Extract(text); len(entries) != 0 {
			t.Fatalf("Extract(%q) = %v, want empty", text, entries)
		}
	}
}

func TestExtractDayDefaultsToDaily(t *testing.T) {
	t.Parallel()
	entries := Extract("Physics 9:00 AM")
	if len(entries) == 0 {
		t.Fatal("expected an entry")
	}
	for _, e := range entries {
		if e.Day != "Daily" {
			t.Fatalf("Day = %q, want Daily", e.Day)
		}
	}
}

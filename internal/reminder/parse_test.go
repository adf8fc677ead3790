package reminder

import (
	"testing"
	"time"
)

func TestParseReminderAt(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC) // 2:00 PM

	text, due, ok := ParseReminder("remind me at 5:30 pm to call the dentist", now)
	if !ok {
		t.Fatal("not recognized")
	}
	if text != "call the dentist" {
		t.Fatalf("text = %q", text)
	}
	want := time.Date(2026, 8, 24, 17, 30, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Fatalf("due = %v, want %v", due, want)
	}
}

func TestParseReminderAtRollsToTomorrow(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)

	_, due, ok := ParseReminder("remind me at 9 am", now)
	if !ok {
		t.Fatal("not recognized")
	}
	want := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Fatalf("due = %v, want %v (tomorrow)", due, want)
	}
}

func TestParseReminderIn(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		msg  string
		text string
		want time.Time
	}{
		{"remind me in 20 minutes", "Reminder", now.Add(20 * time.Minute)},
		{"remind me in 1 min to stretch", "stretch", now.Add(time.Minute)},
		{"remind me in 2 hours about the seminar", "the seminar", now.Add(2 * time.Hour)},
	}
	for _, tt := range tests {
		text, due, ok := ParseReminder(tt.msg, now)
		if !ok {
			t.Fatalf("ParseReminder(%q) not recognized", tt.msg)
		}
		if text != tt.text {
			t.Fatalf("ParseReminder(%q) text = %q, want %q", tt.msg, text, tt.text)
		}
		if !due.Equal(tt.want) {
			t.Fatalf("ParseReminder(%q) due = %v, want %v", tt.msg, due, tt.want)
		}
	}
}

func TestParseReminderRejectsNonsense(t *testing.T) {
	t.Parallel()
	now := time.Now()
	for _, msg := range []string{
		"remind me",
		"remind me at 25:00 pm",
		"remind me in 0 minutes",
		"what can you do",
	} {
		if _, _, ok := ParseReminder(msg, now); ok {
			t.Fatalf("ParseReminder(%q) unexpectedly ok", msg)
		}
	}
}

func TestParseReminderMidnightNoon(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 24, 1, 0, 0, 0, time.UTC)

	_, due, ok := ParseReminder("remind me at 12 pm", now)
	if !ok || due.Hour() != 12 {
		t.Fatalf("noon: ok=%v due=%v", ok, due)
	}
	_, due, ok = ParseReminder("remind me at 12 am", now)
	if !ok || due.Hour() != 0 {
		t.Fatalf("midnight: ok=%v due=%v", ok, due)
	}
}

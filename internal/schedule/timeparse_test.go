package schedule

import "testing"

func TestTo12Hour(t *testing.T) {
	t.Parallel()
	tests := []struct {
		h, m int
		want string
	}{
		{0, 0, "12:00 AM"},
		{0, 5, "12:05 AM"},
		{9, 30, "9:30 AM"},
		{12, 0, "12:00 PM"},
		{13, 45, "1:45 PM"},
		{23, 59, "11:59 PM"},
	}
	for _, tt := range tests {
		if got := to12Hour(tt.h, tt.m); got != tt.want {
			t.Fatalf("to12Hour(%d, %d) = %q, want %q", tt.h, tt.m, got, tt.want)
		}
	}
}

func TestCompactHM(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		h, m int
		ok   bool
	}{
		{in: "930", h: 9, m: 30, ok: true},
		{in: "1020", h: 10, m: 20, ok: true},
		{in: "1210", h: 12, m: 10, ok: true},
		{in: "975", ok: false},  // minutes >= 60
		{in: "2680", ok: false}, // hour > 23
	}
	for _, tt := range tests {
		h, m, ok := compactHM(tt.in)
		if ok != tt.ok {
			t.Fatalf("compactHM(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if ok && (h != tt.h || m != tt.m) {
			t.Fatalf("compactHM(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.h, tt.m)
		}
	}
}

func TestRangeTokens(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		want string // canonical time; "" means no token
	}{
		{name: "dash", line: "9:00 - 10:15 Math", want: "9:00 AM - 10:15 AM"},
		{name: "meridiems", line: "Math 2:00 PM - 3:15 PM", want: "2:00 PM - 3:15 PM"},
		{name: "to separator", line: "Lab 13:00 to 14:30", want: "1:00 PM - 2:30 PM"},
		{name: "en dash", line: "9:00 – 10:00", want: "9:00 AM - 10:00 AM"},
		{name: "end before start", line: "15:00 - 9:00", want: ""},
		{name: "invalid minutes", line: "9:75 - 10:80", want: ""},
		{name: "too long", line: "8:00 - 20:00", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rangeTokens(tt.line)
			if tt.want == "" {
				if len(got) != 0 {
					t.Fatalf("rangeTokens(%q) = %v, want none", tt.line, got)
				}
				return
			}
			if len(got) != 1 || got[0].Time != tt.want {
				t.Fatalf("rangeTokens(%q) = %v, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestBareClockSuppressedOnRangeLines(t *testing.T) {
	t.Parallel()
	win := window{cur: "Mon 9:00 - 10:15 Math"}
	if got := matchClockBare(win.cur, win); len(got) != 0 {
		t.Fatalf("bare clock should be suppressed on range lines, got %v", got)
	}
}

func TestHourMeridiemDefaultsMinutes(t *testing.T) {
	t.Parallel()
	got := matchHourMeridiem("Seminar at 9 AM", window{})
	if len(got) != 1 || got[0].Time != "9:00 AM" {
		t.Fatalf("got %v, want one 9:00 AM token", got)
	}
}

func TestDotClock(t *testing.T) {
	t.Parallel()
	got := matchDotClock("Physics 14.30", window{})
	if len(got) != 1 || got[0].Time != "2:30 PM" {
		t.Fatalf("got %v, want one 2:30 PM token", got)
	}
}

package schedule

import "testing"

func TestSubjectForKeyword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "keyword with neighbors", line: "Applied Math II 9:00", want: "Applied Math II"},
		{name: "keyword alone", line: "chemistry", want: "chemistry"},
		{name: "punctuation stripped", line: "Physics, Lab. 9:00", want: "Physics Lab"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := subjectFor(tt.line, window{cur: tt.line}); got != tt.want {
				t.Fatalf("subjectFor(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSubjectForFallback(t *testing.T) {
	t.Parallel()

	// No keyword on the line itself; the previous line survives stripping.
	win := window{prev: "Advanced Thermodynamics", cur: "Mon 9:00"}
	if got := subjectFor(win.cur, win); got != "Advanced Thermodynamics" {
		t.Fatalf("got %q, want Advanced Thermodynamics", got)
	}
}

func TestSubjectForDefaultsToClass(t *testing.T) {
	t.Parallel()

	// Day and time tokens strip to nothing; nothing else qualifies.
	win := window{cur: "Mon 9:00"}
	if got := subjectFor(win.cur, win); got != "Class" {
		t.Fatalf("got %q, want Class", got)
	}
}

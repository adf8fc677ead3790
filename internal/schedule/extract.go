package schedule

import (
	"regexp"
	"sort"
	"strings"
)

// window is the 3-line context (previous, current, next) used to resolve
// day/subject tokens that OCR tends to split across lines.
type window struct {
	prev, cur, next string
}

func (w window) combined() string {
	return w.prev + " " + w.cur + " " + w.next
}

var reInnerSpace = regexp.MustCompile(`\s{2,}`)

// Extract parses free-form timetable text into a deduplicated, time-sorted
// list of entries.
//
// It never fails: blank input or lines that defeat every pattern simply
// produce fewer entries. Calling it twice on the same input yields the
// same output in the same order.
func Extract(text string) []Entry {
	lines := splitLines(text)
	if len(lines) == 0 {
		return []Entry{}
	}

	var entries []Entry
	for i, line := range lines {
		win := window{prev: lineAt(lines, i-1), cur: line, next: lineAt(lines, i+1)}

		// Range pre-pass. Running it before the single-time matchers lets
		// the bare-clock matcher suppress itself on range lines instead of
		// re-emitting the range's endpoints as two extra classes.
		for _, tk := range rangeTokens(line) {
			entries = append(entries, buildEntry(line, win, tk))
		}
		for _, tk := range singleTokens(line, win) {
			entries = append(entries, buildEntry(line, win, tk))
		}
	}

	entries = dedupe(entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})
	return entries
}

func buildEntry(line string, win window, tk token) Entry {
	day := dayIn(win)
	if day == "" {
		day = "Daily"
	}
	return Entry{
		Subject: subjectFor(line, win),
		Time:    tk.Time,
		Day:     day,
	}
}

// splitLines normalizes raw text: one entry per non-blank line, internal
// whitespace runs collapsed.
func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(reInnerSpace.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

// dedupe drops later entries with an identical (subject, time, day) triple.
func dedupe(entries []Entry) []Entry {
	seen := make(map[Entry]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func sortKey(e Entry) int {
	if m := StartMinutes(e.Time); m >= 0 {
		return m
	}
	return 0
}

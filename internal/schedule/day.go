package schedule

import (
	"regexp"
	"strings"
)

// Day patterns, in match-priority order: full names and 3-letter forms per
// weekday, then the 2-letter set some printed timetables use as column
// headers. First hit in the context window wins.
var dayPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(monday|mon)\b`),
	regexp.MustCompile(`(?i)\b(tuesday|tue)\b`),
	regexp.MustCompile(`(?i)\b(wednesday|wed)\b`),
	regexp.MustCompile(`(?i)\b(thursday|thu)\b`),
	regexp.MustCompile(`(?i)\b(friday|fri)\b`),
	regexp.MustCompile(`(?i)\b(saturday|sat)\b`),
	regexp.MustCompile(`(?i)\b(sunday|sun)\b`),
	regexp.MustCompile(`(?i)\b(mo|tu|we|th|fr|sa|su)\b`),
}

// dayIn returns the first day token found in the window, normalized:
// 2-letter hits upper-cased ("MO"), longer hits title-cased ("Mon",
// "Monday"). Empty string when the window has no day token; the pipeline
// renders that as "Daily".
func dayIn(win window) string {
	combined := win.combined()
	for _, p := range dayPatterns {
		hit := p.FindString(combined)
		if hit == "" {
			continue
		}
		if len(hit) <= 2 {
			return strings.ToUpper(hit)
		}
		return strings.ToUpper(hit[:1]) + strings.ToLower(hit[1:])
	}
	return ""
}

func hasDayToken(s string) bool {
	for _, p := range dayPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

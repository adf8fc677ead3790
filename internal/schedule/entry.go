// Package schedule turns free-form timetable text (OCR or PDF output) into
// structured class entries.
//
// The pipeline is a pure function of its input: no I/O, no shared state.
// Callers own persistence and replies.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

// Entry is one extracted timetable row.
//
// Time is canonical: "H:MM AM" or "H:MM AM - H:MM PM". Day is a weekday
// token as found in the source (e.g. "Mon", "Monday", "MO") or "Daily"
// when no day token was detected near the time.
type Entry struct {
	Subject string `json:"subject"`
	Time    string `json:"time"`
	Day     string `json:"day"`
}

var reStartClock = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)?`)

// StartMinutes returns minutes since midnight for the start of a canonical
// time string (the first token of a range, or the single time). It returns
// -1 when the string doesn't parse; canonical times produced by Extract
// always parse.
func StartMinutes(timeStr string) int {
	start := strings.TrimSpace(strings.SplitN(timeStr, "-", 2)[0])
	m := reStartClock.FindStringSubmatch(start)
	if m == nil {
		return -1
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if min < 0 || min > 59 {
		return -1
	}
	switch strings.ToUpper(m[3]) {
	case "PM":
		if h != 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	default:
		// No meridiem: treat as 24-hour.
		if h > 23 {
			return -1
		}
	}
	if h < 0 || h > 23 {
		return -1
	}
	return h*60 + min
}

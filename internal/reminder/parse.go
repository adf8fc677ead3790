package reminder

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reRemindAt = regexp.MustCompile(`(?i)\bremind me at (\d{1,2})(?::(\d{2}))?\s*(am|pm)\b\s*(?:to\s+|about\s+)?(.*)`)
	reRemindIn = regexp.MustCompile(`(?i)\bremind me in (\d{1,4})\s*(minutes?|mins?|hours?|hrs?)\b\s*(?:to\s+|about\s+)?(.*)`)
)

// ParseReminder recognizes the two chat forms:
//
//	remind me at 5:30 pm [to <text>]
//	remind me in 20 minutes [to <text>]
//
// An "at" time means the next occurrence of that clock time: later today,
// or tomorrow if it has already passed. Returns ok=false when the message
// is not a reminder request.
func ParseReminder(msg string, now time.Time) (text string, due time.Time, ok bool) {
	if m := reRemindAt.FindStringSubmatch(msg); m != nil {
		h, _ := strconv.Atoi(m[1])
		min := 0
		if m[2] != "" {
			min, _ = strconv.Atoi(m[2])
		}
		if h < 1 || h > 12 || min > 59 {
			return "", time.Time{}, false
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
		}
		due = time.Date(now.Year(), now.Month(), now.Day(), h, min, 0, 0, now.Location())
		if !due.After(now) {
			due = due.Add(24 * time.Hour)
		}
		return reminderText(m[4]), due, true
	}

	if m := reRemindIn.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n <= 0 {
			return "", time.Time{}, false
		}
		unit := time.Minute
		if strings.HasPrefix(strings.ToLower(m[2]), "h") {
			unit = time.Hour
		}
		return reminderText(m[3]), now.Add(time.Duration(n) * unit), true
	}

	return "", time.Time{}, false
}

func reminderText(tail string) string {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return "Reminder"
	}
	return tail
}

package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Plausible class duration bounds for range-form times, in minutes.
// Ranges outside these bounds are OCR noise (e.g. "1538-1025") and are
// dropped rather than surfaced as partial data.
const (
	minClassMinutes = 15
	maxClassMinutes = 360
)

var (
	// Explicit "H:MM - H:MM" range; separators "-", en-dash, or "to";
	// meridiems optional on either end.
	reRange = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)?\s*(?:-|–|to)\s*(\d{1,2}):(\d{2})\s*(AM|PM)?`)

	reClockMeridiem = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)`) // 9:00 AM
	reClockBare     = regexp.MustCompile(`(\d{1,2}):(\d{2})`)               // 9:00, 14:30
	reHourMeridiem  = regexp.MustCompile(`(?i)(\d{1,2})\s*(AM|PM)`)         // 9 AM
	reDotClock      = regexp.MustCompile(`(\d{1,2})\.(\d{2})`)              // 9.00

	// Compact digit range, an OCR artifact of timetables printed without
	// separators: "930-1020" means 9:30-10:20.
	reCompactRange = regexp.MustCompile(`\b(\d{3,4})\s*-\s*(\d{3,4})\b`)
)

// token is one normalized time hit on a line.
type token struct {
	Raw  string // the matched source text
	Time string // canonical 12-hour form
}

// matcher is a single pattern strategy. Strategies are independent; a line
// may hit several, and identical results collapse in the dedupe pass.
type matcher func(line string, win window) []token

// singleMatchers are applied in precedence order after the range pre-pass.
var singleMatchers = []matcher{
	matchClockMeridiem,
	matchClockBare,
	matchHourMeridiem,
	matchDotClock,
	matchCompactRange,
}

// rangeTokens extracts explicit "H:MM - H:MM" ranges. Ends without a
// meridiem are read as 24-hour clock; implausible durations are rejected.
func rangeTokens(line string) []token {
	var out []token
	for _, m := range reRange.FindAllStringSubmatch(line, -1) {
		h1, _ := strconv.Atoi(m[1])
		m1, _ := strconv.Atoi(m[2])
		h2, _ := strconv.Atoi(m[4])
		m2, _ := strconv.Atoi(m[5])
		h1, ok1 := hour24(h1, m[3])
		h2, ok2 := hour24(h2, m[6])
		if !ok1 || !ok2 || !validHM(h1, m1, false) || !validHM(h2, m2, false) {
			continue
		}
		start := h1*60 + m1
		end := h2*60 + m2
		if end <= start {
			continue
		}
		if dur := end - start; dur < minClassMinutes || dur > maxClassMinutes {
			continue
		}
		out = append(out, token{Raw: m[0], Time: to12Hour(h1, m1) + " - " + to12Hour(h2, m2)})
	}
	return out
}

// singleTokens applies the non-range patterns in precedence order.
func singleTokens(line string, win window) []token {
	var out []token
	for _, m := range singleMatchers {
		out = append(out, m(line, win)...)
	}
	return out
}

func matchClockMeridiem(line string, _ window) []token {
	var out []token
	for _, m := range reClockMeridiem.FindAllStringSubmatch(line, -1) {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if !validHM(h, min, true) {
			continue
		}
		out = append(out, token{Raw: m[0], Time: fmt.Sprintf("%d:%02d %s", h, min, strings.ToUpper(m[3]))})
	}
	return out
}

// matchClockBare handles 24-hour "H:MM" with no meridiem. Two guards keep it
// from misfiring:
//   - suppressed entirely on lines that carry an explicit range, so the
//     range's endpoints aren't re-emitted as two extra classes;
//   - requires a day token somewhere in the context window, otherwise a
//     bare number pair is too ambiguous and is discarded.
func matchClockBare(line string, win window) []token {
	if reRange.MatchString(line) {
		return nil
	}
	if !hasDayToken(win.combined()) {
		return nil
	}
	var out []token
	for _, m := range reClockBare.FindAllStringSubmatch(line, -1) {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if !validHM(h, min, false) {
			continue
		}
		out = append(out, token{Raw: m[0], Time: to12Hour(h, min)})
	}
	return out
}

func matchHourMeridiem(line string, _ window) []token {
	var out []token
	for _, m := range reHourMeridiem.FindAllStringSubmatch(line, -1) {
		h, _ := strconv.Atoi(m[1])
		if !validHM(h, 0, true) {
			continue
		}
		out = append(out, token{Raw: m[0], Time: fmt.Sprintf("%d:00 %s", h, strings.ToUpper(m[2]))})
	}
	return out
}

func matchDotClock(line string, _ window) []token {
	var out []token
	for _, m := range reDotClock.FindAllStringSubmatch(line, -1) {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if !validHM(h, min, false) {
			continue
		}
		out = append(out, token{Raw: m[0], Time: to12Hour(h, min)})
	}
	return out
}

func matchCompactRange(line string, _ window) []token {
	var out []token
	for _, m := range reCompactRange.FindAllStringSubmatch(line, -1) {
		h1, m1, ok1 := compactHM(m[1])
		h2, m2, ok2 := compactHM(m[2])
		if !ok1 || !ok2 {
			continue
		}
		start := h1*60 + m1
		end := h2*60 + m2
		if end <= start {
			continue
		}
		if dur := end - start; dur < minClassMinutes || dur > maxClassMinutes {
			continue
		}
		out = append(out, token{Raw: m[0], Time: to12Hour(h1, m1) + " - " + to12Hour(h2, m2)})
	}
	return out
}

// compactHM decodes a 3-4 digit group as HH*100+MM ("930" -> 9,30).
func compactHM(digits string) (h, m int, ok bool) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, false
	}
	h = n / 100
	m = n % 100
	if m >= 60 || h > 23 {
		return 0, 0, false
	}
	return h, m, true
}

// hour24 resolves an hour figure against an optional meridiem suffix.
// Without one the figure is already 24-hour.
func hour24(h int, meridiem string) (int, bool) {
	switch strings.ToUpper(meridiem) {
	case "":
		return h, h >= 0 && h <= 23
	case "AM":
		if h < 1 || h > 12 {
			return 0, false
		}
		if h == 12 {
			h = 0
		}
		return h, true
	case "PM":
		if h < 1 || h > 12 {
			return 0, false
		}
		if h != 12 {
			h += 12
		}
		return h, true
	}
	return 0, false
}

func validHM(h, m int, twelveHour bool) bool {
	if m < 0 || m > 59 {
		return false
	}
	if twelveHour {
		return h >= 1 && h <= 12
	}
	return h >= 0 && h <= 23
}

// to12Hour converts a 24-hour clock value to canonical "H:MM AM|PM".
// Hour 0 is 12 AM, hour 12 stays 12 PM.
func to12Hour(h24, m int) string {
	h := h24
	meridiem := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		meridiem = "PM"
	case h > 12:
		h -= 12
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, m, meridiem)
}

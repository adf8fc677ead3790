package schedule

import (
	"regexp"
	"strings"
)

// subjectKeywords are common course-domain words used to anchor a label.
// Matching is case-insensitive substring against the line.
var subjectKeywords = []string{
	"math", "mathematics", "calculus", "algebra", "geometry",
	"english", "literature", "writing", "grammar",
	"science", "physics", "chemistry", "biology",
	"history", "geography", "social", "studies",
	"computer", "programming", "coding", "it", "cs", "cse",
	"economics", "psychology", "philosophy",
	"language", "spanish", "french", "german",
	"lecture", "lab", "tutorial", "seminar",
	"class", "course", "subject",
}

const (
	minSubjectLen = 2
	maxSubjectLen = 60
)

var (
	reNonWord      = regexp.MustCompile(`[^\w\s]`)
	reNonWordKeep  = regexp.MustCompile(`[^\w\s-]`) // keeps hyphens in fallback phrases
	reSpaces       = regexp.MustCompile(`\s+`)
	reAnyLetter    = regexp.MustCompile(`[A-Za-z]`)
	reDayStrip     = regexp.MustCompile(`(?i)\b(Mon|Tue|Wed|Thu|Fri|Sat|Sun|Mo|Tu|We|Th|Fr|Sa|Su)\b`)
	reTimeStrip    = regexp.MustCompile(`(?i)\b\d{1,2}[:.]\d{2}\s*(AM|PM)?\b`)
	reCompactStrip = regexp.MustCompile(`\b\d{3,4}\s*-\s*\d{3,4}\b`)
)

// subjectFor labels an entry.
//
// Primary: the first keyword hit on the line, widened to its immediate
// neighbor words (so "Applied Math II" survives, not just "Math").
// Fallback: the first context line that still looks like a phrase once day
// tokens, time tokens and punctuation are stripped. Default: "Class".
func subjectFor(line string, win window) string {
	subject := keywordSubject(line)
	if subject == "" {
		subject = fallbackSubject(win)
	}

	subject = reNonWord.ReplaceAllString(subject, " ")
	subject = strings.TrimSpace(reSpaces.ReplaceAllString(subject, " "))
	if len(subject) < minSubjectLen {
		return "Class"
	}
	return subject
}

func keywordSubject(line string) string {
	lower := strings.ToLower(line)
	for _, kw := range subjectKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		words := strings.Fields(line)
		idx := -1
		for i, w := range words {
			if strings.Contains(strings.ToLower(w), kw) {
				idx = i
				break
			}
		}
		if idx == -1 {
			continue
		}
		subject := words[idx]
		if idx > 0 {
			subject = words[idx-1] + " " + subject
		}
		if idx < len(words)-1 {
			subject = subject + " " + words[idx+1]
		}
		return strings.TrimSpace(reNonWord.ReplaceAllString(subject, ""))
	}
	return ""
}

func fallbackSubject(win window) string {
	for _, s := range []string{win.prev, win.cur, win.next} {
		if s == "" {
			continue
		}
		s = reDayStrip.ReplaceAllString(s, "")
		s = reTimeStrip.ReplaceAllString(s, "")
		s = reCompactStrip.ReplaceAllString(s, "")
		s = reNonWordKeep.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		if len(s) <= 1 || len(s) > maxSubjectLen {
			continue
		}
		if reAnyLetter.MatchString(s) {
			return s
		}
	}
	return "Class"
}

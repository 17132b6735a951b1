// Package extract finds personal details in résumé text.
//
// Extractors never fail: a field that cannot be found is reported as absent.
package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/spigell/resume-evaluator/internal/document"
)

// Scalar extracts a single optional value. ok is false when nothing was found.
type Scalar func(content *document.Content) (value string, ok bool)

// List extracts an ordered list of distinct values. An empty result means absent.
type List func(content *document.Content) []string

const (
	maxHeaderLines = 5

	// bare numbers outside a phone label need this many digits unless they
	// carry a country code or an area code in parentheses
	minUnlabelledDigits = 9
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)

	phonePattern = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{1,4}\)[\s.\-]?)?\d{2,4}(?:[\s.\-]\d{2,4}){1,4}`)
	yearRange    = regexp.MustCompile(`^(?:19|20)\d{2}\s*[-.]\s*(?:19|20)\d{2}$`)
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}[-./]\d{1,2}[-./]\d{1,2}\b`),
		regexp.MustCompile(`\b\d{1,2}[-./]\d{1,2}[-./]\d{4}\b`),
	}

	nameLabel  = regexp.MustCompile(`(?i)^\s*(?:full\s+)?name\s*[:\-]\s*(.+)$`)
	phoneLabel = regexp.MustCompile(`(?i)^\s*(?:phone|tel|telephone|mobile|cell)(?:\s+(?:number|no\.?))?\s*[:\-]\s*(.+)$`)
	langLabel  = regexp.MustCompile(`(?i)^\s*languages?(?:\s+spoken)?\s*[:\-]\s*(.+)$`)

	segmentSeparators = regexp.MustCompile(`\s*(?:[,|•·;]|\s[-–—]\s)\s*`)
)

// Email returns the first email address in the text.
func Email(content *document.Content) (string, bool) {
	if content == nil {
		return "", false
	}
	email := emailPattern.FindString(content.Text)
	email = strings.TrimRight(email, ".")
	return email, email != ""
}

// Phone returns a labelled phone number, or else the first number-like run
// with 7 to 15 digits that is neither a date nor a year range. Unlabelled
// runs must also look international, have an area code in parentheses or be
// long enough to rule out reference numbers.
func Phone(content *document.Content) (string, bool) {
	lines := content.Lines()
	for _, line := range lines {
		if m := phoneLabel.FindStringSubmatch(line); m != nil {
			if phone, ok := findPhone(m[1], false); ok {
				return phone, true
			}
		}
	}
	for _, line := range lines {
		if phone, ok := findPhone(line, true); ok {
			return phone, true
		}
	}
	return "", false
}

func findPhone(s string, strict bool) (string, bool) {
	for _, candidate := range phonePattern.FindAllString(s, -1) {
		candidate = strings.TrimSpace(candidate)
		if yearRange.MatchString(candidate) || isDate(candidate) {
			continue
		}
		digits := countDigits(candidate)
		if digits < 7 || digits > 15 {
			continue
		}
		if strict && !strings.ContainsAny(candidate, "+(") && digits < minUnlabelledDigits {
			continue
		}
		return candidate, true
	}
	return "", false
}

func isDate(s string) bool {
	for _, p := range datePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Name returns a labelled name, or else the first segment of the leading
// lines that reads like a personal name.
func Name(content *document.Content) (string, bool) {
	lines := content.Lines()
	for _, line := range lines {
		if m := nameLabel.FindStringSubmatch(line); m != nil {
			if name, ok := asName(strings.TrimSpace(m[1])); ok {
				return name, true
			}
		}
	}

	if len(lines) > maxHeaderLines {
		lines = lines[:maxHeaderLines]
	}
	for _, line := range lines {
		line = strings.TrimLeft(line, "#* ")
		for _, segment := range segmentSeparators.Split(line, -1) {
			if name, ok := asName(segment); ok {
				return name, true
			}
		}
	}
	return "", false
}

// asName accepts 2 to 4 words that each start with an uppercase letter and
// contain only letters, apostrophes, hyphens or dots.
func asName(s string) (string, bool) {
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return "", false
	}
	for _, word := range words {
		runes := []rune(word)
		if !unicode.IsUpper(runes[0]) {
			return "", false
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) && r != '\'' && r != '-' && r != '.' {
				return "", false
			}
		}
		if isStopWord(word) {
			return "", false
		}
	}
	return strings.Join(words, " "), true
}

// words that start résumé headings and would otherwise look like names
var headingWords = map[string]struct{}{
	"curriculum": {}, "vitae": {}, "resume": {}, "résumé": {}, "profile": {},
	"summary": {}, "experience": {}, "education": {}, "skills": {}, "contact": {},
	"objective": {}, "projects": {}, "languages": {}, "engineer": {}, "developer": {},
	"analyst": {}, "scientist": {}, "manager": {}, "senior": {}, "junior": {},
}

func isStopWord(word string) bool {
	_, ok := headingWords[strings.ToLower(strings.Trim(word, ".-'"))]
	return ok
}

package extract

import (
	"regexp"
	"strings"

	"github.com/spigell/resume-evaluator/internal/document"
)

var knownLanguages = []string{
	"English", "Spanish", "French", "German", "Italian", "Portuguese", "Dutch",
	"Russian", "Ukrainian", "Polish", "Czech", "Slovak", "Hungarian", "Romanian",
	"Bulgarian", "Serbian", "Croatian", "Greek", "Turkish", "Swedish", "Norwegian",
	"Danish", "Finnish", "Estonian", "Latvian", "Lithuanian", "Arabic", "Hebrew",
	"Persian", "Farsi", "Urdu", "Hindi", "Bengali", "Punjabi", "Tamil", "Telugu",
	"Marathi", "Gujarati", "Kannada", "Malayalam", "Chinese", "Mandarin", "Cantonese",
	"Japanese", "Korean", "Vietnamese", "Thai", "Indonesian", "Malay", "Tagalog",
	"Filipino", "Swahili", "Amharic", "Yoruba", "Catalan", "Basque", "Galician",
	"Irish", "Welsh", "Icelandic", "Kazakh", "Uzbek", "Georgian", "Armenian",
	"Azerbaijani", "Belarusian", "Slovenian", "Albanian", "Macedonian", "Afrikaans",
}

var (
	languageIndex = func() map[string]string {
		idx := make(map[string]string, len(knownLanguages))
		for _, lang := range knownLanguages {
			idx[strings.ToLower(lang)] = lang
		}
		return idx
	}()

	// capitalised or upper-case mentions only: "polish the UI" is not a language
	languageMention = func() *regexp.Regexp {
		alternatives := make([]string, 0, 2*len(knownLanguages))
		for _, lang := range knownLanguages {
			alternatives = append(alternatives, regexp.QuoteMeta(lang), regexp.QuoteMeta(strings.ToUpper(lang)))
		}
		return regexp.MustCompile(`\b(?:` + strings.Join(alternatives, "|") + `)\b`)
	}()

	wordPattern = regexp.MustCompile(`\pL+`)
)

// Languages returns spoken or written languages in first-seen order without duplicates.
// Words on a "Languages:" line are matched case-insensitively.
func Languages(content *document.Content) []string {
	if content == nil {
		return nil
	}

	var (
		found []string
		seen  = make(map[string]struct{})
	)
	add := func(word string) {
		canonical, ok := languageIndex[strings.ToLower(word)]
		if !ok {
			return
		}
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}
		found = append(found, canonical)
	}

	for _, line := range content.Lines() {
		if m := langLabel.FindStringSubmatch(line); m != nil {
			for _, word := range wordPattern.FindAllString(m[1], -1) {
				add(word)
			}
			continue
		}
		for _, word := range languageMention.FindAllString(line, -1) {
			add(word)
		}
	}

	return found
}

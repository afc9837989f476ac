package common

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// inflection lets a keyword match its common English forms ("risk", "risky",
// "exceeded", "suggestion") while still ending on a word boundary.
const inflection = `(?:s|es|ed|ing|ion|ions|ation|ations|y)?`

// KeywordPattern builds a case-insensitive alternation matching any of the
// given words or symbols. Words are quoted, so callers can pass emoji or
// punctuation as-is. Keywords that start or end with a letter or digit only
// match at word boundaries, so "tip" does not fire inside "multiple".
func KeywordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		alt := regexp.QuoteMeta(w)
		if first, _ := utf8.DecodeRuneInString(w); isWordRune(first) {
			alt = `\b` + alt
		}
		if last, _ := utf8.DecodeLastRuneInString(w); isWordRune(last) {
			alt += inflection + `\b`
		}
		quoted = append(quoted, alt)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

func isWordRune(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

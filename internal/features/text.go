package features

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	digitsRe     = regexp.MustCompile(`\d+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	tokenRe      = regexp.MustCompile(`\w\w+`)
)

// CleanText lowercases text, drops punctuation and digits and collapses whitespace.
func CleanText(text string) string {
	text = strings.ToLower(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, text)
	text = digitsRe.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Tokenize splits cleaned text into terms of at least two word characters.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(CleanText(text), -1)
}

// containsTerm reports whether term occurs in lower-cased text without being
// part of a longer alphanumeric word. A match may be followed by one of the
// given suffixes, so "bachelor" with suffix "s" also finds "bachelors".
func containsTerm(text, term string, suffixes ...string) bool {
	for start := 0; start < len(text); {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)

		if idx == 0 || !isWordByte(text[idx-1]) {
			if endsWord(text, end) {
				return true
			}
			for _, suffix := range suffixes {
				if strings.HasPrefix(text[end:], suffix) && endsWord(text, end+len(suffix)) {
					return true
				}
			}
		}
		start = idx + 1
	}
	return false
}

func endsWord(text string, end int) bool {
	return end == len(text) || !isWordByte(text[end])
}

func isWordByte(b byte) bool {
	return b == '_' || b == '+' || b == '#' ||
		(b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

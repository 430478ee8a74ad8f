// Package strcase converts Go identifiers into the snake_case keys used in
// config files and API error fields.
package strcase

import (
	"strings"
	"unicode"
)

// Words splits a mixed-case identifier into its words. A run of capitals is
// one word (an initialism) unless its last letter starts a lowercase word, so
// "HTTPServer" gives ["HTTP", "Server"] and "ChatID" gives ["Chat", "ID"].
// Underscores, dashes and spaces also separate words.
func Words(s string) []string {
	var (
		words []string
		start = -1
	)
	runes := []rune(s)
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}

		prev := runes[i-1]
		upperAfterLower := unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev))
		initialismEnds := unicode.IsUpper(r) && unicode.IsUpper(prev) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if upperAfterLower || initialismEnds {
			flush(i)
			start = i
		}
	}
	flush(len(runes))

	return words
}

// ToLowerSnake joins the Words of s in lowercase with underscores.
func ToLowerSnake(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

package text

import (
	"strings"
	"unicode"
)

// Token is a whitespace-delimited piece of text as rendered. Index is the
// token's position among highlightable words, or -1 for punctuation-only
// tokens, which are drawn but never advance the highlight.
type Token struct {
	Text          string
	Highlightable bool
	Index         int
}

// IsHighlightable reports whether a token contains a letter or digit.
func IsHighlightable(token string) bool {
	return strings.IndexFunc(token, isAlnum) >= 0
}

// HighlightableWords returns the tokens of s that contain at least one
// letter or digit, in order. Timing and rendering both count words with
// this function.
func HighlightableWords(s string) []string {
	fields := strings.Fields(s)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsHighlightable(f) {
			words = append(words, f)
		}
	}
	return words
}

// Tokens splits s on whitespace and numbers the highlightable tokens.
func Tokens(s string) []Token {
	fields := strings.Fields(s)
	tokens := make([]Token, len(fields))
	n := 0
	for i, f := range fields {
		tokens[i] = Token{Text: f, Index: -1}
		if IsHighlightable(f) {
			tokens[i].Highlightable = true
			tokens[i].Index = n
			n++
		}
	}
	return tokens
}

// Sanitize lowercases word and strips everything but letters and digits.
// The result is only meant for comparisons.
func Sanitize(word string) string {
	return strings.Map(func(r rune) rune {
		if isAlnum(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, word)
}

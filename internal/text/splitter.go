// Package text segments paragraphs into sentences, cleans text for speech
// synthesis and classifies tokens for word highlighting.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

// placeholder stands in for protected periods while splitting. It lives in
// the Unicode private use area so it never occurs in extracted text.
const placeholder = "\uE000"

// DefaultAbbreviations are words that are commonly followed by a period
// without ending a sentence.
var DefaultAbbreviations = []string{
	"Mr", "Mrs", "Ms", "Dr", "Prof", "Rev", "Hon", "Jr", "Sr",
	"Cpl", "Sgt", "Gen", "Col", "Capt", "Lt", "Pvt",
	"vs", "viz", "etc", "eg", "ie",
	"Co", "Inc", "Ltd", "Corp",
	"St", "Ave", "Blvd",
}

// initialRegex matches a single capital letter initial followed by
// whitespace and another capital, as in "J. K. Rowling".
var initialRegex = regexp.MustCompile(`\b([A-Z])\.(\s[A-Z])`)

var defaultSplitter = NewSplitter()

// Splitter splits paragraphs into sentences without breaking on known
// abbreviations or initials.
type Splitter struct {
	abbreviationRegex *regexp.Regexp
	fragmentRegex     *regexp.Regexp
}

// NewSplitter returns a Splitter protecting DefaultAbbreviations plus any
// extra abbreviations given.
func NewSplitter(extra ...string) *Splitter {
	words := make([]string, 0, len(DefaultAbbreviations)+len(extra))
	seen := make(map[string]bool)
	for _, w := range append(append([]string{}, DefaultAbbreviations...), extra...) {
		w = strings.TrimSuffix(strings.TrimSpace(w), ".")
		if w == "" || seen[strings.ToLower(w)] {
			continue
		}
		seen[strings.ToLower(w)] = true
		words = append(words, regexp.QuoteMeta(w))
	}
	alt := strings.Join(words, "|")
	return &Splitter{
		abbreviationRegex: regexp.MustCompile(`(?i)\b(` + alt + `)\.`),
		fragmentRegex:     regexp.MustCompile(`(?i)^(` + alt + `|[A-Z])\.$`),
	}
}

// Split splits a paragraph using the default abbreviation list.
func Split(paragraph string) []string {
	return defaultSplitter.Split(paragraph)
}

// IsAbbreviationFragment reports whether s is nothing but an abbreviation
// token such as "Mr." or a bare initial.
func IsAbbreviationFragment(s string) bool {
	return defaultSplitter.IsAbbreviationFragment(s)
}

// Split returns the sentences of paragraph in order. Each sentence keeps its
// terminating punctuation. The result is never empty for non-empty input.
func (s *Splitter) Split(paragraph string) []string {
	if paragraph == "" {
		return nil
	}

	protected := s.abbreviationRegex.ReplaceAllString(paragraph, "${1}"+placeholder)

	// Initials overlap ("J. K. R"), so replace until nothing changes.
	for {
		next := initialRegex.ReplaceAllString(protected, "${1}"+placeholder+"${2}")
		if next == protected {
			break
		}
		protected = next
	}

	var sentences []string
	for _, part := range splitAfterTerminators(protected) {
		restored := strings.ReplaceAll(part, placeholder, ".")
		if restored != "" {
			sentences = append(sentences, restored)
		}
	}

	if len(sentences) == 0 {
		return []string{paragraph}
	}
	return sentences
}

// IsAbbreviationFragment reports whether sentence is only an abbreviation.
func (s *Splitter) IsAbbreviationFragment(sentence string) bool {
	return s.fragmentRegex.MatchString(strings.TrimSpace(sentence))
}

// splitAfterTerminators splits at every whitespace run that directly
// follows '.', '!' or '?'. The whitespace itself is discarded.
func splitAfterTerminators(s string) []string {
	var parts []string
	runes := []rune(s)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		parts = append(parts, string(runes[start:i+1]))
		start = j
		i = j - 1
	}
	parts = append(parts, string(runes[start:]))
	return parts
}

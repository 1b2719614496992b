package text

import (
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "Hello world.", "Hello world."},
		{"smart quotes and dash", "“Hello,” she said — quietly.", `"Hello," she said quietly.`},
		{"currency", "Price: $5 today", "Price: dollars-5 today"},
		{"markdown emphasis", "**Bold** and *italic* text", "Bold and italic text"},
		{"markdown link", "[link](http://example.com) here", "link here"},
		{"inline code", "run `make` now", "run make now"},
		{"header", "# Chapter One", "Chapter One"},
		{"spaced ellipsis", "Wait . . . what", "Wait... what"},
		{"loose punctuation", "Hello , world !", "Hello, world!"},
		{"decorative run", "one ---- two", "one two"},
		{"abbreviation period", "Mr. Smith arrived.", "Mr Smith arrived."},
		{"zero width", "a\u200bb", "ab"},
		{"whitespace", "multiple   spaces\n\nand lines", "multiple spaces and lines"},
		{"lone symbol", "cost € only", "cost only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

var cleanSamples = []string{
	"“Hello,” she said — quietly.",
	"Price: $5 today, or €10 tomorrow.",
	"**Bold** and *italic* text with `code`.",
	"# Heading\nSee [the docs](http://example.com) for more.",
	"Wait . . . what ?!",
	"Dr. Jones met Mr. Smith on Baker St. yesterday.",
	"It was 30° outside — 5×5 grid ™.",
	"==== Section ==== one - two - three",
	"Don't stop, don’t ever stop…",
	"a ___ b *** c",
}

func TestCleanIdempotent(t *testing.T) {
	for _, s := range cleanSamples {
		once := Clean(s)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestCleanKeepsWordCount(t *testing.T) {
	for _, s := range cleanSamples {
		before := HighlightableWords(s)
		after := HighlightableWords(Clean(s))
		if len(before) != len(after) {
			t.Errorf("Expected %d words after cleaning %q, got %d (%q)", len(before), s, len(after), after)
		}
	}
}

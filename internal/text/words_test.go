package text

import "testing"

func TestHighlightableWords(t *testing.T) {
	got := HighlightableWords("Hello , world ... 42! -- ok")
	expected := []string{"Hello", "world", "42!", "ok"}
	if len(got) != len(expected) {
		t.Fatalf("Expected %d words, got %d: %q", len(expected), len(got), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Word %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestTokens(t *testing.T) {
	tokens := Tokens("Hi - there !")
	expected := []Token{
		{Text: "Hi", Highlightable: true, Index: 0},
		{Text: "-", Highlightable: false, Index: -1},
		{Text: "there", Highlightable: true, Index: 1},
		{Text: "!", Highlightable: false, Index: -1},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("Token %d: expected %+v, got %+v", i, expected[i], tokens[i])
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello,", "hello"},
		{"Don't", "dont"},
		{"...", ""},
		{"Café!", "café"},
		{"42nd", "42nd"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.input); got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

package ui

import (
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/reader"
)

var ansiSeq = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripANSI(s string) string { return ansiSeq.ReplaceAllString(s, "") }

func testModel() *position.Model {
	return position.NewModel([][]string{
		{"One two three. Four five.", "Second paragraph here."},
		{"Chapter two text."},
	}, nil)
}

func withColor(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })
}

func TestDocumentLayout(t *testing.T) {
	doc := newDocument(testModel(), 80)

	tests := []struct {
		pos  position.Position
		line int
	}{
		{position.Position{Chapter: 0, Paragraph: 0}, 0},
		{position.Position{Chapter: 0, Paragraph: 1}, 2},
		{position.Position{Chapter: 1, Paragraph: 0}, 6},
		{position.Position{Chapter: 5, Paragraph: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.pos.String(), func(t *testing.T) {
			if got := doc.LineOf(tt.pos); got != tt.line {
				t.Errorf("Expected line %d, got %d", tt.line, got)
			}
		})
	}

	lines := strings.Split(stripANSI(doc.Render(reader.State{}, newHighlighter(config.Default().Highlight))), "\n")
	if len(lines) != 7 {
		t.Fatalf("Expected 7 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[2], "Second paragraph here.") {
		t.Errorf("Expected second paragraph on line 2, got %q", lines[2])
	}
	if !strings.Contains(lines[4], "─") {
		t.Errorf("Expected chapter rule on line 4, got %q", lines[4])
	}
	if !strings.Contains(lines[6], "Chapter two text.") {
		t.Errorf("Expected chapter two on line 6, got %q", lines[6])
	}
	if !strings.HasPrefix(lines[0], strings.Repeat(" ", margin)) {
		t.Errorf("Expected text to be indented by %d, got %q", margin, lines[0])
	}
}

func TestDocumentPositionAt(t *testing.T) {
	doc := newDocument(testModel(), 80)

	tests := []struct {
		line int
		want position.Position
	}{
		{0, position.Position{Chapter: 0, Paragraph: 0}},
		{1, position.Position{Chapter: 0, Paragraph: 1}},
		{3, position.Position{Chapter: 1, Paragraph: 0}},
		{100, position.Position{Chapter: 1, Paragraph: 0}},
	}
	for _, tt := range tests {
		if got := doc.PositionAt(tt.line); got != tt.want {
			t.Errorf("Expected %v at line %d, got %v", tt.want, tt.line, got)
		}
	}
}

func TestDocumentWrapsToWidth(t *testing.T) {
	model := position.NewModel([][]string{{
		"The quick brown fox jumps over the lazy dog again and again.",
		"Short one.",
	}}, nil)
	doc := newDocument(model, 24)

	if doc.width != 20 {
		t.Fatalf("Expected text width 20, got %d", doc.width)
	}
	first := doc.blocks[0]
	if first.lines < 3 {
		t.Errorf("Expected the long paragraph to wrap to at least 3 lines, got %d", first.lines)
	}
	if got := doc.LineOf(position.Position{Paragraph: 1}); got != first.lines+1 {
		t.Errorf("Expected second paragraph at line %d, got %d", first.lines+1, got)
	}

	// highlighting must not change the line count
	s := reader.State{Position: position.Position{}, UIPosition: position.Position{}, Playing: true, WordIndex: 3}
	rendered := doc.Render(s, newHighlighter(config.Default().Highlight))
	plain := doc.Render(reader.State{UIPosition: position.Position{Paragraph: 1}}, newHighlighter(config.HighlightConfig{}))
	if strings.Count(rendered, "\n") != strings.Count(plain, "\n") {
		t.Errorf("Expected %d lines, got %d", strings.Count(plain, "\n"), strings.Count(rendered, "\n"))
	}
}

func TestRenderHighlight(t *testing.T) {
	withColor(t)
	doc := newDocument(testModel(), 80)
	cur := position.Position{Chapter: 0, Paragraph: 0, Sentence: 1}

	tests := []struct {
		name     string
		hl       config.HighlightConfig
		state    reader.State
		sentence bool
		word     bool
	}{
		{
			name:     "playing",
			hl:       config.HighlightConfig{Sentence: true, WordMode: config.WordHighlightNormal, Color: "yellow"},
			state:    reader.State{Position: cur, UIPosition: cur, Playing: true, WordIndex: 1},
			sentence: true,
			word:     true,
		},
		{
			name:     "paused",
			hl:       config.HighlightConfig{Sentence: true, WordMode: config.WordHighlightNormal, Color: "yellow"},
			state:    reader.State{Position: cur, UIPosition: cur, Paused: true, WordIndex: -1},
			sentence: true,
		},
		{
			name:  "word only",
			hl:    config.HighlightConfig{WordMode: config.WordHighlightStandout, Color: "cyan"},
			state: reader.State{Position: cur, UIPosition: cur, Playing: true, WordIndex: 1},
			word:  true,
		},
		{
			name:  "scrolled away",
			hl:    config.HighlightConfig{WordMode: config.WordHighlightNormal, Color: "yellow"},
			state: reader.State{Position: position.Position{Chapter: 1}, UIPosition: cur, Playing: true, WordIndex: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHighlighter(tt.hl)
			out := doc.Render(tt.state, h)

			if got := strings.Contains(out, h.sentence.Render("Four")); got != tt.sentence {
				t.Errorf("Expected sentence highlight %v, got %v", tt.sentence, got)
			}
			if got := strings.Contains(out, h.word.Render("five.")); got != tt.word {
				t.Errorf("Expected word highlight %v, got %v", tt.word, got)
			}
			if strings.Contains(out, h.sentence.Render("One")) {
				t.Error("Expected other sentences to stay plain")
			}
			if stripANSI(out) != stripANSI(doc.Render(reader.State{}, newHighlighter(config.HighlightConfig{}))) {
				t.Error("Expected highlighting to keep the text unchanged")
			}
		})
	}
}

func TestHighlightColor(t *testing.T) {
	tests := []struct {
		name string
		want lipgloss.Color
	}{
		{"yellow", "11"},
		{"", "11"},
		{"cyan", "14"},
		{"#FF00FF", "#FF00FF"},
		{"208", "208"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := highlightColor(tt.name); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestIndent(t *testing.T) {
	if got := indent("a\nb", 2); got != "  a\n  b" {
		t.Errorf("Expected indented lines, got %q", got)
	}
	if got := indent("", 2); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

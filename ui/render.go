package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/reader"
	"github.com/lue-reader/lue/internal/text"
)

const (
	maxTextWidth = 100
	margin       = 2
)

// highlighter styles the sentence being read and its current word.
type highlighter struct {
	sentenceOn bool
	wordMode   int
	sentence   lipgloss.Style
	word       lipgloss.Style
}

func newHighlighter(cfg config.HighlightConfig) highlighter {
	color := highlightColor(cfg.Color)
	h := highlighter{
		sentenceOn: cfg.Sentence,
		wordMode:   cfg.WordMode,
		sentence:   lipgloss.NewStyle().Foreground(color),
		word:       lipgloss.NewStyle().Foreground(color).Bold(true).Underline(true),
	}
	if cfg.WordMode == config.WordHighlightStandout {
		h.word = lipgloss.NewStyle().Background(color).Foreground(lipgloss.Color("0")).Bold(true)
	}
	return h
}

// block is one wrapped paragraph of the document.
type block struct {
	chapter   int
	paragraph int
	plain     string
	line      int
	lines     int
}

// document caches the wrapped book for one terminal width. Only the
// paragraph being read is restyled on each update.
type document struct {
	model  *position.Model
	width  int
	blocks []block
	index  map[[2]int]int
	rule   string
	total  int
}

func newDocument(model *position.Model, termWidth int) *document {
	width := max(min(termWidth-2*margin, maxTextWidth), 10)
	d := &document{
		model: model,
		width: width,
		index: make(map[[2]int]int),
		rule:  chapterRuleStyle(strings.Repeat("─", width/runewidth.StringWidth("─"))),
	}

	line := 0
	for c := 0; c < model.Chapters(); c++ {
		if c > 0 {
			// rule plus blank line
			line += 2
		}
		for p := 0; p < model.Paragraphs(c); p++ {
			sentences := model.Sentences(c, p)
			if len(sentences) == 0 {
				continue
			}
			plain := d.wrap(strings.Join(sentences, " "))
			b := block{
				chapter:   c,
				paragraph: p,
				plain:     plain,
				line:      line,
				lines:     strings.Count(plain, "\n") + 1,
			}
			d.index[[2]int{c, p}] = len(d.blocks)
			d.blocks = append(d.blocks, b)
			// paragraph plus blank line
			line += b.lines + 1
		}
	}
	d.total = line
	return d
}

func (d *document) wrap(s string) string {
	return indent(wordwrap.String(s, d.width), margin)
}

// LineOf returns the first line of the paragraph holding pos.
func (d *document) LineOf(pos position.Position) int {
	if i, ok := d.index[[2]int{pos.Chapter, pos.Paragraph}]; ok {
		return d.blocks[i].line
	}
	return 0
}

// PositionAt returns the first sentence of the first paragraph that ends at
// or after line.
func (d *document) PositionAt(line int) position.Position {
	if len(d.blocks) == 0 {
		return position.Position{}
	}
	i := sort.Search(len(d.blocks), func(i int) bool {
		b := d.blocks[i]
		return b.line+b.lines > line
	})
	if i == len(d.blocks) {
		i--
	}
	return position.Position{Chapter: d.blocks[i].chapter, Paragraph: d.blocks[i].paragraph}
}

// Render returns the whole document with the sentence at s.UIPosition
// highlighted.
func (d *document) Render(s reader.State, h highlighter) string {
	var b strings.Builder
	chapter := 0
	for i, blk := range d.blocks {
		for chapter < blk.chapter {
			chapter++
			b.WriteString(indent(d.rule, margin))
			b.WriteString("\n\n")
		}
		if blk.chapter == s.UIPosition.Chapter && blk.paragraph == s.UIPosition.Paragraph {
			b.WriteString(d.highlight(blk, s, h))
		} else {
			b.WriteString(blk.plain)
		}
		if i < len(d.blocks)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// highlight renders the paragraph of blk with the current sentence and
// word styled. Styling does not change the printable width, so the line
// count matches the cached plain text.
func (d *document) highlight(blk block, s reader.State, h highlighter) string {
	sentences := d.model.Sentences(blk.chapter, blk.paragraph)
	current := s.UIPosition.Sentence
	showWord := h.wordMode != config.WordHighlightOff && s.Playing && s.UIPosition == s.Position

	parts := make([]string, 0, len(sentences))
	for i, sentence := range sentences {
		if i != current || (!h.sentenceOn && !showWord) {
			parts = append(parts, sentence)
			continue
		}
		parts = append(parts, styleSentence(sentence, s.WordIndex, showWord, h))
	}
	return d.wrap(strings.Join(parts, " "))
}

func styleSentence(sentence string, wordIndex int, showWord bool, h highlighter) string {
	tokens := text.Tokens(sentence)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		switch {
		case showWord && tok.Highlightable && tok.Index == wordIndex:
			out[i] = h.word.Render(tok.Text)
		case h.sentenceOn:
			out[i] = h.sentence.Render(tok.Text)
		default:
			out[i] = tok.Text
		}
	}
	return strings.Join(out, " ")
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	pad := strings.Repeat(" ", n)
	for i, v := range l {
		l[i] = pad + v
	}
	return strings.Join(l, "\n")
}

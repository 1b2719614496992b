package position

import (
	"github.com/lue-reader/lue/internal/text"
)

// Model holds the sentence structure of a book. Paragraphs are split into
// sentences once at construction; a Model is read-only afterwards and safe
// for concurrent use.
type Model struct {
	chapters  [][]string
	sentences [][][]string

	// offsets[c][p] is the number of sentences before paragraph p of
	// chapter c.
	offsets [][]int
	flat    []Position
	total   int
}

// NewModel splits every paragraph of chapters with splitter. A nil splitter
// uses the default abbreviation list.
func NewModel(chapters [][]string, splitter *text.Splitter) *Model {
	if splitter == nil {
		splitter = text.NewSplitter()
	}

	m := &Model{
		chapters:  chapters,
		sentences: make([][][]string, len(chapters)),
		offsets:   make([][]int, len(chapters)),
	}
	for c, paragraphs := range chapters {
		m.sentences[c] = make([][]string, len(paragraphs))
		m.offsets[c] = make([]int, len(paragraphs))
		for p, paragraph := range paragraphs {
			m.offsets[c][p] = m.total
			var sentences []string
			if paragraph != "" {
				sentences = splitter.Split(paragraph)
			}
			m.sentences[c][p] = sentences
			for s := range sentences {
				m.flat = append(m.flat, Position{c, p, s})
			}
			m.total += len(sentences)
		}
	}
	return m
}

// Chapters returns the number of chapters.
func (m *Model) Chapters() int { return len(m.chapters) }

// Paragraphs returns the number of paragraphs in chapter c.
func (m *Model) Paragraphs(c int) int {
	if c < 0 || c >= len(m.chapters) {
		return 0
	}
	return len(m.chapters[c])
}

// Paragraph returns the text of paragraph p of chapter c.
func (m *Model) Paragraph(c, p int) string {
	if p < 0 || p >= m.Paragraphs(c) {
		return ""
	}
	return m.chapters[c][p]
}

// Sentences returns the cached sentences of a paragraph. The slice must not
// be modified.
func (m *Model) Sentences(c, p int) []string {
	if p < 0 || p >= m.Paragraphs(c) {
		return nil
	}
	return m.sentences[c][p]
}

// Sentence returns the sentence at pos.
func (m *Model) Sentence(pos Position) (string, bool) {
	if !m.Valid(pos) {
		return "", false
	}
	return m.sentences[pos.Chapter][pos.Paragraph][pos.Sentence], true
}

// Total returns the number of sentences in the book.
func (m *Model) Total() int { return m.total }

// Valid reports whether pos addresses an existing sentence.
func (m *Model) Valid(pos Position) bool {
	if pos.Sentence < 0 {
		return false
	}
	return pos.Sentence < len(m.Sentences(pos.Chapter, pos.Paragraph))
}

// First returns the first sentence of the book, or the zero Position for
// an empty book.
func (m *Model) First() Position {
	if m.total == 0 {
		return Position{}
	}
	return m.flat[0]
}

// Last returns the last sentence of the book, or the zero Position for an
// empty book.
func (m *Model) Last() Position {
	if m.total == 0 {
		return Position{}
	}
	return m.flat[m.total-1]
}

// Index returns the number of sentences before pos.
func (m *Model) Index(pos Position) int {
	pos = m.Clamp(pos)
	if m.total == 0 {
		return 0
	}
	return m.offsets[pos.Chapter][pos.Paragraph] + pos.Sentence
}

// At returns the position of the i-th sentence of the book.
func (m *Model) At(i int) (Position, bool) {
	if i < 0 || i >= m.total {
		return Position{}, false
	}
	return m.flat[i], true
}

// Progress returns the share of the book before pos as a percentage.
func (m *Model) Progress(pos Position) float64 {
	if m.total == 0 {
		return 100
	}
	return float64(m.Index(pos)) / float64(m.total) * 100
}

// Clamp returns pos if it is valid, otherwise the nearest valid position at
// or after it, or the last sentence when nothing follows.
func (m *Model) Clamp(pos Position) Position {
	if m.Valid(pos) || m.total == 0 {
		return pos
	}
	if pos.Chapter < 0 {
		return m.First()
	}
	if pos.Chapter >= len(m.chapters) {
		return m.Last()
	}
	if pos.Paragraph < 0 {
		pos.Paragraph, pos.Sentence = 0, 0
	}
	if n := len(m.Sentences(pos.Chapter, pos.Paragraph)); n > 0 {
		if pos.Sentence < 0 {
			return Position{pos.Chapter, pos.Paragraph, 0}
		}
		return Position{pos.Chapter, pos.Paragraph, n - 1}
	}
	if next, ok := m.nextParagraph(pos.Chapter, pos.Paragraph); ok {
		return next
	}
	return m.Last()
}

// Advance moves forward one sentence, or to the first sentence of the next
// paragraph, skipping paragraphs without sentences. Past the end it returns
// the first sentence when wrap is set, and false otherwise.
func (m *Model) Advance(pos Position, g Granularity, wrap bool) (Position, bool) {
	if m.total == 0 {
		return Position{}, false
	}

	c, p, s := max(pos.Chapter, 0), max(pos.Paragraph, 0), max(pos.Sentence, 0)
	if g == Paragraph {
		p, s = p+1, 0
	} else {
		s++
	}

	for c < len(m.sentences) {
		if p < len(m.sentences[c]) {
			if s < len(m.sentences[c][p]) {
				return Position{c, p, s}, true
			}
			p, s = p+1, 0
		} else {
			c, p, s = c+1, 0, 0
		}
	}

	if wrap {
		return m.First(), true
	}
	return Position{}, false
}

// Rewind moves back one sentence, or to the first sentence of the previous
// paragraph, skipping paragraphs without sentences. Unlike Advance it always
// wraps: before the start it returns the last sentence of the book.
func (m *Model) Rewind(pos Position, g Granularity) Position {
	if m.total == 0 {
		return Position{}
	}

	c, p := pos.Chapter, pos.Paragraph
	if c >= len(m.sentences) {
		c, p = len(m.sentences), 0
	}

	if g == Sentence && pos.Sentence > 0 {
		if n := len(m.Sentences(c, p)); n > 0 {
			return Position{c, p, min(pos.Sentence-1, n-1)}
		}
	}

	pc, pp, ok := m.prevParagraph(c, p)
	if !ok {
		return m.Last()
	}
	if g == Paragraph {
		return Position{pc, pp, 0}
	}
	return Position{pc, pp, len(m.sentences[pc][pp]) - 1}
}

// nextParagraph returns the first sentence of the first non-empty paragraph
// at or after (c, p).
func (m *Model) nextParagraph(c, p int) (Position, bool) {
	for ; c < len(m.sentences); c, p = c+1, 0 {
		for ; p < len(m.sentences[c]); p++ {
			if len(m.sentences[c][p]) > 0 {
				return Position{c, p, 0}, true
			}
		}
	}
	return Position{}, false
}

// prevParagraph returns the last non-empty paragraph strictly before
// (c, p).
func (m *Model) prevParagraph(c, p int) (int, int, bool) {
	if c >= len(m.sentences) {
		c = len(m.sentences) - 1
		p = len(m.sentences[c])
	}
	p--
	for c >= 0 {
		if p >= len(m.sentences[c]) {
			p = len(m.sentences[c]) - 1
		}
		for ; p >= 0; p-- {
			if len(m.sentences[c][p]) > 0 {
				return c, p, true
			}
		}
		c--
		if c >= 0 {
			p = len(m.sentences[c]) - 1
		}
	}
	return 0, 0, false
}

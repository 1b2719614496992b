// Package position models reading positions in a book as chapter,
// paragraph and sentence indices and walks them forward and backward.
package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPosition is returned when a position string cannot be parsed.
var ErrInvalidPosition = errors.New("invalid position")

// Position is a (chapter, paragraph, sentence) triple. Positions are
// ordered lexicographically.
type Position struct {
	Chapter   int
	Paragraph int
	Sentence  int
}

// Compare returns -1, 0 or 1 depending on whether p sorts before, equal to
// or after o.
func (p Position) Compare(o Position) int {
	switch {
	case p.Chapter != o.Chapter:
		return cmpInt(p.Chapter, o.Chapter)
	case p.Paragraph != o.Paragraph:
		return cmpInt(p.Paragraph, o.Paragraph)
	default:
		return cmpInt(p.Sentence, o.Sentence)
	}
}

// Less reports whether p sorts before o.
func (p Position) Less(o Position) bool {
	return p.Compare(o) < 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Chapter, p.Paragraph, p.Sentence)
}

// Parse reads a position in "chapter:paragraph:sentence" form.
func Parse(s string) (Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	var v [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
		}
		v[i] = n
	}
	return Position{Chapter: v[0], Paragraph: v[1], Sentence: v[2]}, nil
}

// Granularity is the unit of a navigation step.
type Granularity int

const (
	Sentence Granularity = iota
	Paragraph
)

func (g Granularity) String() string {
	switch g {
	case Sentence:
		return "sentence"
	case Paragraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

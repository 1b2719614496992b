package position

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Match is a sentence found by Search.
type Match struct {
	Position       Position
	Text           string
	Score          int
	MatchedIndexes []int
}

// sentenceSource adapts a Model to fuzzy.Source.
type sentenceSource struct {
	m *Model
}

func (s sentenceSource) String(i int) string {
	pos := s.m.flat[i]
	return s.m.sentences[pos.Chapter][pos.Paragraph][pos.Sentence]
}

func (s sentenceSource) Len() int {
	return s.m.total
}

// Search fuzzy-matches query against every sentence of the book and returns
// up to limit matches, best first. A non-positive limit returns all matches.
func (m *Model) Search(query string, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || m.total == 0 {
		return nil
	}

	found := fuzzy.FindFrom(query, sentenceSource{m})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	matches := make([]Match, len(found))
	for i, f := range found {
		matches[i] = Match{
			Position:       m.flat[f.Index],
			Text:           f.Str,
			Score:          f.Score,
			MatchedIndexes: f.MatchedIndexes,
		}
	}
	return matches
}

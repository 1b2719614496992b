package timing

import (
	"strings"

	"github.com/lue-reader/lue/internal/text"
)

// Match scores between an original word and a word reported by the speech
// engine, both sanitized. Only their ordering matters.
const (
	ScoreExact            = 100
	ScoreContainsOriginal = 80
	ScoreContainsTTS      = 60
	ScoreSimilar          = 40
)

const (
	// lookAhead is the number of timing entries considered from the cursor.
	lookAhead = 5

	// maxAdvance is the farthest match that still moves the cursor.
	maxAdvance = 2

	similarPrefix  = 3
	similarLenDiff = 2
)

// Score rates how well the sanitized original word matches the sanitized
// engine word. It returns 0 when they are unrelated.
func Score(original, spoken string) int {
	if original == "" || spoken == "" {
		return 0
	}
	switch {
	case original == spoken:
		return ScoreExact
	case strings.Contains(spoken, original):
		return ScoreContainsOriginal
	case strings.Contains(original, spoken):
		return ScoreContainsTTS
	case similar(original, spoken):
		return ScoreSimilar
	}
	return 0
}

func similar(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < similarPrefix || len(rb) < similarPrefix {
		return false
	}
	diff := len(ra) - len(rb)
	if diff < 0 {
		diff = -diff
	}
	return diff <= similarLenDiff && string(ra[:similarPrefix]) == string(rb[:similarPrefix])
}

// Align maps each original word to the index of the timing entry that
// speaks it. The result has one entry per original word. One timing entry
// may cover several original words ("Chapter 1" spoken as one token) and
// original words may skip entries the engine inserted.
//
// Align returns nil when timings is empty.
func Align(original []string, timings []WordTiming) []int {
	if len(timings) == 0 {
		return nil
	}
	mapping := make([]int, len(original))
	if len(original) == len(timings) {
		for i := range mapping {
			mapping[i] = i
		}
		return mapping
	}

	spoken := make([]string, len(timings))
	for i, t := range timings {
		spoken[i] = text.Sanitize(t.Word)
	}

	last := len(timings) - 1
	cursor := 0
	for i, word := range original {
		clean := text.Sanitize(word)
		if clean == "" {
			if i > 0 {
				mapping[i] = mapping[i-1]
			}
			continue
		}
		if cursor > last {
			mapping[i] = last
			continue
		}

		best, bestScore := cursor, 0
		for j := cursor; j <= last && j < cursor+lookAhead; j++ {
			if s := Score(clean, spoken[j]); s > bestScore {
				best, bestScore = j, s
			}
		}

		if bestScore == 0 {
			mapping[i] = cursor
			cursor++
			continue
		}

		mapping[i] = best
		if best-cursor > maxAdvance {
			continue
		}
		cursor = best + 1
		if bestScore == ScoreContainsOriginal && i+1 < len(original) {
			next := text.Sanitize(original[i+1])
			if next != "" && strings.Contains(spoken[best], next) {
				cursor = best
			}
		}
	}
	return mapping
}

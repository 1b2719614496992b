package timing

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeStart  = errors.New("word starts before zero")
	ErrEndBeforeStart = errors.New("word ends before it starts")
	ErrNotContiguous  = errors.New("word timings are not contiguous")
	ErrMappingLength  = errors.New("word mapping length does not match word count")
	ErrMappingIndex   = errors.New("word mapping index out of range")
	ErrNonFinite      = errors.New("timing value is not finite")
)

// Validate checks the invariants of a bundle. wordCount is the number of
// highlightable words in the original text; a negative value skips the
// mapping length check.
func Validate(b Bundle, wordCount int) error {
	if !finite(b.SpeechDuration) || !finite(b.TotalDuration) {
		return fmt.Errorf("durations: %w", ErrNonFinite)
	}

	for i, t := range b.WordTimings {
		if !finite(t.Start) || !finite(t.End) {
			return fmt.Errorf("word %d: %w", i, ErrNonFinite)
		}
		if t.Start < 0 {
			return fmt.Errorf("word %d: %w", i, ErrNegativeStart)
		}
		if t.End < t.Start {
			return fmt.Errorf("word %d: %w", i, ErrEndBeforeStart)
		}
		if i > 0 && b.WordTimings[i-1].End != t.Start {
			return fmt.Errorf("word %d: %w", i, ErrNotContiguous)
		}
	}

	if len(b.WordTimings) == 0 {
		if len(b.WordMapping) > 0 {
			return fmt.Errorf("mapping without timings: %w", ErrMappingIndex)
		}
		return nil
	}

	if wordCount >= 0 && len(b.WordMapping) != wordCount {
		return fmt.Errorf("%d entries for %d words: %w", len(b.WordMapping), wordCount, ErrMappingLength)
	}
	for i, idx := range b.WordMapping {
		if idx < 0 || idx >= len(b.WordTimings) {
			return fmt.Errorf("word %d maps to %d: %w", i, idx, ErrMappingIndex)
		}
	}
	return nil
}

package timing

import "github.com/lue-reader/lue/internal/text"

// Estimate spreads total seconds evenly over the highlightable words of
// original. A non-positive total is replaced by DefaultWordSeconds per word.
func Estimate(original string, total float64) Bundle {
	words := text.HighlightableWords(original)
	n := len(words)
	if !finite(total) || total < 0 {
		total = 0
	}
	if n == 0 {
		return Bundle{SpeechDuration: total, TotalDuration: total}
	}
	if total == 0 {
		total = float64(n) * DefaultWordSeconds
	}

	per := total / float64(n)
	timings := make([]WordTiming, n)
	mapping := make([]int, n)
	for i, w := range words {
		timings[i] = WordTiming{
			Word:  w,
			Start: float64(i) * per,
			End:   float64(i+1) * per,
		}
		mapping[i] = i
	}
	timings[n-1].End = total

	return Bundle{
		WordTimings:    timings,
		SpeechDuration: total,
		TotalDuration:  total,
		WordMapping:    mapping,
	}
}

package timing

import (
	"github.com/charmbracelet/log"

	"github.com/lue-reader/lue/internal/text"
)

// Reconcile builds the timing bundle for a sentence from the raw word
// boundaries reported by a speech engine. totalDuration is the length of
// the audio, or a non-positive value when unknown.
//
// Without raw timings the words are spread evenly over the duration. With
// them, the timings are repaired into a contiguous list and aligned with
// the highlightable words of original. Reconcile never fails: malformed
// results and internal errors fall back to Estimate.
func Reconcile(original string, raw []WordTiming, totalDuration float64) (b Bundle) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("timing reconciliation failed", "panic", r)
			b = Estimate(original, 0)
		}
	}()

	if !finite(totalDuration) || totalDuration < 0 {
		totalDuration = 0
	}

	words := text.HighlightableWords(original)
	if len(raw) == 0 {
		b = Estimate(original, totalDuration)
	} else {
		timings := Repair(raw)
		b = Bundle{
			WordTimings:    timings,
			SpeechDuration: SpeechDuration(timings),
			WordMapping:    Align(words, timings),
		}
		b.TotalDuration = b.SpeechDuration
		if totalDuration > 0 {
			b.TotalDuration = totalDuration
		}
	}

	if err := Validate(b, len(words)); err != nil {
		log.Warn("discarding invalid word timings", "err", err, "words", len(words), "raw", len(raw))
		return Estimate(original, 0)
	}
	return b
}

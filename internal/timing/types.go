// Package timing turns word boundaries reported by a speech engine into
// contiguous per-word timing aligned with the words of the original text.
package timing

import "math"

const (
	// DefaultWordSeconds is the per-word estimate used when the audio
	// duration is unknown.
	DefaultWordSeconds = 0.3

	// MinWindow is the smallest window given to a word whose reported end
	// precedes its start.
	MinWindow = 0.05
)

// WordTiming is a spoken word with its start and end offsets in seconds.
type WordTiming struct {
	Word  string
	Start float64
	End   float64
}

// Duration returns the length of the word's window.
func (w WordTiming) Duration() float64 {
	return w.End - w.Start
}

// Bundle is the timing information for one sentence.
type Bundle struct {
	// WordTimings is contiguous: each entry ends where the next one starts.
	WordTimings []WordTiming

	// SpeechDuration is the end of the last spoken word.
	SpeechDuration float64

	// TotalDuration is the length of the audio, which may include trailing
	// silence after SpeechDuration.
	TotalDuration float64

	// WordMapping maps the index of each highlightable word of the original
	// text to an index into WordTimings.
	WordMapping []int
}

// Empty reports whether the bundle carries no word timings.
func (b Bundle) Empty() bool {
	return len(b.WordTimings) == 0
}

// Clone returns a deep copy of b.
func (b Bundle) Clone() Bundle {
	c := b
	if b.WordTimings != nil {
		c.WordTimings = append([]WordTiming(nil), b.WordTimings...)
	}
	if b.WordMapping != nil {
		c.WordMapping = append([]int(nil), b.WordMapping...)
	}
	return c
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

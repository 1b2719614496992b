package reader

import (
	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/timing"
)

// State is a snapshot of the reader for renderers. It is a copy; changing
// it has no effect on the controller.
type State struct {
	// Position is where reading resumes and what navigation moves.
	Position position.Position
	// UIPosition is the sentence shown as being read. It follows Position
	// except while the view is scrolled away with ScrollTo.
	UIPosition position.Position
	// WordIndex is the highlighted word of the sentence at Position, or -1.
	WordIndex int

	Paused   bool
	TextOnly bool
	// Playing is set between a sentence starting and playback finishing.
	Playing bool
	Speed   float64
	Timing  timing.Bundle
	// Progress is the percentage of the book before Position.
	Progress float64
	// Err is the last error worth showing, such as a failed backend.
	Err string
}

func (s State) clone() State {
	s.Timing = s.Timing.Clone()
	return s
}

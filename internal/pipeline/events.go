package pipeline

import (
	"time"

	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/timing"
)

// EventKind identifies what an Event reports. Position and word changes
// are not pipeline events: the reader derives them and publishes them as
// State updates.
type EventKind int

const (
	// SentenceStarted is published by the player right before audio for a
	// sentence starts.
	SentenceStarted EventKind = iota + 1
	// PlaybackFinished is published when the last sentence of the book has
	// played.
	PlaybackFinished
)

func (k EventKind) String() string {
	switch k {
	case SentenceStarted:
		return "sentence-started"
	case PlaybackFinished:
		return "playback-finished"
	default:
		return "unknown"
	}
}

// Event is a notification from the pipeline. RunID identifies the
// activation that produced it so stale events can be dropped.
type Event struct {
	Kind     EventKind
	RunID    string
	Position position.Position
	// Sentences is how many sentences from Position the audio covers.
	// Timing maps the words of all of them.
	Sentences int
	Duration  float64
	Timing    timing.Bundle
	StartedAt time.Time
}

// Item is one synthesized sentence waiting to be played. The file at Path
// belongs to whoever holds the Item; the player deletes it after playback.
type Item struct {
	Path     string
	Position position.Position
	// Sentences is how many sentences the item covers; merged fragments
	// cover two.
	Sentences int
	Text      string
	Duration  float64
	Timing    timing.Bundle

	// claim is the buffer slot generation backing Path.
	claim uint64
}

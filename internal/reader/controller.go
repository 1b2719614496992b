// Package reader drives a reading session. The Controller owns the reading
// position and decides when the audio pipeline has to be restarted.
package reader

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lue-reader/lue/internal/pipeline"
	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/text"
	"github.com/lue-reader/lue/internal/timing"
)

const (
	// ClockInterval is how often the highlighted word is recomputed.
	ClockInterval = 50 * time.Millisecond
	// DefaultDebounce is the pause between stopping and restarting the
	// pipeline.
	DefaultDebounce = 100 * time.Millisecond
)

// Pipeline is the part of *pipeline.Pipeline the controller drives.
type Pipeline interface {
	Start(ctx context.Context, from position.Position) error
	Stop(ctx context.Context)
	SetSpeed(speed float64)
	RunID() string
	Events() <-chan pipeline.Event
}

// Options configures a Controller.
type Options struct {
	Model *position.Model
	// Pipeline plays the book. Nil runs the reader in text-only mode.
	Pipeline Pipeline
	Start    position.Position
	Speed    float64
	// Paused starts the session without playback.
	Paused   bool
	Debounce time.Duration
	// Err is shown in the status when the speech backend failed to start.
	Err error
}

// Controller serializes every change to the reading state. Commands and
// pipeline events are handled on the goroutine running Run.
type Controller struct {
	model       *position.Model
	pipe        Pipeline
	debounce    time.Duration
	restartWait time.Duration
	logger      *log.Logger

	commands chan command
	updates  chan State
	done     chan struct{}

	// Loop state, written only by Run.
	state State
	speed *SpeedController
	// span is the playing audio: its first sentence and the highlightable
	// word count of each sentence it covers.
	span      position.Position
	spanWords []int
	words     int
	startedAt time.Time
	finishing bool

	snapMu   sync.RWMutex
	snapshot State

	// target is what the next restart starts from; activeRun is the
	// activation whose events are accepted.
	targetMu  sync.Mutex
	target    position.Position
	paused    bool
	activeRun string

	restartMu     sync.Mutex
	restartCancel context.CancelFunc
	restartDone   chan struct{}
	restarts      sync.WaitGroup
}

// New creates a controller positioned at opts.Start.
func New(opts Options) *Controller {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	c := &Controller{
		model:       opts.Model,
		pipe:        opts.Pipeline,
		debounce:    debounce,
		restartWait: defaultRestartWait,
		logger:      log.WithPrefix("reader"),
		commands:    make(chan command),
		updates:     make(chan State, 1),
		done:        make(chan struct{}),
		speed:       NewSpeedController(opts.Speed),
	}

	start := opts.Model.Clamp(opts.Start)
	c.state = State{
		Position:   start,
		UIPosition: start,
		WordIndex:  -1,
		Paused:     opts.Paused || opts.Pipeline == nil,
		TextOnly:   opts.Pipeline == nil,
		Speed:      c.speed.Get(),
		Progress:   opts.Model.Progress(start),
	}
	if opts.Err != nil {
		c.state.Err = opts.Err.Error()
	}
	c.target, c.paused = start, c.state.Paused
	c.snapshot = c.state.clone()
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snapshot.clone()
}

// Updates delivers the latest state after every change. Updates that are
// not read in time are replaced by newer ones.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// Position returns the reading position for persisting progress.
func (c *Controller) Position() position.Position {
	return c.Snapshot().Position
}

// Speed returns the playback speed for persisting progress.
func (c *Controller) Speed() float64 {
	return c.speed.Get()
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run handles commands and pipeline events until Quit, Finish or ctx is
// cancelled. It stops the pipeline before returning.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.shutdown()

	var events <-chan pipeline.Event
	if c.pipe != nil {
		events = c.pipe.Events()
		c.pipe.SetSpeed(c.speed.Get())
		if !c.state.Paused {
			c.restart(ctx)
		}
	}
	c.publish()

	ticker := time.NewTicker(ClockInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd := <-c.commands:
			if quit := c.handle(ctx, cmd); quit {
				return nil
			}

		case ev := <-events:
			if quit := c.handleEvent(ev); quit {
				return nil
			}

		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *Controller) handle(ctx context.Context, cmd command) bool {
	s := &c.state
	switch cmd.kind {
	case cmdNextSentence:
		if next, ok := c.model.Advance(s.Position, position.Sentence, false); ok {
			c.moveTo(ctx, next)
		}
	case cmdNextParagraph:
		if next, ok := c.model.Advance(s.Position, position.Paragraph, false); ok {
			c.moveTo(ctx, next)
		}
	case cmdPrevSentence:
		c.moveTo(ctx, c.model.Rewind(s.Position, position.Sentence))
	case cmdPrevParagraph:
		c.moveTo(ctx, c.model.Rewind(s.Position, position.Paragraph))
	case cmdJump:
		c.moveTo(ctx, c.model.Clamp(cmd.pos))
	case cmdJumpToMatch:
		matches := c.model.Search(cmd.query, 1)
		if len(matches) == 0 {
			c.logger.Debug("no match", "query", cmd.query)
			return false
		}
		c.moveTo(ctx, matches[0].Position)

	case cmdScrollTo:
		s.UIPosition = c.model.Clamp(cmd.pos)
		c.publish()

	case cmdTogglePause:
		if s.TextOnly {
			return false
		}
		s.Paused = !s.Paused
		c.logger.Debug("pause toggled", "paused", s.Paused, "position", s.Position)
		if s.Paused {
			c.clearSentence()
		} else if s.UIPosition != s.Position {
			s.Position = s.UIPosition
			s.Progress = c.model.Progress(s.Position)
		}
		c.restart(ctx)
		c.publish()

	case cmdSpeedUp, cmdSpeedDown:
		old := c.speed.Get()
		if cmd.kind == cmdSpeedUp {
			s.Speed = c.speed.Up()
		} else {
			s.Speed = c.speed.Down()
		}
		if s.Speed == old {
			return false
		}
		if c.pipe != nil {
			c.pipe.SetSpeed(s.Speed)
		}
		if !s.Paused {
			c.restart(ctx)
		}
		c.publish()

	case cmdFinish:
		if s.Paused || s.TextOnly {
			return true
		}
		c.finishing = true

	case cmdQuit:
		return true
	}
	return false
}

// moveTo sets a new reading position and restarts playback from it.
func (c *Controller) moveTo(ctx context.Context, pos position.Position) {
	s := &c.state
	s.Position, s.UIPosition = pos, pos
	s.Progress = c.model.Progress(pos)
	c.clearSentence()
	if !s.Paused {
		c.restart(ctx)
	}
	c.publish()
}

func (c *Controller) handleEvent(ev pipeline.Event) bool {
	c.targetMu.Lock()
	active := c.activeRun
	c.targetMu.Unlock()
	if ev.RunID != active || c.state.Paused {
		c.logger.Debug("dropping stale event", "kind", ev.Kind, "run", ev.RunID)
		return false
	}

	s := &c.state
	switch ev.Kind {
	case pipeline.SentenceStarted:
		s.Position, s.UIPosition = ev.Position, ev.Position
		s.Progress = c.model.Progress(ev.Position)
		s.Timing = ev.Timing
		s.Playing = true
		s.WordIndex = 0
		c.startedAt = ev.StartedAt
		c.setSpan(ev.Position, ev.Sentences)
		c.publish()

	case pipeline.PlaybackFinished:
		c.logger.Info("reached the end of the book")
		c.clearSentence()
		s.Paused = true
		c.targetMu.Lock()
		c.paused = true
		c.targetMu.Unlock()
		c.publish()
		return c.finishing
	}
	return false
}

// tick advances the word highlight of the playing sentence.
func (c *Controller) tick() {
	s := &c.state
	if !s.Playing || s.Paused || c.words == 0 {
		return
	}
	elapsed := time.Since(c.startedAt).Seconds() * s.Speed
	i := timing.WordIndexAt(s.Timing, elapsed, c.words)
	pos := c.span
	for _, n := range c.spanWords[:len(c.spanWords)-1] {
		if i < n {
			break
		}
		i -= n
		pos.Sentence++
	}
	if i == s.WordIndex && pos == s.Position {
		return
	}
	if pos != s.Position {
		s.Position, s.UIPosition = pos, pos
		s.Progress = c.model.Progress(pos)
	}
	s.WordIndex = i
	c.publish()
}

// setSpan records the sentences covered by audio starting at pos. Merged
// fragments cover more than one sentence of the same paragraph.
func (c *Controller) setSpan(pos position.Position, sentences int) {
	c.span = pos
	c.spanWords = c.spanWords[:0]
	c.words = 0
	for i := 0; i < max(sentences, 1); i++ {
		next := position.Position{Chapter: pos.Chapter, Paragraph: pos.Paragraph, Sentence: pos.Sentence + i}
		sentence, ok := c.model.Sentence(next)
		if !ok {
			break
		}
		n := len(text.HighlightableWords(sentence))
		c.spanWords = append(c.spanWords, n)
		c.words += n
	}
}

func (c *Controller) clearSentence() {
	c.state.Playing = false
	c.state.WordIndex = -1
	c.state.Timing = timing.Bundle{}
	c.spanWords = c.spanWords[:0]
	c.words = 0
}

// publish stores a snapshot and offers it on the updates channel,
// replacing an unread update.
func (c *Controller) publish() {
	snap := c.state.clone()
	c.snapMu.Lock()
	c.snapshot = snap
	c.snapMu.Unlock()

	select {
	case c.updates <- snap:
	default:
		select {
		case <-c.updates:
		default:
		}
		select {
		case c.updates <- snap:
		default:
		}
	}
}

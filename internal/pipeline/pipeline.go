// Package pipeline synthesizes sentences ahead of playback and plays them
// in order. A producer goroutine writes audio into rotating buffer files
// and queues them on a bounded channel; a player goroutine launches
// playback and publishes a SentenceStarted event for each sentence.
//
// Pausing is a full Stop followed by Start at the current position: all
// queued and in-flight audio is discarded and the sentence starts over.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lue-reader/lue/internal/audio"
	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/text"
	"github.com/lue-reader/lue/internal/tts"
)

// Timeouts of the stop protocol.
const (
	stopWait    = 2 * time.Second
	minSleep    = 100 * time.Millisecond
	eventBuffer = 32
)

// Options configures a Pipeline.
type Options struct {
	Capability tts.Capability
	Prober     audio.Prober
	Launcher   audio.Launcher
	Slots      *audio.Slots
	Tracker    *audio.Tracker
	Model      *position.Model
	// Splitter recognizes abbreviation fragments to merge with the next
	// sentence; nil uses the default abbreviations.
	Splitter *text.Splitter

	QueueSize int
	// Overlap is the base overlap in seconds at 1.0x; backends may
	// override it.
	Overlap float64
	// Backoff is the delay before retrying a sentence that failed.
	Backoff time.Duration
	Speed   float64
	// Settle is the pause between stopping players and clearing buffers.
	Settle time.Duration
	// KillStrays, when set, is called during Stop to kill players that
	// escaped tracking.
	KillStrays func(ctx context.Context)
}

// ApplyConfig fills the tuning fields from the audio configuration.
func (o *Options) ApplyConfig(cfg config.AudioConfig) {
	o.QueueSize = cfg.QueueSize
	o.Overlap = cfg.Overlap
	o.Backoff = cfg.Backoff
}

// Pipeline runs one producer/player pair at a time.
type Pipeline struct {
	opts    Options
	overlap float64
	logger  *log.Logger
	events  chan Event

	mu    sync.Mutex
	sm    *stateMachine
	speed float64
	run   *activation
}

type activation struct {
	id     string
	speed  float64
	queue  chan Item
	cancel context.CancelFunc
	done   chan struct{}
}

// New validates opts and creates an idle pipeline.
func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Capability == nil:
		return nil, errors.New("pipeline needs a TTS capability")
	case opts.Prober == nil || opts.Launcher == nil:
		return nil, errors.New("pipeline needs a prober and a launcher")
	case opts.Slots == nil || opts.Tracker == nil || opts.Model == nil:
		return nil, errors.New("pipeline needs buffer slots, a tracker and a model")
	case opts.QueueSize < 1:
		return nil, errors.New("queue size must be at least 1")
	case opts.Slots.Len() < audio.MinSlots(opts.QueueSize):
		return nil, fmt.Errorf("need at least %d buffer slots for a queue of %d", audio.MinSlots(opts.QueueSize), opts.QueueSize)
	}
	if opts.Speed <= 0 {
		opts.Speed = 1.0
	}
	if opts.Splitter == nil {
		opts.Splitter = text.NewSplitter()
	}
	if opts.Settle <= 0 {
		opts.Settle = minSleep
	}

	p := &Pipeline{
		opts:    opts,
		overlap: tts.OverlapFor(opts.Capability, opts.Overlap),
		logger:  log.WithPrefix("pipeline"),
		events:  make(chan Event, eventBuffer),
		sm:      newStateMachine(),
		speed:   opts.Speed,
	}
	p.sm.OnEnter(StateIdle, func() { p.logger.Debug("idle") })
	return p, nil
}

// Events delivers SentenceStarted and PlaybackFinished events from every
// activation.
func (p *Pipeline) Events() <-chan Event {
	return p.events
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sm.Current()
}

// RunID returns the ID of the running activation, or "" when idle.
func (p *Pipeline) RunID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run == nil {
		return ""
	}
	return p.run.id
}

// SetSpeed sets the playback speed used by the next activation.
func (p *Pipeline) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	p.mu.Lock()
	p.speed = speed
	p.mu.Unlock()
}

// Start spawns a producer and player reading from the given position. It
// returns ErrStateTransition unless the pipeline is idle.
func (p *Pipeline) Start(ctx context.Context, from position.Position) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.sm.Transition(StateRunning); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &activation{
		id:     uuid.NewString(),
		speed:  p.speed,
		queue:  make(chan Item, p.opts.QueueSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.run = r
	p.opts.Slots.Reset()
	p.logger.Debug("starting", "run", r.id, "position", from, "speed", r.speed)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		p.produce(gctx, r, from)
		return nil
	})
	g.Go(func() error {
		p.play(gctx, r)
		return nil
	})

	go func() {
		_ = g.Wait()
		close(r.done)
		p.finish(r)
	}()
	return nil
}

// finish returns a naturally ended activation to idle.
func (p *Pipeline) finish(r *activation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run != r || p.sm.Current() != StateRunning {
		return
	}
	r.cancel()
	_ = p.sm.Transition(StateDraining)
	_ = p.sm.Transition(StateIdle)
	p.run = nil
}

// Stop tears down the running activation: it cancels the producer and
// player, stops every playback process, discards queued items and clears
// the buffer files. Stopping an idle pipeline does nothing.
func (p *Pipeline) Stop(ctx context.Context) {
	p.mu.Lock()
	r := p.run
	if r == nil || p.sm.Current() != StateRunning {
		p.mu.Unlock()
		return
	}
	_ = p.sm.Transition(StateDraining)
	p.mu.Unlock()

	r.cancel()
	wait := time.NewTimer(stopWait)
	select {
	case <-r.done:
	case <-wait.C:
		p.logger.Warn("producer or player did not stop in time", "run", r.id)
	}
	wait.Stop()

	p.opts.Tracker.StopAll(ctx)
	if p.opts.KillStrays != nil {
		p.opts.KillStrays(ctx)
	}
	p.drain(r)

	settle := time.NewTimer(p.opts.Settle)
	select {
	case <-settle.C:
	case <-ctx.Done():
	}
	settle.Stop()
	p.opts.Slots.Clear(ctx)

	p.mu.Lock()
	_ = p.sm.Transition(StateIdle)
	p.run = nil
	p.mu.Unlock()
	p.logger.Debug("stopped", "run", r.id)
}

// drain removes the files of items left in the queue.
func (p *Pipeline) drain(r *activation) {
	for {
		select {
		case item, ok := <-r.queue:
			if !ok {
				return
			}
			p.opts.Slots.Release(item.Path, item.claim)
		default:
			return
		}
	}
}

// emit publishes ev unless ctx is cancelled first.
func (p *Pipeline) emit(ctx context.Context, ev Event) bool {
	select {
	case p.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

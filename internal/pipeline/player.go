package pipeline

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/lue-reader/lue/internal/audio"
)

// play launches each queued item in order. It starts the next sentence
// before the previous one has finished by the speed-adjusted overlap.
func (p *Pipeline) play(ctx context.Context, r *activation) {
	var wg sync.WaitGroup
	defer wg.Wait()
	defer p.opts.Tracker.StopAll(context.WithoutCancel(ctx))

	overlap := audio.Overlap(p.overlap, r.speed)
	for {
		var item Item
		var ok bool
		select {
		case item, ok = <-r.queue:
		case <-ctx.Done():
			return
		}
		if !ok {
			wg.Wait()
			if ctx.Err() == nil {
				p.logger.Debug("playback finished", "run", r.id)
				p.emit(ctx, Event{Kind: PlaybackFinished, RunID: r.id})
			}
			return
		}

		if _, err := os.Stat(item.Path); err != nil || item.Duration <= 0 {
			p.logger.Warn("skipping unplayable item", "file", item.Path, "duration", item.Duration)
			p.opts.Slots.Release(item.Path, item.claim)
			continue
		}

		started := time.Now()
		if !p.emit(ctx, Event{
			Kind:      SentenceStarted,
			RunID:     r.id,
			Position:  item.Position,
			Sentences: item.Sentences,
			Duration:  item.Duration,
			Timing:    item.Timing,
			StartedAt: started,
		}) {
			p.opts.Slots.Release(item.Path, item.claim)
			return
		}

		p.logger.Debug("playing", "run", r.id, "position", item.Position, "sentences", item.Sentences, "text", item.Text)
		proc, err := p.opts.Launcher.Start(ctx, item.Path, r.speed)
		if err != nil {
			p.logger.Error("could not start playback", "file", item.Path, "err", err)
			p.opts.Slots.Release(item.Path, item.claim)
			continue
		}
		p.opts.Tracker.Add(proc)

		wg.Add(1)
		go func(item Item) {
			defer wg.Done()
			_ = proc.Wait()
			p.opts.Tracker.Remove(proc)
			p.opts.Slots.Release(item.Path, item.claim)
		}(item)

		wait := time.Duration((item.Duration/r.speed - overlap) * float64(time.Second))
		if !sleep(ctx, max(wait, minSleep)) {
			return
		}
	}
}

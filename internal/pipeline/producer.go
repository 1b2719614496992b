package pipeline

import (
	"context"
	"strings"

	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/internal/text"
	"github.com/lue-reader/lue/internal/tts"
)

// produce synthesizes sentences from pos onward into the activation queue.
// Closing the queue tells the player there is nothing more to play.
func (p *Pipeline) produce(ctx context.Context, r *activation, pos position.Position) {
	defer close(r.queue)

	ext := p.opts.Capability.OutputFormat()
	for {
		if ctx.Err() != nil {
			return
		}
		sentence, ok := p.opts.Model.Sentence(pos)
		if !ok {
			p.logger.Debug("producer reached the end", "run", r.id)
			return
		}

		count := 1
		if p.opts.Splitter.IsAbbreviationFragment(sentence) {
			next := position.Position{Chapter: pos.Chapter, Paragraph: pos.Paragraph, Sentence: pos.Sentence + 1}
			if following, ok := p.opts.Model.Sentence(next); ok {
				sentence = sentence + " " + following
				count = 2
			}
		}

		spoken := text.Clean(sentence)
		if strings.TrimSpace(sentence) == "" || spoken == "" {
			p.logger.Debug("skipping unspeakable sentence", "position", pos)
			if pos, ok = p.advance(pos, count); !ok {
				return
			}
			continue
		}

		item, ok := p.synthesize(ctx, r, pos, spoken, ext)
		if !ok {
			return
		}
		item.Sentences = count
		if !p.enqueue(ctx, r, item) {
			p.opts.Slots.Release(item.Path, item.claim)
			return
		}

		if pos, ok = p.advance(pos, count); !ok {
			return
		}
	}
}

// synthesize generates audio for one sentence, retrying after a backoff
// until it succeeds or ctx is cancelled.
func (p *Pipeline) synthesize(ctx context.Context, r *activation, pos position.Position, spoken, ext string) (Item, bool) {
	for attempt := 1; ; attempt++ {
		path, claim := p.opts.Slots.Claim(ext)

		err := p.opts.Capability.GenerateAudio(ctx, spoken, path)
		if err != nil {
			p.opts.Slots.Release(path, claim)
			if ctx.Err() != nil {
				return Item{}, false
			}
			p.logger.Error("speech generation failed", "run", r.id, "position", pos, "attempt", attempt, "err", err)
			if !sleep(ctx, p.opts.Backoff) {
				return Item{}, false
			}
			continue
		}

		duration, err := p.opts.Prober.Duration(ctx, path)
		if err != nil {
			p.logger.Warn("could not measure audio, using timing estimate", "file", path, "err", err)
			duration = 0
		}
		bundle := tts.ReconcileWithFallback(ctx, p.opts.Capability, spoken, path, duration)
		if duration <= 0 {
			duration = bundle.TotalDuration
		}

		return Item{
			Path:     path,
			Position: pos,
			Text:     spoken,
			Duration: duration,
			Timing:   bundle,
			claim:    claim,
		}, true
	}
}

// enqueue hands item to the player, blocking while the queue is full.
func (p *Pipeline) enqueue(ctx context.Context, r *activation, item Item) bool {
	select {
	case r.queue <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

// advance moves past n sentences without wrapping.
func (p *Pipeline) advance(pos position.Position, n int) (position.Position, bool) {
	ok := true
	for i := 0; i < n && ok; i++ {
		pos, ok = p.opts.Model.Advance(pos, position.Sentence, false)
	}
	return pos, ok
}

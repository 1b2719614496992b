package reader

import (
	"context"
	"errors"
	"time"

	"github.com/lue-reader/lue/internal/pipeline"
)

const (
	// defaultRestartWait bounds how long a restart waits for the previous
	// one.
	defaultRestartWait = 3 * time.Second
	// A restart that went ahead without its predecessor may find the
	// pipeline still draining; it retries Start until the window closes.
	startRetryDelay  = 50 * time.Millisecond
	startRetryWindow = 5 * time.Second
)

// restart stops the pipeline and, unless paused, starts it again from the
// current position. Restarts are serialized: a new one cancels the pending
// one and waits for it to finish before it begins, so at most one
// activation is ever running.
func (c *Controller) restart(ctx context.Context) {
	if c.pipe == nil {
		return
	}

	c.targetMu.Lock()
	c.target = c.state.Position
	c.paused = c.state.Paused
	c.activeRun = ""
	c.targetMu.Unlock()

	c.restartMu.Lock()
	prevCancel, prevDone := c.restartCancel, c.restartDone
	rctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.restartCancel, c.restartDone = cancel, done
	c.restartMu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}

	c.restarts.Add(1)
	go func() {
		defer c.restarts.Done()
		defer close(done)
		if prevDone != nil {
			select {
			case <-prevDone:
			case <-time.After(c.restartWait):
				c.logger.Warn("previous restart did not finish in time")
			}
		}
		c.runRestart(ctx, rctx)
	}()
}

func (c *Controller) runRestart(parent, ctx context.Context) {
	c.pipe.Stop(context.WithoutCancel(ctx))
	if !wait(ctx, c.debounce) {
		return
	}

	deadline := time.Now().Add(startRetryWindow)
	for {
		err := c.start(parent, ctx)
		if err == nil {
			return
		}
		if !errors.Is(err, pipeline.ErrStateTransition) || time.Now().After(deadline) {
			c.logger.Error("could not start playback", "err", err)
			return
		}
		c.logger.Debug("pipeline still stopping, retrying start", "err", err)
		if !wait(ctx, startRetryDelay) {
			return
		}
		c.pipe.Stop(context.WithoutCancel(ctx))
	}
}

// start starts the pipeline at the target position unless playback was
// paused or this restart was superseded.
func (c *Controller) start(parent, ctx context.Context) error {
	c.targetMu.Lock()
	defer c.targetMu.Unlock()
	if c.paused || ctx.Err() != nil {
		return nil
	}
	from := c.target
	if err := c.pipe.Start(parent, from); err != nil {
		return err
	}
	c.activeRun = c.pipe.RunID()
	c.logger.Debug("playback started", "position", from, "run", c.activeRun)
	return nil
}

func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// shutdown cancels any pending restart and stops the pipeline.
func (c *Controller) shutdown() {
	if c.pipe == nil {
		return
	}
	c.restartMu.Lock()
	if c.restartCancel != nil {
		c.restartCancel()
	}
	c.restartMu.Unlock()
	c.restarts.Wait()

	c.targetMu.Lock()
	c.activeRun = ""
	c.targetMu.Unlock()
	c.pipe.Stop(context.Background())
}

package audio

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Timeouts used when stopping playback processes.
const (
	TerminateWait = 200 * time.Millisecond
	KillWait      = 100 * time.Millisecond
)

// Tracker is the set of live playback processes.
type Tracker struct {
	mu    sync.Mutex
	procs map[Process]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{procs: make(map[Process]struct{})}
}

func (t *Tracker) Add(p Process) {
	t.mu.Lock()
	t.procs[p] = struct{}{}
	t.mu.Unlock()
}

func (t *Tracker) Remove(p Process) {
	t.mu.Lock()
	delete(t.procs, p)
	t.mu.Unlock()
}

// Len returns the number of tracked processes.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.procs)
}

// StopAll terminates every tracked process, killing those that have not
// exited after TerminateWait, and empties the set.
func (t *Tracker) StopAll(ctx context.Context) {
	t.mu.Lock()
	procs := make([]Process, 0, len(t.procs))
	for p := range t.procs {
		procs = append(procs, p)
	}
	t.procs = make(map[Process]struct{})
	t.mu.Unlock()

	for _, p := range procs {
		stop(ctx, p)
	}
}

func stop(ctx context.Context, p Process) {
	if err := p.Terminate(); err != nil {
		log.Debug("terminate failed", "err", err)
	}
	if waitDone(ctx, p, TerminateWait) {
		return
	}
	if err := p.Kill(); err != nil {
		log.Debug("kill failed", "err", err)
	}
	waitDone(ctx, p, KillWait)
}

func waitDone(ctx context.Context, p Process, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.Done():
		return true
	case <-t.C:
		return false
	case <-ctx.Done():
		return false
	}
}

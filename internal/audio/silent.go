package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned by Wait on a silent process stopped early.
var ErrStopped = errors.New("playback stopped")

// Silent is a Launcher that plays nothing and exits after the file's
// duration. It is used when no audio player is configured and in tests.
type Silent struct {
	// Prober measures files; when nil or failing, Fallback is used.
	Prober   Prober
	Fallback time.Duration
	// TimeScale shortens or stretches simulated playback; 0 means 1.
	TimeScale float64
	// OnStart is called for every started file.
	OnStart func(path string, speed float64)

	started atomic.Int64
	active  atomic.Int64
}

func (s *Silent) Start(ctx context.Context, path string, speed float64) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := s.Fallback
	if s.Prober != nil {
		if secs, err := s.Prober.Duration(ctx, path); err == nil {
			d = time.Duration(secs * float64(time.Second))
		}
	}
	if speed > 0 {
		d = time.Duration(float64(d) / speed)
	}
	if s.TimeScale > 0 {
		d = time.Duration(float64(d) * s.TimeScale)
	}

	s.started.Add(1)
	s.active.Add(1)
	if s.OnStart != nil {
		s.OnStart(path, speed)
	}

	p := &silentProcess{done: make(chan struct{}), stop: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer s.active.Add(-1)
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-p.stop:
			p.err = ErrStopped
		}
	}()
	return p, nil
}

// Started returns how many files were played.
func (s *Silent) Started() int { return int(s.started.Load()) }

// Active returns how many playbacks are in progress.
func (s *Silent) Active() int { return int(s.active.Load()) }

type silentProcess struct {
	done chan struct{}
	stop chan struct{}
	once sync.Once
	err  error
}

func (p *silentProcess) Wait() error {
	<-p.done
	return p.err
}

func (p *silentProcess) Terminate() error {
	p.once.Do(func() { close(p.stop) })
	return nil
}

func (p *silentProcess) Kill() error {
	return p.Terminate()
}

func (p *silentProcess) Done() <-chan struct{} {
	return p.done
}

package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Launcher starts playback of one file.
type Launcher interface {
	Start(ctx context.Context, path string, speed float64) (Process, error)
}

// Process is a running playback.
type Process interface {
	// Wait blocks until playback ends and returns its exit error.
	Wait() error
	// Terminate asks the process to stop.
	Terminate() error
	// Kill stops the process immediately.
	Kill() error
	// Done is closed when the process has exited.
	Done() <-chan struct{}
}

// FFPlay plays files with ffplay, without a window and exiting at the end
// of the file.
type FFPlay struct {
	Binary string
}

func (f FFPlay) Start(ctx context.Context, path string, speed float64) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bin := f.Binary
	if bin == "" {
		bin = "ffplay"
	}
	cmd := exec.Command(bin, FFPlayArgs(path, speed)...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("unable to start %s: %w", bin, err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

// FFPlayArgs returns the ffplay arguments for path at speed.
func FFPlayArgs(path string, speed float64) []string {
	args := []string{"-nodisp", "-autoexit", "-loglevel", "error"}
	if chain := AtempoChain(speed); chain != "" {
		args = append(args, "-af", chain)
	}
	return append(args, path)
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *execProcess) Wait() error {
	<-p.done
	return p.err
}

func (p *execProcess) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	return terminate(p.cmd.Process)
}

func (p *execProcess) Kill() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	return p.cmd.Process.Kill()
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

// AtempoChain returns an ffmpeg filter chain for speed. A single atempo
// filter only accepts factors in [0.5, 2.0], so larger changes are split
// into several filters. It returns "" at normal speed.
func AtempoChain(speed float64) string {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) || speed == 1.0 {
		return ""
	}

	var factors []float64
	for speed > 2.0 {
		factors = append(factors, 2.0)
		speed /= 2.0
	}
	for speed < 0.5 {
		factors = append(factors, 0.5)
		speed /= 0.5
	}
	if speed != 1.0 {
		factors = append(factors, speed)
	}

	filters := make([]string, len(factors))
	for i, f := range factors {
		filters[i] = "atempo=" + formatFactor(f)
	}
	return strings.Join(filters, ",")
}

func formatFactor(f float64) string {
	s := strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Overlap returns how many seconds the next sentence may start before the
// current one ends: base at 1.0x or slower, shrinking linearly to zero at
// 3.0x.
func Overlap(base, speed float64) float64 {
	switch {
	case base <= 0 || speed >= 3.0:
		return 0
	case speed <= 1.0:
		return base
	default:
		return base * (3.0 - speed) / 2.0
	}
}

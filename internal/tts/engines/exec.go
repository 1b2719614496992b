package engines

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/lue-reader/lue/internal/tts"
)

// lookBinary resolves name on PATH, returning a critical *tts.Error when it
// is missing.
func lookBinary(backend, name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", tts.NewError(fmt.Errorf("%w: %s", tts.ErrBinaryNotFound, name), backend, "initialize").
			WithSeverity(tts.SeverityCritical).
			WithContext("binary", name)
	}
	return path, nil
}

// run executes a command with stdin attached before start. When timeout
// elapses the process is interrupted and killed 100ms later.
func run(ctx context.Context, timeout time.Duration, stdin io.Reader, name string, args ...string) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.Command(name, args...)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to start %s: %w", name, err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
		}
		return nil
	case <-ctx.Done():
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
			_ = cmd.Process.Kill()
			<-done
		}
		return fmt.Errorf("%s interrupted: %w", name, ctx.Err())
	}
}

// checkOutput verifies that a backend wrote a non-empty file.
func checkOutput(backend, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return tts.NewError(tts.ErrGenerationFailed, backend, "generate").WithContext("path", path)
	}
	return nil
}

// removeStale deletes a leftover file from a previous sentence.
func removeStale(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		_ = os.Truncate(path, 0)
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

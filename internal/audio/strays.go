package audio

import (
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"
)

const strayTimeout = 300 * time.Millisecond

// KillStrays kills ffplay processes still playing buffer files from dir,
// e.g. left over by a crashed session. Failures and a missing pkill are
// ignored.
func KillStrays(ctx context.Context, dir string) {
	if _, err := exec.LookPath("pkill"); err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, strayTimeout)
	defer cancel()
	_ = exec.CommandContext(ctx, "pkill", "-9", "-f", StrayPattern(dir)).Run()
}

// StrayPattern returns the pkill pattern matching players of dir's buffers.
func StrayPattern(dir string) string {
	return "ffplay.*" + regexp.QuoteMeta(filepath.Join(dir, "buffer_"))
}

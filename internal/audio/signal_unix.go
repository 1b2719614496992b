//go:build unix

package audio

import (
	"os"

	"golang.org/x/sys/unix"
)

func terminate(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGTERM)
}

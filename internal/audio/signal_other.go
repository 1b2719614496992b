//go:build !unix

package audio

import "os"

func terminate(p *os.Process) error {
	return p.Kill()
}

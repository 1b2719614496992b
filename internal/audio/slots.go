package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Retry settings for removing buffer files that a player may still hold.
const (
	RemoveAttempts = 5
	RemoveDelay    = 100 * time.Millisecond

	minRemoveDelay = 50 * time.Millisecond
)

// slotExtensions are the files a slot may hold: audio from every backend
// and edge-tts subtitles.
var slotExtensions = []string{"mp3", "wav", "vtt"}

// MinSlots is the smallest ring that serves a queue of queueSize: every
// queued sentence holds a slot, plus one being written, one playing and
// the previous one still finishing during the overlap.
func MinSlots(queueSize int) int {
	return queueSize + 3
}

// Slots hands out a fixed ring of buffer file paths. A path handed out by
// Claim belongs to that claim until Release or the next claim of the same
// slot, so a late cleanup never deletes a newer sentence.
type Slots struct {
	dir  string
	n    int
	mu   sync.Mutex
	next int
	gen  uint64
	// owner maps a path to the generation of its latest claim.
	owner map[string]uint64
}

// NewSlots creates n slots in dir.
func NewSlots(dir string, n, queueSize int) (*Slots, error) {
	if need := MinSlots(queueSize); n < need {
		return nil, fmt.Errorf("need at least %d buffer slots for a queue of %d, got %d", need, queueSize, n)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create buffer directory: %w", err)
	}
	return &Slots{dir: dir, n: n, owner: make(map[string]uint64)}, nil
}

func (s *Slots) Dir() string { return s.dir }
func (s *Slots) Len() int    { return s.n }

// Path returns the file for slot i with extension ext.
func (s *Slots) Path(i int, ext string) string {
	return filepath.Join(s.dir, fmt.Sprintf("buffer_%d.%s", i%s.n, ext))
}

// Next returns the next slot index in round robin order.
func (s *Slots) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.next
	s.next = (s.next + 1) % s.n
	return i
}

// Reset starts the ring again at slot 0.
func (s *Slots) Reset() {
	s.mu.Lock()
	s.next = 0
	s.mu.Unlock()
}

// Remove deletes path, retrying while it is busy. It gives up silently.
func (s *Slots) Remove(path string) bool {
	return RemoveFile(path, RemoveAttempts, RemoveDelay)
}

// Claim takes the next slot for a file with extension ext. Any stale file
// left there is removed first. The returned generation identifies this
// claim to Release.
func (s *Slots) Claim(ext string) (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.Path(s.next, ext)
	s.next = (s.next + 1) % s.n
	s.gen++
	s.owner[path] = s.gen
	RemoveFile(path, 3, minRemoveDelay)
	return path, s.gen
}

// Release deletes path if gen is still its latest claim. It reports
// whether the file is gone; a slot claimed again since is left alone.
func (s *Slots) Release(path string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner[path] != gen {
		log.Debug("buffer slot reclaimed, leaving it", "file", filepath.Base(path))
		return false
	}
	delete(s.owner, path)
	return RemoveFile(path, 3, minRemoveDelay)
}

// Clear removes every slot file.
func (s *Slots) Clear(ctx context.Context) {
	s.mu.Lock()
	clear(s.owner)
	s.mu.Unlock()
	for i := 0; i < s.n; i++ {
		for _, ext := range slotExtensions {
			if ctx.Err() != nil {
				return
			}
			RemoveFile(s.Path(i, ext), 2, RemoveDelay)
		}
	}
}

// RemoveFile deletes path with up to attempts tries, delay apart. A missing
// file counts as removed.
func RemoveFile(path string, attempts int, delay time.Duration) bool {
	var err error
	for i := 0; i < attempts; i++ {
		err = os.Remove(path)
		if err == nil || os.IsNotExist(err) {
			return true
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	log.Debug("giving up on removing buffer file", "file", filepath.Base(path), "err", err)
	return false
}

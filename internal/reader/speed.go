package reader

import (
	"strconv"
	"strings"
	"sync"
)

// SpeedLevels are the playback speeds SpeedUp and SpeedDown step through.
var SpeedLevels = []float64{1.0, 1.25, 1.5, 1.75, 2.0, 2.5, 3.0}

// SpeedController steps the playback speed through SpeedLevels.
type SpeedController struct {
	current float64
	mu      sync.RWMutex
}

// NewSpeedController starts at the level closest to speed.
func NewSpeedController(speed float64) *SpeedController {
	s := &SpeedController{current: SpeedLevels[0]}
	s.Set(speed)
	return s
}

// Get returns the current speed multiplier.
func (s *SpeedController) Get() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set snaps speed to the nearest level.
func (s *SpeedController) Set(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := SpeedLevels[0]
	for _, level := range SpeedLevels {
		if abs(level-speed) < abs(best-speed) {
			best = level
		}
	}
	s.current = best
}

// Up moves to the next faster level and returns the new speed.
func (s *SpeedController) Up() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, level := range SpeedLevels {
		if level > s.current {
			s.current = level
			return s.current
		}
	}
	// Already at maximum speed
	return s.current
}

// Down moves to the next slower level, never below 1.0x.
func (s *SpeedController) Down() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(SpeedLevels) - 1; i >= 0; i-- {
		if SpeedLevels[i] < s.current {
			s.current = SpeedLevels[i]
			return s.current
		}
	}
	return s.current
}

// Display returns the speed as a superscript tag such as "¹·⁵ˣ", or an
// empty string at normal speed.
func (s *SpeedController) Display() string {
	return SpeedDisplay(s.Get())
}

var superscripts = strings.NewReplacer(
	"0", "⁰", "1", "¹", "2", "²", "3", "³", "4", "⁴",
	"5", "⁵", "6", "⁶", "7", "⁷", "8", "⁸", "9", "⁹",
	".", "·",
)

// SpeedDisplay formats speed the way Display does.
func SpeedDisplay(speed float64) string {
	if speed == 1.0 {
		return ""
	}
	return superscripts.Replace(strconv.FormatFloat(speed, 'f', -1, 64)) + "ˣ"
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

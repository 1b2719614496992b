package engines

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lue-reader/lue/internal/timing"
)

// ErrNoCues is returned when a subtitle file holds no timed text.
var ErrNoCues = errors.New("no subtitle cues")

// ParseSubtitles reads WebVTT or SRT cues. Each cue becomes one entry whose
// Word is the cue text, which may hold several words.
func ParseSubtitles(r io.Reader) ([]timing.WordTiming, error) {
	var (
		out  []timing.WordTiming
		cur  *timing.WordTiming
		text []string
	)
	flush := func() {
		if cur != nil {
			cur.Word = strings.Join(text, " ")
			if cur.Word != "" {
				out = append(out, *cur)
			}
		}
		cur, text = nil, nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		switch {
		case line == "":
			flush()
		case strings.Contains(line, "-->"):
			flush()
			start, end, err := parseCueTimes(line)
			if err != nil {
				return nil, err
			}
			cur = &timing.WordTiming{Start: start, End: end}
		case cur != nil:
			text = append(text, line)
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("unable to read subtitles: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoCues
	}
	return out, nil
}

// parseCueTimes parses "00:00:01.250 --> 00:00:01.900" with optional cue
// settings after the end time.
func parseCueTimes(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("missing cue end in %q", line)
	}
	end, err := parseTimestamp(endField[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp accepts hh:mm:ss.mmm, mm:ss.mmm and the SRT comma form.
func parseTimestamp(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	var total float64
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

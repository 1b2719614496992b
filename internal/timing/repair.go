package timing

// Repair returns a contiguous copy of raw. Negative or non-finite values are
// clamped, starts are made monotonic, a reversed window gets MinWindow, and
// every end except the last is moved to the next start.
func Repair(raw []WordTiming) []WordTiming {
	if len(raw) == 0 {
		return nil
	}

	out := make([]WordTiming, len(raw))
	prev := 0.0
	for i, w := range raw {
		start, end := w.Start, w.End
		if !finite(start) {
			start = prev
		}
		if !finite(end) {
			end = start
		}
		if start < 0 {
			start = 0
		}
		if start < prev {
			start = prev
		}
		if end < start {
			end = start + MinWindow
		}
		out[i] = WordTiming{Word: w.Word, Start: start, End: end}
		prev = start
	}

	for i := 0; i < len(out)-1; i++ {
		out[i].End = out[i+1].Start
	}
	return out
}

// SpeechDuration returns the largest end in timings, or 0.
func SpeechDuration(timings []WordTiming) float64 {
	var d float64
	for _, t := range timings {
		if t.End > d {
			d = t.End
		}
	}
	return d
}

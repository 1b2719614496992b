package timing

import "sort"

// WordIndexAt returns the index of the original word being spoken elapsed
// seconds into the audio, or -1 when wordCount is 0. elapsed is in audio
// time; the caller scales wall time by the playback speed.
//
// When several original words map to the same timing entry, the entry's
// window is split evenly between them.
func WordIndexAt(b Bundle, elapsed float64, wordCount int) int {
	if wordCount <= 0 {
		return -1
	}
	if elapsed < 0 {
		elapsed = 0
	}

	timings := b.WordTimings
	if len(timings) == 0 {
		if b.TotalDuration <= 0 {
			return 0
		}
		return clampIndex(int(elapsed/(b.TotalDuration/float64(wordCount))), wordCount)
	}

	entry := sort.Search(len(timings), func(i int) bool {
		return timings[i].End > elapsed
	})
	if entry == len(timings) {
		entry = len(timings) - 1
	}

	if len(b.WordMapping) != wordCount {
		return clampIndex(entry, wordCount)
	}

	var mapped []int
	for i, idx := range b.WordMapping {
		if idx == entry {
			mapped = append(mapped, i)
		}
	}

	switch len(mapped) {
	case 0:
		// The engine spoke a token the text does not have; keep the last
		// word that precedes it.
		current := 0
		for i, idx := range b.WordMapping {
			if idx <= entry {
				current = i
			}
		}
		return current
	case 1:
		return mapped[0]
	}

	t := timings[entry]
	width := t.Duration()
	if width <= 0 {
		return mapped[0]
	}
	offset := elapsed - t.Start
	if offset < 0 {
		offset = 0
	}
	sub := int(offset / (width / float64(len(mapped))))
	if sub >= len(mapped) {
		sub = len(mapped) - 1
	}
	return mapped[sub]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

package engines

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSubtitles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
		start []float64
	}{
		{
			name:  "webvtt",
			input: "WEBVTT\n\n00:00:00.100 --> 00:00:00.450\nHello,\n\n00:00:00.450 --> 00:00:01.000 align:start\nworld.\n",
			want:  []string{"Hello,", "world."},
			start: []float64{0.1, 0.45},
		},
		{
			name:  "srt",
			input: "1\n00:00:01,000 --> 00:00:01,500\nOne\n\n2\n00:00:01,500 --> 00:00:02,250\ntwo words\n",
			want:  []string{"One", "two words"},
			start: []float64{1.0, 1.5},
		},
		{
			name:  "multi-line cue",
			input: "WEBVTT\n\n01:00.000 --> 01:01.000\nfirst\nsecond\n",
			want:  []string{"first second"},
			start: []float64{60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubtitles(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d cues, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i].Word != tt.want[i] {
					t.Errorf("Expected cue %d %q, got %q", i, tt.want[i], got[i].Word)
				}
				if diff := got[i].Start - tt.start[i]; diff > 1e-9 || diff < -1e-9 {
					t.Errorf("Expected cue %d start %v, got %v", i, tt.start[i], got[i].Start)
				}
			}
		})
	}
}

func TestParseSubtitlesErrors(t *testing.T) {
	if _, err := ParseSubtitles(strings.NewReader("WEBVTT\n\n")); !errors.Is(err, ErrNoCues) {
		t.Errorf("Expected ErrNoCues, got %v", err)
	}
	if _, err := ParseSubtitles(strings.NewReader("x --> y\nword\n")); err == nil {
		t.Error("Expected error for bad timestamps")
	}
}

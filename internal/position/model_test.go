package position

import (
	"errors"
	"testing"
)

func testBook() *Model {
	return NewModel([][]string{
		{"First one. First two.", "", "Second para."},
		{},
		{"Third chapter start. Middle. End."},
	}, nil)
}

func TestNewModel(t *testing.T) {
	m := testBook()

	if m.Total() != 6 {
		t.Errorf("Expected 6 sentences, got %d", m.Total())
	}
	if got := m.Sentences(0, 0); len(got) != 2 {
		t.Errorf("Expected 2 sentences in first paragraph, got %d", len(got))
	}
	if got := m.Sentences(0, 1); len(got) != 0 {
		t.Errorf("Expected empty paragraph to have no sentences, got %d", len(got))
	}
	if s, ok := m.Sentence(Position{2, 0, 1}); !ok || s != "Middle." {
		t.Errorf("Expected %q, got %q (%v)", "Middle.", s, ok)
	}
	if _, ok := m.Sentence(Position{1, 0, 0}); ok {
		t.Error("Expected no sentence in empty chapter")
	}
}

func TestAdvance(t *testing.T) {
	m := testBook()

	tests := []struct {
		name     string
		from     Position
		g        Granularity
		wrap     bool
		expected Position
		ok       bool
	}{
		{"next sentence", Position{0, 0, 0}, Sentence, false, Position{0, 0, 1}, true},
		{"skips empty paragraph", Position{0, 0, 1}, Sentence, false, Position{0, 2, 0}, true},
		{"skips empty chapter", Position{0, 2, 0}, Sentence, false, Position{2, 0, 0}, true},
		{"end without wrap", Position{2, 0, 2}, Sentence, false, Position{}, false},
		{"end with wrap", Position{2, 0, 2}, Sentence, true, Position{0, 0, 0}, true},
		{"next paragraph", Position{0, 0, 1}, Paragraph, false, Position{0, 2, 0}, true},
		{"next paragraph across chapters", Position{0, 2, 0}, Paragraph, false, Position{2, 0, 0}, true},
		{"last paragraph", Position{2, 0, 1}, Paragraph, false, Position{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Advance(tt.from, tt.g, tt.wrap)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRewind(t *testing.T) {
	m := testBook()

	tests := []struct {
		name     string
		from     Position
		g        Granularity
		expected Position
	}{
		{"previous sentence", Position{0, 0, 1}, Sentence, Position{0, 0, 0}},
		{"skips empty paragraph", Position{0, 2, 0}, Sentence, Position{0, 0, 1}},
		{"skips empty chapter", Position{2, 0, 0}, Sentence, Position{0, 2, 0}},
		{"wraps at start", Position{0, 0, 0}, Sentence, Position{2, 0, 2}},
		{"previous paragraph", Position{2, 0, 2}, Paragraph, Position{0, 2, 0}},
		{"previous paragraph skips empty", Position{0, 2, 0}, Paragraph, Position{0, 0, 0}},
		{"paragraph wraps at start", Position{0, 0, 1}, Paragraph, Position{2, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Rewind(tt.from, tt.g); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAdvanceRewindRoundTrip(t *testing.T) {
	m := testBook()

	for i := 0; i < m.Total(); i++ {
		start, _ := m.At(i)

		if next, ok := m.Advance(start, Sentence, false); ok {
			if back := m.Rewind(next, Sentence); back != start {
				t.Errorf("Rewind(Advance(%v)) = %v", start, back)
			}
		}
		if i > 0 {
			prev := m.Rewind(start, Sentence)
			if fwd, ok := m.Advance(prev, Sentence, false); !ok || fwd != start {
				t.Errorf("Advance(Rewind(%v)) = %v", start, fwd)
			}
		}
		if start.Sentence == 0 {
			if next, ok := m.Advance(start, Paragraph, false); ok {
				if back := m.Rewind(next, Paragraph); back != start {
					t.Errorf("Paragraph Rewind(Advance(%v)) = %v", start, back)
				}
			}
		}
	}
}

func TestEmptyModel(t *testing.T) {
	m := NewModel(nil, nil)

	if _, ok := m.Advance(Position{}, Sentence, true); ok {
		t.Error("Expected no next position in an empty book")
	}
	if got := m.Rewind(Position{}, Sentence); got != (Position{}) {
		t.Errorf("Expected zero position, got %v", got)
	}
	if got := m.Progress(Position{}); got != 100 {
		t.Errorf("Expected 100%% progress, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	m := testBook()

	tests := []struct {
		from     Position
		expected Position
	}{
		{Position{0, 0, 1}, Position{0, 0, 1}},
		{Position{0, 1, 0}, Position{0, 2, 0}},
		{Position{1, 0, 0}, Position{2, 0, 0}},
		{Position{5, 0, 0}, Position{2, 0, 2}},
		{Position{0, 0, 9}, Position{0, 0, 1}},
		{Position{-1, 0, 0}, Position{0, 0, 0}},
	}

	for _, tt := range tests {
		if got := m.Clamp(tt.from); got != tt.expected {
			t.Errorf("Clamp(%v) = %v, expected %v", tt.from, got, tt.expected)
		}
	}
}

func TestProgress(t *testing.T) {
	m := testBook()

	if got := m.Progress(Position{0, 0, 0}); got != 0 {
		t.Errorf("Expected 0%%, got %v", got)
	}
	if got := m.Progress(Position{2, 0, 0}); got != 50 {
		t.Errorf("Expected 50%%, got %v", got)
	}
}

func TestParse(t *testing.T) {
	pos, err := Parse("1:2:3")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pos != (Position{1, 2, 3}) {
		t.Errorf("Expected 1:2:3, got %v", pos)
	}
	if pos.String() != "1:2:3" {
		t.Errorf("Expected string 1:2:3, got %s", pos.String())
	}

	for _, bad := range []string{"1:2", "a:b:c", "-1:0:0", ""} {
		if _, err := Parse(bad); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("Parse(%q): expected ErrInvalidPosition, got %v", bad, err)
		}
	}
}

func TestCompare(t *testing.T) {
	a := Position{0, 1, 2}
	b := Position{0, 2, 0}

	if !a.Less(b) || b.Less(a) {
		t.Errorf("Expected %v < %v", a, b)
	}
	if a.Compare(a) != 0 {
		t.Errorf("Expected %v to equal itself", a)
	}
}

func TestSearch(t *testing.T) {
	m := testBook()

	matches := m.Search("Middle", 3)
	if len(matches) == 0 {
		t.Fatal("Expected at least one match")
	}
	if matches[0].Position != (Position{2, 0, 1}) {
		t.Errorf("Expected best match at 2:0:1, got %v", matches[0].Position)
	}
	if len(matches) > 3 {
		t.Errorf("Expected at most 3 matches, got %d", len(matches))
	}

	if got := m.Search("  ", 0); got != nil {
		t.Errorf("Expected no matches for blank query, got %v", got)
	}
}

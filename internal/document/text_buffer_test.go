package document

import (
	"errors"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

const (
	testFact  = "edge(1,2)."
	testRules = "node(1).\npath(X,Y) :- edge(X,Y).\n:- path(X,X)."
)

func rng(startLine, startChar, endLine, endChar uint32) *protocol.Range {
	return &protocol.Range{
		Start: protocol.Position{Line: startLine, Character: startChar},
		End:   protocol.Position{Line: endLine, Character: endChar},
	}
}

func applyOne(t *testing.T, text string, r *protocol.Range, insert string) (*TextBuffer, Change) {
	t.Helper()
	next, change, err := NewTextBuffer(text).Apply(r, insert)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	return next, change
}

func TestApply_FullReplacement(t *testing.T) {
	next, change := applyOne(t, testRules, nil, "a.")

	if next.String() != "a." {
		t.Errorf("Result = %q, want %q", next.String(), "a.")
	}
	if change.Start != 0 || change.OldEnd != len(testRules) || change.NewEnd != 2 {
		t.Errorf("Change = %+v", change)
	}
}

func TestApply_SingleLineReplacement(t *testing.T) {
	// Replace "1,2" with "3,4".
	next, change := applyOne(t, testFact, rng(0, 5, 0, 8), "3,4")

	if want := "edge(3,4)."; next.String() != want {
		t.Errorf("Result = %q, want %q", next.String(), want)
	}
	if change.Start != 5 || change.OldEnd != 8 || change.NewEnd != 8 {
		t.Errorf("Change = %+v", change)
	}
}

func TestApply_MultiLineReplacement(t *testing.T) {
	// Delete the second line including its newline.
	next, change := applyOne(t, testRules, rng(1, 0, 2, 0), "")

	if want := "node(1).\n:- path(X,X)."; next.String() != want {
		t.Errorf("Result = %q, want %q", next.String(), want)
	}
	if next.LineCount() != 2 {
		t.Errorf("LineCount = %d, want 2", next.LineCount())
	}
	if change.OldEndPoint != (syntax.Point{Row: 2, Column: 0}) {
		t.Errorf("OldEndPoint = %+v", change.OldEndPoint)
	}
}

func TestApply_InsertionWithNewlines(t *testing.T) {
	next, change := applyOne(t, "a.\nb.", rng(0, 2, 0, 2), "\nc.\nd.")

	if want := "a.\nc.\nd.\nb."; next.String() != want {
		t.Errorf("Result = %q, want %q", next.String(), want)
	}
	if next.LineCount() != 4 {
		t.Errorf("LineCount = %d, want 4", next.LineCount())
	}
	if change.NewEndPoint != (syntax.Point{Row: 2, Column: 2}) {
		t.Errorf("NewEndPoint = %+v", change.NewEndPoint)
	}

	// The edited buffer answers in its own coordinates.
	off, err := next.PositionToOffset(protocol.Position{Line: 3, Character: 0})
	if err != nil || off != 9 {
		t.Errorf("PositionToOffset(3:0) = %d, %v, want 9", off, err)
	}
}

func TestApply_LeavesReceiverUnchanged(t *testing.T) {
	buf := NewTextBuffer(testFact)
	if _, _, err := buf.Apply(rng(0, 0, 0, 4), "arc"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != testFact {
		t.Errorf("receiver changed to %q", buf.String())
	}
}

func TestApply_UTF16Handling(t *testing.T) {
	// The emoji takes two UTF-16 code units and four bytes.
	text := "p(\"😀\", X)."
	next, change := applyOne(t, text, rng(0, 3, 0, 5), "🙂")

	if want := "p(\"🙂\", X)."; next.String() != want {
		t.Errorf("Result = %q, want %q", next.String(), want)
	}
	if change.Start != 3 || change.OldEnd != 7 {
		t.Errorf("Change = %+v", change)
	}
}

func TestApply_InvalidRanges(t *testing.T) {
	tests := []struct {
		name string
		r    *protocol.Range
	}{
		{"start line out of bounds", rng(5, 0, 5, 1)},
		{"end line out of bounds", rng(0, 0, 5, 0)},
		{"character past end of line", rng(0, 0, 0, 40)},
		{"inverted", rng(0, 5, 0, 2)},
		{"inverted across lines", rng(2, 0, 1, 0)},
	}

	buf := NewTextBuffer(testRules)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buf.Apply(tt.r, "x")
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("err = %v, want ErrInvalidRange", err)
			}
		})
	}
	if buf.String() != testRules {
		t.Errorf("buffer changed to %q", buf.String())
	}
}

func TestPositionToOffset(t *testing.T) {
	buf := NewTextBuffer(testRules)
	tests := []struct {
		line, char uint32
		want       int
	}{
		{0, 0, 0},
		{0, 8, 8},
		{1, 0, 9},
		{1, 5, 14},
		{2, 0, 33},
		{2, 13, 46},
	}

	for _, tt := range tests {
		got, err := buf.PositionToOffset(protocol.Position{Line: tt.line, Character: tt.char})
		if err != nil {
			t.Errorf("PositionToOffset(%d:%d) error: %v", tt.line, tt.char, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PositionToOffset(%d:%d) = %d, want %d", tt.line, tt.char, got, tt.want)
		}
	}
}

func TestOffsetToPosition(t *testing.T) {
	buf := NewTextBuffer("a(\"é😀\").\nb.")
	tests := []struct {
		off        int
		line, char uint32
	}{
		{0, 0, 0},
		{3, 0, 3},  // before é
		{5, 0, 4},  // before the emoji
		{9, 0, 6},  // after the emoji
		{12, 0, 9}, // newline
		{13, 1, 0},
		{15, 1, 2}, // end of buffer
	}

	for _, tt := range tests {
		pos, err := buf.OffsetToPosition(tt.off)
		if err != nil {
			t.Errorf("OffsetToPosition(%d) error: %v", tt.off, err)
			continue
		}
		if pos.Line != tt.line || pos.Character != tt.char {
			t.Errorf("OffsetToPosition(%d) = %d:%d, want %d:%d", tt.off, pos.Line, pos.Character, tt.line, tt.char)
		}
		back, err := buf.PositionToOffset(pos)
		if err != nil || back != tt.off {
			t.Errorf("round trip of %d gave %d, %v", tt.off, back, err)
		}
	}

	if _, err := buf.OffsetToPosition(16); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("offset past end: err = %v", err)
	}
}

func TestCharOffsets(t *testing.T) {
	buf := NewTextBuffer("é😀x")

	off, err := buf.CharToOffset(2)
	if err != nil || off != 6 {
		t.Errorf("CharToOffset(2) = %d, %v, want 6", off, err)
	}
	ch, err := buf.OffsetToChar(6)
	if err != nil || ch != 2 {
		t.Errorf("OffsetToChar(6) = %d, %v, want 2", ch, err)
	}
	if _, err := buf.CharToOffset(4); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("CharToOffset past end: err = %v", err)
	}
}

func TestSliceText(t *testing.T) {
	buf := NewTextBuffer(testFact)
	got, err := buf.SliceText(syntax.Span{Start: 0, End: 4})
	if err != nil || got != "edge" {
		t.Errorf("SliceText = %q, %v", got, err)
	}
	if _, err := buf.SliceText(syntax.Span{Start: 4, End: 40}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("SliceText out of range: err = %v", err)
	}
}

// Package document keeps the text, the parse tree and the semantic index of
// an open document in step with the edits the client sends.
package document

import (
	"fmt"
	"sort"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// TextBuffer is the text of one document version with an index of line
// starts. Apply returns a new buffer and leaves the receiver unchanged, so a
// buffer can be shared with readers.
//
// Three coordinate spaces are supported: byte offsets, character indexes
// (Unicode scalar values) and LSP positions, whose columns count UTF-16
// code units.
type TextBuffer struct {
	text  []byte
	lines []int
}

// NewTextBuffer returns a buffer holding text.
func NewTextBuffer(text string) *TextBuffer {
	b := &TextBuffer{text: []byte(text)}
	b.lines = lineStarts(b.text)
	return b
}

func lineStarts(text []byte) []int {
	starts := []int{0}
	for i, c := range text {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Len returns the length in bytes.
func (b *TextBuffer) Len() int {
	return len(b.text)
}

// Bytes returns the text. The slice must not be modified.
func (b *TextBuffer) Bytes() []byte {
	return b.text
}

func (b *TextBuffer) String() string {
	return string(b.text)
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *TextBuffer) LineCount() int {
	return len(b.lines)
}

// line returns the bytes of a line without its newline.
func (b *TextBuffer) line(i int) []byte {
	end := len(b.text)
	if i+1 < len(b.lines) {
		end = b.lines[i+1] - 1
	}
	return b.text[b.lines[i]:end]
}

// PositionToOffset converts an LSP position to a byte offset.
func (b *TextBuffer) PositionToOffset(pos protocol.Position) (int, error) {
	line := int(pos.Line)
	if line >= len(b.lines) {
		return 0, fmt.Errorf("%w: line %d out of range (0-%d)", ErrInvalidRange, line, len(b.lines)-1)
	}
	col, err := utf16ToByteOffset(b.line(line), int(pos.Character))
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %v", ErrInvalidRange, line, err)
	}
	return b.lines[line] + col, nil
}

// OffsetToPosition converts a byte offset to an LSP position.
func (b *TextBuffer) OffsetToPosition(off int) (protocol.Position, error) {
	if off < 0 || off > len(b.text) {
		return protocol.Position{}, fmt.Errorf("%w: offset %d out of range (0-%d)", ErrInvalidRange, off, len(b.text))
	}
	line := b.lineOf(off)
	col := byteToUTF16Offset(b.text[b.lines[line]:off])
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)}, nil
}

// Point converts a byte offset to a row and byte column.
func (b *TextBuffer) Point(off int) syntax.Point {
	line := b.lineOf(off)
	return syntax.Point{Row: line, Column: off - b.lines[line]}
}

func (b *TextBuffer) lineOf(off int) int {
	return sort.Search(len(b.lines), func(i int) bool { return b.lines[i] > off }) - 1
}

// CharToOffset converts a character index to a byte offset.
func (b *TextBuffer) CharToOffset(ch int) (int, error) {
	if ch < 0 {
		return 0, fmt.Errorf("%w: character %d", ErrInvalidRange, ch)
	}
	off := 0
	for n := 0; n < ch; n++ {
		if off >= len(b.text) {
			return 0, fmt.Errorf("%w: character %d past end of buffer", ErrInvalidRange, ch)
		}
		_, size := utf8.DecodeRune(b.text[off:])
		off += size
	}
	return off, nil
}

// OffsetToChar converts a byte offset to a character index. An offset inside
// a multi-byte sequence counts the partial character.
func (b *TextBuffer) OffsetToChar(off int) (int, error) {
	if off < 0 || off > len(b.text) {
		return 0, fmt.Errorf("%w: offset %d out of range (0-%d)", ErrInvalidRange, off, len(b.text))
	}
	return utf8.RuneCount(b.text[:off]), nil
}

// SliceText returns the text of a byte range.
func (b *TextBuffer) SliceText(s syntax.Span) (string, error) {
	if s.Start < 0 || s.Start > s.End || s.End > len(b.text) {
		return "", fmt.Errorf("%w: [%d,%d) on %d bytes", ErrInvalidRange, s.Start, s.End, len(b.text))
	}
	return string(b.text[s.Start:s.End]), nil
}

// Change describes an applied edit in bytes and row/column points, in the
// coordinates of the buffer the edit was applied to.
type Change struct {
	Start       int
	OldEnd      int
	NewEnd      int
	StartPoint  syntax.Point
	OldEndPoint syntax.Point
	NewEndPoint syntax.Point
}

// InputEdit converts the change for the syntax tree.
func (c Change) InputEdit() syntax.InputEdit {
	return syntax.InputEdit{
		StartByte:   c.Start,
		OldEndByte:  c.OldEnd,
		NewEndByte:  c.NewEnd,
		StartPoint:  c.StartPoint,
		OldEndPoint: c.OldEndPoint,
		NewEndPoint: c.NewEndPoint,
	}
}

// Apply replaces a range with text. A nil range replaces the whole buffer.
func (b *TextBuffer) Apply(r *protocol.Range, text string) (*TextBuffer, Change, error) {
	start, end := 0, len(b.text)
	if r != nil {
		var err error
		if start, err = b.PositionToOffset(r.Start); err != nil {
			return nil, Change{}, err
		}
		if end, err = b.PositionToOffset(r.End); err != nil {
			return nil, Change{}, err
		}
		if start > end {
			return nil, Change{}, fmt.Errorf("%w: start %d:%d after end %d:%d", ErrInvalidRange,
				r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
		}
	}
	return b.ApplyBytes(start, end, text)
}

// ApplyBytes replaces the byte range [start, end) with text.
func (b *TextBuffer) ApplyBytes(start, end int, text string) (*TextBuffer, Change, error) {
	if start < 0 || start > end || end > len(b.text) {
		return nil, Change{}, fmt.Errorf("%w: [%d,%d) on %d bytes", ErrInvalidRange, start, end, len(b.text))
	}

	buf := make([]byte, 0, len(b.text)-(end-start)+len(text))
	buf = append(buf, b.text[:start]...)
	buf = append(buf, text...)
	buf = append(buf, b.text[end:]...)

	next := &TextBuffer{text: buf}
	// Lines before the edit are unchanged.
	keep := b.lineOf(start) + 1
	next.lines = append(make([]int, 0, len(b.lines)+1), b.lines[:keep]...)
	from := b.lines[keep-1]
	for i := from; i < len(buf); i++ {
		if buf[i] == '\n' {
			next.lines = append(next.lines, i+1)
		}
	}

	c := Change{
		Start:       start,
		OldEnd:      end,
		NewEnd:      start + len(text),
		StartPoint:  b.Point(start),
		OldEndPoint: b.Point(end),
	}
	c.NewEndPoint = next.Point(c.NewEnd)
	return next, c, nil
}

// utf16ToByteOffset converts a UTF-16 column to a byte offset within line.
// A column inside a surrogate pair moves past the pair.
func utf16ToByteOffset(line []byte, col int) (int, error) {
	units := 0
	for off := 0; off < len(line); {
		if units >= col {
			return off, nil
		}
		r, size := utf8.DecodeRune(line[off:])
		units += utf16Len(r)
		off += size
	}
	if col > units {
		return 0, fmt.Errorf("UTF-16 offset %d exceeds line length %d", col, units)
	}
	return len(line), nil
}

// byteToUTF16Offset counts the UTF-16 code units of a line prefix.
func byteToUTF16Offset(prefix []byte) int {
	units := 0
	for off := 0; off < len(prefix); {
		r, size := utf8.DecodeRune(prefix[off:])
		units += utf16Len(r)
		off += size
	}
	return units
}

// Runes outside the BMP take a surrogate pair.
func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

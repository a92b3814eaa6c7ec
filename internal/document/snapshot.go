package document

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// Snapshot is one settled version of a document. Its buffer, tree and index
// belong together and are never modified.
type Snapshot struct {
	URI string
	// Version is the client's document version.
	Version int32
	// Revision counts the versions produced by this process.
	Revision uint64
	Buffer   *TextBuffer
	Tree     *syntax.Tree
	Index    *analysis.Index
}

// Text returns the whole text.
func (s *Snapshot) Text() string {
	return s.Buffer.String()
}

// Offset converts an LSP position to a byte offset.
func (s *Snapshot) Offset(pos protocol.Position) (int, error) {
	return s.Buffer.PositionToOffset(pos)
}

// Position converts a byte offset to an LSP position. Offsets past the end
// are clamped.
func (s *Snapshot) Position(off int) protocol.Position {
	pos, err := s.Buffer.OffsetToPosition(min(max(off, 0), s.Buffer.Len()))
	if err != nil {
		return protocol.Position{}
	}
	return pos
}

// Range converts a byte span to an LSP range.
func (s *Snapshot) Range(span syntax.Span) protocol.Range {
	return protocol.Range{Start: s.Position(span.Start), End: s.Position(span.End)}
}

// NodeAt returns the deepest node at pos.
func (s *Snapshot) NodeAt(pos protocol.Position) (syntax.Node, bool) {
	off, err := s.Offset(pos)
	if err != nil {
		return syntax.Node{}, false
	}
	return s.Tree.NodeAt(off)
}

// TextOf returns the text of a byte range, or "" when the range is invalid.
func (s *Snapshot) TextOf(span syntax.Span) string {
	text, err := s.Buffer.SliceText(span)
	if err != nil {
		return ""
	}
	return text
}

// PredicateTable returns the occurrences of every predicate.
func (s *Snapshot) PredicateTable() map[analysis.Key][]analysis.Occurrence {
	return s.Index.PredicateTable()
}

// VariablesOf returns the variables of a statement.
func (s *Snapshot) VariablesOf(id syntax.StatementID) []string {
	return s.Index.VariablesOf(id)
}

// IdentifierAt returns the indexed atom at pos.
func (s *Snapshot) IdentifierAt(pos protocol.Position) (analysis.Reference, bool) {
	off, err := s.Offset(pos)
	if err != nil {
		return analysis.Reference{}, false
	}
	return s.Index.IdentifierAt(s.Tree, off)
}

// Locate returns the range of an occurrence and of its name.
func (s *Snapshot) Locate(o analysis.Occurrence) (span, name protocol.Range, ok bool) {
	a, b, ok := analysis.Locate(s.Tree, o)
	if !ok {
		return protocol.Range{}, protocol.Range{}, false
	}
	return s.Range(a), s.Range(b), true
}

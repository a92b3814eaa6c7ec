package lsp

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/syntax"
	"github.com/VictosVertex/asp-lsp/internal/util"
)

// SymbolKind is the kind of symbol found at a position.
type SymbolKind string

const (
	SymbolKindPredicate SymbolKind = "predicate"
	SymbolKindVariable  SymbolKind = "variable"
)

// SymbolInfo describes the symbol at a cursor position.
type SymbolInfo struct {
	Kind SymbolKind
	Name string
	// Key is set for predicates.
	Key analysis.Key
	// Node is the variable node, or the atom of a predicate occurrence.
	Node syntax.Node
	// Span is the name under the cursor.
	Span syntax.Span
}

func (si *SymbolInfo) String() string {
	if si.Kind == SymbolKindPredicate {
		return fmt.Sprintf("%s %s", si.Kind, si.Key)
	}
	return fmt.Sprintf("%s %s", si.Kind, si.Name)
}

// IdentifySymbolAtPosition finds the variable or indexed predicate
// occurrence at pos. A cursor directly behind a name still refers to it.
func IdentifySymbolAtPosition(snap *document.Snapshot, pos protocol.Position) (*SymbolInfo, bool) {
	off, err := snap.Offset(pos)
	if err != nil {
		return nil, false
	}
	if si, ok := symbolAt(snap, off); ok {
		return si, true
	}
	if off > 0 {
		return symbolAt(snap, off-1)
	}
	return nil, false
}

func symbolAt(snap *document.Snapshot, off int) (*SymbolInfo, bool) {
	n, ok := snap.Tree.NodeAt(off)
	if !ok {
		return nil, false
	}

	switch n.Kind() {
	case syntax.KindVariable:
		return &SymbolInfo{Kind: SymbolKindVariable, Name: n.Text(), Node: n, Span: n.Span()}, true
	case syntax.KindIdentifier:
	default:
		return nil, false
	}

	ref, ok := snap.Index.IdentifierAt(snap.Tree, off)
	if !ok {
		return nil, false
	}
	atom, ok := util.EnclosingAtom(n)
	if !ok {
		return nil, false
	}
	return &SymbolInfo{
		Kind: SymbolKindPredicate,
		Name: ref.Key.Name,
		Key:  ref.Key,
		Node: atom,
		Span: n.Span(),
	}, true
}

// occurrenceLocations returns the name ranges of occurrences.
func occurrenceLocations(snap *document.Snapshot, occurrences []analysis.Occurrence) []protocol.Location {
	locations := make([]protocol.Location, 0, len(occurrences))
	for _, o := range occurrences {
		if _, name, ok := snap.Locate(o); ok {
			locations = append(locations, protocol.Location{URI: snap.URI, Range: name})
		}
	}
	return locations
}

// variableLocations returns the occurrences of a variable in its statement.
func variableLocations(snap *document.Snapshot, v syntax.Node) []protocol.Location {
	nodes := util.Variables(v.Root(), v.Text())
	locations := make([]protocol.Location, 0, len(nodes))
	for _, n := range nodes {
		locations = append(locations, protocol.Location{URI: snap.URI, Range: snap.Range(n.Span())})
	}
	return locations
}

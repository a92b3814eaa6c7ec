package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// DocumentSymbol handles the textDocument/documentSymbol request. Every
// statement defining a predicate is listed, together with #const and
// #program directives.
func DocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	_, snap, ok := snapshotFor("DocumentSymbol", params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	symbols := collectDocumentSymbols(snap)
	log.Debugf("%d symbol(s) in %s", len(symbols), snap.URI)
	return symbols, nil
}

type located struct {
	start  int
	symbol protocol.DocumentSymbol
}

func collectDocumentSymbols(snap *document.Snapshot) []protocol.DocumentSymbol {
	var found []located

	for _, key := range snap.Index.Keys() {
		for _, o := range snap.Index.Occurrences(key) {
			if !o.Head {
				continue
			}
			if sym, start, ok := predicateSymbol(snap, key, o); ok {
				found = append(found, located{start: start, symbol: sym})
			}
		}
	}

	for i := 0; i < snap.Tree.Count(); i++ {
		item := snap.Tree.Item(i)
		d, ok := item.FirstChild(syntax.KindDirective)
		if !ok {
			continue
		}
		if sym, ok := directiveSymbol(snap, item, d); ok {
			found = append(found, located{start: item.Span().Start, symbol: sym})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })
	symbols := make([]protocol.DocumentSymbol, 0, len(found))
	for _, l := range found {
		symbols = append(symbols, l.symbol)
	}
	return symbols
}

func predicateSymbol(snap *document.Snapshot, key analysis.Key, o analysis.Occurrence) (protocol.DocumentSymbol, int, bool) {
	stmt, ok := snap.Tree.Statement(o.Statement)
	if !ok {
		return protocol.DocumentSymbol{}, 0, false
	}
	_, name, ok := analysis.Locate(snap.Tree, o)
	if !ok {
		return protocol.DocumentSymbol{}, 0, false
	}

	detail := "fact"
	if _, rule := stmt.FirstChild(syntax.KindBody); rule {
		detail = "rule"
	}
	return protocol.DocumentSymbol{
		Name:           key.String(),
		Kind:           protocol.SymbolKindFunction,
		Detail:         &detail,
		Range:          snap.Range(stmt.Span()),
		SelectionRange: snap.Range(name),
	}, name.Start, true
}

func directiveSymbol(snap *document.Snapshot, item, d syntax.Node) (protocol.DocumentSymbol, bool) {
	if d.ChildCount() < 2 {
		return protocol.DocumentSymbol{}, false
	}

	var kind protocol.SymbolKind
	switch d.Child(0).Text() {
	case "#const":
		kind = protocol.SymbolKindConstant
	case "#program":
		kind = protocol.SymbolKindNamespace
	default:
		return protocol.DocumentSymbol{}, false
	}

	var name syntax.Node
	d.Child(1).Walk(func(n syntax.Node) bool {
		if !name.Valid() && n.Kind() == syntax.KindIdentifier {
			name = n
		}
		return !name.Valid()
	})
	if !name.Valid() {
		return protocol.DocumentSymbol{}, false
	}

	detail := d.Child(0).Text()
	return protocol.DocumentSymbol{
		Name:           name.Text(),
		Kind:           kind,
		Detail:         &detail,
		Range:          snap.Range(item.Span()),
		SelectionRange: snap.Range(name.Span()),
	}, true
}

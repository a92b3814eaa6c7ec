package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
)

// Definition handles the textDocument/definition request. A predicate is
// defined by its occurrences in rule heads; a variable by its first
// occurrence in the statement.
func Definition(context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	_, snap, ok := snapshotFor("Definition", params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	si, ok := IdentifySymbolAtPosition(snap, params.Position)
	if !ok {
		return nil, nil
	}
	log.Debugf("definition of %s", si)

	if si.Kind == SymbolKindVariable {
		locations := variableLocations(snap, si.Node)
		if len(locations) == 0 {
			return nil, nil
		}
		return locations[0], nil
	}

	var heads []analysis.Occurrence
	for _, o := range snap.Index.Occurrences(si.Key) {
		if o.Head {
			heads = append(heads, o)
		}
	}
	if len(heads) == 0 {
		return nil, nil
	}
	return occurrenceLocations(snap, heads), nil
}

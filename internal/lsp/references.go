package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
)

// References handles the textDocument/references request. Head occurrences
// of a predicate count as its declarations.
func References(context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	_, snap, ok := snapshotFor("References", params.TextDocument.URI)
	if !ok {
		return []protocol.Location{}, nil
	}
	si, ok := IdentifySymbolAtPosition(snap, params.Position)
	if !ok {
		return []protocol.Location{}, nil
	}

	if si.Kind == SymbolKindVariable {
		return variableLocations(snap, si.Node), nil
	}

	occurrences := snap.Index.Occurrences(si.Key)
	if !params.Context.IncludeDeclaration {
		kept := make([]analysis.Occurrence, 0, len(occurrences))
		for _, o := range occurrences {
			if !o.Head {
				kept = append(kept, o)
			}
		}
		occurrences = kept
	}

	locations := occurrenceLocations(snap, occurrences)
	log.Debugf("%d reference(s) to %s", len(locations), si)
	return locations, nil
}

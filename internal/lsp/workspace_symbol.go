package lsp

import (
	"sort"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Limit results to avoid overwhelming the client.
const maxWorkspaceSymbols = 500

// WorkspaceSymbol handles the workspace/symbol request. The predicates
// defined in open documents are matched case-insensitively against the
// query.
func WorkspaceSymbol(context *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	srv, ok := currentServer("WorkspaceSymbol")
	if !ok {
		return nil, nil
	}

	query := strings.ToLower(params.Query)
	symbols := []protocol.SymbolInformation{}

	for _, uri := range srv.Documents().List() {
		snap, ok := srv.Documents().Snapshot(uri)
		if !ok {
			continue
		}
		container := uri
		for _, key := range snap.Index.Keys() {
			if !strings.Contains(strings.ToLower(key.Name), query) {
				continue
			}
			for _, o := range snap.Index.Occurrences(key) {
				if !o.Head {
					continue
				}
				_, name, ok := snap.Locate(o)
				if !ok {
					continue
				}
				symbols = append(symbols, protocol.SymbolInformation{
					Name:          key.String(),
					Kind:          protocol.SymbolKindFunction,
					Location:      protocol.Location{URI: uri, Range: name},
					ContainerName: &container,
				})
			}
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].Name < symbols[j].Name })
	if len(symbols) > maxWorkspaceSymbols {
		symbols = symbols[:maxWorkspaceSymbols]
	}
	log.Debugf("%d workspace symbol(s) match %q", len(symbols), params.Query)
	return symbols, nil
}

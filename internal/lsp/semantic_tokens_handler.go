package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/server"
)

// SemanticTokensFull handles textDocument/semanticTokens/full requests.
// Tokens are computed once per document revision.
func SemanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	srv, snap, ok := snapshotFor("SemanticTokensFull", params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	cached := tokensFor(srv, snap)
	resultID := cached.ResultID
	return &protocol.SemanticTokens{
		ResultID: &resultID,
		Data:     cached.Data,
	}, nil
}

// SemanticTokensFullDelta handles textDocument/semanticTokens/full/delta
// requests. The delta is taken against the tokens last sent for the
// document; an unknown previous result gets the full token set.
func SemanticTokensFullDelta(context *glsp.Context, params *protocol.SemanticTokensDeltaParams) (any, error) {
	srv, snap, ok := snapshotFor("SemanticTokensFullDelta", params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	previous, known := srv.SemanticTokensCache().Lookup(snap.URI, params.PreviousResultID)
	cached := tokensFor(srv, snap)
	if !known {
		log.Debugf("no semantic tokens result %q for %s, sending all", params.PreviousResultID, snap.URI)
		previous = &server.CachedTokens{}
	}

	delta := analysis.ComputeSemanticTokensDelta(previous.Data, cached.Data, cached.ResultID)
	if delta.IsDelta {
		log.Debugf("semantic tokens delta for %s: %d edit(s)", snap.URI, len(delta.Delta.Edits))
	}
	return delta.Result(), nil
}

// tokensFor returns the cached tokens of the snapshot's revision,
// collecting them on a miss.
func tokensFor(srv *server.Server, snap *document.Snapshot) *server.CachedTokens {
	cache := srv.SemanticTokensCache()
	if cached, ok := cache.Get(snap.URI, snap.Revision); ok {
		return cached
	}
	tokens := analysis.CollectSemanticTokens(snap.Tree, snap.Buffer.Bytes(), snap.Buffer, srv.SemanticTokensLegend())
	log.Debugf("collected %d semantic token(s) for %s", len(tokens), snap.URI)
	return cache.Store(snap.URI, snap.Revision, tokens)
}

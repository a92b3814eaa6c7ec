package lsp

import (
	"errors"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/server"
)

// DidOpen handles the textDocument/didOpen notification.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv, ok := currentServer("DidOpen")
	if !ok {
		return nil
	}

	uri := params.TextDocument.URI
	srv.Forget(uri)
	snap := srv.Documents().Open(uri, params.TextDocument.Version, params.TextDocument.Text)

	log.Infof("opened %s (version %d, %d bytes)", uri, snap.Version, snap.Buffer.Len())
	PublishDiagnostics(context, uri, Diagnostics(snap, srv.Config().MaxProblems))
	return nil
}

// DidChange handles the textDocument/didChange notification. All content
// changes of one notification form one batch.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv, ok := currentServer("DidChange")
	if !ok {
		return nil
	}

	uri := params.TextDocument.URI
	edits := make([]document.Edit, 0, len(params.ContentChanges))
	for i, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			edits = append(edits, document.Edit{Range: c.Range, Text: c.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			edits = append(edits, document.Edit{Text: c.Text})
		default:
			log.Warningf("ignoring content change %d of %s: unexpected type %T", i, uri, change)
		}
	}

	snap, dirty, err := srv.Documents().ApplyEdits(uri, params.TextDocument.Version, edits)
	if err != nil {
		// An invalid range leaves the document as it was; a desynchronized
		// document has been dropped and needs to be reopened.
		log.Errorf("didChange %s: %s", uri, err)
		if errors.Is(err, document.ErrDesynchronized) {
			srv.Forget(uri)
			PublishDiagnostics(context, uri, []protocol.Diagnostic{})
		}
		return nil
	}
	if dirty.Empty() && len(edits) == 0 {
		return nil
	}

	PublishDiagnostics(context, uri, Diagnostics(snap, srv.Config().MaxProblems))
	return nil
}

// DidClose handles the textDocument/didClose notification.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv, ok := currentServer("DidClose")
	if !ok {
		return nil
	}

	uri := params.TextDocument.URI
	srv.Documents().Close(uri)
	srv.Forget(uri)
	log.Infof("closed %s", uri)

	// Clear the error markers of the closed document.
	PublishDiagnostics(context, uri, []protocol.Diagnostic{})
	return nil
}

// snapshotFor returns the snapshot a request for uri is answered from.
func snapshotFor(method string, uri protocol.DocumentUri) (*server.Server, *document.Snapshot, bool) {
	srv, ok := currentServer(method)
	if !ok {
		return nil, nil, false
	}
	snap, ok := srv.Documents().Snapshot(uri)
	if !ok {
		log.Debugf("%s: document not open: %s", method, uri)
		return nil, nil, false
	}
	return srv, snap, true
}

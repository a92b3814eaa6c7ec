package lsp

import (
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/server"
)

func TestInitialize(t *testing.T) {
	srv := server.New(nil)
	SetServer(srv)
	t.Cleanup(func() { SetServer(nil) })

	rootURI := "file:///test/workspace"
	params := &protocol.InitializeParams{
		RootURI: &rootURI,
		WorkspaceFolders: []protocol.WorkspaceFolder{
			{URI: "file:///test/a", Name: "a"},
			{URI: "file:///test/b", Name: "b"},
		},
	}

	result, err := Initialize(&glsp.Context{}, params)
	if err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	initResult, ok := result.(protocol.InitializeResult)
	if !ok {
		t.Fatalf("expected protocol.InitializeResult, got %T", result)
	}

	if initResult.ServerInfo == nil || initResult.ServerInfo.Name != "asp-lsp" {
		t.Errorf("unexpected server info %+v", initResult.ServerInfo)
	}

	caps := initResult.Capabilities
	sync, ok := caps.TextDocumentSync.(protocol.TextDocumentSyncOptions)
	if !ok || sync.Change == nil || *sync.Change != protocol.TextDocumentSyncKindIncremental {
		t.Errorf("expected incremental sync, got %+v", caps.TextDocumentSync)
	}
	if caps.CompletionProvider == nil || len(caps.CompletionProvider.TriggerCharacters) != 1 || caps.CompletionProvider.TriggerCharacters[0] != "#" {
		t.Errorf("unexpected completion options %+v", caps.CompletionProvider)
	}
	if caps.SignatureHelpProvider == nil || len(caps.SignatureHelpProvider.TriggerCharacters) != 2 {
		t.Errorf("unexpected signature help options %+v", caps.SignatureHelpProvider)
	}
	if caps.ExecuteCommandProvider == nil || caps.ExecuteCommandProvider.Commands[0] != CommandRebuildIndex {
		t.Errorf("unexpected commands %+v", caps.ExecuteCommandProvider)
	}

	tokens, ok := caps.SemanticTokensProvider.(*protocol.SemanticTokensOptions)
	if !ok {
		t.Fatalf("expected semantic tokens options, got %T", caps.SemanticTokensProvider)
	}
	if tokens.Legend.TokenTypes[0] != "keyword" || len(tokens.Legend.TokenModifiers) != 3 {
		t.Errorf("unexpected legend %+v", tokens.Legend)
	}
	if full, ok := tokens.Full.(*protocol.SemanticDelta); !ok || full.Delta == nil || !*full.Delta {
		t.Errorf("expected full/delta support, got %+v", tokens.Full)
	}

	folders := srv.WorkspaceFolders()
	if len(folders) != 2 || folders[0] != "file:///test/a" {
		t.Errorf("unexpected workspace folders %v", folders)
	}
	if srv.ClientCapabilities() == nil {
		t.Error("client capabilities not stored")
	}
}

func TestInitialize_RootURIFallback(t *testing.T) {
	srv := server.New(nil)
	SetServer(srv)
	t.Cleanup(func() { SetServer(nil) })

	rootURI := "file:///test/workspace"
	if _, err := Initialize(nil, &protocol.InitializeParams{RootURI: &rootURI}); err != nil {
		t.Fatal(err)
	}
	if folders := srv.WorkspaceFolders(); len(folders) != 1 || folders[0] != rootURI {
		t.Errorf("unexpected workspace folders %v", folders)
	}
}

func TestShutdown(t *testing.T) {
	srv := openDocument(t, reachability)
	if _, err := SemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}); err != nil {
		t.Fatal(err)
	}

	if err := Shutdown(nil); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if !srv.IsShuttingDown() {
		t.Error("server not marked as shutting down")
	}
	if docs := srv.Documents().List(); len(docs) != 0 {
		t.Errorf("documents still open: %v", docs)
	}
	if n := srv.SemanticTokensCache().Size(); n != 0 {
		t.Errorf("%d cached token sets after shutdown", n)
	}
}

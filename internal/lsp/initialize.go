package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Version is reported to the client in the initialize result.
var Version = "0.1.0"

// CommandRebuildIndex reparses a document from scratch. Its only argument
// is the document URI.
const CommandRebuildIndex = "asp-lsp.rebuildIndex"

// Initialize handles the LSP initialize request.
// This is the first request sent by the client and establishes the server capabilities.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if srv, ok := currentServer("Initialize"); ok {
		srv.SetClientCapabilities(&params.Capabilities)

		folders := make([]string, 0, len(params.WorkspaceFolders))
		for _, f := range params.WorkspaceFolders {
			folders = append(folders, f.URI)
		}
		if len(folders) == 0 && params.RootURI != nil {
			folders = append(folders, *params.RootURI)
		}
		srv.SetWorkspaceFolders(folders)
		log.Infof("initialize: %d workspace folder(s)", len(folders))
	}

	return protocol.InitializeResult{
		Capabilities: serverCapabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "asp-lsp",
			Version: &Version,
		},
	}, nil
}

func serverCapabilities() protocol.ServerCapabilities {
	changeKind := protocol.TextDocumentSyncKindIncremental
	trueVal := true
	falseVal := false

	legend := serverLegend()

	return protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
		},

		HoverProvider:           &trueVal,
		DefinitionProvider:      &trueVal,
		ReferencesProvider:      &trueVal,
		DocumentSymbolProvider:  &trueVal,
		WorkspaceSymbolProvider: &trueVal,

		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"#"},
			ResolveProvider:   &falseVal,
		},

		SignatureHelpProvider: &protocol.SignatureHelpOptions{
			TriggerCharacters: []string{"(", ","},
		},

		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: &trueVal,
		},

		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: legend,
			Full:   &protocol.SemanticDelta{Delta: &trueVal},
		},

		ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
			Commands: []string{CommandRebuildIndex},
		},
	}
}

func serverLegend() protocol.SemanticTokensLegend {
	if srv, ok := currentServer("Initialize"); ok {
		return srv.SemanticTokensLegend().ToProtocolLegend()
	}
	return protocol.SemanticTokensLegend{TokenTypes: []string{}, TokenModifiers: []string{}}
}

// Initialized handles the initialized notification from the client.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("client initialized")
	return nil
}

// Shutdown handles the shutdown request. Open documents and caches are
// dropped; requests arriving afterwards find nothing.
func Shutdown(context *glsp.Context) error {
	srv, ok := currentServer("Shutdown")
	if !ok {
		return nil
	}
	srv.SetShuttingDown()
	for _, uri := range srv.Documents().List() {
		srv.Forget(uri)
	}
	srv.Documents().Clear()
	srv.CompletionCache().Clear()
	srv.SemanticTokensCache().Clear()
	log.Info("shutdown")
	return nil
}

// SetTrace handles the $/setTrace notification.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

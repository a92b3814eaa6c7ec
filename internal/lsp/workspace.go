package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/server"
)

// Settings are read from the "asp-lsp" section, e.g.
//
//	{"asp-lsp": {"maxProblems": 100, "snippets": true, "documentation": true}}
const settingsSection = "asp-lsp"

// DidChangeConfiguration handles workspace configuration changes from the client.
func DidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv, ok := currentServer("DidChangeConfiguration")
	if !ok || params.Settings == nil {
		return nil
	}

	raw, err := json.Marshal(params.Settings)
	if err != nil {
		log.Warningf("unreadable settings: %s", err)
		return nil
	}
	if !applySettings(srv, raw) {
		return nil
	}

	// Completion items depend on the snippet and documentation settings.
	srv.CompletionCache().Clear()
	for _, uri := range srv.Documents().List() {
		srv.Documentation().InvalidateDocument(uri)
		if snap, ok := srv.Documents().Snapshot(uri); ok {
			PublishDiagnostics(context, uri, Diagnostics(snap, srv.Config().MaxProblems))
		}
	}
	return nil
}

// applySettings copies the known settings into the server configuration
// and reports whether any was present.
func applySettings(srv *server.Server, raw []byte) bool {
	section := gjson.GetBytes(raw, settingsSection)
	if !section.IsObject() {
		return false
	}

	changed := false
	srv.UpdateConfig(func(cfg *server.Config) {
		if v := section.Get("maxProblems"); v.Type == gjson.Number && v.Int() >= 0 {
			cfg.MaxProblems = int(v.Int())
			changed = true
		}
		if v := section.Get("snippets"); v.IsBool() {
			cfg.Snippets = v.Bool()
			changed = true
		}
		if v := section.Get("documentation"); v.IsBool() {
			cfg.Documentation = v.Bool()
			changed = true
		}
	})
	if changed {
		cfg := srv.Config()
		log.Infof("configuration updated: maxProblems=%d snippets=%t documentation=%t",
			cfg.MaxProblems, cfg.Snippets, cfg.Documentation)
	}
	return changed
}

// ExecuteCommand handles workspace/executeCommand.
func ExecuteCommand(context *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	srv, ok := currentServer("ExecuteCommand")
	if !ok {
		return nil, nil
	}

	switch params.Command {
	case CommandRebuildIndex:
		if len(params.Arguments) != 1 {
			return nil, fmt.Errorf("%s: expected a document URI", params.Command)
		}
		uri, ok := params.Arguments[0].(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected a document URI, got %T", params.Command, params.Arguments[0])
		}
		snap, err := srv.Documents().Rebuild(uri)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", params.Command, err)
		}
		srv.Forget(uri)
		log.Infof("rebuilt %s at revision %d", uri, snap.Revision)
		PublishDiagnostics(context, uri, Diagnostics(snap, srv.Config().MaxProblems))
		return nil, nil
	}
	return nil, fmt.Errorf("unknown command %q", params.Command)
}

// DidChangeWorkspaceFolders handles changes to workspace folders.
func DidChangeWorkspaceFolders(context *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	srv, ok := currentServer("DidChangeWorkspaceFolders")
	if !ok {
		return nil
	}

	removed := make(map[string]bool, len(params.Event.Removed))
	for _, f := range params.Event.Removed {
		removed[f.URI] = true
	}

	var folders []string
	for _, f := range srv.WorkspaceFolders() {
		if !removed[f] {
			folders = append(folders, f)
		}
	}
	for _, f := range params.Event.Added {
		folders = append(folders, f.URI)
	}
	srv.SetWorkspaceFolders(folders)
	log.Infof("workspace folders: %d added, %d removed", len(params.Event.Added), len(params.Event.Removed))
	return nil
}

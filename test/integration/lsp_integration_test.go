//go:build integration
// +build integration

package integration

import (
	"sort"
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/lsp"
	"github.com/VictosVertex/asp-lsp/internal/server"
	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

const uri = "file:///test/session.lp"

func setupTestServer(t *testing.T) *server.Server {
	t.Helper()
	srv := server.New(nil)
	lsp.SetServer(srv)
	t.Cleanup(func() { lsp.SetServer(nil) })
	return srv
}

func insert(line, char uint32, text string) any {
	p := protocol.Position{Line: line, Character: char}
	return protocol.TextDocumentContentChangeEvent{Range: &protocol.Range{Start: p, End: p}, Text: text}
}

// checkAgainstRebuild compares the incrementally maintained index with one
// built from a fresh parse of the same text.
func checkAgainstRebuild(t *testing.T, srv *server.Server) {
	t.Helper()
	snap, ok := srv.Documents().Snapshot(uri)
	if !ok {
		t.Fatal("document not open")
	}
	fresh := syntax.Parse(snap.Buffer.Bytes())
	want := analysis.Build(fresh).Resolve(fresh)
	got := snap.Index.Resolve(snap.Tree)

	if len(got.Facts) != len(want.Facts) {
		t.Fatalf("%d predicates, want %d", len(got.Facts), len(want.Facts))
	}
	for k, occurrences := range want.Facts {
		if len(got.Facts[k]) != len(occurrences) {
			t.Errorf("%s: %d occurrences, want %d", k, len(got.Facts[k]), len(occurrences))
			continue
		}
		for i := range occurrences {
			if got.Facts[k][i] != occurrences[i] {
				t.Errorf("%s[%d] = %+v, want %+v", k, i, got.Facts[k][i], occurrences[i])
			}
		}
	}
}

// TestEditingSession types a program character by character and checks the
// index after every keystroke.
func TestEditingSession(t *testing.T) {
	srv := setupTestServer(t)
	ctx := &glsp.Context{}

	err := lsp.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "clingo", Version: 1, Text: ""},
	})
	if err != nil {
		t.Fatalf("DidOpen failed: %v", err)
	}

	lines := []string{
		"edge(1,2). edge(2,3).",
		"path(X,Y) :- edge(X,Y).",
		"path(X,Z) :- path(X,Y), edge(Y,Z).",
	}
	version := int32(1)
	for l, line := range lines {
		for c := 0; c < len(line); c++ {
			version++
			err := lsp.DidChange(ctx, &protocol.DidChangeTextDocumentParams{
				TextDocument: protocol.VersionedTextDocumentIdentifier{
					TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
					Version:                version,
				},
				ContentChanges: []any{insert(uint32(l), uint32(c), line[c:c+1])},
			})
			if err != nil {
				t.Fatalf("DidChange failed: %v", err)
			}
			checkAgainstRebuild(t, srv)
		}
		version++
		_ = lsp.DidChange(ctx, &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
				Version:                version,
			},
			ContentChanges: []any{insert(uint32(l), uint32(len(line)), "\n")},
		})
		checkAgainstRebuild(t, srv)
	}

	snap, _ := srv.Documents().Snapshot(uri)
	if snap.Version != version {
		t.Errorf("version %d, want %d", snap.Version, version)
	}
	vars := snap.Index.VariablesOf(snap.Tree.ItemID(snap.Tree.Count() - 1))
	if len(vars) != 3 {
		t.Errorf("variables of the last rule: %v", vars)
	}
}

// TestRenameRoundTrip renames a predicate, applies the returned edits and
// looks the new name up again.
func TestRenameRoundTrip(t *testing.T) {
	srv := setupTestServer(t)
	ctx := &glsp.Context{}

	_ = lsp.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI: uri, Version: 1,
			Text: "edge(1,2).\npath(X,Y) :- edge(X,Y).\npath(X,Z) :- path(X,Y), edge(Y,Z).\n",
		},
	})

	position := protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: 0, Character: 1},
	}
	edit, err := lsp.Rename(ctx, &protocol.RenameParams{TextDocumentPositionParams: position, NewName: "link"})
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	edits := edit.Changes[uri]
	if len(edits) != 3 {
		t.Fatalf("expected 3 edits, got %d", len(edits))
	}

	// Apply back to front so earlier ranges stay valid.
	sort.Slice(edits, func(i, j int) bool {
		a, b := edits[i].Range.Start, edits[j].Range.Start
		return a.Line > b.Line || a.Line == b.Line && a.Character > b.Character
	})
	changes := make([]any, 0, len(edits))
	for _, e := range edits {
		r := e.Range
		changes = append(changes, protocol.TextDocumentContentChangeEvent{Range: &r, Text: e.NewText})
	}
	err = lsp.DidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: changes,
	})
	if err != nil {
		t.Fatalf("DidChange failed: %v", err)
	}
	checkAgainstRebuild(t, srv)

	refs, err := lsp.References(ctx, &protocol.ReferenceParams{
		TextDocumentPositionParams: position,
		Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
	})
	if err != nil {
		t.Fatalf("References failed: %v", err)
	}
	if len(refs) != 3 {
		t.Errorf("expected 3 references to link/2, got %d", len(refs))
	}

	snap, _ := srv.Documents().Snapshot(uri)
	if len(snap.Index.Occurrences(analysis.Key{Name: "edge", Arity: 2})) != 0 {
		t.Error("edge/2 still indexed after rename")
	}
}

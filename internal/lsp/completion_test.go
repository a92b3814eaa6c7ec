package lsp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/server"
)

func completeAt(t *testing.T, line, char uint32) []protocol.CompletionItem {
	t.Helper()
	result, err := Completion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			Position:     pos(line, char),
		},
	})
	require.NoError(t, err)
	list, ok := result.(*protocol.CompletionList)
	require.True(t, ok, "got %T", result)
	return list.Items
}

func labels(items []protocol.CompletionItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

func enableSnippets(t *testing.T, srv *server.Server) {
	t.Helper()
	var caps protocol.ClientCapabilities
	require.NoError(t, json.Unmarshal([]byte(`{"textDocument":{"completion":{"completionItem":{"snippetSupport":true}}}}`), &caps))
	srv.SetClientCapabilities(&caps)
}

func TestCompletion_VariablesAndPredicates(t *testing.T) {
	openDocument(t, "edge(1,2).\npath(X,Y) :- edge(X,Y).\n")

	items := completeAt(t, 1, 13)
	assert.Equal(t, []string{"X", "Y", "edge/2", "path/2"}, labels(items))

	edge := items[2]
	require.NotNil(t, edge.InsertText)
	assert.Equal(t, "edge", *edge.InsertText, "plain name without snippet support")
	assert.Equal(t, protocol.CompletionItemKindVariable, *items[0].Kind)
}

func TestCompletion_Snippets(t *testing.T) {
	srv := openDocument(t, "edge(1,2).\nq :- .\n")
	enableSnippets(t, srv)

	items := completeAt(t, 1, 5)
	require.Equal(t, []string{"edge/2", "q/0"}, labels(items))
	assert.Equal(t, "edge(${1:()}, ${2:()})$0", *items[0].InsertText)
	assert.Equal(t, protocol.InsertTextFormatSnippet, *items[0].InsertTextFormat)
	assert.Equal(t, "q$0", *items[1].InsertText)
}

func TestCompletion_SkipsWordBeingTyped(t *testing.T) {
	openDocument(t, "p(1).\nq :- rr.\n")

	items := completeAt(t, 1, 7)
	assert.Equal(t, []string{"p/1", "q/0"}, labels(items))
}

func TestCompletion_Documentation(t *testing.T) {
	openDocument(t, documentedProgram)

	items := completeAt(t, 7, 0)
	var path *protocol.CompletionItem
	for i := range items {
		if items[i].Label == "path/2" {
			path = &items[i]
		}
	}
	require.NotNil(t, path)
	require.NotNil(t, path.Detail)
	assert.Equal(t, "path(From,To).", *path.Detail)
	doc, ok := path.Documentation.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Contains(t, doc.Value, "There is a path")
}

func TestCompletion_Builtins(t *testing.T) {
	openDocument(t, "p.\n#sh")

	items := completeAt(t, 1, 3)
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.Equal(t, byte('#'), item.Label[0], item.Label)
	}

	var show *protocol.CompletionItem
	for i := range items {
		if items[i].Label == "#show" {
			show = &items[i]
		}
	}
	require.NotNil(t, show)
	edit, ok := show.TextEdit.(protocol.TextEdit)
	require.True(t, ok)
	assert.Equal(t, rng(1, 0, 1, 3), edit.Range)
	assert.Equal(t, "#show", edit.NewText)
}

func TestCompletion_CacheFollowsRevision(t *testing.T) {
	srv := openDocument(t, "p.\n")
	assert.Equal(t, []string{"p/0"}, labels(completeAt(t, 1, 0)))

	r := rng(1, 0, 1, 0)
	_, _, err := srv.Documents().ApplyEdits(testURI, 2, []document.Edit{{Range: &r, Text: "q.\n"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"p/0", "q/0"}, labels(completeAt(t, 2, 0)))
}

func TestPredicateSnippet(t *testing.T) {
	assert.Equal(t, "flag$0", predicateSnippet(analysis.Key{Name: "flag"}))
	assert.Equal(t, "p(${1:()})$0", predicateSnippet(analysis.Key{Name: "p", Arity: 1}))
}

package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/document"
)

func referencesAt(t *testing.T, line, char uint32, includeDeclaration bool) []protocol.Location {
	t.Helper()
	locations, err := References(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			Position:     pos(line, char),
		},
		Context: protocol.ReferenceContext{IncludeDeclaration: includeDeclaration},
	})
	require.NoError(t, err)
	return locations
}

func TestReferences_Predicate(t *testing.T) {
	openDocument(t, reachability)

	all := referencesAt(t, 0, 1, true)
	assert.Equal(t, []protocol.Location{
		{URI: testURI, Range: rng(0, 0, 0, 4)},
		{URI: testURI, Range: rng(0, 11, 0, 15)},
		{URI: testURI, Range: rng(1, 13, 1, 17)},
		{URI: testURI, Range: rng(2, 24, 2, 28)},
	}, all)

	uses := referencesAt(t, 0, 1, false)
	assert.Equal(t, []protocol.Location{
		{URI: testURI, Range: rng(1, 13, 1, 17)},
		{URI: testURI, Range: rng(2, 24, 2, 28)},
	}, uses)
}

func TestReferences_Variable(t *testing.T) {
	openDocument(t, reachability)

	locations := referencesAt(t, 2, 5, true)
	assert.Equal(t, []protocol.Location{
		{URI: testURI, Range: rng(2, 5, 2, 6)},
		{URI: testURI, Range: rng(2, 18, 2, 19)},
	}, locations)
}

func TestReferences_FollowEdits(t *testing.T) {
	srv := openDocument(t, reachability)

	r := rng(0, 0, 0, 0)
	_, _, err := srv.Documents().ApplyEdits(testURI, 2, []document.Edit{{Range: &r, Text: "edge(0,1).\n"}})
	require.NoError(t, err)

	assert.Len(t, referencesAt(t, 0, 1, true), 5)
	assert.Equal(t, rng(3, 24, 3, 28), referencesAt(t, 3, 25, true)[4].Range)
}

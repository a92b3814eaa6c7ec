package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestWorkspaceSymbol(t *testing.T) {
	srv := openDocument(t, reachability)
	srv.Documents().Open("file:///test/other.lp", 1, "pathway(a).\nq :- path(1,2).\n")

	symbols, err := WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "PATH"})
	require.NoError(t, err)

	var got []string
	for _, s := range symbols {
		got = append(got, s.Name+"@"+s.Location.URI)
	}
	assert.Equal(t, []string{
		"path/2@" + testURI,
		"path/2@" + testURI,
		"pathway/1@file:///test/other.lp",
	}, got)
	require.NotNil(t, symbols[0].ContainerName)
	assert.Equal(t, rng(1, 0, 1, 4), symbols[0].Location.Range)
}

func TestWorkspaceSymbol_EmptyQuery(t *testing.T) {
	openDocument(t, reachability)

	symbols, err := WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{})
	require.NoError(t, err)
	assert.Len(t, symbols, 4)

	symbols, err = WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

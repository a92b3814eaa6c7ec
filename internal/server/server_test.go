package server

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/document"
)

const (
	testURI  = "file:///test.lp"
	testText = "%*# edge(From,To).\nA directed edge.\n#parameters\nFrom : start\nTo : end\n*%\nedge(1,2). path(X,Y) :- edge(X,Y).\n"
)

func insertAt(line, char uint32, text string) document.Edit {
	pos := protocol.Position{Line: line, Character: char}
	return document.Edit{Range: &protocol.Range{Start: pos, End: pos}, Text: text}
}

func TestDocumentStore_Lifecycle(t *testing.T) {
	ds := NewDocumentStore()

	snap := ds.Open(testURI, 1, testText)
	require.NotNil(t, snap)
	assert.Equal(t, int32(1), snap.Version)
	assert.Equal(t, []string{testURI}, ds.List())

	next, dirty, err := ds.ApplyEdits(testURI, 2, []document.Edit{insertAt(6, 0, "node(3). ")})
	require.NoError(t, err)
	assert.False(t, dirty.Empty())
	assert.Equal(t, int32(2), next.Version)
	assert.Contains(t, next.PredicateTable(), analysis.Key{Name: "node", Arity: 1})

	current, ok := ds.Snapshot(testURI)
	require.True(t, ok)
	assert.Same(t, next, current)

	doc, _ := ds.Get(testURI)
	ds.Close(testURI)
	assert.Equal(t, document.StateClosed, doc.State())
	assert.Empty(t, ds.List())

	_, _, err = ds.ApplyEdits(testURI, 3, nil)
	assert.ErrorIs(t, err, ErrUnknownDocument)

	ds.Close(testURI)
}

func TestDocumentStore_InvalidRangeKeepsDocument(t *testing.T) {
	ds := NewDocumentStore()
	before := ds.Open(testURI, 1, testText)

	_, _, err := ds.ApplyEdits(testURI, 2, []document.Edit{insertAt(99, 0, "x")})
	assert.ErrorIs(t, err, document.ErrInvalidRange)

	after, ok := ds.Snapshot(testURI)
	require.True(t, ok)
	assert.Same(t, before, after)
}

func TestDocumentStore_Reopen(t *testing.T) {
	ds := NewDocumentStore()
	ds.Open(testURI, 1, "a.")
	old, _ := ds.Get(testURI)

	snap := ds.Open(testURI, 5, "b.")
	assert.Equal(t, "b.", snap.Text())
	assert.Equal(t, document.StateClosed, old.State())
}

func TestDocumentStore_Rebuild(t *testing.T) {
	ds := NewDocumentStore()
	before := ds.Open(testURI, 1, testText)

	after, err := ds.Rebuild(testURI)
	require.NoError(t, err)
	assert.Equal(t, before.Revision+1, after.Revision)

	_, err = ds.Rebuild("file:///missing.lp")
	assert.ErrorIs(t, err, ErrUnknownDocument)
}

func TestDocumentStore_ConcurrentDocuments(t *testing.T) {
	ds := NewDocumentStore()
	uris := []string{"file:///a.lp", "file:///b.lp", "file:///c.lp"}
	for _, uri := range uris {
		ds.Open(uri, 1, "")
	}

	var wg sync.WaitGroup
	for _, uri := range uris {
		wg.Add(1)
		go func(uri string) {
			defer wg.Done()
			for v := int32(2); v < 50; v++ {
				_, _, err := ds.ApplyEdits(uri, v, []document.Edit{insertAt(0, 0, "p. ")})
				assert.NoError(t, err)
			}
		}(uri)
	}
	wg.Wait()

	for _, uri := range uris {
		snap, ok := ds.Snapshot(uri)
		require.True(t, ok)
		assert.Equal(t, int32(49), snap.Version)
		assert.Len(t, snap.Index.Occurrences(analysis.Key{Name: "p"}), 48)
	}

	ds.Clear()
	assert.Empty(t, ds.List())
}

func TestDocumentationCache(t *testing.T) {
	ds := NewDocumentStore()
	cache := NewDocumentationCache()
	snap := ds.Open(testURI, 1, testText)

	edge := analysis.Key{Name: "edge", Arity: 2}
	p, ok := cache.Lookup(snap, edge)
	require.True(t, ok)
	assert.Equal(t, "A directed edge.", p.Description)

	first := cache.For(snap)
	again := cache.For(snap)
	assert.Equal(t, len(first), len(again))

	// Removing the comment drops the entry on the next revision.
	next, _, err := ds.ApplyEdits(testURI, 2, []document.Edit{{Text: "edge(1,2)."}})
	require.NoError(t, err)
	_, ok = cache.Lookup(next, edge)
	assert.False(t, ok)

	// An older revision does not replace a newer entry.
	cache.For(snap)
	_, ok = cache.Lookup(next, edge)
	assert.False(t, ok)
}

func TestCompletionCache(t *testing.T) {
	cache := NewCompletionCache()
	items := []protocol.CompletionItem{{Label: "edge/2"}}
	snippets := CompletionFlavour{Snippets: true}

	_, ok := cache.Predicates(testURI, 1, snippets)
	assert.False(t, ok)

	cache.SetPredicates(testURI, 1, snippets, items)
	got, ok := cache.Predicates(testURI, 1, snippets)
	require.True(t, ok)
	assert.Equal(t, items, got)

	_, ok = cache.Predicates(testURI, 2, snippets)
	assert.False(t, ok, "new revision")
	_, ok = cache.Predicates(testURI, 1, CompletionFlavour{Snippets: true, Show: true})
	assert.False(t, ok, "other flavour")

	cache.InvalidateDocument(testURI)
	_, ok = cache.Predicates(testURI, 1, snippets)
	assert.False(t, ok)

	builds := 0
	build := func(bool) []protocol.CompletionItem {
		builds++
		return items
	}
	cache.Builtins(true, build)
	cache.Builtins(true, build)
	assert.Equal(t, 1, builds)
}

func TestSemanticTokensCache(t *testing.T) {
	cache := NewSemanticTokensCache()
	tokens := []analysis.SemanticToken{{Line: 0, StartChar: 0, Length: 4, TokenType: 1}}

	entry := cache.Store(testURI, 3, tokens)
	assert.Equal(t, []uint32{0, 0, 4, 1, 0}, entry.Data)
	assert.Equal(t, GenerateResultID(testURI, 3), entry.ResultID)
	assert.NotEqual(t, GenerateResultID(testURI, 4), entry.ResultID)

	got, ok := cache.Get(testURI, 3)
	require.True(t, ok)
	assert.Same(t, entry, got)

	_, ok = cache.Get(testURI, 4)
	assert.False(t, ok)

	cache.Store(testURI, 2, nil)
	_, ok = cache.Get(testURI, 3)
	assert.True(t, ok, "older revision is not stored")

	cache.InvalidateDocument(testURI)
	assert.Equal(t, 0, cache.Size())
}

func TestSupportsSnippets(t *testing.T) {
	var caps protocol.ClientCapabilities
	require.NoError(t, json.Unmarshal(
		[]byte(`{"textDocument":{"completion":{"completionItem":{"snippetSupport":true}}}}`), &caps))

	srv := New(nil)
	assert.False(t, srv.SupportsSnippets(), "no capabilities")

	srv.SetClientCapabilities(&caps)
	assert.True(t, srv.SupportsSnippets())

	srv.UpdateConfig(func(c *Config) { c.Snippets = false })
	assert.False(t, srv.SupportsSnippets(), "disabled by configuration")
}

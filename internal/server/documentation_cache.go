package server

import (
	"sync"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/doccomment"
)

type documentationEntry struct {
	revision uint64
	docs     map[analysis.Key]doccomment.Predicate
}

// DocumentationCache holds the documentation comments extracted from the
// latest revision of each document.
type DocumentationCache struct {
	entries map[string]documentationEntry
	mu      sync.RWMutex
}

// NewDocumentationCache creates an empty cache.
func NewDocumentationCache() *DocumentationCache {
	return &DocumentationCache{
		entries: make(map[string]documentationEntry),
	}
}

// For returns the documentation of a snapshot, extracting it on the first
// request for that revision. The returned map must not be modified.
func (c *DocumentationCache) For(snap *document.Snapshot) map[analysis.Key]doccomment.Predicate {
	c.mu.RLock()
	e, ok := c.entries[snap.URI]
	c.mu.RUnlock()
	if ok && e.revision == snap.Revision {
		return e.docs
	}

	docs := doccomment.Extract(snap.Tree, snap.Buffer.Bytes())

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[snap.URI]; !ok || cur.revision <= snap.Revision {
		c.entries[snap.URI] = documentationEntry{revision: snap.Revision, docs: docs}
	}
	return docs
}

// Lookup returns the documentation of one predicate.
func (c *DocumentationCache) Lookup(snap *document.Snapshot, key analysis.Key) (doccomment.Predicate, bool) {
	p, ok := c.For(snap)[key]
	return p, ok
}

// InvalidateDocument drops the entry of a document.
func (c *DocumentationCache) InvalidateDocument(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, uri)
}

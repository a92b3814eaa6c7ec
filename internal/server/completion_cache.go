package server

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CompletionCache caches completion items that only depend on the document
// revision, such as predicate items, and the built-in items that never
// change.
type CompletionCache struct {
	documentCaches map[string]*DocumentCompletionCache

	// builtins are keyed by whether they were built with snippets.
	builtins map[bool][]protocol.CompletionItem

	mu sync.RWMutex
}

// CompletionFlavour selects how predicate items are rendered.
type CompletionFlavour struct {
	// Snippets inserts argument placeholders.
	Snippets bool
	// Show renders the plain name/arity form used inside #show.
	Show bool
	// Documentation attaches documentation comments.
	Documentation bool
}

// DocumentCompletionCache stores the predicate items of one revision.
type DocumentCompletionCache struct {
	revision uint64
	flavour  CompletionFlavour
	items    []protocol.CompletionItem
}

// NewCompletionCache creates a new completion cache.
func NewCompletionCache() *CompletionCache {
	return &CompletionCache{
		documentCaches: make(map[string]*DocumentCompletionCache),
		builtins:       make(map[bool][]protocol.CompletionItem),
	}
}

// Predicates returns cached predicate items of a revision in the given
// flavour.
func (c *CompletionCache) Predicates(uri string, revision uint64, flavour CompletionFlavour) ([]protocol.CompletionItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dc, ok := c.documentCaches[uri]
	if !ok || dc.revision != revision || dc.flavour != flavour {
		return nil, false
	}
	return dc.items, true
}

// SetPredicates caches predicate items for a revision.
func (c *CompletionCache) SetPredicates(uri string, revision uint64, flavour CompletionFlavour, items []protocol.CompletionItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.documentCaches[uri] = &DocumentCompletionCache{
		revision: revision,
		flavour:  flavour,
		items:    items,
	}
}

// Builtins returns the cached built-in items, building them once.
func (c *CompletionCache) Builtins(snippets bool, build func(snippets bool) []protocol.CompletionItem) []protocol.CompletionItem {
	c.mu.RLock()
	items, ok := c.builtins[snippets]
	c.mu.RUnlock()
	if ok {
		return items
	}

	items = build(snippets)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.builtins[snippets] = items
	return items
}

// InvalidateDocument invalidates the cache for a specific document.
func (c *CompletionCache) InvalidateDocument(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.documentCaches, uri)
}

// Clear clears all cached completion items.
func (c *CompletionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.documentCaches = make(map[string]*DocumentCompletionCache)
	c.builtins = make(map[bool][]protocol.CompletionItem)
}

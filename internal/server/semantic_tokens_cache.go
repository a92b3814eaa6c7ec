package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
)

// CachedTokens is the token set of one document revision.
type CachedTokens struct {
	ResultID string
	Revision uint64
	Tokens   []analysis.SemanticToken
	// Data is Tokens in the encoded wire format.
	Data []uint32
}

// SemanticTokensCache keeps the token set of the latest revision of each
// document, so repeated requests between edits skip the tree walk.
type SemanticTokensCache struct {
	cache map[string]*CachedTokens
	mu    sync.RWMutex
}

// NewSemanticTokensCache creates a new semantic tokens cache.
func NewSemanticTokensCache() *SemanticTokensCache {
	return &SemanticTokensCache{
		cache: make(map[string]*CachedTokens),
	}
}

// GenerateResultID derives the result identifier of a document revision.
func GenerateResultID(uri string, revision uint64) string {
	hash := sha256.New()
	fmt.Fprintf(hash, "%s:%d", uri, revision)
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

// Get returns the cached tokens of uri if they belong to revision.
func (c *SemanticTokensCache) Get(uri string, revision uint64) (*CachedTokens, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.cache[uri]
	if !ok || cached.Revision != revision {
		return nil, false
	}
	return cached, true
}

// Lookup returns the cached tokens of uri if they were sent as resultID.
func (c *SemanticTokensCache) Lookup(uri, resultID string) (*CachedTokens, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.cache[uri]
	if !ok || cached.ResultID != resultID {
		return nil, false
	}
	return cached, true
}

// Store caches tokens for a revision, replacing older revisions. A store for
// an older revision than the cached one is ignored.
func (c *SemanticTokensCache) Store(uri string, revision uint64, tokens []analysis.SemanticToken) *CachedTokens {
	entry := &CachedTokens{
		ResultID: GenerateResultID(uri, revision),
		Revision: revision,
		Tokens:   tokens,
		Data:     analysis.EncodeSemanticTokens(tokens),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.cache[uri]; ok && old.Revision > revision {
		return entry
	}
	c.cache[uri] = entry
	return entry
}

// InvalidateDocument removes the cached tokens of a document.
func (c *SemanticTokensCache) InvalidateDocument(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, uri)
}

// Clear removes all cached tokens.
func (c *SemanticTokensCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*CachedTokens)
}

// Size returns the number of cached documents.
func (c *SemanticTokensCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.cache)
}

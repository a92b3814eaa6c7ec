package server

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/document"
)

// ErrUnknownDocument is returned for a URI that is not open.
var ErrUnknownDocument = errors.New("document is not open")

// DocumentStore maps URIs to open documents. Different documents are edited
// independently; the store only guards the map.
type DocumentStore struct {
	documents map[string]*document.Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*document.Document),
	}
}

// Open parses text and registers the document, replacing a document that
// was open under the same URI.
func (ds *DocumentStore) Open(uri string, version int32, text string) *document.Snapshot {
	doc := document.Open(uri, version, text)

	ds.mu.Lock()
	old := ds.documents[uri]
	ds.documents[uri] = doc
	ds.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return doc.Snapshot()
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (*document.Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]
	return doc, ok
}

// Snapshot returns the latest settled snapshot of a document.
func (ds *DocumentStore) Snapshot(uri string) (*document.Snapshot, bool) {
	doc, ok := ds.Get(uri)
	if !ok {
		return nil, false
	}
	return doc.Snapshot(), true
}

// ApplyEdits applies a batch to an open document. A document that falls
// out of sync is removed; the client has to open it again.
func (ds *DocumentStore) ApplyEdits(uri string, version int32, edits []document.Edit) (*document.Snapshot, analysis.DirtySet, error) {
	doc, ok := ds.Get(uri)
	if !ok {
		return nil, analysis.DirtySet{}, fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}

	dirty, err := doc.ApplyEdits(version, edits)
	if err != nil {
		if errors.Is(err, document.ErrDesynchronized) {
			ds.remove(uri, doc)
		}
		return nil, analysis.DirtySet{}, err
	}
	return doc.Snapshot(), dirty, nil
}

// Rebuild rebuilds the index of an open document from scratch.
func (ds *DocumentStore) Rebuild(uri string) (*document.Snapshot, error) {
	doc, ok := ds.Get(uri)
	if !ok {
		return nil, fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}
	return doc.Rebuild()
}

// Close closes and removes a document. Closing an unknown URI is a no-op.
func (ds *DocumentStore) Close(uri string) {
	ds.mu.Lock()
	doc, ok := ds.documents[uri]
	delete(ds.documents, uri)
	ds.mu.Unlock()

	if ok {
		doc.Close()
	}
}

// remove deletes uri only if it still refers to doc, so a reopened
// document is not lost.
func (ds *DocumentStore) remove(uri string, doc *document.Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.documents[uri] == doc {
		delete(ds.documents, uri)
	}
}

// List returns all document URIs in sorted order.
func (ds *DocumentStore) List() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	uris := make([]string, 0, len(ds.documents))
	for uri := range ds.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	return uris
}

// Clear closes and removes all documents.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	docs := ds.documents
	ds.documents = make(map[string]*document.Document)
	ds.mu.Unlock()

	for _, doc := range docs {
		doc.Close()
	}
}

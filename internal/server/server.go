// Package server provides the core LSP server state and management.
package server

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
)

// Server holds the state of the LSP server.
type Server struct {
	documents *DocumentStore

	documentation *DocumentationCache

	completionCache *CompletionCache

	semanticTokensLegend *analysis.SemanticTokensLegend

	semanticTokensCache *SemanticTokensCache

	workspaceFolders []string

	clientCapabilities *protocol.ClientCapabilities

	config *Config

	// mu protects the fields below documents and the caches
	mu sync.RWMutex

	shuttingDown bool
}

// New creates a server with the given configuration. A nil config means
// DefaultConfig.
func New(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		documents:            NewDocumentStore(),
		documentation:        NewDocumentationCache(),
		completionCache:      NewCompletionCache(),
		semanticTokensLegend: analysis.NewSemanticTokensLegend(),
		semanticTokensCache:  NewSemanticTokensCache(),
		config:               config,
	}
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuttingDown = true
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// Documentation returns the documentation cache.
func (s *Server) Documentation() *DocumentationCache {
	return s.documentation
}

// CompletionCache returns the completion cache.
func (s *Server) CompletionCache() *CompletionCache {
	return s.completionCache
}

// SemanticTokensLegend returns the legend shared by all token requests.
func (s *Server) SemanticTokensLegend() *analysis.SemanticTokensLegend {
	return s.semanticTokensLegend
}

// SemanticTokensCache returns the semantic tokens cache.
func (s *Server) SemanticTokensCache() *SemanticTokensCache {
	return s.semanticTokensCache
}

// Forget drops every cached result derived from a document.
func (s *Server) Forget(uri string) {
	s.documentation.InvalidateDocument(uri)
	s.completionCache.InvalidateDocument(uri)
	s.semanticTokensCache.InvalidateDocument(uri)
}

// Config returns a copy of the server configuration.
func (s *Server) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.config
}

// UpdateConfig calls update with the configuration under the write lock.
func (s *Server) UpdateConfig(update func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(s.config)
}

// SetWorkspaceFolders sets the workspace folders.
func (s *Server) SetWorkspaceFolders(folders []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceFolders = folders
}

// WorkspaceFolders returns the workspace folders.
func (s *Server) WorkspaceFolders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaceFolders
}

// SetClientCapabilities sets the client's capabilities.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientCapabilities = capabilities
}

// ClientCapabilities returns the client's capabilities.
func (s *Server) ClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCapabilities
}

// SupportsSnippets reports whether completion items may use snippet syntax:
// the client has to support it and the configuration must not disable it.
func (s *Server) SupportsSnippets() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.config.Snippets || s.clientCapabilities == nil {
		return false
	}

	td := s.clientCapabilities.TextDocument
	if td == nil || td.Completion == nil || td.Completion.CompletionItem == nil {
		return false
	}

	snippets := td.Completion.CompletionItem.SnippetSupport
	return snippets != nil && *snippets
}

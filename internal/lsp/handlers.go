// Package lsp implements the LSP request and notification handlers on top
// of the document snapshots held by the server.
package lsp

import (
	"github.com/VictosVertex/asp-lsp/internal/logging"
	"github.com/VictosVertex/asp-lsp/internal/server"
)

var log = logging.Get("lsp")

// serverInstance holds the global server instance. It is set by SetServer
// and read by every handler.
var serverInstance *server.Server

// SetServer sets the global server instance for handlers to access.
func SetServer(srv *server.Server) {
	serverInstance = srv
}

func currentServer(method string) (*server.Server, bool) {
	if serverInstance == nil {
		log.Warningf("server instance not available in %s", method)
		return nil, false
	}
	return serverInstance, true
}

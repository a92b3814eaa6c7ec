package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/document"
)

const diagnosticSource = "asp-lsp"

// Diagnostics returns one error diagnostic per error node of the snapshot,
// at most maxProblems of them.
func Diagnostics(snap *document.Snapshot, maxProblems int) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource

	for _, n := range snap.Tree.Errors() {
		if len(diagnostics) >= maxProblems {
			break
		}
		r := snap.Range(n.Span())
		message := n.Text()
		if message == "" {
			message = "syntax error"
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    r,
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})
	}

	sortDiagnostics(diagnostics)
	return diagnostics
}

// PublishDiagnostics sends diagnostics for a document to the client.
func PublishDiagnostics(context *glsp.Context, uri string, diagnostics []protocol.Diagnostic) {
	if context == nil || context.Notify == nil {
		return
	}

	log.Debugf("publishing %d diagnostic(s) for %s", len(diagnostics), uri)
	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// sortDiagnostics sorts diagnostics by start position.
func sortDiagnostics(diagnostics []protocol.Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		if diagnostics[i].Range.Start.Line != diagnostics[j].Range.Start.Line {
			return diagnostics[i].Range.Start.Line < diagnostics[j].Range.Start.Line
		}
		return diagnostics[i].Range.Start.Character < diagnostics[j].Range.Start.Character
	})
}

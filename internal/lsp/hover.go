package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/builtins"
	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/server"
	"github.com/VictosVertex/asp-lsp/internal/syntax"
	"github.com/VictosVertex/asp-lsp/internal/util"
)

// Hover handles the textDocument/hover request.
func Hover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	srv, snap, ok := snapshotFor("Hover", params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	off, err := snap.Offset(params.Position)
	if err != nil {
		return nil, nil
	}
	n, ok := snap.Tree.NodeAt(off)
	if !ok {
		return nil, nil
	}

	switch n.Kind() {
	case syntax.KindKeyword, syntax.KindConstant:
		if b, ok := builtins.Get(n.Text()); ok {
			return markdownHover(snap, n.Span(), fmt.Sprintf("```clingo\n%s\n```\n\n%s", b.Syntax, b.Documentation)), nil
		}
		return nil, nil
	case syntax.KindVariable:
		return variableHover(snap, n), nil
	}

	atom, ok := util.EnclosingAtom(n)
	if !ok {
		return nil, nil
	}
	name, _ := util.Name(atom)
	key := analysis.Key{Name: name.Text(), Arity: analysis.ArityOf(atom)}

	if text, ok := documentedHover(srv, snap, atom, key, off); ok {
		return markdownHover(snap, name.Span(), text), nil
	}
	if atom.Kind() != syntax.KindAtom {
		return nil, nil
	}
	occurrences := snap.Index.Occurrences(key)
	if len(occurrences) == 0 {
		return nil, nil
	}
	return markdownHover(snap, name.Span(), predicateSummary(key, occurrences)), nil
}

// documentedHover renders the documentation comment of key: the argument
// under the cursor, or the whole entry.
func documentedHover(srv *server.Server, snap *document.Snapshot, atom syntax.Node, key analysis.Key, off int) (string, bool) {
	if !srv.Config().Documentation {
		return "", false
	}
	doc, ok := srv.Documentation().Lookup(snap, key)
	if !ok {
		return "", false
	}
	if i, ok := util.ArgumentAt(atom, off); ok {
		if arg, ok := doc.Argument(i); ok {
			return fmt.Sprintf("`%s` - %s", arg.Name, arg.Description), true
		}
	}
	return doc.Markdown(), true
}

func predicateSummary(key analysis.Key, occurrences []analysis.Occurrence) string {
	heads := 0
	for _, o := range occurrences {
		if o.Head {
			heads++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "```clingo\n%s\n```\n\n", key)
	fmt.Fprintf(&sb, "%d %s", len(occurrences), plural(len(occurrences), "occurrence"))
	if heads > 0 {
		fmt.Fprintf(&sb, ", %d in rule heads", heads)
	}
	return sb.String()
}

func variableHover(snap *document.Snapshot, n syntax.Node) *protocol.Hover {
	uses := len(util.Variables(n.Root(), n.Text()))
	return markdownHover(snap, n.Span(),
		fmt.Sprintf("variable `%s`, %d %s in this statement", n.Text(), uses, plural(uses, "occurrence")))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func markdownHover(snap *document.Snapshot, span syntax.Span, text string) *protocol.Hover {
	r := snap.Range(span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
		Range: &r,
	}
}

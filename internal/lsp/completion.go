package lsp

import (
	"fmt"
	"strings"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/builtins"
	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/doccomment"
	"github.com/VictosVertex/asp-lsp/internal/server"
	"github.com/VictosVertex/asp-lsp/internal/syntax"
	"github.com/VictosVertex/asp-lsp/internal/util"
)

// Completion handles the textDocument/completion request. After '#' it
// proposes directives and aggregate functions; elsewhere the variables of
// the enclosing statement and every predicate of the document.
func Completion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	startTime := time.Now()
	empty := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	srv, snap, ok := snapshotFor("Completion", params.TextDocument.URI)
	if !ok {
		return empty, nil
	}
	off, err := snap.Offset(params.Position)
	if err != nil {
		log.Debugf("completion at invalid position: %s", err)
		return empty, nil
	}

	src := snap.Buffer.Bytes()
	word := wordBefore(src, off)

	var items []protocol.CompletionItem
	if strings.HasPrefix(string(src[word:off]), "#") {
		items = builtinItems(srv, snap, word, off)
	} else {
		items = append(variableItems(snap, off), predicateItems(srv, snap, off)...)
	}

	log.Debug("completion",
		"uri", snap.URI,
		"items", len(items),
		"elapsed", time.Since(startTime))
	return &protocol.CompletionList{Items: items}, nil
}

// wordBefore returns the start of the identifier or directive name that
// ends at off.
func wordBefore(src []byte, off int) int {
	start := off
	for start > 0 && isWordByte(src[start-1]) {
		start--
	}
	if start > 0 && src[start-1] == '#' {
		start--
	}
	return start
}

// wordAt returns the identifier around off.
func wordAt(src []byte, off int) string {
	start := off
	for start > 0 && isWordByte(src[start-1]) {
		start--
	}
	end := off
	for end < len(src) && isWordByte(src[end]) {
		end++
	}
	return string(src[start:end])
}

func isWordByte(c byte) bool {
	return c == '_' || c == '\'' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// statementAt returns the statement the cursor is in or directly after.
func statementAt(tree *syntax.Tree, off int) (syntax.Node, bool) {
	i, ok := tree.ItemAt(off)
	if !ok && off > 0 {
		i, ok = tree.ItemAt(off - 1)
	}
	if !ok || tree.Item(i).Kind() != syntax.KindStatement {
		return syntax.Node{}, false
	}
	return tree.Item(i), true
}

func variableItems(snap *document.Snapshot, off int) []protocol.CompletionItem {
	stmt, ok := statementAt(snap.Tree, off)
	if !ok {
		return nil
	}
	kind := protocol.CompletionItemKindVariable
	var items []protocol.CompletionItem
	for _, v := range snap.VariablesOf(stmt.Statement()) {
		items = append(items, protocol.CompletionItem{Label: v, Kind: &kind})
	}
	return items
}

func predicateItems(srv *server.Server, snap *document.Snapshot, off int) []protocol.CompletionItem {
	flavour := server.CompletionFlavour{
		Snippets:      srv.SupportsSnippets(),
		Documentation: srv.Config().Documentation,
	}
	if stmt, ok := statementAt(snap.Tree, off); ok {
		flavour.Show = util.IsShowStatement(stmt)
	}

	all, ok := srv.CompletionCache().Predicates(snap.URI, snap.Revision, flavour)
	if !ok {
		all = buildPredicateItems(srv, snap, flavour)
		srv.CompletionCache().SetPredicates(snap.URI, snap.Revision, flavour, all)
	}

	// A predicate whose only occurrence is the one being typed is not
	// proposed.
	typed := wordAt(snap.Buffer.Bytes(), off)
	if typed == "" {
		return all
	}
	items := make([]protocol.CompletionItem, 0, len(all))
	for _, item := range all {
		if key, ok := keyOf(item); ok && key.Name == typed && len(snap.Index.Occurrences(key)) == 1 {
			continue
		}
		items = append(items, item)
	}
	return items
}

func buildPredicateItems(srv *server.Server, snap *document.Snapshot, flavour server.CompletionFlavour) []protocol.CompletionItem {
	var docs map[analysis.Key]doccomment.Predicate
	if flavour.Documentation {
		docs = srv.Documentation().For(snap)
	}

	kind := protocol.CompletionItemKindField
	keys := snap.Index.Keys()
	items := make([]protocol.CompletionItem, 0, len(keys))
	for _, key := range keys {
		label := key.String()
		item := protocol.CompletionItem{
			Label: label,
			Kind:  &kind,
			Data:  label,
		}

		switch {
		case flavour.Show:
			format := protocol.InsertTextFormatPlainText
			item.InsertText = &label
			item.InsertTextFormat = &format
		case flavour.Snippets:
			snippet := predicateSnippet(key)
			format := protocol.InsertTextFormatSnippet
			item.InsertText = &snippet
			item.InsertTextFormat = &format
		default:
			text := key.Name
			item.InsertText = &text
		}

		if d, ok := docs[key]; ok {
			detail := d.Signature
			item.Detail = &detail
			item.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: d.Markdown()}
		}
		items = append(items, item)
	}
	return items
}

// predicateSnippet inserts the name with one placeholder per argument,
// e.g. "edge(${1:()}, ${2:()})$0".
func predicateSnippet(key analysis.Key) string {
	var sb strings.Builder
	sb.WriteString(key.Name)
	if key.Arity > 0 {
		sb.WriteString("(")
		for i := 1; i <= key.Arity; i++ {
			if i > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "${%d:()}", i)
		}
		sb.WriteString(")")
	}
	sb.WriteString("$0")
	return sb.String()
}

// keyOf recovers the predicate of an item built by buildPredicateItems.
func keyOf(item protocol.CompletionItem) (analysis.Key, bool) {
	label, ok := item.Data.(string)
	if !ok {
		return analysis.Key{}, false
	}
	i := strings.LastIndexByte(label, '/')
	if i < 0 {
		return analysis.Key{}, false
	}
	var arity int
	if _, err := fmt.Sscanf(label[i+1:], "%d", &arity); err != nil {
		return analysis.Key{}, false
	}
	return analysis.Key{Name: label[:i], Arity: arity}, true
}

// builtinItems proposes the built-ins, replacing the text from '#' to the
// cursor.
func builtinItems(srv *server.Server, snap *document.Snapshot, start, off int) []protocol.CompletionItem {
	base := srv.CompletionCache().Builtins(srv.SupportsSnippets(), newBuiltinItems)
	replace := snap.Range(syntax.Span{Start: start, End: off})

	items := make([]protocol.CompletionItem, len(base))
	for i, item := range base {
		text := item.Label
		if item.InsertText != nil {
			text = *item.InsertText
		}
		item.TextEdit = protocol.TextEdit{Range: replace, NewText: text}
		item.InsertText = nil
		items[i] = item
	}
	return items
}

func newBuiltinItems(snippets bool) []protocol.CompletionItem {
	all := builtins.All()
	items := make([]protocol.CompletionItem, 0, len(all))
	for _, b := range all {
		kind := builtinKind(b.Kind)
		syntaxText := b.Syntax
		item := protocol.CompletionItem{
			Label:         b.Name,
			Kind:          &kind,
			Detail:        &syntaxText,
			Documentation: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: b.Documentation},
		}
		if snippets && b.Snippet != "" {
			snippet := b.Snippet
			format := protocol.InsertTextFormatSnippet
			item.InsertText = &snippet
			item.InsertTextFormat = &format
		}
		items = append(items, item)
	}
	return items
}

func builtinKind(k builtins.Kind) protocol.CompletionItemKind {
	switch k {
	case builtins.Aggregate:
		return protocol.CompletionItemKindFunction
	case builtins.Constant:
		return protocol.CompletionItemKindConstant
	}
	return protocol.CompletionItemKindKeyword
}

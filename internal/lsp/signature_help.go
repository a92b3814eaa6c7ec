package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/doccomment"
	"github.com/VictosVertex/asp-lsp/internal/server"
	"github.com/VictosVertex/asp-lsp/internal/util"
)

// SignatureHelp handles textDocument/signatureHelp requests. Every arity
// the predicate under the cursor is used with is one signature.
func SignatureHelp(context *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	srv, snap, ok := snapshotFor("SignatureHelp", params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	off, err := snap.Offset(params.Position)
	if err != nil {
		return nil, nil
	}

	// The argument list being typed usually does not parse yet, so the call
	// is found in the text.
	call, ok := util.CallAt(snap.Buffer.Bytes(), off)
	if !ok {
		return nil, nil
	}

	keys := signatureKeys(snap, call)
	if len(keys) == 0 {
		log.Debugf("signature help: no predicate %s", call.Name)
		return nil, nil
	}

	signatures := make([]protocol.SignatureInformation, 0, len(keys))
	for _, key := range keys {
		signatures = append(signatures, signatureInformation(srv, snap, key))
	}

	activeSignature := determineActiveSignature(keys, call)
	activeParameter := uint32(call.Argument)
	if arity := keys[activeSignature].Arity; call.Argument >= arity && arity > 0 {
		activeParameter = uint32(arity - 1)
	}

	return &protocol.SignatureHelp{
		Signatures:      signatures,
		ActiveSignature: &activeSignature,
		ActiveParameter: &activeParameter,
	}, nil
}

// signatureKeys returns the indexed arities of the called predicate in
// ascending order.
func signatureKeys(snap *document.Snapshot, call util.Call) []analysis.Key {
	var keys []analysis.Key
	for _, k := range snap.Index.Keys() {
		if k.Name == call.Name && k.Arity > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// determineActiveSignature picks the arity that matches the call, or the
// smallest one that can still take the argument at the cursor.
func determineActiveSignature(keys []analysis.Key, call util.Call) uint32 {
	for i, k := range keys {
		if k.Arity == call.Arity {
			return uint32(i)
		}
	}
	for i, k := range keys {
		if k.Arity > call.Argument {
			return uint32(i)
		}
	}
	return uint32(len(keys) - 1)
}

func signatureInformation(srv *server.Server, snap *document.Snapshot, key analysis.Key) protocol.SignatureInformation {
	var doc doccomment.Predicate
	documented := false
	if srv.Config().Documentation {
		doc, documented = srv.Documentation().Lookup(snap, key)
	}

	names := make([]string, key.Arity)
	for i := range names {
		if documented && i < len(doc.Parameters) {
			names[i] = doc.Parameters[i]
		} else {
			names[i] = fmt.Sprintf("T%d", i+1)
		}
	}

	info := protocol.SignatureInformation{
		Label: key.Name + "(" + strings.Join(names, ", ") + ")",
	}
	if documented && doc.Description != "" {
		info.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: doc.Description}
	}

	// Parameter labels are offsets into the signature label so that
	// repeated names are highlighted correctly.
	start := uint32(len(key.Name) + 1)
	for i, name := range names {
		end := start + uint32(len(name))
		param := protocol.ParameterInformation{Label: []uint32{start, end}}
		if documented {
			if arg, ok := doc.Argument(i); ok {
				param.Documentation = arg.Description
			}
		}
		info.Parameters = append(info.Parameters, param)
		start = end + 2
	}
	return info
}

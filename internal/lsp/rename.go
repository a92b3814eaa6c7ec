package lsp

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/document"
	"github.com/VictosVertex/asp-lsp/internal/util"
)

var (
	predicateName = regexp.MustCompile(`^_*[a-z][A-Za-z0-9_']*$`)
	variableName  = regexp.MustCompile(`^_*[A-Z][A-Za-z0-9_']*$`)
)

// Words the lexer never reads as identifiers.
var reservedWords = map[string]bool{
	"not": true,
}

// Rename handles the textDocument/rename request. Predicates are renamed
// in every statement of the document, variables only in their statement.
func Rename(context *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	_, snap, ok := snapshotFor("Rename", params.TextDocument.URI)
	if !ok {
		return nil, fmt.Errorf("document not found: %s", params.TextDocument.URI)
	}
	si, ok := IdentifySymbolAtPosition(snap, params.Position)
	if !ok {
		return nil, errors.New("no symbol found at cursor position")
	}
	if err := validateNewName(si, params.NewName); err != nil {
		log.Infof("rename of %s rejected: %v", si, err)
		return nil, err
	}

	var locations []protocol.Location
	if si.Kind == SymbolKindVariable {
		locations = variableLocations(snap, si.Node)
	} else {
		locations = occurrenceLocations(snap, snap.Index.Occurrences(si.Key))
		locations = append(locations, signatureLocations(snap, si.Key)...)
		sortLocations(locations)
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("no references found for symbol '%s'", si.Name)
	}

	log.Debugf("renaming %s to %s at %d location(s)", si, params.NewName, len(locations))
	return buildWorkspaceEdit(locations, params.NewName), nil
}

// PrepareRename handles the textDocument/prepareRename request.
func PrepareRename(context *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	_, snap, ok := snapshotFor("PrepareRename", params.TextDocument.URI)
	if !ok {
		return nil, fmt.Errorf("document not found: %s", params.TextDocument.URI)
	}
	si, ok := IdentifySymbolAtPosition(snap, params.Position)
	if !ok {
		return nil, errors.New("no symbol found at cursor position")
	}
	return prepareResult(snap, si), nil
}

type renamePlaceholder struct {
	Range       protocol.Range `json:"range"`
	Placeholder string         `json:"placeholder"`
}

func prepareResult(snap *document.Snapshot, si *SymbolInfo) renamePlaceholder {
	return renamePlaceholder{Range: snap.Range(si.Span), Placeholder: si.Name}
}

func validateNewName(si *SymbolInfo, newName string) error {
	if newName == "" {
		return errors.New("new name cannot be empty")
	}
	if reservedWords[newName] {
		return fmt.Errorf("'%s' is a reserved word", newName)
	}
	switch si.Kind {
	case SymbolKindVariable:
		if !variableName.MatchString(newName) {
			return fmt.Errorf("'%s' is not a variable name", newName)
		}
	default:
		if !predicateName.MatchString(newName) {
			return fmt.Errorf("'%s' is not a predicate name", newName)
		}
	}
	return nil
}

func buildWorkspaceEdit(locations []protocol.Location, newName string) *protocol.WorkspaceEdit {
	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	for _, loc := range locations {
		changes[loc.URI] = append(changes[loc.URI], protocol.TextEdit{Range: loc.Range, NewText: newName})
	}
	return &protocol.WorkspaceEdit{Changes: changes}
}

// signatureLocations returns the name of every name/arity term in a
// directive, like the p of "#show p/1.", that refers to key.
func signatureLocations(snap *document.Snapshot, key analysis.Key) []protocol.Location {
	var locations []protocol.Location
	for i := 0; i < snap.Tree.Count(); i++ {
		for _, sig := range util.Signatures(snap.Tree.Item(i)) {
			if sig.Arity == key.Arity && sig.Name.Text() == key.Name {
				locations = append(locations, protocol.Location{URI: snap.URI, Range: snap.Range(sig.Name.Span())})
			}
		}
	}
	return locations
}

func sortLocations(locations []protocol.Location) {
	sort.SliceStable(locations, func(i, j int) bool {
		a, b := locations[i].Range.Start, locations[j].Range.Start
		return a.Line < b.Line || a.Line == b.Line && a.Character < b.Character
	})
}

package lsp

import (
	"testing"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
)

func TestIdentifySymbolAtPosition(t *testing.T) {
	srv := openDocument(t, reachability)
	snap, _ := srv.Documents().Snapshot(testURI)

	tests := []struct {
		name      string
		line      uint32
		char      uint32
		wantKind  SymbolKind
		wantName  string
		wantArity int
	}{
		{"predicate in body", 2, 14, SymbolKindPredicate, "path", 2},
		{"cursor behind name", 2, 17, SymbolKindPredicate, "path", 2},
		{"fact", 0, 12, SymbolKindPredicate, "edge", 2},
		{"head", 1, 0, SymbolKindPredicate, "path", 2},
		{"variable", 2, 29, SymbolKindVariable, "Y", 0},
		{"behind variable", 2, 19, SymbolKindVariable, "X", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			si, ok := IdentifySymbolAtPosition(snap, pos(tt.line, tt.char))
			if !ok {
				t.Fatalf("no symbol at %d:%d", tt.line, tt.char)
			}
			if si.Kind != tt.wantKind || si.Name != tt.wantName {
				t.Errorf("got %s, want %s %s", si, tt.wantKind, tt.wantName)
			}
			if tt.wantKind == SymbolKindPredicate && si.Key != (analysis.Key{Name: tt.wantName, Arity: tt.wantArity}) {
				t.Errorf("key = %s", si.Key)
			}
		})
	}
}

func TestIdentifySymbolAtPosition_None(t *testing.T) {
	srv := openDocument(t, "p(1) :- q.\n\n")
	snap, _ := srv.Documents().Snapshot(testURI)

	for _, p := range []struct{ line, char uint32 }{{0, 2}, {0, 6}, {1, 0}, {5, 0}} {
		if si, ok := IdentifySymbolAtPosition(snap, pos(p.line, p.char)); ok {
			t.Errorf("%d:%d: unexpected symbol %s", p.line, p.char, si)
		}
	}
}

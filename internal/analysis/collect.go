package analysis

import (
	"sort"

	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// statementFacts is what one statement contributes to the index.
type statementFacts struct {
	keys      []Key
	byKey     map[Key][]Occurrence
	variables []string
	malformed bool
}

// collect walks one top-level statement. A statement containing an error
// node keeps its variables but contributes no occurrences.
func collect(stmt syntax.Node) statementFacts {
	f := statementFacts{malformed: stmt.HasError()}
	seen := make(map[string]bool)

	stmt.Walk(func(n syntax.Node) bool {
		switch n.Kind() {
		case syntax.KindVariable:
			if !seen[n.Text()] {
				seen[n.Text()] = true
				f.variables = append(f.variables, n.Text())
			}
		case syntax.KindAtom:
			if f.malformed {
				break
			}
			occ, key, ok := occurrenceOf(n)
			if !ok {
				break
			}
			if f.byKey == nil {
				f.byKey = make(map[Key][]Occurrence)
			}
			if _, dup := f.byKey[key]; !dup {
				f.keys = append(f.keys, key)
			}
			f.byKey[key] = append(f.byKey[key], occ)
		}
		return true
	})

	sort.Strings(f.variables)
	return f
}

// occurrenceOf describes an atom node. Spans are relative to the statement.
func occurrenceOf(atom syntax.Node) (Occurrence, Key, bool) {
	name, ok := atom.FirstChild(syntax.KindIdentifier)
	if !ok {
		return Occurrence{}, Key{}, false
	}
	key := Key{Name: name.Text(), Arity: ArityOf(atom)}
	return Occurrence{
		Statement: atom.Statement(),
		Node:      atom.ID(),
		Span:      atom.Local(),
		Name:      name.Local(),
		Head:      inHead(atom),
	}, key, true
}

// ArityOf returns the number of arguments an atom or function term is
// applied with. For a pool the first alternative counts.
func ArityOf(n syntax.Node) int {
	args, ok := n.FirstChild(syntax.KindArguments)
	if !ok {
		return 0
	}
	return args.ChildCount()
}

// inHead reports whether the atom is defined by its statement: it sits in
// the head and not in the condition of a conditional literal.
func inHead(atom syntax.Node) bool {
	for p, ok := atom.Parent(); ok; p, ok = p.Parent() {
		switch p.Kind() {
		case syntax.KindCondition:
			return false
		case syntax.KindHead:
			return true
		}
	}
	return false
}

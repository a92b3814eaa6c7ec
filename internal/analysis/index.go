// Package analysis derives semantic facts from the syntax tree: the table of
// predicate occurrences and the variables of each statement. The index is
// updated statement by statement over the byte ranges an edit batch made
// dirty.
package analysis

import (
	"fmt"
	"sort"

	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// Key identifies a predicate by name and arity.
type Key struct {
	Name  string
	Arity int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Name, k.Arity)
}

// Occurrence is one atom of a statement. Spans are relative to the start of
// the owning statement so they survive edits before it.
type Occurrence struct {
	Statement syntax.StatementID
	Node      syntax.NodeID
	Span      syntax.Span
	Name      syntax.Span
	// Head is set when the atom is defined by the statement.
	Head bool
}

type scope struct {
	variables []string
	keys      []Key
	malformed bool
}

// Index is the predicate table and the statement scopes of one document
// version. An Index is never modified after it is returned; Update builds a
// new one that shares the unchanged parts.
type Index struct {
	facts  map[Key][]Occurrence
	scopes map[syntax.StatementID]*scope
}

// Build indexes every statement of the tree.
func Build(tree *syntax.Tree) *Index {
	idx := &Index{
		facts:  make(map[Key][]Occurrence),
		scopes: make(map[syntax.StatementID]*scope, tree.Count()),
	}
	for i := 0; i < tree.Count(); i++ {
		stmt := tree.Item(i)
		if stmt.Kind() != syntax.KindStatement {
			continue
		}
		f := collect(stmt)
		for _, k := range f.keys {
			idx.facts[k] = append(idx.facts[k], f.byKey[k]...)
		}
		idx.scopes[stmt.Statement()] = &scope{variables: f.variables, keys: f.keys, malformed: f.malformed}
	}
	return idx
}

// Update returns the index for tree, a reparse of the tree idx was built
// for. Statements that were dropped by the reparse are removed; statements
// overlapping the dirty set are recomputed. Everything else is shared with
// idx as is.
func (idx *Index) Update(tree *syntax.Tree, dropped []syntax.StatementID, dirty DirtySet) *Index {
	if len(dropped) == 0 && dirty.Empty() {
		return idx
	}
	next := idx.clone()
	for _, id := range dropped {
		next.remove(id)
	}

	last := -1
	for _, d := range dirty.spans {
		for i := max(tree.FirstEndingAfter(d.Start), last+1); i < tree.Count(); i++ {
			if tree.ItemSpan(i).Start >= d.End {
				break
			}
			last = i
			next.refresh(tree, i)
		}
	}
	return next
}

func (idx *Index) clone() *Index {
	c := &Index{
		facts:  make(map[Key][]Occurrence, len(idx.facts)),
		scopes: make(map[syntax.StatementID]*scope, len(idx.scopes)),
	}
	for k, v := range idx.facts {
		c.facts[k] = v
	}
	for k, v := range idx.scopes {
		c.scopes[k] = v
	}
	return c
}

// refresh replaces whatever the i-th item contributed with what it
// contributes now.
func (idx *Index) refresh(tree *syntax.Tree, i int) {
	stmt := tree.Item(i)
	id := stmt.Statement()
	idx.remove(id)
	if stmt.Kind() != syntax.KindStatement {
		return
	}

	f := collect(stmt)
	for _, k := range f.keys {
		list := idx.facts[k]
		at := sort.Search(len(list), func(j int) bool {
			pos, _ := tree.IndexOf(list[j].Statement)
			return pos >= i
		})
		merged := make([]Occurrence, 0, len(list)+len(f.byKey[k]))
		merged = append(merged, list[:at]...)
		merged = append(merged, f.byKey[k]...)
		merged = append(merged, list[at:]...)
		idx.facts[k] = merged
	}
	idx.scopes[id] = &scope{variables: f.variables, keys: f.keys, malformed: f.malformed}
}

func (idx *Index) remove(id syntax.StatementID) {
	sc, ok := idx.scopes[id]
	if !ok {
		return
	}
	delete(idx.scopes, id)
	for _, k := range sc.keys {
		list := idx.facts[k]
		kept := make([]Occurrence, 0, len(list))
		for _, o := range list {
			if o.Statement != id {
				kept = append(kept, o)
			}
		}
		if len(kept) == 0 {
			delete(idx.facts, k)
		} else {
			idx.facts[k] = kept
		}
	}
}

// PredicateTable returns every predicate with its occurrences in document
// order. The slices are shared and must not be modified.
func (idx *Index) PredicateTable() map[Key][]Occurrence {
	out := make(map[Key][]Occurrence, len(idx.facts))
	for k, v := range idx.facts {
		out[k] = v
	}
	return out
}

// Occurrences returns the occurrences of one predicate in document order.
func (idx *Index) Occurrences(k Key) []Occurrence {
	return idx.facts[k]
}

// Keys returns the indexed predicates sorted by name, then arity.
func (idx *Index) Keys() []Key {
	keys := make([]Key, 0, len(idx.facts))
	for k := range idx.facts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Arity < keys[j].Arity
	})
	return keys
}

// VariablesOf returns the sorted distinct variable names of a statement.
func (idx *Index) VariablesOf(id syntax.StatementID) []string {
	sc, ok := idx.scopes[id]
	if !ok {
		return nil
	}
	return sc.variables
}

// Malformed reports whether the statement contains a parse error.
func (idx *Index) Malformed(id syntax.StatementID) bool {
	sc, ok := idx.scopes[id]
	return ok && sc.malformed
}

// Reference is the indexed atom found at a position.
type Reference struct {
	Key Key
	// Index is the position of the occurrence in the predicate's list.
	Index      int
	Occurrence Occurrence
}

// IdentifierAt returns the indexed atom whose span contains off.
func (idx *Index) IdentifierAt(tree *syntax.Tree, off int) (Reference, bool) {
	n, ok := tree.NodeAt(off)
	if !ok {
		return Reference{}, false
	}
	for ; ; n, ok = n.Parent() {
		if !ok {
			return Reference{}, false
		}
		if n.Kind() == syntax.KindAtom {
			break
		}
	}

	occ, key, ok := occurrenceOf(n)
	if !ok {
		return Reference{}, false
	}
	for i, o := range idx.facts[key] {
		if o.Statement == occ.Statement && o.Node == occ.Node {
			return Reference{Key: key, Index: i, Occurrence: o}, true
		}
	}
	return Reference{}, false
}

// Locate returns the absolute span of an occurrence in tree and of its name.
func Locate(tree *syntax.Tree, o Occurrence) (span, name syntax.Span, ok bool) {
	i, ok := tree.IndexOf(o.Statement)
	if !ok {
		return syntax.Span{}, syntax.Span{}, false
	}
	start := tree.ItemSpan(i).Start
	return o.Span.Shift(start), o.Name.Shift(start), true
}

// ResolvedOccurrence is an occurrence with absolute spans.
type ResolvedOccurrence struct {
	Span syntax.Span
	Name syntax.Span
	Head bool
}

// View is an index with statement identities replaced by positions. Two
// indexes of the same text have equal views regardless of how they were
// built.
type View struct {
	Facts  map[Key][]ResolvedOccurrence
	Scopes map[int][]string
}

// Resolve maps the index onto the positions of tree.
func (idx *Index) Resolve(tree *syntax.Tree) View {
	v := View{
		Facts:  make(map[Key][]ResolvedOccurrence, len(idx.facts)),
		Scopes: make(map[int][]string, len(idx.scopes)),
	}
	for k, list := range idx.facts {
		out := make([]ResolvedOccurrence, 0, len(list))
		for _, o := range list {
			span, name, ok := Locate(tree, o)
			if !ok {
				// Points at a statement the tree does not have; keep it
				// visible so comparisons fail.
				span = syntax.Span{Start: -1, End: -1}
			}
			out = append(out, ResolvedOccurrence{Span: span, Name: name, Head: o.Head})
		}
		v.Facts[k] = out
	}
	for id, sc := range idx.scopes {
		start := -1
		if i, ok := tree.IndexOf(id); ok {
			start = tree.ItemSpan(i).Start
		}
		v.Scopes[start] = sc.variables
	}
	return v
}

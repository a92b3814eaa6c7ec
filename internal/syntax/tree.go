// Package syntax provides the parse tree of clingo source files.
//
// A Tree is a sequence of top-level items (statements and comments). Each
// item owns a small arena of nodes whose spans are relative to the item's
// start, so an item can be shared unchanged between tree versions while the
// text before it grows or shrinks. Nodes link to their parent and children
// by index into that arena.
package syntax

import (
	"errors"
	"sort"
)

// ErrDesynchronized reports that a tree and the text it is applied to no
// longer describe the same document.
var ErrDesynchronized = errors.New("syntax tree out of sync with source")

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether off lies inside the span.
func (s Span) Contains(off int) bool {
	return s.Start <= off && off < s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Shift moves the span by delta bytes.
func (s Span) Shift(delta int) Span {
	return Span{s.Start + delta, s.End + delta}
}

// Point is a row and byte column.
type Point struct {
	Row    int
	Column int
}

// StatementID identifies a top-level item across tree versions. It is kept
// for as long as the item is reused or reparsed in place.
type StatementID uint64

// NodeID addresses a node inside its item's arena.
type NodeID int32

// NoNode is the parent of an item root.
const NoNode NodeID = -1

type node struct {
	kind     Kind
	span     Span
	parent   NodeID
	children []NodeID
	// text holds the spelling of identifiers, variables, keywords and
	// operators, and the message of error nodes.
	text string
}

// item is one top-level statement or comment. Items are never modified
// once parsed.
type item struct {
	id       StatementID
	nodes    []node
	width    int
	look     int
	hasError bool
}

// Tree is one version of a document's parse tree. A tree returned by Parse
// or Reparse is never modified; Edit is only called on a Clone.
type Tree struct {
	items  []*item
	starts []int
	ends   []int
	// changed marks items whose examined bytes were touched by an edit.
	changed []bool
	byID    map[StatementID]int
	length  int
	nextID  StatementID
	edited  bool
}

// Parse builds a tree for src from scratch.
func Parse(src []byte) *Tree {
	t, _ := Reparse(src, nil)
	return t
}

// Len returns the length in bytes of the text the tree describes.
func (t *Tree) Len() int {
	return t.length
}

// Count returns the number of top-level items.
func (t *Tree) Count() int {
	return len(t.items)
}

// Item returns the root node of the i-th top-level item.
func (t *Tree) Item(i int) Node {
	return Node{tree: t, item: i, id: 0}
}

// ItemID returns the statement ID of the i-th top-level item.
func (t *Tree) ItemID(i int) StatementID {
	return t.items[i].id
}

// ItemSpan returns the absolute span of the i-th top-level item.
func (t *Tree) ItemSpan(i int) Span {
	return Span{t.starts[i], t.ends[i]}
}

// IndexOf returns the position of the item with the given ID.
func (t *Tree) IndexOf(id StatementID) (int, bool) {
	i, ok := t.byID[id]
	return i, ok
}

// Statement returns the root node of the item with the given ID.
func (t *Tree) Statement(id StatementID) (Node, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Node{}, false
	}
	return t.Item(i), true
}

// ItemAt returns the index of the item whose span contains off.
func (t *Tree) ItemAt(off int) (int, bool) {
	i := sort.Search(len(t.items), func(i int) bool { return t.ends[i] > off })
	if i < len(t.items) && t.starts[i] <= off {
		return i, true
	}
	return 0, false
}

// FirstEndingAfter returns the index of the first item that ends after off.
func (t *Tree) FirstEndingAfter(off int) int {
	return sort.Search(len(t.items), func(i int) bool { return t.ends[i] > off })
}

// NodeAt returns the deepest node whose span contains off.
func (t *Tree) NodeAt(off int) (Node, bool) {
	i, ok := t.ItemAt(off)
	if !ok {
		return Node{}, false
	}
	it := t.items[i]
	rel := off - t.starts[i]
	id := NodeID(0)
descend:
	for {
		for _, c := range it.nodes[id].children {
			if it.nodes[c].span.Contains(rel) {
				id = c
				continue descend
			}
		}
		return Node{tree: t, item: i, id: id}, true
	}
}

// Errors returns every error node in document order.
func (t *Tree) Errors() []Node {
	var out []Node
	for i, it := range t.items {
		if !it.hasError {
			continue
		}
		t.Item(i).Walk(func(n Node) bool {
			if n.Kind() == KindError {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// Clone returns a copy that can be edited without affecting t.
func (t *Tree) Clone() *Tree {
	c := *t
	c.items = append([]*item(nil), t.items...)
	c.starts = append([]int(nil), t.starts...)
	c.ends = append([]int(nil), t.ends...)
	if t.changed != nil {
		c.changed = append([]bool(nil), t.changed...)
	}
	return &c
}

func (t *Tree) isChanged(i int) bool {
	return t.changed != nil && t.changed[i]
}

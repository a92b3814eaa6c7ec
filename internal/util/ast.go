// Package util provides common utility functions used across the LSP server.
package util

import (
	"strconv"

	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// EnclosingAtom returns the innermost atom or function term containing n,
// including n itself.
func EnclosingAtom(n syntax.Node) (syntax.Node, bool) {
	for ok := true; ok; n, ok = n.Parent() {
		switch n.Kind() {
		case syntax.KindAtom, syntax.KindFunction:
			if _, named := n.FirstChild(syntax.KindIdentifier); named {
				return n, true
			}
		}
	}
	return syntax.Node{}, false
}

// ArgumentAt returns the index of the argument of atom that contains off.
// Offsets in nested terms count for the outer argument.
func ArgumentAt(atom syntax.Node, off int) (int, bool) {
	args, ok := atom.FirstChild(syntax.KindArguments)
	if !ok {
		return 0, false
	}
	for i, a := range args.Children() {
		if a.Span().Contains(off) {
			return i, true
		}
	}
	return 0, false
}

// IsShowStatement reports whether the statement is a #show directive.
func IsShowStatement(stmt syntax.Node) bool {
	d, ok := stmt.FirstChild(syntax.KindDirective)
	if !ok || d.ChildCount() == 0 {
		return false
	}
	kw := d.Child(0)
	return kw.Kind() == syntax.KindKeyword && kw.Text() == "#show"
}

// Variables returns the variable nodes named name in the subtree of n, in
// document order.
func Variables(n syntax.Node, name string) []syntax.Node {
	var out []syntax.Node
	n.Walk(func(c syntax.Node) bool {
		if c.Kind() == syntax.KindVariable && c.Text() == name {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Name returns the identifier of an atom or function term.
func Name(n syntax.Node) (syntax.Node, bool) {
	return n.FirstChild(syntax.KindIdentifier)
}

// Signature is a name/arity term such as the p/1 of "#show p/1.".
type Signature struct {
	Name  syntax.Node
	Arity int
}

// Signatures returns the name/arity terms given directly to the directive
// of stmt, in document order.
func Signatures(stmt syntax.Node) []Signature {
	d, ok := stmt.FirstChild(syntax.KindDirective)
	if !ok {
		return nil
	}
	var out []Signature
	for _, c := range d.Children() {
		if s, ok := signature(c); ok {
			out = append(out, s)
		}
	}
	return out
}

func signature(n syntax.Node) (Signature, bool) {
	if n.Kind() != syntax.KindBinary || n.Text() != "/" || n.ChildCount() != 2 {
		return Signature{}, false
	}
	name, arity := n.Child(0), n.Child(1)
	if name.Kind() == syntax.KindUnary && name.Text() == "-" && name.ChildCount() == 1 {
		name = name.Child(0)
	}
	if name.Kind() != syntax.KindFunction || name.ChildCount() != 1 || arity.Kind() != syntax.KindNumber {
		return Signature{}, false
	}
	a, err := strconv.Atoi(arity.Text())
	if err != nil {
		return Signature{}, false
	}
	return Signature{Name: name.Child(0), Arity: a}, true
}

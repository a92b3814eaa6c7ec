package syntax

// Kind tags a node.
type Kind uint8

const (
	KindStatement Kind = iota
	KindComment
	KindHead
	KindBody
	KindLiteral
	KindConditional
	KindCondition
	KindAtom
	KindIdentifier
	KindArguments
	KindFunction
	KindVariable
	KindAnonymous
	KindNumber
	KindString
	KindConstant
	KindTuple
	KindUnary
	KindBinary
	KindAbs
	KindComparison
	KindAggregate
	KindElement
	KindGuard
	KindDirective
	KindKeyword
	KindWeight
	KindError
)

var kindNames = [...]string{
	KindStatement:   "statement",
	KindComment:     "comment",
	KindHead:        "head",
	KindBody:        "body",
	KindLiteral:     "literal",
	KindConditional: "conditional",
	KindCondition:   "condition",
	KindAtom:        "atom",
	KindIdentifier:  "identifier",
	KindArguments:   "arguments",
	KindFunction:    "function",
	KindVariable:    "variable",
	KindAnonymous:   "anonymous",
	KindNumber:      "number",
	KindString:      "string",
	KindConstant:    "constant",
	KindTuple:       "tuple",
	KindUnary:       "unary",
	KindBinary:      "binary",
	KindAbs:         "abs",
	KindComparison:  "comparison",
	KindAggregate:   "aggregate",
	KindElement:     "element",
	KindGuard:       "guard",
	KindDirective:   "directive",
	KindKeyword:     "keyword",
	KindWeight:      "weight",
	KindError:       "ERROR",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is a handle to one node of a tree version. The zero Node is not
// valid.
type Node struct {
	tree *Tree
	item int
	id   NodeID
}

func (n Node) raw() *node {
	return &n.tree.items[n.item].nodes[n.id]
}

// Valid reports whether n refers to a node.
func (n Node) Valid() bool {
	return n.tree != nil
}

// ID returns the node's index within its statement.
func (n Node) ID() NodeID {
	return n.id
}

// Kind returns the node's kind tag.
func (n Node) Kind() Kind {
	return n.raw().kind
}

// Span returns the node's absolute byte range.
func (n Node) Span() Span {
	return n.raw().span.Shift(n.tree.starts[n.item])
}

// Local returns the node's byte range relative to its statement start.
func (n Node) Local() Span {
	return n.raw().span
}

// Text returns the spelling stored on identifiers, variables, keywords and
// operators, or the message of an error node.
func (n Node) Text() string {
	return n.raw().text
}

// Statement returns the ID of the top-level item the node belongs to.
func (n Node) Statement() StatementID {
	return n.tree.items[n.item].id
}

// Root returns the top-level item node containing n.
func (n Node) Root() Node {
	return Node{tree: n.tree, item: n.item, id: 0}
}

// Parent returns the parent node, or false for a top-level item.
func (n Node) Parent() (Node, bool) {
	p := n.raw().parent
	if p == NoNode {
		return Node{}, false
	}
	return Node{tree: n.tree, item: n.item, id: p}, true
}

// ChildCount returns the number of children.
func (n Node) ChildCount() int {
	return len(n.raw().children)
}

// Child returns the i-th child.
func (n Node) Child(i int) Node {
	return Node{tree: n.tree, item: n.item, id: n.raw().children[i]}
}

// Children returns the children in document order.
func (n Node) Children() []Node {
	ids := n.raw().children
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{tree: n.tree, item: n.item, id: id}
	}
	return out
}

// FirstChild returns the first child of the given kind.
func (n Node) FirstChild(kind Kind) (Node, bool) {
	for _, id := range n.raw().children {
		if n.tree.items[n.item].nodes[id].kind == kind {
			return Node{tree: n.tree, item: n.item, id: id}, true
		}
	}
	return Node{}, false
}

// HasError reports whether the subtree rooted at n contains an error node.
func (n Node) HasError() bool {
	if n.id == 0 {
		return n.tree.items[n.item].hasError
	}
	found := false
	n.Walk(func(c Node) bool {
		if c.Kind() == KindError {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits the subtree rooted at n in document order. Children of a node
// are skipped when fn returns false for it.
func (n Node) Walk(fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, id := range n.raw().children {
		Node{tree: n.tree, item: n.item, id: id}.Walk(fn)
	}
}

package syntax

import (
	"fmt"
	"strings"
)

// String renders the tree as an s-expression with absolute spans. Two trees
// print the same exactly when they have the same shape over the same text.
func (t *Tree) String() string {
	var sb strings.Builder
	for i := range t.items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		dumpNode(&sb, t.Item(i))
	}
	return sb.String()
}

func dumpNode(sb *strings.Builder, n Node) {
	s := n.Span()
	fmt.Fprintf(sb, "(%s %d-%d", n.Kind(), s.Start, s.End)
	if text := n.Text(); text != "" {
		fmt.Fprintf(sb, " %q", text)
	}
	for _, c := range n.Children() {
		sb.WriteByte(' ')
		dumpNode(sb, c)
	}
	sb.WriteByte(')')
}

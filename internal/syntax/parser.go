package syntax

import "fmt"

// parser builds one top-level item at a time. After a syntax error it
// records an error node, skips to the terminating period and keeps going,
// so a broken statement never affects its neighbours.
type parser struct {
	lex     *lexer
	base    int
	nodes   []node
	tok     token
	prevEnd int
	failed  bool
	hasErr  bool
	// inWeight stops error recovery at ']' while parsing a weight tuple.
	inWeight bool
}

func newParser(src []byte) *parser {
	return &parser{lex: newLexer(src)}
}

// nextStart returns the first non-space offset at or after pos.
func (p *parser) nextStart(pos int) int {
	p.lex.seek(pos)
	return p.lex.skipSpace()
}

func (p *parser) parseItem(start int) *item {
	p.lex.seek(start)
	p.lex.resetLook(start)
	p.base = start
	p.nodes = nil
	p.failed = false
	p.hasErr = false
	p.inWeight = false
	p.prevEnd = start

	p.tok = p.lex.next()
	if p.tok.isComment() {
		p.add(KindComment, NoNode, start)
		p.prevEnd = p.tok.span.End
		p.close(0)
	} else {
		p.statement(start)
	}

	return &item{
		nodes:    p.nodes,
		width:    p.prevEnd - start,
		look:     p.lex.look - start,
		hasError: p.hasErr,
	}
}

func (p *parser) advance() {
	for {
		p.tok = p.lex.next()
		if !p.tok.isComment() {
			return
		}
	}
}

// next consumes the current token.
func (p *parser) next() {
	p.prevEnd = p.tok.span.End
	p.advance()
}

func (p *parser) add(kind Kind, parent NodeID, start int) NodeID {
	id := NodeID(len(p.nodes))
	rel := start - p.base
	p.nodes = append(p.nodes, node{kind: kind, span: Span{rel, rel}, parent: parent})
	if parent != NoNode {
		p.nodes[parent].children = append(p.nodes[parent].children, id)
	}
	return id
}

// close ends the node at the last consumed token.
func (p *parser) close(id NodeID) {
	end := p.prevEnd - p.base
	if end < p.nodes[id].span.Start {
		end = p.nodes[id].span.Start
	}
	p.nodes[id].span.End = end
}

// leaf consumes the current token as a node of the given kind.
func (p *parser) leaf(kind Kind, parent NodeID) NodeID {
	id := p.add(kind, parent, p.tok.span.Start)
	p.nodes[id].text = p.spelling()
	p.next()
	p.close(id)
	return id
}

// wrap inserts a new node of the given kind between child and its parent.
func (p *parser) wrap(child NodeID, kind Kind) NodeID {
	parent := p.nodes[child].parent
	start := p.nodes[child].span.Start
	id := NodeID(len(p.nodes))
	p.nodes = append(p.nodes, node{
		kind:     kind,
		span:     Span{start, start},
		parent:   parent,
		children: []NodeID{child},
	})
	if parent != NoNode {
		siblings := p.nodes[parent].children
		siblings[len(siblings)-1] = id
	}
	p.nodes[child].parent = id
	return id
}

func (p *parser) spelling() string {
	if p.tok.text != "" {
		return p.tok.text
	}
	return string(p.lex.src[p.tok.span.Start:p.tok.span.End])
}

func (p *parser) describe() string {
	switch p.tok.kind {
	case tokEOF:
		return "end of input"
	case tokInvalid:
		return p.tok.message
	}
	return fmt.Sprintf("'%s'", p.spelling())
}

// fail records an error node under parent and skips to the end of the
// statement. Variables inside the skipped region are kept as children of
// the error node.
func (p *parser) fail(parent NodeID, msg string) {
	if p.failed {
		return
	}
	p.failed = true
	p.hasErr = true

	start := p.tok.span.Start
	if p.tok.kind == tokEOF {
		start = p.prevEnd
	}
	id := p.add(KindError, parent, start)
	p.nodes[id].text = msg
	consumed := false
	for p.tok.kind != tokDot && p.tok.kind != tokEOF {
		if p.inWeight && p.tok.kind == tokRBracket {
			break
		}
		if p.tok.kind == tokVariable {
			p.leaf(KindVariable, id)
		} else {
			p.next()
		}
		consumed = true
	}
	if consumed {
		p.close(id)
	}
}

func (p *parser) unexpected(parent NodeID) {
	p.fail(parent, "unexpected "+p.describe())
}

func (p *parser) expect(kind tokenKind, parent NodeID, what string) bool {
	if p.failed {
		return false
	}
	if p.tok.kind != kind {
		p.fail(parent, fmt.Sprintf("expected %s, found %s", what, p.describe()))
		return false
	}
	p.next()
	return true
}

func (p *parser) statement(start int) {
	root := p.add(KindStatement, NoNode, start)

	switch p.tok.kind {
	case tokIf:
		p.next()
		p.body(root)
	case tokWeakIf:
		p.next()
		p.body(root)
		if p.terminate(root) {
			p.weight(root, true)
		}
		p.close(root)
		return
	case tokDirective:
		if !isHeadDirective(p.tok.text) {
			kw := p.tok.text
			p.directive(root)
			if p.terminate(root) && (kw == "#external" || kw == "#heuristic") {
				p.weight(root, kw == "#heuristic")
			}
			p.close(root)
			return
		}
		fallthrough
	default:
		p.head(root)
		if !p.failed && p.tok.kind == tokIf {
			p.next()
			p.body(root)
		}
	}

	p.terminate(root)
	p.close(root)
}

// terminate consumes the statement's period. The token after the period is
// not read so that the item does not depend on the text that follows it.
func (p *parser) terminate(root NodeID) bool {
	if p.tok.kind != tokDot && p.tok.kind != tokEOF {
		p.unexpected(root)
	}
	if p.tok.kind == tokDot {
		p.prevEnd = p.tok.span.End
		return true
	}
	p.hasErr = true
	id := p.add(KindError, root, p.prevEnd)
	p.nodes[id].text = "missing '.' at end of statement"
	return false
}

// weight parses the bracketed tuple after a weak constraint, #external or
// #heuristic statement.
func (p *parser) weight(root NodeID, required bool) {
	p.advance()
	if p.tok.kind != tokLBracket {
		if required {
			p.hasErr = true
			id := p.add(KindError, root, p.prevEnd)
			p.nodes[id].text = "expected '[' after statement"
		}
		return
	}
	p.inWeight = true
	w := p.add(KindWeight, root, p.tok.span.Start)
	p.next()
	p.term(w)
	if !p.failed && p.tok.kind == tokAt {
		p.next()
		p.term(w)
	}
	for !p.failed && p.tok.kind == tokComma {
		p.next()
		p.term(w)
	}
	if p.failed && p.tok.kind == tokRBracket {
		p.next()
	} else {
		p.expect(tokRBracket, w, "']'")
	}
	p.close(w)
	p.inWeight = false
}

func isHeadDirective(text string) bool {
	switch text {
	case "#count", "#sum", "#sum+", "#min", "#max", "#true", "#false", "#inf", "#sup":
		return true
	}
	return false
}

func isAggregateFunction(t token) bool {
	if t.kind != tokDirective {
		return false
	}
	switch t.text {
	case "#count", "#sum", "#sum+", "#min", "#max":
		return true
	}
	return false
}

func (p *parser) head(root NodeID) {
	h := p.add(KindHead, root, p.tok.span.Start)
	for !p.failed {
		p.literal(h)
		if !p.failed && (p.tok.kind == tokSemicolon || p.tok.kind == tokBar) {
			p.next()
			continue
		}
		break
	}
	p.close(h)
}

func (p *parser) body(parent NodeID) {
	b := p.add(KindBody, parent, p.tok.span.Start)
	if p.tok.kind == tokDot {
		p.nodes[b].span.End = p.nodes[b].span.Start
		return
	}
	for !p.failed {
		p.literal(b)
		if !p.failed && (p.tok.kind == tokComma || p.tok.kind == tokSemicolon) {
			p.next()
			continue
		}
		break
	}
	p.close(b)
}

// condition parses the comma separated literals after ':'.
func (p *parser) condition(parent NodeID) {
	c := p.add(KindCondition, parent, p.tok.span.Start)
	for !p.failed {
		p.literal(c)
		if !p.failed && p.tok.kind == tokComma {
			p.next()
			continue
		}
		break
	}
	p.close(c)
}

func (p *parser) literal(parent NodeID) {
	if p.failed {
		return
	}
	if p.tok.kind != tokNot {
		p.plainLiteral(parent)
		return
	}
	lit := p.add(KindLiteral, parent, p.tok.span.Start)
	p.leaf(KindKeyword, lit)
	if p.tok.kind == tokNot {
		p.leaf(KindKeyword, lit)
	}
	p.plainLiteral(lit)
	p.close(lit)
}

func (p *parser) plainLiteral(parent NodeID) {
	if p.tok.kind == tokLBrace || isAggregateFunction(p.tok) {
		p.aggregate(parent, NoNode)
		return
	}

	t := p.term(parent)
	if p.failed {
		return
	}

	switch {
	case p.tok.kind == tokCompare:
		op := p.spelling()
		if p.aggregateFollows() {
			g := p.wrap(t, KindGuard)
			p.nodes[g].text = op
			p.next()
			p.close(g)
			p.aggregate(parent, g)
			return
		}
		c := p.wrap(t, KindComparison)
		p.nodes[c].text = op
		p.next()
		p.term(c)
		p.close(c)
		return
	case p.tok.kind == tokLBrace || isAggregateFunction(p.tok):
		g := p.wrap(t, KindGuard)
		p.close(g)
		p.aggregate(parent, g)
		return
	}

	if !p.markAtom(t) {
		p.fail(parent, "expected atom")
		return
	}
	if p.tok.kind == tokColon {
		c := p.wrap(t, KindConditional)
		p.next()
		p.condition(c)
		p.close(c)
	}
}

// markAtom turns a function term used as a literal into an atom. Classical
// negation is a unary minus around it.
func (p *parser) markAtom(t NodeID) bool {
	n := &p.nodes[t]
	switch {
	case n.kind == KindFunction:
		n.kind = KindAtom
		return true
	case n.kind == KindUnary && n.text == "-" && len(n.children) == 1 &&
		p.nodes[n.children[0]].kind == KindFunction:
		p.nodes[n.children[0]].kind = KindAtom
		return true
	case n.kind == KindConstant && (n.text == "#true" || n.text == "#false"):
		return true
	}
	return false
}

// aggregateFollows reports whether the token after the current comparison
// operator opens an aggregate.
func (p *parser) aggregateFollows() bool {
	pos := p.lex.pos
	t := p.lex.next()
	for t.isComment() {
		t = p.lex.next()
	}
	p.lex.seek(pos)
	return t.kind == tokLBrace || isAggregateFunction(t)
}

func (p *parser) aggregate(parent, lower NodeID) {
	var agg NodeID
	if lower != NoNode {
		agg = p.wrap(lower, KindAggregate)
	} else {
		agg = p.add(KindAggregate, parent, p.tok.span.Start)
	}

	choice := true
	if isAggregateFunction(p.tok) {
		p.leaf(KindKeyword, agg)
		choice = false
	}
	if !p.expect(tokLBrace, agg, "'{'") {
		p.close(agg)
		return
	}
	for !p.failed && p.tok.kind != tokRBrace {
		el := p.add(KindElement, agg, p.tok.span.Start)
		if choice {
			p.literal(el)
		} else {
			if p.tok.kind != tokColon {
				p.termList(el)
			}
			if !p.failed && p.tok.kind == tokColon {
				p.next()
				p.condition(el)
			}
		}
		p.close(el)
		if !p.failed && p.tok.kind == tokSemicolon {
			p.next()
			continue
		}
		break
	}
	p.expect(tokRBrace, agg, "'}'")

	if !p.failed {
		switch {
		case p.tok.kind == tokCompare:
			g := p.add(KindGuard, agg, p.tok.span.Start)
			p.nodes[g].text = p.spelling()
			p.next()
			p.term(g)
			p.close(g)
		case p.startsGuard():
			g := p.add(KindGuard, agg, p.tok.span.Start)
			p.term(g)
			p.close(g)
		}
	}
	p.close(agg)
}

func (p *parser) startsGuard() bool {
	switch p.tok.kind {
	case tokNumber, tokVariable, tokIdentifier, tokLParen, tokMinus:
		return true
	case tokDirective:
		return p.tok.text == "#inf" || p.tok.text == "#sup"
	}
	return false
}

func (p *parser) termList(parent NodeID) {
	for !p.failed {
		p.term(parent)
		if !p.failed && p.tok.kind == tokComma {
			p.next()
			continue
		}
		return
	}
}

var binaryPrecedence = map[tokenKind]int{
	tokDotDot:    1,
	tokQuestion:  2,
	tokCaret:     3,
	tokAmpersand: 4,
	tokPlus:      5,
	tokMinus:     5,
	tokStar:      6,
	tokSlash:     6,
	tokBackslash: 6,
	tokPower:     7,
}

func (p *parser) term(parent NodeID) NodeID {
	return p.binary(parent, 1)
}

func (p *parser) binary(parent NodeID, minPrec int) NodeID {
	left := p.unary(parent)
	for !p.failed {
		prec, ok := binaryPrecedence[p.tok.kind]
		if !ok || prec < minPrec {
			break
		}
		next := prec + 1
		if p.tok.kind == tokPower {
			next = prec
		}
		b := p.wrap(left, KindBinary)
		p.nodes[b].text = p.spelling()
		p.next()
		p.binary(b, next)
		p.close(b)
		left = b
	}
	return left
}

func (p *parser) unary(parent NodeID) NodeID {
	if p.tok.kind != tokMinus && p.tok.kind != tokTilde {
		return p.primary(parent)
	}
	u := p.add(KindUnary, parent, p.tok.span.Start)
	p.nodes[u].text = p.spelling()
	p.next()
	p.unary(u)
	p.close(u)
	return u
}

func (p *parser) primary(parent NodeID) NodeID {
	switch p.tok.kind {
	case tokNumber:
		return p.leaf(KindNumber, parent)
	case tokString:
		return p.leaf(KindString, parent)
	case tokVariable:
		return p.leaf(KindVariable, parent)
	case tokAnonymous:
		return p.leaf(KindAnonymous, parent)
	case tokDirective:
		switch p.tok.text {
		case "#inf", "#sup", "#true", "#false":
			return p.leaf(KindConstant, parent)
		}
	case tokIdentifier:
		f := p.add(KindFunction, parent, p.tok.span.Start)
		p.leaf(KindIdentifier, f)
		if p.tok.kind == tokLParen {
			p.arguments(f)
		}
		p.close(f)
		return f
	case tokLParen:
		return p.tuple(parent)
	case tokBar:
		a := p.add(KindAbs, parent, p.tok.span.Start)
		p.next()
		p.term(a)
		p.expect(tokBar, a, "'|'")
		p.close(a)
		return a
	}
	p.unexpected(parent)
	return NoNode
}

// arguments parses a parenthesized argument list. Every pool alternative
// separated by ';' gets its own arguments node.
func (p *parser) arguments(f NodeID) {
	p.next()
	args := p.add(KindArguments, f, p.tok.span.Start)
	if p.tok.kind == tokRParen {
		p.next()
		p.nodes[args].span.End = p.nodes[args].span.Start
		return
	}
	for !p.failed {
		p.term(args)
		if p.failed {
			break
		}
		switch p.tok.kind {
		case tokComma:
			p.next()
		case tokSemicolon:
			p.close(args)
			p.next()
			args = p.add(KindArguments, f, p.tok.span.Start)
		case tokRParen:
			p.close(args)
			p.next()
			return
		default:
			p.fail(args, fmt.Sprintf("expected ',' or ')', found %s", p.describe()))
		}
	}
	p.close(args)
}

func (p *parser) tuple(parent NodeID) NodeID {
	t := p.add(KindTuple, parent, p.tok.span.Start)
	p.next()
	for !p.failed {
		if p.tok.kind == tokRParen {
			p.next()
			break
		}
		p.term(t)
		if p.failed {
			break
		}
		switch p.tok.kind {
		case tokComma, tokSemicolon:
			p.next()
		case tokRParen:
		default:
			p.fail(t, fmt.Sprintf("expected ',' or ')', found %s", p.describe()))
		}
	}
	p.close(t)
	return t
}

func (p *parser) directive(root NodeID) {
	d := p.add(KindDirective, root, p.tok.span.Start)
	kw := p.tok.text
	p.leaf(KindKeyword, d)

	switch kw {
	case "#show":
		if p.tok.kind != tokDot {
			p.term(d)
			if !p.failed && p.tok.kind == tokColon {
				p.next()
				p.body(d)
			}
		}
	case "#const":
		if p.tok.kind != tokIdentifier {
			p.fail(d, "expected constant name, found "+p.describe())
			break
		}
		p.leaf(KindIdentifier, d)
		if p.tok.kind != tokCompare || p.tok.text != "=" {
			p.fail(d, "expected '=', found "+p.describe())
			break
		}
		p.next()
		p.term(d)
		if !p.failed && p.tok.kind == tokLBracket {
			p.next()
			if p.tok.kind == tokIdentifier {
				p.leaf(KindIdentifier, d)
			}
			p.expect(tokRBracket, d, "']'")
		}
	case "#include":
		switch {
		case p.tok.kind == tokString:
			p.leaf(KindString, d)
		case p.tok.kind == tokCompare && p.tok.text == "<":
			p.next()
			if p.tok.kind != tokIdentifier {
				p.fail(d, "expected library name, found "+p.describe())
				break
			}
			p.leaf(KindIdentifier, d)
			if p.tok.kind != tokCompare || p.tok.text != ">" {
				p.fail(d, "expected '>', found "+p.describe())
				break
			}
			p.next()
		default:
			p.fail(d, "expected file name, found "+p.describe())
		}
	case "#program":
		if p.tok.kind != tokIdentifier {
			p.fail(d, "expected program name, found "+p.describe())
			break
		}
		p.primary(d)
	case "#external", "#heuristic":
		p.literal(d)
	case "#defined", "#project", "#edge":
		p.term(d)
		if !p.failed && p.tok.kind == tokColon {
			p.next()
			p.body(d)
		}
	case "#minimize", "#maximize":
		p.optimize(d)
	default:
		p.fail(d, "unknown directive "+kw)
	}
	p.close(d)
}

// optimize parses the weighted element set of #minimize and #maximize.
func (p *parser) optimize(d NodeID) {
	if !p.expect(tokLBrace, d, "'{'") {
		return
	}
	for !p.failed && p.tok.kind != tokRBrace {
		el := p.add(KindElement, d, p.tok.span.Start)
		p.term(el)
		if !p.failed && p.tok.kind == tokAt {
			p.next()
			p.term(el)
		}
		for !p.failed && p.tok.kind == tokComma {
			p.next()
			p.term(el)
		}
		if !p.failed && p.tok.kind == tokColon {
			p.next()
			p.condition(el)
		}
		p.close(el)
		if !p.failed && p.tok.kind == tokSemicolon {
			p.next()
			continue
		}
		break
	}
	p.expect(tokRBrace, d, "'}'")
}

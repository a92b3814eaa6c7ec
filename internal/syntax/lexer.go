package syntax

// tokenKind classifies lexemes of the clingo input language.
type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdentifier
	tokVariable
	tokAnonymous
	tokNumber
	tokString
	tokDirective
	tokNot
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokComma
	tokSemicolon
	tokColon
	tokIf
	tokWeakIf
	tokDot
	tokDotDot
	tokAt
	tokBar
	tokCompare
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokBackslash
	tokPower
	tokAmpersand
	tokQuestion
	tokCaret
	tokTilde
	tokLineComment
	tokBlockComment
	tokInvalid
)

type token struct {
	kind tokenKind
	span Span
	// text is only filled for identifiers, directives and comparison
	// operators, where the parser has to look at the spelling.
	text string
	// message explains an invalid token.
	message string
}

func (t token) isComment() bool {
	return t.kind == tokLineComment || t.kind == tokBlockComment
}

// lexer scans src on demand. It records the furthest byte it examined so
// that the parser can tell which bytes a node's shape depends on.
type lexer struct {
	src  []byte
	pos  int
	look int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src}
}

// at returns the byte at i, or 0 past the end, and records the access.
func (l *lexer) at(i int) byte {
	if i+1 > l.look {
		l.look = i + 1
	}
	if i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func (l *lexer) seek(pos int) {
	l.pos = pos
}

// resetLook starts a new lookahead window at pos.
func (l *lexer) resetLook(pos int) {
	l.look = pos
}

// skipSpace advances past whitespace and returns the new position.
func (l *lexer) skipSpace() int {
	for l.pos < len(l.src) {
		switch l.at(l.pos) {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			l.pos++
		default:
			return l.pos
		}
	}
	return l.pos
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool {
	return isLower(c) || isUpper(c) || isDigit(c) || c == '_' || c == '\''
}

// next returns the next token, comments included.
func (l *lexer) next() token {
	start := l.skipSpace()
	if start >= len(l.src) {
		l.at(start)
		return token{kind: tokEOF, span: Span{start, start}}
	}

	c := l.at(start)
	switch {
	case c == '_' || isLower(c) || isUpper(c):
		return l.word(start)
	case isDigit(c):
		return l.number(start)
	}

	single := func(kind tokenKind) token {
		l.pos = start + 1
		return token{kind: kind, span: Span{start, l.pos}}
	}
	double := func(kind tokenKind) token {
		l.pos = start + 2
		return token{kind: kind, span: Span{start, l.pos}, text: string(l.src[start:l.pos])}
	}

	switch c {
	case '"':
		return l.str(start)
	case '#':
		return l.directive(start)
	case '%':
		if l.at(start+1) == '*' {
			return l.blockComment(start)
		}
		return l.lineComment(start)
	case '(':
		return single(tokLParen)
	case ')':
		return single(tokRParen)
	case '{':
		return single(tokLBrace)
	case '}':
		return single(tokRBrace)
	case '[':
		return single(tokLBracket)
	case ']':
		return single(tokRBracket)
	case ',':
		return single(tokComma)
	case ';':
		return single(tokSemicolon)
	case '@':
		return single(tokAt)
	case '|':
		return single(tokBar)
	case '+':
		return single(tokPlus)
	case '-':
		return single(tokMinus)
	case '/':
		return single(tokSlash)
	case '\\':
		return single(tokBackslash)
	case '&':
		return single(tokAmpersand)
	case '?':
		return single(tokQuestion)
	case '^':
		return single(tokCaret)
	case '~':
		return single(tokTilde)
	case ':':
		switch l.at(start + 1) {
		case '-':
			return double(tokIf)
		case '~':
			return double(tokWeakIf)
		}
		return single(tokColon)
	case '.':
		if l.at(start+1) == '.' {
			return double(tokDotDot)
		}
		return single(tokDot)
	case '*':
		if l.at(start+1) == '*' {
			return double(tokPower)
		}
		return single(tokStar)
	case '=':
		if l.at(start+1) == '=' {
			return double(tokCompare)
		}
		t := single(tokCompare)
		t.text = "="
		return t
	case '!':
		if l.at(start+1) == '=' {
			return double(tokCompare)
		}
	case '<', '>':
		if l.at(start+1) == '=' {
			return double(tokCompare)
		}
		t := single(tokCompare)
		t.text = string(c)
		return t
	}

	l.pos = start + 1
	return token{kind: tokInvalid, span: Span{start, l.pos}, message: "unexpected character " + quoteByte(c)}
}

func quoteByte(c byte) string {
	if c < 0x20 || c >= 0x7f {
		return "byte"
	}
	return "'" + string(c) + "'"
}

// word scans identifiers, variables and the anonymous variable. Leading
// underscores are allowed; the first letter decides the class.
func (l *lexer) word(start int) token {
	i := start
	for l.at(i) == '_' {
		i++
	}
	first := l.at(i)
	if !isLower(first) && !isUpper(first) {
		l.pos = i
		if i-start == 1 && !isDigit(first) {
			return token{kind: tokAnonymous, span: Span{start, i}}
		}
		for isIdentChar(l.at(l.pos)) {
			l.pos++
		}
		return token{kind: tokInvalid, span: Span{start, l.pos}, message: "invalid identifier"}
	}
	for i < len(l.src) && isIdentChar(l.at(i)) {
		i++
	}
	l.at(i)
	l.pos = i
	text := string(l.src[start:i])
	switch {
	case text == "not":
		return token{kind: tokNot, span: Span{start, i}, text: text}
	case isUpper(first):
		return token{kind: tokVariable, span: Span{start, i}, text: text}
	default:
		return token{kind: tokIdentifier, span: Span{start, i}, text: text}
	}
}

func (l *lexer) number(start int) token {
	i := start
	if l.at(i) == '0' {
		switch l.at(i + 1) {
		case 'x', 'X', 'b', 'B', 'o', 'O':
			i += 2
			for isIdentChar(l.at(i)) && l.at(i) != '\'' && l.at(i) != '_' {
				i++
			}
			l.pos = i
			return token{kind: tokNumber, span: Span{start, i}}
		}
	}
	for isDigit(l.at(i)) {
		i++
	}
	l.pos = i
	return token{kind: tokNumber, span: Span{start, i}}
}

// str scans a double-quoted string. A string may not span lines.
func (l *lexer) str(start int) token {
	i := start + 1
	for {
		c := l.at(i)
		switch {
		case i >= len(l.src) || c == '\n':
			l.pos = i
			return token{kind: tokInvalid, span: Span{start, i}, message: "unterminated string"}
		case c == '\\':
			i += 2
			continue
		case c == '"':
			l.pos = i + 1
			return token{kind: tokString, span: Span{start, l.pos}}
		}
		i++
	}
}

func (l *lexer) directive(start int) token {
	i := start + 1
	for isLower(l.at(i)) {
		i++
	}
	if i == start+1 {
		l.pos = i
		return token{kind: tokInvalid, span: Span{start, i}, message: "expected directive name after '#'"}
	}
	if string(l.src[start+1:i]) == "sum" && l.at(i) == '+' {
		i++
	}
	l.pos = i
	return token{kind: tokDirective, span: Span{start, i}, text: string(l.src[start:i])}
}

func (l *lexer) lineComment(start int) token {
	i := start + 1
	for i < len(l.src) && l.at(i) != '\n' {
		i++
	}
	l.at(i)
	l.pos = i
	return token{kind: tokLineComment, span: Span{start, i}}
}

func (l *lexer) blockComment(start int) token {
	i := start + 2
	for i < len(l.src) {
		if l.at(i) == '*' && l.at(i+1) == '%' {
			l.pos = i + 2
			return token{kind: tokBlockComment, span: Span{start, l.pos}}
		}
		i++
	}
	l.at(i)
	l.pos = i
	return token{kind: tokInvalid, span: Span{start, i}, message: "unterminated block comment"}
}

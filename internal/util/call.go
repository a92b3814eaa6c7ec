package util

import (
	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// Call describes the argument list the cursor is in.
type Call struct {
	Name     string
	NameSpan syntax.Span
	// Argument is the 0-based index of the argument at the cursor.
	Argument int
	// Arity is the number of arguments, counting the one being typed when
	// the list is not closed yet.
	Arity int
}

// CallAt finds the innermost unclosed '(' before off that follows an
// identifier, and counts the top-level commas between it and off. It works
// on text so that it also handles argument lists that do not parse yet.
func CallAt(src []byte, off int) (Call, bool) {
	off = min(max(off, 0), len(src))
	depth := 0
	commas := 0
	pooled := false

	for i := off - 1; i >= 0; i-- {
		switch c := src[i]; c {
		case '.':
			// A period ends the previous statement unless it is part of "..".
			if depth == 0 && !(i > 0 && src[i-1] == '.') && !(i+1 < len(src) && src[i+1] == '.') {
				return Call{}, false
			}
		case ')', '}', ']':
			depth++
		case '{', '[':
			if depth == 0 {
				return Call{}, false
			}
			depth--
		case '(':
			if depth > 0 {
				depth--
				continue
			}
			name, ok := identifierBefore(src, i)
			if !ok {
				// A tuple, keep looking for the enclosing call.
				commas = 0
				pooled = false
				continue
			}
			return Call{
				Name:     string(src[name.Start:name.End]),
				NameSpan: name,
				Argument: commas,
				Arity:    max(arity(src, i), commas+1),
			}, true
		case ',', ';':
			// Commas before a pool separator belong to another alternative.
			if depth == 0 && !pooled {
				if c == ';' {
					pooled = true
				} else {
					commas++
				}
			}
		}
	}
	return Call{}, false
}

func identifierBefore(src []byte, open int) (syntax.Span, bool) {
	end := open
	start := end
	for start > 0 && isIdentByte(src[start-1]) {
		start--
	}
	if start == end || !isLower(src[start]) {
		return syntax.Span{}, false
	}
	return syntax.Span{Start: start, End: end}, true
}

// arity counts the top-level arguments of the list opened at open. An
// unclosed list counts what is there.
func arity(src []byte, open int) int {
	depth := 0
	commas := 0
	empty := true
	for i := open + 1; i < len(src); i++ {
		switch c := src[i]; c {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			if depth == 0 {
				if empty {
					return 0
				}
				return commas + 1
			}
			depth--
		case ',':
			if depth == 0 {
				commas++
			}
		case ';':
			if depth == 0 {
				return commas + 1
			}
		case '.':
			if depth == 0 && !(i+1 < len(src) && src[i+1] == '.') && !(src[i-1] == '.') {
				return commas + 1
			}
		}
		if c := src[i]; c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			empty = false
		}
	}
	return commas + 1
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '\'' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isLower(c byte) bool {
	return c >= 'a' && c <= 'z'
}

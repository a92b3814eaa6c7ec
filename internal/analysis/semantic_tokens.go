package analysis

import (
	"bytes"
	"sort"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// SemanticToken is one highlighted range, not yet delta encoded.
type SemanticToken struct {
	Line      uint32 // 0-based line number
	StartChar uint32 // 0-based start character
	Length    uint32 // length in UTF-16 code units
	TokenType uint32 // index into legend.TokenTypes
	Modifiers uint32 // bit flags
}

// Token types.
const (
	TokenTypeKeyword    = "keyword"
	TokenTypeFunction   = "function"
	TokenTypeVariable   = "variable"
	TokenTypeEnumMember = "enumMember"
	TokenTypeNamespace  = "namespace"
	TokenTypeString     = "string"
	TokenTypeNumber     = "number"
	TokenTypeComment    = "comment"
)

// Token modifiers.
const (
	TokenModifierDeclaration   = "declaration"
	TokenModifierReadonly      = "readonly"
	TokenModifierDocumentation = "documentation"
)

// SemanticTokensLegend lists the token types and modifiers. Token types are
// encoded by index and modifiers by bit position, so the order must not
// change between requests.
type SemanticTokensLegend struct {
	TokenTypes     []string
	TokenModifiers []string
}

// NewSemanticTokensLegend returns the legend announced at initialization.
func NewSemanticTokensLegend() *SemanticTokensLegend {
	return &SemanticTokensLegend{
		TokenTypes: []string{
			TokenTypeKeyword,
			// predicate names
			TokenTypeFunction,
			TokenTypeVariable,
			// symbolic constants and function terms
			TokenTypeEnumMember,
			// #program names
			TokenTypeNamespace,
			TokenTypeString,
			TokenTypeNumber,
			TokenTypeComment,
		},
		TokenModifiers: []string{
			// atoms in rule heads
			TokenModifierDeclaration,
			// #const names
			TokenModifierReadonly,
			// %*# ... *% comments
			TokenModifierDocumentation,
		},
	}
}

// ToProtocolLegend converts the legend to the LSP protocol format.
func (l *SemanticTokensLegend) ToProtocolLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes:     l.TokenTypes,
		TokenModifiers: l.TokenModifiers,
	}
}

// TokenTypeIndex returns the index of a token type, or -1.
func (l *SemanticTokensLegend) TokenTypeIndex(tokenType string) int {
	for i, t := range l.TokenTypes {
		if t == tokenType {
			return i
		}
	}
	return -1
}

// ModifierMask returns the bit mask for the given modifiers.
func (l *SemanticTokensLegend) ModifierMask(modifiers ...string) uint32 {
	var mask uint32
	for _, modifier := range modifiers {
		for i, m := range l.TokenModifiers {
			if m == modifier {
				mask |= 1 << uint32(i)
				break
			}
		}
	}
	return mask
}

// Positioner converts byte offsets to LSP positions.
type Positioner interface {
	OffsetToPosition(off int) (protocol.Position, error)
}

// CollectSemanticTokens classifies the leaves of tree. Tokens that span
// several lines are split at line breaks.
func CollectSemanticTokens(tree *syntax.Tree, src []byte, pos Positioner, legend *SemanticTokensLegend) []SemanticToken {
	if tree == nil || legend == nil {
		return nil
	}

	tc := &tokenCollector{src: src, pos: pos, legend: legend}
	for i := 0; i < tree.Count(); i++ {
		tree.Item(i).Walk(tc.visit)
	}

	sort.Slice(tc.tokens, func(i, j int) bool {
		if tc.tokens[i].Line != tc.tokens[j].Line {
			return tc.tokens[i].Line < tc.tokens[j].Line
		}
		return tc.tokens[i].StartChar < tc.tokens[j].StartChar
	})
	return tc.tokens
}

type tokenCollector struct {
	src    []byte
	pos    Positioner
	legend *SemanticTokensLegend
	tokens []SemanticToken
}

func (tc *tokenCollector) visit(n syntax.Node) bool {
	switch n.Kind() {
	case syntax.KindComment:
		var mods uint32
		if bytes.HasPrefix(tc.text(n.Span()), []byte("%*#")) {
			mods = tc.legend.ModifierMask(TokenModifierDocumentation)
		}
		tc.add(n.Span(), TokenTypeComment, mods)
		return false
	case syntax.KindError:
		return false
	case syntax.KindIdentifier:
		tc.identifier(n)
	case syntax.KindVariable, syntax.KindAnonymous:
		tc.add(n.Span(), TokenTypeVariable, 0)
	case syntax.KindNumber:
		tc.add(n.Span(), TokenTypeNumber, 0)
	case syntax.KindString:
		tc.add(n.Span(), TokenTypeString, 0)
	case syntax.KindKeyword, syntax.KindConstant:
		tc.add(n.Span(), TokenTypeKeyword, 0)
	}
	return true
}

func (tc *tokenCollector) identifier(n syntax.Node) {
	parent, ok := n.Parent()
	if !ok {
		return
	}
	switch parent.Kind() {
	case syntax.KindAtom:
		var mods uint32
		if inHead(parent) {
			mods = tc.legend.ModifierMask(TokenModifierDeclaration)
		}
		tc.add(n.Span(), TokenTypeFunction, mods)
	case syntax.KindFunction:
		tc.add(n.Span(), TokenTypeEnumMember, 0)
	case syntax.KindDirective:
		if kw := parent.Child(0); kw.Text() == "#const" && parent.Child(1).ID() == n.ID() {
			tc.add(n.Span(), TokenTypeVariable, tc.legend.ModifierMask(TokenModifierDeclaration, TokenModifierReadonly))
			return
		}
		tc.add(n.Span(), TokenTypeNamespace, 0)
	}
}

func (tc *tokenCollector) text(s syntax.Span) []byte {
	if s.Start < 0 || s.End > len(tc.src) || s.Start >= s.End {
		return nil
	}
	return tc.src[s.Start:s.End]
}

// add records one token per line of s.
func (tc *tokenCollector) add(s syntax.Span, tokenType string, modifiers uint32) {
	typeIndex := tc.legend.TokenTypeIndex(tokenType)
	if typeIndex < 0 {
		return
	}

	for s.Start < s.End {
		text := tc.text(s)
		if text == nil {
			return
		}
		lineEnd := s.End
		if i := bytes.IndexByte(text, '\n'); i >= 0 {
			lineEnd = s.Start + i
		}
		line := bytes.TrimSuffix(tc.src[s.Start:lineEnd], []byte("\r"))
		if length := utf16Length(line); length > 0 {
			start, err := tc.pos.OffsetToPosition(s.Start)
			if err != nil {
				return
			}
			tc.tokens = append(tc.tokens, SemanticToken{
				Line:      start.Line,
				StartChar: start.Character,
				Length:    uint32(length),
				TokenType: uint32(typeIndex),
				Modifiers: modifiers,
			})
		}
		s.Start = lineEnd + 1
	}
}

// EncodeSemanticTokens encodes tokens in the LSP relative format
// [deltaLine, deltaStartChar, length, tokenType, tokenModifiers].
func EncodeSemanticTokens(tokens []SemanticToken) []uint32 {
	encoded := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar uint32

	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaChar := token.StartChar
		if deltaLine == 0 {
			deltaChar = token.StartChar - prevChar
		}

		encoded = append(encoded,
			deltaLine,
			deltaChar,
			token.Length,
			token.TokenType,
			token.Modifiers,
		)

		prevLine = token.Line
		prevChar = token.StartChar
	}

	return encoded
}

func utf16Length(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

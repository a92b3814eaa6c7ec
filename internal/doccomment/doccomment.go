// Package doccomment extracts predicate documentation from block
// comments of the form
//
//	%*# path(From,To).
//	Description of the predicate.
//	#parameters
//	From : start node
//	To   : end node
//	*%
package doccomment

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// Argument documents one parameter.
type Argument struct {
	Name        string
	Description string
}

// Predicate is the documentation of one predicate.
type Predicate struct {
	// Signature is the documented atom, e.g. "path(From,To)."
	Signature   string
	Description string
	// Parameters are the names of the signature's arguments in order.
	Parameters []string
	// Arguments holds the parameters that have a description.
	Arguments []Argument
}

// Argument returns the description of the i-th parameter.
func (p Predicate) Argument(i int) (Argument, bool) {
	if i < 0 || i >= len(p.Parameters) {
		return Argument{}, false
	}
	for _, a := range p.Arguments {
		if a.Name == p.Parameters[i] {
			return a, true
		}
	}
	return Argument{}, false
}

// Markdown renders the documentation for hover and completion.
func (p Predicate) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "```clingo\n%s\n```\n", p.Signature)
	if p.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(p.Description)
		sb.WriteString("\n")
	}
	if len(p.Arguments) > 0 {
		sb.WriteString("\n**Parameters**\n\n")
		for _, a := range p.Arguments {
			fmt.Fprintf(&sb, "- `%s`: %s\n", a.Name, a.Description)
		}
	}
	return sb.String()
}

// Extract collects the documentation comments among the top-level items of
// tree. A later comment for the same predicate replaces an earlier one.
func Extract(tree *syntax.Tree, src []byte) map[analysis.Key]Predicate {
	out := make(map[analysis.Key]Predicate)
	for i := 0; i < tree.Count(); i++ {
		item := tree.Item(i)
		if item.Kind() != syntax.KindComment {
			continue
		}
		s := item.Span()
		key, p, ok := Parse(string(src[s.Start:s.End]))
		if ok {
			out[key] = p
		}
	}
	return out
}

// Parse reads one block comment. It reports false for comments that are
// not documentation or whose signature is not a well-formed atom.
func Parse(comment string) (analysis.Key, Predicate, bool) {
	if !strings.HasPrefix(comment, "%*") || !strings.HasSuffix(comment, "*%") || len(comment) < 4 {
		return analysis.Key{}, Predicate{}, false
	}
	body := strings.TrimSpace(comment[2 : len(comment)-2])
	if !strings.HasPrefix(body, "#") {
		return analysis.Key{}, Predicate{}, false
	}

	dot := strings.IndexByte(body, '.')
	if dot < 0 {
		return analysis.Key{}, Predicate{}, false
	}
	signature := strings.TrimSpace(body[1 : dot+1])
	rest := body[dot+1:]

	name, params, ok := parseSignature(signature)
	if !ok {
		return analysis.Key{}, Predicate{}, false
	}

	description := rest
	if i := strings.Index(rest, "#parameters"); i >= 0 {
		description = rest[:i]
	}

	p := Predicate{
		Signature:   formatSignature(name, params),
		Description: strings.TrimSpace(description),
		Parameters:  params,
	}
	described := argumentDescriptions(rest)
	for _, param := range params {
		if d, ok := described[param]; ok {
			p.Arguments = append(p.Arguments, Argument{Name: param, Description: d})
		}
	}
	return analysis.Key{Name: name, Arity: len(params)}, p, true
}

// parseSignature parses "name(A,B)." and returns the name and the text of
// each argument.
func parseSignature(signature string) (string, []string, bool) {
	src := []byte(signature)
	tree := syntax.Parse(src)
	if tree.Count() != 1 || len(tree.Errors()) > 0 {
		return "", nil, false
	}
	if _, rule := tree.Item(0).FirstChild(syntax.KindBody); rule {
		return "", nil, false
	}
	head, ok := tree.Item(0).FirstChild(syntax.KindHead)
	if !ok || head.ChildCount() != 1 || head.Child(0).Kind() != syntax.KindAtom {
		return "", nil, false
	}
	atom := head.Child(0)
	name, ok := atom.FirstChild(syntax.KindIdentifier)
	if !ok {
		return "", nil, false
	}

	var params []string
	if args, ok := atom.FirstChild(syntax.KindArguments); ok {
		for _, a := range args.Children() {
			s := a.Span()
			params = append(params, string(src[s.Start:s.End]))
		}
	}
	return name.Text(), params, true
}

func formatSignature(name string, params []string) string {
	if len(params) == 0 {
		return name + "."
	}
	return name + "(" + strings.Join(params, ",") + ")."
}

// argumentDescriptions reads the "Name: text" lines after #parameters.
func argumentDescriptions(text string) map[string]string {
	out := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(text))
	inParams := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !inParams {
			inParams = strings.HasPrefix(line, "#parameters")
			continue
		}
		name, desc, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(desc)
	}
	return out
}

// Package builtins describes the directives and aggregate functions of the
// clingo language.
package builtins

import "sort"

// Kind groups built-ins for completion.
type Kind int

const (
	Directive Kind = iota
	Aggregate
	Constant
)

// Builtin is one keyword starting with '#'.
type Builtin struct {
	Name          string
	Kind          Kind
	Syntax        string
	Snippet       string
	Documentation string
}

// Get returns the built-in for a keyword such as "#show".
func Get(name string) (Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// All returns every built-in sorted by name.
func All() []Builtin {
	out := make([]Builtin, 0, len(builtins))
	for _, b := range builtins {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var builtins = map[string]Builtin{
	"#show": {
		Name:          "#show",
		Kind:          Directive,
		Syntax:        "#show p/n.\n#show t : l1, ..., ln.",
		Snippet:       "#show ${1:predicate}/${2:arity}.",
		Documentation: "Restricts the output to the given predicate signatures, or outputs the term t whenever the condition holds. A bare `#show.` hides all atoms.",
	},
	"#const": {
		Name:          "#const",
		Kind:          Directive,
		Syntax:        "#const c = t.",
		Snippet:       "#const ${1:name} = ${2:value}.",
		Documentation: "Defines a constant that is replaced by its value during grounding. The value can be overridden with `-c c=t` on the command line.",
	},
	"#include": {
		Name:          "#include",
		Kind:          Directive,
		Syntax:        "#include \"file.lp\".",
		Snippet:       "#include \"${1:file}.lp\".",
		Documentation: "Includes the given file into the current program.",
	},
	"#program": {
		Name:          "#program",
		Kind:          Directive,
		Syntax:        "#program name(p1, ..., pn).",
		Snippet:       "#program ${1:name}.",
		Documentation: "Starts a program part. Statements up to the next `#program` belong to it. Parts are grounded on request, `base` is the default part.",
	},
	"#external": {
		Name:          "#external",
		Kind:          Directive,
		Syntax:        "#external a : l1, ..., ln. [v]",
		Snippet:       "#external ${1:atom}.",
		Documentation: "Declares atoms whose truth value is set from outside the program. They are not removed by simplification during grounding.",
	},
	"#defined": {
		Name:          "#defined",
		Kind:          Directive,
		Syntax:        "#defined p/n.",
		Snippet:       "#defined ${1:predicate}/${2:arity}.",
		Documentation: "Marks a predicate as defined so that no warning is issued when it does not occur in any rule head.",
	},
	"#heuristic": {
		Name:          "#heuristic",
		Kind:          Directive,
		Syntax:        "#heuristic a : l1, ..., ln. [w@p, m]",
		Snippet:       "#heuristic ${1:atom}. [${2:1}@${3:1}, ${4:sign}]",
		Documentation: "Modifies the solver's decision heuristic for the atom. The modifier is one of `sign`, `level`, `true`, `false`, `init` or `factor`.",
	},
	"#project": {
		Name:          "#project",
		Kind:          Directive,
		Syntax:        "#project p/n.",
		Snippet:       "#project ${1:predicate}/${2:arity}.",
		Documentation: "Projects answer sets onto the given atoms when enumerating with `--project`.",
	},
	"#edge": {
		Name:          "#edge",
		Kind:          Directive,
		Syntax:        "#edge (u, v) : l1, ..., ln.",
		Snippet:       "#edge (${1:u}, ${2:v}).",
		Documentation: "Adds an edge to the acyclicity constraint checked by the solver.",
	},
	"#minimize": {
		Name:          "#minimize",
		Kind:          Directive,
		Syntax:        "#minimize { w@p, t1, ..., tn : l1, ..., lm }.",
		Snippet:       "#minimize { ${1:W}@${2:1}, ${3:X} : ${4:cost(X, W)} }.",
		Documentation: "Minimizes the sum of the weights of the elements whose condition holds, by priority level.",
	},
	"#maximize": {
		Name:          "#maximize",
		Kind:          Directive,
		Syntax:        "#maximize { w@p, t1, ..., tn : l1, ..., lm }.",
		Snippet:       "#maximize { ${1:W}@${2:1}, ${3:X} : ${4:value(X, W)} }.",
		Documentation: "Maximizes the sum of the weights of the elements whose condition holds, by priority level.",
	},
	"#count": {
		Name:          "#count",
		Kind:          Aggregate,
		Syntax:        "#count { t1, ..., tn : l1, ..., lm }",
		Snippet:       "#count { ${1:X} : ${2:p(X)} }",
		Documentation: "Number of distinct element tuples whose condition holds.",
	},
	"#sum": {
		Name:          "#sum",
		Kind:          Aggregate,
		Syntax:        "#sum { w, t1, ..., tn : l1, ..., lm }",
		Snippet:       "#sum { ${1:W}, ${2:X} : ${3:p(X, W)} }",
		Documentation: "Sum of the first terms of the distinct element tuples whose condition holds.",
	},
	"#sum+": {
		Name:          "#sum+",
		Kind:          Aggregate,
		Syntax:        "#sum+ { w, t1, ..., tn : l1, ..., lm }",
		Snippet:       "#sum+ { ${1:W}, ${2:X} : ${3:p(X, W)} }",
		Documentation: "Like `#sum`, but only positive weights are added.",
	},
	"#min": {
		Name:          "#min",
		Kind:          Aggregate,
		Syntax:        "#min { w, t1, ..., tn : l1, ..., lm }",
		Snippet:       "#min { ${1:W}, ${2:X} : ${3:p(X, W)} }",
		Documentation: "Smallest first term among the element tuples whose condition holds, `#sup` if there is none.",
	},
	"#max": {
		Name:          "#max",
		Kind:          Aggregate,
		Syntax:        "#max { w, t1, ..., tn : l1, ..., lm }",
		Snippet:       "#max { ${1:W}, ${2:X} : ${3:p(X, W)} }",
		Documentation: "Largest first term among the element tuples whose condition holds, `#inf` if there is none.",
	},
	"#inf": {
		Name:          "#inf",
		Kind:          Constant,
		Syntax:        "#inf",
		Documentation: "The smallest term, below every other term.",
	},
	"#sup": {
		Name:          "#sup",
		Kind:          Constant,
		Syntax:        "#sup",
		Documentation: "The largest term, above every other term.",
	},
	"#true": {
		Name:          "#true",
		Kind:          Constant,
		Syntax:        "#true",
		Documentation: "A literal that always holds.",
	},
	"#false": {
		Name:          "#false",
		Kind:          Constant,
		Syntax:        "#false",
		Documentation: "A literal that never holds.",
	},
}

// Package query describes table views over a SQL store: column selection,
// PostgREST-style filters, ordering, and paging, rendered to SQL that
// returns each row as one JSON document.
package query

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// filterLexer tokenizes filter expressions such as "eq.obo:ZFA_0000354" or
// "in.(a,b)". Atoms may contain any character except the punctuation and
// whitespace; a scalar value is a run of atoms, '.' and '=', so it may
// contain dots and equals signs but not parentheses, commas or whitespace.
var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Punct", Pattern: `[=().,]`},
	{Name: "Atom", Pattern: `[^=().,\s]+`},
})

type filterAST struct {
	Op    string    `@Atom "."`
	List  *listAST  `( @@`
	Value *valueAST `| @@ )`
}

type listAST struct {
	Items []*valueAST `"(" ( @@ ( "," @@ )* )? ")"`
}

type valueAST struct {
	Parts []string `@( Atom | "." | "=" )+`
}

func (v *valueAST) join() string {
	return strings.Join(v.Parts, "")
}

var filterParser = participle.MustBuild[filterAST](
	participle.Lexer(filterLexer),
)

// ParseFilter parses one filter: the column it applies to and an
// "operator.value" expression. Invalid input is an error, never a panic.
func ParseFilter(column, expr string) (Filter, error) {
	if !columnPattern.MatchString(column) {
		return Filter{}, fmt.Errorf("query: invalid column name %q", column)
	}

	ast, err := filterParser.ParseString("", expr)
	if err != nil {
		return Filter{}, fmt.Errorf("query: parse filter %q: %w", expr, err)
	}

	op, ok := operators[ast.Op]
	if !ok {
		return Filter{}, fmt.Errorf("query: unknown operator %q", ast.Op)
	}

	filter := Filter{Column: column, Op: op}
	switch {
	case ast.List != nil:
		if op != OpIn {
			return Filter{}, fmt.Errorf("query: operator %q does not take a list", ast.Op)
		}
		for _, item := range ast.List.Items {
			filter.Values = append(filter.Values, item.join())
		}
	case ast.Value != nil:
		if op == OpIn {
			return Filter{}, fmt.Errorf("query: operator in requires a parenthesized list")
		}
		filter.Values = []string{ast.Value.join()}
	default:
		return Filter{}, fmt.Errorf("query: filter %q has no value", expr)
	}
	return filter, nil
}

// operators maps the wire spelling of each operator to its Operator value.
var operators = map[string]Operator{
	"eq":    OpEquals,
	"neq":   OpNotEquals,
	"lt":    OpLessThan,
	"gt":    OpGreaterThan,
	"lte":   OpLessThanEquals,
	"gte":   OpGreaterThanEquals,
	"like":  OpLike,
	"ilike": OpILike,
	"is":    OpIs,
	"in":    OpIn,
}

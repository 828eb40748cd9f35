package parser

// Package parser turns expression text into validated expression trees.
//
// The grammar is small: literals, dotted and bracketed paths, function
// calls, lambdas in argument position, array and object literals, backtick
// templates, and prefix and infix operators that map onto registry kinds:
//
//	add(1, user.age)
//	if(turn.count > 3, 'done', 'continue')
//	where(items, x => x.price > 10)
//	`Hello ${user.name}`
//
// # Architecture
//
//   - Lexer: a participle token grammar (lexer.go)
//   - Parser: precedence climbing over types.BinaryOperators (parser_impl.go)
//
// Every node is built through the operator lookup, so each one is validated
// exactly once, at construction.
//
// # Example
//
//	expr, err := parser.Parse("user.age + 1", parser.WithLookup(evaluator.LookupBuiltin))
//	if err != nil {
//	    log.Fatal(err)
//	}

import (
	"github.com/sandrolain/goexpr/pkg/types"
)

// DefaultMaxDepth bounds expression nesting.
const DefaultMaxDepth = 1000

// DefaultLookup resolves operators when no WithLookup option is given. The
// evaluator package sets it to its standard library.
var DefaultLookup types.Lookup

// Parse parses an expression and returns the validated tree.
// Errors are *types.Error values carrying the source position.
//
// Example:
//
//	expr, err := parser.Parse("user.name")
//	var perr *types.Error
//	if errors.As(err, &perr) {
//	    fmt.Printf("Parse error at position %d\n", perr.Position)
//	}
func Parse(query string, opts ...CompileOption) (*types.Expression, error) {
	return NewParser(query, opts...).Parse()
}

// Compile is an alias for Parse, provided for API consistency.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	return Parse(query, opts...)
}

// MustParse is like Parse but panics on error.
func MustParse(query string, opts ...CompileOption) *types.Expression {
	expr, err := Parse(query, opts...)
	if err != nil {
		panic(err)
	}
	return expr
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// Lookup resolves function names and operator kinds.
	Lookup types.Lookup
	// MaxDepth limits nesting to prevent stack overflow.
	MaxDepth int
}

// WithLookup sets the operator lookup.
func WithLookup(lookup types.Lookup) CompileOption {
	return func(opts *CompileOptions) {
		opts.Lookup = lookup
	}
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

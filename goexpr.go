// Package goexpr is an embeddable expression language for Go.
//
// Expressions are small formulas evaluated against host state: path reads
// such as user.name or items[0].price, operators, and a standard library of
// string, math, collection, date-time and TIMEX functions.
//
// # Quick Start
//
//	// Simple evaluation
//	result, err := goexpr.Eval("user.age >= 18 && exists(user.email)", state)
//
//	// Parse once, evaluate many times
//	expr, err := goexpr.Parse("count(where(items, i, i.price > 100))")
//	ev := evaluator.New()
//	result1, _ := ev.Evaluate(ctx, expr, state1, nil)
//	result2, _ := ev.Evaluate(ctx, expr, state2, nil)
//
//	// With options
//	result, err := goexpr.Eval("formatNumber(total, 2)", state,
//	    evaluator.WithLocale("de-DE"),
//	    evaluator.WithCaching(true),
//	)
//
// # More Information
//
//   - Parser: github.com/sandrolain/goexpr/pkg/parser
//   - Evaluator: github.com/sandrolain/goexpr/pkg/evaluator
//   - Memory: github.com/sandrolain/goexpr/pkg/memory
//   - Types: github.com/sandrolain/goexpr/pkg/types
package goexpr

import (
	"context"
	"fmt"

	"github.com/sandrolain/goexpr/pkg/evaluator"
	"github.com/sandrolain/goexpr/pkg/parser"
	"github.com/sandrolain/goexpr/pkg/types"
)

// Version returns the current version of goexpr.
func Version() string {
	return "v0.1.0-dev"
}

// Parse parses an expression against the built-in function registry.
//
// The returned tree is immutable and safe for concurrent evaluation.
func Parse(text string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Parse(text, opts...)
}

// Eval is a convenience function that parses and evaluates an expression
// in a single call.
//
// For repeated evaluations of the same expression, use Parse with an
// evaluator.Evaluator instead.
//
// Example:
//
//	result, err := goexpr.Eval("concat(first, ' ', last)", state)
func Eval(text string, state any, opts ...evaluator.EvalOption) (any, error) {
	return EvalWithContext(context.Background(), text, state, opts...)
}

// EvalWithContext evaluates an expression with a custom context.
func EvalWithContext(ctx context.Context, text string, state any, opts ...evaluator.EvalOption) (any, error) {
	return evaluator.New(opts...).Eval(ctx, text, state, nil)
}

// EvalWithOptions evaluates an expression with per-call options such as a
// locale or null substitution.
func EvalWithOptions(text string, state any, callOpts *types.Options, opts ...evaluator.EvalOption) (any, error) {
	return evaluator.New(opts...).Eval(context.Background(), text, state, callOpts)
}

// MustParse is like Parse but panics if the expression cannot be parsed.
// It simplifies safe initialization of global variables.
func MustParse(text string) *types.Expression {
	expr, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("goexpr: Parse(%q): %v", text, err))
	}
	return expr
}

// Package jsonpath evaluates JSONPath queries over decoded JSON values.
//
// It backs the jPath expression function:
//
//	p, err := jsonpath.Compile("$.store.book[*].title")
//	titles, err := p.Values(doc)
//
// Parsing and matching are delegated to github.com/ohler55/ojg/jp, so
// filters ([?(@.price > 10)]), slices, unions and recursive descent all
// follow that package. Queries must be rooted at $.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// ErrorCode classifies query failures.
type ErrorCode string

const (
	ErrInvalidPath ErrorCode = "INVALID_PATH"
)

// Error is a structured query error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonpath %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// CompiledPath is a parsed query ready to run against many documents.
type CompiledPath struct {
	raw  string
	expr jp.Expr
}

// Compile parses a JSONPath expression.
func Compile(path string) (*CompiledPath, error) {
	trimmed := strings.TrimSpace(path)
	if !strings.HasPrefix(trimmed, "$") {
		return nil, &Error{Code: ErrInvalidPath, Message: fmt.Sprintf("path %q must start with $", path)}
	}
	expr, err := jp.ParseString(trimmed)
	if err != nil {
		return nil, &Error{Code: ErrInvalidPath, Message: err.Error(), Err: err}
	}
	return &CompiledPath{raw: path, expr: expr}, nil
}

// String returns the source expression.
func (cp *CompiledPath) String() string {
	return cp.raw
}

// Values returns the matched values. No match yields an empty slice.
func (cp *CompiledPath) Values(root any) ([]any, error) {
	values := cp.expr.Get(root)
	if values == nil {
		values = []any{}
	}
	return values, nil
}

// Values compiles path and runs it against root.
func Values(root any, path string) ([]any, error) {
	cp, err := Compile(path)
	if err != nil {
		return nil, err
	}
	return cp.Values(root)
}

// Package functions provides types for registering custom expression
// functions.
//
// Hosts define their own functions and pass them to the evaluator with
// evaluator.WithCustomFunction, after which they are called like any
// built-in:
//
//	ev := evaluator.New(evaluator.WithCustomFunction(functions.CustomFunctionDef{
//	    Name:       "greet",
//	    ReturnType: types.ReturnString,
//	    MinArgs:    1,
//	    MaxArgs:    1,
//	    Fn: func(args ...any) (any, error) {
//	        return "Hello, " + args[0].(string) + "!", nil
//	    },
//	}))
//	result, err := ev.Eval(ctx, "greet(name)", map[string]any{"name": "World"}, nil)
//	// result == "Hello, World!"
package functions

import (
	"fmt"

	"github.com/sandrolain/goexpr/pkg/types"
)

// CustomFunc is the signature for user-defined functions.
// args holds the evaluated arguments in order. Returning an error fails
// the evaluation; a panic is recovered and reported the same way.
type CustomFunc func(args ...any) (any, error)

// CustomFunctionDef describes a user-defined function.
type CustomFunctionDef struct {
	// Name is the function name as it appears inside expressions.
	Name string
	// ReturnType is the statically declared result type. Zero means Object,
	// which every caller accepts.
	ReturnType types.ReturnType
	// MinArgs and MaxArgs bound the arity at construction time. MaxArgs of
	// -1 means unbounded. Both zero means any arity.
	MinArgs int
	MaxArgs int
	// Fn is the implementation.
	Fn CustomFunc
}

// Arity returns the effective arity bounds.
func (d CustomFunctionDef) Arity() (minArgs, maxArgs int) {
	if d.MinArgs == 0 && d.MaxArgs == 0 {
		return 0, -1
	}
	return d.MinArgs, d.MaxArgs
}

// Returns returns the declared result type, defaulting to Object.
func (d CustomFunctionDef) Returns() types.ReturnType {
	if d.ReturnType == 0 {
		return types.ReturnObject
	}
	return d.ReturnType
}

// Validate checks the definition itself.
func (d CustomFunctionDef) Validate() error {
	if !types.IsIdentifier(d.Name) {
		return fmt.Errorf("custom function name %q is not a valid identifier", d.Name)
	}
	if d.Fn == nil {
		return fmt.Errorf("custom function %s has no implementation", d.Name)
	}
	minArgs, maxArgs := d.Arity()
	if minArgs < 0 || (maxArgs >= 0 && maxArgs < minArgs) {
		return fmt.Errorf("custom function %s has invalid arity [%d, %d]", d.Name, minArgs, maxArgs)
	}
	return nil
}

// Set is a named group of custom functions, the unit extension packages
// ship.
type Set []CustomFunctionDef

// Names lists the function names in the set.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.Name
	}
	return names
}

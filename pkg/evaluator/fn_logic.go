package evaluator

import (
	"github.com/sandrolain/goexpr/pkg/types"
)

// Logical operators evaluate children without null substitution and treat
// an erroring child as false.

func evalAnd(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	strict := opts.WithoutNullSubstitution()
	for _, child := range expr.Children() {
		v, err := child.TryEvaluate(state, strict)
		if err != nil || !IsLogicTrue(v) {
			return false, nil
		}
	}
	return true, nil
}

func evalOr(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	strict := opts.WithoutNullSubstitution()
	for _, child := range expr.Children() {
		v, err := child.TryEvaluate(state, strict)
		if err == nil && IsLogicTrue(v) {
			return true, nil
		}
	}
	return false, nil
}

func evalNot(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	v, err := expr.Child(0).TryEvaluate(state, opts.WithoutNullSubstitution())
	if err != nil {
		return true, nil
	}
	return !IsLogicTrue(v), nil
}

// evalIf evaluates only the selected branch. A failing condition selects
// the else branch.
func evalIf(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	cond, err := expr.Child(0).TryEvaluate(state, opts.WithoutNullSubstitution())
	if err == nil && IsLogicTrue(cond) {
		return expr.Child(1).TryEvaluate(state, opts)
	}
	return expr.Child(2).TryEvaluate(state, opts)
}

var evalCoalesce = Apply(func(args []any) any {
	for _, arg := range args {
		if arg != nil {
			return arg
		}
	}
	return nil
}, nil)

package evaluator

import (
	"fmt"

	"github.com/sandrolain/goexpr/pkg/types"
)

// VerifyFunc checks one evaluated argument. pos is the argument index and
// child the node that produced value.
type VerifyFunc func(value any, child *types.Expression, pos int) error

// EvaluateChildren evaluates every child left to right, stopping at the
// first evaluation or verification error.
func EvaluateChildren(expr *types.Expression, state types.MemoryView, opts *types.Options, verify VerifyFunc) ([]any, error) {
	children := expr.Children()
	args := make([]any, len(children))
	for i, child := range children {
		v, err := child.TryEvaluate(state, opts)
		if err != nil {
			return nil, err
		}
		if verify != nil {
			if err := verify(v, child, i); err != nil {
				return nil, err
			}
		}
		args[i] = v
	}
	return args, nil
}

// Apply builds an evaluator from a pure function of the evaluated arguments.
func Apply(fn func(args []any) any, verify VerifyFunc) types.EvaluateFunc {
	return ApplyWithOptionsAndError(func(args []any, _ *types.Options) (any, error) {
		return fn(args), nil
	}, verify)
}

// ApplyWithError is Apply for functions that can fail.
func ApplyWithError(fn func(args []any) (any, error), verify VerifyFunc) types.EvaluateFunc {
	return ApplyWithOptionsAndError(func(args []any, _ *types.Options) (any, error) {
		return fn(args)
	}, verify)
}

// ApplyWithOptions is Apply for functions that read the evaluation options,
// typically the locale.
func ApplyWithOptions(fn func(args []any, opts *types.Options) any, verify VerifyFunc) types.EvaluateFunc {
	return ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
		return fn(args, opts), nil
	}, verify)
}

// ApplyWithOptionsAndError is the general form every Apply variant reduces to.
// A panic inside fn becomes an evaluation error naming the expression.
func ApplyWithOptionsAndError(fn func(args []any, opts *types.Options) (any, error), verify VerifyFunc) types.EvaluateFunc {
	return func(expr *types.Expression, state types.MemoryView, opts *types.Options) (result any, err error) {
		args, err := EvaluateChildren(expr, state, opts, verify)
		if err != nil {
			return nil, err
		}
		defer func() {
			if r := recover(); r != nil {
				result = nil
				err = fmt.Errorf("%s: %v", expr, r)
			}
		}()
		result, err = fn(args, opts)
		if r, ok := err.(*reasonError); ok {
			return nil, fmt.Errorf("%s %w", expr, r)
		}
		return result, err
	}
}

// reasonError is a failure that does not name its expression yet; the
// Apply wrappers prefix the expression text.
type reasonError struct{ msg string }

func (e *reasonError) Error() string { return e.msg }

func reasonf(format string, args ...any) error {
	return &reasonError{msg: fmt.Sprintf(format, args...)}
}

// ApplySequence folds a binary function over the arguments left to right.
func ApplySequence(fn func(args []any) any, verify VerifyFunc) types.EvaluateFunc {
	return ApplySequenceWithError(func(args []any) (any, error) {
		return fn(args), nil
	}, verify)
}

// ApplySequenceWithError is ApplySequence for functions that can fail.
func ApplySequenceWithError(fn func(args []any) (any, error), verify VerifyFunc) types.EvaluateFunc {
	return ApplyWithError(func(args []any) (any, error) {
		if len(args) == 0 {
			return nil, nil
		}
		soFar := args[0]
		pair := make([]any, 2)
		for _, next := range args[1:] {
			pair[0], pair[1] = soFar, next
			v, err := fn(pair)
			if err != nil {
				return nil, err
			}
			soFar = v
		}
		return soFar, nil
	}, verify)
}

// Verifiers.

// VerifyNumber requires a numeric argument.
func VerifyNumber(value any, child *types.Expression, _ int) error {
	if !IsNumber(value) {
		return fmt.Errorf("%s is not a number", child)
	}
	return nil
}

// VerifyInteger requires an integer argument.
func VerifyInteger(value any, child *types.Expression, _ int) error {
	if _, ok := ToInt64(value); !ok || !IsNumber(value) {
		return fmt.Errorf("%s is not an integer", child)
	}
	return nil
}

// VerifyNumberOrNumericList requires a number or a list of numbers.
func VerifyNumberOrNumericList(value any, child *types.Expression, _ int) error {
	if IsNumber(value) {
		return nil
	}
	list, ok := ToList(value)
	if !ok {
		return fmt.Errorf("%s is neither a list nor a number", child)
	}
	for _, item := range list {
		if !IsNumber(item) {
			return fmt.Errorf("%s is not a number", describe(item))
		}
	}
	return nil
}

// VerifyNumericList requires a list of numbers.
func VerifyNumericList(value any, child *types.Expression, _ int) error {
	list, ok := ToList(value)
	if !ok {
		return fmt.Errorf("%s is not a list", child)
	}
	for _, item := range list {
		if !IsNumber(item) {
			return fmt.Errorf("%s is not a number", describe(item))
		}
	}
	return nil
}

// VerifyString requires a string argument.
func VerifyString(value any, child *types.Expression, _ int) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("%s is not a string", child)
	}
	return nil
}

// VerifyStringOrNull accepts strings and nil.
func VerifyStringOrNull(value any, child *types.Expression, _ int) error {
	if value == nil {
		return nil
	}
	if _, ok := value.(string); !ok {
		return fmt.Errorf("%s is neither a string nor a null object", child)
	}
	return nil
}

// VerifyNumberOrStringOrNull accepts numbers, strings and nil.
func VerifyNumberOrStringOrNull(value any, child *types.Expression, _ int) error {
	if value == nil || IsNumber(value) {
		return nil
	}
	if _, ok := value.(string); !ok {
		return fmt.Errorf("%s is neither a number nor a string", child)
	}
	return nil
}

// VerifyNotNull rejects nil.
func VerifyNotNull(value any, child *types.Expression, _ int) error {
	if value == nil {
		return fmt.Errorf("%s is null", child)
	}
	return nil
}

// VerifyList requires a list.
func VerifyList(value any, child *types.Expression, _ int) error {
	if !IsList(value) {
		return fmt.Errorf("%s is not a list", child)
	}
	return nil
}

// VerifyContainer requires a string, list or object.
func VerifyContainer(value any, child *types.Expression, _ int) error {
	if _, ok := value.(string); ok || IsList(value) || IsObject(value) {
		return nil
	}
	return fmt.Errorf("%s must be a string, list or object", child)
}

// VerifyContainerOrNull is VerifyContainer that also accepts nil.
func VerifyContainerOrNull(value any, child *types.Expression, pos int) error {
	if value == nil {
		return nil
	}
	return VerifyContainer(value, child, pos)
}

// VerifyBoolean requires a boolean.
func VerifyBoolean(value any, child *types.Expression, _ int) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("%s is not a boolean", child)
	}
	return nil
}

// VerifyObject requires a structured value.
func VerifyObject(value any, child *types.Expression, _ int) error {
	if !IsObject(value) {
		return fmt.Errorf("%s is not an object", child)
	}
	return nil
}

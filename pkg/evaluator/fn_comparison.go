package evaluator

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandrolain/goexpr/pkg/types"
)

// comparison evaluates children without null substitution and reduces them
// with fn. A failing child makes the comparison false instead of an error;
// mixing numbers with non-numbers is an error.
func comparison(fn func(args []any) (bool, error), verify VerifyFunc) types.EvaluateFunc {
	return func(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
		args, err := EvaluateChildren(expr, state, opts.WithoutNullSubstitution(), verify)
		if err != nil {
			return false, nil
		}

		var first any
		for _, arg := range args {
			if arg == nil {
				continue
			}
			if first == nil {
				first = arg
				continue
			}
			if IsNumber(arg) != IsNumber(first) {
				return nil, fmt.Errorf("Arguments must either all be numbers or strings in %s: %s and %s",
					expr, describe(first), describe(arg))
			}
		}

		ok, err := fn(args)
		if err != nil {
			return nil, err
		}
		return ok, nil
	}
}

// compareValues orders two non-nil values of the same family.
func compareValues(a, b any) (int, error) {
	if IsNumber(a) && IsNumber(b) {
		fa, _ := ToFloat64(a)
		fb, _ := ToFloat64(b)
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		}
		return 0, nil
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			}
			return 1, nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	}
	return 0, fmt.Errorf("%s and %s must be comparable", describe(a), describe(b))
}

func ordering(accept func(c int) bool) types.EvaluateFunc {
	return comparison(func(args []any) (bool, error) {
		c, err := compareValues(args[0], args[1])
		if err != nil {
			return false, err
		}
		return accept(c), nil
	}, VerifyNotNull)
}

var (
	evalEqual = comparison(func(args []any) (bool, error) {
		return IsEqual(args[0], args[1]), nil
	}, nil)
	evalNotEqual = comparison(func(args []any) (bool, error) {
		return !IsEqual(args[0], args[1]), nil
	}, nil)

	evalLessThan           = ordering(func(c int) bool { return c < 0 })
	evalLessThanOrEqual    = ordering(func(c int) bool { return c <= 0 })
	evalGreaterThan        = ordering(func(c int) bool { return c > 0 })
	evalGreaterThanOrEqual = ordering(func(c int) bool { return c >= 0 })

	evalExists = comparison(func(args []any) (bool, error) {
		return args[0] != nil, nil
	}, nil)
	evalEmpty = comparison(func(args []any) (bool, error) {
		return IsEmpty(args[0]), nil
	}, VerifyContainerOrNull)
)

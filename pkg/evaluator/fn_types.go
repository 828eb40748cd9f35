package evaluator

import (
	"math"
	"time"
)

// isIntegral reports whether v is a number without a fractional part.
func isIntegral(v any) bool {
	if IsInteger(v) {
		return true
	}
	f, ok := ToFloat64(v)
	return ok && !math.IsInf(f, 0) && math.Trunc(f) == f
}

var (
	evalIsInteger = Apply(func(args []any) any {
		return IsNumber(args[0]) && isIntegral(args[0])
	}, nil)

	evalIsFloat = Apply(func(args []any) any {
		return IsNumber(args[0]) && !isIntegral(args[0])
	}, nil)

	evalIsString = Apply(func(args []any) any {
		_, ok := args[0].(string)
		return ok
	}, nil)

	evalIsArray = Apply(func(args []any) any {
		return IsList(args[0])
	}, nil)

	evalIsObject = Apply(func(args []any) any {
		if args[0] == nil || IsList(args[0]) {
			return false
		}
		switch args[0].(type) {
		case string, bool, time.Time, []byte:
			return false
		}
		return !IsNumber(args[0])
	}, nil)

	evalIsBoolean = Apply(func(args []any) any {
		_, ok := args[0].(bool)
		return ok
	}, nil)

	evalIsDateTime = Apply(func(args []any) any {
		switch v := args[0].(type) {
		case time.Time:
			return true
		case string:
			_, err := parseISOTimestamp(v)
			return err == nil
		}
		return false
	}, nil)
)

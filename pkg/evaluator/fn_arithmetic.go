package evaluator

import (
	"errors"
	"fmt"
	"math"

	"github.com/sandrolain/goexpr/pkg/types"
)

// errNullNumberAdd is returned when add mixes a number with null.
var errNullNumberAdd = errors.New("Operator '+' or add cannot be applied to operands of type 'number' and null object.")

// numericOp applies intOp when both operands are integers, floatOp otherwise.
func numericOp(a, b any, intOp func(x, y int64) int64, floatOp func(x, y float64) float64) any {
	if IsInteger(a) && IsInteger(b) {
		x, ok1 := ToInt64(a)
		y, ok2 := ToInt64(b)
		if ok1 && ok2 {
			return intOp(x, y)
		}
	}
	x, _ := ToFloat64(a)
	y, _ := ToFloat64(b)
	return floatOp(x, y)
}

func addValues(args []any) (any, error) {
	a, b := args[0], args[1]
	if (a == nil && IsNumber(b)) || (b == nil && IsNumber(a)) {
		return nil, errNullNumberAdd
	}
	if !IsNumber(a) || !IsNumber(b) {
		return Stringify(a) + Stringify(b), nil
	}
	return numericOp(a, b,
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y }), nil
}

func subtractValues(args []any) any {
	return numericOp(args[0], args[1],
		func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y })
}

func multiplyValues(args []any) any {
	return numericOp(args[0], args[1],
		func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y })
}

func divideValues(args []any) any {
	return numericOp(args[0], args[1],
		func(x, y int64) int64 { return x / y },
		func(x, y float64) float64 { return x / y })
}

func modValues(args []any) (any, error) {
	return numericOp(args[0], args[1],
		func(x, y int64) int64 { return x % y },
		math.Mod), nil
}

// powerValues keeps integer results for non-negative integer exponents as
// long as the result fits in int64.
func powerValues(args []any) any {
	if IsInteger(args[0]) && IsInteger(args[1]) {
		base, _ := ToInt64(args[0])
		exp, _ := ToInt64(args[1])
		if exp >= 0 {
			if r, ok := intPow(base, exp); ok {
				return r
			}
		}
	}
	x, _ := ToFloat64(args[0])
	y, _ := ToFloat64(args[1])
	return math.Pow(x, y)
}

func intPow(base, exp int64) (int64, bool) {
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		next := result * base
		if base != 0 && next/base != result {
			return 0, false
		}
		result = next
	}
	return result, true
}

// verifyNonZeroDivisor rejects a zero at any position but the first.
func verifyNonZeroDivisor(verb string) VerifyFunc {
	return func(value any, child *types.Expression, pos int) error {
		if err := VerifyNumber(value, child, pos); err != nil {
			return err
		}
		if pos > 0 {
			if f, _ := ToFloat64(value); f == 0 {
				return fmt.Errorf("Cannot %s by 0 from %s", verb, child)
			}
		}
		return nil
	}
}

var (
	evalAdd      = ApplySequenceWithError(addValues, VerifyNumberOrStringOrNull)
	evalSubtract = ApplySequence(subtractValues, VerifyNumber)
	evalMultiply = ApplySequence(multiplyValues, VerifyNumber)
	evalDivide   = ApplySequence(divideValues, verifyNonZeroDivisor("divide"))
	evalMod      = ApplyWithError(modValues, verifyNonZeroDivisor("mod"))
	evalPower    = ApplySequence(powerValues, VerifyNumber)
)

var evalUnaryMinus = Apply(func(args []any) any {
	if IsInteger(args[0]) {
		n, _ := ToInt64(args[0])
		return -n
	}
	f, _ := ToFloat64(args[0])
	return -f
}, VerifyNumber)

var evalUnaryPlus = Apply(func(args []any) any {
	return args[0]
}, VerifyNumber)

// Aggregates.

// flattenNumbers expands list arguments into their numeric items.
func flattenNumbers(args []any) []any {
	var out []any
	for _, arg := range args {
		if list, ok := ToList(arg); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, arg)
	}
	return out
}

func extremum(args []any, better func(a, b float64) bool) (any, error) {
	items := flattenNumbers(args)
	if len(items) == 0 {
		return nil, reasonf("has no numbers to compare")
	}
	best := items[0]
	bf, _ := ToFloat64(best)
	for _, item := range items[1:] {
		f, _ := ToFloat64(item)
		if better(f, bf) {
			best, bf = item, f
		}
	}
	return best, nil
}

var evalMax = ApplyWithError(func(args []any) (any, error) {
	return extremum(args, func(a, b float64) bool { return a > b })
}, VerifyNumberOrNumericList)

var evalMin = ApplyWithError(func(args []any) (any, error) {
	return extremum(args, func(a, b float64) bool { return a < b })
}, VerifyNumberOrNumericList)

func sumList(list []any) any {
	var isum int64
	var fsum float64
	allInts := true
	for _, item := range list {
		if allInts && IsInteger(item) {
			n, _ := ToInt64(item)
			isum += n
			continue
		}
		if allInts {
			allInts = false
			fsum = float64(isum)
		}
		f, _ := ToFloat64(item)
		fsum += f
	}
	if allInts {
		return isum
	}
	return fsum
}

var evalSum = Apply(func(args []any) any {
	list, _ := ToList(args[0])
	return sumList(list)
}, VerifyNumericList)

var evalAverage = ApplyWithError(func(args []any) (any, error) {
	list, _ := ToList(args[0])
	if len(list) == 0 {
		return nil, reasonf("cannot average an empty list")
	}
	total, _ := ToFloat64(sumList(list))
	return total / float64(len(list)), nil
}, VerifyNumericList)

var evalRange = ApplyWithError(func(args []any) (any, error) {
	start, _ := ToInt64(args[0])
	count, _ := ToInt64(args[1])
	if count <= 0 {
		return nil, fmt.Errorf("second parameter of range must be more than zero, got %d", count)
	}
	out := make([]any, count)
	for i := range out {
		out[i] = start + int64(i)
	}
	return out, nil
}, VerifyInteger)

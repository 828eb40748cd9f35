package evaluator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sandrolain/goexpr/pkg/types"
)

var evalAbs = Apply(func(args []any) any {
	if IsInteger(args[0]) {
		n, _ := ToInt64(args[0])
		if n < 0 {
			return -n
		}
		return n
	}
	f, _ := ToFloat64(args[0])
	return math.Abs(f)
}, VerifyNumber)

var evalCeiling = Apply(func(args []any) any {
	f, _ := ToFloat64(args[0])
	return math.Ceil(f)
}, VerifyNumber)

var evalFloor = Apply(func(args []any) any {
	f, _ := ToFloat64(args[0])
	return math.Floor(f)
}, VerifyNumber)

var evalSqrt = ApplyWithError(func(args []any) (any, error) {
	f, _ := ToFloat64(args[0])
	if f < 0 {
		return nil, fmt.Errorf("sqrt of negative number %s", describe(args[0]))
	}
	return math.Sqrt(f), nil
}, VerifyNumber)

// evalRound rounds half away from zero to 0..15 fractional digits.
var evalRound = ApplyWithError(func(args []any) (any, error) {
	f, _ := ToFloat64(args[0])
	digits := int64(0)
	if len(args) > 1 {
		d, ok := ToInt64(args[1])
		if !ok || !IsInteger(args[1]) || d < 0 || d > 15 {
			return nil, fmt.Errorf("the second parameter %s must be an integer between 0 and 15", describe(args[1]))
		}
		digits = d
	}
	scale := math.Pow(10, float64(digits))
	return math.Round(f*scale) / scale, nil
}, VerifyNumber)

// Random numbers.

var (
	sharedRandMu sync.Mutex
	sharedRand   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// randomSource returns the source selected by opts: a seeded source when
// randomSeed is set, the shared source otherwise. The returned unlock must
// be called when done drawing.
func randomSource(opts *types.Options) (*rand.Rand, func()) {
	if seed, ok := opts.Property(types.PropertyRandomSeed); ok {
		if n, ok := ToInt64(seed); ok {
			return rand.New(rand.NewSource(n)), func() {}
		}
	}
	sharedRandMu.Lock()
	return sharedRand, sharedRandMu.Unlock
}

var evalRand = ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
	lo, _ := ToInt64(args[0])
	hi, _ := ToInt64(args[1])
	if lo >= hi {
		return nil, fmt.Errorf("min value %d cannot be greater than or equal to max value %d", lo, hi)
	}
	if v, ok := opts.Property(types.PropertyRandomValue); ok {
		f, ok := ToFloat64(v)
		if !ok || f < 0 || f >= 1 {
			return nil, errors.New("randomValue must be a number in [0, 1)")
		}
		return lo + int64(math.Floor(float64(hi-lo)*f)), nil
	}
	r, unlock := randomSource(opts)
	defer unlock()
	return lo + r.Int63n(hi-lo), nil
}, VerifyInteger)

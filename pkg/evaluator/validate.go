package evaluator

import (
	"github.com/sandrolain/goexpr/pkg/types"
)

// Validators run once, when a node is constructed. They check arity and the
// statically declared return types of the children; a child declared as
// Object is only known at runtime and always passes.

// ValidateArityAndAnyType checks min <= len(children) <= max and that every
// child can produce one of rt.
func ValidateArityAndAnyType(expr *types.Expression, minArity, maxArity int, rt types.ReturnType) error {
	n := len(expr.Children())
	if n < minArity {
		if minArity == maxArity {
			return types.Errorf(types.ErrArgumentCount, "%s should have %d children", expr, minArity)
		}
		return types.Errorf(types.ErrArgumentCount, "%s should have at least %d children", expr, minArity)
	}
	if maxArity >= 0 && n > maxArity {
		if minArity == maxArity {
			return types.Errorf(types.ErrArgumentCount, "%s should have %d children", expr, maxArity)
		}
		return types.Errorf(types.ErrArgumentCount, "%s can't have more than %d children", expr, maxArity)
	}
	for _, child := range expr.Children() {
		if err := checkChildType(expr, child, rt); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOrder checks that children match expected positionally, followed
// by up to len(optional) more children matching optional.
func ValidateOrder(expr *types.Expression, optional []types.ReturnType, expected ...types.ReturnType) error {
	children := expr.Children()
	if len(children) < len(expected) || len(children) > len(expected)+len(optional) {
		if len(optional) == 0 {
			return types.Errorf(types.ErrArgumentCount, "%s should have %d children", expr, len(expected))
		}
		return types.Errorf(types.ErrArgumentCount, "%s should have between %d and %d children",
			expr, len(expected), len(expected)+len(optional))
	}
	for i, child := range children {
		var want types.ReturnType
		if i < len(expected) {
			want = expected[i]
		} else {
			want = optional[i-len(expected)]
		}
		if err := checkChildType(expr, child, want); err != nil {
			return err
		}
	}
	return nil
}

func checkChildType(expr, child *types.Expression, want types.ReturnType) error {
	if want == types.ReturnAny || want.Accepts(child.ReturnType()) {
		return nil
	}
	return types.Errorf(types.ErrArgumentType, "%s is not a %s expression in %s", child, want, expr)
}

// Validator constructors used by the registry.

func validateArity(minArity, maxArity int, rt types.ReturnType) types.ValidateFunc {
	return func(expr *types.Expression) error {
		return ValidateArityAndAnyType(expr, minArity, maxArity, rt)
	}
}

func validateOrder(optional []types.ReturnType, expected ...types.ReturnType) types.ValidateFunc {
	return func(expr *types.Expression) error {
		return ValidateOrder(expr, optional, expected...)
	}
}

func opt(rts ...types.ReturnType) []types.ReturnType {
	return rts
}

var (
	validateNoArgs          = validateArity(0, 0, types.ReturnAny)
	validateUnary           = validateArity(1, 1, types.ReturnAny)
	validateUnaryNumber     = validateArity(1, 1, types.ReturnNumber)
	validateUnaryString     = validateArity(1, 1, types.ReturnString)
	validateUnaryBoolean    = validateArity(1, 1, types.ReturnBoolean)
	validateUnaryArray      = validateArity(1, 1, types.ReturnArray)
	validateBinary          = validateArity(2, 2, types.ReturnAny)
	validateBinaryNumber    = validateArity(2, 2, types.ReturnNumber)
	validateAtLeastOne      = validateArity(1, -1, types.ReturnAny)
	validateAtLeastOneArray = validateArity(1, -1, types.ReturnArray)
	validateTwoOrMoreNumber = validateArity(2, -1, types.ReturnNumber)
	validateNumberOrArray   = validateArity(1, -1, types.ReturnNumber|types.ReturnArray)
	validateStringOrLocale  = validateOrder(opt(types.ReturnString), types.ReturnString)
	validateComparison      = validateArity(2, 2, types.ReturnAny)
)

// validateTimestampWithFormat covers (timestamp, format?) signatures.
var validateTimestampWithFormat = validateOrder(opt(types.ReturnString), types.ReturnString)

// validateAddTime covers addDays and friends: (timestamp, n, format?).
var validateAddTime = validateOrder(opt(types.ReturnString), types.ReturnString, types.ReturnNumber)

package evaluator

import (
	"sort"
	"sync"

	"github.com/sandrolain/goexpr/pkg/parser"
	"github.com/sandrolain/goexpr/pkg/types"
)

func init() {
	parser.DefaultLookup = LookupBuiltin
}

var (
	builtinOperators map[string]*types.OperatorDef
	builtinOnce      sync.Once
)

const (
	rBool   = types.ReturnBoolean
	rNumber = types.ReturnNumber
	rObject = types.ReturnObject
	rString = types.ReturnString
	rArray  = types.ReturnArray
	rAny    = types.ReturnAny
)

// initBuiltinOperators initializes the standard library.
func initBuiltinOperators() {
	builtinOnce.Do(func() {
		defs := []*types.OperatorDef{
			// Paths
			{Name: types.KindAccessor, Evaluate: evalAccessor, ReturnType: rObject, Validate: validateAccessor},
			{Name: types.KindElement, Evaluate: evalElement, ReturnType: rObject, Validate: validateElement},
			{Name: types.KindGetProperty, Evaluate: evalGetProperty, ReturnType: rObject, Validate: validateGetProperty},
			{Name: types.KindSetPathToValue, Evaluate: evalSetPathToValue, ReturnType: rObject, Validate: validateSetPathToValue},
			{Name: types.KindLambda, Evaluate: evalLambda, ReturnType: rObject, Validate: validateLambda},

			// Arithmetic
			{Name: types.KindAdd, Evaluate: evalAdd, ReturnType: rString | rNumber, Validate: validateArity(2, -1, rString|rNumber)},
			{Name: types.KindSubtract, Evaluate: evalSubtract, ReturnType: rNumber, Validate: validateTwoOrMoreNumber},
			{Name: types.KindMultiply, Evaluate: evalMultiply, ReturnType: rNumber, Validate: validateTwoOrMoreNumber},
			{Name: types.KindDivide, Evaluate: evalDivide, ReturnType: rNumber, Validate: validateTwoOrMoreNumber},
			{Name: types.KindMod, Evaluate: evalMod, ReturnType: rNumber, Validate: validateBinaryNumber},
			{Name: types.KindPower, Evaluate: evalPower, ReturnType: rNumber, Validate: validateTwoOrMoreNumber},
			{Name: types.KindUnaryMinus, Evaluate: evalUnaryMinus, ReturnType: rNumber, Validate: validateUnaryNumber},
			{Name: types.KindUnaryPlus, Evaluate: evalUnaryPlus, ReturnType: rNumber, Validate: validateUnaryNumber},
			{Name: "min", Evaluate: evalMin, ReturnType: rNumber, Validate: validateNumberOrArray},
			{Name: "max", Evaluate: evalMax, ReturnType: rNumber, Validate: validateNumberOrArray},
			{Name: "sum", Evaluate: evalSum, ReturnType: rNumber, Validate: validateUnaryArray},
			{Name: "average", Evaluate: evalAverage, ReturnType: rNumber, Validate: validateUnaryArray},
			{Name: "range", Evaluate: evalRange, ReturnType: rArray, Validate: validateBinaryNumber},
			{Name: "abs", Evaluate: evalAbs, ReturnType: rNumber, Validate: validateUnaryNumber},
			{Name: "ceiling", Evaluate: evalCeiling, ReturnType: rNumber, Validate: validateUnaryNumber},
			{Name: "floor", Evaluate: evalFloor, ReturnType: rNumber, Validate: validateUnaryNumber},
			{Name: "round", Evaluate: evalRound, ReturnType: rNumber, Validate: validateArity(1, 2, rNumber)},
			{Name: "sqrt", Evaluate: evalSqrt, ReturnType: rNumber, Validate: validateUnaryNumber},
			{Name: "rand", Evaluate: evalRand, ReturnType: rNumber, Validate: validateBinaryNumber},

			// Comparison
			{Name: types.KindEqual, Evaluate: evalEqual, ReturnType: rBool, Validate: validateComparison, Negation: types.KindNotEqual},
			{Name: types.KindNotEqual, Evaluate: evalNotEqual, ReturnType: rBool, Validate: validateComparison, Negation: types.KindEqual},
			{Name: types.KindLessThan, Evaluate: evalLessThan, ReturnType: rBool, Validate: validateComparison, Negation: types.KindGreaterThanOrEqual},
			{Name: types.KindLessThanOrEqual, Evaluate: evalLessThanOrEqual, ReturnType: rBool, Validate: validateComparison, Negation: types.KindGreaterThan},
			{Name: types.KindGreaterThan, Evaluate: evalGreaterThan, ReturnType: rBool, Validate: validateComparison, Negation: types.KindLessThanOrEqual},
			{Name: types.KindGreaterThanOrEqual, Evaluate: evalGreaterThanOrEqual, ReturnType: rBool, Validate: validateComparison, Negation: types.KindLessThan},
			{Name: "exists", Evaluate: evalExists, ReturnType: rBool, Validate: validateUnary},
			{Name: "empty", Evaluate: evalEmpty, ReturnType: rBool, Validate: validateUnary},
			{Name: "contains", Evaluate: evalContains, ReturnType: rBool, Validate: validateBinary},

			// Logic
			{Name: types.KindAnd, Evaluate: evalAnd, ReturnType: rBool, Validate: validateAtLeastOne, Negation: types.KindOr},
			{Name: types.KindOr, Evaluate: evalOr, ReturnType: rBool, Validate: validateAtLeastOne, Negation: types.KindAnd},
			{Name: types.KindNot, Evaluate: evalNot, ReturnType: rBool, Validate: validateUnary},
			{Name: types.KindIf, Evaluate: evalIf, ReturnType: rObject, Validate: validateArity(3, 3, rAny)},
			{Name: "coalesce", Evaluate: evalCoalesce, ReturnType: rObject, Validate: validateAtLeastOne},

			// String
			{Name: types.KindConcat, Evaluate: evalConcat, ReturnType: rString | rArray, Validate: validateAtLeastOne},
			{Name: "length", Evaluate: evalLength, ReturnType: rNumber, Validate: validateUnaryString},
			{Name: "toLower", Evaluate: evalToLower, ReturnType: rString, Validate: validateStringOrLocale},
			{Name: "toUpper", Evaluate: evalToUpper, ReturnType: rString, Validate: validateStringOrLocale},
			{Name: "sentenceCase", Evaluate: evalSentenceCase, ReturnType: rString, Validate: validateStringOrLocale},
			{Name: "titleCase", Evaluate: evalTitleCase, ReturnType: rString, Validate: validateStringOrLocale},
			{Name: "trim", Evaluate: evalTrim, ReturnType: rString, Validate: validateUnaryString},
			{Name: "substring", Evaluate: evalSubstring, ReturnType: rString, Validate: validateOrder(opt(rNumber), rString, rNumber)},
			{Name: "replace", Evaluate: evalReplace, ReturnType: rString, Validate: validateArity(3, 3, rString)},
			{Name: "replaceIgnoreCase", Evaluate: evalReplaceIgnoreCase, ReturnType: rString, Validate: validateArity(3, 3, rString)},
			{Name: "split", Evaluate: evalSplit, ReturnType: rArray, Validate: validateArity(1, 2, rString)},
			{Name: "startsWith", Evaluate: evalStartsWith, ReturnType: rBool, Validate: validateArity(2, 2, rString)},
			{Name: "endsWith", Evaluate: evalEndsWith, ReturnType: rBool, Validate: validateArity(2, 2, rString)},
			{Name: "countWord", Evaluate: evalCountWord, ReturnType: rNumber, Validate: validateUnaryString},
			{Name: "addOrdinal", Evaluate: evalAddOrdinal, ReturnType: rString, Validate: validateUnaryNumber},
			{Name: "indexOf", Evaluate: evalIndexOf, ReturnType: rNumber, Validate: validateOrder(nil, rString|rArray, rAny)},
			{Name: "lastIndexOf", Evaluate: evalLastIndexOf, ReturnType: rNumber, Validate: validateOrder(nil, rString|rArray, rAny)},
			{Name: "reverse", Evaluate: evalReverse, ReturnType: rString | rArray, Validate: validateArity(1, 1, rString|rArray)},
			{Name: "newGuid", Evaluate: evalNewGUID, ReturnType: rString, Validate: validateNoArgs},
			{Name: "eol", Evaluate: evalEOL, ReturnType: rString, Validate: validateNoArgs},
			{Name: "isMatch", Evaluate: evalIsMatch, ReturnType: rBool, Validate: validateIsMatch},
			{Name: "string", Evaluate: evalString, ReturnType: rString, Validate: validateOrder(opt(rString), rAny)},

			// Date and time
			{Name: "utcNow", Evaluate: evalUTCNow, ReturnType: rString, Validate: validateArity(0, 1, rString)},
			{Name: "addDays", Evaluate: evalAddDays, ReturnType: rString, Validate: validateAddTime},
			{Name: "addHours", Evaluate: evalAddHours, ReturnType: rString, Validate: validateAddTime},
			{Name: "addMinutes", Evaluate: evalAddMinutes, ReturnType: rString, Validate: validateAddTime},
			{Name: "addSeconds", Evaluate: evalAddSeconds, ReturnType: rString, Validate: validateAddTime},
			{Name: "addToTime", Evaluate: evalAddToTime, ReturnType: rString, Validate: validateOrder(opt(rString), rString, rNumber, rString)},
			{Name: "subtractFromTime", Evaluate: evalSubtractFromTime, ReturnType: rString, Validate: validateOrder(opt(rString), rString, rNumber, rString)},
			{Name: "getFutureTime", Evaluate: evalGetFutureTime, ReturnType: rString, Validate: validateOrder(opt(rString), rNumber, rString)},
			{Name: "getPastTime", Evaluate: evalGetPastTime, ReturnType: rString, Validate: validateOrder(opt(rString), rNumber, rString)},
			{Name: "dayOfMonth", Evaluate: evalDayOfMonth, ReturnType: rNumber, Validate: validateUnaryString},
			{Name: "dayOfWeek", Evaluate: evalDayOfWeek, ReturnType: rNumber, Validate: validateUnaryString},
			{Name: "dayOfYear", Evaluate: evalDayOfYear, ReturnType: rNumber, Validate: validateUnaryString},
			{Name: "month", Evaluate: evalMonth, ReturnType: rNumber, Validate: validateUnaryString},
			{Name: "year", Evaluate: evalYear, ReturnType: rNumber, Validate: validateUnaryString},
			{Name: "date", Evaluate: evalDate, ReturnType: rString, Validate: validateUnaryString},
			{Name: "ticks", Evaluate: evalTicks, ReturnType: rNumber, Validate: validateUnaryString},
			{Name: "getTimeOfDay", Evaluate: evalGetTimeOfDay, ReturnType: rString, Validate: validateUnaryString},
			{Name: "formatDateTime", Evaluate: evalFormatDateTime, ReturnType: rString, Validate: validateOrder(opt(rString, rString), rString)},
			{Name: "formatEpoch", Evaluate: evalFormatEpoch, ReturnType: rString, Validate: validateOrder(opt(rString, rString), rNumber)},
			{Name: "formatTicks", Evaluate: evalFormatTicks, ReturnType: rString, Validate: validateOrder(opt(rString, rString), rNumber)},
			{Name: "ticksToDays", Evaluate: evalTicksToDays, ReturnType: rNumber, Validate: validateUnaryNumber},
			{Name: "ticksToHours", Evaluate: evalTicksToHours, ReturnType: rNumber, Validate: validateUnaryNumber},
			{Name: "ticksToMinutes", Evaluate: evalTicksToMinutes, ReturnType: rNumber, Validate: validateUnaryNumber},
			{Name: "dateTimeDiff", Evaluate: evalDateTimeDiff, ReturnType: rNumber, Validate: validateArity(2, 2, rString)},
			{Name: "startOfDay", Evaluate: evalStartOfDay, ReturnType: rString, Validate: validateTimestampWithFormat},
			{Name: "startOfHour", Evaluate: evalStartOfHour, ReturnType: rString, Validate: validateTimestampWithFormat},
			{Name: "startOfMonth", Evaluate: evalStartOfMonth, ReturnType: rString, Validate: validateTimestampWithFormat},
			{Name: "convertFromUTC", Evaluate: evalConvertFromUTC, ReturnType: rString, Validate: validateOrder(opt(rString), rString, rString)},
			{Name: "convertToUTC", Evaluate: evalConvertToUTC, ReturnType: rString, Validate: validateOrder(opt(rString), rString, rString)},
			{Name: "dateReadBack", Evaluate: evalDateReadBack, ReturnType: rString, Validate: validateArity(2, 2, rString)},

			// Timex
			{Name: "isDefinite", Evaluate: evalIsDefinite, ReturnType: rBool, Validate: validateUnary},
			{Name: "isTime", Evaluate: evalIsTime, ReturnType: rBool, Validate: validateUnary},
			{Name: "isDuration", Evaluate: evalIsDuration, ReturnType: rBool, Validate: validateUnary},
			{Name: "isDate", Evaluate: evalIsDate, ReturnType: rBool, Validate: validateUnary},
			{Name: "isTimeRange", Evaluate: evalIsTimeRange, ReturnType: rBool, Validate: validateUnary},
			{Name: "isDateRange", Evaluate: evalIsDateRange, ReturnType: rBool, Validate: validateUnary},
			{Name: "isPresent", Evaluate: evalIsPresent, ReturnType: rBool, Validate: validateUnary},
			{Name: "validateTimex", Evaluate: evalValidateTimex, ReturnType: rBool, Validate: validateArity(1, -1, rString)},
			{Name: "resolve", Evaluate: evalResolve, ReturnType: rString, Validate: validateUnary},
			{Name: "getNextViableDate", Evaluate: evalGetNextViableDate, ReturnType: rString, Validate: validateArity(1, 2, rString)},
			{Name: "getPreviousViableDate", Evaluate: evalGetPreviousViableDate, ReturnType: rString, Validate: validateArity(1, 2, rString)},
			{Name: "getNextViableTime", Evaluate: evalGetNextViableTime, ReturnType: rString, Validate: validateArity(1, 2, rString)},
			{Name: "getPreviousViableTime", Evaluate: evalGetPreviousViableTime, ReturnType: rString, Validate: validateArity(1, 2, rString)},

			// Collections
			{Name: "count", Evaluate: evalCount, ReturnType: rNumber, Validate: validateArity(1, 1, rString|rArray)},
			{Name: "first", Evaluate: evalFirst, ReturnType: rObject, Validate: validateUnary},
			{Name: "last", Evaluate: evalLast, ReturnType: rObject, Validate: validateUnary},
			{Name: "join", Evaluate: evalJoin, ReturnType: rString, Validate: validateOrder(opt(rString), rArray, rString)},
			{Name: "union", Evaluate: evalUnion, ReturnType: rArray, Validate: validateAtLeastOneArray},
			{Name: "intersection", Evaluate: evalIntersection, ReturnType: rArray, Validate: validateAtLeastOneArray},
			{Name: "unique", Evaluate: evalUnique, ReturnType: rArray, Validate: validateUnaryArray},
			{Name: "flatten", Evaluate: evalFlatten, ReturnType: rArray, Validate: validateOrder(opt(rNumber), rArray)},
			{Name: "skip", Evaluate: evalSkip, ReturnType: rArray, Validate: validateOrder(nil, rArray, rNumber)},
			{Name: "take", Evaluate: evalTake, ReturnType: rArray | rString, Validate: validateOrder(nil, rArray|rString, rNumber)},
			{Name: "subArray", Evaluate: evalSubArray, ReturnType: rArray, Validate: validateOrder(opt(rNumber), rArray, rNumber)},
			{Name: "sortBy", Evaluate: evalSortBy, ReturnType: rArray, Validate: validateOrder(opt(rString), rArray)},
			{Name: "sortByDescending", Evaluate: evalSortByDescending, ReturnType: rArray, Validate: validateOrder(opt(rString), rArray)},
			{Name: "indicesAndValues", Evaluate: evalIndicesAndValues, ReturnType: rArray, Validate: validateUnary},
			{Name: types.KindCreateArray, Evaluate: evalCreateArray, ReturnType: rArray, Validate: validateArity(0, -1, rAny)},
			{Name: "foreach", Evaluate: evalForeach, ReturnType: rArray, Validate: validateIteration},
			{Name: "select", Evaluate: evalForeach, ReturnType: rArray, Validate: validateIteration},
			{Name: "where", Evaluate: evalWhere, ReturnType: rArray | rObject, Validate: validateIteration},
			{Name: "any", Evaluate: evalAny, ReturnType: rBool, Validate: validateIteration},
			{Name: "all", Evaluate: evalAll, ReturnType: rBool, Validate: validateIteration},

			// Conversion
			{Name: "bool", Evaluate: evalBool, ReturnType: rBool, Validate: validateUnary},
			{Name: "int", Evaluate: evalInt, ReturnType: rNumber, Validate: validateUnary},
			{Name: "float", Evaluate: evalFloat, ReturnType: rNumber, Validate: validateUnary},
			{Name: types.KindJSON, Evaluate: evalJSON, ReturnType: rObject, Validate: validateUnary},
			{Name: "jsonStringify", Evaluate: evalJSONStringify, ReturnType: rString, Validate: validateUnary},
			{Name: "base64", Evaluate: evalBase64, ReturnType: rString, Validate: validateUnary},
			{Name: "base64ToBinary", Evaluate: evalBase64ToBinary, ReturnType: rObject, Validate: validateUnaryString},
			{Name: "base64ToString", Evaluate: evalBase64ToString, ReturnType: rString, Validate: validateUnaryString},
			{Name: "binary", Evaluate: evalBinary, ReturnType: rObject, Validate: validateUnaryString},
			{Name: "dataUri", Evaluate: evalDataURI, ReturnType: rString, Validate: validateUnary},
			{Name: "dataUriToBinary", Evaluate: evalDataURIToBinary, ReturnType: rObject, Validate: validateUnaryString},
			{Name: "dataUriToString", Evaluate: evalDataURIToString, ReturnType: rString, Validate: validateUnaryString},
			{Name: "uriComponent", Evaluate: evalURIComponent, ReturnType: rString, Validate: validateUnaryString},
			{Name: "uriComponentToString", Evaluate: evalURIComponentToString, ReturnType: rString, Validate: validateUnaryString},
			{Name: "formatNumber", Evaluate: evalFormatNumber, ReturnType: rString, Validate: validateOrder(opt(rString), rNumber, rNumber)},
			{Name: "jPath", Evaluate: evalJPath, ReturnType: rObject, Validate: validateOrder(nil, rObject|rString, rString)},

			// URI parsing
			{Name: "uriHost", Evaluate: evalURIHost, ReturnType: rString, Validate: validateUnaryString},
			{Name: "uriPath", Evaluate: evalURIPath, ReturnType: rString, Validate: validateUnaryString},
			{Name: "uriPathAndQuery", Evaluate: evalURIPathAndQuery, ReturnType: rString, Validate: validateUnaryString},
			{Name: "uriPort", Evaluate: evalURIPort, ReturnType: rNumber, Validate: validateUnaryString},
			{Name: "uriQuery", Evaluate: evalURIQuery, ReturnType: rString, Validate: validateUnaryString},
			{Name: "uriScheme", Evaluate: evalURIScheme, ReturnType: rString, Validate: validateUnaryString},

			// Objects
			{Name: types.KindSetProperty, Evaluate: evalSetProperty, ReturnType: rObject, Validate: validateObjectProperty},
			{Name: "addProperty", Evaluate: evalAddProperty, ReturnType: rObject, Validate: validateObjectProperty},
			{Name: "removeProperty", Evaluate: evalRemoveProperty, ReturnType: rObject, Validate: validateRemoveProperty},
			{Name: "merge", Evaluate: evalMerge, ReturnType: rObject, Validate: validateAtLeastOne},

			// Type checks
			{Name: "isInteger", Evaluate: evalIsInteger, ReturnType: rBool, Validate: validateUnary},
			{Name: "isFloat", Evaluate: evalIsFloat, ReturnType: rBool, Validate: validateUnary},
			{Name: "isString", Evaluate: evalIsString, ReturnType: rBool, Validate: validateUnary},
			{Name: "isArray", Evaluate: evalIsArray, ReturnType: rBool, Validate: validateUnary},
			{Name: "isObject", Evaluate: evalIsObject, ReturnType: rBool, Validate: validateUnary},
			{Name: "isBoolean", Evaluate: evalIsBoolean, ReturnType: rBool, Validate: validateUnary},
			{Name: "isDateTime", Evaluate: evalIsDateTime, ReturnType: rBool, Validate: validateUnary},
		}

		builtinOperators = make(map[string]*types.OperatorDef, len(defs))
		for _, def := range defs {
			builtinOperators[def.Name] = def
		}
	})
}

// LookupBuiltin resolves a standard library operator.
func LookupBuiltin(name string) (*types.OperatorDef, bool) {
	initBuiltinOperators()
	def, ok := builtinOperators[name]
	return def, ok
}

// Builtins returns the sorted names of every standard library operator.
func Builtins() []string {
	initBuiltinOperators()
	names := make([]string, 0, len(builtinOperators))
	for name := range builtinOperators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MakeExpression builds and validates a node using the standard library.
func MakeExpression(kind string, children ...*types.Expression) (*types.Expression, error) {
	return makeWith(LookupBuiltin, kind, children...)
}

func makeWith(lookup types.Lookup, kind string, children ...*types.Expression) (*types.Expression, error) {
	if kind == types.KindConstant {
		if len(children) != 0 {
			return nil, types.Errorf(types.ErrArgumentCount, "constant nodes have no children")
		}
		return types.NewConstant(nil), nil
	}
	def, ok := lookup(kind)
	if !ok {
		return nil, types.Errorf(types.ErrUnknownFunction,
			"%s does not have an evaluator, it's not a built-in function or a custom function", kind)
	}
	return types.MakeExpression(def, children...)
}

// Constant is shorthand for types.NewConstant.
func Constant(value any) *types.Expression {
	return types.NewConstant(value)
}

// Accessor builds the accessor chain for a dotted path such as "user.name".
// Index segments become element nodes.
func Accessor(path string) (*types.Expression, error) {
	return accessorWith(LookupBuiltin, path)
}

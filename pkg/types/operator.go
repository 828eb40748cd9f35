package types

// Operator kinds the engine refers to by name. The standard library registers
// many more; these are the ones with syntax, control flow or path semantics.
const (
	KindConstant = "constant"
	KindLambda   = "lambda"

	// Paths
	KindAccessor       = "accessor"
	KindElement        = "element"
	KindGetProperty    = "getProperty"
	KindSetPathToValue = "setPathToValue"

	// Arithmetic
	KindAdd        = "add"
	KindSubtract   = "subtract"
	KindMultiply   = "multiply"
	KindDivide     = "divide"
	KindMod        = "mod"
	KindPower      = "power"
	KindUnaryMinus = "unaryMinus"
	KindUnaryPlus  = "unaryPlus"

	// Comparison
	KindEqual              = "equal"
	KindNotEqual           = "notEqual"
	KindLessThan           = "lessThan"
	KindLessThanOrEqual    = "lessThanOrEqual"
	KindGreaterThan        = "greaterThan"
	KindGreaterThanOrEqual = "greaterThanOrEqual"

	// Logic
	KindAnd = "and"
	KindOr  = "or"
	KindNot = "not"
	KindIf  = "if"

	// Constructors
	KindConcat      = "concat"
	KindCreateArray = "createArray"
	KindJSON        = "json"
	KindSetProperty = "setProperty"
)

// EvaluateFunc is the uniform evaluator signature shared by every operator.
type EvaluateFunc func(expr *Expression, state MemoryView, opts *Options) (any, error)

// ValidateFunc checks a freshly constructed node. It must be side-effect free.
type ValidateFunc func(expr *Expression) error

// OperatorDef is a registry entry describing one operator.
type OperatorDef struct {
	Name       string
	Evaluate   EvaluateFunc
	ReturnType ReturnType
	Validate   ValidateFunc
	// Negation names the operator producing the logical inverse, if any.
	Negation string
}

// Lookup resolves an operator name to its definition.
type Lookup func(name string) (*OperatorDef, bool)

// BinaryOperator describes an infix operator symbol.
type BinaryOperator struct {
	Symbol     string
	Kind       string
	Precedence int
	RightAssoc bool
}

// BinaryOperators lists the infix operators, lowest precedence first.
var BinaryOperators = []BinaryOperator{
	{Symbol: "||", Kind: KindOr, Precedence: 1},
	{Symbol: "&&", Kind: KindAnd, Precedence: 2},
	{Symbol: "==", Kind: KindEqual, Precedence: 3},
	{Symbol: "!=", Kind: KindNotEqual, Precedence: 3},
	{Symbol: "<", Kind: KindLessThan, Precedence: 4},
	{Symbol: "<=", Kind: KindLessThanOrEqual, Precedence: 4},
	{Symbol: ">", Kind: KindGreaterThan, Precedence: 4},
	{Symbol: ">=", Kind: KindGreaterThanOrEqual, Precedence: 4},
	{Symbol: "&", Kind: KindConcat, Precedence: 5},
	{Symbol: "+", Kind: KindAdd, Precedence: 6},
	{Symbol: "-", Kind: KindSubtract, Precedence: 6},
	{Symbol: "*", Kind: KindMultiply, Precedence: 7},
	{Symbol: "/", Kind: KindDivide, Precedence: 7},
	{Symbol: "%", Kind: KindMod, Precedence: 7},
	{Symbol: "^", Kind: KindPower, Precedence: 8, RightAssoc: true},
}

// UnaryOperators maps prefix symbols to operator kinds.
var UnaryOperators = map[string]string{
	"!": KindNot,
	"-": KindUnaryMinus,
	"+": KindUnaryPlus,
}

var (
	binaryByKind   = map[string]BinaryOperator{}
	binaryBySymbol = map[string]BinaryOperator{}
	unaryByKind    = map[string]string{}
)

func init() {
	for _, op := range BinaryOperators {
		binaryBySymbol[op.Symbol] = op
		if _, ok := binaryByKind[op.Kind]; !ok {
			binaryByKind[op.Kind] = op
		}
	}
	for sym, kind := range UnaryOperators {
		unaryByKind[kind] = sym
	}
}

// BinaryBySymbol finds the infix operator for a symbol.
func BinaryBySymbol(symbol string) (BinaryOperator, bool) {
	op, ok := binaryBySymbol[symbol]
	return op, ok
}

// BinaryByKind finds the infix rendering of an operator kind.
func BinaryByKind(kind string) (BinaryOperator, bool) {
	op, ok := binaryByKind[kind]
	return op, ok
}

// UnaryByKind finds the prefix symbol of an operator kind.
func UnaryByKind(kind string) (string, bool) {
	sym, ok := unaryByKind[kind]
	return sym, ok
}

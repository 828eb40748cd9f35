package types

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Expression is an immutable node of a parsed expression tree.
//
// Operator nodes carry the registry definition they were built from, so
// evaluation never has to look the kind up again. Constant nodes carry a
// literal value and no children.
type Expression struct {
	kind     string
	children []*Expression
	value    any
	def      *OperatorDef
}

var constantDef = &OperatorDef{
	Name:       KindConstant,
	ReturnType: ReturnObject,
	Evaluate: func(expr *Expression, _ MemoryView, _ *Options) (any, error) {
		return expr.value, nil
	},
}

// NewConstant creates a constant node.
func NewConstant(value any) *Expression {
	return &Expression{kind: KindConstant, value: value, def: constantDef}
}

// NewExpression creates an operator node without validating it.
// Prefer MakeExpression unless the caller validates the tree itself.
func NewExpression(def *OperatorDef, children ...*Expression) *Expression {
	return &Expression{kind: def.Name, children: children, def: def}
}

// MakeExpression creates an operator node and runs its validator once.
func MakeExpression(def *OperatorDef, children ...*Expression) (*Expression, error) {
	if def == nil {
		return nil, Errorf(ErrUnknownFunction, "missing operator definition")
	}
	expr := NewExpression(def, children...)
	if err := expr.Validate(); err != nil {
		return nil, err
	}
	return expr, nil
}

// Kind returns the operator name, or KindConstant.
func (e *Expression) Kind() string {
	return e.kind
}

// Children returns the ordered child nodes. The slice must not be modified.
func (e *Expression) Children() []*Expression {
	return e.children
}

// Child returns the i-th child or nil.
func (e *Expression) Child(i int) *Expression {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Value returns the literal of a constant node.
func (e *Expression) Value() any {
	return e.value
}

// IsConstant reports whether e is a literal leaf.
func (e *Expression) IsConstant() bool {
	return e.kind == KindConstant
}

// Def returns the operator definition behind the node.
func (e *Expression) Def() *OperatorDef {
	return e.def
}

// ReturnType returns the statically declared result type.
func (e *Expression) ReturnType() ReturnType {
	if e.IsConstant() {
		return ReturnTypeOf(e.value)
	}
	return e.def.ReturnType
}

// Negation returns the kind of the logical inverse operator, or "".
func (e *Expression) Negation() string {
	if e.def == nil {
		return ""
	}
	return e.def.Negation
}

// Validate runs this node's validator.
func (e *Expression) Validate() error {
	if e.def == nil {
		return Errorf(ErrUnknownFunction, "%s is not a known function", e.kind)
	}
	if e.def.Validate == nil {
		return nil
	}
	return e.def.Validate(e)
}

// ValidateTree validates the node and all descendants, top-down.
func (e *Expression) ValidateTree() error {
	if err := e.Validate(); err != nil {
		return err
	}
	for _, child := range e.children {
		if err := child.ValidateTree(); err != nil {
			return err
		}
	}
	return nil
}

// TryEvaluate evaluates the node against state. Expected failures come
// back as the error result; nothing panics for data-dependent conditions.
func (e *Expression) TryEvaluate(state MemoryView, opts *Options) (any, error) {
	if e.def == nil || e.def.Evaluate == nil {
		return nil, fmt.Errorf("%s has no evaluator", e.kind)
	}
	if opts == nil {
		opts = NewOptions()
	}
	return e.def.Evaluate(e, state, opts)
}

// DeepEquals reports structural equality.
func (e *Expression) DeepEquals(other *Expression) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.kind != other.kind || len(e.children) != len(other.children) {
		return false
	}
	if e.IsConstant() {
		return reflect.DeepEqual(e.value, other.value)
	}
	for i := range e.children {
		if !e.children[i].DeepEquals(other.children[i]) {
			return false
		}
	}
	return true
}

// String renders source text that parses back to an equivalent tree.
func (e *Expression) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Expression) write(sb *strings.Builder) {
	switch {
	case e.IsConstant():
		sb.WriteString(FormatConstant(e.value))
		return
	case e.kind == KindAccessor && len(e.children) >= 1 && e.children[0].IsConstant() && isIdentifierValue(e.children[0].value):
		name := e.children[0].value.(string)
		if len(e.children) == 2 {
			e.children[1].write(sb)
			sb.WriteByte('.')
		}
		sb.WriteString(name)
		return
	case e.kind == KindElement && len(e.children) == 2:
		e.children[0].write(sb)
		sb.WriteByte('[')
		e.children[1].write(sb)
		sb.WriteByte(']')
		return
	case e.kind == KindLambda && len(e.children) == 2:
		e.children[0].write(sb)
		sb.WriteString(" => ")
		e.children[1].write(sb)
		return
	}

	if op, ok := BinaryByKind(e.kind); ok && len(e.children) == 2 {
		sb.WriteByte('(')
		e.children[0].write(sb)
		sb.WriteString(" " + op.Symbol + " ")
		e.children[1].write(sb)
		sb.WriteByte(')')
		return
	}
	if sym, ok := UnaryByKind(e.kind); ok && len(e.children) == 1 {
		sb.WriteString(sym + "(")
		e.children[0].write(sb)
		sb.WriteByte(')')
		return
	}

	sb.WriteString(e.kind)
	sb.WriteByte('(')
	for i, child := range e.children {
		if i > 0 {
			sb.WriteString(", ")
		}
		child.write(sb)
	}
	sb.WriteByte(')')
}

// FormatConstant renders a literal so that the parser reads back an
// equivalent value. Floats always carry a decimal point. Objects render as
// json('...') calls and timestamps as ISO 8601 strings.
func FormatConstant(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return QuoteString(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = FormatConstant(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case time.Time:
		return QuoteString(v.UTC().Format("2006-01-02T15:04:05.000Z"))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return FormatConstant(items)
	case reflect.Map, reflect.Struct, reflect.Pointer:
		if text, ok := compactJSON(value); ok {
			return "json(" + QuoteString(text) + ")"
		}
	}
	return fmt.Sprint(value)
}

func compactJSON(value any) (string, bool) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", false
	}
	return strings.TrimSuffix(sb.String(), "\n"), true
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "float(" + QuoteString(strconv.FormatFloat(f, 'g', -1, 64)) + ")"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// QuoteString single-quotes s, escaping backslashes and quotes.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// IsIdentifier reports whether s can be written as a bare path segment.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i == 0 && (r == '@' || r == '$' || r == '#'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	switch s {
	case "true", "false", "null":
		return false
	}
	return true
}

func isIdentifierValue(v any) bool {
	s, ok := v.(string)
	return ok && IsIdentifier(s)
}

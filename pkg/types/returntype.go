package types

import "strings"

// ReturnType is a set of flags describing the static type(s) an expression
// may produce. Operators that overload on their arguments declare a union,
// e.g. add is String|Number.
type ReturnType uint8

const (
	ReturnBoolean ReturnType = 1 << iota
	ReturnNumber
	ReturnObject
	ReturnString
	ReturnArray
)

// ReturnAny accepts every static type.
const ReturnAny = ReturnBoolean | ReturnNumber | ReturnObject | ReturnString | ReturnArray

// Has reports whether every flag in other is set.
func (rt ReturnType) Has(other ReturnType) bool {
	return rt&other == other
}

// Accepts reports whether a child declared as actual can satisfy the
// expected type set. Object-declared children are only known at runtime and
// are always accepted.
func (rt ReturnType) Accepts(actual ReturnType) bool {
	if actual&ReturnObject != 0 {
		return true
	}
	return rt&actual != 0
}

// String renders the flag set as "String|Number".
func (rt ReturnType) String() string {
	if rt == 0 {
		return "None"
	}
	var parts []string
	names := []struct {
		flag ReturnType
		name string
	}{
		{ReturnBoolean, "Boolean"},
		{ReturnNumber, "Number"},
		{ReturnObject, "Object"},
		{ReturnString, "String"},
		{ReturnArray, "Array"},
	}
	for _, n := range names {
		if rt&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ReturnTypeOf derives the static type of a constant value.
func ReturnTypeOf(value any) ReturnType {
	switch value.(type) {
	case string:
		return ReturnString
	case bool:
		return ReturnBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return ReturnNumber
	case []any, []string, []int64, []float64:
		return ReturnArray
	default:
		return ReturnObject
	}
}

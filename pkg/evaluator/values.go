package evaluator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// IsNumber reports whether v is a Go numeric value.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

// IsInteger reports whether v has a Go integer type. Integral floats are
// not integers for arithmetic purposes.
func IsInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// ToInt64 converts an integer (or integral float) to int64.
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		if float32(math.Trunc(float64(n))) == n {
			return int64(n), true
		}
	case float64:
		if math.Trunc(n) == n && !math.IsInf(n, 0) && math.Abs(n) < 1<<63 {
			return int64(n), true
		}
	}
	return 0, false
}

// ToFloat64 converts any numeric value to float64.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := ToInt64(v); ok && IsInteger(v) {
		return float64(i), true
	}
	if u, ok := v.(uint64); ok {
		return float64(u), true
	}
	return 0, false
}

// IsLogicTrue implements truthiness: only nil and false are falsy.
func IsLogicTrue(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return v != nil
}

// IsList reports whether v is a list (but not a string or byte slice).
func IsList(v any) bool {
	_, ok := ToList(v)
	return ok
}

// ToList converts any slice or array into []any.
func ToList(v any) ([]any, bool) {
	switch l := v.(type) {
	case nil:
		return nil, false
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []byte, string:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// IsObject reports whether v is a structured value with named properties.
func IsObject(v any) bool {
	_, ok := ToObject(v)
	return ok
}

// ToObject views a map with string keys as map[string]any. Other map types
// are copied.
func ToObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return o, true
	case map[string]string:
		out := make(map[string]any, len(o))
		for k, s := range o {
			out[k] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// CopyObject returns a shallow copy of a structured value.
func CopyObject(v any) (map[string]any, bool) {
	obj, ok := ToObject(v)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(obj))
	for k, val := range obj {
		out[k] = val
	}
	return out, true
}

// SortedKeys returns the keys of obj in lexical order.
func SortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty reports emptiness: nil, "", empty lists and objects with no
// properties are empty. Numbers and booleans never are.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	if l, ok := ToList(v); ok {
		return len(l) == 0
	}
	if o, ok := ToObject(v); ok {
		return len(o) == 0
	}
	return false
}

func isContainer(v any) bool {
	if _, ok := ToList(v); ok {
		return true
	}
	_, ok := ToObject(v)
	return ok
}

// IsEqual compares two values. Numbers compare within a small tolerance,
// lists and objects compare deeply, and any two empty containers are
// equal, so {} equals []. An empty string equals neither.
func IsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if la, ok := ToList(a); ok {
		if lb, ok := ToList(b); ok {
			if len(la) != len(lb) {
				return false
			}
			for i := range la {
				if !IsEqual(la[i], lb[i]) {
					return false
				}
			}
			return true
		}
	}

	if oa, ok := ToObject(a); ok {
		if ob, ok := ToObject(b); ok {
			if len(oa) != len(ob) {
				return false
			}
			for k, va := range oa {
				vb, ok := ob[k]
				if !ok || !IsEqual(va, vb) {
					return false
				}
			}
			return true
		}
	}

	if IsNumber(a) && IsNumber(b) {
		fa, _ := ToFloat64(a)
		fb, _ := ToFloat64(b)
		return math.Abs(fa-fb) < 0.00000001
	}

	if isContainer(a) && isContainer(b) && IsEmpty(a) && IsEmpty(b) {
		return true
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}

	defer func() { _ = recover() }()
	return reflect.DeepEqual(a, b) || a == b
}

// Stringify renders a value as text: strings verbatim, numbers culture
// invariant, containers as compact JSON, nil as "".
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return formatInvariant(s)
	case float32:
		return formatInvariant(float64(s))
	case time.Time:
		return formatDefault(s)
	case []byte:
		return string(s)
	}
	if IsInteger(v) {
		return fmt.Sprint(v)
	}
	if IsList(v) || IsObject(v) {
		out, err := marshalJSON(v)
		if err == nil {
			return out
		}
	}
	return fmt.Sprint(v)
}

func formatInvariant(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ParseJSON decodes text keeping integral numbers as int64.
func ParseJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return normalizeJSON(v), nil
}

func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i, item := range t {
			t[i] = normalizeJSON(item)
		}
		return t
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeJSON(item)
		}
		return t
	default:
		return v
	}
}

// describe renders a value for error messages.
func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + t + "'"
	default:
		return Stringify(v)
	}
}

// typeName names the runtime kind of v for error messages.
func typeName(v any) string {
	switch {
	case v == nil:
		return "null"
	case IsInteger(v):
		return "integer"
	case IsNumber(v):
		return "number"
	case IsList(v):
		return "array"
	case IsObject(v):
		return "object"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Time:
		return "datetime"
	}
	return fmt.Sprintf("%T", v)
}

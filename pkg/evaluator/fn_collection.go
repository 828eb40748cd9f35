package evaluator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/goexpr/pkg/memory"
	"github.com/sandrolain/goexpr/pkg/types"
)

var evalCount = ApplyWithError(func(args []any) (any, error) {
	switch v := args[0].(type) {
	case string:
		return int64(utf8.RuneCountInString(v)), nil
	}
	if list, ok := ToList(args[0]); ok {
		return int64(len(list)), nil
	}
	if obj, ok := ToObject(args[0]); ok {
		return int64(len(obj)), nil
	}
	return nil, fmt.Errorf("%s is not a string, list or object", describe(args[0]))
}, VerifyContainer)

var evalFirst = Apply(func(args []any) any {
	if s, ok := args[0].(string); ok {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 {
			return nil
		}
		return string(r)
	}
	if list, ok := ToList(args[0]); ok && len(list) > 0 {
		return list[0]
	}
	return nil
}, nil)

var evalLast = Apply(func(args []any) any {
	if s, ok := args[0].(string); ok {
		r, size := utf8.DecodeLastRuneInString(s)
		if size == 0 {
			return nil
		}
		return string(r)
	}
	if list, ok := ToList(args[0]); ok && len(list) > 0 {
		return list[len(list)-1]
	}
	return nil
}, nil)

// evalJoin joins list items with sep; a third argument separates the last
// pair, as in "a, b and c".
var evalJoin = ApplyWithError(func(args []any) (any, error) {
	list, ok := ToList(args[0])
	if !ok {
		return nil, fmt.Errorf("%s is not a list", describe(args[0]))
	}
	sep := str(args[1])
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = Stringify(item)
	}
	if len(args) > 2 && len(parts) > 1 {
		head := strings.Join(parts[:len(parts)-1], sep)
		return head + str(args[2]) + parts[len(parts)-1], nil
	}
	return strings.Join(parts, sep), nil
}, nil)

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if IsEqual(item, v) {
			return true
		}
	}
	return false
}

func uniqueValues(list []any) []any {
	out := make([]any, 0, len(list))
	for _, item := range list {
		if !containsValue(out, item) {
			out = append(out, item)
		}
	}
	return out
}

var evalUnion = Apply(func(args []any) any {
	var all []any
	for _, arg := range args {
		list, _ := ToList(arg)
		all = append(all, list...)
	}
	return uniqueValues(all)
}, VerifyList)

var evalIntersection = Apply(func(args []any) any {
	first, _ := ToList(args[0])
	result := uniqueValues(first)
	for _, arg := range args[1:] {
		list, _ := ToList(arg)
		kept := result[:0:0]
		for _, item := range result {
			if containsValue(list, item) {
				kept = append(kept, item)
			}
		}
		result = kept
	}
	return result
}, VerifyList)

var evalUnique = Apply(func(args []any) any {
	list, _ := ToList(args[0])
	return uniqueValues(list)
}, VerifyList)

func flattenDepth(list []any, depth int64) []any {
	var out []any
	for _, item := range list {
		if inner, ok := ToList(item); ok && depth > 0 {
			out = append(out, flattenDepth(inner, depth-1)...)
			continue
		}
		out = append(out, item)
	}
	return out
}

var evalFlatten = ApplyWithError(func(args []any) (any, error) {
	list, _ := ToList(args[0])
	depth := int64(100)
	if len(args) > 1 {
		d, ok := ToInt64(args[1])
		if !ok || !IsInteger(args[1]) {
			return nil, fmt.Errorf("%s is not an integer", describe(args[1]))
		}
		depth = d
	}
	out := flattenDepth(list, depth)
	if out == nil {
		out = []any{}
	}
	return out, nil
}, nil)

var evalSkip = ApplyWithError(func(args []any) (any, error) {
	list, ok := ToList(args[0])
	if !ok {
		return nil, fmt.Errorf("%s is not a list", describe(args[0]))
	}
	n, ok := ToInt64(args[1])
	if !ok || !IsInteger(args[1]) {
		return nil, fmt.Errorf("%s is not an integer", describe(args[1]))
	}
	n = clamp(n, 0, int64(len(list)))
	return append([]any{}, list[n:]...), nil
}, nil)

var evalTake = ApplyWithError(func(args []any) (any, error) {
	n, ok := ToInt64(args[1])
	if !ok || !IsInteger(args[1]) {
		return nil, fmt.Errorf("%s is not an integer", describe(args[1]))
	}
	if s, ok := args[0].(string); ok {
		runes := []rune(s)
		return string(runes[:clamp(n, 0, int64(len(runes)))]), nil
	}
	list, ok := ToList(args[0])
	if !ok {
		return nil, fmt.Errorf("%s is not a list or a string", describe(args[0]))
	}
	return append([]any{}, list[:clamp(n, 0, int64(len(list)))]...), nil
}, nil)

var evalSubArray = ApplyWithError(func(args []any) (any, error) {
	list, ok := ToList(args[0])
	if !ok {
		return nil, fmt.Errorf("%s is not a list", describe(args[0]))
	}
	start, _ := ToInt64(args[1])
	if start < 0 || start > int64(len(list)) {
		return nil, fmt.Errorf("start index %d is not in range 0 to %d", start, len(list))
	}
	end := int64(len(list))
	if len(args) > 2 {
		end, _ = ToInt64(args[2])
		if end < start || end > int64(len(list)) {
			return nil, fmt.Errorf("end index %d is not in range %d to %d", end, start, len(list))
		}
	}
	return append([]any{}, list[start:end]...), nil
}, verifySubArray)

func verifySubArray(value any, child *types.Expression, pos int) error {
	if pos == 0 {
		return VerifyList(value, child, pos)
	}
	return VerifyInteger(value, child, pos)
}

func clamp(n, lo, hi int64) int64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func sortList(args []any, descending bool) (any, error) {
	list, ok := ToList(args[0])
	if !ok {
		return nil, fmt.Errorf("%s is not a list", describe(args[0]))
	}
	out := append([]any{}, list...)
	key := func(v any) any { return v }
	if len(args) > 1 {
		prop := str(args[1])
		key = func(v any) any {
			return memory.NewSimpleObjectMemory(v).GetValue(prop)
		}
	}
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(out[i]), key(out[j])
		if a == nil || b == nil {
			if descending {
				return a != nil && b == nil
			}
			return a == nil && b != nil
		}
		c, err := compareValues(a, b)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		if descending {
			return c > 0
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

var evalSortBy = ApplyWithError(func(args []any) (any, error) {
	return sortList(args, false)
}, nil)

var evalSortByDescending = ApplyWithError(func(args []any) (any, error) {
	return sortList(args, true)
}, nil)

// evalIndicesAndValues turns a list into [{index, value}] and an object
// into [{index: key, value}].
var evalIndicesAndValues = ApplyWithError(func(args []any) (any, error) {
	if list, ok := ToList(args[0]); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = map[string]any{"index": int64(i), "value": item}
		}
		return out, nil
	}
	if obj, ok := ToObject(args[0]); ok {
		keys := SortedKeys(obj)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = map[string]any{"index": k, "value": obj[k]}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s is not a list or an object", describe(args[0]))
}, nil)

var evalCreateArray = Apply(func(args []any) any {
	return append([]any{}, args...)
}, nil)

// evalContains tests substring, list membership or object key presence.
// Like comparisons it reads without null substitution and a failing
// argument makes it false.
func evalContains(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	args, err := EvaluateChildren(expr, state, opts.WithoutNullSubstitution(), nil)
	if err != nil {
		return false, nil
	}
	return containsImpl(args)
}

func containsImpl(args []any) (bool, error) {
	switch c := args[0].(type) {
	case nil:
		return false, nil
	case string:
		s, ok := args[1].(string)
		if !ok {
			return false, nil
		}
		return strings.Contains(c, s), nil
	}
	if list, ok := ToList(args[0]); ok {
		return containsValue(list, args[1]), nil
	}
	if obj, ok := ToObject(args[0]); ok {
		key, ok := args[1].(string)
		if !ok {
			return false, nil
		}
		_, found := obj[key]
		return found, nil
	}
	return false, errors.New("contains expects a string, list or object")
}

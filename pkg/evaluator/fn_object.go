package evaluator

import (
	"fmt"

	"github.com/sandrolain/goexpr/pkg/jsonpath"
	"github.com/sandrolain/goexpr/pkg/types"
)

// Object functions never mutate their input; they work on a shallow copy.

func objectArg(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	obj, ok := CopyObject(v)
	if !ok {
		return nil, fmt.Errorf("%s is not an object", describe(v))
	}
	return obj, nil
}

var evalSetProperty = ApplyWithError(func(args []any) (any, error) {
	obj, err := objectArg(args[0])
	if err != nil {
		return nil, err
	}
	obj[str(args[1])] = args[2]
	return obj, nil
}, nil)

var evalAddProperty = ApplyWithError(func(args []any) (any, error) {
	obj, err := objectArg(args[0])
	if err != nil {
		return nil, err
	}
	name := str(args[1])
	if _, exists := obj[name]; exists {
		return nil, fmt.Errorf("%s already exists", name)
	}
	obj[name] = args[2]
	return obj, nil
}, nil)

var evalRemoveProperty = ApplyWithError(func(args []any) (any, error) {
	obj, err := objectArg(args[0])
	if err != nil {
		return nil, err
	}
	delete(obj, str(args[1]))
	return obj, nil
}, nil)

// evalMerge combines objects left to right; later properties win. A list
// argument contributes each of its objects.
var evalMerge = ApplyWithError(func(args []any) (any, error) {
	out := map[string]any{}
	var add func(v any) error
	add = func(v any) error {
		if list, ok := ToList(v); ok {
			for _, item := range list {
				if err := add(item); err != nil {
					return err
				}
			}
			return nil
		}
		obj, ok := ToObject(v)
		if !ok {
			return fmt.Errorf("%s is not an object or a list of objects", describe(v))
		}
		for k, val := range obj {
			out[k] = val
		}
		return nil
	}
	for _, arg := range args {
		if err := add(arg); err != nil {
			return nil, err
		}
	}
	return out, nil
}, VerifyNotNull)

// evalJPath runs a JSONPath query. A single match returns the value, more
// matches return a list.
var evalJPath = ApplyWithError(func(args []any) (any, error) {
	doc := args[0]
	if s, ok := doc.(string); ok {
		parsed, err := ParseJSON(s)
		if err != nil {
			return nil, fmt.Errorf("%s is not valid JSON: %w", describe(s), err)
		}
		doc = parsed
	}
	p, err := jsonpath.Compile(str(args[1]))
	if err != nil {
		return nil, err
	}
	values, err := p.Values(normalizeDocument(doc))
	if err != nil {
		return nil, err
	}
	switch len(values) {
	case 0:
		return nil, fmt.Errorf("there is no matching node for path %s in the given JSON", describe(args[1]))
	case 1:
		return values[0], nil
	}
	return values, nil
}, nil)

// normalizeDocument converts nested Go containers into map[string]any and
// []any so that JSONPath can walk them.
func normalizeDocument(v any) any {
	if list, ok := ToList(v); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = normalizeDocument(item)
		}
		return out
	}
	if obj, ok := ToObject(v); ok {
		out := make(map[string]any, len(obj))
		for k, item := range obj {
			out[k] = normalizeDocument(item)
		}
		return out
	}
	return v
}

func validateObjectProperty(expr *types.Expression) error {
	return ValidateOrder(expr, nil, types.ReturnObject, types.ReturnString, types.ReturnAny)
}

func validateRemoveProperty(expr *types.Expression) error {
	return ValidateOrder(expr, nil, types.ReturnObject, types.ReturnString)
}

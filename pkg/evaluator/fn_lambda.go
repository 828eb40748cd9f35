package evaluator

import (
	"fmt"

	"github.com/sandrolain/goexpr/pkg/memory"
	"github.com/sandrolain/goexpr/pkg/types"
)

// Iteration functions accept two shapes:
//
//	foreach(items, x, x.name)   iterator named by a bare accessor
//	foreach(items, x => x.name) lambda
//
// Objects iterate as {key, value} pairs in key order. Each element is bound
// in a frame stacked over the caller's state, so the iterator shadows host
// names while writes still reach host state.

// lambdaParts extracts the iterator name and body from either shape.
func lambdaParts(expr *types.Expression) (string, *types.Expression) {
	if len(expr.Children()) == 2 {
		lambda := expr.Child(1)
		name, _ := lambda.Child(0).Child(0).Value().(string)
		return name, lambda.Child(1)
	}
	name, _ := expr.Child(1).Child(0).Value().(string)
	return name, expr.Child(2)
}

// iterationItems returns the items to iterate and whether the source was
// an object.
func iterationItems(source any, expr *types.Expression) ([]any, bool, error) {
	if source == nil {
		return []any{}, false, nil
	}
	if list, ok := ToList(source); ok {
		return list, false, nil
	}
	if obj, ok := ToObject(source); ok {
		keys := SortedKeys(obj)
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = map[string]any{"key": k, "value": obj[k]}
		}
		return items, true, nil
	}
	return nil, false, fmt.Errorf("%s is not a collection or structure object to iterate over", expr.Child(0))
}

// iterate evaluates body once per element; visit decides whether to stop.
func iterate(expr *types.Expression, state types.MemoryView, opts *types.Options,
	visit func(item, result any, err error) (stop bool, fatal error)) (bool, error) {

	source, err := expr.Child(0).TryEvaluate(state, opts)
	if err != nil {
		return false, err
	}
	items, isObject, err := iterationItems(source, expr)
	if err != nil {
		return false, err
	}
	name, body := lambdaParts(expr)
	stack := memory.NewStackedMemory(state)
	for _, item := range items {
		stack.Push(memory.NewSimpleObjectMemory(map[string]any{name: item}))
		result, evalErr := body.TryEvaluate(stack, opts)
		stack.Pop()
		stop, fatal := visit(item, result, evalErr)
		if fatal != nil {
			return isObject, fatal
		}
		if stop {
			break
		}
	}
	return isObject, nil
}

func evalForeach(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	out := []any{}
	_, err := iterate(expr, state, opts, func(_, result any, err error) (bool, error) {
		if err != nil {
			return true, err
		}
		out = append(out, result)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func evalWhere(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	kept := []any{}
	isObject, err := iterate(expr, state, opts, func(item, result any, err error) (bool, error) {
		if err != nil {
			return true, err
		}
		if IsLogicTrue(result) {
			kept = append(kept, item)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if !isObject {
		return kept, nil
	}
	obj := make(map[string]any, len(kept))
	for _, item := range kept {
		pair := item.(map[string]any)
		obj[pair["key"].(string)] = pair["value"]
	}
	return obj, nil
}

func evalAny(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	found := false
	_, err := iterate(expr, state, opts, func(_, result any, err error) (bool, error) {
		if err == nil && IsLogicTrue(result) {
			found = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func evalAll(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	all := true
	_, err := iterate(expr, state, opts, func(_, result any, err error) (bool, error) {
		if err != nil || !IsLogicTrue(result) {
			all = false
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// evalLambda rejects standalone evaluation; lambdas only appear as
// arguments of iteration functions.
func evalLambda(expr *types.Expression, _ types.MemoryView, _ *types.Options) (any, error) {
	return nil, fmt.Errorf("%s cannot be evaluated outside of an iteration function", expr)
}

func isIteratorName(expr *types.Expression) bool {
	return expr.Kind() == types.KindAccessor && len(expr.Children()) == 1
}

func validateLambda(expr *types.Expression) error {
	if err := ValidateArityAndAnyType(expr, 2, 2, types.ReturnAny); err != nil {
		return err
	}
	if !isIteratorName(expr.Child(0)) {
		return types.Errorf(types.ErrInvalidArgument, "%s must be a single identifier", expr.Child(0))
	}
	return nil
}

func validateIteration(expr *types.Expression) error {
	children := expr.Children()
	switch len(children) {
	case 2:
		if children[1].Kind() != types.KindLambda {
			return types.Errorf(types.ErrInvalidArgument, "%s must be a lambda expression in %s", children[1], expr)
		}
	case 3:
		if !isIteratorName(children[1]) {
			return types.Errorf(types.ErrInvalidArgument, "second parameter of %s is not an identifier: %s", expr.Kind(), children[1])
		}
	default:
		return types.Errorf(types.ErrArgumentCount, "%s should have 2 or 3 children", expr)
	}
	return checkChildType(expr, children[0], types.ReturnArray|types.ReturnObject)
}

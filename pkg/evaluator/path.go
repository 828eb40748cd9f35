package evaluator

import (
	"fmt"
	"strings"

	"github.com/sandrolain/goexpr/pkg/memory"
	"github.com/sandrolain/goexpr/pkg/types"
)

// TryAccumulatePath folds a chain of accessor, literal element and literal
// getProperty nodes into one dotted path. Folding stops at the first node
// that is not a literal path step; that node is returned as left and the
// caller evaluates it and resolves path against its value. A nil left means
// path is rooted at the state.
func TryAccumulatePath(expr *types.Expression, state types.MemoryView, opts *types.Options) (string, *types.Expression, error) {
	var steps []string
	cur := expr
loop:
	for cur != nil {
		switch cur.Kind() {
		case types.KindAccessor:
			name, _ := cur.Child(0).Value().(string)
			steps = append(steps, memory.JoinPath("", name))
			cur = cur.Child(1)
		case types.KindElement:
			idx := cur.Child(1)
			if !idx.IsConstant() {
				break loop
			}
			switch v := idx.Value().(type) {
			case string:
				steps = append(steps, "['"+strings.ReplaceAll(v, "'", `\'`)+"']")
			default:
				n, ok := ToInt64(v)
				if !ok || !IsInteger(v) {
					return "", nil, fmt.Errorf("%s doesn't return an int or string", idx)
				}
				steps = append(steps, fmt.Sprintf("[%d]", n))
			}
			cur = cur.Child(0)
		case types.KindGetProperty:
			name := cur.Child(len(cur.Children()) - 1)
			s, ok := name.Value().(string)
			if !name.IsConstant() || !ok {
				break loop
			}
			steps = append(steps, memory.JoinPath("", s))
			if len(cur.Children()) == 1 {
				cur = nil
			} else {
				cur = cur.Child(0)
			}
		default:
			break loop
		}
	}

	var sb strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if sb.Len() > 0 && !strings.HasPrefix(step, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(step)
	}
	return sb.String(), cur, nil
}

// resolvePath evaluates expr via path folding.
func resolvePath(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	path, left, err := TryAccumulatePath(expr, state, opts)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return WrapGetValue(state, path, opts), nil
	}
	scope, err := left.TryEvaluate(state, opts)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return scope, nil
	}
	return WrapGetValue(memory.NewSimpleObjectMemory(scope), path, opts), nil
}

// WrapGetValue reads path and applies null substitution.
func WrapGetValue(state types.MemoryView, path string, opts *types.Options) any {
	return opts.Substitute(path, state.GetValue(path))
}

func evalAccessor(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	return resolvePath(expr, state, opts)
}

// evalElement handles literal indices through path folding. A computed
// index is evaluated here directly since folding would stop at this node.
func evalElement(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	if expr.Child(1).IsConstant() {
		return resolvePath(expr, state, opts)
	}
	instance, err := expr.Child(0).TryEvaluate(state, opts)
	if err != nil {
		return nil, err
	}
	idx, err := expr.Child(1).TryEvaluate(state, opts)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, nil
	}
	switch key := idx.(type) {
	case string:
		v, _ := memory.AccessProperty(instance, key)
		return v, nil
	default:
		n, ok := ToInt64(idx)
		if !ok || !IsNumber(idx) {
			return nil, fmt.Errorf("%s doesn't return an int or string", expr.Child(1))
		}
		v, err := memory.AccessIndex(instance, int(n))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", expr, err)
		}
		return v, nil
	}
}

func evalGetProperty(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	nameExpr := expr.Child(len(expr.Children()) - 1)
	if nameExpr.IsConstant() {
		if _, ok := nameExpr.Value().(string); ok {
			return resolvePath(expr, state, opts)
		}
	}

	if len(expr.Children()) == 1 {
		name, err := nameExpr.TryEvaluate(state, opts)
		if err != nil {
			return nil, err
		}
		s, ok := name.(string)
		if !ok {
			return nil, fmt.Errorf("%s is not a string", nameExpr)
		}
		return WrapGetValue(state, s, opts), nil
	}

	instance, err := expr.Child(0).TryEvaluate(state, opts)
	if err != nil {
		return nil, err
	}
	name, err := nameExpr.TryEvaluate(state, opts)
	if err != nil {
		return nil, err
	}
	s, ok := name.(string)
	if !ok {
		return nil, fmt.Errorf("%s is not a string", nameExpr)
	}
	if instance == nil {
		return nil, nil
	}
	v, _ := memory.AccessProperty(instance, s)
	return v, nil
}

func evalSetPathToValue(expr *types.Expression, state types.MemoryView, opts *types.Options) (any, error) {
	path, left, err := TryAccumulatePath(expr.Child(0), state, opts)
	if err != nil {
		return nil, err
	}
	if left != nil {
		return nil, fmt.Errorf("%s is not a valid path to set value", expr.Child(0))
	}
	value, err := expr.Child(1).TryEvaluate(state, opts)
	if err != nil {
		return nil, err
	}
	if err := state.SetValue(path, value); err != nil {
		return nil, err
	}
	return value, nil
}

func validateAccessor(expr *types.Expression) error {
	children := expr.Children()
	if len(children) < 1 || len(children) > 2 {
		return types.Errorf(types.ErrArgumentCount, "%s should have 1 or 2 children", expr.Kind())
	}
	if _, ok := children[0].Value().(string); !ok || !children[0].IsConstant() {
		return types.Errorf(types.ErrArgumentType, "%s must have a constant string name", expr.Kind())
	}
	return nil
}

func validateElement(expr *types.Expression) error {
	return ValidateArityAndAnyType(expr, 2, 2, types.ReturnAny)
}

func validateGetProperty(expr *types.Expression) error {
	if err := ValidateArityAndAnyType(expr, 1, 2, types.ReturnAny); err != nil {
		return err
	}
	name := expr.Child(len(expr.Children()) - 1)
	return checkChildType(expr, name, types.ReturnString)
}

func validateSetPathToValue(expr *types.Expression) error {
	if err := ValidateArityAndAnyType(expr, 2, 2, types.ReturnAny); err != nil {
		return err
	}
	switch expr.Child(0).Kind() {
	case types.KindAccessor, types.KindElement, types.KindGetProperty:
		return nil
	}
	return types.Errorf(types.ErrInvalidArgument, "%s is not a valid path to set value", expr.Child(0))
}

func accessorWith(lookup types.Lookup, path string) (*types.Expression, error) {
	segments, err := memory.ParsePath(path)
	if err != nil {
		return nil, types.Errorf(types.ErrInvalidArgument, "%s", err.Error()).WithCause(err)
	}
	if len(segments) == 0 || segments[0].IsIndex {
		return nil, types.Errorf(types.ErrInvalidArgument, "%q is not a valid accessor path", path)
	}
	var cur *types.Expression
	for _, seg := range segments {
		var children []*types.Expression
		kind := types.KindAccessor
		if seg.IsIndex {
			kind = types.KindElement
			children = []*types.Expression{cur, types.NewConstant(int64(seg.Index))}
		} else {
			children = []*types.Expression{types.NewConstant(seg.Name)}
			if cur != nil {
				children = append(children, cur)
			}
		}
		if cur, err = makeWith(lookup, kind, children...); err != nil {
			return nil, err
		}
	}
	return cur, nil
}

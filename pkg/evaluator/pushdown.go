package evaluator

import "github.com/sandrolain/goexpr/pkg/types"

// PushDownNot rewrites expr so that not only wraps leaves. Operators with a
// declared negation are replaced by it, and/or follow De Morgan, and double
// negation cancels. The input tree is not modified.
func PushDownNot(expr *types.Expression) *types.Expression {
	return pushDown(expr, false)
}

func pushDown(expr *types.Expression, negate bool) *types.Expression {
	if expr == nil {
		return nil
	}
	if !negate {
		if expr.Kind() == types.KindNot {
			return pushDown(expr.Child(0), true)
		}
		return rebuild(expr, expr.Def(), false)
	}

	switch expr.Kind() {
	case types.KindNot:
		return pushDown(expr.Child(0), false)
	case types.KindConstant:
		if b, ok := expr.Value().(bool); ok {
			return types.NewConstant(!b)
		}
	case types.KindAnd, types.KindOr:
		if def, ok := LookupBuiltin(expr.Negation()); ok {
			return rebuild(expr, def, true)
		}
	default:
		if neg := expr.Negation(); neg != "" {
			if def, ok := LookupBuiltin(neg); ok {
				return types.NewExpression(def, expr.Children()...)
			}
		}
	}
	notDef, _ := LookupBuiltin(types.KindNot)
	return types.NewExpression(notDef, pushDown(expr, false))
}

// rebuild copies expr under def with every child pushed down.
func rebuild(expr *types.Expression, def *types.OperatorDef, negate bool) *types.Expression {
	if expr.IsConstant() {
		return expr
	}
	children := make([]*types.Expression, len(expr.Children()))
	for i, child := range expr.Children() {
		children[i] = pushDown(child, negate)
	}
	return types.NewExpression(def, children...)
}

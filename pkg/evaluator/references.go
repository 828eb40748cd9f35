package evaluator

import (
	"github.com/sandrolain/goexpr/pkg/memory"
	"github.com/sandrolain/goexpr/pkg/types"
)

var iterationKinds = map[string]bool{
	"foreach": true,
	"select":  true,
	"where":   true,
	"any":     true,
	"all":     true,
}

// References returns the state paths expr reads, in first-seen order.
// Literal access chains are folded into one path; names bound by lambda
// iterators are not state reads and are left out.
func References(expr *types.Expression) []string {
	r := &refCollector{seen: map[string]bool{}}
	r.walk(expr, nil)
	return r.paths
}

type refCollector struct {
	seen  map[string]bool
	paths []string
}

func (r *refCollector) add(path string, locals map[string]bool) {
	if path == "" || r.seen[path] {
		return
	}
	if segments, err := memory.ParsePath(path); err == nil && len(segments) > 0 && locals[segments[0].Name] {
		return
	}
	r.seen[path] = true
	r.paths = append(r.paths, path)
}

func (r *refCollector) walk(expr *types.Expression, locals map[string]bool) {
	if expr == nil || expr.IsConstant() {
		return
	}
	switch kind := expr.Kind(); {
	case kind == types.KindAccessor || kind == types.KindElement || kind == types.KindGetProperty:
		path, left, err := TryAccumulatePath(expr, nil, nil)
		if err != nil {
			return
		}
		if left == nil {
			r.add(path, locals)
			return
		}
		if left == expr {
			// A computed step: the container and the index are both reads.
			for _, child := range expr.Children() {
				r.walk(child, locals)
			}
			return
		}
		r.walk(left, locals)
	case kind == types.KindSetPathToValue:
		r.walk(expr.Child(1), locals)
	case kind == types.KindLambda:
		name, _ := expr.Child(0).Child(0).Value().(string)
		r.walk(expr.Child(1), withLocal(locals, name))
	case iterationKinds[kind] && len(expr.Children()) >= 2:
		r.walk(expr.Child(0), locals)
		name, body := lambdaParts(expr)
		r.walk(body, withLocal(locals, name))
	default:
		for _, child := range expr.Children() {
			r.walk(child, locals)
		}
	}
}

func withLocal(locals map[string]bool, name string) map[string]bool {
	out := make(map[string]bool, len(locals)+1)
	for k := range locals {
		out[k] = true
	}
	out[name] = true
	return out
}

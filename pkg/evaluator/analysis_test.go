package evaluator_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goexpr/pkg/evaluator"
	"github.com/sandrolain/goexpr/pkg/memory"
	"github.com/sandrolain/goexpr/pkg/types"
)

func mustParse(t *testing.T, text string) *types.Expression {
	t.Helper()
	expr, err := evaluator.New().Parse(text)
	require.NoError(t, err)
	return expr
}

func TestReferences(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"a.b + c[0].d", []string{"a.b", "c[0].d"}},
		{"foreach(items, x, x.price + tax)", []string{"items", "tax"}},
		{"where(items, i => i.x > limit)", []string{"items", "limit"}},
		{"a[b].c", []string{"a", "b"}},
		{"a.b == a.b", []string{"a.b"}},
		{"setPathToValue(a.b, c)", []string{"c"}},
		{"user['first name']", []string{"user['first name']"}},
		{"getProperty(user, 'name')", []string{"user.name"}},
		{"1 + 2", nil},
		{"foreach(x, x, x)", []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluator.References(mustParse(t, tt.expr)))
		})
	}
}

func TestPushDownNot(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"!(a && b)", "(!(a) || !(b))"},
		{"!(a < 1)", "(a >= 1)"},
		{"!!a", "a"},
		{"!(a == 1 || !b)", "((a != 1) && b)"},
		{"!true", "false"},
		{"!exists(a)", "!(exists(a))"},
		{"a && !(b > 2)", "(a && (b <= 2))"},
		{"a + 1", "(a + 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr := mustParse(t, tt.expr)
			before := expr.String()
			assert.Equal(t, tt.want, evaluator.PushDownNot(expr).String())
			assert.Equal(t, before, expr.String())
		})
	}
}

func TestPushDownNotPreservesResults(t *testing.T) {
	state := map[string]any{"a": int64(3), "b": false}
	for _, text := range []string{
		"!(a > 1 && b)",
		"!(a <= 1 || !b)",
		"!(a != 3)",
	} {
		expr := mustParse(t, text)
		direct, err := evalWith(t, text, state, nil)
		require.NoError(t, err)
		pushed, err := evalWith(t, evaluator.PushDownNot(expr).String(), state, nil)
		require.NoError(t, err)
		assert.Equal(t, direct, pushed, text)
	}
}

func TestBuiltins(t *testing.T) {
	names := evaluator.Builtins()
	assert.Contains(t, names, "add")
	assert.Contains(t, names, "where")
	assert.Contains(t, names, "getNextViableDate")
	assert.IsNonDecreasing(t, names)

	def, ok := evaluator.LookupBuiltin("lessThan")
	require.True(t, ok)
	assert.Equal(t, types.KindGreaterThanOrEqual, def.Negation)
	assert.Equal(t, types.ReturnBoolean, def.ReturnType)

	_, ok = evaluator.LookupBuiltin("nope")
	assert.False(t, ok)
}

func TestMakeExpression(t *testing.T) {
	expr, err := evaluator.MakeExpression("add", evaluator.Constant(int64(1)), evaluator.Constant(int64(2)))
	require.NoError(t, err)
	got, err := expr.TryEvaluate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
	assert.Equal(t, "(1 + 2)", expr.String())

	_, err = evaluator.MakeExpression("nope")
	var terr *types.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, types.ErrUnknownFunction, terr.Code)

	_, err = evaluator.MakeExpression("add", evaluator.Constant(int64(1)))
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, types.ErrArgumentCount, terr.Code)

	_, err = evaluator.MakeExpression("subtract", evaluator.Constant("a"), evaluator.Constant(int64(1)))
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, types.ErrArgumentType, terr.Code)

	constant, err := evaluator.MakeExpression(types.KindConstant)
	require.NoError(t, err)
	assert.True(t, constant.IsConstant())
	assert.Nil(t, constant.Value())
}

func TestRoundTripProgrammaticConstants(t *testing.T) {
	when := time.Date(2020, 5, 15, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name     string
		kind     string
		children []*types.Expression
	}{
		{"object", "count", []*types.Expression{evaluator.Constant(map[string]any{"a": int64(1), "b": "x"})}},
		{"nested object", types.KindGetProperty, []*types.Expression{
			evaluator.Constant(map[string]any{"a": map[string]any{"b": int64(2)}}),
			evaluator.Constant("a"),
		}},
		{"quoted object", "jsonStringify", []*types.Expression{evaluator.Constant(map[string]any{"k": "it's <v>"})}},
		{"timestamp", "year", []*types.Expression{evaluator.Constant(when)}},
		{"typed slice", "count", []*types.Expression{evaluator.Constant([]string{"a", "b"})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := evaluator.MakeExpression(tt.kind, tt.children...)
			require.NoError(t, err)
			want, err := expr.TryEvaluate(nil, nil)
			require.NoError(t, err)

			reparsed := mustParse(t, expr.String())
			got, err := reparsed.TryEvaluate(nil, nil)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s rendered as %s", tt.name, expr.String())
			assert.True(t, reparsed.DeepEquals(mustParse(t, reparsed.String())))
		})
	}
}

func TestAccessor(t *testing.T) {
	expr, err := evaluator.Accessor("a.b[0].c")
	require.NoError(t, err)
	assert.Equal(t, "a.b[0].c", expr.String())

	state := map[string]any{"a": map[string]any{"b": []any{map[string]any{"c": "deep"}}}}
	got, err := evalWith(t, expr.String(), state, nil)
	require.NoError(t, err)
	assert.Equal(t, "deep", got)

	for _, bad := range []string{"", "[0]", "a["} {
		_, err := evaluator.Accessor(bad)
		assert.Error(t, err, bad)
	}
}

func TestTryAccumulatePath(t *testing.T) {
	path, left, err := evaluator.TryAccumulatePath(mustParse(t, "a.b[2]['c d'].e"), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, left)
	assert.Equal(t, "a.b[2]['c d'].e", path)

	path, left, err = evaluator.TryAccumulatePath(mustParse(t, "first(items).title"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "title", path)
	require.NotNil(t, left)
	assert.Equal(t, "first", left.Kind())

	_, _, err = evaluator.TryAccumulatePath(mustParse(t, "items[1.5]"), nil, nil)
	assert.Error(t, err)
}

func TestFoldedPathMatchesSequentialEvaluation(t *testing.T) {
	state := testState()
	tests := []struct {
		folded  string
		wrapped string
		root    string
		rest    string
	}{
		{"user.name", "first(createArray(user)).name", "user", "name"},
		{"user['first name']", "first(createArray(user))['first name']", "user", "['first name']"},
		{"getProperty(user, 'age')", "getProperty(first(createArray(user)), 'age')", "user", "age"},
		{"items[1].title", "first(createArray(items))[1].title", "items", "[1].title"},
		{"items[0]['price']", "first(createArray(items))[0]['price']", "items", "[0].price"},
		{"tags[2]", "first(createArray(tags))[2]", "tags", "[2]"},
		{"scores.b", "first(createArray(scores)).b", "scores", "b"},
		{"user.missing", "first(createArray(user)).missing", "user", "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.folded, func(t *testing.T) {
			path, left, err := evaluator.TryAccumulatePath(mustParse(t, tt.folded), nil, nil)
			require.NoError(t, err)
			require.Nil(t, left, "%s should fold into %q", tt.folded, path)

			folded, err := evalWith(t, tt.folded, state, nil)
			require.NoError(t, err)

			wrapped, err := evalWith(t, tt.wrapped, state, nil)
			require.NoError(t, err)
			assert.Equal(t, folded, wrapped)

			root, err := evalWith(t, tt.root, state, nil)
			require.NoError(t, err)
			segments, err := memory.ParsePath(tt.rest)
			require.NoError(t, err)
			walked, _ := memory.Resolve(root, segments)
			assert.Equal(t, folded, walked)
		})
	}
}

func TestIteratorShadowsHostNames(t *testing.T) {
	state := map[string]any{
		"x":  "host",
		"it": map[string]any{"name": "hostname"},
	}
	tests := []struct {
		expr string
		want any
	}{
		{"foreach(createArray(null, 1), x, x)", []any{nil, int64(1)}},
		{"foreach(createArray(json('{}')), it, it.name)", []any{nil}},
		{"where(createArray(null, 1), x, x == null)", []any{nil}},
		{"select(createArray(null), x => exists(x))", []any{false}},
		{"all(createArray(null), x => x == null)", true},
		{"foreach(createArray(1), y, x)", []any{"host"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evalWith(t, tt.expr, state, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueHelpers(t *testing.T) {
	assert.True(t, evaluator.IsEqual(int64(1), 1.0))
	assert.True(t, evaluator.IsEqual([]any{}, map[string]any{}))
	assert.True(t, evaluator.IsEqual([]string{"a"}, []any{"a"}))
	assert.False(t, evaluator.IsEqual(nil, ""))
	assert.False(t, evaluator.IsEqual("", []any{}))
	assert.False(t, evaluator.IsEqual(map[string]any{}, ""))
	assert.False(t, evaluator.IsEqual("a", "b"))

	assert.True(t, evaluator.IsLogicTrue(0))
	assert.True(t, evaluator.IsLogicTrue(""))
	assert.False(t, evaluator.IsLogicTrue(nil))
	assert.False(t, evaluator.IsLogicTrue(false))

	assert.Equal(t, "", evaluator.Stringify(nil))
	assert.Equal(t, "2.5", evaluator.Stringify(2.5))
	assert.Equal(t, "3", evaluator.Stringify(3))
	assert.Equal(t, "Infinity", evaluator.Stringify(math.Inf(1)))
	assert.Equal(t, `{"a":1}`, evaluator.Stringify(map[string]any{"a": 1}))
	assert.Equal(t, "2020-05-15T00:00:00.000Z", evaluator.Stringify(time.Date(2020, 5, 15, 0, 0, 0, 0, time.UTC)))

	n, ok := evaluator.ToInt64(int32(7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)
	assert.True(t, evaluator.IsInteger(uint8(1)))
	assert.False(t, evaluator.IsInteger(1.0))

	list, ok := evaluator.ToList([]int64{1, 2})
	assert.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2)}, list)
	_, ok = evaluator.ToList("ab")
	assert.False(t, ok)

	v, err := evaluator.ParseJSON(`{"n": 1, "f": 1.5, "l": [2]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": int64(1), "f": 1.5, "l": []any{int64(2)}}, v)
	_, err = evaluator.ParseJSON(`{} {}`)
	assert.Error(t, err)
}

package parser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goexpr/pkg/evaluator"
	"github.com/sandrolain/goexpr/pkg/parser"
	"github.com/sandrolain/goexpr/pkg/types"
)

func parse(t *testing.T, text string) *types.Expression {
	t.Helper()
	expr, err := parser.Parse(text, parser.WithLookup(evaluator.LookupBuiltin))
	require.NoError(t, err, "Parse(%q)", text)
	return expr
}

func parseErr(t *testing.T, text string, opts ...parser.CompileOption) *types.Error {
	t.Helper()
	opts = append([]parser.CompileOption{parser.WithLookup(evaluator.LookupBuiltin)}, opts...)
	_, err := parser.Parse(text, opts...)
	require.Error(t, err, "Parse(%q)", text)
	var perr *types.Error
	require.True(t, errors.As(err, &perr), "expected *types.Error, got %T", err)
	return perr
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"42", int64(42)},
		{"-42", int64(-42)},
		{"3.25", 3.25},
		{"-0.5", -0.5},
		{"1e3", 1000.0},
		{"'single'", "single"},
		{`"double"`, "double"},
		{`'it\'s'`, "it's"},
		{`'tab\there'`, "tab\there"},
		{`'é'`, "é"},
		{`'😀'`, "😀"},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			expr := parse(t, tt.text)
			require.True(t, expr.IsConstant(), "got %s", expr.Kind())
			assert.Equal(t, tt.want, expr.Value())
		})
	}
}

func TestParseStructure(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"10 - 4 - 3", "((10 - 4) - 3)"},
		{"2 ^ 3 ^ 2", "(2 ^ (3 ^ 2))"},
		{"-2 ^ 2", "(-2 ^ 2)"},
		{"-x ^ 2", "(-(x) ^ 2)"},
		{"1 - -2", "(1 - -2)"},
		{"a || b && c", "(a || (b && c))"},
		{"!a && b", "(!(a) && b)"},
		{"a == 1 || b != 2", "((a == 1) || (b != 2))"},
		{"a <> b", "(a != b)"},
		{"x < 1 == y >= 2", "((x < 1) == (y >= 2))"},
		{"'a' & 'b' + 'c'", "('a' & ('b' + 'c'))"},
		{"a.b.c", "a.b.c"},
		{"a.b[0].c", "a.b[0].c"},
		{"a[i + 1]", "a[(i + 1)]"},
		{"a['b c']", "a['b c']"},
		{"-x.y", "-(x.y)"},
		{"count(items) > 0", "(count(items) > 0)"},
		{"if(a, 'yes', 'no')", "if(a, 'yes', 'no')"},
		{"[1, 'two', x]", "createArray(1, 'two', x)"},
		{"[]", "createArray()"},
		{"{}", "json('{}')"},
		{"{a: 1, 'b c': x}", "setProperty(setProperty(json('{}'), 'a', 1), 'b c', x)"},
		{"where(items, x => x.price > 10)", "where(items, x => (x.price > 10))"},
		{"foreach(items, x, x.name)", "foreach(items, x, x.name)"},
		{"@entity.name", "@entity.name"},
		{"$index", "$index"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, parse(t, tt.text).String())
		})
	}
}

func TestParseKinds(t *testing.T) {
	assert.Equal(t, types.KindNotEqual, parse(t, "a <> b").Kind())
	assert.Equal(t, types.KindUnaryMinus, parse(t, "-x").Kind())
	assert.Equal(t, types.KindElement, parse(t, "a[0]").Kind())

	lambda := parse(t, "any(items, x => x)").Child(1)
	assert.Equal(t, types.KindLambda, lambda.Kind())
	assert.Equal(t, types.KindAccessor, lambda.Child(0).Kind())
}

func TestParseTemplates(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"`plain`", "'plain'"},
		{"``", "''"},
		{"`Hello ${user.name}!`", "concat('Hello ', user.name, '!')"},
		{"`${a}${b}`", "(a & b)"},
		{"`${x}`", "concat(x)"},
		{"`cost: ${add(1, 2)}`", "('cost: ' & (1 + 2))"},
		{"`${'}'}`", "'}'"},
		{"`a\\`b \\${x}`", "'a`b ${x}'"},
		{"`line\\nbreak`", `'line\nbreak'`},
		{"`${'a'}${'b'}`", "('a' & 'b')"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, parse(t, tt.text).String())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, text := range []string{
		"1 + 2 * 3",
		"2 ^ 3 ^ 2",
		"-1.5 * x",
		"!(a || b) && c",
		"a.b[0]['c d'].e",
		"a[i]",
		"accessor('a b')",
		"getProperty(obj, 'key')",
		"{a: 1, b: [1, 2.0, 'x']}",
		"`Hi ${name}, you are ${age + 1}`",
		"where(items, x => x.price > 10 && x.inStock)",
		"foreach(items, x, concat(x.first, ' ', x.last))",
		"if(exists(a), a, null)",
		"'quote \\' and backslash \\\\'",
		"-(x)",
		"+x",
	} {
		t.Run(text, func(t *testing.T) {
			first := parse(t, text)
			second := parse(t, first.String())
			assert.True(t, first.DeepEquals(second), "%q rendered as %q", text, first.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		text     string
		code     types.ErrorCode
		position int
	}{
		{"'abc", types.ErrStringNotClosed, 0},
		{"x + 'abc", types.ErrStringNotClosed, 4},
		{"`abc", types.ErrStringNotClosed, 0},
		{"1 ~ 2", types.ErrSyntaxError, 2},
		{"99999999999999999999", types.ErrNumberOutOfRange, 0},
		{`'\q'`, types.ErrUnsupportedEscape, 0},
		{"foo(1)", types.ErrUnknownFunction, 0},
		{"x + nope(1)", types.ErrUnknownFunction, 4},
		{"count(1, 2)", types.ErrArgumentCount, 0},
		{"count(1)", types.ErrArgumentType, 0},
		{"1 + true", types.ErrArgumentType, 2},
		{"isMatch(x, '(')", types.ErrInvalidRegex, 0},
		{"add(1", types.ErrExpectedToken, 5},
		{"(1 + 2", types.ErrExpectedToken, 6},
		{"[1, 2", types.ErrExpectedToken, 5},
		{"{1: 2}", types.ErrExpectedToken, 1},
		{"{a 2}", types.ErrExpectedToken, 3},
		{"a.", types.ErrExpectedToken, 2},
		{"x.f(1)", types.ErrSyntaxError, 2},
		{"1 2", types.ErrSyntaxError, 2},
		{"x => 1", types.ErrSyntaxError, 2},
		{")", types.ErrSyntaxError, 0},
		{"where(items, 1, true)", types.ErrInvalidArgument, 0},
		{"`a ${x`", types.ErrExpectedToken, 3},
		{"`ab ${nope()}`", types.ErrUnknownFunction, 6},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			perr := parseErr(t, tt.text)
			assert.Equal(t, tt.code, perr.Code, perr.Error())
			assert.Equal(t, tt.position, perr.Position, perr.Error())
		})
	}
}

func TestParseIncomplete(t *testing.T) {
	for _, text := range []string{"1 +", "!", "add(1,", "a[", "{a:"} {
		perr := parseErr(t, text)
		assert.Contains(t, []types.ErrorCode{types.ErrSyntaxError, types.ErrExpectedToken}, perr.Code, text)
	}
}

func TestMaxDepth(t *testing.T) {
	perr := parseErr(t, "((((1))))", parser.WithMaxDepth(3))
	assert.Equal(t, types.ErrSyntaxError, perr.Code)
	assert.Contains(t, perr.Message, "maximum depth")

	_, err := parser.Parse("((((1))))", parser.WithLookup(evaluator.LookupBuiltin), parser.WithMaxDepth(10))
	assert.NoError(t, err)
}

func TestCustomLookup(t *testing.T) {
	def := &types.OperatorDef{Name: "answer", ReturnType: types.ReturnNumber}
	lookup := func(name string) (*types.OperatorDef, bool) {
		if name == "answer" {
			return def, true
		}
		return evaluator.LookupBuiltin(name)
	}
	expr, err := parser.Parse("answer() + 1", parser.WithLookup(lookup))
	require.NoError(t, err)
	assert.Equal(t, "(answer() + 1)", expr.String())

	_, err = parser.Parse("answer()", parser.WithLookup(evaluator.LookupBuiltin))
	assert.Error(t, err)
}

func TestDefaultLookup(t *testing.T) {
	expr, err := parser.Parse("toUpper(name)")
	require.NoError(t, err)
	assert.Equal(t, "toUpper", expr.Kind())

	assert.Panics(t, func() { parser.MustParse("(") })
}

func TestTokenize(t *testing.T) {
	tokens, err := parser.Tokenize(`a.b >= 1.5 && 'x' <> "y" => 7`)
	require.NoError(t, err)

	want := []struct {
		typ   parser.TokenType
		value string
		pos   int
	}{
		{parser.TokenIdent, "a", 0},
		{parser.TokenPunct, ".", 1},
		{parser.TokenIdent, "b", 2},
		{parser.TokenOperator, ">=", 4},
		{parser.TokenFloat, "1.5", 7},
		{parser.TokenOperator, "&&", 11},
		{parser.TokenString, "'x'", 14},
		{parser.TokenOperator, "<>", 18},
		{parser.TokenString, `"y"`, 21},
		{parser.TokenArrow, "=>", 25},
		{parser.TokenInt, "7", 28},
	}
	require.Len(t, tokens, len(want)+1)
	for i, w := range want {
		assert.Equal(t, w.typ, tokens[i].Type, "token %d", i)
		assert.Equal(t, w.value, tokens[i].Value, "token %d", i)
		assert.Equal(t, w.pos, tokens[i].Position, "token %d", i)
	}
	assert.Equal(t, parser.TokenEOF, tokens[len(tokens)-1].Type)
	assert.True(t, tokens[9].Is("=>"))
	assert.False(t, tokens[6].Is("'x'"))
}

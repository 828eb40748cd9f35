package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func store() any {
	return map[string]any{
		"store": map[string]any{
			"book": []any{
				map[string]any{"title": "Go", "price": 10.0},
				map[string]any{"title": "Rust", "price": 20.0},
				map[string]any{"title": "Zig", "price": 30.0},
			},
			"bicycle": map[string]any{"color": "red", "price": 99.0},
		},
	}
}

func TestValues(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []any
	}{
		{"child", "$.store.bicycle.color", []any{"red"}},
		{"bracket child", "$['store']['bicycle']['color']", []any{"red"}},
		{"wildcard", "$.store.book[*].title", []any{"Go", "Rust", "Zig"}},
		{"index", "$.store.book[1].title", []any{"Rust"}},
		{"negative index", "$.store.book[-1].title", []any{"Zig"}},
		{"slice", "$.store.book[0:2].title", []any{"Go", "Rust"}},
		{"index union", "$.store.book[0,2].title", []any{"Go", "Zig"}},
		{"filter", "$.store.book[?(@.title == 'Rust')].price", []any{20.0}},
		{"missing", "$.store.car", []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.path)
			require.NoError(t, err)
			got, err := p.Values(store())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnorderedValues(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []any
	}{
		{"key union", "$.store.bicycle['color','price']", []any{"red", 99.0}},
		{"recursive", "$..title", []any{"Go", "Rust", "Zig"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Values(store(), tt.path)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, path := range []string{"", "store.book", "$[", "$['a'"} {
		t.Run(path, func(t *testing.T) {
			_, err := Compile(path)
			var jerr *Error
			require.ErrorAs(t, err, &jerr)
			assert.Equal(t, ErrInvalidPath, jerr.Code)
		})
	}
}

func TestString(t *testing.T) {
	p, err := Compile("$.store.book[0]")
	require.NoError(t, err)
	assert.Equal(t, "$.store.book[0]", p.String())
}

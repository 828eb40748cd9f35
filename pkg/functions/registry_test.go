package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandrolain/goexpr/pkg/types"
)

func noop(args ...any) (any, error) { return nil, nil }

func TestCustomFunctionDefValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     CustomFunctionDef
		wantErr bool
	}{
		{name: "valid", def: CustomFunctionDef{Name: "greet", MinArgs: 1, MaxArgs: 1, Fn: noop}},
		{name: "unbounded", def: CustomFunctionDef{Name: "greet", MinArgs: 1, MaxArgs: -1, Fn: noop}},
		{name: "empty name", def: CustomFunctionDef{Fn: noop}, wantErr: true},
		{name: "bad name", def: CustomFunctionDef{Name: "a b", Fn: noop}, wantErr: true},
		{name: "no impl", def: CustomFunctionDef{Name: "greet"}, wantErr: true},
		{name: "max below min", def: CustomFunctionDef{Name: "greet", MinArgs: 2, MaxArgs: 1, Fn: noop}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	d := CustomFunctionDef{Name: "f", Fn: noop}
	minArgs, maxArgs := d.Arity()
	assert.Equal(t, 0, minArgs)
	assert.Equal(t, -1, maxArgs)
	assert.Equal(t, types.ReturnObject, d.Returns())

	d.ReturnType = types.ReturnString
	assert.Equal(t, types.ReturnString, d.Returns())
}

func TestSetNames(t *testing.T) {
	s := Set{{Name: "a", Fn: noop}, {Name: "b", Fn: noop}}
	assert.Equal(t, []string{"a", "b"}, s.Names())
}

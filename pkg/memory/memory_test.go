package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path string
		want []Segment
	}{
		{"user", []Segment{{Name: "user"}}},
		{"user.name", []Segment{{Name: "user"}, {Name: "name"}}},
		{"items[0].title", []Segment{{Name: "items"}, {Index: 0, IsIndex: true}, {Name: "title"}}},
		{"user['first name']", []Segment{{Name: "user"}, {Name: "first name"}}},
		{`user["it's"]`, []Segment{{Name: "user"}, {Name: "it's"}}},
		{`a['x\'y']`, []Segment{{Name: "a"}, {Name: "x'y"}}},
		{"m[ 2 ][3]", []Segment{{Name: "m"}, {Index: 2, IsIndex: true}, {Index: 3, IsIndex: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParsePath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"a[", "a[x]", "a['b'", "a..[0", "a. .b"} {
		_, err := ParsePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "user", JoinPath("", "user"))
	assert.Equal(t, "user.name", JoinPath("user", "name"))
	assert.Equal(t, "user['first name']", JoinPath("user", "first name"))
	assert.Equal(t, "items[2]", JoinIndex("items", 2))
}

type profile struct {
	Name  string
	Email string
}

func TestSimpleObjectMemoryGetValue(t *testing.T) {
	root := map[string]any{
		"user": map[string]any{
			"name":    "Ada",
			"Profile": profile{Name: "ada", Email: "ada@example.com"},
		},
		"items": []any{
			map[string]any{"title": "first"},
			map[string]any{"title": "second"},
		},
		"labels": map[string]string{"Color": "red"},
		"nums":   []int{1, 2, 3},
	}
	m := NewSimpleObjectMemory(root)

	tests := []struct {
		path string
		want any
	}{
		{"user.name", "Ada"},
		{"USER.NAME", "Ada"},
		{"items[1].title", "second"},
		{"user.profile.email", "ada@example.com"},
		{"labels.color", "red"},
		{"nums[2]", 3},
		{"items[5].title", nil},
		{"missing.deep.path", nil},
		{"user[", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.GetValue(tt.path))
		})
	}
	assert.Equal(t, root, m.GetValue(""))
}

func TestSimpleObjectMemorySetValue(t *testing.T) {
	root := map[string]any{
		"list": []any{int64(1), int64(2)},
		"User": map[string]any{},
	}
	m := NewSimpleObjectMemory(root)

	require.NoError(t, m.SetValue("a.b.c", "deep"))
	assert.Equal(t, "deep", m.GetValue("a.b.c"))

	require.NoError(t, m.SetValue("list[1]", int64(20)))
	assert.Equal(t, int64(20), m.GetValue("list[1]"))

	// Existing keys are matched case-insensitively.
	require.NoError(t, m.SetValue("user.name", "Ada"))
	assert.Equal(t, "Ada", root["User"].(map[string]any)["name"])

	assert.Error(t, m.SetValue("list[9]", 1))
	assert.Error(t, m.SetValue("fresh[0]", 1))
	assert.Error(t, m.SetValue("", 1))
}

func TestWrap(t *testing.T) {
	m := NewSimpleObjectMemory(map[string]any{"x": 1})
	assert.Same(t, m, Wrap(m))

	empty := Wrap(nil)
	require.NoError(t, empty.SetValue("x", 1))
	assert.Equal(t, 1, empty.GetValue("x"))
}

func TestStackedMemory(t *testing.T) {
	base := NewSimpleObjectMemory(map[string]any{"x": "base", "y": "host"})
	s := NewStackedMemory(base)
	assert.Equal(t, 1, s.Depth())

	s.Push(NewSimpleObjectMemory(map[string]any{"x": "frame"}))
	assert.Equal(t, 2, s.Depth())
	assert.Equal(t, "frame", s.GetValue("x"))
	assert.Equal(t, "host", s.GetValue("y"))

	require.NoError(t, s.SetValue("z", "written"))
	assert.Equal(t, "written", base.GetValue("z"))

	nested := NewStackedMemory(s)
	nested.Push(NewSimpleObjectMemory(map[string]any{"x": "inner"}))
	assert.Equal(t, "inner", nested.GetValue("x"))
	assert.Equal(t, "frame", s.GetValue("x"), "copying a stack leaves the original untouched")

	s.Pop()
	s.Pop()
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, "base", s.GetValue("x"))
}

func TestStackedMemoryShadowsNil(t *testing.T) {
	base := NewSimpleObjectMemory(map[string]any{
		"x":  "host",
		"it": map[string]any{"name": "hostname"},
	})
	s := NewStackedMemory(base)
	s.Push(NewSimpleObjectMemory(map[string]any{"x": nil, "it": map[string]any{}}))

	assert.Nil(t, s.GetValue("x"))
	assert.Nil(t, s.GetValue("it.name"))
	assert.Equal(t, "host", base.GetValue("x"))

	v, ok := s.Lookup("x")
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = s.Lookup("missing")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	m := NewSimpleObjectMemory(map[string]any{"a": map[string]any{"b": nil}, "n": nil})
	tests := []struct {
		path  string
		want  any
		owned bool
	}{
		{"a", map[string]any{"b": nil}, true},
		{"a.b", nil, true},
		{"a.b.c", nil, true},
		{"n", nil, true},
		{"z", nil, false},
		{"z.y", nil, false},
		{"a[", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v, owned := m.Lookup(tt.path)
			assert.Equal(t, tt.owned, owned)
			assert.Equal(t, tt.want, v)
		})
	}
	_, owned := NewSimpleObjectMemory(nil).Lookup("a")
	assert.False(t, owned)
}

func TestAccessHelpers(t *testing.T) {
	v, ok := AccessProperty(&profile{Name: "p"}, "name")
	assert.True(t, ok)
	assert.Equal(t, "p", v)

	_, ok = AccessProperty(42, "name")
	assert.False(t, ok)

	_, err := AccessIndex("text", 0)
	assert.Error(t, err)

	assert.Error(t, SetProperty([]any{}, "x", 1))
	assert.Error(t, SetIndex(map[string]any{}, 0, 1))

	typed := map[string]int{}
	require.NoError(t, SetProperty(typed, "n", 3))
	assert.Equal(t, 3, typed["n"])
	assert.Error(t, SetProperty(typed, "s", "str"))
}

package memory

import (
	"fmt"

	"github.com/sandrolain/goexpr/pkg/types"
)

// SimpleObjectMemory adapts a plain Go value to types.MemoryView.
//
// Reads navigate maps, slices and structs; writes are supported on
// map[string]any and []any containers, creating missing intermediate maps.
type SimpleObjectMemory struct {
	root any
}

// NewSimpleObjectMemory wraps root.
func NewSimpleObjectMemory(root any) *SimpleObjectMemory {
	return &SimpleObjectMemory{root: root}
}

// Wrap returns value as a MemoryView, adapting it when needed.
func Wrap(value any) types.MemoryView {
	if mv, ok := value.(types.MemoryView); ok {
		return mv
	}
	if value == nil {
		value = map[string]any{}
	}
	return NewSimpleObjectMemory(value)
}

// Root returns the wrapped value.
func (m *SimpleObjectMemory) Root() any {
	return m.root
}

// GetValue resolves path. Malformed or missing paths yield nil.
func (m *SimpleObjectMemory) GetValue(path string) any {
	if m.root == nil {
		return nil
	}
	if path == "" {
		return m.root
	}
	segments, err := ParsePath(path)
	if err != nil {
		return nil
	}
	v, _ := Resolve(m.root, segments)
	return v
}

// Lookup resolves path and reports whether this memory owns its root
// segment. An owned root yields true even when the value, or a deeper
// step, is nil.
func (m *SimpleObjectMemory) Lookup(path string) (any, bool) {
	if m.root == nil {
		return nil, false
	}
	if path == "" {
		return m.root, true
	}
	segments, err := ParsePath(path)
	if err != nil || len(segments) == 0 {
		return nil, false
	}
	head, ok := Resolve(m.root, segments[:1])
	if !ok {
		return nil, false
	}
	v, _ := Resolve(head, segments[1:])
	return v, true
}

// Resolve walks segments from root. The bool is false when a step missed.
func Resolve(root any, segments []Segment) (any, bool) {
	cur := root
	for _, seg := range segments {
		if cur == nil {
			return nil, false
		}
		if seg.IsIndex {
			v, err := AccessIndex(cur, seg.Index)
			if err != nil {
				return nil, false
			}
			cur = v
			continue
		}
		v, ok := AccessProperty(cur, seg.Name)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// SetValue writes value at path.
func (m *SimpleObjectMemory) SetValue(path string, value any) error {
	segments, err := ParsePath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("cannot set empty path")
	}
	if m.root == nil {
		m.root = map[string]any{}
	}

	cur := m.root
	for i, seg := range segments[:len(segments)-1] {
		next, err := step(cur, seg)
		if err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
		if next == nil {
			if segments[i+1].IsIndex {
				return fmt.Errorf("set %s: %s is not a list", path, seg)
			}
			next = map[string]any{}
			if err := assign(cur, seg, next); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
		cur = next
	}
	if err := assign(cur, segments[len(segments)-1], value); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func step(cur any, seg Segment) (any, error) {
	if seg.IsIndex {
		return AccessIndex(cur, seg.Index)
	}
	v, _ := AccessProperty(cur, seg.Name)
	return v, nil
}

func assign(cur any, seg Segment, value any) error {
	if seg.IsIndex {
		return SetIndex(cur, seg.Index, value)
	}
	return SetProperty(cur, seg.Name, value)
}

// String implements fmt.Stringer.
func (m *SimpleObjectMemory) String() string {
	return fmt.Sprintf("SimpleObjectMemory{%v}", m.root)
}

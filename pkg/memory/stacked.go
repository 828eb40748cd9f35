package memory

import (
	"github.com/sandrolain/goexpr/pkg/types"
)

// Scope is a view that can tell a missing name from a name bound to nil.
type Scope interface {
	Lookup(path string) (any, bool)
}

// StackedMemory layers scoped frames over a base view. Reads search frames
// from the top down: the first Scope frame owning the path's root segment
// answers, even with nil; other frames answer with the first non-nil value.
// Writes go to the base view so host state observes them.
type StackedMemory struct {
	frames []types.MemoryView
}

// NewStackedMemory creates a stack whose bottom frame is base.
func NewStackedMemory(base types.MemoryView) *StackedMemory {
	if s, ok := base.(*StackedMemory); ok {
		frames := make([]types.MemoryView, len(s.frames))
		copy(frames, s.frames)
		return &StackedMemory{frames: frames}
	}
	return &StackedMemory{frames: []types.MemoryView{base}}
}

// Push adds a frame on top.
func (s *StackedMemory) Push(frame types.MemoryView) {
	s.frames = append(s.frames, frame)
}

// Pop removes the top frame. The base frame is never removed.
func (s *StackedMemory) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth returns the number of frames.
func (s *StackedMemory) Depth() int {
	return len(s.frames)
}

// GetValue implements types.MemoryView.
func (s *StackedMemory) GetValue(path string) any {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if i == 0 {
			return s.frames[0].GetValue(path)
		}
		if scope, ok := s.frames[i].(Scope); ok {
			if v, owned := scope.Lookup(path); owned {
				return v
			}
			continue
		}
		if v := s.frames[i].GetValue(path); v != nil {
			return v
		}
	}
	return nil
}

// Lookup implements Scope across all frames.
func (s *StackedMemory) Lookup(path string) (any, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if scope, ok := s.frames[i].(Scope); ok {
			if v, owned := scope.Lookup(path); owned {
				return v, true
			}
		} else if v := s.frames[i].GetValue(path); v != nil {
			return v, true
		}
	}
	return nil, false
}

// SetValue implements types.MemoryView.
func (s *StackedMemory) SetValue(path string, value any) error {
	return s.frames[0].SetValue(path, value)
}

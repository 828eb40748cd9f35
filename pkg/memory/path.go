// Package memory provides the host state adapters expressions read from and
// write to.
//
// A path addresses a value in a tree of maps and lists:
//
//	user.name
//	turn.items[0].title
//	user['first name']
//
// SimpleObjectMemory adapts any Go value (maps, slices, structs) and
// StackedMemory layers scoped frames on top of another view, which is how
// lambda iterator variables shadow host state.
package memory

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a parsed path: either a property name or a list
// index.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

// String renders the segment in path syntax.
func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// ParsePath splits a path into segments.
func ParsePath(path string) ([]Segment, error) {
	var segments []Segment
	i := 0
	n := len(path)
	for i < n {
		switch c := path[i]; {
		case c == '.':
			i++
		case c == '[':
			end, seg, err := parseBracket(path, i)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			i = end
		default:
			j := i
			for j < n && path[j] != '.' && path[j] != '[' {
				j++
			}
			name := strings.TrimSpace(path[i:j])
			if name == "" {
				return nil, fmt.Errorf("invalid path %q: empty segment at %d", path, i)
			}
			segments = append(segments, Segment{Name: name})
			i = j
		}
	}
	return segments, nil
}

// parseBracket parses "[0]", "['key']" or "[\"key\"]" starting at start and
// returns the offset just past the closing bracket.
func parseBracket(path string, start int) (int, Segment, error) {
	i := start + 1
	if i >= len(path) {
		return 0, Segment{}, fmt.Errorf("invalid path %q: unclosed '['", path)
	}
	if q := path[i]; q == '\'' || q == '"' {
		var sb strings.Builder
		i++
		for i < len(path) && path[i] != q {
			if path[i] == '\\' && i+1 < len(path) {
				i++
			}
			sb.WriteByte(path[i])
			i++
		}
		if i+1 >= len(path) || path[i+1] != ']' {
			return 0, Segment{}, fmt.Errorf("invalid path %q: unclosed quoted key", path)
		}
		return i + 2, Segment{Name: sb.String()}, nil
	}
	end := strings.IndexByte(path[i:], ']')
	if end < 0 {
		return 0, Segment{}, fmt.Errorf("invalid path %q: unclosed '['", path)
	}
	raw := strings.TrimSpace(path[i : i+end])
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, Segment{}, fmt.Errorf("invalid path %q: index %q is not an integer", path, raw)
	}
	return i + end + 1, Segment{Index: idx, IsIndex: true}, nil
}

// JoinPath appends a property name to a path, bracketing names that are not
// plain identifiers.
func JoinPath(path, name string) string {
	seg := name
	if !plainName(name) {
		seg = "['" + strings.ReplaceAll(name, "'", `\'`) + "']"
		return path + seg
	}
	if path == "" {
		return seg
	}
	return path + "." + seg
}

// JoinIndex appends a list index to a path.
func JoinIndex(path string, idx int) string {
	return path + "[" + strconv.Itoa(idx) + "]"
}

func plainName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == '.' || r == '[' || r == ']' || r == '\'' || r == '"' || r == ' ' {
			return false
		}
	}
	return true
}

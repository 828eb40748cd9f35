package types

// MemoryView is the host-owned, path-addressable state an expression reads
// from and writes to. Paths look like "user.age" or "turn.items[0].name".
//
// GetValue never fails: a missing path yields nil. SetValue may reject a
// path that cannot be written (e.g. indexing a non-list).
type MemoryView interface {
	GetValue(path string) any
	SetValue(path string, value any) error
}

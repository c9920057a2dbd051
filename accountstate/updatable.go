package accountstate

// Updatable is a (value, dirty-bit) wrapper. Reading through Value does
// not set the bit; Modify does. Once dirty, it stays dirty until
// replaced by a fresh NewUpdatable.
//
// This is a dirty-bit design, chosen over whole-state diffing: a
// per-entry bit set on first write avoids O(accounts) work on commit,
// at the cost of two explicit accessors instead of one.
type Updatable[T any] struct {
	value   T
	dirtied bool
}

// NewUpdatable wraps v as not-yet-modified.
func NewUpdatable[T any](v T) Updatable[T] {
	return Updatable[T]{value: v}
}

// Value returns a read-only view; it never sets the dirty bit.
func (u *Updatable[T]) Value() T {
	return u.value
}

// Modify returns a pointer into the wrapped value for in-place mutation
// and marks the wrapper dirty. Callers that only need to replace the
// whole value should prefer Set, which is equivalent but clearer at the
// call site.
func (u *Updatable[T]) Modify() *T {
	u.dirtied = true
	return &u.value
}

// Set replaces the wrapped value and marks the wrapper dirty.
func (u *Updatable[T]) Set(v T) {
	u.value = v
	u.dirtied = true
}

// IsModified reports whether the wrapper has been written to since
// construction.
func (u *Updatable[T]) IsModified() bool {
	return u.dirtied
}

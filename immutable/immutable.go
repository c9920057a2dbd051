// Package immutable provides a value wrapper that is cheap to either
// own outright or share, without forcing every consumer to agree up
// front on which one it needs. Go already garbage-collects, so
// "shared" here just means "this handle aliases another owner's
// backing value and must not be mutated through"; there is no
// refcounting to manage.
package immutable

// Immutable holds a read-only T that is either Owned (this handle is
// the only reference to its backing value) or Shared (the backing
// value may be aliased by other handles). Both states expose the same
// read interface; callers must not compare handles by identity.
type Immutable[T any] struct {
	v      *T
	shared bool
}

// NewOwned copies v into a new handle holding sole ownership.
func NewOwned[T any](v T) Immutable[T] {
	cp := v
	return Immutable[T]{v: &cp}
}

// NewShared wraps an existing value as a shared handle. The caller
// gives up the right to mutate *v through any other reference.
func NewShared[T any](v *T) Immutable[T] {
	return Immutable[T]{v: v, shared: true}
}

// Get returns the underlying value.
func (m Immutable[T]) Get() T {
	return *m.v
}

// IsShared reports whether this handle may alias another owner's
// backing value.
func (m Immutable[T]) IsShared() bool {
	return m.shared
}

// IntoShared promotes an Owned handle to Shared, in place: the
// backing pointer is unchanged, only the mode flag flips.
func (m Immutable[T]) IntoShared() Immutable[T] {
	m.shared = true
	return m
}

// IntoOwned returns a handle with sole ownership: if m is already
// Owned this is a no-op, otherwise the value is copied.
func (m Immutable[T]) IntoOwned() Immutable[T] {
	if !m.shared {
		return m
	}
	return NewOwned(*m.v)
}

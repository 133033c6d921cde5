// Package memo provides the once-computed cache cell used for every lazily
// derived field of the syntax tree.
//
// A Cell is filled on first use and never recomputed afterwards. Cells are not
// safe for concurrent use; a tree is analyzed by a single goroutine.
package memo

// Cell holds a value computed on first access.
type Cell[T any] struct {
	set bool
	val T
}

// Get returns the cached value, computing it with fn on the first call.
func (c *Cell[T]) Get(fn func() T) T {
	if !c.set {
		c.val = fn()
		c.set = true
	}
	return c.val
}

// Peek returns the cached value and whether it has been computed.
func (c *Cell[T]) Peek() (T, bool) {
	return c.val, c.set
}

// Package cellar provides single-slot outcome cells and the small failure
// plumbing around them: a Cell holds either the value its last computation
// produced or the failure it raised, and keeps reproducing that outcome on
// every read until it is overwritten.
package cellar

// Cell is a mutable slot holding the outcome of the most recent evaluation
// attempt. A stored failure is sticky: Get keeps returning it on every call
// until a later Set overwrites it.
//
// A Cell has no internal locking. If one is shared across goroutines the
// caller must serialize all Set and Get calls; Binding is the in-repo way
// to do that.
type Cell[T any] struct {
	res Result[T]
}

// NewCell returns a cell holding initial. A cell never starts out failed.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{res: Ok(initial)}
}

// Set evaluates compute synchronously, exactly once, and stores its outcome,
// discarding whatever the cell held before. A non-nil error or a panic
// inside compute leaves the cell failed; Set itself never fails and never
// re-panics.
func (c *Cell[T]) Set(compute func() (T, error)) {
	c.res = Eval(compute)
}

// Get returns the held value, or the held failure unchanged. Get does not
// mutate the cell: a failed cell stays failed across any number of reads.
func (c *Cell[T]) Get() (T, error) {
	return c.res.Get()
}

// MustGet returns the held value or panics with the held failure.
func (c *Cell[T]) MustGet() T {
	return c.res.Unwrap()
}

// Result returns a snapshot of the cell's current outcome.
func (c *Cell[T]) Result() Result[T] {
	return c.res
}

package cellar

import "github.com/zeebo/errs"

// Result is an immutable value-or-error pair: exactly one of the two is
// meaningful.
type Result[T any] struct {
	val T
	err error
}

// Ok returns a successful result holding val.
func Ok[T any](val T) Result[T] {
	return Result[T]{val: val}
}

// Err returns a failed result holding err.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// ResultOf packs a conventional (value, error) return into a Result.
func ResultOf[T any](val T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(val)
}

// Eval runs compute and packs its outcome into a Result. A panic inside
// compute is captured as a PanicError instead of escaping.
func Eval[T any](compute func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Err[T](errs.Wrap(&PanicError{Value: r}))
		}
	}()
	return ResultOf(compute())
}

// Get returns the held value and error.
func (r Result[T]) Get() (T, error) {
	return r.val, r.err
}

// Err returns the held error, nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Ok reports whether the result is a success.
func (r Result[T]) Ok() bool {
	return r.err == nil
}

// Unwrap returns the held value, or panics with the held error.
func (r Result[T]) Unwrap() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.val
}

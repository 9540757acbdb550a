package cellar

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zeebo/errs"

	"github.com/mizuchi-dev/cellar/internal/reflection"
)

// Option holds either a value or nothing.
type Option[T any] struct {
	val T
	ok  bool
}

// Some returns an option holding val.
func Some[T any](val T) Option[T] {
	return Option[T]{val: val, ok: true}
}

// None returns an empty option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the contained value and whether one is present.
func (o Option[T]) Get() (T, bool) {
	return o.val, o.ok
}

// Ok reports whether a value is present.
func (o Option[T]) Ok() bool {
	return o.ok
}

// GetOr returns the contained value, or def when the option is empty.
func (o Option[T]) GetOr(def T) T {
	if o.ok {
		return o.val
	}
	return def
}

// TypeMismatchError reports a narrowing failure: the contained value's
// runtime type is not assignable to the requested type.
type TypeMismatchError struct {
	Want reflect.Type
	Got  reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot narrow %v to %v", e.Got, e.Want)
}

// NilOptionError reports a nil *Option argument. This is distinct from an
// option that is present but empty, which narrows cleanly.
type NilOptionError struct{}

func (e *NilOptionError) Error() string {
	return "nil Option argument"
}

// Narrow converts an untyped option to a typed one. A nil o fails with
// NilOptionError; an empty o narrows to an empty option; a contained value
// that is not a T fails with TypeMismatchError.
func Narrow[T any](o *Option[any]) (Option[T], error) {
	if o == nil {
		return None[T](), errs.Wrap(&NilOptionError{})
	}
	v, ok := o.Get()
	if !ok {
		return None[T](), nil
	}
	t, ok := v.(T)
	if !ok {
		return None[T](), errs.Wrap(&TypeMismatchError{
			Want: reflection.Type[T](),
			Got:  reflect.TypeOf(v),
		})
	}
	return Some(t), nil
}

// NarrowSilently is Narrow with type mismatches converted to an empty
// option. Every other failure kind still propagates.
func NarrowSilently[T any](o *Option[any]) (Option[T], error) {
	res, err := Narrow[T](o)
	var mismatch *TypeMismatchError
	if err != nil && errors.As(err, &mismatch) {
		return None[T](), nil
	}
	return res, err
}

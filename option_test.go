package cellar

import (
	"errors"
	"testing"
)

func TestNarrow(t *testing.T) {
	opt := Some[any]("hello")
	got, err := Narrow[string](&opt)
	if err != nil {
		t.Fatalf("Narrow: %v", err)
	}
	if v, ok := got.Get(); !ok || v != "hello" {
		t.Errorf("got (%q, %t), want (hello, true)", v, ok)
	}
}

func TestNarrowEmpty(t *testing.T) {
	opt := None[any]()
	got, err := Narrow[string](&opt)
	if err != nil {
		t.Fatalf("Narrow: %v", err)
	}
	if got.Ok() {
		t.Error("narrowing an empty option should stay empty")
	}
}

func TestNarrowTypeMismatch(t *testing.T) {
	opt := Some[any](42)
	_, err := Narrow[string](&opt)

	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want a TypeMismatchError", err)
	}
	if mismatch.Want.Kind().String() != "string" || mismatch.Got.Kind().String() != "int" {
		t.Errorf("got Want=%v Got=%v", mismatch.Want, mismatch.Got)
	}
}

func TestNarrowNilOption(t *testing.T) {
	_, err := Narrow[string](nil)

	var nilOpt *NilOptionError
	if !errors.As(err, &nilOpt) {
		t.Fatalf("got %v, want a NilOptionError", err)
	}
	var mismatch *TypeMismatchError
	if errors.As(err, &mismatch) {
		t.Error("nil option must not look like a type mismatch")
	}
}

func TestNarrowInterface(t *testing.T) {
	opt := Some[any](errors.New("boom"))
	got, err := Narrow[error](&opt)
	if err != nil {
		t.Fatalf("Narrow: %v", err)
	}
	if v, ok := got.Get(); !ok || v.Error() != "boom" {
		t.Errorf("got (%v, %t)", v, ok)
	}
}

func TestNarrowSilently(t *testing.T) {
	// A type mismatch becomes an empty option.
	opt := Some[any](42)
	got, err := NarrowSilently[string](&opt)
	if err != nil {
		t.Fatalf("NarrowSilently: %v", err)
	}
	if got.Ok() {
		t.Error("mismatch should narrow silently to empty")
	}

	// Other failure kinds still propagate.
	var nilOpt *NilOptionError
	if _, err := NarrowSilently[string](nil); !errors.As(err, &nilOpt) {
		t.Errorf("got %v, want a NilOptionError", err)
	}

	// And a clean narrow still succeeds.
	opt2 := Some[any]("ok")
	got2, err := NarrowSilently[string](&opt2)
	if err != nil {
		t.Fatalf("NarrowSilently: %v", err)
	}
	if v, _ := got2.Get(); v != "ok" {
		t.Errorf("got %q, want ok", v)
	}
}

func TestOptionGetOr(t *testing.T) {
	if got := Some(3).GetOr(7); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
	if got := None[int]().GetOr(7); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}
